package mcp

import (
	"fmt"
	"path/filepath"
	"strings"
)

func resolveBenchmarkFile(benchmarkDir, pathValue string) (string, error) {
	if strings.TrimSpace(pathValue) == "" {
		return "", fmt.Errorf("benchmark_file is required")
	}
	return resolvePathWithinBase(benchmarkDir, pathValue)
}

func resolvePathWithinBase(baseDir, pathValue string) (string, error) {
	baseAbs, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory: %w", err)
	}
	target := pathValue
	if !filepath.IsAbs(target) {
		target = filepath.Join(baseAbs, target)
	}
	targetAbs, err := filepath.Abs(target)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	rel, err := filepath.Rel(baseAbs, targetAbs)
	if err != nil {
		return "", fmt.Errorf("failed to resolve relative path: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path must be within the benchmark directory")
	}
	return targetAbs, nil
}
