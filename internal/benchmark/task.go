package benchmark

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed all:tasks
var embeddedTasks embed.FS

// Task is a loaded evaluation task definition: the prompt configuration
// and where the benchmark data lives.
type Task struct {
	Name         string `yaml:"name"`
	Description  string `yaml:"description"`
	Version      string `yaml:"version"`
	BenchmarkDir string `yaml:"benchmark_dir"`
	Prompt       Prompt `yaml:"prompt"`
}

// Prompt defines the system prompt for a task.
type Prompt struct {
	Role          string `yaml:"role"`
	SystemMessage string `yaml:"system_message"`
}

// LoadTask loads a task definition by name, searching first in the
// external directory (if provided), then in the embedded defaults.
func LoadTask(name string, externalDir string) (*Task, error) {
	if externalDir != "" {
		dir := filepath.Join(externalDir, name)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return loadTaskFromFS(os.DirFS(dir), name)
		}
	}

	// embed.FS always uses forward slashes.
	subFS, err := fs.Sub(embeddedTasks, path.Join("tasks", name))
	if err != nil {
		return nil, fmt.Errorf("task %q not found: %w", name, err)
	}
	return loadTaskFromFS(subFS, name)
}

// ListTasks returns the names of all available task definitions.
func ListTasks(externalDir string) ([]string, error) {
	seen := make(map[string]bool)
	var names []string

	entries, err := fs.ReadDir(embeddedTasks, "tasks")
	if err == nil {
		for _, e := range entries {
			if e.IsDir() {
				seen[e.Name()] = true
				names = append(names, e.Name())
			}
		}
	}

	if externalDir != "" {
		entries, err := os.ReadDir(externalDir)
		if err == nil {
			for _, e := range entries {
				if e.IsDir() && !seen[e.Name()] {
					names = append(names, e.Name())
				}
			}
		}
	}

	return names, nil
}

func loadTaskFromFS(fsys fs.FS, name string) (*Task, error) {
	data, err := fs.ReadFile(fsys, "config.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read config.yaml for task %q: %w", name, err)
	}

	var task Task
	if err := yaml.Unmarshal(data, &task); err != nil {
		return nil, fmt.Errorf("failed to parse config.yaml for task %q: %w", name, err)
	}

	if task.Name == "" {
		task.Name = name
	}
	if task.BenchmarkDir == "" {
		task.BenchmarkDir = filepath.Join("data", "benchmark")
	}
	if task.Prompt.SystemMessage == "" {
		return nil, fmt.Errorf("task %q has no system message", name)
	}

	return &task, nil
}
