package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/crypticbench/crypticbench/internal/dashboard"
	mcptools "github.com/crypticbench/crypticbench/internal/mcp"
	"github.com/crypticbench/crypticbench/internal/results"
	"github.com/crypticbench/crypticbench/internal/server"
)

const (
	transportStdio          = "stdio"
	transportStreamableHTTP = "streamable-http"
)

func newServeCmd() *cobra.Command {
	var (
		transport    string
		httpAddr     string
		httpEndpoint string
		benchmarkDir string
		taskDir      string
		resultsDir   string
		logsDir      string
		webDir       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the MCP server to expose the benchmark tools via the Model Context
Protocol.

Supports multiple transport types:
  - stdio: Standard input/output (default, for IDE integration)
  - streamable-http: HTTP with streaming support (for remote access)

The HTTP transport additionally serves the static web dashboard and a
freshly aggregated /results.json.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc := &server.ServerContext{
				Store:        results.NewStore(resultsDir),
				BenchmarkDir: benchmarkDir,
				TaskDir:      taskDir,
				LogsDir:      logsDir,
				Version:      rootCmd.Version,
			}

			mcpSrv := mcpserver.NewMCPServer("crypticbench", rootCmd.Version,
				mcpserver.WithToolCapabilities(true),
			)

			if err := mcptools.RegisterTools(mcpSrv, sc); err != nil {
				return fmt.Errorf("failed to register MCP tools: %w", err)
			}

			shutdownCtx, cancel := signal.NotifyContext(context.Background(),
				os.Interrupt, syscall.SIGTERM)
			defer cancel()

			switch transport {
			case transportStdio:
				return runStdioServer(mcpSrv)
			case transportStreamableHTTP:
				fmt.Printf("Starting crypticbench MCP server with %s transport...\n", transport)
				return runHTTPServer(mcpSrv, sc, httpAddr, httpEndpoint, webDir, shutdownCtx)
			default:
				return fmt.Errorf("unsupported transport: %s (supported: stdio, streamable-http)", transport)
			}
		},
	}

	cmd.Flags().StringVar(&transport, "transport", transportStdio, "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "HTTP server address (for streamable-http)")
	cmd.Flags().StringVar(&httpEndpoint, "http-endpoint", "/mcp", "HTTP endpoint path (for streamable-http)")
	cmd.Flags().StringVar(&benchmarkDir, "benchmark-dir", "data/benchmark", "Directory with benchmark puzzle files")
	cmd.Flags().StringVar(&taskDir, "task-dir", "", "External tasks directory (optional)")
	cmd.Flags().StringVar(&resultsDir, "results-dir", "results", "Directory with result stores")
	cmd.Flags().StringVar(&logsDir, "logs-dir", "logs", "Directory for run logs")
	cmd.Flags().StringVar(&webDir, "web-dir", "web", "Static web dashboard directory (for streamable-http)")

	return cmd
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runHTTPServer(mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, addr, endpoint, webDir string, ctx context.Context) error {
	mcpHandler := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithEndpointPath(endpoint),
	)

	mux := http.NewServeMux()
	mux.Handle(endpoint, mcpHandler)

	// Health check.
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// The leaderboard is aggregated fresh per request so it always
	// reflects the current stores.
	mux.HandleFunc("/results.json", func(w http.ResponseWriter, r *http.Request) {
		snapshot, err := dashboard.NewAggregator(sc.Store).Build()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(snapshot)
	})

	if info, err := os.Stat(webDir); err == nil && info.IsDir() {
		mux.Handle("/", http.FileServer(http.Dir(webDir)))
		fmt.Printf("  Dashboard: / (from %s)\n", webDir)
	}

	fmt.Printf("  HTTP endpoint: %s\n", endpoint)
	fmt.Printf("  Results: /results.json\n")
	fmt.Printf("  Health: /healthz\n")

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		fmt.Println("Shutdown signal received, stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	fmt.Println("HTTP server stopped")
	return nil
}
