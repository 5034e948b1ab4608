package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/nkoval/ragman/internal/answer"
	"github.com/nkoval/ragman/internal/api"
	"github.com/nkoval/ragman/internal/config"
	"github.com/nkoval/ragman/internal/docparse"
	"github.com/nkoval/ragman/internal/index"
	"github.com/nkoval/ragman/internal/ingest"
	"github.com/nkoval/ragman/internal/llm"
	"github.com/nkoval/ragman/internal/queue"
	"github.com/nkoval/ragman/internal/status"
	"github.com/nkoval/ragman/internal/vision"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the ragman server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "ragman version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Model clients share one HTTP client.
	client := llm.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL)
	embedder := llm.NewEmbedder(client, cfg.OpenAI.EmbedModel)
	visionModel := llm.NewVision(client, cfg.OpenAI.VisionModel)
	textModel := llm.NewCompletion(client, cfg.OpenAI.TextModel)

	idx, err := index.Open(cfg.Storage.IndexDir(), embedder)
	if err != nil {
		return fmt.Errorf("opening index: %w", err)
	}
	defer func() {
		if err := idx.Close(); err != nil {
			slog.Warn("closing index", "error", err)
		}
	}()

	q, err := queue.Open(cfg.Storage.QueueDir())
	if err != nil {
		return fmt.Errorf("opening image queue: %w", err)
	}

	ingestor := ingest.NewIngestor(idx, q, ingest.ParserFunc(docparse.Parse),
		cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap)
	answerer := answer.NewAnswerer(idx, textModel, cfg.Retrieval.TopK)
	reporter := status.NewReporter(idx, q)

	pollInterval, err := time.ParseDuration(cfg.Worker.PollInterval)
	if err != nil {
		slog.Warn("invalid worker poll interval, using default 10s",
			"value", cfg.Worker.PollInterval, "error", err)
		pollInterval = 10 * time.Second
	}
	worker := vision.NewWorker(idx, q, visionModel, pollInterval)
	go worker.Run(ctx)

	handler := api.NewHandler(api.Deps{
		Ingestor:  ingestor,
		Answerer:  answerer,
		Reporter:  reporter,
		Documents: idx,
		UploadDir: cfg.Storage.UploadDir(),
	})

	// MCP server over stdio, alongside HTTP.
	mcpSrv := api.NewMCPServer(api.MCPDeps{
		Answerer:  answerer,
		Reporter:  reporter,
		Documents: idx,
	})
	stdioSrv := server.NewStdioServer(mcpSrv)
	go func() {
		if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("MCP stdio server error", "error", err)
		}
	}()

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("ragman listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
