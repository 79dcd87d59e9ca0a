// DokuWiki MCP Server - A Model Context Protocol server for DokuWiki
// Exposes page and media operations over the wiki's XML-RPC interface.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/olgasafonova/dokuwiki-tools/doku"
	apierrors "github.com/olgasafonova/dokuwiki-tools/internal/errors"
	"github.com/olgasafonova/dokuwiki-tools/tools"
	"github.com/olgasafonova/dokuwiki-tools/tracing"
)

const (
	ServerName    = "dokuwiki-mcp-server"
	ServerVersion = "1.0.0"
)

const instructions = `DokuWiki MCP Server reads and writes pages and media files on a DokuWiki instance.

Available tools:
- dokuwiki_get_page: Read a page's markup
- dokuwiki_put_page: Replace a page's markup (minor edit)
- dokuwiki_list_attachments: List media files in a namespace
- dokuwiki_get_attachment: Download a media file as base64
- dokuwiki_put_attachment: Upload a media file from base64

Page and media ids use colon-separated namespaces, e.g. wiki:start.

Configure via doku_config.txt (path in DOKUWIKI_CONFIG) or environment variables:
- DOKUWIKI_SERVER: Wiki root URL (e.g., https://wiki.example.com)
- DOKUWIKI_USER / DOKUWIKI_PASS: Account used for login`

func main() {
	// stdout carries the MCP protocol
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	config, err := loadConfig(getenv("DOKUWIKI_CONFIG", doku.DefaultConfigFile), logger)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := tracing.Setup(ctx, tracing.DefaultConfig())
	if err != nil {
		logger.Warn("Tracing disabled", "error", err)
	} else {
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(sctx); err != nil {
				logger.Warn("Tracing shutdown failed", "error", err)
			}
		}()
	}

	if addr := os.Getenv("METRICS_ADDR"); addr != "" {
		srv := newMetricsServer(addr)
		go func() {
			logger.Info("Serving metrics", "addr", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server failed", "error", err)
			}
		}()
		defer srv.Close()
	}

	client := doku.NewClient(config, logger)
	server := newServer(client, logger)

	logger.Info("Starting DokuWiki MCP Server",
		"name", ServerName,
		"version", ServerVersion,
		"endpoint", client.Endpoint(),
		"authenticated", config.HasCredentials(),
	)

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Server error: %v", err)
	}
}

// loadConfig reads the config file, tolerating its absence, then applies
// DOKUWIKI_* environment overrides.
func loadConfig(path string, logger *slog.Logger) (doku.Config, error) {
	config, err := doku.LoadConfig(path)
	if err != nil {
		if !apierrors.IsConfigMissing(err) {
			return doku.Config{}, err
		}
		logger.Debug("Config file not found, using defaults", "path", path)
	}
	return config.WithEnv(), nil
}

func newServer(client *doku.Client, logger *slog.Logger) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}, &mcp.ServerOptions{
		Logger:       logger,
		Instructions: instructions,
	})
	tools.NewHandlerRegistry(client, logger).RegisterAll(server)
	return server
}

func newMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
