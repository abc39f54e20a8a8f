package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/lexandro/mdindex/config"
	"github.com/lexandro/mdindex/docs"
	"github.com/lexandro/mdindex/render"
	"github.com/lexandro/mdindex/server"
	"github.com/lexandro/mdindex/tools"
	"github.com/lexandro/mdindex/web"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	// Setup logger (always to file or stderr, never to stdout - stdout is for MCP stdio)
	logger := setupLogger(cfg.LogLevel, cfg.LogFile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("mdindex stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting mdindex",
		"root", cfg.Root,
		"extensions", cfg.Extensions,
		"exclude", cfg.Exclude,
		"http", cfg.HTTPAddr,
		"mcp", cfg.MCP,
	)

	s, err := buildStack(cfg, logger)
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.performIndexing(ctx); err != nil {
		return err
	}
	s.startWatching(ctx)
	service := s.newService()

	group, ctx := errgroup.WithContext(ctx)

	if cfg.ResyncInterval > 0 {
		group.Go(func() error {
			runPeriodicSync(ctx, cfg.ResyncInterval, s.fileIndex, s.scanner, logger)
			return nil
		})
	}

	if cfg.HTTPAddr != "" {
		handler, err := newHTTPHandler(service, logger)
		if err != nil {
			return err
		}
		httpServer := web.NewServer(cfg.HTTPAddr, handler, logger)
		group.Go(func() error {
			return httpServer.Run(ctx)
		})
	}

	if cfg.MCP {
		mcpServer := newMCPServer(service, logger)
		group.Go(func() error {
			logger.Info("MCP server starting on stdio")
			err := mcpServer.Run(ctx, &mcp.StdioTransport{})
			if err != nil && ctx.Err() == nil {
				return fmt.Errorf("mcp server: %w", err)
			}
			return nil
		})
	}

	err = group.Wait()
	logger.Info("mdindex shut down")
	return err
}

func newHTTPHandler(service *docs.Service, logger *slog.Logger) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)

	renderer, err := render.New("")
	if err != nil {
		return nil, fmt.Errorf("creating renderer: %w", err)
	}
	validator, err := web.NewValidator(logger)
	if err != nil {
		return nil, fmt.Errorf("creating validator: %w", err)
	}
	return web.NewRouter(logger, service, renderer, validator), nil
}

func newMCPServer(service *docs.Service, logger *slog.Logger) *mcp.Server {
	return server.Setup(
		&tools.SearchHandler{Service: service, Logger: logger},
		&tools.ListHandler{Service: service, Logger: logger},
		&tools.ReadHandler{Service: service, Logger: logger},
		&tools.StatusHandler{Service: service, Logger: logger},
		&tools.ReindexHandler{DoReindex: service.Reindex, Logger: logger},
	)
}

// setupLogger creates an slog.Logger writing to stderr or a file.
func setupLogger(level string, logFile string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	var writer *os.File
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cannot open log file %s: %v, falling back to stderr\n", logFile, err)
			writer = os.Stderr
		} else {
			writer = f
		}
	} else {
		writer = os.Stderr
	}

	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{Level: logLevel})
	return slog.New(handler)
}
