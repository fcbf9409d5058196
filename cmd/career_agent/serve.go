package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-agent/internal/config"
	"github.com/jonathan/career-agent/internal/copilot"
	"github.com/jonathan/career-agent/internal/fetch"
	"github.com/jonathan/career-agent/internal/llm"
	"github.com/jonathan/career-agent/internal/prompts"
	"github.com/jonathan/career-agent/internal/review"
	"github.com/jonathan/career-agent/internal/server"
	"github.com/jonathan/career-agent/internal/session"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the diagnostic, refine, interview, review and copilot endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides server.port)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}

	if err := prompts.Check(); err != nil {
		return fmt.Errorf("prompt templates: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := llm.NewClient(ctx, cfg.ModelConfig(), cfg.APIKey(), log)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	janitor := session.NewJanitor(store, cfg.Session.JanitorSchedule, cfg.Session.TTL, log)
	if err := janitor.Start(ctx); err != nil {
		return fmt.Errorf("failed to start session janitor: %w", err)
	}
	defer janitor.Stop()

	srv := server.New(server.Config{
		Addr:           cfg.Addr(),
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RequestTimeout: cfg.Server.RequestTimeout,
		Copilot: copilot.Options{
			Temperature:  cfg.Chat.CopilotTemperature,
			HistoryLimit: cfg.Chat.CopilotHistoryLimit,
		},
		Review: review.Options{
			Temperature:  cfg.Chat.ReviewTemperature,
			HistoryLimit: cfg.Chat.ReviewHistoryLimit,
		},
		Fetch: fetch.Options{
			Timeout:    cfg.Fetch.Timeout,
			UseBrowser: cfg.Fetch.UseBrowser,
			Logger:     log,
		},
	}, store, client, log)

	log.Info("starting server", "addr", cfg.Addr(), "provider", client.Name(), "store", cfg.Session.Store)
	return srv.Run(ctx)
}

// openStore connects the configured session backend.
func openStore(ctx context.Context, cfg *config.Config) (session.Store, error) {
	switch cfg.Session.Store {
	case config.StorePostgres:
		store, err := session.NewPostgresStore(ctx, cfg.Session.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres session store: %w", err)
		}
		return store, nil
	case config.StoreRedis:
		rdb, err := session.NewRedisClient(ctx, cfg.Session.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open redis session store: %w", err)
		}
		return session.NewRedisStore(rdb, cfg.Session.TTL), nil
	default:
		slog.Warn("using in-memory session store; sessions are lost on restart")
		return session.NewMemoryStore(), nil
	}
}
