package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"

	"github.com/backlogpilot/backlogpilot/internal/api"
	"github.com/backlogpilot/backlogpilot/internal/config"
	"github.com/backlogpilot/backlogpilot/internal/groom"
	"github.com/backlogpilot/backlogpilot/internal/health"
	"github.com/backlogpilot/backlogpilot/internal/jira"
	"github.com/backlogpilot/backlogpilot/internal/llm"
	"github.com/backlogpilot/backlogpilot/internal/metrics"
	"github.com/backlogpilot/backlogpilot/internal/notify"
	"github.com/backlogpilot/backlogpilot/internal/store"
)

func main() {
	// Setup structured logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).With().Timestamp().Caller().Logger()

	if os.Getenv("ENVIRONMENT") == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	log.Logger = logger

	// Load config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Set log level
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	logger.Info().
		Str("environment", cfg.Environment).
		Str("listen_addr", cfg.ListenAddr).
		Bool("grooming_enabled", cfg.GroomingEnabled()).
		Bool("slack_enabled", cfg.SlackEnabled()).
		Msg("starting backlogpilot")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Persistence
	st, err := store.New(cfg.DBPath, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open store")
	}
	defer st.Close()

	// Tracker client
	tracker, err := jira.NewClient(jira.Config{
		BaseURL:  cfg.JiraBaseURL,
		Email:    cfg.JiraAPIEmail,
		APIToken: cfg.JiraAPIToken,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init tracker client")
	}
	logger.Info().Str("base_url", cfg.JiraBaseURL).Msg("tracker client initialized")

	// Health checker
	checker := health.NewChecker(logger)
	checker.Register("store", func(ctx context.Context) health.Status {
		if err := st.Ping(ctx); err != nil {
			return health.StatusDown
		}
		return health.StatusOK
	})
	checker.Register("tracker", func(ctx context.Context) health.Status {
		if _, err := tracker.Myself(ctx); err != nil {
			return health.StatusDown
		}
		return health.StatusOK
	})

	// Groomer (optional; endpoints return 503 without it)
	var groomer *groom.Groomer
	if cfg.GroomingEnabled() {
		prompts := groom.DefaultPrompts()
		if cfg.PromptFile != "" {
			prompts, err = groom.LoadPrompts(cfg.PromptFile)
			if err != nil {
				logger.Fatal().Err(err).Str("path", cfg.PromptFile).Msg("failed to load prompt overrides")
			}
		}
		provider := llm.NewAnthropicProvider(cfg.AnthropicAPIKey, logger,
			llm.WithModel(cfg.AnthropicModel),
			llm.WithMaxTokens(cfg.GroomMaxTokens),
		)
		groomer = groom.NewGroomer(provider, prompts, logger)
		logger.Info().Str("model", provider.ModelID()).Msg("groomer initialized")
	} else {
		logger.Info().Msg("no language model configured, grooming endpoints disabled")
	}

	// Slack notifications (optional)
	var notifier *notify.Notifier
	if cfg.SlackEnabled() {
		notifier = notify.New(slack.New(cfg.SlackBotToken), cfg.SlackChannel, logger)
		logger.Info().Str("channel", cfg.SlackChannel).Msg("slack notifications enabled")
	}

	m := metrics.New()
	tracker.SetObserver(m)

	handlers := api.NewHandlers(tracker, groomer, st, notifier, m, logger)
	server := api.NewServer(api.ServerConfig{
		ListenAddr: cfg.ListenAddr,
		Auth: api.AuthConfig{
			Mode:      cfg.AuthMode,
			APIKey:    cfg.APIKey,
			JWTSecret: cfg.JWTSecret,
		},
		CORSOrigins: cfg.CORSOrigins,
		ReadTimeout: cfg.RequestTimeout,
	}, handlers, checker, m, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Listen()
	}()

	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("api server error")
		}
	}

	if err := server.Shutdown(); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}
	logger.Info().Msg("stopped")
}
