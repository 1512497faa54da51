package cli

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/ticktui/ticktui/internal/callback"
	"github.com/ticktui/ticktui/internal/config"
	"github.com/ticktui/ticktui/internal/logging"
	"github.com/ticktui/ticktui/internal/metrics"
	"github.com/ticktui/ticktui/internal/oauth"
	"github.com/ticktui/ticktui/internal/store"
	"github.com/ticktui/ticktui/internal/ticktick"
	"github.com/ticktui/ticktui/internal/transport"
)

// app holds everything a command needs, built once per invocation from the
// loaded configuration.
type app struct {
	cfg     *config.Config
	logger  *logging.Logger
	metrics *metrics.Metrics
	store   store.Store
	engine  *oauth.Engine
	client  *ticktick.Client
}

func loadConfig() (*config.Config, error) {
	var loader *config.Loader
	if globalFlags.Config != "" {
		loader = config.NewLoader(globalFlags.Config)
	} else {
		loader = config.NewEnvLoader()
	}
	if globalFlags.Dev {
		loader.ForceDev()
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config) *logging.Logger {
	level := logging.ParseLevel(cfg.Log.Level)
	if globalFlags.Verbose {
		level = logging.LevelDebug
	}
	return logging.NewLogger(
		logging.WithOutput(cmd.ErrOrStderr()),
		logging.WithLevel(level),
		logging.WithFormat(logging.Format(cfg.Log.Format)),
	)
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger := newLogger(cmd, cfg)
	m := metrics.NewMetrics("ticktui")

	st, err := store.Open(cfg.Credentials, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}

	httpClient := transport.NewClient(transport.Options{
		Timeout:   cfg.API.Timeout,
		UserAgent: cfg.API.UserAgent,
		UTLS:      cfg.API.UTLS,
	})

	engine := oauth.NewEngine(cfg.OAuth, st, newAwaiter(cmd, cfg, logger, m),
		oauth.WithHTTPClient(httpClient),
		oauth.WithLogger(logger),
		oauth.WithMetrics(m),
	)
	client := ticktick.New(cfg,
		ticktick.WithHTTPClient(httpClient),
		ticktick.WithLogger(logger),
		ticktick.WithMetrics(m),
	)

	return &app{
		cfg:     cfg,
		logger:  logger,
		metrics: m,
		store:   st,
		engine:  engine,
		client:  client,
	}, nil
}

func newAwaiter(cmd *cobra.Command, cfg *config.Config, logger *logging.Logger, m *metrics.Metrics) oauth.RedirectAwaiter {
	if cfg.Callback.Mode == "listener" {
		return &callback.ListenerAwaiter{
			RedirectURL: cfg.OAuth.RedirectURL,
			Timeout:     cfg.Callback.Timeout,
			Out:         cmd.ErrOrStderr(),
			Logger:      logger,
			Metrics:     m,
		}
	}
	return &callback.PromptAwaiter{
		In:  cmd.InOrStdin(),
		Out: cmd.ErrOrStderr(),
	}
}

func (a *app) Close() error {
	if globalFlags.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(globalFlags.MetricsFile, a.metrics.Registry()); err != nil {
			a.logger.Warn("failed to write metrics file", "path", globalFlags.MetricsFile, "error", err)
		}
	}
	return a.store.Close()
}

// token returns an access token. The synthetic source ignores tokens, so dev
// mode never starts an authorization.
func (a *app) token(ctx context.Context) (string, error) {
	if a.cfg.Dev {
		return "", nil
	}
	return a.engine.GetAccessToken(ctx)
}

// withApp builds the app, runs fn under a fresh correlation id and closes
// the app afterwards.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			a.logger.Warn("failed to close credential store", "error", cerr)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logging.WithCorrelationID(ctx, logging.GenerateCorrelationID())
	return fn(ctx, a)
}
