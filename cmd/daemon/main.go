package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/genricoloni/coverring/internal/config"
	"github.com/genricoloni/coverring/internal/domain"
	"github.com/genricoloni/coverring/internal/engine"
	"github.com/genricoloni/coverring/internal/estimator"
	"github.com/genricoloni/coverring/internal/fetcher"
	"github.com/genricoloni/coverring/internal/monitor"
	"github.com/genricoloni/coverring/internal/panel"
	"github.com/genricoloni/coverring/internal/processor"
	"github.com/genricoloni/coverring/internal/renderer"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// AppOptions is the complete dependency graph of the daemon
var AppOptions = fx.Options(
	fx.Provide(
		newLogger,
		monitor.NewScreenResolution,
		fx.Annotate(config.NewAppConfig, fx.As(new(domain.Config))),
		fx.Annotate(monitor.NewMprisMonitor, fx.As(new(domain.Monitor))),
		fx.Annotate(fetcher.NewHTTPFetcher, fx.As(new(domain.Fetcher))),
		fx.Annotate(processor.NewArtworkProcessor, fx.As(new(domain.Processor))),
		fx.Annotate(panel.NewHost, fx.As(new(domain.Panel))),
		newRenderer,
		newEstimator,
		engine.NewEngine,
	),

	// Lifecycle hooks
	fx.Invoke(registerHooks),
)

func main() {
	app := fx.New(
		// Logger configuration
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		AppOptions,
	)

	// Handle graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		panic(err)
	}

	// Wait for interrupt signal
	<-ctx.Done()

	if err := app.Stop(context.Background()); err != nil {
		panic(err)
	}
}

// newLogger creates a new zap logger instance
func newLogger() (*zap.Logger, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return logger, nil
}

// newRenderer sizes the progress border to the configured panel
func newRenderer(logger *zap.Logger, cfg domain.Config) *renderer.Renderer {
	size := cfg.GetPanelSize()
	return renderer.New(logger, size, size, cfg.GetCornerRadius(), cfg.GetBorderThickness(), renderer.Style{
		Fill:  cfg.GetFillColor(),
		Track: cfg.GetTrackColor(),
	})
}

// newEstimator interpolates between position polls
func newEstimator(logger *zap.Logger, cfg domain.Config) *estimator.Estimator {
	return estimator.New(logger, cfg.GetPollInterval())
}

// registerHooks sets up application lifecycle hooks
func registerHooks(lc fx.Lifecycle, logger *zap.Logger, eng *engine.Engine) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("Coverring Daemon Started")
			return eng.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Shutting down")
			err := eng.Stop(ctx)
			_ = logger.Sync()
			return err
		},
	})
}
