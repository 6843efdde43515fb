package main

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ravushimo/gunsmoke-scanner/internal/adapters/export"
	"github.com/ravushimo/gunsmoke-scanner/internal/adapters/http/api"
	"github.com/ravushimo/gunsmoke-scanner/internal/adapters/http/swagger"
	"github.com/ravushimo/gunsmoke-scanner/internal/adapters/ocr"
	"github.com/ravushimo/gunsmoke-scanner/internal/adapters/screen"
	"github.com/ravushimo/gunsmoke-scanner/internal/adapters/vision"
	app "github.com/ravushimo/gunsmoke-scanner/internal/app"
	"github.com/ravushimo/gunsmoke-scanner/internal/config"
	"github.com/ravushimo/gunsmoke-scanner/internal/domain/extract"
	"github.com/ravushimo/gunsmoke-scanner/internal/domain/pipeline"
	"github.com/ravushimo/gunsmoke-scanner/pkg/logger"
	"github.com/ravushimo/gunsmoke-scanner/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 30 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> file -> env). A missing or invalid
	// layout is fatal.
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	metrics.Init(metricsOptions(cfg.Metrics)...)

	if err := run(ctx, cfg); err != nil {
		log.Error(ctx, "scanner stopped with error", logger.Error(err))
		stop()
		os.Exit(1)
	}
	log.Info(ctx, "scanner stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	capturer := screen.NewCapturer(screen.NewDisplay(), screen.WithTimeout(cfg.RegionTimeout()))
	if w, h := capturer.ScreenSize(); len(cfg.ScreenResolution) == 2 &&
		(cfg.ScreenResolution[0] != w || cfg.ScreenResolution[1] != h) {
		log.Warn(ctx, "screen resolution differs from the recorded layout",
			logger.Any("configured", cfg.ScreenResolution), logger.Int("width", w), logger.Int("height", h))
	}

	engine, err := ocr.New(cfg.OCRLanguages)
	if err != nil {
		return err
	}
	defer func() { _ = engine.Close() }()

	kernel := cfg.Preprocessing.KernelSize
	extractor := extract.New(
		vision.New(
			vision.WithThreshold(cfg.Preprocessing.Threshold),
			vision.WithCloseKernel(kernel[0], kernel[1]),
		),
		engine,
	)

	svc := newService(cfg, capturer, extractor)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           routes(ctx, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info(gctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info(gctx, "shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		startServiceMetricsUpdater(gctx, svc)
		return nil
	})

	if path, _ := config.Path(); fileExists(path) {
		err := config.Watch(gctx, path, func(next *config.Config) {
			svc.SetLayout(next.Layout())
			if err := logger.SetLevelString(next.LogLevel); err != nil {
				log.Warn(gctx, "invalid log_level in reload", logger.String("log_level", next.LogLevel))
			}
		})
		if err != nil {
			log.Warn(gctx, "config hot reload disabled", logger.Error(err))
		}
	}

	return g.Wait()
}

// newService builds the scanner service from configuration.
func newService(cfg *config.Config, capturer pipeline.Capturer, extractor pipeline.Extractor) *app.Service {
	return app.New(capturer, extractor,
		app.WithLayout(cfg.Layout()),
		app.WithWorkerCount(cfg.Capture.WorkerCount),
		app.WithValidation(cfg.Validation.MinNicknameLength, cfg.Validation.MinTotalScore),
		app.WithDuplicateWindow(cfg.Validation.MaxDuplicateCheck),
		app.WithRequireActiveSeason(cfg.Capture.RequireActiveSeason),
		app.WithGuildRank(cfg.Export.GuildRank),
		app.WithExporter(export.NewWriter(
			export.WithDir(cfg.Export.Dir),
			export.WithPrefix(cfg.Export.Prefix),
			export.WithGuildRank(cfg.Export.GuildRank),
		)),
	)
}

// metricsOptions maps the metrics config onto collector options.
func metricsOptions(m config.Metrics) []metrics.Option {
	return []metrics.Option{
		metrics.WithMetricsEnabled(m.Enabled),
		metrics.WithNamespace(m.Namespace),
		metrics.WithSubsystem(m.Subsystem),
		metrics.WithMetricPrefix(m.Prefix),
		metrics.WithCustomLabels(m.Labels),
		metrics.WithHistogramBuckets(m.Buckets),
	}
}

// routes registers the API and its docs on a new mux.
func routes(ctx context.Context, svc *app.Service) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc).Register(ctx, mux)
	return mux
}

// startServiceMetricsUpdater refreshes gauges derived from service stats.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()
	if records, ok := stats["records"].(int); ok {
		metrics.UpdateBufferSize(records)
	}
	if queueLen, ok := stats["queueLength"].(int); ok {
		metrics.UpdateQueueSize(queueLen)
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}
