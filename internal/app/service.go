// Package service wires the capture pipeline, its job queue and the capture
// buffer into the operations the HTTP API exposes.
package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	eventqueue "github.com/ravushimo/gunsmoke-scanner/internal/adapters/mq/queue"
	workerpool "github.com/ravushimo/gunsmoke-scanner/internal/adapters/mq/worker"
	"github.com/ravushimo/gunsmoke-scanner/internal/adapters/export"
	"github.com/ravushimo/gunsmoke-scanner/internal/adapters/repository"
	"github.com/ravushimo/gunsmoke-scanner/internal/domain/dedupe"
	"github.com/ravushimo/gunsmoke-scanner/internal/domain/model"
	"github.com/ravushimo/gunsmoke-scanner/internal/domain/pipeline"
	"github.com/ravushimo/gunsmoke-scanner/internal/domain/season"
	"github.com/ravushimo/gunsmoke-scanner/pkg/logger"
	"github.com/ravushimo/gunsmoke-scanner/pkg/metrics"
)

const (
	stopTimeout = 10 * time.Second
	// jobCapacity is one: the busy guard admits a single accepted job until
	// its cycle finishes or the job is dropped.
	jobCapacity = 1
)

// Service implements the API dependencies for the scanner.
type Service struct {
	mu sync.RWMutex

	// Core components
	capturer  pipeline.Capturer
	extractor pipeline.Extractor
	store     *repository.BufferStore
	orch      *pipeline.Orchestrator
	tracker   *season.Tracker
	exporter  *export.Writer
	queue     *eventqueue.InMemoryQueue
	pool      *workerpool.Pool

	// Configuration
	layout        model.Layout
	workerCount   int
	minNickname   int
	minTotal      int
	dupWindow     int
	requireActive bool
	guildRank     string

	// State
	started  bool
	runCtx   context.Context
	cancel   context.CancelFunc
	captures atomic.Int64

	logger logger.Logger
}

// New constructs a Service around the screen capturer and text extractor.
func New(capturer pipeline.Capturer, extractor pipeline.Extractor, opts ...Option) *Service {
	s := &Service{
		capturer:    capturer,
		extractor:   extractor,
		store:       repository.NewBufferStore(),
		tracker:     season.NewTracker(),
		exporter:    export.NewWriter(),
		workerCount: 1,
		minNickname: pipeline.DefaultMinNicknameLength,
		dupWindow:   dedupe.DefaultWindow,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.orch = pipeline.New(s.capturer, s.extractor, s.store, s.layout,
		pipeline.WithMinNicknameLength(s.minNickname),
		pipeline.WithMinTotalScore(s.minTotal),
		pipeline.WithDeduper(dedupe.New(dedupe.WithWindow(s.dupWindow))),
	)
	return s
}

// Start creates the job queue and starts the capture workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.runCtx, s.cancel = context.WithCancel(ctx)
	s.queue = eventqueue.NewInMemoryQueue(
		eventqueue.WithCapacity(jobCapacity),
		eventqueue.WithDropHandler(s.drop),
	)
	s.pool = workerpool.NewPool(s.workerCount, s.queue, workerpool.HandlerFunc(s.handle))
	s.pool.Start(s.runCtx)

	s.started = true
	s.logger.Info(ctx, "scanner service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("duplicateWindow", s.dupWindow),
	)
	return nil
}

// Stop drains queued captures and stops the workers. Jobs that never reach
// a worker are dropped and release the busy guard.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping scanner service...")
	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Error(ctx, "worker pool shutdown failed", logger.Error(err))
	}
	s.cancel()
	if n := s.queue.Drain(); n > 0 {
		s.logger.Warn(ctx, "discarded pending capture jobs", logger.Int("jobs", n))
	}

	s.started = false
	s.logger.Info(ctx, "scanner service stopped")
}

// handle runs one queued capture job. Begin was already called when the job
// was accepted.
func (s *Service) handle(ctx context.Context, j model.CaptureJob) error {
	rep := s.orch.Cycle(ctx, j.ID, j.Season)
	s.captures.Add(1)
	s.logger.Debug(ctx, "capture job done",
		logger.String("id", j.ID),
		logger.Duration("queued", rep.Started.Sub(j.Requested)),
	)
	return nil
}

// drop releases the busy guard taken for a job that will never run.
func (s *Service) drop(j model.CaptureJob) {
	s.orch.Abort()
	metrics.RecordCaptureRejected("dropped")
	s.logger.Warn(context.Background(), "capture job dropped before running", logger.String("id", j.ID))
}

// RequestCapture accepts one capture cycle for asynchronous processing.
// A request while a cycle is queued or running is rejected with
// pipeline.ErrBusy and has no effect.
func (s *Service) RequestCapture(ctx context.Context) (model.CaptureJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started || s.runCtx.Err() != nil {
		return model.CaptureJob{}, ErrNotStarted
	}

	period := s.tracker.Current()
	if period.Phase == season.PhaseBreak {
		if s.requireActive {
			metrics.RecordCaptureRejected("season_inactive")
			return model.CaptureJob{}, pipeline.ErrSeasonInactive
		}
		s.logger.Warn(ctx, "capturing during season break", logger.Int("season", period.Number))
	}

	if !s.orch.Begin() {
		metrics.RecordCaptureRejected("busy")
		return model.CaptureJob{}, pipeline.ErrBusy
	}

	job := model.CaptureJob{ID: uuid.NewString(), Season: period.Number, Requested: time.Now()}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		s.orch.Abort()
		reason := "queue_closed"
		if errors.Is(err, eventqueue.ErrFull) {
			reason = "queue_full"
		}
		metrics.RecordCaptureRejected(reason)
		return model.CaptureJob{}, err
	}

	s.logger.Debug(ctx, "capture queued", logger.String("id", job.ID), logger.Int("season", job.Season))
	return job, nil
}

// CaptureNow runs one cycle synchronously on the caller's goroutine.
func (s *Service) CaptureNow(ctx context.Context) (pipeline.Report, error) {
	period := s.tracker.Current()
	if period.Phase == season.PhaseBreak && s.requireActive {
		metrics.RecordCaptureRejected("season_inactive")
		return pipeline.Report{}, pipeline.ErrSeasonInactive
	}
	rep, err := s.orch.Capture(ctx, period.Number)
	if err != nil {
		metrics.RecordCaptureRejected("busy")
		return rep, err
	}
	s.captures.Add(1)
	return rep, nil
}

// LastReport returns the most recent cycle report.
func (s *Service) LastReport() (pipeline.Report, bool) {
	return s.orch.Last()
}

// CaptureState reports whether a cycle is running.
func (s *Service) CaptureState() pipeline.State {
	return s.orch.State()
}

// Layout returns the active capture layout.
func (s *Service) Layout() model.Layout {
	return s.orch.Layout()
}

// SetLayout replaces the capture layout; the next cycle uses it.
func (s *Service) SetLayout(layout model.Layout) {
	s.orch.SetLayout(layout)
	s.logger.Info(context.Background(), "capture layout updated")
}

// Records returns the buffer in capture order.
func (s *Service) Records(ctx context.Context) []model.PlayerRecord {
	return s.store.Records(ctx)
}

// UpdateRecord replaces the buffered record at index.
func (s *Service) UpdateRecord(ctx context.Context, index int, r model.PlayerRecord) error {
	if err := s.store.Update(ctx, index, r); err != nil {
		return err
	}
	s.logger.Info(ctx, "record edited", logger.Int("index", index), logger.String("ign", r.IGN))
	return nil
}

// ClearRecords empties the buffer and returns how many records were removed.
func (s *Service) ClearRecords(ctx context.Context) int {
	n := s.store.Clear(ctx)
	s.logger.Info(ctx, "buffer cleared", logger.Int("removed", n))
	return n
}

// Export returns the ranked snapshot of the buffer.
func (s *Service) Export(ctx context.Context) []model.RankedRecord {
	rows := s.store.Export(ctx)
	metrics.RecordExport("json")
	return rows
}

// WriteCSV streams the ranked snapshot as CSV.
func (s *Service) WriteCSV(ctx context.Context, w io.Writer) error {
	rows := s.store.Export(ctx)
	if err := export.WriteCSV(w, rows, s.guildRank); err != nil {
		return err
	}
	metrics.RecordExport("csv")
	return nil
}

// SaveExport writes the ranked snapshot to a file for the current season.
func (s *Service) SaveExport(ctx context.Context) (string, error) {
	number := s.tracker.Current().Number
	path, err := s.exporter.Save(number, s.store.Export(ctx))
	if err != nil {
		return "", err
	}
	s.logger.Info(ctx, "export saved", logger.String("path", path), logger.Int("season", number))
	return path, nil
}

// Season returns the current season period.
func (s *Service) Season() season.Period {
	return s.tracker.Current()
}

// SetSeason pins the season number.
func (s *Service) SetSeason(number int) (season.Period, error) {
	if err := s.tracker.SetManual(number); err != nil {
		return season.Period{}, err
	}
	s.logger.Info(context.Background(), "season override set", logger.Int("season", number))
	return s.tracker.Current(), nil
}

// ClearSeason returns to the computed season.
func (s *Service) ClearSeason() season.Period {
	s.tracker.ClearManual()
	return s.tracker.Current()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	period := s.tracker.Current()
	stats := map[string]interface{}{
		"started":         s.started,
		"state":           s.orch.State().String(),
		"workerCount":     s.workerCount,
		"captures":        s.captures.Load(),
		"records":         s.store.Count(ctx),
		"duplicateWindow": s.dupWindow,
		"season":          period.Number,
		"phase":           string(period.Phase),
		"manualSeason":    period.Manual,
	}
	if s.started {
		stats["queueLength"] = s.queue.Len(ctx)
	}
	return stats
}
