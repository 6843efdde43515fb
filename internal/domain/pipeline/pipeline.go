// Package pipeline drives capture cycles over the configured leaderboard rows.
package pipeline

import (
	"context"
	"image"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/ravushimo/gunsmoke-scanner/internal/domain/dedupe"
	"github.com/ravushimo/gunsmoke-scanner/internal/domain/model"
	"github.com/ravushimo/gunsmoke-scanner/internal/domain/normalize"
	"github.com/ravushimo/gunsmoke-scanner/pkg/logger"
	"github.com/ravushimo/gunsmoke-scanner/pkg/metrics"
)

// DefaultMinNicknameLength is the shortest accepted nickname.
const DefaultMinNicknameLength = 2

// Capturer grabs a screen region; false means no valid pixels.
type Capturer interface {
	Capture(ctx context.Context, region model.ScreenRegion) (*image.RGBA, bool)
}

// Extractor reads text from captured pixels; "" on any failure.
type Extractor interface {
	Extract(ctx context.Context, img image.Image, wantDigits bool) string
}

// Buffer commits a batch atomically. merge sees the current buffer and returns
// the entries to append.
type Buffer interface {
	Commit(ctx context.Context, merge func(history []model.PlayerRecord) []model.PlayerRecord) []model.PlayerRecord
}

// State is the orchestrator's capture state.
type State int32

const (
	StateIdle State = iota
	StateCapturing
)

func (s State) String() string {
	if s == StateCapturing {
		return "capturing"
	}
	return "idle"
}

// RowStatus is the outcome of one leaderboard row.
type RowStatus string

const (
	RowOK               RowStatus = "ok"
	RowCaptureFailed    RowStatus = "capture_failed"
	RowNicknameTooShort RowStatus = "nickname_too_short"
	RowBelowMinScore    RowStatus = "below_min_score"
	RowDuplicate        RowStatus = "duplicate"
)

// RowResult reports what happened to one row.
type RowResult struct {
	Row    int                 `json:"row"`
	Status RowStatus           `json:"status"`
	Field  string              `json:"field,omitempty"`
	Record *model.PlayerRecord `json:"record,omitempty"`
}

// Report summarizes one capture cycle.
type Report struct {
	ID       string               `json:"id"`
	Season   int                  `json:"season"`
	Started  time.Time            `json:"started"`
	Finished time.Time            `json:"finished"`
	Rows     []RowResult          `json:"rows"`
	Batch    []model.PlayerRecord `json:"batch"`
	Kept     []model.PlayerRecord `json:"kept"`
	Dropped  []model.PlayerRecord `json:"dropped"`
}

// Orchestrator runs capture cycles one at a time and commits their batches to
// the buffer it owns.
type Orchestrator struct {
	capturer  Capturer
	extractor Extractor
	store     Buffer
	deduper   *dedupe.Deduper

	minNickname int
	minTotal    int

	layoutMu sync.RWMutex
	layout   model.Layout

	state atomic.Int32

	lastMu sync.RWMutex
	last   *Report

	now    func() time.Time
	logger logger.Logger
}

// New creates an orchestrator for layout.
func New(capturer Capturer, extractor Extractor, store Buffer, layout model.Layout, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		capturer:    capturer,
		extractor:   extractor,
		store:       store,
		deduper:     dedupe.New(),
		minNickname: DefaultMinNicknameLength,
		layout:      layout,
		now:         time.Now,
		logger:      logger.Get().Named("pipeline"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State reports whether a cycle is running.
func (o *Orchestrator) State() State {
	return State(o.state.Load())
}

// Begin moves from Idle to Capturing. It returns false when a cycle is
// already running; the caller must then not call Cycle.
func (o *Orchestrator) Begin() bool {
	return o.state.CompareAndSwap(int32(StateIdle), int32(StateCapturing))
}

// Abort returns to Idle without running a cycle.
func (o *Orchestrator) Abort() {
	o.state.Store(int32(StateIdle))
}

// Capture runs one cycle synchronously, or returns ErrBusy.
func (o *Orchestrator) Capture(ctx context.Context, season int) (Report, error) {
	if !o.Begin() {
		return Report{}, ErrBusy
	}
	return o.Cycle(ctx, uuid.NewString(), season), nil
}

// Cycle runs one capture cycle after a successful Begin and returns to Idle.
// Row faults are reported in the result and never abort the cycle.
func (o *Orchestrator) Cycle(ctx context.Context, id string, season int) Report {
	defer o.Abort()

	if id == "" {
		id = uuid.NewString()
	}
	rep := Report{ID: id, Season: season, Started: o.now()}
	metrics.RecordCaptureStarted()

	layout := o.Layout()
	for i, row := range layout {
		res := o.processRow(ctx, i+1, row, season)
		if res.Status == RowOK {
			rep.Batch = append(rep.Batch, *res.Record)
		}
		rep.Rows = append(rep.Rows, res)
	}

	o.store.Commit(ctx, func(history []model.PlayerRecord) []model.PlayerRecord {
		rep.Kept, rep.Dropped = o.deduper.Filter(history, rep.Batch)
		return rep.Kept
	})
	o.markDuplicates(&rep)

	rep.Finished = o.now()
	metrics.RecordDedupDropped(len(rep.Dropped))
	metrics.RecordCaptureCompleted(float64(rep.Finished.Sub(rep.Started).Milliseconds()))

	o.logger.Info(ctx, "capture cycle finished",
		logger.String("id", rep.ID),
		logger.Int("season", season),
		logger.Int("batch", len(rep.Batch)),
		logger.Int("kept", len(rep.Kept)),
		logger.Int("dropped", len(rep.Dropped)))

	o.lastMu.Lock()
	o.last = &rep
	o.lastMu.Unlock()
	return rep
}

func (o *Orchestrator) processRow(ctx context.Context, idx int, row model.RowConfig, season int) RowResult {
	var pixels [len(model.Roles)]*image.RGBA
	for _, role := range model.Roles {
		img, ok := o.capturer.Capture(ctx, row.Region(role))
		if !ok {
			metrics.RecordRegionFailure(role.String())
			metrics.RecordRow(string(RowCaptureFailed))
			o.logger.Warn(ctx, "row skipped",
				logger.Int("row", idx),
				logger.String("field", role.String()),
				logger.String("reason", string(RowCaptureFailed)))
			return RowResult{Row: idx, Status: RowCaptureFailed, Field: role.String()}
		}
		pixels[role] = img
	}

	nickname := normalize.CleanNickname(o.extractor.Extract(ctx, pixels[model.FieldNickname], false))
	single := normalize.CleanNumber(o.extractor.Extract(ctx, pixels[model.FieldSingleHigh], true), true)
	total := normalize.CleanNumber(o.extractor.Extract(ctx, pixels[model.FieldTotalScore], true), false)

	rec := model.PlayerRecord{Season: season, IGN: nickname, TopScore: single, TotalScore: total}
	status := o.validate(rec)
	metrics.RecordRow(string(status))
	if status != RowOK {
		o.logger.Warn(ctx, "row skipped",
			logger.Int("row", idx),
			logger.String("nickname", nickname),
			logger.Int("total", total),
			logger.String("reason", string(status)))
		return RowResult{Row: idx, Status: status, Record: &rec}
	}

	o.logger.Debug(ctx, "row read",
		logger.Int("row", idx),
		logger.String("nickname", nickname),
		logger.Int("single", single),
		logger.Int("total", total))
	return RowResult{Row: idx, Status: RowOK, Record: &rec}
}

func (o *Orchestrator) validate(rec model.PlayerRecord) RowStatus {
	if utf8.RuneCountInString(rec.IGN) < o.minNickname || rec.IGN == "" {
		return RowNicknameTooShort
	}
	if rec.TotalScore < o.minTotal {
		return RowBelowMinScore
	}
	return RowOK
}

// markDuplicates flips rows whose record was filtered by the dedup window.
func (o *Orchestrator) markDuplicates(rep *Report) {
	dropped := len(rep.Dropped)
	for i := range rep.Rows {
		if dropped == 0 {
			return
		}
		r := &rep.Rows[i]
		if r.Status != RowOK {
			continue
		}
		for _, d := range rep.Dropped {
			if d.IGN == r.Record.IGN {
				r.Status = RowDuplicate
				dropped--
				break
			}
		}
	}
}

// Layout returns the active capture layout.
func (o *Orchestrator) Layout() model.Layout {
	o.layoutMu.RLock()
	defer o.layoutMu.RUnlock()
	return o.layout
}

// SetLayout replaces the capture layout; the next cycle uses it.
func (o *Orchestrator) SetLayout(layout model.Layout) {
	o.layoutMu.Lock()
	o.layout = layout
	o.layoutMu.Unlock()
}

// Last returns the most recent cycle report.
func (o *Orchestrator) Last() (Report, bool) {
	o.lastMu.RLock()
	defer o.lastMu.RUnlock()
	if o.last == nil {
		return Report{}, false
	}
	return *o.last, true
}
