// Package config defines scanner configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) initializer to build a Config with defaults.
// - Functions that touch the filesystem accept context.Context first.
// - External errors are wrapped with ErrLoadConfig or ErrInvalidConfig.
package config

import (
	"context"
	"time"

	"github.com/ravushimo/gunsmoke-scanner/internal/domain/model"
)

// Default values applied when a key is absent.
const (
	DefaultAddr              = ":9080"
	DefaultThreshold         = 150
	DefaultMinNicknameLength = 2
	DefaultMaxDuplicateCheck = 20
	DefaultRegionTimeoutMS   = 2000
	DefaultWorkerCount       = 1
	DefaultExportDir         = "./results"
	DefaultExportPrefix      = "Gunsmoke"
	DefaultMetricsNamespace  = "gunsmoke"
	DefaultMetricsSubsystem  = "scanner"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr" validate:"required"`

	// ScreenResolution is the [width, height] the layout was recorded at.
	// Optional; a mismatch with the live screen only produces a warning.
	ScreenResolution []int `koanf:"screen_resolution" validate:"omitempty,len=2,dive,gt=0"`

	// OCRLanguages lists recognition languages, e.g. ch_sim, en.
	OCRLanguages []string `koanf:"ocr_languages" validate:"min=1,dive,required"`

	Preprocessing Preprocessing `koanf:"preprocessing"`
	Validation    Validation    `koanf:"validation"`
	Capture       Capture       `koanf:"capture"`
	Export        Export        `koanf:"export"`
	Metrics       Metrics       `koanf:"metrics"`

	// Rows holds exactly five leaderboard rows of three regions each.
	Rows []RowSpec `koanf:"rows" validate:"required,len=5,dive"`
}

// Preprocessing tunes image binarization before OCR.
type Preprocessing struct {
	Threshold  int   `koanf:"threshold" validate:"gte=0,lte=255"`
	KernelSize []int `koanf:"kernel_size" validate:"len=2,dive,gt=0"`

	// Adaptive is accepted for compatibility; extraction always starts adaptive.
	Adaptive bool `koanf:"adaptive"`
}

// Validation holds per-row acceptance rules.
type Validation struct {
	MinNicknameLength int `koanf:"min_nickname_length" validate:"gte=0"`
	MinTotalScore     int `koanf:"min_total_score" validate:"gte=0"`
	// MaxDuplicateCheck is the trailing dedup window; non-positive means the whole buffer.
	MaxDuplicateCheck int `koanf:"max_duplicate_check"`
}

// Capture configures the capture cycle runner. There is no queue size: the
// busy guard admits one pending job at a time.
type Capture struct {
	RegionTimeoutMS     int  `koanf:"region_timeout_ms" validate:"gt=0"`
	WorkerCount         int  `koanf:"worker_count" validate:"gt=0"`
	RequireActiveSeason bool `koanf:"require_active_season"`
}

// Export configures CSV snapshots.
type Export struct {
	Dir       string `koanf:"dir" validate:"required"`
	Prefix    string `koanf:"prefix" validate:"required"`
	GuildRank string `koanf:"guild_rank"`
}

// Metrics shapes the prometheus collectors served on /healthz.
type Metrics struct {
	Enabled   bool              `koanf:"enabled"`
	Namespace string            `koanf:"namespace" validate:"omitempty,metricname"`
	Subsystem string            `koanf:"subsystem" validate:"omitempty,metricname"`
	Prefix    string            `koanf:"prefix" validate:"omitempty,metricname"`
	Labels    map[string]string `koanf:"labels" validate:"omitempty,dive,keys,metricname,endkeys"`

	// Buckets are the latency histogram bounds in milliseconds.
	Buckets []float64 `koanf:"buckets" validate:"omitempty,ascending,dive,gt=0"`
}

// RowSpec holds [x, y, width, height] for each field of one row.
type RowSpec struct {
	Nickname   []int `koanf:"nickname" yaml:"nickname" validate:"region"`
	SingleHigh []int `koanf:"single_high" yaml:"single_high" validate:"region"`
	TotalScore []int `koanf:"total_score" yaml:"total_score" validate:"region"`
}

// New creates a Config with defaults. Rows have no default and must come
// from the file; see DefaultRows for a starting layout.
func New(_ context.Context) *Config {
	c := &Config{
		LogLevel:  "info",
		LogFormat: "text",
		Addr:      DefaultAddr,
		Preprocessing: Preprocessing{
			Threshold: DefaultThreshold,
			Adaptive:  true,
		},
		Validation: Validation{
			MinNicknameLength: DefaultMinNicknameLength,
			MaxDuplicateCheck: DefaultMaxDuplicateCheck,
		},
		Capture: Capture{
			RegionTimeoutMS: DefaultRegionTimeoutMS,
			WorkerCount:     DefaultWorkerCount,
		},
		Export: Export{
			Dir:    DefaultExportDir,
			Prefix: DefaultExportPrefix,
		},
		Metrics: Metrics{
			Enabled:   true,
			Namespace: DefaultMetricsNamespace,
			Subsystem: DefaultMetricsSubsystem,
		},
	}
	fillSlices(c)
	return c
}

// fillSlices sets slice defaults. Slices are filled after unmarshal because
// decoding into a pre-populated slice keeps stale trailing elements.
func fillSlices(c *Config) {
	if len(c.OCRLanguages) == 0 {
		c.OCRLanguages = []string{"ch_sim", "en"}
	}
	if len(c.Preprocessing.KernelSize) == 0 {
		c.Preprocessing.KernelSize = []int{2, 2}
	}
}

// RegionTimeout returns the per-region capture timeout.
func (c *Config) RegionTimeout() time.Duration {
	return time.Duration(c.Capture.RegionTimeoutMS) * time.Millisecond
}

// Layout converts the validated row specs into the capture layout.
// Call only on a Config that passed Validate.
func (c *Config) Layout() model.Layout {
	var l model.Layout
	for i := range l {
		if i >= len(c.Rows) {
			break
		}
		r := c.Rows[i]
		l[i] = model.RowConfig{
			Nickname:   region(r.Nickname),
			SingleHigh: region(r.SingleHigh),
			TotalScore: region(r.TotalScore),
		}
	}
	return l
}

func region(v []int) model.ScreenRegion {
	if len(v) != 4 {
		return model.ScreenRegion{}
	}
	return model.ScreenRegion{X: v[0], Y: v[1], Width: v[2], Height: v[3]}
}

// DefaultRows builds a placeholder layout centred on a w x h screen:
// five rows 60px apart around the middle, nickname left of the two scores.
func DefaultRows(w, h int) []RowSpec {
	cx, cy := w/2, h/2
	rows := make([]RowSpec, model.RowsPerCapture)
	for i := range rows {
		y := cy + i*60 - 120
		rows[i] = RowSpec{
			Nickname:   []int{cx - 400, y, 300, 50},
			SingleHigh: []int{cx - 50, y, 200, 50},
			TotalScore: []int{cx + 200, y, 200, 50},
		}
	}
	return rows
}
