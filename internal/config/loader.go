package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/ravushimo/gunsmoke-scanner/internal/domain/model"
)

const (
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "GUNSMOKE_"
	// EnvConfigPath names the variable holding the YAML file path.
	EnvConfigPath = EnvPrefix + "CONFIG"
	// DefaultPath is read when EnvConfigPath is unset and the file exists.
	DefaultPath = "config.yaml"
)

// Path returns the config file path and whether it was set explicitly.
func Path() (string, bool) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, true
	}
	return DefaultPath, false
}

// Load builds a Config by layering defaults, the YAML file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) from GUNSMOKE_CONFIG, or ./config.yaml when present
//  3. env (prefix GUNSMOKE_, "__" separates nested keys)
func Load(ctx context.Context) (*Config, error) {
	path, explicit := Path()
	if !explicit {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			path = ""
		}
	}
	return LoadFile(ctx, path)
}

// LoadFile is Load with an explicit file path. An empty path skips the file layer.
func LoadFile(ctx context.Context, path string) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// GUNSMOKE_CAPTURE__WORKER_COUNT -> capture.worker_count. Single underscores
	// are kept so keys match the koanf tags on the struct.
	envProvider := env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		if key == "config" {
			return "", nil
		}
		key = strings.ReplaceAll(key, "__", ".")
		if strings.Contains(value, ",") {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			return key, parts
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	cfg.OCRLanguages = nil
	cfg.Preprocessing.KernelSize = nil
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	fillSlices(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// WriteDefault writes a starter YAML file with defaults and a layout centred
// on a w x h screen. Existing files are not overwritten.
func WriteDefault(ctx context.Context, path string, w, h int) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s already exists", ErrLoadConfig, path)
	}
	c := New(ctx)

	rows := make([]map[string]interface{}, 0, model.RowsPerCapture)
	for _, r := range DefaultRows(w, h) {
		rows = append(rows, map[string]interface{}{
			"nickname":    r.Nickname,
			"single_high": r.SingleHigh,
			"total_score": r.TotalScore,
		})
	}

	k := koanf.New(".")
	values := map[string]interface{}{
		"log_level":                      c.LogLevel,
		"log_format":                     c.LogFormat,
		"addr":                           c.Addr,
		"screen_resolution":              []int{w, h},
		"ocr_languages":                  c.OCRLanguages,
		"preprocessing.threshold":        c.Preprocessing.Threshold,
		"preprocessing.kernel_size":      c.Preprocessing.KernelSize,
		"preprocessing.adaptive":         c.Preprocessing.Adaptive,
		"validation.min_nickname_length": c.Validation.MinNicknameLength,
		"validation.min_total_score":     c.Validation.MinTotalScore,
		"validation.max_duplicate_check": c.Validation.MaxDuplicateCheck,
		"capture.region_timeout_ms":      c.Capture.RegionTimeoutMS,
		"capture.worker_count":           c.Capture.WorkerCount,
		"capture.require_active_season":  c.Capture.RequireActiveSeason,
		"export.dir":                     c.Export.Dir,
		"export.prefix":                  c.Export.Prefix,
		"export.guild_rank":              c.Export.GuildRank,
		"metrics.enabled":                c.Metrics.Enabled,
		"metrics.namespace":              c.Metrics.Namespace,
		"metrics.subsystem":              c.Metrics.Subsystem,
		"rows":                           rows,
	}
	for key, v := range values {
		if err := k.Set(key, v); err != nil {
			return fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	b, err := k.Marshal(yaml.Parser())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	return nil
}
