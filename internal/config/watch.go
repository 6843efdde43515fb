package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/knadh/koanf/providers/file"

	"github.com/ravushimo/gunsmoke-scanner/pkg/logger"
)

// Watch reloads path whenever it changes and hands every valid result to fn.
// Invalid reloads are logged and skipped so the running config stays in
// effect. Watching stops when ctx is done.
func Watch(ctx context.Context, path string, fn func(*Config)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWatchConfig, err)
	}
	log := logger.Get().Named("config")

	fp := file.Provider(abs)
	err = fp.Watch(func(_ interface{}, werr error) {
		if werr != nil {
			log.Warn(ctx, "config watch stopped", logger.String("path", abs), logger.Error(werr))
			return
		}
		cfg, lerr := LoadFile(ctx, abs)
		if lerr != nil {
			log.Warn(ctx, "ignoring invalid config reload", logger.String("path", abs), logger.Error(lerr))
			return
		}
		log.Info(ctx, "config reloaded", logger.String("path", abs))
		fn(cfg)
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWatchConfig, err)
	}

	go func() {
		<-ctx.Done()
		_ = fp.Unwatch()
	}()
	return nil
}
