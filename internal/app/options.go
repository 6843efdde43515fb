package service

import (
	"github.com/ravushimo/gunsmoke-scanner/internal/adapters/export"
	"github.com/ravushimo/gunsmoke-scanner/internal/domain/model"
	"github.com/ravushimo/gunsmoke-scanner/internal/domain/season"
	"github.com/ravushimo/gunsmoke-scanner/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of capture workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithLayout sets the initial capture layout.
func WithLayout(layout model.Layout) Option {
	return func(s *Service) {
		s.layout = layout
	}
}

// WithValidation sets the per-row acceptance rules.
func WithValidation(minNicknameLength, minTotalScore int) Option {
	return func(s *Service) {
		if minNicknameLength >= 0 {
			s.minNickname = minNicknameLength
		}
		if minTotalScore >= 0 {
			s.minTotal = minTotalScore
		}
	}
}

// WithDuplicateWindow sets how many trailing buffer entries a batch is
// checked against. Non-positive checks the whole buffer.
func WithDuplicateWindow(window int) Option {
	return func(s *Service) {
		s.dupWindow = window
	}
}

// WithRequireActiveSeason rejects capture requests during a season break.
func WithRequireActiveSeason(required bool) Option {
	return func(s *Service) {
		s.requireActive = required
	}
}

// WithExporter sets the CSV snapshot writer.
func WithExporter(w *export.Writer) Option {
	return func(s *Service) {
		if w != nil {
			s.exporter = w
		}
	}
}

// WithGuildRank sets the guild rank written into streamed CSV snapshots.
func WithGuildRank(value string) Option {
	return func(s *Service) {
		s.guildRank = value
	}
}

// WithTracker sets the season tracker.
func WithTracker(t *season.Tracker) Option {
	return func(s *Service) {
		if t != nil {
			s.tracker = t
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
