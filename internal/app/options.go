package service

import (
	"slices"

	"github.com/okian/vero/internal/adapters/repository"
	"github.com/okian/vero/internal/domain/phv"
	"github.com/okian/vero/internal/domain/windows"
	"github.com/okian/vero/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStore sets the athlete store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithEstimator sets the PHV estimator.
func WithEstimator(est phv.Estimator) Option {
	return func(s *Service) {
		if est != nil {
			s.estimator = est
		}
	}
}

// WithDefinitions replaces the sensitive-window definitions. Invalid sets
// are ignored.
func WithDefinitions(defs []windows.Definition) Option {
	return func(s *Service) {
		if len(defs) > 0 && windows.Validate(defs) == nil {
			s.definitions = slices.Clone(defs)
		}
	}
}

// WithStaleAfterMonths sets the freshness threshold.
func WithStaleAfterMonths(months int) Option {
	return func(s *Service) {
		if months >= 0 {
			s.staleAfterMonths = months
		}
	}
}
