// Package service ties athlete storage to PHV estimation, window evaluation
// and advice. Every read recomputes from the stored measurements; nothing
// derived is cached.
package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/okian/vero/internal/adapters/repository"
	"github.com/okian/vero/internal/domain/advice"
	"github.com/okian/vero/internal/domain/calendar"
	"github.com/okian/vero/internal/domain/growth"
	"github.com/okian/vero/internal/domain/model"
	"github.com/okian/vero/internal/domain/phv"
	"github.com/okian/vero/internal/domain/windows"
	"github.com/okian/vero/pkg/logger"
	"github.com/okian/vero/pkg/metrics"
)

// Service implements athlete growth tracking and assessment.
type Service struct {
	// mu serialises read-modify-write updates against the store.
	mu sync.Mutex

	store       repository.Store
	estimator   phv.Estimator
	definitions []windows.Definition

	staleAfterMonths int

	logger logger.Logger
}

// Assessment is the full growth picture for one athlete on one day.
type Assessment struct {
	AthleteID string
	Name      string
	On        calendar.Date
	AgeYears  int

	PHV     phv.EffectivePHV
	Windows windows.Evaluation

	// MonthsSinceLastSample is meaningful only when HasSamples is true.
	MonthsSinceLastSample int
	HasSamples            bool
	Freshness             growth.Freshness

	Reasons  []advice.Reason
	Messages []string
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		store:            repository.NewInMemoryStore(),
		estimator:        phv.NewHeuristicEstimator(),
		definitions:      windows.Defaults(),
		staleAfterMonths: growth.DefaultStaleAfterMonths,
		logger:           logger.Nop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Definitions returns a copy of the window definitions in use.
func (s *Service) Definitions() []windows.Definition {
	return slices.Clone(s.definitions)
}

// AddAthlete validates and stores a new athlete. An empty ID is assigned.
// Returns repository.ErrDuplicateID when the ID is already taken.
func (s *Service) AddAthlete(ctx context.Context, a model.Athlete) (model.Athlete, error) {
	if err := validateAthlete(a); err != nil {
		return model.Athlete{}, err
	}

	saved, err := s.store.Insert(ctx, a)
	if err != nil {
		return model.Athlete{}, fmt.Errorf("add athlete: %w", err)
	}

	s.logger.Debug(ctx, "athlete added",
		logger.String("athlete", saved.ID),
		logger.Int("samples", len(saved.Samples)),
	)
	return saved, nil
}

// Import adds a whole roster or nothing. Every record is validated before
// the first one is stored; if a later insert fails, the athletes already
// stored by this call are removed again. It returns how many were added.
func (s *Service) Import(ctx context.Context, athletes []model.Athlete) (int, error) {
	seen := make(map[string]int, len(athletes))
	for i, a := range athletes {
		if err := validateAthlete(a); err != nil {
			return 0, fmt.Errorf("import athlete %d (%s): %w", i, a.Name, err)
		}
		if a.ID == "" {
			continue
		}
		if j, dup := seen[a.ID]; dup {
			return 0, fmt.Errorf("import athlete %d (%s): %w: %s already used by athlete %d",
				i, a.Name, repository.ErrDuplicateID, a.ID, j)
		}
		seen[a.ID] = i
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	added := make([]string, 0, len(athletes))
	for i, a := range athletes {
		saved, err := s.store.Insert(ctx, a)
		if err != nil {
			s.rollback(added)
			return 0, fmt.Errorf("import athlete %d (%s): %w", i, a.Name, err)
		}
		added = append(added, saved.ID)
	}

	s.logger.Info(ctx, "roster imported", logger.Int("athletes", len(added)))
	return len(added), nil
}

// rollback removes athletes stored by a failed Import. It ignores the
// caller's context so a cancelled import still cleans up.
func (s *Service) rollback(ids []string) {
	ctx := context.Background()
	for _, id := range ids {
		if err := s.store.Delete(ctx, id); err != nil {
			s.logger.Error(ctx, "import rollback failed",
				logger.String("athlete", id),
				logger.Error(err),
			)
		}
	}
	if len(ids) > 0 {
		s.logger.Warn(ctx, "import rolled back", logger.Int("athletes", len(ids)))
	}
}

// Athlete returns the athlete with id.
func (s *Service) Athlete(ctx context.Context, id string) (model.Athlete, error) {
	return s.store.Get(ctx, id)
}

// Athletes returns every athlete ordered by name.
func (s *Service) Athletes(ctx context.Context) ([]model.Athlete, error) {
	return s.store.List(ctx)
}

// RemoveAthlete deletes the athlete with id.
func (s *Service) RemoveAthlete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// AddSample appends a measurement. Samples need not arrive in date order.
func (s *Service) AddSample(ctx context.Context, id string, sample model.GrowthSample) (model.Athlete, error) {
	if err := validateSample(sample); err != nil {
		return model.Athlete{}, err
	}
	return s.update(ctx, id, func(a *model.Athlete) {
		a.Samples = append(a.Samples, sample)
	})
}

// SetManualPHV records a reviewer-supplied PHV date. It takes precedence over
// the estimate until cleared.
func (s *Service) SetManualPHV(ctx context.Context, id string, date calendar.Date) (model.Athlete, error) {
	if date.IsZero() {
		return model.Athlete{}, fmt.Errorf("manual phv: %w", calendar.ErrInvalidDate)
	}
	return s.update(ctx, id, func(a *model.Athlete) {
		a.ManualPHVDate = &date
	})
}

// ClearManualPHV removes any override so the estimate applies again.
func (s *Service) ClearManualPHV(ctx context.Context, id string) (model.Athlete, error) {
	return s.update(ctx, id, func(a *model.Athlete) {
		a.ManualPHVDate = nil
	})
}

func (s *Service) update(ctx context.Context, id string, mutate func(*model.Athlete)) (model.Athlete, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.store.Get(ctx, id)
	if err != nil {
		return model.Athlete{}, err
	}
	mutate(&a)
	return s.store.Save(ctx, a)
}

// EstimatePHV runs the estimator on the athlete's samples, ignoring any
// manual override.
func (s *Service) EstimatePHV(ctx context.Context, id string) (phv.Estimate, bool, error) {
	a, err := s.store.Get(ctx, id)
	if err != nil {
		return phv.Estimate{}, false, err
	}
	est, ok := s.estimator.Estimate(ctx, a.Samples)
	return est, ok, nil
}

// EffectivePHV returns the PHV date in force: the override when set, else the
// estimate.
func (s *Service) EffectivePHV(ctx context.Context, id string) (phv.EffectivePHV, error) {
	a, err := s.store.Get(ctx, id)
	if err != nil {
		return phv.EffectivePHV{}, err
	}
	return phv.Resolve(ctx, s.estimator, &a), nil
}

// ActiveWindows evaluates the sensitive windows for the athlete at query.
func (s *Service) ActiveWindows(ctx context.Context, id string, query calendar.Date) (windows.Evaluation, error) {
	eff, err := s.EffectivePHV(ctx, id)
	if err != nil {
		return windows.Evaluation{}, err
	}
	return windows.Evaluate(phvDate(eff), query, s.definitions), nil
}

// Assess builds the complete assessment for one athlete on today.
func (s *Service) Assess(ctx context.Context, id string, today calendar.Date) (Assessment, error) {
	a, err := s.store.Get(ctx, id)
	if err != nil {
		return Assessment{}, err
	}
	return s.assess(ctx, &a, today)
}

// AssessAll assesses every athlete, ordered by name.
func (s *Service) AssessAll(ctx context.Context, today calendar.Date) ([]Assessment, error) {
	athletes, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Assessment, 0, len(athletes))
	stale := 0
	for i := range athletes {
		as, err := s.assess(ctx, &athletes[i], today)
		if err != nil {
			return nil, err
		}
		if as.Freshness == growth.FreshnessStale {
			stale++
		}
		out = append(out, as)
	}

	metrics.UpdateStaleAthletes(stale)
	s.logger.Info(ctx, "roster assessed",
		logger.Int("athletes", len(out)),
		logger.Int("stale", stale),
		logger.Stringer("on", today),
	)
	return out, nil
}

func (s *Service) assess(ctx context.Context, a *model.Athlete, today calendar.Date) (Assessment, error) {
	start := time.Now()

	eff := phv.Resolve(ctx, s.estimator, a)
	ev := windows.Evaluate(phvDate(eff), today, s.definitions)
	months, has := growth.MonthsSinceLastSample(a.Samples, today)
	fresh := growth.Classify(a.Samples, today, s.staleAfterMonths)

	in := advice.Input{
		Name:                  a.Name,
		PHV:                   eff,
		Evaluation:            ev,
		Freshness:             fresh,
		MonthsSinceLastSample: months,
	}
	reasons := advice.Classify(in)
	msgs, err := advice.Render(reasons, in)
	if err != nil {
		metrics.RecordError("service", "render_advice")
		return Assessment{}, fmt.Errorf("assess %s: %w", a.ID, err)
	}

	metrics.RecordAssessment(float64(time.Since(start).Microseconds()) / 1000)
	s.logger.Debug(ctx, "athlete assessed",
		logger.String("athlete", a.ID),
		logger.String("phv_source", string(eff.Source)),
		logger.String("status", string(ev.Status)),
		logger.Int("active", len(ev.Active)),
		logger.String("freshness", string(fresh)),
	)

	return Assessment{
		AthleteID:             a.ID,
		Name:                  a.Name,
		On:                    today,
		AgeYears:              growth.AgeInYears(a.DateOfBirth, today),
		PHV:                   eff,
		Windows:               ev,
		MonthsSinceLastSample: months,
		HasSamples:            has,
		Freshness:             fresh,
		Reasons:               reasons,
		Messages:              msgs,
	}, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	ctx := context.Background()
	athletes := s.store.Count(ctx)

	stats := map[string]interface{}{
		"athletes":         athletes,
		"windows":          len(s.definitions),
		"staleAfterMonths": s.staleAfterMonths,
	}

	metrics.UpdateRosterAthletes(athletes)
	return stats
}

func phvDate(eff phv.EffectivePHV) *calendar.Date {
	if !eff.Known() {
		return nil
	}
	d := eff.Date
	return &d
}

func validateAthlete(a model.Athlete) error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidAthlete)
	}
	if a.DateOfBirth.IsZero() {
		return fmt.Errorf("%w: date of birth is required", ErrInvalidAthlete)
	}
	for i, sample := range a.Samples {
		if err := validateSample(sample); err != nil {
			return fmt.Errorf("samples[%d]: %w", i, err)
		}
	}
	return nil
}

func validateSample(sample model.GrowthSample) error {
	if sample.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidSample)
	}
	if sample.HeightCM <= 0 {
		return fmt.Errorf("%w: height must be positive, got %g", ErrInvalidSample, sample.HeightCM)
	}
	return nil
}
