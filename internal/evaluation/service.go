// Package evaluation coordinates scoring, assignment and the application
// pipeline on top of the persistence layer.
package evaluation

import (
	"context"
	"errors"
	"strconv"
	"time"

	"adaptgrant/internal/metrics"
	"adaptgrant/internal/scoring"
	"adaptgrant/pkg/types"

	"github.com/sirupsen/logrus"
)

// Notifier is told about every committed status change.
type Notifier interface {
	StatusChanged(ctx context.Context, profile *types.ApplicationProfile, change *types.StatusChange) error
}

// CacheInvalidator drops derived data after evaluation writes.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

type Service struct {
	repo     Repository
	engine   *scoring.Engine
	logger   *logrus.Logger
	notifier Notifier
	cache    CacheInvalidator
	now      func() time.Time
}

type Option func(*Service)

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithCacheInvalidator(c CacheInvalidator) Option {
	return func(s *Service) { s.cache = c }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(repo Repository, engine *scoring.Engine, logger *logrus.Logger, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		engine: engine,
		logger: logger,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Evaluate recomputes and stores eligibility for one application under the
// active configuration.
func (s *Service) Evaluate(ctx context.Context, applicationID string) (*types.Eligibility, error) {
	var result *types.Eligibility

	err := s.repo.InTx(ctx, func(tx Repository) error {
		config, err := tx.ActiveConfiguration(ctx)
		if err != nil {
			return err
		}

		result, err = s.evaluate(ctx, tx, config, applicationID)
		if err != nil {
			return err
		}

		return tx.UpsertEligibility(ctx, result)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)

	return result, nil
}

func (s *Service) evaluate(ctx context.Context, repo Repository, config *types.ScoringConfiguration, applicationID string) (*types.Eligibility, error) {
	profile, err := repo.Profile(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	scores, err := repo.ScoresByApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	eligibility := s.engine.Evaluate(profile, config, scores, s.now())
	metrics.EvaluationsComputed.WithLabelValues(strconv.FormatBool(eligibility.IsEligible)).Inc()

	return eligibility, nil
}

// previousEligibility treats a missing row as no previous evaluation.
func previousEligibility(ctx context.Context, repo Repository, applicationID string) (*types.Eligibility, error) {
	previous, err := repo.Eligibility(ctx, applicationID)
	if errors.Is(err, types.ErrEligibilityNotFound) {
		return nil, nil
	}
	return previous, err
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WithError(err).Warn("failed to invalidate analytics cache")
	}
}

func (s *Service) notify(ctx context.Context, change *types.StatusChange) {
	if s.notifier == nil {
		return
	}

	profile, err := s.repo.Profile(ctx, change.ApplicationID)
	if err != nil {
		s.logger.WithError(err).WithField("application_id", change.ApplicationID).Warn("failed to load profile for notification")
		return
	}

	if err := s.notifier.StatusChanged(ctx, profile, change); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"application_id": change.ApplicationID,
			"to_status":      change.ToStatus,
		}).Warn("failed to send status notification")
	}
}
