package evaluation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"adaptgrant/internal/metrics"
	"adaptgrant/internal/scoring"
	"adaptgrant/pkg/types"
)

// Reevaluate re-scores every submitted application under configurationID,
// or the active configuration when it is empty. The run is a single
// transaction: any failure rolls back every eligibility write. A dry run
// computes the report without writing.
func (s *Service) Reevaluate(ctx context.Context, configurationID string, dryRun bool) (*scoring.Report, error) {
	var report *scoring.Report
	started := s.now()

	err := s.repo.InTx(ctx, func(tx Repository) error {
		var (
			config *types.ScoringConfiguration
			err    error
		)
		if configurationID == "" {
			config, err = tx.ActiveConfiguration(ctx)
		} else {
			config, err = tx.Configuration(ctx, configurationID)
		}
		if err != nil {
			return err
		}

		report, err = s.reevaluate(ctx, tx, config, dryRun, started)
		return err
	})
	observeRun(dryRun, started, s.now(), err)
	if err != nil {
		return nil, err
	}

	s.logger.WithField("configuration_id", report.ConfigurationID).
		WithField("dry_run", dryRun).
		WithField("evaluated", report.Evaluated).
		WithField("changed", report.Changed).
		WithField("failed", report.Failed).
		Info("re-evaluation complete")

	if !dryRun {
		s.invalidate(ctx)
	}

	return report, nil
}

func (s *Service) reevaluate(ctx context.Context, tx Repository, config *types.ScoringConfiguration, dryRun bool, started time.Time) (*scoring.Report, error) {
	report := scoring.NewReport(config.ID, dryRun, started)

	applications, err := tx.Applications(ctx, submittedStatuses()...)
	if err != nil {
		return nil, err
	}

	for _, application := range applications {
		delta, err := s.reevaluateOne(ctx, tx, config, application.ID, dryRun)
		if err != nil {
			if !dryRun {
				return nil, fmt.Errorf("re-evaluate application %s: %w", application.ID, err)
			}
			report.Fail(application.ID, err)
			continue
		}
		report.Add(delta)
	}

	report.FinishedAt = s.now()
	return report, nil
}

func (s *Service) reevaluateOne(ctx context.Context, tx Repository, config *types.ScoringConfiguration, applicationID string, dryRun bool) (scoring.Delta, error) {
	previous, err := previousEligibility(ctx, tx, applicationID)
	if err != nil {
		return scoring.Delta{}, err
	}

	next, err := s.evaluate(ctx, tx, config, applicationID)
	if err != nil {
		return scoring.Delta{}, err
	}

	if !dryRun {
		if err := tx.UpsertEligibility(ctx, next); err != nil {
			return scoring.Delta{}, err
		}
	}

	return scoring.Diff(previous, next), nil
}

// submittedStatuses is every status except draft.
func submittedStatuses() []types.ApplicationStatus {
	out := make([]types.ApplicationStatus, 0, len(types.AllApplicationStatuses))
	for _, status := range types.AllApplicationStatuses {
		if status != types.ApplicationStatusDraft {
			out = append(out, status)
		}
	}
	return out
}

func observeRun(dryRun bool, started, finished time.Time, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}

	metrics.ReevaluationRuns.WithLabelValues(strconv.FormatBool(dryRun), result).Inc()
	metrics.ReevaluationDuration.Observe(finished.Sub(started).Seconds())
}
