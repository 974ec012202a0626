package evaluation

import (
	"context"
	"errors"

	"adaptgrant/internal/metrics"
	"adaptgrant/internal/utils"
	"adaptgrant/internal/workflow"
	"adaptgrant/pkg/types"
)

// Transition moves one application along the pipeline as actor. The status
// update and its audit row commit together; the applicant is emailed after.
func (s *Service) Transition(ctx context.Context, applicationID string, to types.ApplicationStatus, actor string, reason *string) (*types.StatusChange, error) {
	var change *types.StatusChange
	err := s.repo.InTx(ctx, func(tx Repository) error {
		var err error
		change, err = s.transition(ctx, tx, applicationID, to, actor, reason, false)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.StatusTransitions.WithLabelValues(string(to)).Inc()
	s.invalidate(ctx)
	s.notify(ctx, change)

	return change, nil
}

// transition refuses draft to submitted unless submitting is set, since only
// the applicant's own submit action may perform it.
func (s *Service) transition(ctx context.Context, tx Repository, applicationID string, to types.ApplicationStatus, actor string, reason *string, submitting bool) (*types.StatusChange, error) {
	application, err := tx.Application(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	from := application.Status
	if to == types.ApplicationStatusSubmitted && !submitting {
		return nil, &workflow.TransitionError{From: from, To: to}
	}
	if err := workflow.CheckTransition(from, to); err != nil {
		return nil, err
	}

	application.Status = to
	if to == types.ApplicationStatusSubmitted {
		application.SubmittedAt = utils.TimePtr(s.now())
	}

	if err := tx.UpdateStatus(ctx, application); err != nil {
		return nil, err
	}

	change := &types.StatusChange{
		ID:            utils.NanoID(),
		ApplicationID: applicationID,
		FromStatus:    from,
		ToStatus:      to,
		ChangedBy:     actor,
		Reason:        utils.TrimmedStringPtr(reason),
	}

	if err := tx.RecordStatusChange(ctx, change); err != nil {
		return nil, err
	}

	return change, nil
}

// Submit is the applicant's own draft to submitted transition. Every wizard
// step must be complete.
func (s *Service) Submit(ctx context.Context, applicationID, applicantID, actor string) (*types.StatusChange, error) {
	var change *types.StatusChange

	err := s.repo.InTx(ctx, func(tx Repository) error {
		application, err := tx.Application(ctx, applicationID)
		if err != nil {
			return err
		}

		if application.ApplicantID != applicantID {
			return types.ErrApplicationNotFound
		}

		for _, step := range types.WizardSteps {
			if !application.HasCompletedStep(step) {
				return types.ErrWizardIncomplete
			}
		}

		change, err = s.transition(ctx, tx, applicationID, types.ApplicationStatusSubmitted, actor, nil, true)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.StatusTransitions.WithLabelValues(string(types.ApplicationStatusSubmitted)).Inc()
	s.invalidate(ctx)
	s.notify(ctx, change)

	return change, nil
}

type BulkOutcome struct {
	ApplicationID string `json:"applicationId"`
	Succeeded     bool   `json:"succeeded"`
	Reason        string `json:"reason,omitempty"`
}

type BulkResult struct {
	Target    types.ApplicationStatus `json:"target"`
	Succeeded int                     `json:"succeeded"`
	Skipped   int                     `json:"skipped"`
	Outcomes  []BulkOutcome           `json:"outcomes"`
}

// ErrBulkTargetNotAllowed is returned when a bulk action names a status
// outside the bulk whitelist.
var ErrBulkTargetNotAllowed = errors.New("status is not allowed as a bulk action target")

// BulkTransition moves each application independently. Failures skip that
// application and are reported; they never abort the batch.
func (s *Service) BulkTransition(ctx context.Context, applicationIDs []string, to types.ApplicationStatus, actor string, reason *string) (*BulkResult, error) {
	if !workflow.IsBulkTarget(to) {
		return nil, ErrBulkTargetNotAllowed
	}

	result := &BulkResult{Target: to, Outcomes: make([]BulkOutcome, 0, len(applicationIDs))}
	seen := make(map[string]bool, len(applicationIDs))

	for _, id := range applicationIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		_, err := s.Transition(ctx, id, to, actor, reason)
		if err != nil {
			result.Skipped++
			result.Outcomes = append(result.Outcomes, BulkOutcome{ApplicationID: id, Reason: bulkReason(err)})
			continue
		}

		result.Succeeded++
		result.Outcomes = append(result.Outcomes, BulkOutcome{ApplicationID: id, Succeeded: true})
	}

	return result, nil
}

func bulkReason(err error) string {
	var transitionErr *workflow.TransitionError
	switch {
	case errors.Is(err, types.ErrApplicationNotFound):
		return "not found"
	case errors.As(err, &transitionErr):
		return "invalid transition from " + string(transitionErr.From)
	default:
		return "failed"
	}
}
