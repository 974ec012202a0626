package evaluation

import (
	"context"
	"errors"
	"fmt"

	"adaptgrant/internal/workflow"
	"adaptgrant/pkg/types"
)

var (
	ErrNotEvaluatorRole  = errors.New("role cannot hold score assignments")
	ErrEvaluatorInactive = errors.New("evaluator is inactive")
	ErrNoEvaluators      = errors.New("no active evaluators with capacity for role")
	ErrNoCriteria        = errors.New("active configuration has no criteria for role")
)

type SkippedApplication struct {
	ApplicationID string                  `json:"applicationId"`
	Status        types.ApplicationStatus `json:"status"`
	Reason        string                  `json:"reason"`
}

type AssignmentResult struct {
	Role        types.Role           `json:"role"`
	Assignments []workflow.Pair      `json:"assignments"`
	RowsCreated int                  `json:"rowsCreated"`
	Skipped     []SkippedApplication `json:"skipped"`
}

// AutoAssign distributes active evaluators of role round-robin over the
// applications in status, perApplication evaluators each. An empty status
// targets every status the role may act on. Applications the role cannot act
// on are skipped and reported, never assigned.
func (s *Service) AutoAssign(ctx context.Context, role types.Role, status types.ApplicationStatus, perApplication int) (*AssignmentResult, error) {
	if !role.IsEvaluator() {
		return nil, ErrNotEvaluatorRole
	}
	if perApplication <= 0 {
		perApplication = 1
	}

	statuses := workflow.ValidStatuses(role)
	if status != "" {
		statuses = []types.ApplicationStatus{status}
	}

	result := &AssignmentResult{
		Role:        role,
		Assignments: make([]workflow.Pair, 0),
		Skipped:     make([]SkippedApplication, 0),
	}

	err := s.repo.InTx(ctx, func(tx Repository) error {
		config, err := tx.ActiveConfiguration(ctx)
		if err != nil {
			return err
		}

		criteria := config.CriteriaFor(workflow.ScoredCategories(role)...)
		if len(criteria) == 0 {
			return ErrNoCriteria
		}

		applications, err := tx.Applications(ctx, statuses...)
		if err != nil {
			return err
		}

		applicationIDs := make([]string, 0, len(applications))
		for _, application := range applications {
			if err := workflow.CheckRole(role, application.Status); err != nil {
				result.Skipped = append(result.Skipped, SkippedApplication{
					ApplicationID: application.ID,
					Status:        application.Status,
					Reason:        err.Error(),
				})
				continue
			}
			applicationIDs = append(applicationIDs, application.ID)
		}

		if len(applicationIDs) == 0 {
			return nil
		}

		pool, err := s.evaluatorPool(ctx, tx, role)
		if err != nil {
			return err
		}
		if len(pool) == 0 {
			return ErrNoEvaluators
		}

		held, err := heldAssignments(ctx, tx, applicationIDs)
		if err != nil {
			return err
		}

		pairs := workflow.RoundRobin(applicationIDs, pool, perApplication, held)
		for _, pair := range pairs {
			created, err := ensureRows(ctx, tx, pair, criteria)
			if err != nil {
				return err
			}
			result.RowsCreated += created
		}
		result.Assignments = append(result.Assignments, pairs...)

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithField("role", role).
		WithField("assignments", len(result.Assignments)).
		WithField("rows_created", result.RowsCreated).
		WithField("skipped", len(result.Skipped)).
		Info("auto assignment complete")

	return result, nil
}

// heldAssignments lists, per application, the evaluators that already hold
// score rows for it, in the order they were first assigned.
func heldAssignments(ctx context.Context, tx Repository, applicationIDs []string) (map[string][]string, error) {
	held := make(map[string][]string, len(applicationIDs))
	for _, applicationID := range applicationIDs {
		scores, err := tx.ScoresByApplication(ctx, applicationID)
		if err != nil {
			return nil, err
		}

		seen := make(map[string]bool)
		for _, score := range scores {
			if seen[score.EvaluatorID] {
				continue
			}
			seen[score.EvaluatorID] = true
			held[applicationID] = append(held[applicationID], score.EvaluatorID)
		}
	}
	return held, nil
}

func (s *Service) evaluatorPool(ctx context.Context, tx Repository, role types.Role) ([]types.EvaluatorLoad, error) {
	evaluators, err := tx.Evaluators(ctx, role, true)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(evaluators))
	for _, e := range evaluators {
		ids = append(ids, e.ID)
	}

	counts, err := tx.AssignmentCounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	pool := make([]types.EvaluatorLoad, 0, len(evaluators))
	for _, e := range evaluators {
		pool = append(pool, types.EvaluatorLoad{Evaluator: e, Applications: counts[e.ID]})
	}

	return pool, nil
}

// Assign gives one evaluator score rows on one application. The evaluator's
// role must be allowed to act on the application's current status. Capacity
// limits are not enforced for manual assignment.
func (s *Service) Assign(ctx context.Context, applicationID, evaluatorID string) (*AssignmentResult, error) {
	var result *AssignmentResult

	err := s.repo.InTx(ctx, func(tx Repository) error {
		evaluator, err := tx.Evaluator(ctx, evaluatorID)
		if err != nil {
			return err
		}
		if !evaluator.IsActive {
			return ErrEvaluatorInactive
		}
		if !evaluator.Role.IsEvaluator() {
			return ErrNotEvaluatorRole
		}

		application, err := tx.Application(ctx, applicationID)
		if err != nil {
			return err
		}

		if err := workflow.CheckRole(evaluator.Role, application.Status); err != nil {
			return err
		}

		config, err := tx.ActiveConfiguration(ctx)
		if err != nil {
			return err
		}

		criteria := config.CriteriaFor(workflow.ScoredCategories(evaluator.Role)...)
		if len(criteria) == 0 {
			return ErrNoCriteria
		}

		pair := workflow.Pair{ApplicationID: applicationID, EvaluatorID: evaluatorID}
		created, err := ensureRows(ctx, tx, pair, criteria)
		if err != nil {
			return err
		}

		result = &AssignmentResult{
			Role:        evaluator.Role,
			Assignments: []workflow.Pair{pair},
			RowsCreated: created,
			Skipped:     make([]SkippedApplication, 0),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func ensureRows(ctx context.Context, tx Repository, pair workflow.Pair, criteria []*types.ScoringCriterion) (int, error) {
	created := 0
	for _, criterion := range criteria {
		ok, err := tx.EnsureScoreRow(ctx, pair.ApplicationID, criterion.ID, pair.EvaluatorID)
		if err != nil {
			return created, fmt.Errorf("assign %s to %s: %w", pair.EvaluatorID, pair.ApplicationID, err)
		}
		if ok {
			created++
		}
	}
	return created, nil
}
