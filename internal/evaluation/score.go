package evaluation

import (
	"context"

	"adaptgrant/internal/metrics"
	"adaptgrant/internal/scoring"
	"adaptgrant/internal/utils"
	"adaptgrant/internal/workflow"
	"adaptgrant/pkg/types"
)

type ScoreSubmission struct {
	Score float64 `json:"score"`
	Notes *string `json:"notes"`
}

// SubmitScore records an evaluator's score on an assigned criterion and
// recomputes the application's eligibility in the same transaction.
func (s *Service) SubmitScore(ctx context.Context, evaluatorID, applicationID, criterionID string, submission ScoreSubmission) (*types.ApplicationScore, *types.Eligibility, error) {
	var (
		score       *types.ApplicationScore
		eligibility *types.Eligibility
		role        types.Role
	)

	err := s.repo.InTx(ctx, func(tx Repository) error {
		evaluator, err := tx.Evaluator(ctx, evaluatorID)
		if err != nil {
			return err
		}
		if !evaluator.IsActive {
			return ErrEvaluatorInactive
		}
		role = evaluator.Role

		application, err := tx.Application(ctx, applicationID)
		if err != nil {
			return err
		}

		if err := workflow.CheckRole(evaluator.Role, application.Status); err != nil {
			return err
		}

		score, err = tx.Score(ctx, applicationID, criterionID, evaluatorID)
		if err != nil {
			return err
		}

		config, err := tx.ActiveConfiguration(ctx)
		if err != nil {
			return err
		}

		criterion, ok := config.Criterion(criterionID)
		if !ok {
			return types.ErrCriterionNotFound
		}
		if !scoresCategory(evaluator.Role, criterion.Category) {
			return types.ErrForbidden
		}

		if err := scoring.ValidateScore(criterion, submission.Score); err != nil {
			return err
		}

		now := s.now()
		score.Score = submission.Score
		score.Notes = utils.TrimmedStringPtr(submission.Notes)
		score.Scored = true
		score.ScoredAt = &now

		if err := tx.UpdateScore(ctx, score); err != nil {
			return err
		}

		eligibility, err = s.evaluate(ctx, tx, config, applicationID)
		if err != nil {
			return err
		}

		return tx.UpsertEligibility(ctx, eligibility)
	})
	if err != nil {
		return nil, nil, err
	}

	metrics.ScoreSubmissions.WithLabelValues(string(role)).Inc()
	s.invalidate(ctx)

	return score, eligibility, nil
}

func scoresCategory(role types.Role, category types.CriterionCategory) bool {
	for _, c := range workflow.ScoredCategories(role) {
		if c == category {
			return true
		}
	}
	return false
}
