package seed

import (
	"context"
	"errors"
	"fmt"

	"adaptgrant/internal/store"
	"adaptgrant/internal/utils"
	"adaptgrant/pkg/types"
)

var sampleEvaluators = []types.EvaluatorProfile{
	{ID: "ev7HqLm2Tn4Rk9Wb1Xc5Yd8Ze3Af6Bg0", UserID: "seed-reviewer-1", DisplayName: "Wanjiru Kamau", Email: "wanjiru.kamau+seed@example.com", Role: types.RoleTechnicalReviewer, Expertise: utils.StringPtr("agronomy"), MaxAssignments: 25},
	{ID: "evP3sN8vQ1rT6uY0wZ4xA7bC2dE5fG9h", UserID: "seed-reviewer-2", DisplayName: "Otieno Ouma", Email: "otieno.ouma+seed@example.com", Role: types.RoleTechnicalReviewer, Expertise: utils.StringPtr("water management")},
	{ID: "evK6jM1nB4vC7xZ0aS3dF8gH2jK5lQ9w", UserID: "seed-jury-1", DisplayName: "Halima Abdi", Email: "halima.abdi+seed@example.com", Role: types.RoleJuryMember, Expertise: utils.StringPtr("impact investment")},
	{ID: "evR2tY5uI8oP1aS4dF7gH0jK3lZ6xC9v", UserID: "seed-jury-2", DisplayName: "Kipchoge Rotich", Email: "kipchoge.rotich+seed@example.com", Role: types.RoleJuryMember},
	{ID: "evB5nM8qW1eR4tY7uI0oP3aS6dF9gH2j", UserID: "seed-judge-1", DisplayName: "Njoki Mwangi", Email: "njoki.mwangi+seed@example.com", Role: types.RoleDragonsDenJudge, Expertise: utils.StringPtr("venture capital")},
}

// SeedEvaluators upserts the sample evaluator panel by fixed id.
func SeedEvaluators(ctx context.Context, repo *store.EvaluatorRepository) error {
	seeded := 0
	for _, sample := range sampleEvaluators {
		evaluator := sample
		evaluator.IsActive = true

		existing, err := repo.Evaluator(ctx, evaluator.ID)
		if err != nil {
			if !errors.Is(err, types.ErrEvaluatorNotFound) {
				return fmt.Errorf("failed to fetch evaluator %s: %w", evaluator.ID, err)
			}

			if err := repo.Create(ctx, &evaluator); err != nil {
				return fmt.Errorf("failed to create evaluator %s: %w", evaluator.ID, err)
			}
			seeded++
			continue
		}

		existing.DisplayName = evaluator.DisplayName
		existing.Email = evaluator.Email
		existing.Role = evaluator.Role
		existing.Expertise = evaluator.Expertise
		existing.MaxAssignments = evaluator.MaxAssignments
		existing.IsActive = true

		if err := repo.Update(ctx, existing); err != nil {
			return fmt.Errorf("failed to update evaluator %s: %w", evaluator.ID, err)
		}
		seeded++
	}

	fmt.Printf("Evaluators seeded: %d upserted\n", seeded)
	return nil
}
