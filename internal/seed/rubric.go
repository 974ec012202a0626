package seed

import (
	"context"
	"fmt"

	"adaptgrant/internal/scoring"
	"adaptgrant/internal/store"
	"adaptgrant/internal/utils"
	"adaptgrant/pkg/types"
)

const DefaultRubricName = "Climate Adaptation Rubric"

// RubricService is the part of the evaluation service the rubric seed uses.
type RubricService interface {
	CreateConfiguration(ctx context.Context, config *types.ScoringConfiguration, createdBy string) (*types.ScoringConfiguration, error)
	Activate(ctx context.Context, configurationID string, reevaluate bool) (*scoring.Report, error)
}

// DefaultRubric is the 100 point rubric the platform launches with. Pass
// threshold is 60.
func DefaultRubric() *types.ScoringConfiguration {
	numeric := func(name string, category types.CriterionCategory, max float64, description string) *types.ScoringCriterion {
		return &types.ScoringCriterion{
			Name:           name,
			Description:    utils.StringPtr(description),
			Category:       category,
			MaxPoints:      max,
			Weight:         1,
			EvaluationType: types.EvaluationTypeNumeric,
		}
	}

	technology := numeric("Use of technology", types.CategoryInnovation, 10, "Appropriate use of technology for the local context")
	technology.EvaluationType = types.EvaluationTypeLevels
	technology.ScoringLevels = []types.ScoringLevel{
		{Level: "low", Points: 3, Description: "Off the shelf, little adaptation"},
		{Level: "medium", Points: 6, Description: "Adapted to local conditions"},
		{Level: "high", Points: 10, Description: "Novel and locally appropriate"},
	}

	records := numeric("Financial records kept", types.CategoryFinancialManagement, 5, "Business keeps basic books of account")
	records.EvaluationType = types.EvaluationTypeBoolean

	return &types.ScoringConfiguration{
		Name:          DefaultRubricName,
		Description:   utils.StringPtr("Default rubric for climate adaptation grant applications"),
		TotalMaxScore: 100,
		PassThreshold: 60,
		Criteria: []*types.ScoringCriterion{
			numeric("Novelty of solution", types.CategoryInnovation, 10, "How new the solution is in its market"),
			technology,
			numeric("Climate risk addressed", types.CategoryClimateAdaptation, 15, "Severity and relevance of the climate risk tackled"),
			numeric("Resilience outcomes", types.CategoryClimateAdaptation, 10, "Measurable resilience gains for beneficiaries"),
			numeric("Market demand", types.CategoryBusinessViability, 10, "Evidence of paying customers or demand"),
			numeric("Revenue model", types.CategoryBusinessViability, 5, "Clarity and sustainability of the revenue model"),
			records,
			numeric("Use of funds", types.CategoryFinancialManagement, 5, "Grant spending plan is specific and realistic"),
			numeric("Team experience", types.CategoryTeamCapacity, 10, "Relevant skills and track record of the team"),
			numeric("Growth potential", types.CategoryScalability, 10, "Potential to replicate or scale the solution"),
			numeric("Pitch", types.CategoryDragonsDen, 10, "Dragon's Den pitch and answers to the panel"),
		},
	}
}

// SeedRubric creates the default rubric once and activates it when no other
// rubric is active.
func SeedRubric(ctx context.Context, repo *store.ScoringRepository, svc RubricService) error {
	existing, err := repo.Configurations(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch scoring configurations: %w", err)
	}

	hasActive := false
	for _, c := range existing {
		if c.IsActive {
			hasActive = true
		}
		if c.Name == DefaultRubricName {
			fmt.Printf("Default rubric already present (version %d), skipping\n", c.Version)
			return nil
		}
	}

	config, err := svc.CreateConfiguration(ctx, DefaultRubric(), "seed")
	if err != nil {
		return fmt.Errorf("failed to create default rubric: %w", err)
	}
	fmt.Printf("Default rubric created: %s (%d criteria)\n", config.ID, len(config.Criteria))

	if hasActive {
		fmt.Println("  Another rubric is active, leaving the default inactive")
		return nil
	}

	if _, err := svc.Activate(ctx, config.ID, false); err != nil {
		return fmt.Errorf("failed to activate default rubric: %w", err)
	}
	fmt.Println("  Default rubric activated")

	return nil
}
