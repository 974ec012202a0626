package evaluation

import (
	"context"
	"strings"

	"adaptgrant/internal/scoring"
	"adaptgrant/internal/utils"
	"adaptgrant/pkg/types"
)

// CreateConfiguration stores a new inactive rubric. Its version is one past
// the highest existing version of the same name.
func (s *Service) CreateConfiguration(ctx context.Context, config *types.ScoringConfiguration, createdBy string) (*types.ScoringConfiguration, error) {
	config.Name = strings.TrimSpace(config.Name)
	config.ID = ""
	config.IsActive = false
	config.CreatedBy = utils.TrimmedStringPtr(&createdBy)
	normalizeCriteria(config.Criteria)

	if err := scoring.ValidateConfiguration(config); err != nil {
		return nil, err
	}

	err := s.repo.InTx(ctx, func(tx Repository) error {
		version, err := tx.NextVersion(ctx, config.Name)
		if err != nil {
			return err
		}
		config.Version = version

		return tx.CreateConfiguration(ctx, config)
	})
	if err != nil {
		return nil, err
	}

	return config, nil
}

// ImportConfiguration parses a JSON rubric document and stores it inactive.
func (s *Service) ImportConfiguration(ctx context.Context, data []byte, createdBy string) (*types.ScoringConfiguration, error) {
	config, err := scoring.ParseRubric(data)
	if err != nil {
		return nil, err
	}

	return s.CreateConfiguration(ctx, config, createdBy)
}

// normalizeCriteria clears ids so the store assigns fresh ones and fills in
// display order from position. Nil entries are left for validation to report.
func normalizeCriteria(criteria []*types.ScoringCriterion) {
	for i, c := range criteria {
		if c == nil {
			continue
		}
		c.ID = ""
		if c.DisplayOrder == 0 {
			c.DisplayOrder = i + 1
		}
	}
}

type CriteriaUpdate struct {
	Description   *string                   `json:"description"`
	TotalMaxScore float64                   `json:"totalMaxScore"`
	PassThreshold float64                   `json:"passThreshold"`
	Criteria      []*types.ScoringCriterion `json:"criteria"`
}

// UpdateCriteria replaces the criteria of an inactive configuration that no
// evaluator has been assigned against.
func (s *Service) UpdateCriteria(ctx context.Context, configurationID string, update CriteriaUpdate) (*types.ScoringConfiguration, error) {
	var config *types.ScoringConfiguration

	err := s.repo.InTx(ctx, func(tx Repository) error {
		var err error
		config, err = tx.Configuration(ctx, configurationID)
		if err != nil {
			return err
		}

		if config.IsActive {
			return types.ErrConfigurationActive
		}

		// replacing criteria would orphan submitted scores and the
		// eligibility totals computed from them
		scored, err := tx.ConfigurationScoreCount(ctx, configurationID)
		if err != nil {
			return err
		}
		if scored > 0 {
			return types.ErrConfigurationScored
		}

		if update.Description != nil {
			config.Description = utils.TrimmedStringPtr(update.Description)
		}
		config.TotalMaxScore = update.TotalMaxScore
		config.PassThreshold = update.PassThreshold
		config.Criteria = update.Criteria
		normalizeCriteria(config.Criteria)

		if err := scoring.ValidateConfiguration(config); err != nil {
			return err
		}

		return tx.ReplaceCriteria(ctx, config)
	})
	if err != nil {
		return nil, err
	}

	return config, nil
}

// Activate makes configurationID the only active rubric. With reevaluate set
// every submitted application is re-scored under it inside the same
// transaction and the diff report is returned.
func (s *Service) Activate(ctx context.Context, configurationID string, reevaluate bool) (*scoring.Report, error) {
	var report *scoring.Report
	started := s.now()

	err := s.repo.InTx(ctx, func(tx Repository) error {
		config, err := tx.Configuration(ctx, configurationID)
		if err != nil {
			return err
		}

		if err := scoring.ValidateConfiguration(config); err != nil {
			return err
		}

		if err := tx.DeactivateAll(ctx); err != nil {
			return err
		}

		if err := tx.SetActive(ctx, config.ID, true); err != nil {
			return err
		}
		config.IsActive = true

		if !reevaluate {
			return nil
		}

		report, err = s.reevaluate(ctx, tx, config, false, started)
		return err
	})
	if reevaluate {
		observeRun(false, started, s.now(), err)
	}
	if err != nil {
		return nil, err
	}

	s.logger.WithField("configuration_id", configurationID).
		WithField("reevaluate", reevaluate).
		Info("scoring configuration activated")

	s.invalidate(ctx)

	return report, nil
}

func (s *Service) Deactivate(ctx context.Context, configurationID string) error {
	err := s.repo.SetActive(ctx, configurationID, false)
	if err != nil {
		return err
	}

	s.invalidate(ctx)
	return nil
}

// Clone copies a configuration and its criteria into a new inactive version.
// An empty name keeps the source name.
func (s *Service) Clone(ctx context.Context, configurationID, name, createdBy string) (*types.ScoringConfiguration, error) {
	source, err := s.repo.Configuration(ctx, configurationID)
	if err != nil {
		return nil, err
	}

	clone := &types.ScoringConfiguration{
		Name:          source.Name,
		Description:   source.Description,
		TotalMaxScore: source.TotalMaxScore,
		PassThreshold: source.PassThreshold,
		Criteria:      make([]*types.ScoringCriterion, 0, len(source.Criteria)),
	}
	if strings.TrimSpace(name) != "" {
		clone.Name = name
	}

	for _, c := range source.Criteria {
		copied := *c
		copied.ScoringLevels = append([]types.ScoringLevel(nil), c.ScoringLevels...)
		clone.Criteria = append(clone.Criteria, &copied)
	}

	return s.CreateConfiguration(ctx, clone, createdBy)
}
