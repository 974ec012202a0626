package store

import (
	"adaptgrant/internal/utils"
	"adaptgrant/pkg/types"
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
)

var (
	configurationTableName = table("scoring_configurations")
	criterionTableName     = table("scoring_criteria")
)

var (
	configurationColumns = utils.StructTagValues(types.ScoringConfiguration{})
	criterionColumns     = utils.StructTagValues(types.ScoringCriterion{})
)

// ScoringRepository persists scoring configurations and their criteria.
// Configurations returned by this repository always carry their criteria.
type ScoringRepository struct {
	db DBTX
}

func NewScoringRepository(db DBTX) *ScoringRepository {
	return &ScoringRepository{db: db}
}

func (r *ScoringRepository) Configuration(ctx context.Context, id string) (*types.ScoringConfiguration, error) {
	return r.configurationWhere(ctx, sq.Eq{"id": id}, types.ErrConfigurationNotFound)
}

func (r *ScoringRepository) ActiveConfiguration(ctx context.Context) (*types.ScoringConfiguration, error) {
	return r.configurationWhere(ctx, sq.Eq{"is_active": true}, types.ErrNoActiveConfiguration)
}

func (r *ScoringRepository) configurationWhere(ctx context.Context, where sq.Eq, notFound error) (*types.ScoringConfiguration, error) {
	query, args, err := psql().
		Select(configurationColumns...).
		From(configurationTableName).
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate configuration query: %w", err)
	}

	var config = new(types.ScoringConfiguration)
	err = pgxscan.Get(ctx, r.db, config, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, notFound
		}
		return nil, fmt.Errorf("failed to fetch configuration: %w", err)
	}

	config.Criteria, err = r.Criteria(ctx, config.ID)
	if err != nil {
		return nil, err
	}

	return config, nil
}

// Configurations lists every configuration newest first, without criteria.
func (r *ScoringRepository) Configurations(ctx context.Context) ([]*types.ScoringConfiguration, error) {
	query, args, err := psql().
		Select(configurationColumns...).
		From(configurationTableName).
		OrderBy("name ASC", "version DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate configurations query: %w", err)
	}

	var configs = make([]*types.ScoringConfiguration, 0)
	err = pgxscan.Select(ctx, r.db, &configs, query, args...)
	return configs, utils.ErrorWrapOrNil(err, "failed to fetch configurations")
}

func (r *ScoringRepository) Criteria(ctx context.Context, configurationID string) ([]*types.ScoringCriterion, error) {
	query, args, err := psql().
		Select(criterionColumns...).
		From(criterionTableName).
		Where(sq.Eq{"configuration_id": configurationID}).
		OrderBy("display_order ASC", "name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate criteria query: %w", err)
	}

	var criteria = make([]*types.ScoringCriterion, 0)
	err = pgxscan.Select(ctx, r.db, &criteria, query, args...)
	return criteria, utils.ErrorWrapOrNil(err, "failed to fetch criteria")
}

// NextVersion returns one past the highest version stored under name.
func (r *ScoringRepository) NextVersion(ctx context.Context, name string) (int, error) {
	query, args, err := psql().
		Select("COALESCE(MAX(version), 0) + 1").
		From(configurationTableName).
		Where(sq.Eq{"name": name}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate version query: %w", err)
	}

	var version int
	err = r.db.QueryRow(ctx, query, args...).Scan(&version)
	return version, utils.ErrorWrapOrNil(err, "failed to fetch next version")
}

// CreateConfiguration inserts config and its criteria. IDs are generated for
// rows that do not carry one.
func (r *ScoringRepository) CreateConfiguration(ctx context.Context, config *types.ScoringConfiguration) error {
	now := time.Now()
	if config.ID == "" {
		config.ID = utils.NanoID()
	}
	config.CreatedAt = now
	config.UpdatedAt = now

	query, args, err := psql().
		Insert(configurationTableName).
		SetMap(utils.StructToMap(config)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate configuration insert query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert configuration: %w", err)
	}

	return r.insertCriteria(ctx, config.ID, config.Criteria)
}

// ReplaceCriteria swaps the full criteria set of a configuration.
func (r *ScoringRepository) ReplaceCriteria(ctx context.Context, config *types.ScoringConfiguration) error {
	query, args, err := psql().
		Delete(criterionTableName).
		Where(sq.Eq{"configuration_id": config.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate criteria delete query: %w", err)
	}

	if _, err = r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete criteria: %w", err)
	}

	config.UpdatedAt = time.Now()
	query, args, err = psql().
		Update(configurationTableName).
		Set("total_max_score", config.TotalMaxScore).
		Set("pass_threshold", config.PassThreshold).
		Set("description", config.Description).
		Set("updated_at", config.UpdatedAt).
		Where(sq.Eq{"id": config.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate configuration update query: %w", err)
	}

	if _, err = r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update configuration: %w", err)
	}

	return r.insertCriteria(ctx, config.ID, config.Criteria)
}

func (r *ScoringRepository) insertCriteria(ctx context.Context, configurationID string, criteria []*types.ScoringCriterion) error {
	if len(criteria) == 0 {
		return nil
	}

	now := time.Now()
	builder := psql().Insert(criterionTableName).Columns(criterionColumns...)
	for _, c := range criteria {
		if c.ID == "" {
			c.ID = utils.NanoID()
		}
		if c.ScoringLevels == nil {
			c.ScoringLevels = []types.ScoringLevel{}
		}
		c.ConfigurationID = configurationID
		c.CreatedAt = now

		builder = builder.Values(
			c.ID,
			c.ConfigurationID,
			c.Name,
			c.Description,
			c.Category,
			c.MaxPoints,
			c.Weight,
			c.EvaluationType,
			c.ScoringLevels,
			c.DisplayOrder,
			c.CreatedAt,
		)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate criteria insert query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to insert criteria")
}

// DeactivateAll clears the active flag on every configuration.
func (r *ScoringRepository) DeactivateAll(ctx context.Context) error {
	query, args, err := psql().
		Update(configurationTableName).
		Set("is_active", false).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"is_active": true}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate deactivate query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to deactivate configurations")
}

func (r *ScoringRepository) SetActive(ctx context.Context, id string, active bool) error {
	query, args, err := psql().
		Update(configurationTableName).
		Set("is_active", active).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate activate query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to set configuration active flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrConfigurationNotFound
	}

	return nil
}
