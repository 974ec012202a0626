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

var evaluatorTableName = table("evaluator_profiles")

var evaluatorColumns = utils.StructTagValues(types.EvaluatorProfile{})

type EvaluatorRepository struct {
	db DBTX
}

func NewEvaluatorRepository(db DBTX) *EvaluatorRepository {
	return &EvaluatorRepository{db: db}
}

func (r *EvaluatorRepository) Evaluator(ctx context.Context, id string) (*types.EvaluatorProfile, error) {
	return r.evaluatorWhere(ctx, sq.Eq{"id": id})
}

func (r *EvaluatorRepository) EvaluatorByUserID(ctx context.Context, userID string) (*types.EvaluatorProfile, error) {
	return r.evaluatorWhere(ctx, sq.Eq{"user_id": userID})
}

func (r *EvaluatorRepository) evaluatorWhere(ctx context.Context, where sq.Eq) (*types.EvaluatorProfile, error) {
	query, args, err := psql().
		Select(evaluatorColumns...).
		From(evaluatorTableName).
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate evaluator query: %w", err)
	}

	var evaluator = new(types.EvaluatorProfile)
	err = pgxscan.Get(ctx, r.db, evaluator, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrEvaluatorNotFound
		}
		return nil, fmt.Errorf("failed to fetch evaluator: %w", err)
	}

	return evaluator, nil
}

// Evaluators lists evaluators ordered by creation time. An empty role matches
// every role.
func (r *EvaluatorRepository) Evaluators(ctx context.Context, role types.Role, activeOnly bool) ([]*types.EvaluatorProfile, error) {
	builder := psql().
		Select(evaluatorColumns...).
		From(evaluatorTableName).
		OrderBy("created_at ASC", "id ASC")

	if role != "" {
		builder = builder.Where(sq.Eq{"role": role})
	}
	if activeOnly {
		builder = builder.Where(sq.Eq{"is_active": true})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate evaluators query: %w", err)
	}

	var evaluators = make([]*types.EvaluatorProfile, 0)
	err = pgxscan.Select(ctx, r.db, &evaluators, query, args...)
	return evaluators, utils.ErrorWrapOrNil(err, "failed to fetch evaluators")
}

func (r *EvaluatorRepository) Create(ctx context.Context, evaluator *types.EvaluatorProfile) error {
	now := time.Now()
	if evaluator.ID == "" {
		evaluator.ID = utils.NanoID()
	}
	evaluator.CreatedAt = now
	evaluator.UpdatedAt = now

	query, args, err := psql().
		Insert(evaluatorTableName).
		SetMap(utils.StructToMap(evaluator)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate evaluator insert query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to insert evaluator")
}

func (r *EvaluatorRepository) Update(ctx context.Context, evaluator *types.EvaluatorProfile) error {
	evaluator.UpdatedAt = time.Now()

	query, args, err := psql().
		Update(evaluatorTableName).
		SetMap(utils.StructToMap(evaluator, "id", "user_id", "created_at")).
		Where(sq.Eq{"id": evaluator.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate evaluator update query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update evaluator: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrEvaluatorNotFound
	}

	return nil
}
