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

var businessTableName = table("businesses")

var businessColumns = utils.StructTagValues(types.Business{})

type BusinessRepository struct {
	db DBTX
}

func NewBusinessRepository(db DBTX) *BusinessRepository {
	return &BusinessRepository{db: db}
}

func (r *BusinessRepository) Business(ctx context.Context, id string) (*types.Business, error) {
	query, args, err := psql().
		Select(businessColumns...).
		From(businessTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate business query: %w", err)
	}

	var business = new(types.Business)
	err = pgxscan.Get(ctx, r.db, business, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrBusinessNotFound
		}
		return nil, fmt.Errorf("failed to fetch business: %w", err)
	}

	return business, nil
}

func (r *BusinessRepository) Create(ctx context.Context, business *types.Business) error {
	now := time.Now()
	business.CreatedAt = now
	business.UpdatedAt = now

	query, args, err := psql().
		Insert(businessTableName).
		SetMap(utils.StructToMap(business)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate business insert query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to insert business")
}

func (r *BusinessRepository) Update(ctx context.Context, business *types.Business) error {
	business.UpdatedAt = time.Now()

	query, args, err := psql().
		Update(businessTableName).
		SetMap(utils.StructToMap(business, "id", "applicant_id", "created_at")).
		Where(sq.Eq{"id": business.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate business update query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to update business")
}
