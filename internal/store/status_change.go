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

var statusChangeTableName = table("application_status_changes")

var statusChangeColumns = utils.StructTagValues(types.StatusChange{})

type StatusChangeRepository struct {
	db DBTX
}

func NewStatusChangeRepository(db DBTX) *StatusChangeRepository {
	return &StatusChangeRepository{db: db}
}

func (r *StatusChangeRepository) Create(ctx context.Context, change *types.StatusChange) error {
	if change.ID == "" {
		change.ID = utils.NanoID()
	}
	change.CreatedAt = time.Now()

	query, args, err := psql().
		Insert(statusChangeTableName).
		SetMap(utils.StructToMap(change)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate status change insert query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to record status change")
}

// StatusChangesByApplication returns the audit trail oldest first.
func (r *StatusChangeRepository) StatusChangesByApplication(ctx context.Context, applicationID string) ([]*types.StatusChange, error) {
	query, args, err := psql().
		Select(statusChangeColumns...).
		From(statusChangeTableName).
		Where(sq.Eq{"application_id": applicationID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate status change query: %w", err)
	}

	var changes = make([]*types.StatusChange, 0)
	err = pgxscan.Select(ctx, r.db, &changes, query, args...)
	return changes, utils.ErrorWrapOrNil(err, "failed to fetch status changes")
}
