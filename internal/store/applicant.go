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

var applicantTableName = table("applicants")

var applicantColumns = utils.StructTagValues(types.Applicant{})

type ApplicantRepository struct {
	db DBTX
}

func NewApplicantRepository(db DBTX) *ApplicantRepository {
	return &ApplicantRepository{db: db}
}

func (r *ApplicantRepository) Applicant(ctx context.Context, id string) (*types.Applicant, error) {
	return r.applicantWhere(ctx, sq.Eq{"id": id})
}

func (r *ApplicantRepository) ApplicantByUserID(ctx context.Context, userID string) (*types.Applicant, error) {
	return r.applicantWhere(ctx, sq.Eq{"user_id": userID})
}

func (r *ApplicantRepository) applicantWhere(ctx context.Context, where sq.Eq) (*types.Applicant, error) {
	query, args, err := psql().
		Select(applicantColumns...).
		From(applicantTableName).
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate applicant query: %w", err)
	}

	var applicant = new(types.Applicant)
	err = pgxscan.Get(ctx, r.db, applicant, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrApplicantNotFound
		}
		return nil, fmt.Errorf("failed to fetch applicant: %w", err)
	}

	return applicant, nil
}

func (r *ApplicantRepository) Create(ctx context.Context, applicant *types.Applicant) error {
	now := time.Now()
	applicant.CreatedAt = now
	applicant.UpdatedAt = now

	query, args, err := psql().
		Insert(applicantTableName).
		SetMap(utils.StructToMap(applicant)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate applicant insert query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to insert applicant")
}

func (r *ApplicantRepository) Update(ctx context.Context, applicant *types.Applicant) error {
	applicant.UpdatedAt = time.Now()

	query, args, err := psql().
		Update(applicantTableName).
		SetMap(utils.StructToMap(applicant, "id", "user_id", "created_at")).
		Where(sq.Eq{"id": applicant.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate applicant update query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to update applicant")
}
