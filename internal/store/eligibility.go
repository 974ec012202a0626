package store

import (
	"adaptgrant/internal/utils"
	"adaptgrant/pkg/types"
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
)

var eligibilityTableName = table("eligibility")

var eligibilityColumns = utils.StructTagValues(types.Eligibility{})

type EligibilityRepository struct {
	db DBTX
}

func NewEligibilityRepository(db DBTX) *EligibilityRepository {
	return &EligibilityRepository{db: db}
}

func (r *EligibilityRepository) Eligibility(ctx context.Context, applicationID string) (*types.Eligibility, error) {
	query, args, err := psql().
		Select(eligibilityColumns...).
		From(eligibilityTableName).
		Where(sq.Eq{"application_id": applicationID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate eligibility query: %w", err)
	}

	var eligibility = new(types.Eligibility)
	err = pgxscan.Get(ctx, r.db, eligibility, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrEligibilityNotFound
		}
		return nil, fmt.Errorf("failed to fetch eligibility: %w", err)
	}

	return eligibility, nil
}

// EligibilityByApplications returns stored results keyed by application id.
func (r *EligibilityRepository) EligibilityByApplications(ctx context.Context, applicationIDs []string) (map[string]*types.Eligibility, error) {
	out := make(map[string]*types.Eligibility, len(applicationIDs))
	if len(applicationIDs) == 0 {
		return out, nil
	}

	query, args, err := psql().
		Select(eligibilityColumns...).
		From(eligibilityTableName).
		Where(sq.Eq{"application_id": applicationIDs}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate eligibility query: %w", err)
	}

	var rows []*types.Eligibility
	err = pgxscan.Select(ctx, r.db, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch eligibility: %w", err)
	}

	for _, e := range rows {
		out[e.ApplicationID] = e
	}
	return out, nil
}

// Upsert stores the latest evaluation, replacing any previous one.
func (r *EligibilityRepository) Upsert(ctx context.Context, eligibility *types.Eligibility) error {
	updates := make([]string, 0, len(eligibilityColumns))
	for _, c := range eligibilityColumns {
		if c == "application_id" {
			continue
		}
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
	}

	query, args, err := psql().
		Insert(eligibilityTableName).
		SetMap(utils.StructToMap(eligibility)).
		Suffix("ON CONFLICT (application_id) DO UPDATE SET " + strings.Join(updates, ", ")).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate eligibility upsert query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to upsert eligibility")
}
