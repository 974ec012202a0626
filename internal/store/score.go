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

var scoreTableName = table("application_scores")

var scoreColumns = utils.StructTagValues(types.ApplicationScore{})

type ScoreRepository struct {
	db DBTX
}

func NewScoreRepository(db DBTX) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// EnsureScoreRow inserts an unscored placeholder for the triple unless one
// already exists. It reports whether a row was created.
func (r *ScoreRepository) EnsureScoreRow(ctx context.Context, applicationID, criterionID, evaluatorID string) (bool, error) {
	now := time.Now()

	query, args, err := psql().
		Insert(scoreTableName).
		Columns("id", "application_id", "criterion_id", "evaluator_id", "score", "scored", "created_at", "updated_at").
		Values(utils.NanoID(), applicationID, criterionID, evaluatorID, 0, false, now, now).
		Suffix("ON CONFLICT (application_id, criterion_id, evaluator_id) DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to generate score placeholder query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to insert score placeholder: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *ScoreRepository) Score(ctx context.Context, applicationID, criterionID, evaluatorID string) (*types.ApplicationScore, error) {
	query, args, err := psql().
		Select(scoreColumns...).
		From(scoreTableName).
		Where(sq.Eq{
			"application_id": applicationID,
			"criterion_id":   criterionID,
			"evaluator_id":   evaluatorID,
		}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate score query: %w", err)
	}

	var score = new(types.ApplicationScore)
	err = pgxscan.Get(ctx, r.db, score, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrScoreNotFound
		}
		return nil, fmt.Errorf("failed to fetch score: %w", err)
	}

	return score, nil
}

func (r *ScoreRepository) UpdateScore(ctx context.Context, score *types.ApplicationScore) error {
	score.UpdatedAt = time.Now()

	query, args, err := psql().
		Update(scoreTableName).
		Set("score", score.Score).
		Set("notes", score.Notes).
		Set("scored", score.Scored).
		Set("scored_at", score.ScoredAt).
		Set("updated_at", score.UpdatedAt).
		Where(sq.Eq{"id": score.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate score update query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to update score")
}

func (r *ScoreRepository) ScoresByApplication(ctx context.Context, applicationID string) ([]*types.ApplicationScore, error) {
	return r.scoresWhere(ctx, sq.Eq{"application_id": applicationID})
}

func (r *ScoreRepository) ScoresByEvaluator(ctx context.Context, evaluatorID string) ([]*types.ApplicationScore, error) {
	return r.scoresWhere(ctx, sq.Eq{"evaluator_id": evaluatorID})
}

func (r *ScoreRepository) scoresWhere(ctx context.Context, where sq.Eq) ([]*types.ApplicationScore, error) {
	query, args, err := psql().
		Select(scoreColumns...).
		From(scoreTableName).
		Where(where).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate scores query: %w", err)
	}

	var scores = make([]*types.ApplicationScore, 0)
	err = pgxscan.Select(ctx, r.db, &scores, query, args...)
	return scores, utils.ErrorWrapOrNil(err, "failed to fetch scores")
}

// ConfigurationScoreCount returns how many score rows, placeholders
// included, reference the criteria of a configuration.
func (r *ScoreRepository) ConfigurationScoreCount(ctx context.Context, configurationID string) (int, error) {
	query, args, err := psql().
		Select("COUNT(*)").
		From(scoreTableName + " s").
		Join(criterionTableName + " c ON c.id = s.criterion_id").
		Where(sq.Eq{"c.configuration_id": configurationID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate configuration score count query: %w", err)
	}

	var count int
	err = r.db.QueryRow(ctx, query, args...).Scan(&count)
	return count, utils.ErrorWrapOrNil(err, "failed to count configuration scores")
}

type assignmentCount struct {
	EvaluatorID  string `db:"evaluator_id"`
	Applications int    `db:"applications"`
}

// AssignmentCounts returns the number of distinct applications each
// evaluator holds score rows for.
func (r *ScoreRepository) AssignmentCounts(ctx context.Context, evaluatorIDs []string) (map[string]int, error) {
	out := make(map[string]int, len(evaluatorIDs))
	if len(evaluatorIDs) == 0 {
		return out, nil
	}

	query, args, err := psql().
		Select("evaluator_id", "COUNT(DISTINCT application_id) AS applications").
		From(scoreTableName).
		Where(sq.Eq{"evaluator_id": evaluatorIDs}).
		GroupBy("evaluator_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate assignment count query: %w", err)
	}

	var counts []assignmentCount
	err = pgxscan.Select(ctx, r.db, &counts, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignment counts: %w", err)
	}

	for _, c := range counts {
		out[c.EvaluatorID] = c.Applications
	}
	return out, nil
}
