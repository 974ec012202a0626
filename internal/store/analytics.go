package store

import (
	"adaptgrant/pkg/types"
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
)

// AnalyticsRepository runs the grouped read queries behind the admin
// dashboards. Callers shape and zero-fill the results.
type AnalyticsRepository struct {
	db DBTX
}

func NewAnalyticsRepository(db DBTX) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

func (r *AnalyticsRepository) StatusCounts(ctx context.Context) ([]*types.StatusCount, error) {
	query, args, err := psql().
		Select("status", "COUNT(*) AS count").
		From(applicationTableName).
		GroupBy("status").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate status count query: %w", err)
	}

	var counts = make([]*types.StatusCount, 0)
	err = pgxscan.Select(ctx, r.db, &counts, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch status counts: %w", err)
	}

	return counts, nil
}

type bucketCount struct {
	Bucket int `db:"bucket"`
	Count  int `db:"count"`
}

// ScoreBuckets counts eligibility totals per 10 point bucket. Bucket 9 also
// holds a perfect 100.
func (r *AnalyticsRepository) ScoreBuckets(ctx context.Context) (map[int]int, error) {
	query, args, err := psql().
		Select("LEAST(GREATEST(FLOOR(total_score / 10), 0), 9)::int AS bucket", "COUNT(*) AS count").
		From(eligibilityTableName).
		GroupBy("bucket").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate score bucket query: %w", err)
	}

	var rows []bucketCount
	err = pgxscan.Select(ctx, r.db, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch score buckets: %w", err)
	}

	out := make(map[int]int, len(rows))
	for _, row := range rows {
		out[row.Bucket] = row.Count
	}
	return out, nil
}

func (r *AnalyticsRepository) EligibilitySummary(ctx context.Context) (*types.EligibilitySummary, error) {
	query, args, err := psql().
		Select(
			"COUNT(*) AS evaluated",
			"COUNT(*) FILTER (WHERE is_eligible) AS eligible",
			"COUNT(*) FILTER (WHERE NOT is_eligible) AS ineligible",
			"COALESCE(AVG(total_score), 0) AS average_total",
			"COUNT(*) FILTER (WHERE age_eligible) AS age_passed",
			"COUNT(*) FILTER (WHERE registration_eligible) AS registration_passed",
			"COUNT(*) FILTER (WHERE revenue_eligible) AS revenue_passed",
			"COUNT(*) FILTER (WHERE business_plan_complete) AS business_plan_passed",
			"COUNT(*) FILTER (WHERE climate_impact_present) AS climate_impact_passed",
		).
		From(eligibilityTableName).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate eligibility summary query: %w", err)
	}

	var summary = new(types.EligibilitySummary)
	err = pgxscan.Get(ctx, r.db, summary, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch eligibility summary: %w", err)
	}

	return summary, nil
}

func (r *AnalyticsRepository) CategoryAverages(ctx context.Context) ([]*types.CategoryAverage, error) {
	query, args, err := psql().
		Select("kv.key AS category", "AVG(kv.value::double precision) AS average").
		From(eligibilityTableName + " e, jsonb_each_text(e.category_scores) AS kv").
		GroupBy("kv.key").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate category average query: %w", err)
	}

	var averages = make([]*types.CategoryAverage, 0)
	err = pgxscan.Select(ctx, r.db, &averages, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch category averages: %w", err)
	}

	return averages, nil
}

func (r *AnalyticsRepository) EvaluatorPerformance(ctx context.Context) ([]*types.EvaluatorPerformance, error) {
	query, args, err := psql().
		Select(
			"e.id AS evaluator_id",
			"e.display_name",
			"e.role",
			"COUNT(s.id) AS assigned",
			"COUNT(s.id) FILTER (WHERE s.scored) AS scored",
			"COALESCE(AVG(s.score) FILTER (WHERE s.scored), 0) AS average_score",
		).
		From(evaluatorTableName + " e").
		LeftJoin(scoreTableName + " s ON s.evaluator_id = e.id").
		GroupBy("e.id", "e.display_name", "e.role").
		OrderBy("e.display_name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate evaluator performance query: %w", err)
	}

	var rows = make([]*types.EvaluatorPerformance, 0)
	err = pgxscan.Select(ctx, r.db, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch evaluator performance: %w", err)
	}

	return rows, nil
}

// CountyBreakdown groups submitted applications by the applicant's county.
func (r *AnalyticsRepository) CountyBreakdown(ctx context.Context) ([]*types.Breakdown, error) {
	return r.breakdown(ctx, "ap.county", applicantTableName+" ap ON ap.id = a.applicant_id")
}

// SectorBreakdown groups submitted applications by business sector.
func (r *AnalyticsRepository) SectorBreakdown(ctx context.Context) ([]*types.Breakdown, error) {
	return r.breakdown(ctx, "b.sector", businessTableName+" b ON b.id = a.business_id")
}

func (r *AnalyticsRepository) breakdown(ctx context.Context, column, join string) ([]*types.Breakdown, error) {
	key := fmt.Sprintf("COALESCE(NULLIF(TRIM(%s), ''), 'unknown')", column)

	query, args, err := psql().
		Select(key+" AS key", "COUNT(*) AS count").
		From(applicationTableName + " a").
		Join(join).
		Where(sq.NotEq{"a.status": types.ApplicationStatusDraft}).
		GroupBy("key").
		OrderBy("count DESC", "key ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate breakdown query: %w", err)
	}

	var rows = make([]*types.Breakdown, 0)
	err = pgxscan.Select(ctx, r.db, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch breakdown: %w", err)
	}

	return rows, nil
}
