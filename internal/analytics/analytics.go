// Package analytics builds the admin dashboard reports from grouped queries
// and caches them in Redis.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"adaptgrant/internal/utils"
	"adaptgrant/internal/workflow"
	"adaptgrant/pkg/types"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	ReportStatus      = "status"
	ReportFunnel      = "funnel"
	ReportScores      = "scores"
	ReportEligibility = "eligibility"
	ReportCategories  = "categories"
	ReportEvaluators  = "evaluators"
	ReportCounties    = "counties"
	ReportSectors     = "sectors"
)

var Reports = []string{
	ReportStatus,
	ReportFunnel,
	ReportScores,
	ReportEligibility,
	ReportCategories,
	ReportEvaluators,
	ReportCounties,
	ReportSectors,
}

var ErrUnknownReport = errors.New("unknown analytics report")

// Source is the grouped query layer, implemented by store.AnalyticsRepository.
type Source interface {
	StatusCounts(ctx context.Context) ([]*types.StatusCount, error)
	ScoreBuckets(ctx context.Context) (map[int]int, error)
	EligibilitySummary(ctx context.Context) (*types.EligibilitySummary, error)
	CategoryAverages(ctx context.Context) ([]*types.CategoryAverage, error)
	EvaluatorPerformance(ctx context.Context) ([]*types.EvaluatorPerformance, error)
	CountyBreakdown(ctx context.Context) ([]*types.Breakdown, error)
	SectorBreakdown(ctx context.Context) ([]*types.Breakdown, error)
}

type Service struct {
	source Source
	redis  *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

// New builds a Service. A nil redis client disables caching.
func New(source Source, client *redis.Client, ttl time.Duration, logger *logrus.Logger) *Service {
	return &Service{
		source: source,
		redis:  client,
		ttl:    ttl,
		logger: logger,
	}
}

// Report returns the named report.
func (s *Service) Report(ctx context.Context, name string) (any, error) {
	switch name {
	case ReportStatus:
		return s.StatusDistribution(ctx)
	case ReportFunnel:
		return s.Funnel(ctx)
	case ReportScores:
		return s.ScoreDistribution(ctx)
	case ReportEligibility:
		return s.Eligibility(ctx)
	case ReportCategories:
		return s.Categories(ctx)
	case ReportEvaluators:
		return s.Evaluators(ctx)
	case ReportCounties:
		return s.Counties(ctx)
	case ReportSectors:
		return s.Sectors(ctx)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownReport, name)
}

// StatusDistribution has one entry per status in pipeline order, zero filled.
func (s *Service) StatusDistribution(ctx context.Context) ([]*types.StatusCount, error) {
	return cached(ctx, s, ReportStatus, s.statusDistribution)
}

func (s *Service) statusDistribution(ctx context.Context) ([]*types.StatusCount, error) {
	rows, err := s.source.StatusCounts(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[types.ApplicationStatus]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}

	out := make([]*types.StatusCount, 0, len(types.AllApplicationStatuses))
	for _, status := range types.AllApplicationStatuses {
		out = append(out, &types.StatusCount{Status: status, Count: counts[status]})
	}
	return out, nil
}

// Funnel counts, for each pipeline stage, the applications whose current
// status is at or beyond it. Rejected applications count toward draft and
// submitted only.
func (s *Service) Funnel(ctx context.Context) ([]*types.FunnelStage, error) {
	return cached(ctx, s, ReportFunnel, func(ctx context.Context) ([]*types.FunnelStage, error) {
		distribution, err := s.statusDistribution(ctx)
		if err != nil {
			return nil, err
		}
		return funnel(distribution), nil
	})
}

func funnel(distribution []*types.StatusCount) []*types.FunnelStage {
	submittedStage := workflow.Stage(types.ApplicationStatusSubmitted)

	out := make([]*types.FunnelStage, 0, len(types.AllApplicationStatuses))
	for _, stage := range types.AllApplicationStatuses {
		if stage == types.ApplicationStatusRejected {
			continue
		}

		reached := 0
		for _, row := range distribution {
			switch {
			case row.Status == types.ApplicationStatusRejected:
				if workflow.Stage(stage) <= submittedStage {
					reached += row.Count
				}
			case workflow.Stage(row.Status) >= workflow.Stage(stage):
				reached += row.Count
			}
		}

		out = append(out, &types.FunnelStage{Status: stage, Reached: reached})
	}
	return out
}

// ScoreDistribution is a ten bucket histogram of total scores.
func (s *Service) ScoreDistribution(ctx context.Context) ([]*types.ScoreBucket, error) {
	return cached(ctx, s, ReportScores, func(ctx context.Context) ([]*types.ScoreBucket, error) {
		counts, err := s.source.ScoreBuckets(ctx)
		if err != nil {
			return nil, err
		}
		return buckets(counts), nil
	})
}

func buckets(counts map[int]int) []*types.ScoreBucket {
	out := make([]*types.ScoreBucket, 0, 10)
	for i := 0; i < 10; i++ {
		b := &types.ScoreBucket{Min: i * 10, Max: i*10 + 9, Count: counts[i]}
		if i == 9 {
			b.Max = 100
		}
		b.Label = fmt.Sprintf("%d-%d", b.Min, b.Max)
		out = append(out, b)
	}
	return out
}

func (s *Service) Eligibility(ctx context.Context) (*types.EligibilitySummary, error) {
	return cached(ctx, s, ReportEligibility, func(ctx context.Context) (*types.EligibilitySummary, error) {
		summary, err := s.source.EligibilitySummary(ctx)
		if err != nil {
			return nil, err
		}
		if summary == nil {
			summary = new(types.EligibilitySummary)
		}
		summary.AverageTotal = utils.RoundFloat64(summary.AverageTotal, 2)
		return summary, nil
	})
}

// Categories has one average per category in display order, zero filled.
func (s *Service) Categories(ctx context.Context) ([]*types.CategoryAverage, error) {
	return cached(ctx, s, ReportCategories, func(ctx context.Context) ([]*types.CategoryAverage, error) {
		rows, err := s.source.CategoryAverages(ctx)
		if err != nil {
			return nil, err
		}

		averages := make(map[types.CriterionCategory]float64, len(rows))
		for _, row := range rows {
			averages[row.Category] = row.Average
		}

		out := make([]*types.CategoryAverage, 0, len(types.AllCriterionCategories))
		for _, category := range types.AllCriterionCategories {
			out = append(out, &types.CategoryAverage{
				Category: category,
				Average:  utils.RoundFloat64(averages[category], 2),
			})
		}
		return out, nil
	})
}

func (s *Service) Evaluators(ctx context.Context) ([]*types.EvaluatorPerformance, error) {
	return cached(ctx, s, ReportEvaluators, func(ctx context.Context) ([]*types.EvaluatorPerformance, error) {
		rows, err := s.source.EvaluatorPerformance(ctx)
		if err != nil {
			return nil, err
		}

		for _, row := range rows {
			if row.Assigned > 0 {
				row.CompletionRate = utils.RoundFloat64(float64(row.Scored)/float64(row.Assigned)*100, 2)
			}
			row.AverageScore = utils.RoundFloat64(row.AverageScore, 2)
		}
		return rows, nil
	})
}

func (s *Service) Counties(ctx context.Context) ([]*types.Breakdown, error) {
	return cached(ctx, s, ReportCounties, s.source.CountyBreakdown)
}

func (s *Service) Sectors(ctx context.Context) ([]*types.Breakdown, error) {
	return cached(ctx, s, ReportSectors, s.source.SectorBreakdown)
}
