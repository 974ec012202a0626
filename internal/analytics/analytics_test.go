package analytics

import (
	"context"
	"io"
	"testing"
	"time"

	"adaptgrant/pkg/types"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	calls map[string]int

	statuses   []*types.StatusCount
	buckets    map[int]int
	summary    *types.EligibilitySummary
	categories []*types.CategoryAverage
	evaluators []*types.EvaluatorPerformance
	counties   []*types.Breakdown
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		calls: make(map[string]int),
		statuses: []*types.StatusCount{
			{Status: types.ApplicationStatusDraft, Count: 4},
			{Status: types.ApplicationStatusSubmitted, Count: 3},
			{Status: types.ApplicationStatusScoringPhase, Count: 2},
			{Status: types.ApplicationStatusApproved, Count: 1},
			{Status: types.ApplicationStatusRejected, Count: 5},
		},
		buckets: map[int]int{0: 2, 6: 3, 9: 1},
		summary: &types.EligibilitySummary{Evaluated: 6, Eligible: 4, Ineligible: 2, AverageTotal: 61.23456},
		categories: []*types.CategoryAverage{
			{Category: types.CategoryInnovation, Average: 12.3456},
		},
		evaluators: []*types.EvaluatorPerformance{
			{EvaluatorID: "ev-1", Assigned: 8, Scored: 6, AverageScore: 7.777},
			{EvaluatorID: "ev-2"},
		},
		counties: []*types.Breakdown{{Key: "Kisumu", Count: 3}, {Key: "unknown", Count: 1}},
	}
}

func (f *fakeSource) StatusCounts(ctx context.Context) ([]*types.StatusCount, error) {
	f.calls["status"]++
	return f.statuses, nil
}

func (f *fakeSource) ScoreBuckets(ctx context.Context) (map[int]int, error) {
	f.calls["scores"]++
	return f.buckets, nil
}

func (f *fakeSource) EligibilitySummary(ctx context.Context) (*types.EligibilitySummary, error) {
	f.calls["eligibility"]++
	summary := *f.summary
	return &summary, nil
}

func (f *fakeSource) CategoryAverages(ctx context.Context) ([]*types.CategoryAverage, error) {
	f.calls["categories"]++
	return f.categories, nil
}

func (f *fakeSource) EvaluatorPerformance(ctx context.Context) ([]*types.EvaluatorPerformance, error) {
	f.calls["evaluators"]++
	return f.evaluators, nil
}

func (f *fakeSource) CountyBreakdown(ctx context.Context) ([]*types.Breakdown, error) {
	f.calls["counties"]++
	return f.counties, nil
}

func (f *fakeSource) SectorBreakdown(ctx context.Context) ([]*types.Breakdown, error) {
	f.calls["sectors"]++
	return []*types.Breakdown{}, nil
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestStatusDistribution_ZeroFillsEveryStatus(t *testing.T) {
	svc := New(newFakeSource(), nil, time.Minute, quietLogger())

	out, err := svc.StatusDistribution(context.Background())
	require.NoError(t, err)

	require.Len(t, out, len(types.AllApplicationStatuses))
	for i, status := range types.AllApplicationStatuses {
		assert.Equal(t, status, out[i].Status)
	}
	assert.Equal(t, 0, out[2].Count, "under_review")
	assert.Equal(t, 5, out[8].Count, "rejected")
}

func TestFunnel(t *testing.T) {
	svc := New(newFakeSource(), nil, time.Minute, quietLogger())

	out, err := svc.Funnel(context.Background())
	require.NoError(t, err)

	reached := make(map[types.ApplicationStatus]int, len(out))
	for _, stage := range out {
		reached[stage.Status] = stage.Reached
	}

	assert.NotContains(t, reached, types.ApplicationStatusRejected)
	assert.Equal(t, 15, reached[types.ApplicationStatusDraft])
	assert.Equal(t, 11, reached[types.ApplicationStatusSubmitted])
	assert.Equal(t, 3, reached[types.ApplicationStatusUnderReview])
	assert.Equal(t, 3, reached[types.ApplicationStatusScoringPhase])
	assert.Equal(t, 1, reached[types.ApplicationStatusDragonsDen])
	assert.Equal(t, 1, reached[types.ApplicationStatusApproved])
}

func TestScoreDistribution_TenBuckets(t *testing.T) {
	svc := New(newFakeSource(), nil, time.Minute, quietLogger())

	out, err := svc.ScoreDistribution(context.Background())
	require.NoError(t, err)

	require.Len(t, out, 10)
	assert.Equal(t, "0-9", out[0].Label)
	assert.Equal(t, 2, out[0].Count)
	assert.Equal(t, "60-69", out[6].Label)
	assert.Equal(t, 3, out[6].Count)
	assert.Equal(t, "90-100", out[9].Label)
	assert.Equal(t, 100, out[9].Max)
	assert.Equal(t, 1, out[9].Count)
}

func TestCategories_ZeroFilledAndRounded(t *testing.T) {
	svc := New(newFakeSource(), nil, time.Minute, quietLogger())

	out, err := svc.Categories(context.Background())
	require.NoError(t, err)

	require.Len(t, out, len(types.AllCriterionCategories))
	assert.Equal(t, 12.35, out[0].Average)
	for _, c := range out[1:] {
		assert.Zero(t, c.Average, c.Category)
	}
}

func TestEvaluators_CompletionRate(t *testing.T) {
	svc := New(newFakeSource(), nil, time.Minute, quietLogger())

	out, err := svc.Evaluators(context.Background())
	require.NoError(t, err)

	require.Len(t, out, 2)
	assert.Equal(t, 75.0, out[0].CompletionRate)
	assert.Equal(t, 7.78, out[0].AverageScore)
	assert.Zero(t, out[1].CompletionRate)
}

func TestReport_UnknownName(t *testing.T) {
	svc := New(newFakeSource(), nil, time.Minute, quietLogger())

	_, err := svc.Report(context.Background(), "revenue")
	assert.ErrorIs(t, err, ErrUnknownReport)
}

func TestCache_ServesFromRedis(t *testing.T) {
	mr, client := setupRedis(t)
	source := newFakeSource()
	svc := New(source, client, time.Minute, quietLogger())
	ctx := context.Background()

	first, err := svc.Eligibility(ctx)
	require.NoError(t, err)
	assert.Equal(t, 61.23, first.AverageTotal)
	assert.True(t, mr.Exists("adaptgrant:analytics:eligibility"))

	second, err := svc.Eligibility(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, source.calls["eligibility"])

	mr.FastForward(2 * time.Minute)

	_, err = svc.Eligibility(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls["eligibility"])
}

func TestCache_Invalidate(t *testing.T) {
	mr, client := setupRedis(t)
	source := newFakeSource()
	svc := New(source, client, time.Minute, quietLogger())
	ctx := context.Background()

	for _, report := range Reports {
		_, err := svc.Report(ctx, report)
		require.NoError(t, err)
	}
	assert.Len(t, mr.Keys(), len(Reports))

	require.NoError(t, svc.Invalidate(ctx))
	assert.Empty(t, mr.Keys())

	_, err := svc.Counties(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls["counties"])
}

func TestCache_RedisFailureFallsBackToSource(t *testing.T) {
	mr, client := setupRedis(t)
	source := newFakeSource()
	svc := New(source, client, time.Minute, quietLogger())
	mr.Close()

	out, err := svc.Counties(context.Background())
	require.NoError(t, err)
	assert.Len(t, out, 2)

	_, err = svc.Counties(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls["counties"])
}
