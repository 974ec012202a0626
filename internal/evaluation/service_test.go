package evaluation

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"adaptgrant/internal/scoring"
	"adaptgrant/internal/workflow"
	"adaptgrant/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, time.October, 15, 12, 0, 0, 0, time.UTC)

func testRubric(id string, active bool) *types.ScoringConfiguration {
	return &types.ScoringConfiguration{
		ID:            id,
		Name:          "Adaptation rubric",
		Version:       1,
		TotalMaxScore: 100,
		PassThreshold: 60,
		IsActive:      active,
		Criteria: []*types.ScoringCriterion{
			{ID: id + "-innovation", ConfigurationID: id, Name: "Innovation", Category: types.CategoryInnovation, MaxPoints: 50, Weight: 1, EvaluationType: types.EvaluationTypeNumeric, DisplayOrder: 1},
			{ID: id + "-climate", ConfigurationID: id, Name: "Climate fit", Category: types.CategoryClimateAdaptation, MaxPoints: 30, Weight: 1, EvaluationType: types.EvaluationTypeNumeric, DisplayOrder: 2},
			{ID: id + "-pitch", ConfigurationID: id, Name: "Pitch", Category: types.CategoryDragonsDen, MaxPoints: 20, Weight: 1, EvaluationType: types.EvaluationTypeBoolean, DisplayOrder: 3},
		},
	}
}

func eligibleProfile() *types.ApplicationProfile {
	dob := time.Date(1998, time.June, 1, 0, 0, 0, 0, time.UTC)
	return &types.ApplicationProfile{
		Application: &types.Application{CompletedSteps: []string{"personal", "business", "financial", "adaptation", "support"}},
		Applicant:   &types.Applicant{FirstName: "Wanjiru", LastName: "Otieno", Email: "wanjiru@example.com", DateOfBirth: &dob},
		Business: &types.Business{
			Name:                     "CoolHarvest",
			RegistrationStatus:       types.RegistrationStatusRegistered,
			AnnualRevenue:            85000,
			Description:              strings.Repeat("Solar cold rooms for fresh produce traders. ", 2),
			BusinessPlanSummary:      "Storage as a service",
			ProductsServices:         "Cold rooms",
			TargetMarket:             "Market traders",
			ClimateRiskAddressed:     "Heat driven spoilage",
			AdaptationSolution:       "Off-grid cooling",
			ClimateImpactDescription: "Less food loss in heat waves",
		},
	}
}

func evaluator(id string, role types.Role) *types.EvaluatorProfile {
	return &types.EvaluatorProfile{ID: id, UserID: "user-" + id, DisplayName: id, Role: role, IsActive: true}
}

type recordingNotifier struct {
	changes []*types.StatusChange
	err     error
}

func (n *recordingNotifier) StatusChanged(ctx context.Context, profile *types.ApplicationProfile, change *types.StatusChange) error {
	n.changes = append(n.changes, change)
	return n.err
}

type countingInvalidator struct {
	calls int
}

func (c *countingInvalidator) Invalidate(ctx context.Context) error {
	c.calls++
	return nil
}

func newTestService(repo *fakeRepository, opts ...Option) *Service {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	return New(repo, scoring.NewEngine(scoring.DefaultMinAge, scoring.DefaultMaxAge), logger, opts...)
}

func seededRepository() *fakeRepository {
	repo := newFakeRepository()
	repo.addConfiguration(testRubric("cfg-1", true))

	repo.addProfile("app-1", types.ApplicationStatusUnderReview, testNow.Add(-3*time.Hour), eligibleProfile())
	repo.addProfile("app-2", types.ApplicationStatusUnderReview, testNow.Add(-2*time.Hour), eligibleProfile())
	repo.addProfile("app-3", types.ApplicationStatusScoringPhase, testNow.Add(-time.Hour), eligibleProfile())
	repo.addProfile("app-draft", types.ApplicationStatusDraft, testNow, eligibleProfile())

	repo.addEvaluator(evaluator("ev-tech-a", types.RoleTechnicalReviewer))
	repo.addEvaluator(evaluator("ev-tech-b", types.RoleTechnicalReviewer))
	repo.addEvaluator(evaluator("ev-jury", types.RoleJuryMember))
	repo.addEvaluator(evaluator("ev-judge", types.RoleDragonsDenJudge))

	return repo
}

func TestAutoAssign_RoundRobinCreatesPlaceholders(t *testing.T) {
	repo := seededRepository()
	svc := newTestService(repo)

	result, err := svc.AutoAssign(context.Background(), types.RoleTechnicalReviewer, "", 1)
	require.NoError(t, err)

	assert.Equal(t, []workflow.Pair{
		{ApplicationID: "app-1", EvaluatorID: "ev-tech-a"},
		{ApplicationID: "app-2", EvaluatorID: "ev-tech-b"},
	}, result.Assignments)

	// two non pitch criteria per assignment
	assert.Equal(t, 4, result.RowsCreated)
	for _, row := range repo.scoreRows("") {
		assert.False(t, row.Scored)
		assert.NotEqual(t, "cfg-1-pitch", row.CriterionID)
	}
}

func TestAutoAssign_NeverAssignsOutsideRoleStatuses(t *testing.T) {
	roles := []types.Role{types.RoleTechnicalReviewer, types.RoleJuryMember, types.RoleDragonsDenJudge}
	statuses := append([]types.ApplicationStatus{""}, types.AllApplicationStatuses...)

	for _, role := range roles {
		for _, status := range statuses {
			repo := seededRepository()
			svc := newTestService(repo)

			_, err := svc.AutoAssign(context.Background(), role, status, 2)
			if err != nil {
				assert.ErrorIs(t, err, ErrNoEvaluators)
			}

			for _, row := range repo.scoreRows("") {
				application := repo.state.applications[row.ApplicationID]
				assert.True(t, workflow.CanAct(role, application.Status),
					"role %s got a row on %s application", role, application.Status)
			}
		}
	}
}

func TestAutoAssign_ReportsSkippedApplications(t *testing.T) {
	repo := seededRepository()
	svc := newTestService(repo)

	result, err := svc.AutoAssign(context.Background(), types.RoleTechnicalReviewer, types.ApplicationStatusScoringPhase, 1)
	require.NoError(t, err)

	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "app-3", result.Skipped[0].ApplicationID)
	assert.Empty(t, result.Assignments)
	assert.Empty(t, repo.scoreRows(""))
}

func TestAutoAssign_IsIdempotent(t *testing.T) {
	repo := seededRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	first, err := svc.AutoAssign(ctx, types.RoleJuryMember, "", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, first.RowsCreated)

	second, err := svc.AutoAssign(ctx, types.RoleJuryMember, "", 1)
	require.NoError(t, err)
	assert.Equal(t, 0, second.RowsCreated)
	assert.Len(t, repo.scoreRows("app-3"), 2)
}

func TestAutoAssign_RerunKeepsEvaluatorsAtCapacity(t *testing.T) {
	repo := seededRepository()
	for _, id := range []string{"ev-tech-a", "ev-tech-b"} {
		e := repo.state.evaluators[id]
		e.MaxAssignments = 1
		repo.state.evaluators[id] = e
	}
	svc := newTestService(repo)
	ctx := context.Background()

	first, err := svc.AutoAssign(ctx, types.RoleTechnicalReviewer, "", 1)
	require.NoError(t, err)
	require.Len(t, first.Assignments, 2)

	second, err := svc.AutoAssign(ctx, types.RoleTechnicalReviewer, "", 1)
	require.NoError(t, err)
	assert.Equal(t, first.Assignments, second.Assignments)
	assert.Equal(t, 0, second.RowsCreated)
}

func TestAutoAssign_RejectsNonEvaluatorRole(t *testing.T) {
	svc := newTestService(seededRepository())

	_, err := svc.AutoAssign(context.Background(), types.RoleAdmin, "", 1)
	assert.ErrorIs(t, err, ErrNotEvaluatorRole)
}

func TestAssign_EnforcesRoleGate(t *testing.T) {
	repo := seededRepository()
	svc := newTestService(repo)

	_, err := svc.Assign(context.Background(), "app-1", "ev-jury")

	var gateErr *workflow.RoleGateError
	require.ErrorAs(t, err, &gateErr)
	assert.Equal(t, types.RoleJuryMember, gateErr.Role)
	assert.Empty(t, repo.scoreRows(""))
}

func TestAssign_DragonsDenJudgeGetsPitchCriteriaOnly(t *testing.T) {
	repo := seededRepository()
	repo.addProfile("app-den", types.ApplicationStatusDragonsDen, testNow, eligibleProfile())
	svc := newTestService(repo)

	result, err := svc.Assign(context.Background(), "app-den", "ev-judge")
	require.NoError(t, err)
	assert.Equal(t, 1, result.RowsCreated)

	rows := repo.scoreRows("app-den")
	require.Len(t, rows, 1)
	assert.Equal(t, "cfg-1-pitch", rows[0].CriterionID)
}

func TestSubmitScore(t *testing.T) {
	ctx := context.Background()

	t.Run("updates the assigned row and evaluates", func(t *testing.T) {
		repo := seededRepository()
		svc := newTestService(repo)
		_, err := svc.Assign(ctx, "app-3", "ev-jury")
		require.NoError(t, err)

		score, eligibility, err := svc.SubmitScore(ctx, "ev-jury", "app-3", "cfg-1-innovation", ScoreSubmission{Score: 45})
		require.NoError(t, err)
		assert.True(t, score.Scored)
		require.NotNil(t, score.ScoredAt)
		assert.Equal(t, 45.0, eligibility.TotalScore)
		assert.False(t, eligibility.IsEligible)

		_, eligibility, err = svc.SubmitScore(ctx, "ev-jury", "app-3", "cfg-1-climate", ScoreSubmission{Score: 20})
		require.NoError(t, err)
		assert.Equal(t, 65.0, eligibility.TotalScore)
		assert.True(t, eligibility.IsEligible)

		stored, err := repo.Eligibility(ctx, "app-3")
		require.NoError(t, err)
		assert.Equal(t, 65.0, stored.TotalScore)
		assert.Len(t, repo.scoreRows("app-3"), 2)
	})

	t.Run("unassigned criterion", func(t *testing.T) {
		svc := newTestService(seededRepository())

		_, _, err := svc.SubmitScore(ctx, "ev-jury", "app-3", "cfg-1-innovation", ScoreSubmission{Score: 10})
		assert.ErrorIs(t, err, types.ErrScoreNotFound)
	})

	t.Run("status outside role", func(t *testing.T) {
		repo := seededRepository()
		svc := newTestService(repo)
		_, err := svc.Assign(ctx, "app-1", "ev-tech-a")
		require.NoError(t, err)

		_, err = svc.Transition(ctx, "app-1", types.ApplicationStatusRejected, "admin", nil)
		require.NoError(t, err)

		_, _, err = svc.SubmitScore(ctx, "ev-tech-a", "app-1", "cfg-1-innovation", ScoreSubmission{Score: 10})
		var gateErr *workflow.RoleGateError
		assert.ErrorAs(t, err, &gateErr)
	})

	t.Run("out of range score", func(t *testing.T) {
		repo := seededRepository()
		svc := newTestService(repo)
		_, err := svc.Assign(ctx, "app-3", "ev-jury")
		require.NoError(t, err)

		_, _, err = svc.SubmitScore(ctx, "ev-jury", "app-3", "cfg-1-innovation", ScoreSubmission{Score: 51})
		var verr *scoring.ValidationError
		require.ErrorAs(t, err, &verr)

		row, err := repo.Score(ctx, "app-3", "cfg-1-innovation", "ev-jury")
		require.NoError(t, err)
		assert.False(t, row.Scored)
	})
}

func TestTransition_RecordsAuditAndNotifies(t *testing.T) {
	repo := seededRepository()
	notifier := &recordingNotifier{}
	cache := &countingInvalidator{}
	svc := newTestService(repo, WithNotifier(notifier), WithCacheInvalidator(cache))

	reason := "  strong technical review  "
	change, err := svc.Transition(context.Background(), "app-1", types.ApplicationStatusShortlisted, "admin-1", &reason)
	require.NoError(t, err)

	assert.Equal(t, types.ApplicationStatusUnderReview, change.FromStatus)
	assert.Equal(t, types.ApplicationStatusShortlisted, change.ToStatus)
	require.NotNil(t, change.Reason)
	assert.Equal(t, "strong technical review", *change.Reason)

	assert.Equal(t, types.ApplicationStatusShortlisted, repo.state.applications["app-1"].Status)
	require.Len(t, repo.state.changes, 1)
	assert.Len(t, notifier.changes, 1)
	assert.Equal(t, 1, cache.calls)
}

func TestTransition_NotifierFailureIsSwallowed(t *testing.T) {
	repo := seededRepository()
	svc := newTestService(repo, WithNotifier(&recordingNotifier{err: errors.New("smtp down")}))

	_, err := svc.Transition(context.Background(), "app-1", types.ApplicationStatusRejected, "admin-1", nil)
	assert.NoError(t, err)
}

func TestTransition_InvalidEdge(t *testing.T) {
	repo := seededRepository()
	svc := newTestService(repo)

	_, err := svc.Transition(context.Background(), "app-1", types.ApplicationStatusApproved, "admin-1", nil)

	var transitionErr *workflow.TransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, types.ApplicationStatusUnderReview, transitionErr.From)
	assert.Empty(t, repo.state.changes)
}

func TestTransition_SubmittedIsApplicantOnly(t *testing.T) {
	svc := newTestService(seededRepository())

	_, err := svc.Transition(context.Background(), "app-draft", types.ApplicationStatusSubmitted, "admin-1", nil)

	var transitionErr *workflow.TransitionError
	assert.ErrorAs(t, err, &transitionErr)
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("complete wizard", func(t *testing.T) {
		repo := seededRepository()
		svc := newTestService(repo)

		change, err := svc.Submit(ctx, "app-draft", "applicant-app-draft", "user-1")
		require.NoError(t, err)
		assert.Equal(t, types.ApplicationStatusSubmitted, change.ToStatus)

		application := repo.state.applications["app-draft"]
		require.NotNil(t, application.SubmittedAt)
		assert.Equal(t, testNow, *application.SubmittedAt)
	})

	t.Run("incomplete wizard", func(t *testing.T) {
		repo := seededRepository()
		application := repo.state.applications["app-draft"]
		application.CompletedSteps = []string{"personal", "business"}
		repo.state.applications["app-draft"] = application
		svc := newTestService(repo)

		_, err := svc.Submit(ctx, "app-draft", "applicant-app-draft", "user-1")
		assert.ErrorIs(t, err, types.ErrWizardIncomplete)
		assert.Equal(t, types.ApplicationStatusDraft, repo.state.applications["app-draft"].Status)
	})

	t.Run("someone else's application", func(t *testing.T) {
		svc := newTestService(seededRepository())

		_, err := svc.Submit(ctx, "app-draft", "applicant-app-1", "user-1")
		assert.ErrorIs(t, err, types.ErrApplicationNotFound)
	})
}

func TestBulkTransition(t *testing.T) {
	ctx := context.Background()

	t.Run("refuses targets outside the whitelist", func(t *testing.T) {
		svc := newTestService(seededRepository())

		_, err := svc.BulkTransition(ctx, []string{"app-draft"}, types.ApplicationStatusSubmitted, "admin-1", nil)
		assert.ErrorIs(t, err, ErrBulkTargetNotAllowed)
	})

	t.Run("reports per application outcomes", func(t *testing.T) {
		repo := seededRepository()
		svc := newTestService(repo)

		result, err := svc.BulkTransition(ctx, []string{"app-1", "app-2", "app-3", "missing", "app-1"}, types.ApplicationStatusShortlisted, "admin-1", nil)
		require.NoError(t, err)

		assert.Equal(t, 2, result.Succeeded)
		assert.Equal(t, 2, result.Skipped)
		require.Len(t, result.Outcomes, 4)
		assert.Equal(t, "invalid transition from scoring_phase", result.Outcomes[2].Reason)
		assert.Equal(t, "not found", result.Outcomes[3].Reason)

		for _, change := range repo.state.changes {
			assert.True(t, workflow.CanTransition(change.FromStatus, change.ToStatus))
			assert.True(t, workflow.IsBulkTarget(change.ToStatus))
		}
	})
}

func TestReevaluate_UnchangedConfigurationYieldsZeroDeltas(t *testing.T) {
	repo := seededRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Assign(ctx, "app-3", "ev-jury")
	require.NoError(t, err)
	_, _, err = svc.SubmitScore(ctx, "ev-jury", "app-3", "cfg-1-innovation", ScoreSubmission{Score: 40})
	require.NoError(t, err)

	first, err := svc.Reevaluate(ctx, "", false)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Evaluated)

	second, err := svc.Reevaluate(ctx, "", false)
	require.NoError(t, err)
	assert.Equal(t, 3, second.Evaluated)
	assert.Zero(t, second.Changed)
	for _, d := range second.Deltas {
		assert.Zero(t, d.Delta, d.ApplicationID)
		assert.False(t, d.Flipped, d.ApplicationID)
	}
}

func TestReevaluate_DryRunDoesNotWrite(t *testing.T) {
	repo := seededRepository()
	svc := newTestService(repo)

	report, err := svc.Reevaluate(context.Background(), "", true)
	require.NoError(t, err)

	assert.True(t, report.DryRun)
	assert.Equal(t, 3, report.Evaluated)
	assert.Empty(t, repo.state.eligibility)
}

func TestReevaluate_FailureRollsBackEveryWrite(t *testing.T) {
	repo := seededRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Reevaluate(ctx, "", false)
	require.NoError(t, err)
	before := repo.state.eligibility["app-1"]

	// a higher bar would flip every stored result if the run committed
	strict := testRubric("cfg-2", false)
	strict.PassThreshold = 100
	repo.addConfiguration(strict)
	repo.failUpsertFor = "app-3"

	_, err = svc.Reevaluate(ctx, "cfg-2", false)
	require.ErrorIs(t, err, errInjected)

	after := repo.state.eligibility["app-1"]
	assert.Equal(t, before, after)
	assert.Equal(t, "cfg-1", after.ConfigurationID)
}

func TestReevaluate_NoActiveConfiguration(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)

	_, err := svc.Reevaluate(context.Background(), "", false)
	assert.ErrorIs(t, err, types.ErrNoActiveConfiguration)
}

func TestActivate_IsExclusive(t *testing.T) {
	repo := seededRepository()
	repo.addConfiguration(testRubric("cfg-2", false))
	repo.addConfiguration(testRubric("cfg-3", false))
	cache := &countingInvalidator{}
	svc := newTestService(repo, WithCacheInvalidator(cache))

	report, err := svc.Activate(context.Background(), "cfg-2", true)
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, "cfg-2", report.ConfigurationID)
	assert.Equal(t, 3, report.Evaluated)

	active := 0
	for id, c := range repo.state.configs {
		if c.IsActive {
			active++
			assert.Equal(t, "cfg-2", id)
		}
	}
	assert.Equal(t, 1, active)
	assert.Equal(t, 1, cache.calls)
}

func TestActivate_RejectsInvalidConfiguration(t *testing.T) {
	repo := seededRepository()
	broken := testRubric("cfg-broken", false)
	broken.TotalMaxScore = 90
	repo.addConfiguration(broken)
	svc := newTestService(repo)

	_, err := svc.Activate(context.Background(), "cfg-broken", false)
	var verr *scoring.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, repo.state.configs["cfg-1"].IsActive)
}

func TestUpdateCriteria(t *testing.T) {
	ctx := context.Background()

	t.Run("active configuration is read only", func(t *testing.T) {
		svc := newTestService(seededRepository())

		_, err := svc.UpdateCriteria(ctx, "cfg-1", CriteriaUpdate{TotalMaxScore: 100, PassThreshold: 50, Criteria: testRubric("x", false).Criteria})
		assert.ErrorIs(t, err, types.ErrConfigurationActive)
	})

	t.Run("inactive configuration", func(t *testing.T) {
		repo := seededRepository()
		repo.addConfiguration(testRubric("cfg-2", false))
		svc := newTestService(repo)

		criteria := []*types.ScoringCriterion{
			{Name: "Everything", Category: types.CategoryInnovation, MaxPoints: 80, Weight: 1, EvaluationType: types.EvaluationTypeNumeric},
		}
		config, err := svc.UpdateCriteria(ctx, "cfg-2", CriteriaUpdate{TotalMaxScore: 80, PassThreshold: 40, Criteria: criteria})
		require.NoError(t, err)
		assert.Equal(t, 80.0, config.TotalMaxScore)
		require.Len(t, repo.state.configs["cfg-2"].Criteria, 1)
		assert.Equal(t, 1, repo.state.configs["cfg-2"].Criteria[0].DisplayOrder)
	})

	t.Run("scored configuration keeps its criteria", func(t *testing.T) {
		repo := seededRepository()
		svc := newTestService(repo)

		_, err := svc.Assign(ctx, "app-3", "ev-jury")
		require.NoError(t, err)
		_, _, err = svc.SubmitScore(ctx, "ev-jury", "app-3", "cfg-1-innovation", ScoreSubmission{Score: 40})
		require.NoError(t, err)
		require.NoError(t, svc.Deactivate(ctx, "cfg-1"))
		rows := len(repo.scoreRows("app-3"))

		criteria := []*types.ScoringCriterion{
			{Name: "Everything", Category: types.CategoryInnovation, MaxPoints: 80, Weight: 1, EvaluationType: types.EvaluationTypeNumeric},
		}
		_, err = svc.UpdateCriteria(ctx, "cfg-1", CriteriaUpdate{TotalMaxScore: 80, PassThreshold: 40, Criteria: criteria})
		assert.ErrorIs(t, err, types.ErrConfigurationScored)
		assert.Len(t, repo.state.configs["cfg-1"].Criteria, 3)
		assert.Len(t, repo.scoreRows("app-3"), rows)
	})

	t.Run("nil criterion is a validation error", func(t *testing.T) {
		repo := seededRepository()
		repo.addConfiguration(testRubric("cfg-2", false))
		svc := newTestService(repo)

		var err error
		require.NotPanics(t, func() {
			_, err = svc.UpdateCriteria(ctx, "cfg-2", CriteriaUpdate{TotalMaxScore: 100, PassThreshold: 60, Criteria: []*types.ScoringCriterion{nil}})
		})
		var verr *scoring.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Problems, "criteria[0]")
		assert.Len(t, repo.state.configs["cfg-2"].Criteria, 3)
	})
}

func TestCreateConfiguration_NilCriterion(t *testing.T) {
	repo := seededRepository()
	svc := newTestService(repo)

	config := testRubric("ignored", false)
	config.Criteria = append(config.Criteria, nil)

	var err error
	require.NotPanics(t, func() {
		_, err = svc.CreateConfiguration(context.Background(), config, "admin-1")
	})
	var verr *scoring.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Problems, "criteria[3]")
	assert.Len(t, repo.state.configs, 1)
}

func TestCreateAndCloneConfiguration(t *testing.T) {
	repo := seededRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	created, err := svc.CreateConfiguration(ctx, testRubric("ignored", true), "admin-1")
	require.NoError(t, err)
	assert.NotEqual(t, "ignored", created.ID)
	assert.False(t, created.IsActive)
	assert.Equal(t, 2, created.Version)

	clone, err := svc.Clone(ctx, created.ID, "", "admin-1")
	require.NoError(t, err)
	assert.Equal(t, created.Name, clone.Name)
	assert.Equal(t, 3, clone.Version)
	require.Len(t, clone.Criteria, len(created.Criteria))
	for i := range clone.Criteria {
		assert.NotEqual(t, created.Criteria[i].ID, clone.Criteria[i].ID)
		assert.Equal(t, clone.ID, clone.Criteria[i].ConfigurationID)
	}
}
