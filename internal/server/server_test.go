package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"adaptgrant/internal/analytics"
	"adaptgrant/internal/evaluation"
	"adaptgrant/internal/scoring"
	"adaptgrant/internal/workflow"
	"adaptgrant/pkg/types"

	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	ctypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/gorilla/securecookie"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVerifier struct {
	identities map[string]*Identity
}

func (f *fakeVerifier) Verify(_ context.Context, token string) (*Identity, error) {
	identity, ok := f.identities[token]
	if !ok {
		return nil, errors.New("unknown token")
	}
	return identity, nil
}

type fakeCognito struct {
	signUpErr  error
	confirmErr error
	authErr    error
	signedOut  []string
}

func (f *fakeCognito) SignUp(_ context.Context, _ *cognitoidentityprovider.SignUpInput, _ ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.SignUpOutput, error) {
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return &cognitoidentityprovider.SignUpOutput{UserSub: aws.String("sub-123")}, nil
}

func (f *fakeCognito) ConfirmSignUp(_ context.Context, _ *cognitoidentityprovider.ConfirmSignUpInput, _ ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.ConfirmSignUpOutput, error) {
	return &cognitoidentityprovider.ConfirmSignUpOutput{}, f.confirmErr
}

func (f *fakeCognito) InitiateAuth(_ context.Context, _ *cognitoidentityprovider.InitiateAuthInput, _ ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.InitiateAuthOutput, error) {
	if f.authErr != nil {
		return nil, f.authErr
	}
	return &cognitoidentityprovider.InitiateAuthOutput{
		AuthenticationResult: &ctypes.AuthenticationResultType{
			AccessToken: aws.String("access-token"),
			ExpiresIn:   3600,
		},
	}, nil
}

func (f *fakeCognito) GlobalSignOut(_ context.Context, in *cognitoidentityprovider.GlobalSignOutInput, _ ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.GlobalSignOutOutput, error) {
	f.signedOut = append(f.signedOut, aws.ToString(in.AccessToken))
	return &cognitoidentityprovider.GlobalSignOutOutput{}, nil
}

type fakeSource struct{}

func (fakeSource) StatusCounts(context.Context) ([]*types.StatusCount, error) {
	return []*types.StatusCount{{Status: types.ApplicationStatusSubmitted, Count: 3}}, nil
}
func (fakeSource) ScoreBuckets(context.Context) (map[int]int, error) { return map[int]int{}, nil }
func (fakeSource) EligibilitySummary(context.Context) (*types.EligibilitySummary, error) {
	return &types.EligibilitySummary{}, nil
}
func (fakeSource) CategoryAverages(context.Context) ([]*types.CategoryAverage, error) {
	return nil, nil
}
func (fakeSource) EvaluatorPerformance(context.Context) ([]*types.EvaluatorPerformance, error) {
	return nil, nil
}
func (fakeSource) CountyBreakdown(context.Context) ([]*types.Breakdown, error) { return nil, nil }
func (fakeSource) SectorBreakdown(context.Context) ([]*types.Breakdown, error) { return nil, nil }

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testConfig() *types.Config {
	return &types.Config{
		ServerPort:      0,
		CognitoClientID: "client",
		CookieHashKey:   base64.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(32)),
		CookieBlockKey:  base64.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(32)),
	}
}

func newTestService(t *testing.T, cognito *fakeCognito) *Service {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	verifier := &fakeVerifier{identities: map[string]*Identity{
		"admin-token":     {UserID: "u-admin", Role: types.RoleAdmin},
		"applicant-token": {UserID: "u-applicant", Role: types.RoleApplicant},
		"jury-token":      {UserID: "u-jury", Role: types.RoleJuryMember},
	}}

	logger := testLogger()
	svc, err := New(testConfig(), logger, nil, nil, analytics.New(fakeSource{}, client, time.Minute, logger), nil, nil, cognito, verifier)
	require.NoError(t, err)
	return svc
}

func do(t *testing.T, svc *Service, method, path, token, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	svc.Handler().ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestNew_RejectsInvalidCookieKeys(t *testing.T) {
	config := testConfig()
	config.CookieHashKey = "not base64!"

	_, err := New(config, testLogger(), nil, nil, nil, nil, nil, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COOKIE_HASH_KEY")
}

func TestHealthz(t *testing.T) {
	svc := newTestService(t, &fakeCognito{})

	rec, env := do(t, svc, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	svc.health = func(context.Context) error { return errors.New("down") }
	rec, env = do(t, svc, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.False(t, env.Success)
}

func TestRouting(t *testing.T) {
	svc := newTestService(t, &fakeCognito{})

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		status int
	}{
		{"unknown route", http.MethodGet, "/nope", "", http.StatusNotFound},
		{"wrong method", http.MethodDelete, "/healthz", "", http.StatusMethodNotAllowed},
		{"trailing slash redirects", http.MethodGet, "/healthz/", "", http.StatusMovedPermanently},
		{"no token", http.MethodGet, "/me", "", http.StatusUnauthorized},
		{"bad token", http.MethodGet, "/me", "forged", http.StatusUnauthorized},
		{"applicant on admin route", http.MethodGet, "/admin/analytics/status", "applicant-token", http.StatusForbidden},
		{"evaluator on admin route", http.MethodGet, "/admin/analytics/status", "jury-token", http.StatusForbidden},
		{"admin on applicant route", http.MethodGet, "/applications", "admin-token", http.StatusForbidden},
		{"applicant on evaluator route", http.MethodGet, "/evaluator/assignments", "applicant-token", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := do(t, svc, tt.method, tt.path, tt.token, "")
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestAnalyticsEndpoint(t *testing.T) {
	svc := newTestService(t, &fakeCognito{})

	rec, env := do(t, svc, http.MethodGet, "/admin/analytics/status", "admin-token", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	data, ok := env.Data.([]any)
	require.True(t, ok)
	assert.Len(t, data, len(types.AllApplicationStatuses))

	rec, env = do(t, svc, http.MethodGet, "/admin/analytics/bogus", "admin-token", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, analytics.ErrUnknownReport.Error(), env.Error)
}

func TestLogin_SetsEncryptedCookie(t *testing.T) {
	svc := newTestService(t, &fakeCognito{})

	rec, env := do(t, svc, http.MethodPost, "/auth/login", "", `{"email":"a@b.co","password":"secret"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, cookieAccessTokenName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	var token string
	require.NoError(t, svc.cookie.Decode(cookieAccessTokenName, cookies[0].Value, &token))
	assert.Equal(t, "access-token", token)

	// the cookie alone authenticates once the verifier knows the token
	svc.verifier.(*fakeVerifier).identities["access-token"] = &Identity{UserID: "u-admin", Role: types.RoleAdmin}
	req := httptest.NewRequest(http.MethodGet, "/admin/analytics/funnel", nil)
	req.AddCookie(cookies[0])
	out := httptest.NewRecorder()
	svc.Handler().ServeHTTP(out, req)
	assert.Equal(t, http.StatusOK, out.Code)
}

func TestLogin_Rejected(t *testing.T) {
	svc := newTestService(t, &fakeCognito{authErr: &ctypes.NotAuthorizedException{}})

	rec, env := do(t, svc, http.MethodPost, "/auth/login", "", `{"email":"a@b.co","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", env.Error)
}

func TestLogout_RevokesAndClearsCookie(t *testing.T) {
	cognito := &fakeCognito{}
	svc := newTestService(t, cognito)

	rec, _ := do(t, svc, http.MethodPost, "/auth/logout", "admin-token", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"admin-token"}, cognito.signedOut)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestRegister(t *testing.T) {
	valid := `{"givenName":"Amina","familyName":"Otieno","email":"amina@example.com","password":"Sup3r$ecretPw","confirmPassword":"Sup3r$ecretPw"}`

	t.Run("created", func(t *testing.T) {
		svc := newTestService(t, &fakeCognito{})
		rec, env := do(t, svc, http.MethodPost, "/auth/register", "", valid)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "sub-123", env.Data.(map[string]any)["userId"])
	})

	t.Run("field errors", func(t *testing.T) {
		svc := newTestService(t, &fakeCognito{})
		rec, env := do(t, svc, http.MethodPost, "/auth/register", "", `{"email":"nope","password":"short","confirmPassword":"other"}`)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, env.Details, "givenName")
		assert.Contains(t, env.Details, "email")
		assert.Contains(t, env.Details, "password")
		assert.Contains(t, env.Details, "confirmPassword")
	})

	t.Run("existing user", func(t *testing.T) {
		svc := newTestService(t, &fakeCognito{signUpErr: &ctypes.UsernameExistsException{}})
		rec, env := do(t, svc, http.MethodPost, "/auth/register", "", valid)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, env.Details, "email")
	})

	t.Run("unknown cognito failure", func(t *testing.T) {
		svc := newTestService(t, &fakeCognito{signUpErr: errors.New("boom")})
		rec, env := do(t, svc, http.MethodPost, "/auth/register", "", valid)
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "internal server error", env.Error)
	})
}

func TestConfirm(t *testing.T) {
	t.Run("validation details use json names", func(t *testing.T) {
		svc := newTestService(t, &fakeCognito{})
		rec, env := do(t, svc, http.MethodPost, "/auth/confirm", "", `{"email":"not-an-email","code":"  "}`)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, env.Details, "email")
		assert.Equal(t, "code must not be blank", env.Details["code"])
	})

	t.Run("code mismatch", func(t *testing.T) {
		svc := newTestService(t, &fakeCognito{confirmErr: &ctypes.CodeMismatchException{}})
		rec, _ := do(t, svc, http.MethodPost, "/auth/confirm", "", `{"email":"a@b.co","code":"123456"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("upstream failure", func(t *testing.T) {
		svc := newTestService(t, &fakeCognito{confirmErr: errors.New("boom")})
		rec, _ := do(t, svc, http.MethodPost, "/auth/confirm", "", `{"email":"a@b.co","code":"123456"}`)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})

	t.Run("malformed json", func(t *testing.T) {
		svc := newTestService(t, &fakeCognito{})
		rec, _ := do(t, svc, http.MethodPost, "/auth/confirm", "", `{"email":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown field", func(t *testing.T) {
		svc := newTestService(t, &fakeCognito{})
		rec, _ := do(t, svc, http.MethodPost, "/auth/confirm", "", `{"email":"a@b.co","code":"1","extra":true}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"bad request", errBadRequest("nope"), http.StatusBadRequest},
		{"forbidden", fmt.Errorf("wrapped: %w", types.ErrForbidden), http.StatusForbidden},
		{"not found", fmt.Errorf("load: %w", types.ErrApplicationNotFound), http.StatusNotFound},
		{"unknown report", fmt.Errorf("%w: x", analytics.ErrUnknownReport), http.StatusNotFound},
		{"transition", &workflow.TransitionError{From: types.ApplicationStatusDraft, To: types.ApplicationStatusApproved}, http.StatusUnprocessableEntity},
		{"role gate", &workflow.RoleGateError{Role: types.RoleJuryMember, Status: types.ApplicationStatusSubmitted}, http.StatusUnprocessableEntity},
		{"validation", &scoring.ValidationError{Problems: map[string]string{"criteria": "empty"}}, http.StatusUnprocessableEntity},
		{"ticket transition", &ticketTransitionError{From: types.TicketStatusClosed, To: types.TicketStatusOpen}, http.StatusUnprocessableEntity},
		{"rule", evaluation.ErrBulkTargetNotAllowed, http.StatusUnprocessableEntity},
		{"locked", errApplicationLocked, http.StatusUnprocessableEntity},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg, _ := statusFor(tt.err)
			assert.Equal(t, tt.status, status)
			if tt.status == http.StatusInternalServerError {
				assert.Equal(t, "internal server error", msg)
			}
		})
	}

	_, _, details := statusFor(&scoring.ValidationError{Problems: map[string]string{"passThreshold": "too high"}})
	assert.Equal(t, "too high", details["passThreshold"])
}

func TestRoleFromGroups(t *testing.T) {
	assert.Equal(t, types.RoleApplicant, roleFromGroups(nil))
	assert.Equal(t, types.RoleApplicant, roleFromGroups([]any{"staff", 7}))
	assert.Equal(t, types.RoleJuryMember, roleFromGroups([]any{"jury_member", "technical_reviewer"}))
	assert.Equal(t, types.RoleAdmin, roleFromGroups([]any{"dragons_den_judge", "admin"}))
}

func TestValidateRegisterInput(t *testing.T) {
	errs := validateRegisterInput(registerRequest{
		GivenName:       "Amina",
		FamilyName:      "Otieno",
		Email:           "amina@example.com",
		Password:        "Sup3r$ecretPw",
		ConfirmPassword: "Sup3r$ecretPw",
	})
	assert.Empty(t, errs)

	errs = validateRegisterInput(registerRequest{
		GivenName:       "Amina",
		FamilyName:      "Otieno",
		Email:           "amina@example.com",
		Password:        "alllowercase123!",
		ConfirmPassword: "alllowercase123!",
	})
	assert.Equal(t, []string{"password"}, keys(errs))
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "/healthz", routeLabel("/healthz"))
	assert.Equal(t, "/admin/applications", routeLabel("/admin/applications/abc123/status"))
	assert.Equal(t, "/", routeLabel("/"))
}

func TestCompleteStep(t *testing.T) {
	application := &types.Application{CurrentStep: types.WizardStepPersonal}

	completeStep(application, types.WizardStepPersonal)
	assert.Equal(t, types.WizardStepBusiness, application.CurrentStep)

	completeStep(application, types.WizardStepPersonal)
	assert.Equal(t, []string{"personal"}, application.CompletedSteps)

	completeStep(application, types.WizardStepSupport)
	assert.Equal(t, types.WizardStepReview, application.CurrentStep)
	assert.True(t, application.HasCompletedStep(types.WizardStepSupport))
}

func TestApplyPersonalStep(t *testing.T) {
	var applicant types.Applicant

	err := applyPersonalStep(&applicant, &types.PersonalStep{FirstName: " Amina ", LastName: "Otieno", DateOfBirth: "1995-04-02"})
	require.NoError(t, err)
	assert.Equal(t, "Amina", applicant.FirstName)
	require.NotNil(t, applicant.DateOfBirth)
	assert.Equal(t, 1995, applicant.DateOfBirth.Year())

	err = applyPersonalStep(&applicant, &types.PersonalStep{DateOfBirth: "02/04/1995"})
	status, _, _ := statusFor(err)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestApplyFinancialStep_ClearsFundingWhenNone(t *testing.T) {
	business := &types.Business{PreviousFunding: true, PreviousFundingAmount: 5000, PreviousFundingSource: aws.String("bank")}

	applyFinancialStep(business, &types.FinancialStep{AnnualRevenue: 100000, PreviousFundingAmount: 900})
	assert.Zero(t, business.PreviousFundingAmount)
	assert.Nil(t, business.PreviousFundingSource)
	assert.Equal(t, 100000.0, business.AnnualRevenue)
}

func TestApplyTicketStatus(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	ticket := &types.SupportTicket{Status: types.TicketStatusOpen}
	require.NoError(t, applyTicketStatus(ticket, types.TicketStatusResolved, clock))
	require.NotNil(t, ticket.ResolvedAt)
	assert.Equal(t, now, *ticket.ResolvedAt)

	require.NoError(t, applyTicketStatus(ticket, types.TicketStatusOpen, clock))
	assert.Nil(t, ticket.ResolvedAt)

	require.NoError(t, applyTicketStatus(ticket, types.TicketStatusClosed, clock))
	err := applyTicketStatus(ticket, types.TicketStatusOpen, clock)
	var transition *ticketTransitionError
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, types.TicketStatusClosed, ticket.Status)
}

func TestGroupAssignments(t *testing.T) {
	profile := func(id string, status types.ApplicationStatus) *types.ApplicationProfile {
		return &types.ApplicationProfile{Application: &types.Application{ID: id, Status: status}}
	}
	profiles := []*types.ApplicationProfile{
		profile("app-1", types.ApplicationStatusScoringPhase),
		profile("app-2", types.ApplicationStatusApproved),
		profile("app-3", types.ApplicationStatusScoringPhase),
	}
	scores := []*types.ApplicationScore{
		{ApplicationID: "app-1", CriterionID: "c-1", Scored: true},
		{ApplicationID: "app-1", CriterionID: "c-2"},
		{ApplicationID: "app-2", CriterionID: "c-1"},
		{ApplicationID: "app-3", CriterionID: "c-1"},
	}

	got := groupAssignments(types.RoleJuryMember, profiles, scores)
	require.Len(t, got, 2)
	assert.Equal(t, "app-1", got[0].Profile.Application.ID)
	assert.Len(t, got[0].Scores, 2)
	assert.Equal(t, 1, got[0].Pending)
	assert.Equal(t, "app-3", got[1].Profile.Application.ID)
}

func TestParseStatuses(t *testing.T) {
	statuses, err := parseStatuses("")
	require.NoError(t, err)
	assert.Nil(t, statuses)

	statuses, err = parseStatuses("submitted, finalist")
	require.NoError(t, err)
	assert.Equal(t, []types.ApplicationStatus{types.ApplicationStatusSubmitted, types.ApplicationStatusFinalist}, statuses)

	_, err = parseStatuses("submitted,pending")
	assert.Error(t, err)
}
