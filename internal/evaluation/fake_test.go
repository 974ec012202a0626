package evaluation

import (
	"context"
	"errors"
	"sort"
	"time"

	"adaptgrant/internal/utils"
	"adaptgrant/pkg/types"
)

var errInjected = errors.New("injected failure")

// fakeRepository is an in-memory Repository. InTx snapshots state and
// restores it when fn fails, mirroring a rolled back transaction.
type fakeRepository struct {
	state *fakeState

	failUpsertFor string
}

type fakeState struct {
	applications map[string]types.Application
	applicants   map[string]types.Applicant
	businesses   map[string]types.Business
	configs      map[string]types.ScoringConfiguration
	evaluators   map[string]types.EvaluatorProfile
	scores       []types.ApplicationScore
	eligibility  map[string]types.Eligibility
	changes      []types.StatusChange
	seq          int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{state: &fakeState{
		applications: make(map[string]types.Application),
		applicants:   make(map[string]types.Applicant),
		businesses:   make(map[string]types.Business),
		configs:      make(map[string]types.ScoringConfiguration),
		evaluators:   make(map[string]types.EvaluatorProfile),
		eligibility:  make(map[string]types.Eligibility),
	}}
}

func (s *fakeState) clone() *fakeState {
	out := &fakeState{
		applications: make(map[string]types.Application, len(s.applications)),
		applicants:   make(map[string]types.Applicant, len(s.applicants)),
		businesses:   make(map[string]types.Business, len(s.businesses)),
		configs:      make(map[string]types.ScoringConfiguration, len(s.configs)),
		evaluators:   make(map[string]types.EvaluatorProfile, len(s.evaluators)),
		scores:       append([]types.ApplicationScore(nil), s.scores...),
		eligibility:  make(map[string]types.Eligibility, len(s.eligibility)),
		changes:      append([]types.StatusChange(nil), s.changes...),
		seq:          s.seq,
	}
	for k, v := range s.applications {
		out.applications[k] = v
	}
	for k, v := range s.applicants {
		out.applicants[k] = v
	}
	for k, v := range s.businesses {
		out.businesses[k] = v
	}
	for k, v := range s.configs {
		out.configs[k] = v
	}
	for k, v := range s.evaluators {
		out.evaluators[k] = v
	}
	for k, v := range s.eligibility {
		out.eligibility[k] = v
	}
	return out
}

func (f *fakeRepository) InTx(ctx context.Context, fn func(tx Repository) error) error {
	snapshot := f.state.clone()
	if err := fn(f); err != nil {
		f.state = snapshot
		return err
	}
	return nil
}

func (f *fakeRepository) addProfile(id string, status types.ApplicationStatus, created time.Time, profile *types.ApplicationProfile) {
	application := *profile.Application
	application.ID = id
	application.Status = status
	application.ApplicantID = "applicant-" + id
	application.BusinessID = "business-" + id
	application.CreatedAt = created

	applicant := *profile.Applicant
	applicant.ID = application.ApplicantID
	business := *profile.Business
	business.ID = application.BusinessID

	f.state.applications[id] = application
	f.state.applicants[applicant.ID] = applicant
	f.state.businesses[business.ID] = business
}

func (f *fakeRepository) addConfiguration(config *types.ScoringConfiguration) {
	f.state.configs[config.ID] = *config
}

func (f *fakeRepository) addEvaluator(e *types.EvaluatorProfile) {
	f.state.evaluators[e.ID] = *e
}

func (f *fakeRepository) scoreRows(applicationID string) []types.ApplicationScore {
	out := make([]types.ApplicationScore, 0)
	for _, s := range f.state.scores {
		if applicationID == "" || s.ApplicationID == applicationID {
			out = append(out, s)
		}
	}
	return out
}

func (f *fakeRepository) Application(ctx context.Context, id string) (*types.Application, error) {
	a, ok := f.state.applications[id]
	if !ok {
		return nil, types.ErrApplicationNotFound
	}
	return &a, nil
}

func (f *fakeRepository) Applications(ctx context.Context, statuses ...types.ApplicationStatus) ([]*types.Application, error) {
	out := make([]*types.Application, 0)
	for _, a := range f.state.applications {
		a := a
		if len(statuses) > 0 && !containsStatus(statuses, a.Status) {
			continue
		}
		out = append(out, &a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func containsStatus(statuses []types.ApplicationStatus, status types.ApplicationStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func (f *fakeRepository) Profile(ctx context.Context, applicationID string) (*types.ApplicationProfile, error) {
	a, ok := f.state.applications[applicationID]
	if !ok {
		return nil, types.ErrApplicationNotFound
	}
	applicant, ok := f.state.applicants[a.ApplicantID]
	if !ok {
		return nil, types.ErrApplicantNotFound
	}
	business, ok := f.state.businesses[a.BusinessID]
	if !ok {
		return nil, types.ErrBusinessNotFound
	}
	return &types.ApplicationProfile{Application: &a, Applicant: &applicant, Business: &business}, nil
}

func (f *fakeRepository) UpdateStatus(ctx context.Context, application *types.Application) error {
	if _, ok := f.state.applications[application.ID]; !ok {
		return types.ErrApplicationNotFound
	}
	f.state.applications[application.ID] = *application
	return nil
}

func (f *fakeRepository) RecordStatusChange(ctx context.Context, change *types.StatusChange) error {
	f.state.changes = append(f.state.changes, *change)
	return nil
}

func (f *fakeRepository) Configuration(ctx context.Context, id string) (*types.ScoringConfiguration, error) {
	c, ok := f.state.configs[id]
	if !ok {
		return nil, types.ErrConfigurationNotFound
	}
	return &c, nil
}

func (f *fakeRepository) ActiveConfiguration(ctx context.Context) (*types.ScoringConfiguration, error) {
	for _, c := range f.state.configs {
		if c.IsActive {
			c := c
			return &c, nil
		}
	}
	return nil, types.ErrNoActiveConfiguration
}

func (f *fakeRepository) NextVersion(ctx context.Context, name string) (int, error) {
	version := 0
	for _, c := range f.state.configs {
		if c.Name == name && c.Version > version {
			version = c.Version
		}
	}
	return version + 1, nil
}

func (f *fakeRepository) CreateConfiguration(ctx context.Context, config *types.ScoringConfiguration) error {
	if config.ID == "" {
		config.ID = utils.NanoID()
	}
	for _, c := range config.Criteria {
		if c.ID == "" {
			c.ID = utils.NanoID()
		}
		c.ConfigurationID = config.ID
	}
	f.state.configs[config.ID] = *config
	return nil
}

func (f *fakeRepository) ReplaceCriteria(ctx context.Context, config *types.ScoringConfiguration) error {
	return f.CreateConfiguration(ctx, config)
}

func (f *fakeRepository) DeactivateAll(ctx context.Context) error {
	for id, c := range f.state.configs {
		c.IsActive = false
		f.state.configs[id] = c
	}
	return nil
}

func (f *fakeRepository) SetActive(ctx context.Context, id string, active bool) error {
	c, ok := f.state.configs[id]
	if !ok {
		return types.ErrConfigurationNotFound
	}
	c.IsActive = active
	f.state.configs[id] = c
	return nil
}

func (f *fakeRepository) Evaluator(ctx context.Context, id string) (*types.EvaluatorProfile, error) {
	e, ok := f.state.evaluators[id]
	if !ok {
		return nil, types.ErrEvaluatorNotFound
	}
	return &e, nil
}

func (f *fakeRepository) Evaluators(ctx context.Context, role types.Role, activeOnly bool) ([]*types.EvaluatorProfile, error) {
	out := make([]*types.EvaluatorProfile, 0)
	for _, e := range f.state.evaluators {
		e := e
		if role != "" && e.Role != role {
			continue
		}
		if activeOnly && !e.IsActive {
			continue
		}
		out = append(out, &e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRepository) AssignmentCounts(ctx context.Context, evaluatorIDs []string) (map[string]int, error) {
	apps := make(map[string]map[string]bool)
	for _, s := range f.state.scores {
		if apps[s.EvaluatorID] == nil {
			apps[s.EvaluatorID] = make(map[string]bool)
		}
		apps[s.EvaluatorID][s.ApplicationID] = true
	}

	out := make(map[string]int, len(evaluatorIDs))
	for _, id := range evaluatorIDs {
		out[id] = len(apps[id])
	}
	return out, nil
}

func (f *fakeRepository) EnsureScoreRow(ctx context.Context, applicationID, criterionID, evaluatorID string) (bool, error) {
	for _, s := range f.state.scores {
		if s.ApplicationID == applicationID && s.CriterionID == criterionID && s.EvaluatorID == evaluatorID {
			return false, nil
		}
	}

	f.state.seq++
	f.state.scores = append(f.state.scores, types.ApplicationScore{
		ID:            utils.NanoID(),
		ApplicationID: applicationID,
		CriterionID:   criterionID,
		EvaluatorID:   evaluatorID,
		CreatedAt:     time.Unix(int64(f.state.seq), 0),
		UpdatedAt:     time.Unix(int64(f.state.seq), 0),
	})
	return true, nil
}

func (f *fakeRepository) Score(ctx context.Context, applicationID, criterionID, evaluatorID string) (*types.ApplicationScore, error) {
	for _, s := range f.state.scores {
		if s.ApplicationID == applicationID && s.CriterionID == criterionID && s.EvaluatorID == evaluatorID {
			s := s
			return &s, nil
		}
	}
	return nil, types.ErrScoreNotFound
}

func (f *fakeRepository) UpdateScore(ctx context.Context, score *types.ApplicationScore) error {
	for i, s := range f.state.scores {
		if s.ID == score.ID {
			f.state.seq++
			score.UpdatedAt = time.Unix(int64(f.state.seq), 0)
			f.state.scores[i] = *score
			return nil
		}
	}
	return types.ErrScoreNotFound
}

func (f *fakeRepository) ScoresByApplication(ctx context.Context, applicationID string) ([]*types.ApplicationScore, error) {
	out := make([]*types.ApplicationScore, 0)
	for _, s := range f.scoreRows(applicationID) {
		s := s
		out = append(out, &s)
	}
	return out, nil
}

func (f *fakeRepository) ConfigurationScoreCount(ctx context.Context, configurationID string) (int, error) {
	config, ok := f.state.configs[configurationID]
	if !ok {
		return 0, nil
	}

	criteria := make(map[string]bool, len(config.Criteria))
	for _, c := range config.Criteria {
		criteria[c.ID] = true
	}

	count := 0
	for _, s := range f.state.scores {
		if criteria[s.CriterionID] {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepository) Eligibility(ctx context.Context, applicationID string) (*types.Eligibility, error) {
	e, ok := f.state.eligibility[applicationID]
	if !ok {
		return nil, types.ErrEligibilityNotFound
	}
	return &e, nil
}

func (f *fakeRepository) UpsertEligibility(ctx context.Context, eligibility *types.Eligibility) error {
	if f.failUpsertFor != "" && eligibility.ApplicationID == f.failUpsertFor {
		return errInjected
	}
	f.state.eligibility[eligibility.ApplicationID] = *eligibility
	return nil
}
