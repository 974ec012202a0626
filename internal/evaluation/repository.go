package evaluation

import (
	"context"

	"adaptgrant/internal/store"
	"adaptgrant/pkg/types"
)

// Repository is the persistence the evaluation service needs. InTx hands fn a
// Repository bound to one transaction; returning an error rolls it back.
type Repository interface {
	InTx(ctx context.Context, fn func(tx Repository) error) error

	Application(ctx context.Context, id string) (*types.Application, error)
	Applications(ctx context.Context, statuses ...types.ApplicationStatus) ([]*types.Application, error)
	Profile(ctx context.Context, applicationID string) (*types.ApplicationProfile, error)
	UpdateStatus(ctx context.Context, application *types.Application) error
	RecordStatusChange(ctx context.Context, change *types.StatusChange) error

	Configuration(ctx context.Context, id string) (*types.ScoringConfiguration, error)
	ActiveConfiguration(ctx context.Context) (*types.ScoringConfiguration, error)
	NextVersion(ctx context.Context, name string) (int, error)
	CreateConfiguration(ctx context.Context, config *types.ScoringConfiguration) error
	ReplaceCriteria(ctx context.Context, config *types.ScoringConfiguration) error
	DeactivateAll(ctx context.Context) error
	SetActive(ctx context.Context, id string, active bool) error

	Evaluator(ctx context.Context, id string) (*types.EvaluatorProfile, error)
	Evaluators(ctx context.Context, role types.Role, activeOnly bool) ([]*types.EvaluatorProfile, error)
	AssignmentCounts(ctx context.Context, evaluatorIDs []string) (map[string]int, error)

	EnsureScoreRow(ctx context.Context, applicationID, criterionID, evaluatorID string) (bool, error)
	Score(ctx context.Context, applicationID, criterionID, evaluatorID string) (*types.ApplicationScore, error)
	UpdateScore(ctx context.Context, score *types.ApplicationScore) error
	ScoresByApplication(ctx context.Context, applicationID string) ([]*types.ApplicationScore, error)
	ConfigurationScoreCount(ctx context.Context, configurationID string) (int, error)

	Eligibility(ctx context.Context, applicationID string) (*types.Eligibility, error)
	UpsertEligibility(ctx context.Context, eligibility *types.Eligibility) error
}

// StoreRepository adapts the Postgres store to Repository.
type StoreRepository struct {
	store *store.Store
}

func NewStoreRepository(s *store.Store) *StoreRepository {
	return &StoreRepository{store: s}
}

func (r *StoreRepository) InTx(ctx context.Context, fn func(tx Repository) error) error {
	return r.store.WithTx(ctx, func(tx *store.Store) error {
		return fn(NewStoreRepository(tx))
	})
}

func (r *StoreRepository) Application(ctx context.Context, id string) (*types.Application, error) {
	return r.store.Applications.Application(ctx, id)
}

func (r *StoreRepository) Applications(ctx context.Context, statuses ...types.ApplicationStatus) ([]*types.Application, error) {
	return r.store.Applications.Applications(ctx, store.ApplicationFilter{Statuses: statuses})
}

func (r *StoreRepository) Profile(ctx context.Context, applicationID string) (*types.ApplicationProfile, error) {
	return r.store.Applications.Profile(ctx, applicationID)
}

func (r *StoreRepository) UpdateStatus(ctx context.Context, application *types.Application) error {
	return r.store.Applications.UpdateStatus(ctx, application)
}

func (r *StoreRepository) RecordStatusChange(ctx context.Context, change *types.StatusChange) error {
	return r.store.StatusChanges.Create(ctx, change)
}

func (r *StoreRepository) Configuration(ctx context.Context, id string) (*types.ScoringConfiguration, error) {
	return r.store.Scoring.Configuration(ctx, id)
}

func (r *StoreRepository) ActiveConfiguration(ctx context.Context) (*types.ScoringConfiguration, error) {
	return r.store.Scoring.ActiveConfiguration(ctx)
}

func (r *StoreRepository) NextVersion(ctx context.Context, name string) (int, error) {
	return r.store.Scoring.NextVersion(ctx, name)
}

func (r *StoreRepository) CreateConfiguration(ctx context.Context, config *types.ScoringConfiguration) error {
	return r.store.Scoring.CreateConfiguration(ctx, config)
}

func (r *StoreRepository) ReplaceCriteria(ctx context.Context, config *types.ScoringConfiguration) error {
	return r.store.Scoring.ReplaceCriteria(ctx, config)
}

func (r *StoreRepository) DeactivateAll(ctx context.Context) error {
	return r.store.Scoring.DeactivateAll(ctx)
}

func (r *StoreRepository) SetActive(ctx context.Context, id string, active bool) error {
	return r.store.Scoring.SetActive(ctx, id, active)
}

func (r *StoreRepository) Evaluator(ctx context.Context, id string) (*types.EvaluatorProfile, error) {
	return r.store.Evaluators.Evaluator(ctx, id)
}

func (r *StoreRepository) Evaluators(ctx context.Context, role types.Role, activeOnly bool) ([]*types.EvaluatorProfile, error) {
	return r.store.Evaluators.Evaluators(ctx, role, activeOnly)
}

func (r *StoreRepository) AssignmentCounts(ctx context.Context, evaluatorIDs []string) (map[string]int, error) {
	return r.store.Scores.AssignmentCounts(ctx, evaluatorIDs)
}

func (r *StoreRepository) EnsureScoreRow(ctx context.Context, applicationID, criterionID, evaluatorID string) (bool, error) {
	return r.store.Scores.EnsureScoreRow(ctx, applicationID, criterionID, evaluatorID)
}

func (r *StoreRepository) Score(ctx context.Context, applicationID, criterionID, evaluatorID string) (*types.ApplicationScore, error) {
	return r.store.Scores.Score(ctx, applicationID, criterionID, evaluatorID)
}

func (r *StoreRepository) UpdateScore(ctx context.Context, score *types.ApplicationScore) error {
	return r.store.Scores.UpdateScore(ctx, score)
}

func (r *StoreRepository) ScoresByApplication(ctx context.Context, applicationID string) ([]*types.ApplicationScore, error) {
	return r.store.Scores.ScoresByApplication(ctx, applicationID)
}

func (r *StoreRepository) ConfigurationScoreCount(ctx context.Context, configurationID string) (int, error) {
	return r.store.Scores.ConfigurationScoreCount(ctx, configurationID)
}

func (r *StoreRepository) Eligibility(ctx context.Context, applicationID string) (*types.Eligibility, error) {
	return r.store.Eligibility.Eligibility(ctx, applicationID)
}

func (r *StoreRepository) UpsertEligibility(ctx context.Context, eligibility *types.Eligibility) error {
	return r.store.Eligibility.Upsert(ctx, eligibility)
}
