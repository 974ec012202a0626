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

var applicationTableName = table("applications")

var applicationColumns = utils.StructTagValues(types.Application{})

type ApplicationRepository struct {
	db DBTX
}

func NewApplicationRepository(db DBTX) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// ApplicationFilter narrows list queries. Zero values match everything.
type ApplicationFilter struct {
	Statuses    []types.ApplicationStatus
	ApplicantID string
	IDs         []string
	NonDraft    bool
}

func (f ApplicationFilter) apply(b sq.SelectBuilder) sq.SelectBuilder {
	if len(f.Statuses) > 0 {
		b = b.Where(sq.Eq{"status": f.Statuses})
	}
	if f.ApplicantID != "" {
		b = b.Where(sq.Eq{"applicant_id": f.ApplicantID})
	}
	if len(f.IDs) > 0 {
		b = b.Where(sq.Eq{"id": f.IDs})
	}
	if f.NonDraft {
		b = b.Where(sq.NotEq{"status": types.ApplicationStatusDraft})
	}
	return b
}

func (r *ApplicationRepository) Application(ctx context.Context, id string) (*types.Application, error) {
	query, args, err := psql().
		Select(applicationColumns...).
		From(applicationTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate application query: %w", err)
	}

	var application = new(types.Application)
	err = pgxscan.Get(ctx, r.db, application, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to fetch application: %w", err)
	}

	return application, nil
}

// Applications lists applications oldest first, which is the order
// round-robin assignment relies on.
func (r *ApplicationRepository) Applications(ctx context.Context, filter ApplicationFilter) ([]*types.Application, error) {
	builder := psql().
		Select(applicationColumns...).
		From(applicationTableName).
		OrderBy("created_at ASC", "id ASC")

	query, args, err := filter.apply(builder).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate applications query: %w", err)
	}

	var applications = make([]*types.Application, 0)
	err = pgxscan.Select(ctx, r.db, &applications, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch applications: %w", err)
	}

	return applications, nil
}

func (r *ApplicationRepository) Create(ctx context.Context, application *types.Application) error {
	now := time.Now()
	application.CreatedAt = now
	application.UpdatedAt = now
	if application.CompletedSteps == nil {
		application.CompletedSteps = []string{}
	}

	query, args, err := psql().
		Insert(applicationTableName).
		SetMap(utils.StructToMap(application)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate application insert query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to insert application")
}

// UpdateProgress persists the wizard position of a draft.
func (r *ApplicationRepository) UpdateProgress(ctx context.Context, application *types.Application) error {
	application.UpdatedAt = time.Now()

	query, args, err := psql().
		Update(applicationTableName).
		Set("current_step", application.CurrentStep).
		Set("completed_steps", application.CompletedSteps).
		Set("updated_at", application.UpdatedAt).
		Where(sq.Eq{"id": application.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate application progress query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to update application progress")
}

// UpdateStatus writes the status column only. Callers record the matching
// StatusChange in the same transaction.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, application *types.Application) error {
	application.UpdatedAt = time.Now()

	query, args, err := psql().
		Update(applicationTableName).
		Set("status", application.Status).
		Set("submitted_at", application.SubmittedAt).
		Set("updated_at", application.UpdatedAt).
		Where(sq.Eq{"id": application.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate application status query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update application status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrApplicationNotFound
	}

	return nil
}

// Profile loads an application with its applicant and business.
func (r *ApplicationRepository) Profile(ctx context.Context, id string) (*types.ApplicationProfile, error) {
	application, err := r.Application(ctx, id)
	if err != nil {
		return nil, err
	}

	applicant, err := NewApplicantRepository(r.db).Applicant(ctx, application.ApplicantID)
	if err != nil {
		return nil, err
	}

	business, err := NewBusinessRepository(r.db).Business(ctx, application.BusinessID)
	if err != nil {
		return nil, err
	}

	return &types.ApplicationProfile{
		Application: application,
		Applicant:   applicant,
		Business:    business,
	}, nil
}

// Profiles loads profiles for every application matching filter.
func (r *ApplicationRepository) Profiles(ctx context.Context, filter ApplicationFilter) ([]*types.ApplicationProfile, error) {
	applications, err := r.Applications(ctx, filter)
	if err != nil {
		return nil, err
	}

	if len(applications) == 0 {
		return []*types.ApplicationProfile{}, nil
	}

	applicantIDs := make([]string, 0, len(applications))
	businessIDs := make([]string, 0, len(applications))
	for _, a := range applications {
		applicantIDs = append(applicantIDs, a.ApplicantID)
		businessIDs = append(businessIDs, a.BusinessID)
	}

	applicants, err := r.applicantsByID(ctx, applicantIDs)
	if err != nil {
		return nil, err
	}

	businesses, err := r.businessesByID(ctx, businessIDs)
	if err != nil {
		return nil, err
	}

	profiles := make([]*types.ApplicationProfile, 0, len(applications))
	for _, a := range applications {
		profiles = append(profiles, &types.ApplicationProfile{
			Application: a,
			Applicant:   applicants[a.ApplicantID],
			Business:    businesses[a.BusinessID],
		})
	}

	return profiles, nil
}

func (r *ApplicationRepository) applicantsByID(ctx context.Context, ids []string) (map[string]*types.Applicant, error) {
	query, args, err := psql().
		Select(applicantColumns...).
		From(applicantTableName).
		Where(sq.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate applicants query: %w", err)
	}

	var applicants []*types.Applicant
	err = pgxscan.Select(ctx, r.db, &applicants, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch applicants: %w", err)
	}

	out := make(map[string]*types.Applicant, len(applicants))
	for _, a := range applicants {
		out[a.ID] = a
	}
	return out, nil
}

func (r *ApplicationRepository) businessesByID(ctx context.Context, ids []string) (map[string]*types.Business, error) {
	query, args, err := psql().
		Select(businessColumns...).
		From(businessTableName).
		Where(sq.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate businesses query: %w", err)
	}

	var businesses []*types.Business
	err = pgxscan.Select(ctx, r.db, &businesses, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch businesses: %w", err)
	}

	out := make(map[string]*types.Business, len(businesses))
	for _, b := range businesses {
		out[b.ID] = b
	}
	return out, nil
}
