package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"adaptgrant/internal/store"
	"adaptgrant/internal/utils"
	"adaptgrant/pkg/types"
)

var errApplicationLocked = errors.New("only draft applications can be edited")

// currentApplicant loads the applicant record for the caller, creating it
// from the token claims on first use.
func (s *Service) currentApplicant(ctx context.Context, identity *Identity) (*types.Applicant, error) {
	applicant, err := s.store.Applicants.ApplicantByUserID(ctx, identity.UserID)
	if err == nil {
		return applicant, nil
	}
	if !errors.Is(err, types.ErrApplicantNotFound) {
		return nil, err
	}

	applicant = &types.Applicant{
		ID:     utils.NanoID(),
		UserID: identity.UserID,
		Email:  identity.Email,
	}
	if err := s.store.Applicants.Create(ctx, applicant); err != nil {
		return nil, err
	}
	return applicant, nil
}

// ownedProfile loads an application profile, hiding applications that
// belong to someone else behind not found.
func (s *Service) ownedProfile(ctx context.Context, st *store.Store, applicantID, applicationID string) (*types.ApplicationProfile, error) {
	profile, err := st.Applications.Profile(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if profile.Application.ApplicantID != applicantID {
		return nil, types.ErrApplicationNotFound
	}
	return profile, nil
}

func (s *Service) handlePostApplication(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	applicant, err := s.currentApplicant(ctx, s.identity(r))
	if err != nil {
		s.failErr(w, r, err, "failed to load applicant")
		return
	}

	business := &types.Business{
		ID:                 utils.NanoID(),
		ApplicantID:        applicant.ID,
		RegistrationStatus: types.RegistrationStatusUnregistered,
	}
	application := &types.Application{
		ID:          utils.NanoID(),
		ApplicantID: applicant.ID,
		BusinessID:  business.ID,
		Status:      types.ApplicationStatusDraft,
		CurrentStep: types.WizardStepPersonal,
	}

	err = s.store.WithTx(ctx, func(tx *store.Store) error {
		if err := tx.Businesses.Create(ctx, business); err != nil {
			return err
		}
		return tx.Applications.Create(ctx, application)
	})
	if err != nil {
		s.failErr(w, r, err, "failed to create application")
		return
	}

	s.ok(w, http.StatusCreated, &types.ApplicationProfile{
		Application: application,
		Applicant:   applicant,
		Business:    business,
	})
}

func (s *Service) handleGetMyApplications(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	applicant, err := s.store.Applicants.ApplicantByUserID(ctx, s.identity(r).UserID)
	if errors.Is(err, types.ErrApplicantNotFound) {
		s.ok(w, http.StatusOK, []*types.ApplicationProfile{})
		return
	}
	if err != nil {
		s.failErr(w, r, err, "failed to load applicant")
		return
	}

	profiles, err := s.store.Applications.Profiles(ctx, store.ApplicationFilter{ApplicantID: applicant.ID})
	if err != nil {
		s.failErr(w, r, err, "failed to list applications")
		return
	}

	s.ok(w, http.StatusOK, profiles)
}

func (s *Service) handleGetMyApplication(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	applicant, err := s.store.Applicants.ApplicantByUserID(ctx, s.identity(r).UserID)
	if err != nil {
		s.failErr(w, r, err, "failed to load applicant")
		return
	}

	profile, err := s.ownedProfile(ctx, s.store, applicant.ID, r.PathValue("applicationID"))
	if err != nil {
		s.failErr(w, r, err, "failed to load application")
		return
	}

	history, err := s.store.StatusChanges.StatusChangesByApplication(ctx, profile.Application.ID)
	if err != nil {
		s.failErr(w, r, err, "failed to load status history")
		return
	}

	s.ok(w, http.StatusOK, map[string]any{
		"profile": profile,
		"history": history,
	})
}

func (s *Service) handlePutStep(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	step := types.WizardStep(strings.TrimSpace(r.PathValue("step")))
	if !isWizardStep(step) {
		s.fail(w, http.StatusNotFound, "unknown wizard step")
		return
	}

	var (
		personal   types.PersonalStep
		business   types.BusinessStep
		financial  types.FinancialStep
		adaptation types.AdaptationStep
		support    types.SupportStep
		payload    any
	)
	switch step {
	case types.WizardStepPersonal:
		payload = &personal
	case types.WizardStepBusiness:
		payload = &business
	case types.WizardStepFinancial:
		payload = &financial
	case types.WizardStepAdaptation:
		payload = &adaptation
	case types.WizardStepSupport:
		payload = &support
	}

	if err := decodeJSON(r, payload); err != nil {
		s.failErr(w, r, err, "invalid wizard step payload")
		return
	}

	userID := s.identity(r).UserID

	var profile *types.ApplicationProfile
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		applicant, err := tx.Applicants.ApplicantByUserID(ctx, userID)
		if err != nil {
			return err
		}

		profile, err = s.ownedProfile(ctx, tx, applicant.ID, r.PathValue("applicationID"))
		if err != nil {
			return err
		}
		if profile.Application.Status != types.ApplicationStatusDraft {
			return errApplicationLocked
		}

		switch step {
		case types.WizardStepPersonal:
			if err := applyPersonalStep(profile.Applicant, &personal); err != nil {
				return err
			}
		case types.WizardStepBusiness:
			applyBusinessStep(profile.Business, &business)
		case types.WizardStepFinancial:
			applyFinancialStep(profile.Business, &financial)
		case types.WizardStepAdaptation:
			applyAdaptationStep(profile.Business, &adaptation)
		case types.WizardStepSupport:
			applySupportStep(profile.Business, &support)
		}

		if step == types.WizardStepPersonal {
			err = tx.Applicants.Update(ctx, profile.Applicant)
		} else {
			err = tx.Businesses.Update(ctx, profile.Business)
		}
		if err != nil {
			return err
		}

		completeStep(profile.Application, step)
		return tx.Applications.UpdateProgress(ctx, profile.Application)
	})
	if err != nil {
		s.failErr(w, r, err, "failed to save wizard step")
		return
	}

	s.ok(w, http.StatusOK, profile)
}

func (s *Service) handlePostSubmit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	identity := s.identity(r)
	applicant, err := s.store.Applicants.ApplicantByUserID(ctx, identity.UserID)
	if err != nil {
		s.failErr(w, r, err, "failed to load applicant")
		return
	}

	applicationID := r.PathValue("applicationID")
	change, err := s.evaluation.Submit(ctx, applicationID, applicant.ID, identity.UserID)
	if err != nil {
		s.failErr(w, r, err, "failed to submit application")
		return
	}

	// mandatory gates are known as soon as the application is submitted
	if _, err := s.evaluation.Evaluate(ctx, applicationID); err != nil && !errors.Is(err, types.ErrNoActiveConfiguration) {
		s.logger.WithError(err).WithField("application_id", applicationID).Warn("failed to evaluate submitted application")
	}

	s.ok(w, http.StatusOK, change)
}
