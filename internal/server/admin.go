package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"

	"adaptgrant/internal/evaluation"
	"adaptgrant/internal/export"
	"adaptgrant/internal/store"
	"adaptgrant/internal/utils"
	"adaptgrant/pkg/types"
)

// parseStatuses reads the ?status= filter.
func parseStatuses(raw string) ([]types.ApplicationStatus, error) {
	statuses, err := types.ParseApplicationStatuses(raw)
	if err != nil {
		return nil, errBadRequest("%s", err.Error())
	}
	return statuses, nil
}

type adminApplicationSummary struct {
	Profile     *types.ApplicationProfile `json:"profile"`
	Eligibility *types.Eligibility        `json:"eligibility,omitempty"`
}

func (s *Service) handleAdminGetApplications(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	statuses, err := parseStatuses(r.URL.Query().Get("status"))
	if err != nil {
		s.failErr(w, r, err, "invalid status filter")
		return
	}

	profiles, err := s.store.Applications.Profiles(ctx, store.ApplicationFilter{Statuses: statuses})
	if err != nil {
		s.failErr(w, r, err, "failed to list applications")
		return
	}

	ids := make([]string, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.Application.ID)
	}

	eligibility, err := s.store.Eligibility.EligibilityByApplications(ctx, ids)
	if err != nil {
		s.failErr(w, r, err, "failed to load eligibility")
		return
	}

	out := make([]*adminApplicationSummary, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, &adminApplicationSummary{Profile: p, Eligibility: eligibility[p.Application.ID]})
	}

	s.ok(w, http.StatusOK, out)
}

type applicationDetail struct {
	Profile     *types.ApplicationProfile `json:"profile"`
	Scores      []*types.ApplicationScore `json:"scores"`
	Eligibility *types.Eligibility        `json:"eligibility,omitempty"`
	History     []*types.StatusChange     `json:"history"`
}

func (s *Service) applicationDetail(ctx context.Context, applicationID string) (*applicationDetail, error) {
	profile, err := s.store.Applications.Profile(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	scores, err := s.store.Scores.ScoresByApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	eligibility, err := s.store.Eligibility.Eligibility(ctx, applicationID)
	if err != nil && !errors.Is(err, types.ErrEligibilityNotFound) {
		return nil, err
	}

	history, err := s.store.StatusChanges.StatusChangesByApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	return &applicationDetail{
		Profile:     profile,
		Scores:      scores,
		Eligibility: eligibility,
		History:     history,
	}, nil
}

func (s *Service) handleAdminGetApplication(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	detail, err := s.applicationDetail(ctx, r.PathValue("applicationID"))
	if err != nil {
		s.failErr(w, r, err, "failed to load application")
		return
	}

	s.ok(w, http.StatusOK, detail)
}

type statusRequest struct {
	Status types.ApplicationStatus `json:"status" validate:"required"`
	Reason *string                 `json:"reason" validate:"omitempty,max=2000"`
}

func (s *Service) handleAdminPostStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var body statusRequest
	if err := decodeJSON(r, &body); err != nil {
		s.failErr(w, r, err, "invalid status payload")
		return
	}
	if !body.Status.Valid() {
		s.failErr(w, r, errBadRequest("unknown status %q", body.Status), "invalid status")
		return
	}

	change, err := s.evaluation.Transition(ctx, r.PathValue("applicationID"), body.Status, s.identity(r).UserID, utils.TrimmedStringPtr(body.Reason))
	if err != nil {
		s.failErr(w, r, err, "failed to change application status")
		return
	}

	s.ok(w, http.StatusOK, change)
}

type bulkStatusRequest struct {
	ApplicationIDs []string                `json:"applicationIds" validate:"required,min=1,max=500,dive,notblank"`
	Status         types.ApplicationStatus `json:"status" validate:"required"`
	Reason         *string                 `json:"reason" validate:"omitempty,max=2000"`
}

func (s *Service) handleAdminBulkStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 4*requestTimeout)
	defer cancel()

	var body bulkStatusRequest
	if err := decodeJSON(r, &body); err != nil {
		s.failErr(w, r, err, "invalid bulk status payload")
		return
	}

	result, err := s.evaluation.BulkTransition(ctx, body.ApplicationIDs, body.Status, s.identity(r).UserID, utils.TrimmedStringPtr(body.Reason))
	if err != nil {
		s.failErr(w, r, err, "failed to run bulk status change")
		return
	}

	s.ok(w, http.StatusOK, result)
}

func (s *Service) handleAdminPostEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	eligibility, err := s.evaluation.Evaluate(ctx, r.PathValue("applicationID"))
	if err != nil {
		s.failErr(w, r, err, "failed to evaluate application")
		return
	}

	s.ok(w, http.StatusOK, eligibility)
}

func (s *Service) handleAdminGetApplicationPDF(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	detail, err := s.applicationDetail(ctx, r.PathValue("applicationID"))
	if err != nil {
		s.failErr(w, r, err, "failed to load application for pdf")
		return
	}

	var config *types.ScoringConfiguration
	if detail.Eligibility != nil {
		config, err = s.store.Scoring.Configuration(ctx, detail.Eligibility.ConfigurationID)
	} else {
		config, err = s.store.Scoring.ActiveConfiguration(ctx)
	}
	if err != nil && !errors.Is(err, types.ErrConfigurationNotFound) && !errors.Is(err, types.ErrNoActiveConfiguration) {
		s.failErr(w, r, err, "failed to load configuration for pdf")
		return
	}

	var buf bytes.Buffer
	err = export.WritePDF(&buf, export.Summary{
		Profile:     detail.Profile,
		Eligibility: detail.Eligibility,
		Config:      config,
		Scores:      detail.Scores,
		GeneratedAt: s.now(),
	})
	if err != nil {
		s.failErr(w, r, err, "failed to render pdf")
		return
	}

	w.Header().Set("Content-Type", export.ContentTypePDF)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "application-"+detail.Profile.Application.ID+".pdf"))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.WithError(err).Warn("failed to stream pdf")
	}
}

type autoAssignRequest struct {
	Role                     types.Role              `json:"role" validate:"required"`
	Status                   types.ApplicationStatus `json:"status"`
	EvaluatorsPerApplication int                     `json:"evaluatorsPerApplication" validate:"gte=0,lte=20"`
}

func (s *Service) handleAdminAutoAssign(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 4*requestTimeout)
	defer cancel()

	var body autoAssignRequest
	if err := decodeJSON(r, &body); err != nil {
		s.failErr(w, r, err, "invalid auto assignment payload")
		return
	}
	if body.Status != "" && !body.Status.Valid() {
		s.failErr(w, r, errBadRequest("unknown status %q", body.Status), "invalid status")
		return
	}

	result, err := s.evaluation.AutoAssign(ctx, body.Role, body.Status, body.EvaluatorsPerApplication)
	if err != nil {
		s.failErr(w, r, err, "failed to auto assign")
		return
	}

	s.ok(w, http.StatusOK, result)
}

type assignRequest struct {
	ApplicationID string `json:"applicationId" validate:"notblank"`
	EvaluatorID   string `json:"evaluatorId" validate:"notblank"`
}

func (s *Service) handleAdminAssign(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var body assignRequest
	if err := decodeJSON(r, &body); err != nil {
		s.failErr(w, r, err, "invalid assignment payload")
		return
	}

	result, err := s.evaluation.Assign(ctx, body.ApplicationID, body.EvaluatorID)
	if err != nil {
		s.failErr(w, r, err, "failed to assign evaluator")
		return
	}

	s.ok(w, http.StatusOK, result)
}

func (s *Service) handleAdminGetConfigs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	configs, err := s.store.Scoring.Configurations(ctx)
	if err != nil {
		s.failErr(w, r, err, "failed to list configurations")
		return
	}

	s.ok(w, http.StatusOK, configs)
}

// handleAdminPostConfig accepts either a configuration body or, with
// ?import=true, a rubric document checked against the rubric schema.
func (s *Service) handleAdminPostConfig(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	actor := s.identity(r).UserID

	if r.URL.Query().Get("import") == "true" {
		data, err := io.ReadAll(io.LimitReader(r.Body, maxJSONBytes))
		if err != nil {
			s.failErr(w, r, errBadRequest("failed to read rubric document"), "failed to read import body")
			return
		}

		config, err := s.evaluation.ImportConfiguration(ctx, data, actor)
		if err != nil {
			s.failErr(w, r, err, "failed to import configuration")
			return
		}

		s.ok(w, http.StatusCreated, config)
		return
	}

	var body types.ScoringConfiguration
	if err := decodeJSON(r, &body); err != nil {
		s.failErr(w, r, err, "invalid configuration payload")
		return
	}

	config, err := s.evaluation.CreateConfiguration(ctx, &body, actor)
	if err != nil {
		s.failErr(w, r, err, "failed to create configuration")
		return
	}

	s.ok(w, http.StatusCreated, config)
}

func (s *Service) handleAdminGetConfig(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	config, err := s.store.Scoring.Configuration(ctx, r.PathValue("configID"))
	if err != nil {
		s.failErr(w, r, err, "failed to load configuration")
		return
	}

	s.ok(w, http.StatusOK, config)
}

func (s *Service) handleAdminPutCriteria(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var body evaluation.CriteriaUpdate
	if err := decodeJSON(r, &body); err != nil {
		s.failErr(w, r, err, "invalid criteria payload")
		return
	}

	config, err := s.evaluation.UpdateCriteria(ctx, r.PathValue("configID"), body)
	if err != nil {
		s.failErr(w, r, err, "failed to update criteria")
		return
	}

	s.ok(w, http.StatusOK, config)
}

type activateRequest struct {
	Reevaluate bool `json:"reevaluate"`
}

func (s *Service) handleAdminActivateConfig(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 8*requestTimeout)
	defer cancel()

	var body activateRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &body); err != nil {
			s.failErr(w, r, err, "invalid activation payload")
			return
		}
	}

	report, err := s.evaluation.Activate(ctx, r.PathValue("configID"), body.Reevaluate)
	if err != nil {
		s.failErr(w, r, err, "failed to activate configuration")
		return
	}

	s.ok(w, http.StatusOK, map[string]any{
		"configurationId": r.PathValue("configID"),
		"report":          report,
	})
}

func (s *Service) handleAdminDeactivateConfig(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := s.evaluation.Deactivate(ctx, r.PathValue("configID")); err != nil {
		s.failErr(w, r, err, "failed to deactivate configuration")
		return
	}

	s.ok(w, http.StatusOK, nil)
}

type cloneRequest struct {
	Name string `json:"name" validate:"omitempty,max=200"`
}

func (s *Service) handleAdminCloneConfig(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var body cloneRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &body); err != nil {
			s.failErr(w, r, err, "invalid clone payload")
			return
		}
	}

	config, err := s.evaluation.Clone(ctx, r.PathValue("configID"), strings.TrimSpace(body.Name), s.identity(r).UserID)
	if err != nil {
		s.failErr(w, r, err, "failed to clone configuration")
		return
	}

	s.ok(w, http.StatusCreated, config)
}

type reevaluateRequest struct {
	ConfigurationID string `json:"configurationId"`
	DryRun          bool   `json:"dryRun"`
}

func (s *Service) handleAdminReevaluate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 8*requestTimeout)
	defer cancel()

	var body reevaluateRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &body); err != nil {
			s.failErr(w, r, err, "invalid reevaluation payload")
			return
		}
	}

	report, err := s.evaluation.Reevaluate(ctx, strings.TrimSpace(body.ConfigurationID), body.DryRun)
	if err != nil {
		s.failErr(w, r, err, "failed to reevaluate applications")
		return
	}

	s.ok(w, http.StatusOK, report)
}

func (s *Service) handleAdminGetEvaluators(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	role := types.Role(r.URL.Query().Get("role"))
	if role != "" && !role.IsEvaluator() {
		s.failErr(w, r, errBadRequest("role %q is not an evaluator role", role), "invalid evaluator role filter")
		return
	}

	evaluators, err := s.store.Evaluators.Evaluators(ctx, role, r.URL.Query().Get("active") == "true")
	if err != nil {
		s.failErr(w, r, err, "failed to list evaluators")
		return
	}

	s.ok(w, http.StatusOK, evaluators)
}

type evaluatorRequest struct {
	DisplayName    string     `json:"displayName" validate:"notblank,max=200"`
	Email          string     `json:"email" validate:"required,email"`
	Role           types.Role `json:"role" validate:"required"`
	Expertise      *string    `json:"expertise" validate:"omitempty,max=500"`
	IsActive       *bool      `json:"isActive"`
	MaxAssignments int        `json:"maxAssignments" validate:"gte=0"`
}

type createEvaluatorRequest struct {
	UserID string `json:"userId" validate:"notblank,max=200"`
	evaluatorRequest
}

func (body evaluatorRequest) apply(evaluator *types.EvaluatorProfile) error {
	if !body.Role.IsEvaluator() {
		return evaluation.ErrNotEvaluatorRole
	}

	evaluator.DisplayName = strings.TrimSpace(body.DisplayName)
	evaluator.Email = strings.TrimSpace(body.Email)
	evaluator.Role = body.Role
	evaluator.Expertise = utils.TrimmedStringPtr(body.Expertise)
	evaluator.MaxAssignments = body.MaxAssignments
	if body.IsActive != nil {
		evaluator.IsActive = *body.IsActive
	}
	return nil
}

func (s *Service) handleAdminPostEvaluator(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var body createEvaluatorRequest
	if err := decodeJSON(r, &body); err != nil {
		s.failErr(w, r, err, "invalid evaluator payload")
		return
	}

	evaluator := &types.EvaluatorProfile{UserID: strings.TrimSpace(body.UserID), IsActive: true}
	if err := body.apply(evaluator); err != nil {
		s.failErr(w, r, err, "invalid evaluator role")
		return
	}

	if err := s.store.Evaluators.Create(ctx, evaluator); err != nil {
		s.failErr(w, r, err, "failed to create evaluator")
		return
	}

	s.ok(w, http.StatusCreated, evaluator)
}

func (s *Service) handleAdminPutEvaluator(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var body evaluatorRequest
	if err := decodeJSON(r, &body); err != nil {
		s.failErr(w, r, err, "invalid evaluator payload")
		return
	}

	evaluator, err := s.store.Evaluators.Evaluator(ctx, r.PathValue("evaluatorID"))
	if err != nil {
		s.failErr(w, r, err, "failed to load evaluator")
		return
	}

	if err := body.apply(evaluator); err != nil {
		s.failErr(w, r, err, "invalid evaluator role")
		return
	}

	if err := s.store.Evaluators.Update(ctx, evaluator); err != nil {
		s.failErr(w, r, err, "failed to update evaluator")
		return
	}

	s.ok(w, http.StatusOK, evaluator)
}

func (s *Service) handleAdminGetAnalytics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	report, err := s.analytics.Report(ctx, r.PathValue("report"))
	if err != nil {
		s.failErr(w, r, err, "failed to build analytics report")
		return
	}

	s.ok(w, http.StatusOK, report)
}

func (s *Service) handleAdminExport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 4*requestTimeout)
	defer cancel()

	format := r.URL.Query().Get("format")
	if format == "" {
		format = export.FormatCSV
	}
	if !slices.Contains(export.Formats, format) {
		s.failErr(w, r, errBadRequest("format must be one of %s", strings.Join(export.Formats, ", ")), "invalid export format")
		return
	}

	statuses, err := parseStatuses(r.URL.Query().Get("status"))
	if err != nil {
		s.failErr(w, r, err, "invalid status filter")
		return
	}

	rows, err := export.Load(ctx, s.store, statuses...)
	if err != nil {
		s.failErr(w, r, err, "failed to load export rows")
		return
	}

	now := s.now()

	var buf bytes.Buffer
	if err := export.Write(&buf, format, rows, now); err != nil {
		s.failErr(w, r, err, "failed to render export")
		return
	}

	w.Header().Set("Content-Type", export.ContentTypes[format])
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(format, now)))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.WithError(err).Warn("failed to stream export")
	}
}
