package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"adaptgrant/internal/analytics"
	"adaptgrant/internal/evaluation"
	"adaptgrant/internal/scoring"
	"adaptgrant/internal/storage"
	"adaptgrant/internal/workflow"
	"adaptgrant/pkg/types"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

const maxJSONBytes = 1 << 20

// envelope wraps every response body.
type envelope struct {
	Success bool              `json:"success"`
	Data    any               `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// badRequest is a malformed request, as opposed to a well formed request
// that breaks a domain rule.
type badRequest struct {
	msg string
}

func (e *badRequest) Error() string {
	return e.msg
}

func errBadRequest(format string, args ...any) error {
	return &badRequest{msg: fmt.Sprintf(format, args...)}
}

var notFoundErrors = []error{
	types.ErrApplicationNotFound,
	types.ErrApplicantNotFound,
	types.ErrBusinessNotFound,
	types.ErrConfigurationNotFound,
	types.ErrCriterionNotFound,
	types.ErrScoreNotFound,
	types.ErrEligibilityNotFound,
	types.ErrEvaluatorNotFound,
	types.ErrDocumentNotFound,
	types.ErrTicketNotFound,
	analytics.ErrUnknownReport,
}

var ruleErrors = []error{
	types.ErrWizardIncomplete,
	types.ErrConfigurationActive,
	types.ErrConfigurationScored,
	types.ErrNoActiveConfiguration,
	evaluation.ErrNotEvaluatorRole,
	evaluation.ErrEvaluatorInactive,
	evaluation.ErrNoEvaluators,
	evaluation.ErrNoCriteria,
	evaluation.ErrBulkTargetNotAllowed,
	storage.ErrTooLarge,
	storage.ErrEmpty,
	storage.ErrUnsupportedType,
	errApplicationLocked,
	errTicketClosed,
}

// statusFor maps an error to its response status and the message that is
// safe to show the caller.
func statusFor(err error) (int, string, map[string]string) {
	var (
		bad         *badRequest
		validation  *scoring.ValidationError
		fieldErrors validator.ValidationErrors
		transition  *workflow.TransitionError
		gate        *workflow.RoleGateError
		ticket      *ticketTransitionError
	)

	switch {
	case errors.As(err, &bad):
		return http.StatusBadRequest, bad.msg, nil
	case errors.Is(err, types.ErrForbidden):
		return http.StatusForbidden, types.ErrForbidden.Error(), nil
	case errors.As(err, &validation):
		return http.StatusUnprocessableEntity, "validation failed", validation.Problems
	case errors.As(err, &fieldErrors):
		return http.StatusUnprocessableEntity, "validation failed", translate(fieldErrors)
	case errors.As(err, &transition):
		return http.StatusUnprocessableEntity, transition.Error(), nil
	case errors.As(err, &gate):
		return http.StatusUnprocessableEntity, gate.Error(), nil
	case errors.As(err, &ticket):
		return http.StatusUnprocessableEntity, ticket.Error(), nil
	}

	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return http.StatusNotFound, target.Error(), nil
		}
	}
	for _, target := range ruleErrors {
		if errors.Is(err, target) {
			return http.StatusUnprocessableEntity, target.Error(), nil
		}
	}

	return http.StatusInternalServerError, "internal server error", nil
}

func (s *Service) ok(w http.ResponseWriter, status int, data any) {
	s.write(w, status, envelope{Success: true, Data: data})
}

func (s *Service) fail(w http.ResponseWriter, status int, msg string) {
	s.write(w, status, envelope{Success: false, Error: msg})
}

// failErr logs unexpected failures and writes the mapped envelope.
func (s *Service) failErr(w http.ResponseWriter, r *http.Request, err error, msg string) {
	status, public, details := statusFor(err)

	entry := s.logger.WithError(err).WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"status": status,
	})
	if status >= http.StatusInternalServerError {
		entry.Error(msg)
	} else {
		entry.Debug(msg)
	}

	s.write(w, status, envelope{Success: false, Error: public, Details: details})
}

func (s *Service) write(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.WithError(err).Error("failed to encode response")
	}
}

// decodeJSON reads a single JSON object into dst and validates it when it
// carries validate tags.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errBadRequest("request body is empty")
		}
		return errBadRequest("invalid JSON: %s", strings.TrimPrefix(err.Error(), "json: "))
	}
	if dec.More() {
		return errBadRequest("request body must hold a single JSON object")
	}

	return validate.Struct(dst)
}
