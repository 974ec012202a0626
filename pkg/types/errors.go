package types

import "errors"

var (
	ErrApplicationNotFound   = errors.New("application not found")
	ErrApplicantNotFound     = errors.New("applicant not found")
	ErrBusinessNotFound      = errors.New("business not found")
	ErrConfigurationNotFound = errors.New("scoring configuration not found")
	ErrNoActiveConfiguration = errors.New("no active scoring configuration")
	ErrConfigurationActive   = errors.New("scoring configuration is active and cannot be edited")
	ErrConfigurationScored   = errors.New("scoring configuration already has score assignments; clone it to change criteria")
	ErrCriterionNotFound     = errors.New("scoring criterion not found")
	ErrScoreNotFound         = errors.New("score assignment not found")
	ErrEligibilityNotFound   = errors.New("eligibility not found")
	ErrEvaluatorNotFound     = errors.New("evaluator not found")
	ErrDocumentNotFound      = errors.New("document not found")
	ErrTicketNotFound        = errors.New("support ticket not found")
	ErrForbidden             = errors.New("forbidden")
	ErrWizardIncomplete      = errors.New("application wizard is incomplete")
)
