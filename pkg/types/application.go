package types

import (
	"fmt"
	"strings"
	"time"
)

type ApplicationStatus string

const (
	ApplicationStatusDraft        ApplicationStatus = "draft"
	ApplicationStatusSubmitted    ApplicationStatus = "submitted"
	ApplicationStatusUnderReview  ApplicationStatus = "under_review"
	ApplicationStatusShortlisted  ApplicationStatus = "shortlisted"
	ApplicationStatusScoringPhase ApplicationStatus = "scoring_phase"
	ApplicationStatusDragonsDen   ApplicationStatus = "dragons_den"
	ApplicationStatusFinalist     ApplicationStatus = "finalist"
	ApplicationStatusApproved     ApplicationStatus = "approved"
	ApplicationStatusRejected     ApplicationStatus = "rejected"
)

// AllApplicationStatuses is ordered by pipeline position, with rejected last.
var AllApplicationStatuses = []ApplicationStatus{
	ApplicationStatusDraft,
	ApplicationStatusSubmitted,
	ApplicationStatusUnderReview,
	ApplicationStatusShortlisted,
	ApplicationStatusScoringPhase,
	ApplicationStatusDragonsDen,
	ApplicationStatusFinalist,
	ApplicationStatusApproved,
	ApplicationStatusRejected,
}

func (s ApplicationStatus) Valid() bool {
	for _, status := range AllApplicationStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// ParseApplicationStatuses reads a comma separated status list. Blank input
// yields nil.
func ParseApplicationStatuses(raw string) ([]ApplicationStatus, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var statuses []ApplicationStatus
	for _, part := range strings.Split(raw, ",") {
		status := ApplicationStatus(strings.TrimSpace(part))
		if !status.Valid() {
			return nil, fmt.Errorf("unknown status %q", strings.TrimSpace(part))
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

type WizardStep string

const (
	WizardStepPersonal   WizardStep = "personal"
	WizardStepBusiness   WizardStep = "business"
	WizardStepFinancial  WizardStep = "financial"
	WizardStepAdaptation WizardStep = "adaptation"
	WizardStepSupport    WizardStep = "support"
	WizardStepReview     WizardStep = "review"
)

// WizardSteps are the steps an applicant must complete before submitting.
var WizardSteps = []WizardStep{
	WizardStepPersonal,
	WizardStepBusiness,
	WizardStepFinancial,
	WizardStepAdaptation,
	WizardStepSupport,
}

type Application struct {
	ID             string            `db:"id" json:"id"`
	ApplicantID    string            `db:"applicant_id" json:"applicantId"`
	BusinessID     string            `db:"business_id" json:"businessId"`
	Status         ApplicationStatus `db:"status" json:"status"`
	CurrentStep    WizardStep        `db:"current_step" json:"currentStep"`
	CompletedSteps []string          `db:"completed_steps" json:"completedSteps"` // jsonb array
	SubmittedAt    *time.Time        `db:"submitted_at" json:"submittedAt,omitempty"`
	CreatedAt      time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time         `db:"updated_at" json:"updatedAt"`
}

func (a *Application) HasCompletedStep(step WizardStep) bool {
	for _, s := range a.CompletedSteps {
		if s == string(step) {
			return true
		}
	}
	return false
}

// ApplicationProfile is an application joined with everything the scoring
// engine reads from it.
type ApplicationProfile struct {
	Application *Application `json:"application"`
	Applicant   *Applicant   `json:"applicant"`
	Business    *Business    `json:"business"`
}

type StatusChange struct {
	ID            string            `db:"id" json:"id"`
	ApplicationID string            `db:"application_id" json:"applicationId"`
	FromStatus    ApplicationStatus `db:"from_status" json:"fromStatus"`
	ToStatus      ApplicationStatus `db:"to_status" json:"toStatus"`
	ChangedBy     string            `db:"changed_by" json:"changedBy"`
	Reason        *string           `db:"reason" json:"reason,omitempty"`
	CreatedAt     time.Time         `db:"created_at" json:"createdAt"`
}
