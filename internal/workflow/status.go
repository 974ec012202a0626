// Package workflow holds the application pipeline rules: which status moves
// are allowed, which evaluator roles may act on which statuses, and how
// evaluators are spread across applications.
package workflow

import (
	"fmt"

	"adaptgrant/pkg/types"
)

var transitions = map[types.ApplicationStatus][]types.ApplicationStatus{
	types.ApplicationStatusDraft:        {types.ApplicationStatusSubmitted},
	types.ApplicationStatusSubmitted:    {types.ApplicationStatusUnderReview, types.ApplicationStatusRejected},
	types.ApplicationStatusUnderReview:  {types.ApplicationStatusShortlisted, types.ApplicationStatusRejected},
	types.ApplicationStatusShortlisted:  {types.ApplicationStatusScoringPhase, types.ApplicationStatusRejected},
	types.ApplicationStatusScoringPhase: {types.ApplicationStatusDragonsDen, types.ApplicationStatusRejected},
	types.ApplicationStatusDragonsDen:   {types.ApplicationStatusFinalist, types.ApplicationStatusRejected},
	types.ApplicationStatusFinalist:     {types.ApplicationStatusApproved, types.ApplicationStatusRejected},
}

// BulkTargets are the statuses an administrator may move many applications to at once.
var BulkTargets = []types.ApplicationStatus{
	types.ApplicationStatusUnderReview,
	types.ApplicationStatusShortlisted,
	types.ApplicationStatusScoringPhase,
	types.ApplicationStatusDragonsDen,
	types.ApplicationStatusFinalist,
	types.ApplicationStatusApproved,
	types.ApplicationStatusRejected,
}

type TransitionError struct {
	From types.ApplicationStatus
	To   types.ApplicationStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move application from %s to %s", e.From, e.To)
}

// NextStatuses lists the statuses reachable in one step from status.
func NextStatuses(status types.ApplicationStatus) []types.ApplicationStatus {
	return transitions[status]
}

func CanTransition(from, to types.ApplicationStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func CheckTransition(from, to types.ApplicationStatus) error {
	if !CanTransition(from, to) {
		return &TransitionError{From: from, To: to}
	}
	return nil
}

func IsBulkTarget(status types.ApplicationStatus) bool {
	for _, target := range BulkTargets {
		if target == status {
			return true
		}
	}
	return false
}

func IsTerminal(status types.ApplicationStatus) bool {
	return status == types.ApplicationStatusApproved || status == types.ApplicationStatusRejected
}

// Stage is the pipeline position of status; rejected has no stage and returns -1.
func Stage(status types.ApplicationStatus) int {
	if status == types.ApplicationStatusRejected {
		return -1
	}
	for i, s := range types.AllApplicationStatuses {
		if s == status {
			return i
		}
	}
	return -1
}
