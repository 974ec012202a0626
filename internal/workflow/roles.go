package workflow

import (
	"fmt"

	"adaptgrant/pkg/types"
)

var roleStatuses = map[types.Role][]types.ApplicationStatus{
	types.RoleTechnicalReviewer: {types.ApplicationStatusUnderReview, types.ApplicationStatusShortlisted},
	types.RoleJuryMember:        {types.ApplicationStatusScoringPhase},
	types.RoleDragonsDenJudge:   {types.ApplicationStatusDragonsDen},
	types.RoleAdmin: {
		types.ApplicationStatusSubmitted,
		types.ApplicationStatusUnderReview,
		types.ApplicationStatusShortlisted,
		types.ApplicationStatusScoringPhase,
		types.ApplicationStatusDragonsDen,
		types.ApplicationStatusFinalist,
		types.ApplicationStatusApproved,
		types.ApplicationStatusRejected,
	},
}

type RoleGateError struct {
	Role   types.Role
	Status types.ApplicationStatus
}

func (e *RoleGateError) Error() string {
	return fmt.Sprintf("role %s cannot act on %s applications", e.Role, e.Status)
}

// ValidStatuses lists the application statuses role may act on.
func ValidStatuses(role types.Role) []types.ApplicationStatus {
	return roleStatuses[role]
}

func CanAct(role types.Role, status types.ApplicationStatus) bool {
	for _, s := range roleStatuses[role] {
		if s == status {
			return true
		}
	}
	return false
}

func CheckRole(role types.Role, status types.ApplicationStatus) error {
	if !CanAct(role, status) {
		return &RoleGateError{Role: role, Status: status}
	}
	return nil
}

// ScoredCategories lists the criterion categories role scores. Dragon's Den
// judges only score the pitch; everyone else scores the rest of the rubric.
func ScoredCategories(role types.Role) []types.CriterionCategory {
	if role == types.RoleDragonsDenJudge {
		return []types.CriterionCategory{types.CategoryDragonsDen}
	}

	out := make([]types.CriterionCategory, 0, len(types.AllCriterionCategories))
	for _, c := range types.AllCriterionCategories {
		if c != types.CategoryDragonsDen {
			out = append(out, c)
		}
	}
	return out
}
