package types

import "time"

type Role string

const (
	RoleApplicant         Role = "applicant"
	RoleAdmin             Role = "admin"
	RoleTechnicalReviewer Role = "technical_reviewer"
	RoleJuryMember        Role = "jury_member"
	RoleDragonsDenJudge   Role = "dragons_den_judge"
)

// EvaluatorRoles are the roles that may hold score assignments.
var EvaluatorRoles = []Role{
	RoleTechnicalReviewer,
	RoleJuryMember,
	RoleDragonsDenJudge,
}

func (r Role) IsEvaluator() bool {
	for _, role := range EvaluatorRoles {
		if r == role {
			return true
		}
	}
	return false
}

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleApplicant || r.IsEvaluator()
}

type EvaluatorProfile struct {
	ID             string    `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"userId"`
	DisplayName    string    `db:"display_name" json:"displayName"`
	Email          string    `db:"email" json:"email"`
	Role           Role      `db:"role" json:"role"`
	Expertise      *string   `db:"expertise" json:"expertise,omitempty"`
	IsActive       bool      `db:"is_active" json:"isActive"`
	MaxAssignments int       `db:"max_assignments" json:"maxAssignments"` // 0 is unlimited
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

// EvaluatorLoad is an evaluator with the number of applications it is
// currently assigned to.
type EvaluatorLoad struct {
	Evaluator    *EvaluatorProfile
	Applications int
}

func (l EvaluatorLoad) HasCapacity() bool {
	return l.Evaluator.MaxAssignments == 0 || l.Applications < l.Evaluator.MaxAssignments
}
