package types

import "time"

type Applicant struct {
	ID             string     `db:"id" json:"id"`
	UserID         string     `db:"user_id" json:"userId"`
	FirstName      string     `db:"first_name" json:"firstName"`
	LastName       string     `db:"last_name" json:"lastName"`
	Email          string     `db:"email" json:"email"`
	Phone          *string    `db:"phone" json:"phone,omitempty"`
	DateOfBirth    *time.Time `db:"date_of_birth" json:"dateOfBirth,omitempty"`
	Gender         *string    `db:"gender" json:"gender,omitempty"`
	County         *string    `db:"county" json:"county,omitempty"`
	EducationLevel *string    `db:"education_level" json:"educationLevel,omitempty"`
	HasDisability  bool       `db:"has_disability" json:"hasDisability"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updatedAt"`
}

func (a *Applicant) FullName() string {
	if a == nil {
		return ""
	}
	if a.LastName == "" {
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}

// PersonalStep is the payload of the personal wizard step.
type PersonalStep struct {
	FirstName      string  `json:"firstName" validate:"notblank,max=100"`
	LastName       string  `json:"lastName" validate:"notblank,max=100"`
	Email          string  `json:"email" validate:"required,email"`
	Phone          *string `json:"phone" validate:"omitempty,max=32"`
	DateOfBirth    string  `json:"dateOfBirth" validate:"required,datetime=2006-01-02"`
	Gender         *string `json:"gender" validate:"omitempty,max=32"`
	County         *string `json:"county" validate:"omitempty,max=100"`
	EducationLevel *string `json:"educationLevel" validate:"omitempty,max=100"`
	HasDisability  bool    `json:"hasDisability"`
}
