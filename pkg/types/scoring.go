package types

import "time"

type CriterionCategory string

const (
	CategoryInnovation          CriterionCategory = "innovation"
	CategoryClimateAdaptation   CriterionCategory = "climate_adaptation"
	CategoryBusinessViability   CriterionCategory = "business_viability"
	CategoryFinancialManagement CriterionCategory = "financial_management"
	CategoryTeamCapacity        CriterionCategory = "team_capacity"
	CategoryScalability         CriterionCategory = "scalability"
	CategoryDragonsDen          CriterionCategory = "dragons_den"
)

// AllCriterionCategories is the display order used by reports and exports.
var AllCriterionCategories = []CriterionCategory{
	CategoryInnovation,
	CategoryClimateAdaptation,
	CategoryBusinessViability,
	CategoryFinancialManagement,
	CategoryTeamCapacity,
	CategoryScalability,
	CategoryDragonsDen,
}

func (c CriterionCategory) Valid() bool {
	for _, category := range AllCriterionCategories {
		if c == category {
			return true
		}
	}
	return false
}

type EvaluationType string

const (
	EvaluationTypeNumeric EvaluationType = "numeric"
	EvaluationTypeBoolean EvaluationType = "boolean"
	EvaluationTypeLevels  EvaluationType = "levels"
)

func (t EvaluationType) Valid() bool {
	switch t {
	case EvaluationTypeNumeric, EvaluationTypeBoolean, EvaluationTypeLevels:
		return true
	}
	return false
}

type ScoringLevel struct {
	Level       string  `json:"level"`
	Points      float64 `json:"points"`
	Description string  `json:"description,omitempty"`
}

type ScoringConfiguration struct {
	ID            string    `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Description   *string   `db:"description" json:"description,omitempty"`
	Version       int       `db:"version" json:"version"`
	TotalMaxScore float64   `db:"total_max_score" json:"totalMaxScore"`
	PassThreshold float64   `db:"pass_threshold" json:"passThreshold"`
	IsActive      bool      `db:"is_active" json:"isActive"`
	CreatedBy     *string   `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`

	Criteria []*ScoringCriterion `db:"-" json:"criteria"`
}

// CriteriaFor returns the criteria whose category is in categories, or all
// criteria when categories is empty.
func (c *ScoringConfiguration) CriteriaFor(categories ...CriterionCategory) []*ScoringCriterion {
	if len(categories) == 0 {
		return c.Criteria
	}

	out := make([]*ScoringCriterion, 0, len(c.Criteria))
	for _, criterion := range c.Criteria {
		for _, category := range categories {
			if criterion.Category == category {
				out = append(out, criterion)
				break
			}
		}
	}
	return out
}

func (c *ScoringConfiguration) Criterion(id string) (*ScoringCriterion, bool) {
	for _, criterion := range c.Criteria {
		if criterion.ID == id {
			return criterion, true
		}
	}
	return nil, false
}

type ScoringCriterion struct {
	ID              string            `db:"id" json:"id"`
	ConfigurationID string            `db:"configuration_id" json:"configurationId"`
	Name            string            `db:"name" json:"name"`
	Description     *string           `db:"description" json:"description,omitempty"`
	Category        CriterionCategory `db:"category" json:"category"`
	MaxPoints       float64           `db:"max_points" json:"maxPoints"`
	Weight          float64           `db:"weight" json:"weight"`
	EvaluationType  EvaluationType    `db:"evaluation_type" json:"evaluationType"`
	ScoringLevels   []ScoringLevel    `db:"scoring_levels" json:"scoringLevels"` // jsonb
	DisplayOrder    int               `db:"display_order" json:"displayOrder"`
	CreatedAt       time.Time         `db:"created_at" json:"createdAt"`
}

// ApplicationScore is one evaluator's score for one criterion of one
// application. Rows are created as unscored placeholders at assignment time.
type ApplicationScore struct {
	ID            string     `db:"id" json:"id"`
	ApplicationID string     `db:"application_id" json:"applicationId"`
	CriterionID   string     `db:"criterion_id" json:"criterionId"`
	EvaluatorID   string     `db:"evaluator_id" json:"evaluatorId"`
	Score         float64    `db:"score" json:"score"`
	Notes         *string    `db:"notes" json:"notes,omitempty"`
	Scored        bool       `db:"scored" json:"scored"`
	ScoredAt      *time.Time `db:"scored_at" json:"scoredAt,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updatedAt"`
}

type Eligibility struct {
	ApplicationID        string                        `db:"application_id" json:"applicationId"`
	ConfigurationID      string                        `db:"configuration_id" json:"configurationId"`
	AgeEligible          bool                          `db:"age_eligible" json:"ageEligible"`
	RegistrationEligible bool                          `db:"registration_eligible" json:"registrationEligible"`
	RevenueEligible      bool                          `db:"revenue_eligible" json:"revenueEligible"`
	BusinessPlanComplete bool                          `db:"business_plan_complete" json:"businessPlanComplete"`
	ClimateImpactPresent bool                          `db:"climate_impact_present" json:"climateImpactPresent"`
	CategoryScores       map[CriterionCategory]float64 `db:"category_scores" json:"categoryScores"` // jsonb
	TotalScore           float64                       `db:"total_score" json:"totalScore"`
	IsEligible           bool                          `db:"is_eligible" json:"isEligible"`
	EvaluationNotes      *string                       `db:"evaluation_notes" json:"evaluationNotes,omitempty"`
	EvaluatedAt          time.Time                     `db:"evaluated_at" json:"evaluatedAt"`
}

func (e *Eligibility) MandatoryPassed() bool {
	return e.AgeEligible && e.RegistrationEligible && e.RevenueEligible && e.BusinessPlanComplete && e.ClimateImpactPresent
}
