package types

type StatusCount struct {
	Status ApplicationStatus `db:"status" json:"status"`
	Count  int               `db:"count" json:"count"`
}

type FunnelStage struct {
	Status  ApplicationStatus `json:"status"`
	Reached int               `json:"reached"`
}

type ScoreBucket struct {
	Label string `json:"label"`
	Min   int    `json:"min"`
	Max   int    `json:"max"`
	Count int    `json:"count"`
}

type EligibilitySummary struct {
	Evaluated           int     `db:"evaluated" json:"evaluated"`
	Eligible            int     `db:"eligible" json:"eligible"`
	Ineligible          int     `db:"ineligible" json:"ineligible"`
	AverageTotal        float64 `db:"average_total" json:"averageTotal"`
	AgePassed           int     `db:"age_passed" json:"agePassed"`
	RegistrationPassed  int     `db:"registration_passed" json:"registrationPassed"`
	RevenuePassed       int     `db:"revenue_passed" json:"revenuePassed"`
	BusinessPlanPassed  int     `db:"business_plan_passed" json:"businessPlanPassed"`
	ClimateImpactPassed int     `db:"climate_impact_passed" json:"climateImpactPassed"`
}

type CategoryAverage struct {
	Category CriterionCategory `db:"category" json:"category"`
	Average  float64           `db:"average" json:"average"`
}

type EvaluatorPerformance struct {
	EvaluatorID    string  `db:"evaluator_id" json:"evaluatorId"`
	DisplayName    string  `db:"display_name" json:"displayName"`
	Role           Role    `db:"role" json:"role"`
	Assigned       int     `db:"assigned" json:"assigned"`
	Scored         int     `db:"scored" json:"scored"`
	CompletionRate float64 `db:"-" json:"completionRate"`
	AverageScore   float64 `db:"average_score" json:"averageScore"`
}

// Breakdown is a count of submitted applications grouped by a free text
// attribute such as county or sector.
type Breakdown struct {
	Key   string `db:"key" json:"key"`
	Count int    `db:"count" json:"count"`
}
