package types

import "time"

type RegistrationStatus string

const (
	RegistrationStatusRegistered   RegistrationStatus = "registered"
	RegistrationStatusUnregistered RegistrationStatus = "unregistered"
	RegistrationStatusInProgress   RegistrationStatus = "in_progress"
)

func (s RegistrationStatus) Valid() bool {
	switch s {
	case RegistrationStatusRegistered, RegistrationStatusUnregistered, RegistrationStatusInProgress:
		return true
	}
	return false
}

type Business struct {
	ID                 string             `db:"id" json:"id"`
	ApplicantID        string             `db:"applicant_id" json:"applicantId"`
	Name               string             `db:"name" json:"name"`
	RegistrationStatus RegistrationStatus `db:"registration_status" json:"registrationStatus"`
	RegistrationNumber *string            `db:"registration_number" json:"registrationNumber,omitempty"`
	Sector             *string            `db:"sector" json:"sector,omitempty"`
	County             *string            `db:"county" json:"county,omitempty"`
	YearsOperating     int                `db:"years_operating" json:"yearsOperating"`

	Description         string `db:"description" json:"description"`
	BusinessPlanSummary string `db:"business_plan_summary" json:"businessPlanSummary"`
	ProductsServices    string `db:"products_services" json:"productsServices"`
	TargetMarket        string `db:"target_market" json:"targetMarket"`

	AnnualRevenue         float64 `db:"annual_revenue" json:"annualRevenue"`
	FullTimeEmployees     int     `db:"full_time_employees" json:"fullTimeEmployees"`
	PartTimeEmployees     int     `db:"part_time_employees" json:"partTimeEmployees"`
	PreviousFunding       bool    `db:"previous_funding" json:"previousFunding"`
	PreviousFundingAmount float64 `db:"previous_funding_amount" json:"previousFundingAmount"`
	PreviousFundingSource *string `db:"previous_funding_source" json:"previousFundingSource,omitempty"`

	ClimateRiskAddressed     string `db:"climate_risk_addressed" json:"climateRiskAddressed"`
	AdaptationSolution       string `db:"adaptation_solution" json:"adaptationSolution"`
	ClimateImpactDescription string `db:"climate_impact_description" json:"climateImpactDescription"`
	BeneficiariesCount       int    `db:"beneficiaries_count" json:"beneficiariesCount"`

	FundingRequested       float64 `db:"funding_requested" json:"fundingRequested"`
	FundingUse             string  `db:"funding_use" json:"fundingUse"`
	TechnicalSupportNeeded string  `db:"technical_support_needed" json:"technicalSupportNeeded"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

type BusinessStep struct {
	Name                string             `json:"name" validate:"notblank,max=200"`
	RegistrationStatus  RegistrationStatus `json:"registrationStatus" validate:"required,oneof=registered unregistered in_progress"`
	RegistrationNumber  *string            `json:"registrationNumber" validate:"omitempty,max=64"`
	Sector              *string            `json:"sector" validate:"omitempty,max=100"`
	County              *string            `json:"county" validate:"omitempty,max=100"`
	YearsOperating      int                `json:"yearsOperating" validate:"gte=0,lte=100"`
	Description         string             `json:"description"`
	BusinessPlanSummary string             `json:"businessPlanSummary"`
	ProductsServices    string             `json:"productsServices"`
	TargetMarket        string             `json:"targetMarket"`
}

type FinancialStep struct {
	AnnualRevenue         float64 `json:"annualRevenue" validate:"gte=0"`
	FullTimeEmployees     int     `json:"fullTimeEmployees" validate:"gte=0"`
	PartTimeEmployees     int     `json:"partTimeEmployees" validate:"gte=0"`
	PreviousFunding       bool    `json:"previousFunding"`
	PreviousFundingAmount float64 `json:"previousFundingAmount" validate:"gte=0"`
	PreviousFundingSource *string `json:"previousFundingSource" validate:"omitempty,max=200"`
}

type AdaptationStep struct {
	ClimateRiskAddressed     string `json:"climateRiskAddressed" validate:"notblank"`
	AdaptationSolution       string `json:"adaptationSolution" validate:"notblank"`
	ClimateImpactDescription string `json:"climateImpactDescription"`
	BeneficiariesCount       int    `json:"beneficiariesCount" validate:"gte=0"`
}

type SupportStep struct {
	FundingRequested       float64 `json:"fundingRequested" validate:"gt=0"`
	FundingUse             string  `json:"fundingUse" validate:"notblank"`
	TechnicalSupportNeeded string  `json:"technicalSupportNeeded"`
}
