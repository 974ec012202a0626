// Package export renders application results as CSV, JSON, DOCX and PDF.
package export

import (
	"strings"
	"time"

	"adaptgrant/internal/utils"
	"adaptgrant/pkg/types"
)

const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatDOCX = "docx"

	ContentTypePDF = "application/pdf"
)

var Formats = []string{FormatCSV, FormatJSON, FormatDOCX}

// ContentTypes maps each format to the response content type.
var ContentTypes = map[string]string{
	FormatCSV:  "text/csv",
	FormatJSON: "application/json",
	FormatDOCX: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// Row is one application flattened for export. Unevaluated applications
// carry zero scores and failed gates.
type Row struct {
	ApplicationID  string                              `json:"applicationId"`
	Status         types.ApplicationStatus             `json:"status"`
	SubmittedAt    *time.Time                          `json:"submittedAt,omitempty"`
	ApplicantName  string                              `json:"applicantName"`
	Email          string                              `json:"email"`
	County         string                              `json:"county"`
	BusinessName   string                              `json:"businessName"`
	Sector         string                              `json:"sector"`
	AnnualRevenue  float64                             `json:"annualRevenue"`
	Evaluated      bool                                `json:"evaluated"`
	TotalScore     float64                             `json:"totalScore"`
	IsEligible     bool                                `json:"isEligible"`
	CategoryScores map[types.CriterionCategory]float64 `json:"categoryScores"`

	AgeEligible          bool `json:"ageEligible"`
	RegistrationEligible bool `json:"registrationEligible"`
	RevenueEligible      bool `json:"revenueEligible"`
	BusinessPlanComplete bool `json:"businessPlanComplete"`
	ClimateImpactPresent bool `json:"climateImpactPresent"`
}

// BuildRows joins profiles with their stored eligibility, keyed by
// application id.
func BuildRows(profiles []*types.ApplicationProfile, eligibility map[string]*types.Eligibility) []*Row {
	rows := make([]*Row, 0, len(profiles))
	for _, p := range profiles {
		rows = append(rows, BuildRow(p, eligibility[p.Application.ID]))
	}
	return rows
}

func BuildRow(profile *types.ApplicationProfile, eligibility *types.Eligibility) *Row {
	row := &Row{
		ApplicationID:  profile.Application.ID,
		Status:         profile.Application.Status,
		SubmittedAt:    profile.Application.SubmittedAt,
		CategoryScores: make(map[types.CriterionCategory]float64, len(types.AllCriterionCategories)),
	}

	if a := profile.Applicant; a != nil {
		row.ApplicantName = a.FullName()
		row.Email = a.Email
		row.County = utils.PtrString(a.County)
	}

	if b := profile.Business; b != nil {
		row.BusinessName = b.Name
		row.Sector = utils.PtrString(b.Sector)
		row.AnnualRevenue = b.AnnualRevenue
	}

	for _, category := range types.AllCriterionCategories {
		row.CategoryScores[category] = 0
	}

	if eligibility == nil {
		return row
	}

	row.Evaluated = true
	row.TotalScore = eligibility.TotalScore
	row.IsEligible = eligibility.IsEligible
	row.AgeEligible = eligibility.AgeEligible
	row.RegistrationEligible = eligibility.RegistrationEligible
	row.RevenueEligible = eligibility.RevenueEligible
	row.BusinessPlanComplete = eligibility.BusinessPlanComplete
	row.ClimateImpactPresent = eligibility.ClimateImpactPresent
	for category, value := range eligibility.CategoryScores {
		row.CategoryScores[category] = value
	}

	return row
}

func categoryOrder() []types.CriterionCategory {
	return types.AllCriterionCategories
}

// categoryLabel turns climate_adaptation into Climate adaptation.
func categoryLabel(category types.CriterionCategory) string {
	label := strings.ReplaceAll(string(category), "_", " ")
	if label == "" {
		return label
	}
	return strings.ToUpper(label[:1]) + label[1:]
}
