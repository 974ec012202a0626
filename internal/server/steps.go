package server

import (
	"strings"
	"time"

	"adaptgrant/internal/utils"
	"adaptgrant/pkg/types"
)

func applyPersonalStep(a *types.Applicant, step *types.PersonalStep) error {
	dob, err := time.Parse(time.DateOnly, step.DateOfBirth)
	if err != nil {
		return errBadRequest("dateOfBirth must be formatted as YYYY-MM-DD")
	}

	a.FirstName = strings.TrimSpace(step.FirstName)
	a.LastName = strings.TrimSpace(step.LastName)
	a.Email = strings.TrimSpace(step.Email)
	a.Phone = utils.TrimmedStringPtr(step.Phone)
	a.DateOfBirth = &dob
	a.Gender = utils.TrimmedStringPtr(step.Gender)
	a.County = utils.TrimmedStringPtr(step.County)
	a.EducationLevel = utils.TrimmedStringPtr(step.EducationLevel)
	a.HasDisability = step.HasDisability
	return nil
}

func applyBusinessStep(b *types.Business, step *types.BusinessStep) {
	b.Name = strings.TrimSpace(step.Name)
	b.RegistrationStatus = step.RegistrationStatus
	b.RegistrationNumber = utils.TrimmedStringPtr(step.RegistrationNumber)
	b.Sector = utils.TrimmedStringPtr(step.Sector)
	b.County = utils.TrimmedStringPtr(step.County)
	b.YearsOperating = step.YearsOperating
	b.Description = strings.TrimSpace(step.Description)
	b.BusinessPlanSummary = strings.TrimSpace(step.BusinessPlanSummary)
	b.ProductsServices = strings.TrimSpace(step.ProductsServices)
	b.TargetMarket = strings.TrimSpace(step.TargetMarket)
}

func applyFinancialStep(b *types.Business, step *types.FinancialStep) {
	b.AnnualRevenue = step.AnnualRevenue
	b.FullTimeEmployees = step.FullTimeEmployees
	b.PartTimeEmployees = step.PartTimeEmployees
	b.PreviousFunding = step.PreviousFunding
	b.PreviousFundingAmount = 0
	b.PreviousFundingSource = nil
	if step.PreviousFunding {
		b.PreviousFundingAmount = step.PreviousFundingAmount
		b.PreviousFundingSource = utils.TrimmedStringPtr(step.PreviousFundingSource)
	}
}

func applyAdaptationStep(b *types.Business, step *types.AdaptationStep) {
	b.ClimateRiskAddressed = strings.TrimSpace(step.ClimateRiskAddressed)
	b.AdaptationSolution = strings.TrimSpace(step.AdaptationSolution)
	b.ClimateImpactDescription = strings.TrimSpace(step.ClimateImpactDescription)
	b.BeneficiariesCount = step.BeneficiariesCount
}

func applySupportStep(b *types.Business, step *types.SupportStep) {
	b.FundingRequested = step.FundingRequested
	b.FundingUse = strings.TrimSpace(step.FundingUse)
	b.TechnicalSupportNeeded = strings.TrimSpace(step.TechnicalSupportNeeded)
}

// completeStep records step as done and moves the wizard to the next step,
// or to review once the last step is saved.
func completeStep(application *types.Application, step types.WizardStep) {
	if !application.HasCompletedStep(step) {
		application.CompletedSteps = append(application.CompletedSteps, string(step))
	}

	application.CurrentStep = types.WizardStepReview
	for i, s := range types.WizardSteps {
		if s == step && i+1 < len(types.WizardSteps) {
			application.CurrentStep = types.WizardSteps[i+1]
		}
	}
}

func isWizardStep(step types.WizardStep) bool {
	for _, s := range types.WizardSteps {
		if s == step {
			return true
		}
	}
	return false
}
