package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"adaptgrant/internal/store"
	"adaptgrant/internal/utils"
	"adaptgrant/pkg/types"
)

const seedUserPrefix = "seed-applicant-"

var (
	seedFirstNames = []string{"Achieng", "Baraka", "Chebet", "Daudi", "Esther", "Faith", "Gitau", "Hassan", "Imani", "Juma"}
	seedLastNames  = []string{"Odhiambo", "Mwangi", "Kiprop", "Wekesa", "Mutua", "Njoroge", "Otieno", "Ali", "Wambui", "Korir"}
	seedCounties   = []string{"Kisumu", "Nakuru", "Machakos", "Kitui", "Turkana", "Mombasa", "Garissa", "Nyeri", ""}
	seedSectors    = []string{"agriculture", "aquaculture", "water", "energy", "waste", "forestry", ""}

	seedSolutions = []string{
		"Solar powered cold storage for smallholder produce.",
		"Drought tolerant seed multiplication and distribution.",
		"Rainwater harvesting tanks on a pay as you go plan.",
		"Briquettes made from agricultural waste to replace charcoal.",
		"Early warning flood alerts by SMS for riverside farmers.",
		"Drip irrigation kits sized for quarter acre plots.",
	}
)

type weightedStatus struct {
	Status types.ApplicationStatus
	Weight int
}

var weightedStatuses = []weightedStatus{
	{Status: types.ApplicationStatusDraft, Weight: 25},
	{Status: types.ApplicationStatusSubmitted, Weight: 20},
	{Status: types.ApplicationStatusUnderReview, Weight: 15},
	{Status: types.ApplicationStatusShortlisted, Weight: 10},
	{Status: types.ApplicationStatusScoringPhase, Weight: 10},
	{Status: types.ApplicationStatusDragonsDen, Weight: 5},
	{Status: types.ApplicationStatusFinalist, Weight: 3},
	{Status: types.ApplicationStatusApproved, Weight: 2},
	{Status: types.ApplicationStatusRejected, Weight: 10},
}

// SeedFakeApplications creates count applicants, each with a business and a
// single application in a weighted random status. reset first removes every
// previously seeded applicant, cascading to their applications.
func SeedFakeApplications(ctx context.Context, db store.DBTX, count int, reset bool) error {
	if reset {
		result, err := db.Exec(ctx, `DELETE FROM adaptgrant.applicants WHERE user_id LIKE $1`, seedUserPrefix+"%")
		if err != nil {
			return fmt.Errorf("failed to reset seeded applications: %w", err)
		}
		fmt.Printf("Reset seeded applicants: %d deleted\n", result.RowsAffected())
	}

	if count <= 0 {
		fmt.Println("Skipping fake applications seed because count <= 0")
		return nil
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	st := store.New(db)

	created := 0
	for i := 0; i < count; i++ {
		applicant, business, application := fakeApplication(rng, time.Now())

		err := st.WithTx(ctx, func(tx *store.Store) error {
			if err := tx.Applicants.Create(ctx, applicant); err != nil {
				return err
			}
			if err := tx.Businesses.Create(ctx, business); err != nil {
				return err
			}
			return tx.Applications.Create(ctx, application)
		})
		if err != nil {
			return fmt.Errorf("failed to create fake application %d: %w", i+1, err)
		}

		created++
	}

	fmt.Printf("Fake applications seeded: %d created\n", created)
	return nil
}

func fakeApplication(rng *rand.Rand, now time.Time) (*types.Applicant, *types.Business, *types.Application) {
	first := seedFirstNames[rng.Intn(len(seedFirstNames))]
	last := seedLastNames[rng.Intn(len(seedLastNames))]
	county := seedCounties[rng.Intn(len(seedCounties))]

	dob := now.AddDate(-(18 + rng.Intn(22)), -rng.Intn(12), 0)

	applicant := &types.Applicant{
		ID:          utils.NanoID(),
		UserID:      seedUserPrefix + utils.NanoIDSize(12),
		FirstName:   first,
		LastName:    last,
		Email:       fmt.Sprintf("%s.%s+%s@example.com", first, last, utils.NanoIDSize(6)),
		DateOfBirth: &dob,
		County:      optional(county),
	}

	registration := types.RegistrationStatusRegistered
	if rng.Intn(100) < 20 {
		registration = types.RegistrationStatusInProgress
	}

	solution := seedSolutions[rng.Intn(len(seedSolutions))]
	business := &types.Business{
		ID:                       utils.NanoID(),
		ApplicantID:              applicant.ID,
		Name:                     fmt.Sprintf("%s %s Enterprises", last, []string{"Green", "Resilient", "Shamba", "Maji"}[rng.Intn(4)]),
		RegistrationStatus:       registration,
		Sector:                   optional(seedSectors[rng.Intn(len(seedSectors))]),
		County:                   optional(county),
		YearsOperating:           rng.Intn(8),
		Description:              solution,
		BusinessPlanSummary:      "Grow the customer base across the county over three years.",
		ProductsServices:         solution,
		TargetMarket:             "Smallholder farming households",
		AnnualRevenue:            float64(rng.Intn(5000)+100) * 100,
		FullTimeEmployees:        rng.Intn(12),
		PartTimeEmployees:        rng.Intn(6),
		ClimateRiskAddressed:     "Prolonged drought and erratic rainfall",
		AdaptationSolution:       solution,
		ClimateImpactDescription: "Reduces crop losses and dependence on rain fed farming.",
		BeneficiariesCount:       rng.Intn(900) + 50,
		FundingRequested:         float64(rng.Intn(40)+10) * 1000,
		FundingUse:               "Equipment and working capital",
	}
	if registration == types.RegistrationStatusRegistered {
		business.RegistrationNumber = utils.StringPtr("PVT-" + utils.NanoIDSize(8))
	}

	status := pickWeightedStatus(rng)
	application := &types.Application{
		ID:          utils.NanoID(),
		ApplicantID: applicant.ID,
		BusinessID:  business.ID,
		Status:      status,
	}

	if status == types.ApplicationStatusDraft {
		done := rng.Intn(len(types.WizardSteps))
		for _, step := range types.WizardSteps[:done] {
			application.CompletedSteps = append(application.CompletedSteps, string(step))
		}
		application.CurrentStep = types.WizardSteps[done]
		return applicant, business, application
	}

	for _, step := range types.WizardSteps {
		application.CompletedSteps = append(application.CompletedSteps, string(step))
	}
	application.CurrentStep = types.WizardStepReview
	application.SubmittedAt = utils.TimePtr(now.Add(-time.Duration(rng.Intn(30*24)) * time.Hour))

	return applicant, business, application
}

func pickWeightedStatus(rng *rand.Rand) types.ApplicationStatus {
	total := 0
	for _, item := range weightedStatuses {
		total += item.Weight
	}

	if total == 0 {
		return types.ApplicationStatusDraft
	}

	roll := rng.Intn(total)
	running := 0
	for _, item := range weightedStatuses {
		running += item.Weight
		if roll < running {
			return item.Status
		}
	}

	return types.ApplicationStatusDraft
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return utils.StringPtr(s)
}
