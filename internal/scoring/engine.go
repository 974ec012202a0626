// Package scoring computes application eligibility from a scoring
// configuration and the scores evaluators have submitted against it.
//
// Everything here is pure: callers load the profile, configuration and score
// rows, and persist the returned Eligibility.
package scoring

import (
	"sort"
	"strings"
	"time"

	"adaptgrant/internal/utils"
	"adaptgrant/pkg/types"
)

const (
	DefaultMinAge = 18
	DefaultMaxAge = 35

	// minimum trimmed length of a business description for the plan to count as complete
	minDescriptionLength = 50
)

type Engine struct {
	minAge int
	maxAge int
}

func NewEngine(minAge, maxAge int) *Engine {
	if minAge <= 0 {
		minAge = DefaultMinAge
	}
	if maxAge <= 0 || maxAge < minAge {
		maxAge = DefaultMaxAge
	}
	return &Engine{minAge: minAge, maxAge: maxAge}
}

// Mandatory holds the five pass/fail gates evaluated independently of the
// weighted rubric.
type Mandatory struct {
	AgeEligible          bool `json:"ageEligible"`
	RegistrationEligible bool `json:"registrationEligible"`
	RevenueEligible      bool `json:"revenueEligible"`
	BusinessPlanComplete bool `json:"businessPlanComplete"`
	ClimateImpactPresent bool `json:"climateImpactPresent"`
}

func (m Mandatory) Passed() bool {
	return m.AgeEligible && m.RegistrationEligible && m.RevenueEligible && m.BusinessPlanComplete && m.ClimateImpactPresent
}

// Failed lists the gates that did not pass, in a stable order.
func (m Mandatory) Failed() []string {
	var failed []string
	if !m.AgeEligible {
		failed = append(failed, "age")
	}
	if !m.RegistrationEligible {
		failed = append(failed, "registration")
	}
	if !m.RevenueEligible {
		failed = append(failed, "revenue")
	}
	if !m.BusinessPlanComplete {
		failed = append(failed, "business_plan")
	}
	if !m.ClimateImpactPresent {
		failed = append(failed, "climate_impact")
	}
	return failed
}

// Mandatory evaluates the gates for profile. Age is taken on the submission
// date once the application has one, so later re-evaluations agree with the
// first; drafts use at.
func (e *Engine) Mandatory(profile *types.ApplicationProfile, at time.Time) Mandatory {
	var m Mandatory
	if profile == nil {
		return m
	}

	if app := profile.Application; app != nil && app.SubmittedAt != nil {
		at = *app.SubmittedAt
	}

	if a := profile.Applicant; a != nil && a.DateOfBirth != nil {
		age := AgeOn(*a.DateOfBirth, at)
		m.AgeEligible = age >= e.minAge && age <= e.maxAge
	}

	if b := profile.Business; b != nil {
		m.RegistrationEligible = b.RegistrationStatus == types.RegistrationStatusRegistered
		m.RevenueEligible = b.AnnualRevenue > 0
		m.BusinessPlanComplete = len(strings.TrimSpace(b.Description)) >= minDescriptionLength &&
			notBlank(b.BusinessPlanSummary, b.ProductsServices, b.TargetMarket)
		m.ClimateImpactPresent = notBlank(b.ClimateRiskAddressed, b.AdaptationSolution, b.ClimateImpactDescription)
	}

	return m
}

// AgeOn returns the age in whole years of someone born on dob at time at.
func AgeOn(dob, at time.Time) int {
	years := at.Year() - dob.Year()
	if at.Month() < dob.Month() || (at.Month() == dob.Month() && at.Day() < dob.Day()) {
		years--
	}
	return years
}

// CategoryScores sums weighted criterion scores per category. A criterion's
// score is the mean of its evaluators' scored rows clamped to [0, maxPoints].
// Unscored placeholders and rows for criteria outside config are ignored.
// Every category with at least one criterion is present in the result.
func CategoryScores(config *types.ScoringConfiguration, scores []*types.ApplicationScore) map[types.CriterionCategory]float64 {
	out := make(map[types.CriterionCategory]float64)
	if config == nil {
		return out
	}

	byCriterion := make(map[string][]float64)
	for _, s := range Latest(scores) {
		if !s.Scored {
			continue
		}
		byCriterion[s.CriterionID] = append(byCriterion[s.CriterionID], s.Score)
	}

	raw := make(map[types.CriterionCategory]float64)
	for _, criterion := range config.Criteria {
		if _, ok := raw[criterion.Category]; !ok {
			raw[criterion.Category] = 0
		}

		values := byCriterion[criterion.ID]
		if len(values) == 0 {
			continue
		}

		var sum float64
		for _, v := range values {
			sum += v
		}

		mean := clamp(sum/float64(len(values)), 0, criterion.MaxPoints)
		raw[criterion.Category] += mean * weightOf(criterion)
	}

	for category, subtotal := range raw {
		out[category] = utils.RoundFloat64(subtotal, 2)
	}

	return out
}

// Total sums category subtotals. It is always the sum of the values reported
// by CategoryScores.
func Total(categories map[types.CriterionCategory]float64) float64 {
	var total float64
	for _, category := range sortedCategories(categories) {
		total += categories[category]
	}
	return utils.RoundFloat64(total, 2)
}

// Evaluate derives a fresh Eligibility for profile under config.
func (e *Engine) Evaluate(profile *types.ApplicationProfile, config *types.ScoringConfiguration, scores []*types.ApplicationScore, at time.Time) *types.Eligibility {
	mandatory := e.Mandatory(profile, at)
	categories := CategoryScores(config, scores)
	total := Total(categories)

	eligibility := &types.Eligibility{
		AgeEligible:          mandatory.AgeEligible,
		RegistrationEligible: mandatory.RegistrationEligible,
		RevenueEligible:      mandatory.RevenueEligible,
		BusinessPlanComplete: mandatory.BusinessPlanComplete,
		ClimateImpactPresent: mandatory.ClimateImpactPresent,
		CategoryScores:       categories,
		TotalScore:           total,
		IsEligible:           IsEligible(mandatory, total, config),
		EvaluatedAt:          at,
	}

	if profile != nil && profile.Application != nil {
		eligibility.ApplicationID = profile.Application.ID
	}
	if config != nil {
		eligibility.ConfigurationID = config.ID
	}

	notes := evaluationNotes(mandatory, total, config)
	eligibility.EvaluationNotes = &notes

	return eligibility
}

// IsEligible is true iff every mandatory gate passed and total meets the
// configuration's pass threshold.
func IsEligible(m Mandatory, total float64, config *types.ScoringConfiguration) bool {
	if config == nil {
		return false
	}
	return m.Passed() && total >= config.PassThreshold
}

// Latest collapses score rows to one per (criterion, evaluator), keeping the
// most recently updated row. Duplicate rows would otherwise double count.
func Latest(scores []*types.ApplicationScore) []*types.ApplicationScore {
	type key struct{ criterion, evaluator string }

	latest := make(map[key]*types.ApplicationScore, len(scores))
	order := make([]key, 0, len(scores))
	for _, s := range scores {
		if s == nil {
			continue
		}
		k := key{s.CriterionID, s.EvaluatorID}
		current, ok := latest[k]
		if !ok {
			order = append(order, k)
			latest[k] = s
			continue
		}
		if s.UpdatedAt.After(current.UpdatedAt) {
			latest[k] = s
		}
	}

	out := make([]*types.ApplicationScore, 0, len(order))
	for _, k := range order {
		out = append(out, latest[k])
	}
	return out
}

func evaluationNotes(m Mandatory, total float64, config *types.ScoringConfiguration) string {
	var b strings.Builder
	if failed := m.Failed(); len(failed) > 0 {
		b.WriteString("failed mandatory criteria: ")
		b.WriteString(strings.Join(failed, ", "))
	} else {
		b.WriteString("all mandatory criteria met")
	}

	if config == nil {
		b.WriteString("; no scoring configuration")
		return b.String()
	}

	if total < config.PassThreshold {
		b.WriteString("; total below pass threshold")
	} else {
		b.WriteString("; total meets pass threshold")
	}
	return b.String()
}

func sortedCategories(categories map[types.CriterionCategory]float64) []types.CriterionCategory {
	keys := make([]types.CriterionCategory, 0, len(categories))
	for k := range categories {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func weightOf(c *types.ScoringCriterion) float64 {
	if c.Weight <= 0 {
		return 1
	}
	return c.Weight
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func notBlank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}
