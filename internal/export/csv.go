package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"
)

func header() []string {
	h := []string{
		"application_id",
		"status",
		"submitted_at",
		"applicant_name",
		"email",
		"county",
		"business_name",
		"sector",
		"annual_revenue",
		"total_score",
		"is_eligible",
	}
	for _, category := range categoryOrder() {
		h = append(h, string(category)+"_score")
	}
	return append(h,
		"age_eligible",
		"registration_eligible",
		"revenue_eligible",
		"business_plan_complete",
		"climate_impact_present",
	)
}

func (r *Row) record() []string {
	submitted := ""
	if r.SubmittedAt != nil {
		submitted = r.SubmittedAt.UTC().Format(time.RFC3339)
	}

	rec := []string{
		r.ApplicationID,
		string(r.Status),
		submitted,
		r.ApplicantName,
		r.Email,
		r.County,
		r.BusinessName,
		r.Sector,
		formatFloat(r.AnnualRevenue),
		formatFloat(r.TotalScore),
		strconv.FormatBool(r.IsEligible),
	}
	for _, category := range categoryOrder() {
		rec = append(rec, formatFloat(r.CategoryScores[category]))
	}
	return append(rec,
		strconv.FormatBool(r.AgeEligible),
		strconv.FormatBool(r.RegistrationEligible),
		strconv.FormatBool(r.RevenueEligible),
		strconv.FormatBool(r.BusinessPlanComplete),
		strconv.FormatBool(r.ClimateImpactPresent),
	)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// WriteCSV writes a header row followed by one row per application.
func WriteCSV(w io.Writer, rows []*Row) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, row := range rows {
		if err := cw.Write(row.record()); err != nil {
			return fmt.Errorf("write csv row %s: %w", row.ApplicationID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteJSON writes rows as an indented array.
func WriteJSON(w io.Writer, rows []*Row) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}
