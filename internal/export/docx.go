package export

import (
	"fmt"
	"io"
	"time"

	"github.com/fumiama/go-docx"
)

// WriteDOCX renders a report with one section per application.
func WriteDOCX(w io.Writer, rows []*Row, generatedAt time.Time) error {
	doc := docx.New().WithDefaultTheme()

	doc.AddParagraph().AddText("Climate Adaptation Grant Applications").Size("36").Bold()
	doc.AddParagraph().AddText("Generated " + generatedAt.UTC().Format("2 January 2006 15:04 MST")).Size("20")
	doc.AddParagraph().AddText(fmt.Sprintf("%d applications", len(rows))).Size("20")

	for _, row := range rows {
		doc.AddParagraph()
		doc.AddParagraph().AddText(row.BusinessName + " (" + row.ApplicationID + ")").Size("28").Bold()

		for _, field := range row.fields() {
			p := doc.AddParagraph()
			p.AddText(field[0] + ": ").Bold()
			p.AddText(field[1])
		}
	}

	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

// fields lists label and value pairs in display order.
func (r *Row) fields() [][2]string {
	submitted := "not submitted"
	if r.SubmittedAt != nil {
		submitted = r.SubmittedAt.UTC().Format("2006-01-02")
	}

	out := [][2]string{
		{"Status", string(r.Status)},
		{"Submitted", submitted},
		{"Applicant", r.ApplicantName},
		{"Email", r.Email},
		{"County", orDash(r.County)},
		{"Sector", orDash(r.Sector)},
		{"Annual revenue", formatFloat(r.AnnualRevenue)},
	}

	if !r.Evaluated {
		return append(out, [2]string{"Evaluation", "not evaluated"})
	}

	out = append(out,
		[2]string{"Total score", formatFloat(r.TotalScore)},
		[2]string{"Eligible", yesNo(r.IsEligible)},
	)
	for _, category := range categoryOrder() {
		out = append(out, [2]string{categoryLabel(category), formatFloat(r.CategoryScores[category])})
	}
	return append(out,
		[2]string{"Age gate", passFail(r.AgeEligible)},
		[2]string{"Registration gate", passFail(r.RegistrationEligible)},
		[2]string{"Revenue gate", passFail(r.RevenueEligible)},
		[2]string{"Business plan gate", passFail(r.BusinessPlanComplete)},
		[2]string{"Climate impact gate", passFail(r.ClimateImpactPresent)},
	)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func passFail(b bool) string {
	if b {
		return "pass"
	}
	return "fail"
}
