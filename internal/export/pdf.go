package export

import (
	"fmt"
	"io"
	"time"

	"adaptgrant/internal/scoring"
	"adaptgrant/internal/utils"
	"adaptgrant/pkg/types"

	"github.com/go-pdf/fpdf"
)

// Summary is everything the evaluation sheet prints for one application.
type Summary struct {
	Profile     *types.ApplicationProfile
	Eligibility *types.Eligibility
	Config      *types.ScoringConfiguration
	Scores      []*types.ApplicationScore
	GeneratedAt time.Time
}

// WritePDF renders a single page evaluation summary sheet.
func WritePDF(w io.Writer, s Summary) error {
	row := BuildRow(s.Profile, s.Eligibility)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Evaluation summary "+row.ApplicationID, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr("Evaluation Summary"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, tr("Generated "+s.GeneratedAt.UTC().Format("2 Jan 2006 15:04 MST")), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	section(pdf, tr, "Application")
	for _, field := range row.fields()[:7] {
		keyValue(pdf, tr, field[0], field[1])
	}
	pdf.Ln(3)

	section(pdf, tr, "Mandatory criteria")
	if row.Evaluated {
		keyValue(pdf, tr, "Age", passFail(row.AgeEligible))
		keyValue(pdf, tr, "Registration", passFail(row.RegistrationEligible))
		keyValue(pdf, tr, "Revenue", passFail(row.RevenueEligible))
		keyValue(pdf, tr, "Business plan", passFail(row.BusinessPlanComplete))
		keyValue(pdf, tr, "Climate impact", passFail(row.ClimateImpactPresent))
	} else {
		keyValue(pdf, tr, "Evaluation", "not evaluated")
	}
	pdf.Ln(3)

	if s.Config != nil {
		section(pdf, tr, fmt.Sprintf("Criteria (%s v%d)", s.Config.Name, s.Config.Version))
		criteriaTable(pdf, tr, s.Config, s.Scores)
		pdf.Ln(3)
	}

	section(pdf, tr, "Result")
	for _, category := range categoryOrder() {
		keyValue(pdf, tr, categoryLabel(category), formatFloat(row.CategoryScores[category]))
	}
	pdf.SetFont("Helvetica", "B", 10)
	keyValue(pdf, tr, "Total score", formatFloat(row.TotalScore))
	keyValue(pdf, tr, "Eligible", yesNo(row.IsEligible))

	if s.Eligibility != nil && s.Eligibility.EvaluationNotes != nil {
		pdf.Ln(3)
		section(pdf, tr, "Notes")
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(0, 5, tr(*s.Eligibility.EvaluationNotes), "", "L", false)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func section(pdf *fpdf.Fpdf, tr func(string) string, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetFillColor(230, 240, 230)
	pdf.CellFormat(0, 7, tr(title), "", 1, "L", true, 0, "")
	pdf.SetFont("Helvetica", "", 10)
}

func keyValue(pdf *fpdf.Fpdf, tr func(string) string, key, value string) {
	pdf.CellFormat(60, 6, tr(key), "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr(value), "", 1, "L", false, 0, "")
}

func criteriaTable(pdf *fpdf.Fpdf, tr func(string) string, config *types.ScoringConfiguration, scores []*types.ApplicationScore) {
	means := criterionMeans(scores)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(80, 6, "Criterion", "B", 0, "L", false, 0, "")
	pdf.CellFormat(45, 6, "Category", "B", 0, "L", false, 0, "")
	pdf.CellFormat(20, 6, "Max", "B", 0, "R", false, 0, "")
	pdf.CellFormat(15, 6, "Weight", "B", 0, "R", false, 0, "")
	pdf.CellFormat(0, 6, "Score", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, c := range config.Criteria {
		score := "-"
		if m, ok := means[c.ID]; ok {
			score = formatFloat(m)
		}

		pdf.CellFormat(80, 6, tr(c.Name), "", 0, "L", false, 0, "")
		pdf.CellFormat(45, 6, tr(categoryLabel(c.Category)), "", 0, "L", false, 0, "")
		pdf.CellFormat(20, 6, formatFloat(c.MaxPoints), "", 0, "R", false, 0, "")
		pdf.CellFormat(15, 6, formatFloat(c.Weight), "", 0, "R", false, 0, "")
		pdf.CellFormat(0, 6, score, "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "", 10)
}

// criterionMeans averages the scored rows per criterion.
func criterionMeans(scores []*types.ApplicationScore) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, s := range scoring.Latest(scores) {
		if !s.Scored {
			continue
		}
		sums[s.CriterionID] += s.Score
		counts[s.CriterionID]++
	}

	out := make(map[string]float64, len(sums))
	for id, sum := range sums {
		out[id] = utils.RoundFloat64(sum/float64(counts[id]), 2)
	}
	return out
}
