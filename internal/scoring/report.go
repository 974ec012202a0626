package scoring

import (
	"time"

	"adaptgrant/internal/utils"
	"adaptgrant/pkg/types"
)

// Delta describes how one application's evaluation moved between runs.
type Delta struct {
	ApplicationID      string  `json:"applicationId"`
	HadPrevious        bool    `json:"hadPrevious"`
	PreviousTotal      float64 `json:"previousTotal"`
	NewTotal           float64 `json:"newTotal"`
	Delta              float64 `json:"delta"`
	PreviouslyEligible bool    `json:"previouslyEligible"`
	Eligible           bool    `json:"eligible"`
	Flipped            bool    `json:"flipped"`
	Error              string  `json:"error,omitempty"`
}

func (d Delta) Changed() bool {
	return d.Delta != 0 || d.Flipped
}

// Diff compares a stored eligibility (nil when the application was never
// evaluated) with a freshly computed one.
func Diff(previous, next *types.Eligibility) Delta {
	d := Delta{
		ApplicationID: next.ApplicationID,
		NewTotal:      next.TotalScore,
		Eligible:      next.IsEligible,
	}

	if previous != nil {
		d.HadPrevious = true
		d.PreviousTotal = previous.TotalScore
		d.PreviouslyEligible = previous.IsEligible
	}

	d.Delta = utils.RoundFloat64(d.NewTotal-d.PreviousTotal, 2)
	d.Flipped = d.PreviouslyEligible != d.Eligible

	return d
}

// Report summarises a bulk re-evaluation.
type Report struct {
	ConfigurationID  string    `json:"configurationId"`
	DryRun           bool      `json:"dryRun"`
	Evaluated        int       `json:"evaluated"`
	Changed          int       `json:"changed"`
	BecameEligible   int       `json:"becameEligible"`
	BecameIneligible int       `json:"becameIneligible"`
	Failed           int       `json:"failed"`
	Deltas           []Delta   `json:"deltas"`
	StartedAt        time.Time `json:"startedAt"`
	FinishedAt       time.Time `json:"finishedAt"`
}

func NewReport(configurationID string, dryRun bool, started time.Time) *Report {
	return &Report{
		ConfigurationID: configurationID,
		DryRun:          dryRun,
		Deltas:          make([]Delta, 0),
		StartedAt:       started,
	}
}

func (r *Report) Add(d Delta) {
	r.Deltas = append(r.Deltas, d)

	if d.Error != "" {
		r.Failed++
		return
	}

	r.Evaluated++
	if d.Changed() {
		r.Changed++
	}
	if d.Flipped {
		if d.Eligible {
			r.BecameEligible++
		} else {
			r.BecameIneligible++
		}
	}
}

func (r *Report) Fail(applicationID string, err error) {
	r.Add(Delta{ApplicationID: applicationID, Error: err.Error()})
}
