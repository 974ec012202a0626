package scoring

import (
	"errors"
	"testing"

	"adaptgrant/pkg/types"

	"github.com/stretchr/testify/assert"
)

func TestDiff(t *testing.T) {
	tests := []struct {
		name     string
		previous *types.Eligibility
		next     *types.Eligibility
		want     Delta
	}{
		{
			name:     "first evaluation",
			previous: nil,
			next:     &types.Eligibility{ApplicationID: "a", TotalScore: 61.5, IsEligible: true},
			want:     Delta{ApplicationID: "a", NewTotal: 61.5, Delta: 61.5, Eligible: true, Flipped: true},
		},
		{
			name:     "score dropped below threshold",
			previous: &types.Eligibility{ApplicationID: "a", TotalScore: 62.1, IsEligible: true},
			next:     &types.Eligibility{ApplicationID: "a", TotalScore: 58.4, IsEligible: false},
			want:     Delta{ApplicationID: "a", HadPrevious: true, PreviousTotal: 62.1, NewTotal: 58.4, Delta: -3.7, PreviouslyEligible: true, Flipped: true},
		},
		{
			name:     "unchanged",
			previous: &types.Eligibility{ApplicationID: "a", TotalScore: 40, IsEligible: false},
			next:     &types.Eligibility{ApplicationID: "a", TotalScore: 40, IsEligible: false},
			want:     Delta{ApplicationID: "a", HadPrevious: true, PreviousTotal: 40, NewTotal: 40},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Diff(tt.previous, tt.next))
		})
	}
}

func TestReport_Add(t *testing.T) {
	r := NewReport("cfg-1", false, evaluatedAt)

	r.Add(Delta{ApplicationID: "a", Delta: 0})
	r.Add(Delta{ApplicationID: "b", Delta: 5, Eligible: true, Flipped: true})
	r.Add(Delta{ApplicationID: "c", Delta: -2, PreviouslyEligible: true, Flipped: true})
	r.Add(Delta{ApplicationID: "d", Delta: 1.25})
	r.Fail("e", errors.New("profile missing"))

	assert.Equal(t, 4, r.Evaluated)
	assert.Equal(t, 3, r.Changed)
	assert.Equal(t, 1, r.BecameEligible)
	assert.Equal(t, 1, r.BecameIneligible)
	assert.Equal(t, 1, r.Failed)
	assert.Len(t, r.Deltas, 5)
	assert.Equal(t, "profile missing", r.Deltas[4].Error)
}
