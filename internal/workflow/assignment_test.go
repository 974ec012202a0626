package workflow

import (
	"encoding/json"
	"testing"

	"adaptgrant/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pool(maxAssignments ...int) []types.EvaluatorLoad {
	ids := []string{"ev-a", "ev-b", "ev-c", "ev-d"}
	out := make([]types.EvaluatorLoad, len(maxAssignments))
	for i, m := range maxAssignments {
		out[i] = types.EvaluatorLoad{Evaluator: &types.EvaluatorProfile{ID: ids[i], MaxAssignments: m}}
	}
	return out
}

func TestRoundRobin(t *testing.T) {
	pairs := RoundRobin([]string{"app-1", "app-2", "app-3"}, pool(0, 0, 0), 2, nil)

	assert.Equal(t, []Pair{
		{"app-1", "ev-a"}, {"app-1", "ev-b"},
		{"app-2", "ev-c"}, {"app-2", "ev-a"},
		{"app-3", "ev-b"}, {"app-3", "ev-c"},
	}, pairs)
}

func TestRoundRobin_RespectsCapacity(t *testing.T) {
	evaluators := pool(1, 0)
	evaluators[1].Applications = 0

	pairs := RoundRobin([]string{"app-1", "app-2", "app-3"}, evaluators, 1, nil)

	assert.Equal(t, []Pair{
		{"app-1", "ev-a"},
		{"app-2", "ev-b"},
		{"app-3", "ev-b"},
	}, pairs)
}

func TestRoundRobin_ExistingLoadCountsAgainstCapacity(t *testing.T) {
	evaluators := pool(2)
	evaluators[0].Applications = 2

	assert.Empty(t, RoundRobin([]string{"app-1"}, evaluators, 1, nil))
}

func TestRoundRobin_MoreEvaluatorsRequestedThanAvailable(t *testing.T) {
	pairs := RoundRobin([]string{"app-1"}, pool(0, 0), 5, nil)

	assert.Equal(t, []Pair{{"app-1", "ev-a"}, {"app-1", "ev-b"}}, pairs)
}

func TestRoundRobin_Empty(t *testing.T) {
	assert.Nil(t, RoundRobin([]string{"app-1"}, nil, 2, nil))
	assert.Nil(t, RoundRobin([]string{"app-1"}, pool(0), 0, nil))
}

func TestRoundRobin_HeldAssignmentsAreNotChargedTwice(t *testing.T) {
	evaluators := pool(1, 1)
	evaluators[0].Applications = 1
	evaluators[1].Applications = 1
	held := map[string][]string{
		"app-1": {"ev-a"},
		"app-2": {"ev-b"},
	}

	pairs := RoundRobin([]string{"app-1", "app-2"}, evaluators, 1, held)

	assert.Equal(t, []Pair{{"app-1", "ev-a"}, {"app-2", "ev-b"}}, pairs)
}

func TestRoundRobin_HeldAssignmentsFillSlotsFirst(t *testing.T) {
	held := map[string][]string{"app-1": {"ev-c", "ev-gone"}}

	pairs := RoundRobin([]string{"app-1"}, pool(0, 0, 0), 2, held)

	assert.Equal(t, []Pair{{"app-1", "ev-c"}, {"app-1", "ev-a"}}, pairs)
}

func TestPair_JSON(t *testing.T) {
	data, err := json.Marshal(Pair{ApplicationID: "app-1", EvaluatorID: "ev-a"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"applicationId":"app-1","evaluatorId":"ev-a"}`, string(data))
}
