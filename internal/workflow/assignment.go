package workflow

import "adaptgrant/pkg/types"

// Pair is one evaluator assigned to one application.
type Pair struct {
	ApplicationID string `json:"applicationId"`
	EvaluatorID   string `json:"evaluatorId"`
}

// RoundRobin spreads evaluators over applications. Application i gets the
// evaluators at positions (i*perApplication + k) mod len(pool) for k below
// perApplication, skipping anyone whose capacity is used up. An application
// never receives the same evaluator twice.
//
// held maps an application to the evaluators that already hold rows for it.
// Those evaluators fill its slots first and are returned again, but their
// load already includes the application so capacity is not charged twice.
func RoundRobin(applicationIDs []string, pool []types.EvaluatorLoad, perApplication int, held map[string][]string) []Pair {
	if perApplication <= 0 || len(pool) == 0 {
		return nil
	}

	load := make([]int, len(pool))
	index := make(map[string]int, len(pool))
	for i, l := range pool {
		load[i] = l.Applications
		index[l.Evaluator.ID] = i
	}

	hasCapacity := func(i int) bool {
		limit := pool[i].Evaluator.MaxAssignments
		return limit == 0 || load[i] < limit
	}

	var pairs []Pair
	for i, applicationID := range applicationIDs {
		assigned := make(map[int]bool, perApplication)

		for _, evaluatorID := range held[applicationID] {
			idx, ok := index[evaluatorID]
			if !ok || assigned[idx] || len(assigned) >= perApplication {
				continue
			}
			assigned[idx] = true
			pairs = append(pairs, Pair{ApplicationID: applicationID, EvaluatorID: evaluatorID})
		}

		for k := 0; k < len(pool) && len(assigned) < perApplication; k++ {
			idx := (i*perApplication + k) % len(pool)
			if assigned[idx] || !hasCapacity(idx) {
				continue
			}

			assigned[idx] = true
			load[idx]++
			pairs = append(pairs, Pair{ApplicationID: applicationID, EvaluatorID: pool[idx].Evaluator.ID})
		}
	}

	return pairs
}
