package server

import (
	"context"
	"net/http"

	"adaptgrant/internal/evaluation"
	"adaptgrant/internal/store"
	"adaptgrant/internal/workflow"
	"adaptgrant/pkg/types"
)

type assignment struct {
	Profile *types.ApplicationProfile `json:"profile"`
	Scores  []*types.ApplicationScore `json:"scores"`
	Pending int                       `json:"pending"`
}

// groupAssignments pairs each profile the role may act on with the
// evaluator's score rows for it, preserving profile order.
func groupAssignments(role types.Role, profiles []*types.ApplicationProfile, scores []*types.ApplicationScore) []*assignment {
	byApplication := make(map[string][]*types.ApplicationScore)
	for _, score := range scores {
		byApplication[score.ApplicationID] = append(byApplication[score.ApplicationID], score)
	}

	out := make([]*assignment, 0, len(profiles))
	for _, profile := range profiles {
		if !workflow.CanAct(role, profile.Application.Status) {
			continue
		}

		a := &assignment{Profile: profile, Scores: byApplication[profile.Application.ID]}
		for _, score := range a.Scores {
			if !score.Scored {
				a.Pending++
			}
		}
		out = append(out, a)
	}
	return out
}

func (s *Service) handleGetAssignments(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	evaluator, err := s.store.Evaluators.EvaluatorByUserID(ctx, s.identity(r).UserID)
	if err != nil {
		s.failErr(w, r, err, "failed to load evaluator")
		return
	}

	scores, err := s.store.Scores.ScoresByEvaluator(ctx, evaluator.ID)
	if err != nil {
		s.failErr(w, r, err, "failed to load evaluator scores")
		return
	}

	if len(scores) == 0 {
		s.ok(w, http.StatusOK, []*assignment{})
		return
	}

	ids := make([]string, 0, len(scores))
	seen := make(map[string]bool, len(scores))
	for _, score := range scores {
		if !seen[score.ApplicationID] {
			seen[score.ApplicationID] = true
			ids = append(ids, score.ApplicationID)
		}
	}

	profiles, err := s.store.Applications.Profiles(ctx, store.ApplicationFilter{IDs: ids})
	if err != nil {
		s.failErr(w, r, err, "failed to load assigned applications")
		return
	}

	s.ok(w, http.StatusOK, groupAssignments(evaluator.Role, profiles, scores))
}

type scoreRequest struct {
	Score *float64 `json:"score" validate:"required"`
	Notes *string  `json:"notes" validate:"omitempty,max=4000"`
}

func (s *Service) handlePutScore(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var body scoreRequest
	if err := decodeJSON(r, &body); err != nil {
		s.failErr(w, r, err, "invalid score payload")
		return
	}

	evaluator, err := s.store.Evaluators.EvaluatorByUserID(ctx, s.identity(r).UserID)
	if err != nil {
		s.failErr(w, r, err, "failed to load evaluator")
		return
	}

	score, eligibility, err := s.evaluation.SubmitScore(ctx,
		evaluator.ID,
		r.PathValue("applicationID"),
		r.PathValue("criterionID"),
		evaluation.ScoreSubmission{Score: *body.Score, Notes: body.Notes},
	)
	if err != nil {
		s.failErr(w, r, err, "failed to submit score")
		return
	}

	s.ok(w, http.StatusOK, map[string]any{
		"score":       score,
		"eligibility": eligibility,
	})
}
