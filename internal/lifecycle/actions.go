package lifecycle

import (
	"context"
	"errors"

	"vaultcapture/internal/jobs"
)

// ActionOutcome describes what happened to one job in a bulk action.
type ActionOutcome string

const (
	OutcomeUpdated    ActionOutcome = "updated"
	OutcomeNotFound   ActionOutcome = "not_found"
	OutcomeNotAllowed ActionOutcome = "not_allowed"
)

// ActionItemResult is the per-job result of Retry or Cancel.
type ActionItemResult struct {
	ID          string        `json:"id"`
	Outcome     ActionOutcome `json:"outcome"`
	PriorStatus jobs.Status   `json:"prior_status,omitempty"`
	NewStatus   jobs.Status   `json:"new_status,omitempty"`
}

// ActionResult aggregates a bulk action.
type ActionResult struct {
	UpdatedCount int                `json:"updated_count"`
	Items        []ActionItemResult `json:"items"`
}

// Retry moves failed or cancelled jobs back to queued.
func (s *Service) Retry(ctx context.Context, ids ...string) (ActionResult, error) {
	return s.applyAll(ctx, ids, jobs.StatusQueued)
}

// Cancel moves queued or processing jobs to cancelled.
func (s *Service) Cancel(ctx context.Context, ids ...string) (ActionResult, error) {
	return s.applyAll(ctx, ids, jobs.StatusCancelled)
}

// applyAll reports illegal transitions per job instead of failing the whole
// call; any other error stops immediately.
func (s *Service) applyAll(ctx context.Context, ids []string, next jobs.Status) (ActionResult, error) {
	result := ActionResult{Items: make([]ActionItemResult, 0, len(ids))}
	for _, id := range ids {
		id = normalizeID(id)
		ok, err := s.UpdateStatus(ctx, id, next)
		var terr *jobs.TransitionError
		switch {
		case errors.As(err, &terr):
			result.Items = append(result.Items, ActionItemResult{ID: id, Outcome: OutcomeNotAllowed, PriorStatus: terr.From})
		case err != nil:
			return ActionResult{}, err
		case !ok:
			result.Items = append(result.Items, ActionItemResult{ID: id, Outcome: OutcomeNotFound})
		default:
			result.UpdatedCount++
			result.Items = append(result.Items, ActionItemResult{ID: id, Outcome: OutcomeUpdated, NewStatus: next})
		}
	}
	return result, nil
}
