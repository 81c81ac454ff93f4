package jobs_test

import (
	"errors"
	"testing"

	"vaultcapture/internal/jobs"
)

func TestTransitionTableIsExact(t *testing.T) {
	allowed := map[jobs.Status]map[jobs.Status]bool{
		jobs.StatusQueued:     {jobs.StatusProcessing: true, jobs.StatusCancelled: true, jobs.StatusFailed: true},
		jobs.StatusProcessing: {jobs.StatusCompleted: true, jobs.StatusFailed: true, jobs.StatusCancelled: true},
		jobs.StatusFailed:     {jobs.StatusQueued: true},
		jobs.StatusCancelled:  {jobs.StatusQueued: true},
		jobs.StatusCompleted:  {},
	}
	for _, from := range jobs.AllStatuses() {
		for _, to := range jobs.AllStatuses() {
			want := allowed[from][to]
			if got := jobs.CanTransition(from, to); got != want {
				t.Fatalf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
			err := jobs.CheckTransition(from, to)
			if want && err != nil {
				t.Fatalf("CheckTransition(%s, %s) unexpected error: %v", from, to, err)
			}
			if !want {
				var terr *jobs.TransitionError
				if !errors.As(err, &terr) || terr.From != from || terr.To != to {
					t.Fatalf("CheckTransition(%s, %s) expected TransitionError, got %v", from, to, err)
				}
				if !errors.Is(err, jobs.ErrInvalidTransition) {
					t.Fatalf("expected ErrInvalidTransition marker, got %v", err)
				}
			}
		}
	}
}

func TestCompletedIsOnlyTerminalStatus(t *testing.T) {
	for _, status := range jobs.AllStatuses() {
		terminal := jobs.IsTerminal(status)
		if status == jobs.StatusCompleted && (!terminal || len(jobs.AllowedTransitions(status)) != 0) {
			t.Fatal("expected completed to be terminal")
		}
		if status != jobs.StatusCompleted && terminal {
			t.Fatalf("expected %s to have outgoing transitions", status)
		}
	}
	if jobs.IsTerminal("bogus") {
		t.Fatal("unknown status should not report terminal")
	}
}

func TestParseStatus(t *testing.T) {
	status, err := jobs.ParseStatus("  Processing ")
	if err != nil || status != jobs.StatusProcessing {
		t.Fatalf("ParseStatus: %v %v", status, err)
	}
	if _, err := jobs.ParseStatus("archived"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestTransitionErrorMessageNamesBothStates(t *testing.T) {
	err := jobs.CheckTransition(jobs.StatusCompleted, jobs.StatusQueued)
	if err == nil || err.Error() != "invalid status transition from completed to queued" {
		t.Fatalf("unexpected error: %v", err)
	}
}
