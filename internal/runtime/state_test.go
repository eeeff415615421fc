package runtime

import "testing"

func TestProject_HintTakesPrecedence(t *testing.T) {
	t.Parallel()

	// The hint wins regardless of actual/desired state.
	hints := map[DisplayHint]Status{
		HintRunning:  StatusRunning,
		HintStarting: StatusBooting,
		HintStopping: StatusStopping,
		HintStopped:  StatusStopped,
		HintError:    StatusError,
	}
	for hint, want := range hints {
		if got := Project(ActualUndeployed, DesiredStopped, false, hint); got != want {
			t.Fatalf("hint=%s got=%s want=%s", hint, got, want)
		}
		if got := Project(ActualRunning, DesiredRunning, false, hint); got != want {
			t.Fatalf("hint=%s got=%s want=%s", hint, got, want)
		}
	}
}

func TestProject_ErrorHintWithRetryShowsBooting(t *testing.T) {
	t.Parallel()

	if got := Project(ActualError, DesiredRunning, true, HintError); got != StatusBooting {
		t.Fatalf("got=%s", got)
	}
	// Retry suppression applies only to the error hint.
	if got := Project(ActualError, DesiredRunning, true, HintStopped); got != StatusStopped {
		t.Fatalf("got=%s", got)
	}
}

func TestProject_UnknownHintShowsNothing(t *testing.T) {
	t.Parallel()

	if got := Project(ActualRunning, DesiredRunning, false, DisplayHint("paused")); got != StatusNone {
		t.Fatalf("got=%q", got)
	}
}

func TestProject_Fallback(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		actual    ActualState
		desired   DesiredState
		willRetry bool
		want      Status
	}{
		{"running", ActualRunning, DesiredRunning, false, StatusRunning},
		{"stopping", ActualStopping, DesiredStopped, false, StatusStopping},
		{"starting", ActualStarting, DesiredRunning, false, StatusBooting},
		{"pending desired running", ActualPending, DesiredRunning, false, StatusBooting},
		{"pending desired stopped", ActualPending, DesiredStopped, false, StatusStopped},
		{"pending no desired", ActualPending, "", false, StatusStopped},
		{"error with retry", ActualError, DesiredRunning, true, StatusBooting},
		{"error without retry", ActualError, DesiredRunning, false, StatusError},
		{"stopped", ActualStopped, DesiredStopped, false, StatusStopped},
		{"exited", ActualExited, DesiredStopped, false, StatusStopped},
		{"undeployed", ActualUndeployed, DesiredRunning, false, StatusNone},
		{"unknown state", ActualState("some_unknown_state"), DesiredRunning, false, StatusNone},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Project(tc.actual, tc.desired, tc.willRetry, ""); got != tc.want {
				t.Fatalf("got=%q want=%q", got, tc.want)
			}
		})
	}
}
