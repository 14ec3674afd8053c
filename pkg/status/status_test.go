package status_test

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/goliatone/go-blockform/pkg/status"
)

func mustSet(t *testing.T, tracker *status.Tracker, s status.Status, err error) {
	t.Helper()
	if setErr := tracker.Set(s, err); setErr != nil {
		t.Fatalf("set %s: %v", s, setErr)
	}
}

func TestTracker_SuccessCycle(t *testing.T) {
	tracker := status.NewTracker()
	if tracker.Status() != status.Idle {
		t.Fatalf("expected idle, got %s", tracker.Status())
	}
	if diff := cmp.Diff(status.Flags{}, tracker.Flags()); diff != "" {
		t.Fatalf("idle flags mismatch (-want +got):\n%s", diff)
	}

	mustSet(t, tracker, status.Pending, nil)
	if diff := cmp.Diff(status.Flags{Pending: true}, tracker.Flags()); diff != "" {
		t.Fatalf("flags mismatch (-want +got):\n%s", diff)
	}
	mustSet(t, tracker, status.Loading, nil)
	if diff := cmp.Diff(status.Flags{Loading: true}, tracker.Flags()); diff != "" {
		t.Fatalf("flags mismatch (-want +got):\n%s", diff)
	}
	mustSet(t, tracker, status.Success, nil)
	if diff := cmp.Diff(status.Flags{Success: true}, tracker.Flags()); diff != "" {
		t.Fatalf("flags mismatch (-want +got):\n%s", diff)
	}
	mustSet(t, tracker, status.Idle, nil)
}

func TestTracker_ErrorCycle(t *testing.T) {
	tracker := status.NewTracker()
	failure := errors.New("422: invalid style")

	mustSet(t, tracker, status.Pending, nil)
	mustSet(t, tracker, status.Loading, nil)
	mustSet(t, tracker, status.Error, failure)

	snap := tracker.Snapshot()
	if snap.Status != status.Error || !errors.Is(snap.Err, failure) {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if diff := cmp.Diff(status.Flags{Error: true}, snap.Flags()); diff != "" {
		t.Fatalf("flags mismatch (-want +got):\n%s", diff)
	}

	if err := tracker.Set(status.Idle, nil); !errors.Is(err, status.ErrInvalidTransition) {
		t.Fatalf("error must be retained until the next edit, got %v", err)
	}

	mustSet(t, tracker, status.Pending, nil)
	if tracker.Snapshot().Err != nil {
		t.Fatalf("payload must be dropped outside the error state")
	}
}

func TestTracker_EditSupersedesTerminalState(t *testing.T) {
	for _, terminal := range []status.Status{status.Success, status.Error} {
		t.Run(terminal.String(), func(t *testing.T) {
			tracker := status.NewTracker()
			mustSet(t, tracker, status.Pending, nil)
			mustSet(t, tracker, status.Loading, nil)
			mustSet(t, tracker, terminal, errors.New("x"))
			mustSet(t, tracker, status.Pending, nil)
			if tracker.Status() != status.Pending {
				t.Fatalf("expected pending, got %s", tracker.Status())
			}
		})
	}
}

func TestCanTransition(t *testing.T) {
	allowed := map[[2]status.Status]bool{
		{status.Idle, status.Pending}:    true,
		{status.Pending, status.Loading}: true,
		{status.Loading, status.Success}: true,
		{status.Loading, status.Error}:   true,
		{status.Success, status.Idle}:    true,
		{status.Loading, status.Pending}: true,
		{status.Error, status.Pending}:   true,
		{status.Success, status.Pending}: true,
		{status.Pending, status.Pending}: true,
	}
	all := []status.Status{status.Idle, status.Pending, status.Loading, status.Success, status.Error}
	for _, from := range all {
		for _, to := range all {
			want := allowed[[2]status.Status{from, to}] || from == to
			if got := status.CanTransition(from, to); got != want {
				t.Fatalf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestTracker_InvalidTransitionKeepsState(t *testing.T) {
	tracker := status.NewTracker()
	if err := tracker.Set(status.Success, nil); !errors.Is(err, status.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if err := tracker.Set(status.Status(42), nil); !errors.Is(err, status.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for unknown status, got %v", err)
	}
	if tracker.Status() != status.Idle {
		t.Fatalf("state must be unchanged, got %s", tracker.Status())
	}
}

func TestTracker_Observe(t *testing.T) {
	tracker := status.NewTracker()
	var seen []status.Status
	cancel := tracker.Observe(func(snap status.Snapshot) {
		seen = append(seen, snap.Status)
	})

	mustSet(t, tracker, status.Pending, nil)
	mustSet(t, tracker, status.Pending, nil)
	mustSet(t, tracker, status.Loading, nil)
	cancel()
	cancel()
	mustSet(t, tracker, status.Success, nil)

	want := []status.Status{status.Pending, status.Loading}
	if diff := cmp.Diff(want, seen); diff != "" {
		t.Fatalf("observed mismatch (-want +got):\n%s", diff)
	}
}

func TestTracker_ObserversSeeChangesInOrder(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	tracker := status.NewTracker()
	mustSet(t, tracker, status.Pending, nil)

	entered := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	var seen []status.Status
	tracker.Observe(func(snap status.Snapshot) {
		if snap.Status == status.Loading {
			close(entered)
			<-release
		}
		mu.Lock()
		seen = append(seen, snap.Status)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := tracker.Set(status.Loading, nil); err != nil {
			t.Errorf("set loading: %v", err)
		}
	}()

	<-entered
	// delivered by the goroutine still notifying Loading
	mustSet(t, tracker, status.Success, nil)
	close(release)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	want := []status.Status{status.Loading, status.Success}
	if diff := cmp.Diff(want, seen); diff != "" {
		t.Fatalf("observed mismatch (-want +got):\n%s", diff)
	}
	if last := seen[len(seen)-1]; last != tracker.Status() {
		t.Fatalf("last observed %s, current %s", last, tracker.Status())
	}
}

func TestTracker_ObserverPanicDoesNotStallDelivery(t *testing.T) {
	tracker := status.NewTracker()
	var seen []status.Status
	tracker.Observe(func(snap status.Snapshot) {
		if snap.Status == status.Pending {
			panic("boom")
		}
		seen = append(seen, snap.Status)
	})

	func() {
		defer func() {
			if recover() == nil {
				t.Fatalf("expected observer panic to propagate")
			}
		}()
		_ = tracker.Set(status.Pending, nil)
	}()

	mustSet(t, tracker, status.Loading, nil)
	if diff := cmp.Diff([]status.Status{status.Loading}, seen); diff != "" {
		t.Fatalf("observed mismatch (-want +got):\n%s", diff)
	}
}

func TestTracker_Reset(t *testing.T) {
	tracker := status.NewTracker()
	mustSet(t, tracker, status.Pending, nil)
	mustSet(t, tracker, status.Loading, nil)
	tracker.Reset()
	if tracker.Status() != status.Idle {
		t.Fatalf("expected idle after reset, got %s", tracker.Status())
	}
}

func TestStatusText(t *testing.T) {
	payload, err := json.Marshal(map[string]status.Status{"state": status.Loading})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(payload) != `{"state":"loading"}` {
		t.Fatalf("unexpected payload %s", payload)
	}

	var decoded map[string]status.Status
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["state"] != status.Loading {
		t.Fatalf("unexpected decoded status %s", decoded["state"])
	}

	if _, err := status.ParseStatus("done"); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}
