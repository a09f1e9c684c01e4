package upload

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"studio/internal/domain"
)

type step struct {
	state domain.UploadState
	err   error
}

// scriptedChecker replays steps in order, repeating the last one. A gate for
// call n blocks that call until the channel is closed.
type scriptedChecker struct {
	mu      sync.Mutex
	steps   []step
	calls   int
	gates   map[int]chan struct{}
	entered chan int
}

func newScriptedChecker(steps ...step) *scriptedChecker {
	return &scriptedChecker{steps: steps, gates: map[int]chan struct{}{}, entered: make(chan int, 64)}
}

func (s *scriptedChecker) gate(call int) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan struct{})
	s.gates[call] = ch
	return ch
}

func (s *scriptedChecker) UploadStatus(ctx context.Context, uploadID string) (domain.UploadState, error) {
	s.mu.Lock()
	s.calls++
	n := s.calls
	gate := s.gates[n]
	st := s.steps[len(s.steps)-1]
	if n <= len(s.steps) {
		st = s.steps[n-1]
	}
	s.mu.Unlock()
	select {
	case s.entered <- n:
	default:
	}
	if gate != nil {
		<-gate
	}
	return st.state, st.err
}

func (s *scriptedChecker) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func fastPolicy() Policy {
	return Policy{Interval: time.Millisecond, MaxFailures: 3, MaxBackoff: 4 * time.Millisecond}
}

func TestPollStopsOnReady(t *testing.T) {
	checker := newScriptedChecker(
		step{state: domain.UploadState{Status: "processing"}},
		step{state: domain.UploadState{Status: "asset_created", AssetID: "asset_9", PlaybackID: "pb_9"}},
	)
	poller := NewPoller(checker, fastPolicy(), nil)

	var changes []domain.UploadStatus
	job, err := poller.Poll(context.Background(), domain.UploadJob{ID: "job_1"}, func(j domain.UploadJob) {
		changes = append(changes, j.Status)
	})
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if job.Status != domain.UploadStatusReady || job.AssetID != "asset_9" || job.PlaybackID != "pb_9" {
		t.Fatalf("job = %#v", job)
	}
	if got := checker.Calls(); got != 2 {
		t.Fatalf("calls = %d, want 2", got)
	}
	if len(changes) != 1 || changes[0] != domain.UploadStatusProcessing {
		t.Fatalf("changes = %v, want [processing]", changes)
	}
}

func TestPollErroredCarriesNoReferences(t *testing.T) {
	checker := newScriptedChecker(
		step{state: domain.UploadState{Status: "processing", AssetID: "asset_9"}},
		step{state: domain.UploadState{Status: "errored", AssetID: "asset_9", PlaybackID: "pb_9"}},
	)
	poller := NewPoller(checker, fastPolicy(), nil)

	job, err := poller.Poll(context.Background(), domain.UploadJob{ID: "job_1"}, nil)
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if job.Status != domain.UploadStatusErrored {
		t.Fatalf("status = %q, want errored", job.Status)
	}
	if job.AssetID != "" || job.PlaybackID != "" {
		t.Fatalf("errored job should not carry references: %#v", job)
	}
}

func TestPollStallsAfterMaxFailures(t *testing.T) {
	checker := newScriptedChecker(step{err: errors.New("connection refused")})
	poller := NewPoller(checker, fastPolicy(), nil)

	job, err := poller.Poll(context.Background(), domain.UploadJob{ID: "job_1"}, nil)
	if !errors.Is(err, domain.ErrStalled) {
		t.Fatalf("expected ErrStalled, got %v", err)
	}
	if job.Status != domain.UploadStatusStalled {
		t.Fatalf("status = %q, want stalled", job.Status)
	}
	if got := checker.Calls(); got != 3 {
		t.Fatalf("calls = %d, want 3", got)
	}
}

func TestPollRecoversFromTransientFailures(t *testing.T) {
	checker := newScriptedChecker(
		step{err: errors.New("timeout")},
		step{err: errors.New("timeout")},
		step{state: domain.UploadState{Status: "asset_created", AssetID: "a", PlaybackID: "p"}},
	)
	poller := NewPoller(checker, fastPolicy(), nil)

	job, err := poller.Poll(context.Background(), domain.UploadJob{ID: "job_1"}, nil)
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if job.Status != domain.UploadStatusReady {
		t.Fatalf("status = %q, want ready", job.Status)
	}
}

func TestPollTreatsUnknownStatusAsFailure(t *testing.T) {
	checker := newScriptedChecker(step{state: domain.UploadState{Status: "exploded"}})
	poller := NewPoller(checker, fastPolicy(), nil)

	_, err := poller.Poll(context.Background(), domain.UploadJob{ID: "job_1"}, nil)
	if !errors.Is(err, domain.ErrStalled) {
		t.Fatalf("expected ErrStalled, got %v", err)
	}
}

func TestPollIgnoresBackwardStatus(t *testing.T) {
	checker := newScriptedChecker(
		step{state: domain.UploadState{Status: "processing"}},
		step{state: domain.UploadState{Status: "waiting"}},
		step{state: domain.UploadState{Status: "asset_created", AssetID: "a", PlaybackID: "p"}},
	)
	poller := NewPoller(checker, fastPolicy(), nil)

	var changes []domain.UploadStatus
	job, err := poller.Poll(context.Background(), domain.UploadJob{ID: "job_1"}, func(j domain.UploadJob) {
		changes = append(changes, j.Status)
	})
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if job.Status != domain.UploadStatusReady {
		t.Fatalf("status = %q", job.Status)
	}
	if len(changes) != 1 {
		t.Fatalf("changes = %v, want a single processing change", changes)
	}
}

func TestPollDropsResponseAfterCancel(t *testing.T) {
	checker := newScriptedChecker(step{state: domain.UploadState{Status: "asset_created", AssetID: "a", PlaybackID: "p"}})
	release := checker.gate(1)
	poller := NewPoller(checker, fastPolicy(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	type outcome struct {
		job domain.UploadJob
		err error
	}
	out := make(chan outcome, 1)
	go func() {
		job, err := poller.Poll(ctx, domain.UploadJob{ID: "job_1"}, nil)
		out <- outcome{job, err}
	}()

	<-checker.entered
	cancel()
	close(release)

	res := <-out
	if !errors.Is(res.err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", res.err)
	}
	if res.job.Status == domain.UploadStatusReady {
		t.Fatalf("stale response must not be applied: %#v", res.job)
	}
}

func TestPollTerminalJobReturnsImmediately(t *testing.T) {
	checker := newScriptedChecker(step{state: domain.UploadState{Status: "waiting"}})
	poller := NewPoller(checker, fastPolicy(), nil)

	job, err := poller.Poll(context.Background(), domain.UploadJob{ID: "job_1", Status: domain.UploadStatusReady}, nil)
	if err != nil || job.Status != domain.UploadStatusReady {
		t.Fatalf("Poll() = %#v, %v", job, err)
	}
	if checker.Calls() != 0 {
		t.Fatalf("terminal job should not be polled")
	}
}

func TestPolicyBackoff(t *testing.T) {
	p := Policy{Interval: time.Second, MaxBackoff: 5 * time.Second}
	tests := []struct {
		failures int
		want     time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 5 * time.Second},
		{10, 5 * time.Second},
	}
	for _, tc := range tests {
		if got := p.backoff(tc.failures); got != tc.want {
			t.Fatalf("backoff(%d) = %s, want %s", tc.failures, got, tc.want)
		}
	}
}

func TestPolicyBackoffUncappedStaysBounded(t *testing.T) {
	p := Policy{Interval: 3 * time.Second}
	for _, failures := range []int{31, 32, 64, 1000} {
		got := p.backoff(failures)
		if got != backoffCeiling {
			t.Fatalf("backoff(%d) = %s, want %s", failures, got, backoffCeiling)
		}
	}
	if got := p.backoff(2); got != 12*time.Second {
		t.Fatalf("backoff(2) = %s, want 12s", got)
	}
}
