package upload

import (
	"context"
	"errors"
	"sync"
	"testing"

	"studio/internal/domain"
)

type appliedStatus struct {
	classID string
	job     domain.UploadJob
	links   domain.MediaLinks
}

type memUploads struct {
	mu      sync.Mutex
	pending []domain.PendingUpload
	listErr error
	applied []appliedStatus
}

func (m *memUploads) ListPending(ctx context.Context, limit int) ([]domain.PendingUpload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]domain.PendingUpload(nil), m.pending...), nil
}

func (m *memUploads) ApplyStatus(ctx context.Context, classID string, job domain.UploadJob, links domain.MediaLinks) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applied = append(m.applied, appliedStatus{classID: classID, job: job, links: links})
	return true, nil
}

func (m *memUploads) Applied() []appliedStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]appliedStatus(nil), m.applied...)
}

func testLinks(pb string) domain.MediaLinks {
	return domain.MediaLinks{StreamURL: "stream/" + pb, ThumbnailURL: "thumb/" + pb}
}

func TestSweepAppliesReadyOutcome(t *testing.T) {
	repo := &memUploads{pending: []domain.PendingUpload{{ClassID: "class_1", UploadID: "up_1", Status: domain.UploadStatusWaiting}}}
	checker := newScriptedChecker(step{state: domain.UploadState{Status: "asset_created", AssetID: "asset_1", PlaybackID: "pb_1"}})
	sweeper := NewSweeper(SweeperOptions{Repo: repo, Poller: NewPoller(checker, fastPolicy(), nil), Links: testLinks, Concurrency: 2})

	started, err := sweeper.Sweep(context.Background())
	if err != nil || started != 1 {
		t.Fatalf("Sweep() = %d, %v", started, err)
	}
	if err := sweeper.Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	applied := repo.Applied()
	if len(applied) != 1 {
		t.Fatalf("applied = %#v", applied)
	}
	got := applied[0]
	if got.classID != "class_1" || got.job.Status != domain.UploadStatusReady || got.job.PlaybackID != "pb_1" {
		t.Fatalf("applied = %#v", got)
	}
	if got.links.StreamURL != "stream/pb_1" || got.links.ThumbnailURL != "thumb/pb_1" {
		t.Fatalf("links = %#v", got.links)
	}
	if sweeper.Tracked() != 0 {
		t.Fatalf("finished uploads should be untracked")
	}
}

func TestSweepPersistsStalledWithoutLinks(t *testing.T) {
	repo := &memUploads{pending: []domain.PendingUpload{{ClassID: "class_1", UploadID: "up_1", Status: domain.UploadStatusProcessing}}}
	checker := newScriptedChecker(step{err: errors.New("connection reset")})
	sweeper := NewSweeper(SweeperOptions{Repo: repo, Poller: NewPoller(checker, fastPolicy(), nil), Links: testLinks})

	if _, err := sweeper.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	_ = sweeper.Wait()

	applied := repo.Applied()
	if len(applied) != 1 || applied[0].job.Status != domain.UploadStatusStalled {
		t.Fatalf("applied = %#v", applied)
	}
	if applied[0].links != (domain.MediaLinks{}) {
		t.Fatalf("stalled outcome must not carry links: %#v", applied[0].links)
	}
}

func TestSweepSkipsTrackedUploads(t *testing.T) {
	repo := &memUploads{pending: []domain.PendingUpload{{ClassID: "class_1", UploadID: "up_1", Status: domain.UploadStatusWaiting}}}
	checker := newScriptedChecker(step{state: domain.UploadState{Status: "asset_created", AssetID: "a", PlaybackID: "p"}})
	release := checker.gate(1)
	sweeper := NewSweeper(SweeperOptions{Repo: repo, Poller: NewPoller(checker, fastPolicy(), nil), Concurrency: 4})

	if started, _ := sweeper.Sweep(context.Background()); started != 1 {
		t.Fatalf("first sweep started %d, want 1", started)
	}
	<-checker.entered
	if started, _ := sweeper.Sweep(context.Background()); started != 0 {
		t.Fatalf("second sweep started %d, want 0 while the upload is tracked", started)
	}
	close(release)
	_ = sweeper.Wait()

	if got := len(repo.Applied()); got != 1 {
		t.Fatalf("applied %d outcomes, want 1", got)
	}
}

func TestSweepRespectsConcurrencyLimit(t *testing.T) {
	repo := &memUploads{pending: []domain.PendingUpload{
		{ClassID: "class_1", UploadID: "up_1", Status: domain.UploadStatusWaiting},
		{ClassID: "class_2", UploadID: "up_2", Status: domain.UploadStatusWaiting},
	}}
	checker := newScriptedChecker(step{state: domain.UploadState{Status: "errored"}})
	release := checker.gate(1)
	sweeper := NewSweeper(SweeperOptions{Repo: repo, Poller: NewPoller(checker, fastPolicy(), nil), Concurrency: 1})

	if started, _ := sweeper.Sweep(context.Background()); started != 1 {
		t.Fatalf("started %d, want 1 with a single slot", started)
	}
	<-checker.entered
	close(release)
	_ = sweeper.Wait()

	applied := repo.Applied()
	if len(applied) != 1 || applied[0].classID != "class_1" {
		t.Fatalf("applied = %#v, want only class_1", applied)
	}
	if sweeper.Tracked() != 0 {
		t.Fatalf("upload skipped for lack of a slot must not stay tracked")
	}
}

func TestSweepDropsOutcomeOnCancel(t *testing.T) {
	repo := &memUploads{pending: []domain.PendingUpload{{ClassID: "class_1", UploadID: "up_1", Status: domain.UploadStatusWaiting}}}
	checker := newScriptedChecker(step{state: domain.UploadState{Status: "asset_created", AssetID: "a", PlaybackID: "p"}})
	release := checker.gate(1)
	sweeper := NewSweeper(SweeperOptions{Repo: repo, Poller: NewPoller(checker, fastPolicy(), nil)})

	ctx, cancel := context.WithCancel(context.Background())
	if _, err := sweeper.Sweep(ctx); err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	<-checker.entered
	cancel()
	close(release)
	_ = sweeper.Wait()

	if got := repo.Applied(); len(got) != 0 {
		t.Fatalf("cancelled poll must not persist: %#v", got)
	}
}

func TestSweepReportsListError(t *testing.T) {
	repo := &memUploads{listErr: errors.New("db down")}
	sweeper := NewSweeper(SweeperOptions{Repo: repo, Poller: NewPoller(newScriptedChecker(step{}), fastPolicy(), nil)})

	if _, err := sweeper.Sweep(context.Background()); err == nil {
		t.Fatalf("expected list error")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	repo := &memUploads{}
	sweeper := NewSweeper(SweeperOptions{Repo: repo, Poller: NewPoller(newScriptedChecker(step{}), fastPolicy(), nil)})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sweeper.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}
