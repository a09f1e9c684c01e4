package upload

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"studio/internal/domain"
	"studio/internal/infra"
)

// LinkFunc derives the public media URLs for a ready playback id.
type LinkFunc func(playbackID string) domain.MediaLinks

// SweeperOptions configures a Sweeper.
type SweeperOptions struct {
	Repo         domain.UploadRepository
	Poller       *Poller
	Links        LinkFunc
	Concurrency  int
	ScanInterval time.Duration
	BatchSize    int
	Logger       *infra.Logger
}

// Sweeper finds persisted classes whose video is still transcoding and
// polls each of them until it settles, writing the outcome back.
// An upload is tracked by at most one poll at a time.
type Sweeper struct {
	repo     domain.UploadRepository
	poller   *Poller
	links    LinkFunc
	interval time.Duration
	batch    int
	logger   *infra.Logger

	group   errgroup.Group
	mu      sync.Mutex
	tracked map[string]struct{}
}

// NewSweeper constructs a sweeper with defaults for unset options.
func NewSweeper(opts SweeperOptions) *Sweeper {
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	interval := opts.ScanInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	batch := opts.BatchSize
	if batch <= 0 {
		batch = 100
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	links := opts.Links
	if links == nil {
		links = func(string) domain.MediaLinks { return domain.MediaLinks{} }
	}
	s := &Sweeper{
		repo:     opts.Repo,
		poller:   opts.Poller,
		links:    links,
		interval: interval,
		batch:    batch,
		logger:   logger,
		tracked:  map[string]struct{}{},
	}
	s.group.SetLimit(concurrency)
	return s
}

// Run scans for pending uploads until ctx is cancelled, then waits for
// in-flight polls to return.
func (s *Sweeper) Run(ctx context.Context) error {
	s.logger.Info().Dur("interval", s.interval).Msg("sweeper: started")
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
			s.logger.Error().Err(err).Msg("sweeper: scan failed")
		}
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("sweeper: shutting down")
			return s.Wait()
		case <-ticker.C:
		}
	}
}

// Sweep starts a poll for every pending upload that is not already tracked.
// Uploads that find no free slot are picked up by a later sweep.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	pending, err := s.repo.ListPending(ctx, s.batch)
	if err != nil {
		return 0, err
	}
	started := 0
	for _, p := range pending {
		if !s.track(p.UploadID) {
			continue
		}
		if !s.group.TryGo(func() error {
			defer s.untrack(p.UploadID)
			s.reconcile(ctx, p)
			return nil
		}) {
			s.untrack(p.UploadID)
			break
		}
		started++
	}
	if started > 0 {
		s.logger.Debug().Int("started", started).Int("pending", len(pending)).Msg("sweeper: polls started")
	}
	return started, nil
}

// Wait blocks until every started poll has returned.
func (s *Sweeper) Wait() error {
	return s.group.Wait()
}

// Tracked reports how many uploads are currently being polled.
func (s *Sweeper) Tracked() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tracked)
}

func (s *Sweeper) track(uploadID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tracked[uploadID]; ok {
		return false
	}
	s.tracked[uploadID] = struct{}{}
	return true
}

func (s *Sweeper) untrack(uploadID string) {
	s.mu.Lock()
	delete(s.tracked, uploadID)
	s.mu.Unlock()
}

func (s *Sweeper) reconcile(ctx context.Context, p domain.PendingUpload) {
	log := s.logger.With().Str("class_id", p.ClassID).Str("upload_id", p.UploadID).Logger()
	job := domain.UploadJob{ID: p.UploadID, Status: p.Status}

	final, err := s.poller.Poll(ctx, job, func(j domain.UploadJob) {
		log.Debug().Str("status", string(j.Status)).Msg("sweeper: status changed")
	})
	if ctx.Err() != nil {
		return
	}
	if err != nil && !errors.Is(err, domain.ErrStalled) {
		log.Error().Err(err).Msg("sweeper: poll failed")
		return
	}

	var links domain.MediaLinks
	if final.Status == domain.UploadStatusReady {
		links = s.links(final.PlaybackID)
	}
	applied, err := s.repo.ApplyStatus(ctx, p.ClassID, final, links)
	if err != nil {
		log.Error().Err(err).Str("status", string(final.Status)).Msg("sweeper: persist failed")
		return
	}
	if !applied {
		log.Info().Str("status", string(final.Status)).Msg("sweeper: class changed during poll, outcome dropped")
		return
	}
	log.Info().Str("status", string(final.Status)).Msg("sweeper: upload settled")
}
