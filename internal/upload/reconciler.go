package upload

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"studio/internal/domain"
	"studio/internal/infra"
	"studio/internal/providers/mux"
)

// ErrNoSession is returned by Wait when nothing is being tracked.
var ErrNoSession = errors.New("upload: no active upload")

// Reconciler drives one content form through an upload: it creates the
// session, hands it to the widget, polls the job after a successful
// transfer, and merges every outcome into the form store.
//
// Only one upload is tracked at a time. Every session and poll run is tagged
// with a generation; Stop, RemoveVideo, and a new Begin bump the generation so
// late events or responses from earlier runs never reach the store.
type Reconciler struct {
	initiator *Initiator
	poller    *Poller
	widget    Widget
	store     Store
	logger    *infra.Logger

	mu         sync.Mutex
	generation uint64
	uploadID   string
	cancel     context.CancelFunc
	run        *run
}

// run records the outcome of one tracked upload.
type run struct {
	done chan struct{}
	once sync.Once
	job  domain.UploadJob
	err  error
}

func newRun() *run {
	return &run{done: make(chan struct{})}
}

func (rn *run) complete(job domain.UploadJob, err error) {
	rn.once.Do(func() {
		rn.job = job
		rn.err = err
		close(rn.done)
	})
}

// ReconcilerOptions wires the collaborators of a Reconciler.
type ReconcilerOptions struct {
	Initiator *Initiator
	Poller    *Poller
	Widget    Widget
	Store     Store
	Logger    *infra.Logger
}

// NewReconciler constructs a Reconciler.
func NewReconciler(opts ReconcilerOptions) *Reconciler {
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Reconciler{
		initiator: opts.Initiator,
		poller:    opts.Poller,
		widget:    opts.Widget,
		store:     opts.Store,
		logger:    logger,
	}
}

// Begin replaces any tracked upload with a new session for videoPath and
// starts the widget transfer. Session failures are returned and leave the
// form untouched.
func (r *Reconciler) Begin(ctx context.Context, corsOrigin, videoPath string) (domain.UploadSession, error) {
	session, err := r.initiator.Initiate(ctx, corsOrigin)
	if err != nil {
		return domain.UploadSession{}, err
	}

	r.mu.Lock()
	r.stopLocked()
	gen := r.generation
	r.uploadID = session.UploadID
	r.run = newRun()
	r.store.Reset()
	patch := domain.VideoFields{
		VideoType:   domain.StringPtr(string(domain.VideoTypeMux)),
		MuxUploadID: domain.StringPtr(session.UploadID),
		MuxStatus:   domain.StringPtr(string(domain.UploadStatusWaiting)),
	}
	if videoPath != "" {
		patch.VideoPath = domain.StringPtr(videoPath)
	}
	r.store.Merge(patch)
	r.mu.Unlock()

	r.logger.Info().Str("upload_id", session.UploadID).Msg("upload: session created")

	sink := &sessionSink{r: r, ctx: ctx, gen: gen, uploadID: session.UploadID}
	if err := r.widget.Start(ctx, session.UploadURL, sink); err != nil {
		sink.OnError(err)
		return session, err
	}
	return session, nil
}

// Track starts polling an upload whose transfer already completed, for
// example a draft reopened while its job was still processing.
func (r *Reconciler) Track(ctx context.Context, job domain.UploadJob) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
	r.uploadID = job.ID
	r.run = newRun()
	r.startPollLocked(ctx, r.generation, job)
}

// Wait blocks until the tracked upload reaches a terminal or stalled state,
// the upload is stopped, or ctx is done.
func (r *Reconciler) Wait(ctx context.Context) (domain.UploadJob, error) {
	r.mu.Lock()
	rn := r.run
	r.mu.Unlock()
	if rn == nil {
		return domain.UploadJob{}, ErrNoSession
	}
	select {
	case <-rn.done:
		return rn.job, rn.err
	case <-ctx.Done():
		return domain.UploadJob{}, ctx.Err()
	}
}

// Stop cancels any in-flight poll. It is safe to call repeatedly.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
}

// RemoveVideo stops tracking and clears every video field. Calling it twice
// has the same effect as calling it once.
func (r *Reconciler) RemoveVideo() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
	r.store.Reset()
}

// Active reports the upload id currently tracked, if any.
func (r *Reconciler) Active() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.uploadID
}

func (r *Reconciler) stopLocked() {
	r.generation++
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	if r.run != nil {
		r.run.complete(domain.UploadJob{ID: r.uploadID}, context.Canceled)
	}
	r.uploadID = ""
}

func (r *Reconciler) startPollLocked(parent context.Context, gen uint64, job domain.UploadJob) {
	ctx, cancel := context.WithCancel(parent)
	r.cancel = cancel
	go func() {
		defer cancel()
		final, err := r.poller.Poll(ctx, job, func(j domain.UploadJob) {
			r.apply(gen, PatchForJob(j))
		})
		r.finish(gen, final, err)
	}()
}

// apply merges patch only while gen is still current.
func (r *Reconciler) apply(gen uint64, patch domain.VideoFields) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.generation {
		return false
	}
	r.store.Merge(patch)
	return true
}

func (r *Reconciler) finish(gen uint64, job domain.UploadJob, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.generation {
		return
	}
	if err != nil && !errors.Is(err, domain.ErrStalled) {
		// Cancelled by the parent context without Stop.
		r.logger.Debug().Err(err).Str("upload_id", job.ID).Msg("upload: polling ended")
	} else {
		r.store.Merge(PatchForJob(job))
	}
	r.cancel = nil
	r.uploadID = ""
	r.generation++
	if r.run != nil {
		r.run.complete(job, err)
	}
}

// sessionSink binds widget events to the session that produced them, so a
// widget reused for a later upload cannot report into the wrong job.
type sessionSink struct {
	r        *Reconciler
	ctx      context.Context
	gen      uint64
	uploadID string
}

func (s *sessionSink) OnSuccess() {
	r := s.r
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.gen != r.generation || r.cancel != nil {
		return
	}
	r.logger.Info().Str("upload_id", s.uploadID).Msg("upload: transfer finished, polling status")
	r.startPollLocked(s.ctx, s.gen, domain.UploadJob{ID: s.uploadID, Status: domain.UploadStatusWaiting})
}

func (s *sessionSink) OnError(reason error) {
	r := s.r
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.gen != r.generation {
		return
	}
	r.logger.Warn().Err(reason).Str("upload_id", s.uploadID).Msg("upload: transfer failed")
	r.store.Merge(domain.VideoFields{MuxStatus: domain.StringPtr(string(domain.UploadStatusErrored))})
	if r.run != nil {
		r.run.complete(domain.UploadJob{ID: s.uploadID, Status: domain.UploadStatusErrored}, reason)
	}
	r.stopLocked()
}

func (s *sessionSink) OnProgress(percent float64) {
	r := s.r
	r.mu.Lock()
	current := s.gen == r.generation
	r.mu.Unlock()
	if current {
		r.logger.Debug().Str("upload_id", s.uploadID).Float64("percent", percent).Msg("upload: transfer progress")
	}
}

// PatchForJob returns the form fields describing job.
func PatchForJob(job domain.UploadJob) domain.VideoFields {
	patch := domain.VideoFields{MuxStatus: domain.StringPtr(string(job.Status))}
	if job.Status != domain.UploadStatusReady {
		return patch
	}
	patch.VideoType = domain.StringPtr(string(domain.VideoTypeMux))
	patch.MuxUploadID = domain.StringPtr(job.ID)
	patch.MuxAssetID = domain.StringPtr(job.AssetID)
	patch.MuxPlaybackID = domain.StringPtr(job.PlaybackID)
	if job.PlaybackID != "" {
		patch.VideoURL = domain.StringPtr(mux.StreamURL(job.PlaybackID))
		patch.ThumbnailURL = domain.StringPtr(mux.ThumbnailURL(job.PlaybackID))
	}
	return patch
}
