package upload

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"studio/internal/domain"
	"studio/internal/infra"
)

// StatusChecker queries the status of a remote upload job.
type StatusChecker interface {
	UploadStatus(ctx context.Context, uploadID string) (domain.UploadState, error)
}

// Policy controls the poll cadence and how transient failures are handled.
type Policy struct {
	// Interval is the delay between successful status checks.
	Interval time.Duration
	// MaxFailures is the number of consecutive failed checks after which the
	// job is reported as stalled. Zero disables the limit.
	MaxFailures int
	// MaxBackoff caps the delay after failed checks. Zero falls back to
	// backoffCeiling.
	MaxBackoff time.Duration
}

// DefaultPolicy polls every 3 seconds and stalls after five consecutive failures.
func DefaultPolicy() Policy {
	return Policy{Interval: 3 * time.Second, MaxFailures: 5, MaxBackoff: 30 * time.Second}
}

func (p Policy) normalized() Policy {
	if p.Interval <= 0 {
		p.Interval = DefaultPolicy().Interval
	}
	if p.MaxFailures < 0 {
		p.MaxFailures = 0
	}
	return p
}

// backoffCeiling bounds the retry delay when the policy sets no cap.
const backoffCeiling = time.Hour

// backoff returns the delay before the next check after failures consecutive errors.
func (p Policy) backoff(failures int) time.Duration {
	limit := p.MaxBackoff
	if limit <= 0 {
		limit = backoffCeiling
	}
	delay := p.Interval
	if delay >= limit {
		return limit
	}
	for i := 0; i < failures; i++ {
		delay *= 2
		if delay >= limit {
			return limit
		}
	}
	return delay
}

// Poller repeatedly checks a job until it reaches a terminal status.
// Checks are sequential: the next one is scheduled only after the previous
// one returned, so requests for a job never overlap.
type Poller struct {
	checker StatusChecker
	policy  Policy
	logger  *infra.Logger
}

// NewPoller constructs a poller. A nil logger discards output.
func NewPoller(checker StatusChecker, policy Policy, logger *infra.Logger) *Poller {
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Poller{checker: checker, policy: policy.normalized(), logger: logger}
}

// Policy returns the effective policy.
func (p *Poller) Policy() Policy {
	return p.policy
}

// Poll blocks until job is terminal, stalled, or ctx is done. onChange, when
// non-nil, is called for every non-terminal status change. The returned job
// carries the asset and playback ids only when it is ready.
//
// A response that arrives after ctx was cancelled is dropped and ctx.Err() is
// returned. Stalled jobs are returned together with an error wrapping
// domain.ErrStalled.
func (p *Poller) Poll(ctx context.Context, job domain.UploadJob, onChange func(domain.UploadJob)) (domain.UploadJob, error) {
	if job.ID == "" {
		return job, fmt.Errorf("upload: poll: upload id is required")
	}
	if job.Status == "" || job.Status == domain.UploadStatusStalled {
		job.Status = domain.UploadStatusWaiting
	}
	if job.Status.IsTerminal() {
		return job, nil
	}
	log := p.logger.With().Str("upload_id", job.ID).Logger()

	timer := time.NewTimer(p.policy.Interval)
	defer timer.Stop()

	failures := 0
	attempt := 0
	for {
		select {
		case <-ctx.Done():
			return job, ctx.Err()
		case <-timer.C:
		}
		attempt++

		state, err := p.checker.UploadStatus(ctx, job.ID)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return job, ctxErr
		}
		if err == nil {
			if _, ok := domain.StatusFromRemote(state.Status); !ok {
				err = fmt.Errorf("unknown remote status %q", state.Status)
			}
		}
		if err != nil {
			failures++
			if p.policy.MaxFailures > 0 && failures >= p.policy.MaxFailures {
				log.Error().Err(err).Int("attempt", attempt).Int("failures", failures).Msg("upload: polling stalled")
				job.Status = domain.UploadStatusStalled
				return job, fmt.Errorf("%w after %d failed checks: %v", domain.ErrStalled, failures, err)
			}
			delay := p.policy.backoff(failures)
			log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", delay).Msg("upload: status check failed")
			timer.Reset(delay)
			continue
		}
		failures = 0

		next, _ := domain.StatusFromRemote(state.Status)
		if !domain.CanTransition(job.Status, next) {
			log.Warn().Str("from", string(job.Status)).Str("to", string(next)).Msg("upload: ignoring backward status")
			timer.Reset(p.policy.Interval)
			continue
		}
		changed := next != job.Status
		job.Status = next

		switch next {
		case domain.UploadStatusReady:
			job.AssetID = state.AssetID
			job.PlaybackID = state.PlaybackID
			log.Info().Str("asset_id", job.AssetID).Int("attempt", attempt).Msg("upload: ready")
			return job, nil
		case domain.UploadStatusErrored:
			job.AssetID = ""
			job.PlaybackID = ""
			log.Warn().Int("attempt", attempt).Msg("upload: remote job errored")
			return job, nil
		}
		if changed && onChange != nil {
			onChange(job)
		}
		log.Debug().Str("status", string(job.Status)).Int("attempt", attempt).Msg("upload: still pending")
		timer.Reset(p.policy.Interval)
	}
}
