package upload

import (
	"context"
	"fmt"
	"strings"

	"studio/internal/domain"
)

// SessionCreator obtains a one-time upload destination from the media service.
type SessionCreator interface {
	CreateUploadSession(ctx context.Context, corsOrigin string) (domain.UploadSession, error)
}

// Initiator requests fresh upload sessions. It never retries; a rejected
// request is returned to the caller wrapped in domain.ErrUploadRejected.
type Initiator struct {
	creator SessionCreator
}

// NewInitiator constructs an Initiator.
func NewInitiator(creator SessionCreator) *Initiator {
	return &Initiator{creator: creator}
}

// Initiate requests a new session for corsOrigin.
func (i *Initiator) Initiate(ctx context.Context, corsOrigin string) (domain.UploadSession, error) {
	session, err := i.creator.CreateUploadSession(ctx, strings.TrimSpace(corsOrigin))
	if err != nil {
		return domain.UploadSession{}, fmt.Errorf("%w: %v", domain.ErrUploadRejected, err)
	}
	if strings.TrimSpace(session.UploadURL) == "" || strings.TrimSpace(session.UploadID) == "" {
		return domain.UploadSession{}, fmt.Errorf("%w: incomplete session", domain.ErrUploadRejected)
	}
	return session, nil
}
