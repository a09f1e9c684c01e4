package domain

import "fmt"

// UploadStatus enumerates the lifecycle of a remote transcoding job.
type UploadStatus string

const (
	UploadStatusWaiting    UploadStatus = "waiting"
	UploadStatusProcessing UploadStatus = "processing"
	UploadStatusReady      UploadStatus = "ready"
	UploadStatusErrored    UploadStatus = "errored"
	// UploadStatusStalled is reported locally when polling gave up after
	// repeated transient failures. The remote job may still finish.
	UploadStatusStalled UploadStatus = "stalled"
)

// Remote status values returned by the upload-status endpoint.
const (
	RemoteStatusWaiting      = "waiting"
	RemoteStatusProcessing   = "processing"
	RemoteStatusAssetCreated = "asset_created"
	RemoteStatusErrored      = "errored"
)

// IsTerminal reports whether no further remote transitions are expected.
func (s UploadStatus) IsTerminal() bool {
	return s == UploadStatusReady || s == UploadStatusErrored
}

// IsPending reports whether the job still needs polling.
func (s UploadStatus) IsPending() bool {
	return s == UploadStatusWaiting || s == UploadStatusProcessing
}

// Valid reports whether s is a known status.
func (s UploadStatus) Valid() bool {
	switch s {
	case UploadStatusWaiting, UploadStatusProcessing, UploadStatusReady, UploadStatusErrored, UploadStatusStalled:
		return true
	}
	return false
}

// CanTransition reports whether a job may move from one status to another.
// Statuses only move forward; a stalled job may resume when polled again.
// Only a pending status may repeat, so a settled or stalled row is never
// rewritten with the status it already holds.
func CanTransition(from, to UploadStatus) bool {
	if from == to {
		return from == "" || from.IsPending()
	}
	switch from {
	case "":
		return to.Valid()
	case UploadStatusWaiting:
		return to == UploadStatusProcessing || to == UploadStatusReady || to == UploadStatusErrored || to == UploadStatusStalled
	case UploadStatusProcessing:
		return to == UploadStatusReady || to == UploadStatusErrored || to == UploadStatusStalled
	case UploadStatusStalled:
		return to == UploadStatusProcessing || to == UploadStatusReady || to == UploadStatusErrored
	default:
		return false
	}
}

// ValidateTransition returns ErrInvalidTransition when the move is not allowed.
func ValidateTransition(from, to UploadStatus) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// Predecessors lists the stored statuses from which to is reachable. A
// settled or stalled status never precedes itself. Used to build
// forward-only SQL updates.
func Predecessors(to UploadStatus) []UploadStatus {
	all := []UploadStatus{UploadStatusWaiting, UploadStatusProcessing, UploadStatusStalled}
	out := make([]UploadStatus, 0, len(all))
	for _, from := range all {
		if CanTransition(from, to) {
			out = append(out, from)
		}
	}
	return out
}

// StatusFromRemote maps a remote status string onto the local lifecycle.
func StatusFromRemote(remote string) (UploadStatus, bool) {
	switch remote {
	case RemoteStatusWaiting:
		return UploadStatusWaiting, true
	case RemoteStatusProcessing, "preparing":
		return UploadStatusProcessing, true
	case RemoteStatusAssetCreated, "ready":
		return UploadStatusReady, true
	case RemoteStatusErrored:
		return UploadStatusErrored, true
	}
	return "", false
}

// UploadJob tracks one remote transcoding job.
type UploadJob struct {
	ID         string
	Status     UploadStatus
	AssetID    string
	PlaybackID string
}

// UploadSession is the one-time destination handed to a transfer widget.
type UploadSession struct {
	UploadURL string `json:"uploadUrl"`
	UploadID  string `json:"uploadId"`
}

// UploadState is the wire form of a status check. Owner is the user the
// upload was issued to and is never serialized.
type UploadState struct {
	Status     string `json:"status"`
	AssetID    string `json:"assetId,omitempty"`
	PlaybackID string `json:"playbackId,omitempty"`
	Owner      string `json:"-"`
}
