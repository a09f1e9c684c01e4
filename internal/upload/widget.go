package upload

import "context"

// EventSink receives transfer events for a single upload session.
type EventSink interface {
	OnSuccess()
	OnError(reason error)
	OnProgress(percent float64)
}

// Widget streams a local file to an upload URL. Start returns an error only
// when the transfer could not begin; failures after that are reported through
// sink.OnError. Events may arrive on any goroutine.
type Widget interface {
	Start(ctx context.Context, uploadURL string, sink EventSink) error
}
