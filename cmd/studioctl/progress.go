package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"

	"studio/internal/upload"
)

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// progressWidget wraps a transfer and draws a progress line on terminals.
type progressWidget struct {
	inner upload.Widget
	out   io.Writer
	live  bool
}

func newProgressWidget(inner upload.Widget, out io.Writer) *progressWidget {
	return &progressWidget{inner: inner, out: out, live: isTerminal(out)}
}

func (p *progressWidget) Start(ctx context.Context, uploadURL string, sink upload.EventSink) error {
	return p.inner.Start(ctx, uploadURL, &progressSink{EventSink: sink, out: p.out, live: p.live, last: -1})
}

type progressSink struct {
	upload.EventSink
	out  io.Writer
	live bool

	mu   sync.Mutex
	last int
}

func (s *progressSink) OnProgress(percent float64) {
	if s.live {
		whole := int(percent)
		s.mu.Lock()
		if whole != s.last {
			s.last = whole
			fmt.Fprintf(s.out, "\rUploading... %3d%%", whole)
		}
		s.mu.Unlock()
	}
	s.EventSink.OnProgress(percent)
}

func (s *progressSink) OnSuccess() {
	s.endLine()
	fmt.Fprintln(s.out, "Transfer complete, waiting for processing")
	s.EventSink.OnSuccess()
}

func (s *progressSink) OnError(reason error) {
	s.endLine()
	s.EventSink.OnError(reason)
}

func (s *progressSink) endLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.live && s.last >= 0 {
		fmt.Fprintln(s.out)
	}
}
