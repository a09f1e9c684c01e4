package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// HTTPTransfer is a Widget that PUTs a local file to the upload URL.
type HTTPTransfer struct {
	path       string
	httpClient *http.Client
}

// NewHTTPTransfer returns a transfer for the file at path. A nil client uses
// an http.Client without an overall timeout, since large videos take a while.
func NewHTTPTransfer(path string, client *http.Client) *HTTPTransfer {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPTransfer{path: path, httpClient: client}
}

// Start opens the file and streams it in the background. Open errors are
// returned directly; transfer errors go to sink.OnError.
func (t *HTTPTransfer) Start(ctx context.Context, uploadURL string, sink EventSink) error {
	if strings.TrimSpace(uploadURL) == "" {
		return errors.New("upload: transfer: upload url is required")
	}
	file, err := os.Open(t.path)
	if err != nil {
		return fmt.Errorf("upload: transfer: open file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return fmt.Errorf("upload: transfer: stat file: %w", err)
	}
	if info.IsDir() {
		file.Close()
		return fmt.Errorf("upload: transfer: %s is a directory", t.path)
	}

	body := &progressReader{r: file, total: info.Size(), report: sink.OnProgress}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, body)
	if err != nil {
		file.Close()
		return fmt.Errorf("upload: transfer: build request: %w", err)
	}
	req.ContentLength = info.Size()
	req.Header.Set("Content-Type", contentTypeFor(t.path))

	go func() {
		defer file.Close()
		resp, err := t.httpClient.Do(req)
		if err != nil {
			sink.OnError(fmt.Errorf("upload: transfer: %w", err))
			return
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)
		if resp.StatusCode >= 300 {
			sink.OnError(fmt.Errorf("upload: transfer: status %d", resp.StatusCode))
			return
		}
		sink.OnProgress(100)
		sink.OnSuccess()
	}()
	return nil
}

func contentTypeFor(path string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// progressReader reports read progress at most every 500ms.
type progressReader struct {
	r      io.Reader
	total  int64
	read   int64
	report func(float64)

	mu   sync.Mutex
	last time.Time
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 && p.total > 0 && p.report != nil {
		p.mu.Lock()
		p.read += int64(n)
		now := time.Now()
		emit := now.Sub(p.last) >= 500*time.Millisecond
		if emit {
			p.last = now
		}
		percent := float64(p.read) * 100 / float64(p.total)
		p.mu.Unlock()
		if emit && percent < 100 {
			p.report(percent)
		}
	}
	return n, err
}

var _ Widget = (*HTTPTransfer)(nil)
