package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"github.com/pelletier/go-toml/v2"

	"studio/internal/domain"
	"studio/internal/upload"
)

var errDraftLocked = errors.New("draft is in use by another studioctl process")

// draftFile is the on-disk form of a class being edited.
type draftFile struct {
	ClassID     string             `toml:"class_id,omitempty"`
	Kind        string             `toml:"kind,omitempty"`
	Title       string             `toml:"title"`
	Description string             `toml:"description,omitempty"`
	Duration    int                `toml:"duration_minutes,omitempty"`
	Difficulty  string             `toml:"difficulty,omitempty"`
	Language    string             `toml:"language,omitempty"`
	CategoryID  string             `toml:"category_id,omitempty"`
	Video       domain.VideoFields `toml:"video"`
}

// draft keeps a class form on disk. Video field updates go through an
// upload.Form whose changes are written back immediately, so an interrupted
// upload leaves the last known state in the file.
type draft struct {
	path string
	lock *flock.Flock
	form *upload.Form

	mu      sync.Mutex
	file    draftFile
	saveErr error
}

// openDraft loads path. A missing file starts an empty draft.
func openDraft(path string) (*draft, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve draft path: %w", err)
	}
	d := &draft{path: abs, lock: flock.New(abs + ".lock")}

	raw, err := os.ReadFile(abs)
	switch {
	case err == nil:
		if err := toml.Unmarshal(raw, &d.file); err != nil {
			return nil, fmt.Errorf("parse draft %s: %w", abs, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read draft: %w", err)
	}

	d.form = upload.NewForm(d.file.Video)
	d.form.OnChange = d.persistVideo
	return d, nil
}

// Lock takes the draft's advisory lock without blocking.
func (d *draft) Lock() error {
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire draft lock: %w", err)
	}
	if !ok {
		return errDraftLocked
	}
	return nil
}

func (d *draft) Unlock() {
	_ = d.lock.Unlock()
}

// Store is the form the upload reconciler writes into.
func (d *draft) Store() upload.Store {
	return d.form
}

func (d *draft) Video() domain.VideoFields {
	return d.form.Fields()
}

func (d *draft) ClassID() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.file.ClassID
}

// Err returns the last error hit while writing video updates to disk.
func (d *draft) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.saveErr
}

// Class builds the API representation of the draft.
func (d *draft) Class() domain.Class {
	d.mu.Lock()
	f := d.file
	d.mu.Unlock()

	class := domain.Class{
		ID:          f.ClassID,
		Kind:        domain.ContentKind(f.Kind),
		Title:       f.Title,
		Description: f.Description,
		Duration:    f.Duration,
		Difficulty:  domain.Difficulty(f.Difficulty),
		Language:    f.Language,
		VideoFields: d.form.Fields(),
	}
	if f.CategoryID != "" {
		category := f.CategoryID
		class.CategoryID = &category
	}
	return class
}

// Adopt records the server's view of a saved class.
func (d *draft) Adopt(class *domain.Class) error {
	d.mu.Lock()
	d.file.ClassID = class.ID
	d.file.Kind = string(class.Kind)
	d.file.Title = class.Title
	d.file.Description = class.Description
	d.file.Duration = class.Duration
	d.file.Difficulty = string(class.Difficulty)
	d.file.Language = class.Language
	d.file.CategoryID = ""
	if class.CategoryID != nil {
		d.file.CategoryID = *class.CategoryID
	}
	d.mu.Unlock()

	d.form.Reset()
	d.form.Merge(class.VideoFields)
	return d.Err()
}

func (d *draft) persistVideo(video domain.VideoFields) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.file.Video = video
	d.saveErr = d.writeLocked()
}

func (d *draft) writeLocked() error {
	raw, err := toml.Marshal(d.file)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	tmp := d.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write draft: %w", err)
	}
	if err := os.Rename(tmp, d.path); err != nil {
		return fmt.Errorf("replace draft: %w", err)
	}
	return nil
}
