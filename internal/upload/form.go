package upload

import (
	"sync"

	"studio/internal/domain"
)

// Store receives video field updates for the content form being edited.
type Store interface {
	Merge(patch domain.VideoFields)
	Reset()
}

// Form is an in-memory Store. OnChange, when set, observes every update.
type Form struct {
	mu       sync.Mutex
	fields   domain.VideoFields
	OnChange func(domain.VideoFields)
}

// NewForm returns a form seeded with initial.
func NewForm(initial domain.VideoFields) *Form {
	return &Form{fields: initial}
}

// Fields returns a snapshot of the current video fields.
func (f *Form) Fields() domain.VideoFields {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields
}

// Merge shallow-merges patch into the form.
func (f *Form) Merge(patch domain.VideoFields) {
	f.mu.Lock()
	f.fields.Merge(patch)
	snapshot := f.fields
	f.mu.Unlock()
	if f.OnChange != nil {
		f.OnChange(snapshot)
	}
}

// Reset clears every video field.
func (f *Form) Reset() {
	f.mu.Lock()
	f.fields = domain.VideoFields{}
	f.mu.Unlock()
	if f.OnChange != nil {
		f.OnChange(domain.VideoFields{})
	}
}

var _ Store = (*Form)(nil)
