package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"studio/internal/domain"
	"studio/internal/middleware"
)

const (
	teacherA = "5b0c3b0e-6a43-4c36-9d0e-1f2a3b4c5d6e"
	classOne = "9f1e2d3c-4b5a-4968-8776-655443322110"
)

type memClasses struct {
	mu      sync.Mutex
	classes map[string]domain.Class
	seq     int
	cleared int
}

func newMemClasses(seed ...domain.Class) *memClasses {
	m := &memClasses{classes: map[string]domain.Class{}}
	for _, c := range seed {
		m.classes[c.ID] = c
	}
	return m
}

func (m *memClasses) Create(_ context.Context, c *domain.Class) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	c.ID = fmt.Sprintf("00000000-0000-4000-8000-%012d", m.seq)
	m.classes[c.ID] = *c
	return nil
}

func (m *memClasses) Update(_ context.Context, c *domain.Class) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.classes[c.ID]; !ok || existing.TeacherID != c.TeacherID {
		return domain.ErrNotFound
	}
	m.classes[c.ID] = *c
	return nil
}

func (m *memClasses) Get(_ context.Context, teacherID, id string) (*domain.Class, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.classes[id]
	if !ok || c.TeacherID != teacherID {
		return nil, fmt.Errorf("get class: %w", domain.ErrNotFound)
	}
	return &c, nil
}

func (m *memClasses) List(_ context.Context, teacherID string, limit, offset int) ([]domain.Class, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Class{}
	for _, c := range m.classes {
		if c.TeacherID == teacherID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memClasses) Delete(_ context.Context, teacherID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.classes[id]; !ok || c.TeacherID != teacherID {
		return domain.ErrNotFound
	}
	delete(m.classes, id)
	return nil
}

func (m *memClasses) ClearVideo(_ context.Context, teacherID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.classes[id]
	if !ok || c.TeacherID != teacherID {
		return domain.ErrNotFound
	}
	c.VideoFields = domain.VideoFields{}
	m.classes[id] = c
	m.cleared++
	return nil
}

type memCourses struct {
	courses  map[string]domain.Course
	playlist map[string][]string
	setErr   error
}

func newMemCourses(seed ...domain.Course) *memCourses {
	m := &memCourses{courses: map[string]domain.Course{}, playlist: map[string][]string{}}
	for _, c := range seed {
		m.courses[c.ID] = c
	}
	return m
}

func (m *memCourses) Create(_ context.Context, c *domain.Course) error {
	c.ID = fmt.Sprintf("00000000-0000-4000-9000-%012d", len(m.courses)+1)
	m.courses[c.ID] = *c
	return nil
}

func (m *memCourses) Update(_ context.Context, c *domain.Course) error {
	if _, ok := m.courses[c.ID]; !ok {
		return domain.ErrNotFound
	}
	m.courses[c.ID] = *c
	return nil
}

func (m *memCourses) Get(_ context.Context, teacherID, id string) (*domain.Course, error) {
	c, ok := m.courses[id]
	if !ok || c.TeacherID != teacherID {
		return nil, domain.ErrNotFound
	}
	for _, classID := range m.playlist[id] {
		c.Classes = append(c.Classes, domain.Class{ID: classID})
	}
	return &c, nil
}

func (m *memCourses) List(_ context.Context, teacherID string, limit, offset int) ([]domain.Course, error) {
	out := []domain.Course{}
	for _, c := range m.courses {
		if c.TeacherID == teacherID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memCourses) Delete(_ context.Context, teacherID, id string) error {
	if _, ok := m.courses[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.courses, id)
	return nil
}

func (m *memCourses) SetClasses(_ context.Context, teacherID, courseID string, classIDs []string) error {
	if m.setErr != nil {
		return m.setErr
	}
	if _, ok := m.courses[courseID]; !ok {
		return domain.ErrNotFound
	}
	m.playlist[courseID] = classIDs
	return nil
}

type fakeMedia struct {
	session   domain.UploadSession
	state     domain.UploadState
	err       error
	origins   []string
	owners    []string
	deleted   []string
	statusIDs []string
}

func (f *fakeMedia) CreateUploadSession(_ context.Context, corsOrigin, owner string) (domain.UploadSession, error) {
	f.origins = append(f.origins, corsOrigin)
	f.owners = append(f.owners, owner)
	return f.session, f.err
}

func (f *fakeMedia) UploadStatus(_ context.Context, uploadID string) (domain.UploadState, error) {
	f.statusIDs = append(f.statusIDs, uploadID)
	return f.state, f.err
}

func (f *fakeMedia) DeleteAsset(_ context.Context, assetID string) error {
	f.deleted = append(f.deleted, assetID)
	return nil
}

// asTeacher attaches teacher identity and an optional chi route id.
func asTeacher(r *http.Request, id string) *http.Request {
	ctx := middleware.ContextWithUserID(r.Context(), teacherA)
	ctx = middleware.ContextWithRole(ctx, middleware.RoleTeacher)
	if id != "" {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", id)
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return r.WithContext(ctx)
}

func body(s string) *strings.Reader {
	return strings.NewReader(s)
}
