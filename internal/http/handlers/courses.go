package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"studio/internal/domain"
)

type courseRequest struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Difficulty  domain.Difficulty `json:"difficulty"`
	Language    string            `json:"language"`
	Published   bool              `json:"published"`
}

func (req courseRequest) course(teacherID string) domain.Course {
	return domain.Course{
		TeacherID:   teacherID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Difficulty:  req.Difficulty,
		Language:    strings.ToLower(strings.TrimSpace(req.Language)),
		Published:   req.Published,
	}
}

type courseClassesRequest struct {
	ClassIDs []string `json:"classIds"`
}

func (a *App) ListCourses(w http.ResponseWriter, r *http.Request) {
	teacherID, ok := a.teacher(w, r)
	if !ok {
		return
	}
	limit, offset := pagination(r)
	courses, err := a.Courses.List(r.Context(), teacherID, limit, offset)
	if err != nil {
		a.fail(w, r, err, "courses")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": courses, "limit": limit, "offset": offset})
}

func (a *App) CreateCourse(w http.ResponseWriter, r *http.Request) {
	teacherID, ok := a.teacher(w, r)
	if !ok {
		return
	}
	var req courseRequest
	if !a.decode(w, r, &req) {
		return
	}
	course := req.course(teacherID)
	if err := course.Validate(); err != nil {
		a.fail(w, r, err, "course")
		return
	}
	if err := a.Courses.Create(r.Context(), &course); err != nil {
		a.fail(w, r, err, "course")
		return
	}
	a.json(w, http.StatusCreated, course)
}

func (a *App) GetCourse(w http.ResponseWriter, r *http.Request) {
	teacherID, id, ok := a.courseRef(w, r)
	if !ok {
		return
	}
	course, err := a.Courses.Get(r.Context(), teacherID, id)
	if err != nil {
		a.fail(w, r, err, "course")
		return
	}
	a.json(w, http.StatusOK, course)
}

func (a *App) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	teacherID, id, ok := a.courseRef(w, r)
	if !ok {
		return
	}
	var req courseRequest
	if !a.decode(w, r, &req) {
		return
	}
	course := req.course(teacherID)
	course.ID = id
	if err := course.Validate(); err != nil {
		a.fail(w, r, err, "course")
		return
	}
	if err := a.Courses.Update(r.Context(), &course); err != nil {
		a.fail(w, r, err, "course")
		return
	}
	a.json(w, http.StatusOK, course)
}

func (a *App) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	teacherID, id, ok := a.courseRef(w, r)
	if !ok {
		return
	}
	if err := a.Courses.Delete(r.Context(), teacherID, id); err != nil {
		a.fail(w, r, err, "course")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetCourseClasses replaces the course playlist; positions follow the order of classIds.
func (a *App) SetCourseClasses(w http.ResponseWriter, r *http.Request) {
	teacherID, id, ok := a.courseRef(w, r)
	if !ok {
		return
	}
	var req courseClassesRequest
	if !a.decode(w, r, &req) {
		return
	}
	for _, classID := range req.ClassIDs {
		if !validID(classID) {
			a.error(w, http.StatusBadRequest, "bad_request", "classIds must be uuids")
			return
		}
	}
	if err := a.Courses.SetClasses(r.Context(), teacherID, id, req.ClassIDs); err != nil {
		a.fail(w, r, err, "course")
		return
	}
	course, err := a.Courses.Get(r.Context(), teacherID, id)
	if err != nil {
		a.fail(w, r, err, "course")
		return
	}
	a.json(w, http.StatusOK, course)
}

func (a *App) courseRef(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	teacherID, ok := a.teacher(w, r)
	if !ok {
		return "", "", false
	}
	id := chi.URLParam(r, "id")
	if !validID(id) {
		a.error(w, http.StatusNotFound, "not_found", "course not found")
		return "", "", false
	}
	return teacherID, id, true
}
