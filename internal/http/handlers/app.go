package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"studio/internal/domain"
	"studio/internal/infra"
	"studio/internal/middleware"
)

// MediaService is the slice of the media client the API depends on.
type MediaService interface {
	CreateUploadSession(ctx context.Context, corsOrigin, owner string) (domain.UploadSession, error)
	UploadStatus(ctx context.Context, uploadID string) (domain.UploadState, error)
	DeleteAsset(ctx context.Context, assetID string) error
}

// Pinger reports database liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	Classes domain.ClassRepository
	Courses domain.CourseRepository
	Media   MediaService
	DB      Pinger
	Logger  *infra.Logger
}

// NewApp wires the handler container. A nil logger discards output.
func NewApp(classes domain.ClassRepository, courses domain.CourseRepository, media MediaService, db Pinger, logger *infra.Logger) *App {
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &App{Classes: classes, Courses: courses, Media: media, DB: db, Logger: logger}
}

const maxBodyBytes = 1 << 20

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, msg string) {
	a.json(w, code, map[string]string{"error": msg, "code": errCode})
}

// fail maps domain errors onto HTTP responses for the named resource.
// Unexpected errors are logged and reported without detail.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error, resource string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", resource+" not found")
	case errors.Is(err, domain.ErrConflict):
		a.error(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing teacher context")
	default:
		a.Logger.Error().Err(err).
			Str("request_id", middleware.RequestIDFromContext(r.Context())).
			Str("resource", resource).
			Msg("request failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to process "+resource)
	}
}

func (a *App) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return false
	}
	return true
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.TeacherIDFromContext(r.Context())
}

// teacher returns the caller's id or writes 401.
func (a *App) teacher(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := a.currentUserID(r)
	if id == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing teacher context")
		return "", false
	}
	return id, true
}

// validID rejects malformed ids up front so they read as 404 rather than a
// database cast error.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func pagination(r *http.Request) (limit, offset int) {
	limit, offset = 20, 0
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > 100 {
		limit = 100
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}
