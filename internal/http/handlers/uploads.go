package handlers

import (
	"errors"
	"net/http"
	"strings"

	"studio/internal/providers/mux"
)

type createUploadRequest struct {
	CORSOrigin string `json:"corsOrigin"`
}

// CreateUpload issues a one-time direct upload URL. A rejection by the media
// service is surfaced as {error} with a non-2xx status and is never retried.
func (a *App) CreateUpload(w http.ResponseWriter, r *http.Request) {
	teacherID, ok := a.teacher(w, r)
	if !ok {
		return
	}
	var req createUploadRequest
	if !a.decode(w, r, &req) {
		return
	}
	origin := strings.TrimSpace(req.CORSOrigin)
	if origin == "" {
		origin = r.Header.Get("Origin")
	}
	session, err := a.Media.CreateUploadSession(r.Context(), origin, teacherID)
	if err != nil {
		a.Logger.Error().Err(err).Str("teacher_id", teacherID).Msg("create upload session failed")
		a.error(w, mediaStatus(err), "upload_rejected", "failed to create upload session")
		return
	}
	if session.UploadURL == "" || session.UploadID == "" {
		a.error(w, http.StatusBadGateway, "upload_rejected", "media service returned an incomplete session")
		return
	}
	a.Logger.Info().Str("teacher_id", teacherID).Str("upload_id", session.UploadID).Msg("upload session created")
	a.json(w, http.StatusOK, session)
}

// UploadStatus reports the combined upload/asset status for ?uploadId=.
// Uploads issued to another teacher are reported as not found.
func (a *App) UploadStatus(w http.ResponseWriter, r *http.Request) {
	teacherID, ok := a.teacher(w, r)
	if !ok {
		return
	}
	uploadID := strings.TrimSpace(r.URL.Query().Get("uploadId"))
	if uploadID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "uploadId required")
		return
	}
	state, err := a.Media.UploadStatus(r.Context(), uploadID)
	if err != nil {
		a.Logger.Warn().Err(err).Str("upload_id", uploadID).Msg("upload status lookup failed")
		a.error(w, mediaStatus(err), "upload_status_failed", "failed to fetch upload status")
		return
	}
	if state.Owner != teacherID {
		a.Logger.Warn().Str("teacher_id", teacherID).Str("upload_id", uploadID).Msg("upload status for foreign upload")
		a.error(w, http.StatusNotFound, "not_found", "upload not found")
		return
	}
	a.json(w, http.StatusOK, state)
}

// mediaStatus maps media service failures onto an HTTP status for our caller.
func mediaStatus(err error) int {
	var apiErr *mux.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound:
		return http.StatusNotFound
	case errors.Is(err, mux.ErrMissingCredentials):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
