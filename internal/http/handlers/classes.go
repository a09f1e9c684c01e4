package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"studio/internal/domain"
)

type classRequest struct {
	Kind        domain.ContentKind `json:"kind"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Duration    int                `json:"duration"`
	Difficulty  domain.Difficulty  `json:"difficulty"`
	Language    string             `json:"language"`
	CategoryID  *string            `json:"categoryId"`
	domain.VideoFields
}

func (req classRequest) class(teacherID string) domain.Class {
	c := domain.Class{
		TeacherID:   teacherID,
		Kind:        req.Kind,
		Title:       req.Title,
		Description: req.Description,
		Duration:    req.Duration,
		Difficulty:  req.Difficulty,
		Language:    req.Language,
		CategoryID:  req.CategoryID,
		VideoFields: req.VideoFields,
	}
	c.Normalize()
	return c
}

func (a *App) ListClasses(w http.ResponseWriter, r *http.Request) {
	teacherID, ok := a.teacher(w, r)
	if !ok {
		return
	}
	limit, offset := pagination(r)
	classes, err := a.Classes.List(r.Context(), teacherID, limit, offset)
	if err != nil {
		a.fail(w, r, err, "classes")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": classes, "limit": limit, "offset": offset})
}

func (a *App) CreateClass(w http.ResponseWriter, r *http.Request) {
	teacherID, ok := a.teacher(w, r)
	if !ok {
		return
	}
	var req classRequest
	if !a.decode(w, r, &req) {
		return
	}
	class := req.class(teacherID)
	if err := class.Validate(); err != nil {
		a.fail(w, r, err, "class")
		return
	}
	if class.CategoryID != nil && !validID(*class.CategoryID) {
		a.error(w, http.StatusBadRequest, "bad_request", "categoryId must be a uuid")
		return
	}
	if err := a.Classes.Create(r.Context(), &class); err != nil {
		a.fail(w, r, err, "class")
		return
	}
	a.json(w, http.StatusCreated, class)
}

func (a *App) GetClass(w http.ResponseWriter, r *http.Request) {
	class, ok := a.loadClass(w, r)
	if !ok {
		return
	}
	a.json(w, http.StatusOK, class)
}

// UpdateClass replaces the class. A video swapped out by the update has its
// old asset removed from the media service. When the upload is unchanged but
// the submitted status would move backward, the stored video fields win.
func (a *App) UpdateClass(w http.ResponseWriter, r *http.Request) {
	existing, ok := a.loadClass(w, r)
	if !ok {
		return
	}
	var req classRequest
	if !a.decode(w, r, &req) {
		return
	}
	class := req.class(existing.TeacherID)
	class.ID = existing.ID
	if err := class.Validate(); err != nil {
		a.fail(w, r, err, "class")
		return
	}
	if class.CategoryID != nil && !validID(*class.CategoryID) {
		a.error(w, http.StatusBadRequest, "bad_request", "categoryId must be a uuid")
		return
	}
	sameUpload := deref(class.MuxUploadID) != "" && deref(class.MuxUploadID) == deref(existing.MuxUploadID)
	if sameUpload {
		if err := domain.ValidateTransition(existing.Status(), class.Status()); err != nil {
			a.Logger.Info().Err(err).Str("class_id", class.ID).Msg("stale video fields ignored")
			class.VideoFields = existing.VideoFields
		}
	}
	if err := a.Classes.Update(r.Context(), &class); err != nil {
		a.fail(w, r, err, "class")
		return
	}
	if old := deref(existing.MuxAssetID); old != "" && !sameUpload {
		a.deleteAsset(r.Context(), old)
	}
	a.json(w, http.StatusOK, class)
}

func (a *App) DeleteClass(w http.ResponseWriter, r *http.Request) {
	class, ok := a.loadClass(w, r)
	if !ok {
		return
	}
	if err := a.Classes.Delete(r.Context(), class.TeacherID, class.ID); err != nil {
		a.fail(w, r, err, "class")
		return
	}
	a.deleteAsset(r.Context(), deref(class.MuxAssetID))
	w.WriteHeader(http.StatusNoContent)
}

// RemoveClassVideo clears every video field. Removing an absent video succeeds.
func (a *App) RemoveClassVideo(w http.ResponseWriter, r *http.Request) {
	class, ok := a.loadClass(w, r)
	if !ok {
		return
	}
	if class.VideoFields.IsEmpty() {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err := a.Classes.ClearVideo(r.Context(), class.TeacherID, class.ID); err != nil {
		a.fail(w, r, err, "class")
		return
	}
	a.deleteAsset(r.Context(), deref(class.MuxAssetID))
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) loadClass(w http.ResponseWriter, r *http.Request) (*domain.Class, bool) {
	teacherID, ok := a.teacher(w, r)
	if !ok {
		return nil, false
	}
	id := chi.URLParam(r, "id")
	if !validID(id) {
		a.error(w, http.StatusNotFound, "not_found", "class not found")
		return nil, false
	}
	class, err := a.Classes.Get(r.Context(), teacherID, id)
	if err != nil {
		a.fail(w, r, err, "class")
		return nil, false
	}
	return class, true
}

// deleteAsset is best effort; an orphaned asset only costs storage.
func (a *App) deleteAsset(ctx context.Context, assetID string) {
	if assetID == "" || a.Media == nil {
		return
	}
	if err := a.Media.DeleteAsset(ctx, assetID); err != nil {
		a.Logger.Warn().Err(err).Str("asset_id", assetID).Msg("delete media asset failed")
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
