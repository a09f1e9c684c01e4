package repo

import (
	"context"
	"fmt"

	"studio/internal/domain"
	"studio/internal/infra"
	"studio/internal/sqlinline"
)

// UploadRepositoryPG implements domain.UploadRepository over the classes table.
type UploadRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewUploadRepository constructs the repository.
func NewUploadRepository(sql infra.SQLExecutor) *UploadRepositoryPG {
	return &UploadRepositoryPG{sql: sql}
}

// ListPending returns classes whose upload is waiting or processing, oldest first.
func (r *UploadRepositoryPG) ListPending(ctx context.Context, limit int) ([]domain.PendingUpload, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.sql.Query(ctx, sqlinline.QListPendingUploads, limit)
	if err != nil {
		return nil, translate("list pending uploads", err)
	}
	defer rows.Close()

	var pending []domain.PendingUpload
	for rows.Next() {
		var (
			p      domain.PendingUpload
			status string
		)
		if err := rows.Scan(&p.ClassID, &p.UploadID, &status); err != nil {
			return nil, translate("list pending uploads", err)
		}
		p.Status = domain.UploadStatus(status)
		pending = append(pending, p)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("list pending uploads", err)
	}
	return pending, nil
}

// ApplyStatus persists a settled job. The update only lands while the row
// still tracks job.ID in a status that may move to job.Status, so a video
// removed or replaced in the meantime is left alone.
func (r *UploadRepositoryPG) ApplyStatus(ctx context.Context, classID string, job domain.UploadJob, links domain.MediaLinks) (bool, error) {
	if job.Status != domain.UploadStatusStalled && !job.Status.IsTerminal() {
		return false, fmt.Errorf("apply upload status: %w: %q is not a settled status", domain.ErrInvalidTransition, job.Status)
	}
	preds := domain.Predecessors(job.Status)
	from := make([]string, 0, len(preds))
	for _, p := range preds {
		from = append(from, string(p))
	}

	assetID, playbackID := job.AssetID, job.PlaybackID
	if job.Status == domain.UploadStatusErrored {
		assetID, playbackID = "", ""
	}
	if job.Status != domain.UploadStatusReady {
		links = domain.MediaLinks{}
	}

	tag, err := r.sql.Exec(ctx, sqlinline.QApplyUploadStatus,
		classID,
		job.ID,
		string(job.Status),
		from,
		assetID,
		playbackID,
		links.StreamURL,
		links.ThumbnailURL,
	)
	if err != nil {
		return false, translate("apply upload status", err)
	}
	return tag.RowsAffected() > 0, nil
}

var _ domain.UploadRepository = (*UploadRepositoryPG)(nil)
