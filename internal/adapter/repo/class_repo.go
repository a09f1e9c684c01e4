package repo

import (
	"context"

	"github.com/jackc/pgx/v5"

	"studio/internal/domain"
	"studio/internal/infra"
	"studio/internal/sqlinline"
)

// ClassRepositoryPG implements domain.ClassRepository using PostgreSQL.
type ClassRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewClassRepository constructs the repository.
func NewClassRepository(sql infra.SQLExecutor) *ClassRepositoryPG {
	return &ClassRepositoryPG{sql: sql}
}

// Create inserts the class and fills its id and timestamps.
func (r *ClassRepositoryPG) Create(ctx context.Context, class *domain.Class) error {
	if err := ensureTeacher(ctx, r.sql, class.TeacherID); err != nil {
		return err
	}
	row := r.sql.QueryRow(ctx, sqlinline.QInsertClass,
		class.TeacherID,
		string(class.Kind),
		class.Title,
		class.Description,
		class.Duration,
		string(class.Difficulty),
		class.Language,
		class.CategoryID,
		class.VideoPath,
		class.VideoURL,
		class.VideoType,
		class.MuxUploadID,
		class.MuxAssetID,
		class.MuxPlaybackID,
		class.MuxStatus,
		class.ThumbnailURL,
	)
	if err := row.Scan(&class.ID, &class.CreatedAt, &class.UpdatedAt); err != nil {
		return translate("insert class", err)
	}
	return nil
}

// Update overwrites every teacher-editable field of the class.
func (r *ClassRepositoryPG) Update(ctx context.Context, class *domain.Class) error {
	row := r.sql.QueryRow(ctx, sqlinline.QUpdateClass,
		class.ID,
		class.TeacherID,
		string(class.Kind),
		class.Title,
		class.Description,
		class.Duration,
		string(class.Difficulty),
		class.Language,
		class.CategoryID,
		class.VideoPath,
		class.VideoURL,
		class.VideoType,
		class.MuxUploadID,
		class.MuxAssetID,
		class.MuxPlaybackID,
		class.MuxStatus,
		class.ThumbnailURL,
	)
	if err := row.Scan(&class.CreatedAt, &class.UpdatedAt); err != nil {
		return translate("update class", err)
	}
	return nil
}

func (r *ClassRepositoryPG) Get(ctx context.Context, teacherID, id string) (*domain.Class, error) {
	class, err := scanClass(r.sql.QueryRow(ctx, sqlinline.QSelectClass, teacherID, id))
	if err != nil {
		return nil, translate("get class", err)
	}
	return class, nil
}

func (r *ClassRepositoryPG) List(ctx context.Context, teacherID string, limit, offset int) ([]domain.Class, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListClassesByTeacher, teacherID, limit, offset)
	if err != nil {
		return nil, translate("list classes", err)
	}
	classes, err := collectClasses(rows)
	if err != nil {
		return nil, translate("list classes", err)
	}
	return classes, nil
}

func (r *ClassRepositoryPG) Delete(ctx context.Context, teacherID, id string) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QDeleteClass, teacherID, id)
	if err != nil {
		return translate("delete class", err)
	}
	if tag.RowsAffected() == 0 {
		return translate("delete class", pgx.ErrNoRows)
	}
	return nil
}

// ClearVideo resets the video fields. Clearing an already empty class succeeds.
func (r *ClassRepositoryPG) ClearVideo(ctx context.Context, teacherID, id string) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QClearClassVideo, teacherID, id)
	if err != nil {
		return translate("clear class video", err)
	}
	if tag.RowsAffected() == 0 {
		return translate("clear class video", pgx.ErrNoRows)
	}
	return nil
}

func ensureTeacher(ctx context.Context, sql infra.SQLExecutor, teacherID string) error {
	if _, err := sql.Exec(ctx, sqlinline.QEnsureTeacher, teacherID, ""); err != nil {
		return translate("ensure teacher", err)
	}
	return nil
}

func scanClass(row pgx.Row) (*domain.Class, error) {
	var (
		c          domain.Class
		kind       string
		difficulty string
	)
	if err := row.Scan(
		&c.ID,
		&c.TeacherID,
		&kind,
		&c.Title,
		&c.Description,
		&c.Duration,
		&difficulty,
		&c.Language,
		&c.CategoryID,
		&c.VideoPath,
		&c.VideoURL,
		&c.VideoType,
		&c.MuxUploadID,
		&c.MuxAssetID,
		&c.MuxPlaybackID,
		&c.MuxStatus,
		&c.ThumbnailURL,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	c.Kind = domain.ContentKind(kind)
	c.Difficulty = domain.Difficulty(difficulty)
	return &c, nil
}

func collectClasses(rows pgx.Rows) ([]domain.Class, error) {
	defer rows.Close()
	classes := make([]domain.Class, 0)
	for rows.Next() {
		c, err := scanClass(rows)
		if err != nil {
			return nil, err
		}
		classes = append(classes, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return classes, nil
}

var _ domain.ClassRepository = (*ClassRepositoryPG)(nil)
