package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"studio/internal/domain"
	"studio/internal/infra"
	"studio/internal/sqlinline"
)

// CourseRepositoryPG implements domain.CourseRepository using PostgreSQL.
type CourseRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(sql infra.SQLExecutor) *CourseRepositoryPG {
	return &CourseRepositoryPG{sql: sql}
}

func (r *CourseRepositoryPG) Create(ctx context.Context, course *domain.Course) error {
	if err := ensureTeacher(ctx, r.sql, course.TeacherID); err != nil {
		return err
	}
	row := r.sql.QueryRow(ctx, sqlinline.QInsertCourse,
		course.TeacherID,
		course.Title,
		course.Description,
		string(difficultyOrDefault(course.Difficulty)),
		course.Language,
		course.Published,
	)
	if err := row.Scan(&course.ID, &course.CreatedAt, &course.UpdatedAt); err != nil {
		return translate("insert course", err)
	}
	return nil
}

func (r *CourseRepositoryPG) Update(ctx context.Context, course *domain.Course) error {
	row := r.sql.QueryRow(ctx, sqlinline.QUpdateCourse,
		course.ID,
		course.TeacherID,
		course.Title,
		course.Description,
		string(difficultyOrDefault(course.Difficulty)),
		course.Language,
		course.Published,
	)
	if err := row.Scan(&course.CreatedAt, &course.UpdatedAt); err != nil {
		return translate("update course", err)
	}
	return nil
}

// Get loads the course with its classes in playlist order.
func (r *CourseRepositoryPG) Get(ctx context.Context, teacherID, id string) (*domain.Course, error) {
	course, err := scanCourse(r.sql.QueryRow(ctx, sqlinline.QSelectCourse, teacherID, id))
	if err != nil {
		return nil, translate("get course", err)
	}
	rows, err := r.sql.Query(ctx, sqlinline.QListCourseClasses, course.ID)
	if err != nil {
		return nil, translate("list course classes", err)
	}
	course.Classes, err = collectClasses(rows)
	if err != nil {
		return nil, translate("list course classes", err)
	}
	return course, nil
}

func (r *CourseRepositoryPG) List(ctx context.Context, teacherID string, limit, offset int) ([]domain.Course, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListCoursesByTeacher, teacherID, limit, offset)
	if err != nil {
		return nil, translate("list courses", err)
	}
	defer rows.Close()

	courses := make([]domain.Course, 0)
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, translate("list courses", err)
		}
		courses = append(courses, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("list courses", err)
	}
	return courses, nil
}

func (r *CourseRepositoryPG) Delete(ctx context.Context, teacherID, id string) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QDeleteCourse, teacherID, id)
	if err != nil {
		return translate("delete course", err)
	}
	if tag.RowsAffected() == 0 {
		return translate("delete course", pgx.ErrNoRows)
	}
	return nil
}

// SetClasses replaces the course's playlist with classIDs in the given order.
// Every class must belong to the teacher and appear at most once.
func (r *CourseRepositoryPG) SetClasses(ctx context.Context, teacherID, courseID string, classIDs []string) error {
	seen := make(map[string]struct{}, len(classIDs))
	for _, id := range classIDs {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("set course classes: %w: class %s listed twice", domain.ErrValidation, id)
		}
		seen[id] = struct{}{}
	}
	if _, err := scanCourse(r.sql.QueryRow(ctx, sqlinline.QSelectCourse, teacherID, courseID)); err != nil {
		return translate("set course classes", err)
	}
	if len(classIDs) > 0 {
		var owned int
		if err := r.sql.QueryRow(ctx, sqlinline.QCountOwnedClasses, teacherID, classIDs).Scan(&owned); err != nil {
			return translate("set course classes", err)
		}
		if owned != len(classIDs) {
			return fmt.Errorf("set course classes: %w: unknown class id", domain.ErrValidation)
		}
	}
	ids := classIDs
	if ids == nil {
		ids = []string{}
	}
	if _, err := r.sql.Exec(ctx, sqlinline.QReplaceCourseClasses, courseID, ids); err != nil {
		return translate("set course classes", err)
	}
	return nil
}

func scanCourse(row pgx.Row) (*domain.Course, error) {
	var (
		c          domain.Course
		difficulty string
	)
	if err := row.Scan(
		&c.ID,
		&c.TeacherID,
		&c.Title,
		&c.Description,
		&difficulty,
		&c.Language,
		&c.Published,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	c.Difficulty = domain.Difficulty(difficulty)
	return &c, nil
}

func difficultyOrDefault(d domain.Difficulty) domain.Difficulty {
	if d == "" {
		return domain.DifficultyBeginner
	}
	return d
}

var _ domain.CourseRepository = (*CourseRepositoryPG)(nil)
