package domain

import "context"

// ClassRepository persists classes owned by teachers.
type ClassRepository interface {
	Create(ctx context.Context, class *Class) error
	Update(ctx context.Context, class *Class) error
	Get(ctx context.Context, teacherID, id string) (*Class, error)
	List(ctx context.Context, teacherID string, limit, offset int) ([]Class, error)
	Delete(ctx context.Context, teacherID, id string) error
	// ClearVideo resets every video field of the class.
	ClearVideo(ctx context.Context, teacherID, id string) error
}

// CourseRepository persists courses and their ordered class lists.
type CourseRepository interface {
	Create(ctx context.Context, course *Course) error
	Update(ctx context.Context, course *Course) error
	Get(ctx context.Context, teacherID, id string) (*Course, error)
	List(ctx context.Context, teacherID string, limit, offset int) ([]Course, error)
	Delete(ctx context.Context, teacherID, id string) error
	SetClasses(ctx context.Context, teacherID, courseID string, classIDs []string) error
}

// UploadRepository is used by the reconciler worker.
type UploadRepository interface {
	ListPending(ctx context.Context, limit int) ([]PendingUpload, error)
	// ApplyStatus writes job's terminal or stalled state when the stored status
	// still allows the transition. It reports whether a row was updated.
	ApplyStatus(ctx context.Context, classID string, job UploadJob, links MediaLinks) (bool, error)
}

// MediaLinks are the public URLs derived from a ready upload's playback id.
type MediaLinks struct {
	StreamURL    string
	ThumbnailURL string
}
