package domain

import (
	"fmt"
	"strings"
	"time"
)

// Difficulty enumerates class difficulty levels.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// ContentKind distinguishes the practice formats a teacher can publish.
type ContentKind string

const (
	ContentKindClass      ContentKind = "class"
	ContentKindMeditation ContentKind = "meditation"
	ContentKindBreathing  ContentKind = "breathing"
)

// VideoType enumerates where a class video is hosted.
type VideoType string

const (
	VideoTypeMux VideoType = "mux"
	VideoTypeURL VideoType = "url"
)

// VideoFields is the video portion of a content form. A nil field is unset;
// Merge treats nil as "leave unchanged".
type VideoFields struct {
	VideoPath     *string `json:"videoPath" toml:"video_path,omitempty"`
	VideoURL      *string `json:"videoUrl" toml:"video_url,omitempty"`
	VideoType     *string `json:"videoType" toml:"video_type,omitempty"`
	MuxUploadID   *string `json:"muxUploadId" toml:"mux_upload_id,omitempty"`
	MuxAssetID    *string `json:"muxAssetId" toml:"mux_asset_id,omitempty"`
	MuxPlaybackID *string `json:"muxPlaybackId" toml:"mux_playback_id,omitempty"`
	MuxStatus     *string `json:"muxStatus" toml:"mux_status,omitempty"`
	ThumbnailURL  *string `json:"thumbnailUrl" toml:"thumbnail_url,omitempty"`
}

// Merge copies every non-nil field of patch into v.
func (v *VideoFields) Merge(patch VideoFields) {
	if patch.VideoPath != nil {
		v.VideoPath = patch.VideoPath
	}
	if patch.VideoURL != nil {
		v.VideoURL = patch.VideoURL
	}
	if patch.VideoType != nil {
		v.VideoType = patch.VideoType
	}
	if patch.MuxUploadID != nil {
		v.MuxUploadID = patch.MuxUploadID
	}
	if patch.MuxAssetID != nil {
		v.MuxAssetID = patch.MuxAssetID
	}
	if patch.MuxPlaybackID != nil {
		v.MuxPlaybackID = patch.MuxPlaybackID
	}
	if patch.MuxStatus != nil {
		v.MuxStatus = patch.MuxStatus
	}
	if patch.ThumbnailURL != nil {
		v.ThumbnailURL = patch.ThumbnailURL
	}
}

// IsEmpty reports whether every field is unset.
func (v VideoFields) IsEmpty() bool {
	return v == VideoFields{}
}

// Status returns the tracked upload status, if any.
func (v VideoFields) Status() UploadStatus {
	if v.MuxStatus == nil {
		return ""
	}
	return UploadStatus(*v.MuxStatus)
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

// Class is a single piece of practice content owned by a teacher.
type Class struct {
	ID          string      `json:"id"`
	TeacherID   string      `json:"teacherId"`
	Kind        ContentKind `json:"kind"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Duration    int         `json:"duration"`
	Difficulty  Difficulty  `json:"difficulty"`
	Language    string      `json:"language"`
	CategoryID  *string     `json:"categoryId"`
	VideoFields
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Normalize trims input and fills defaults.
func (c *Class) Normalize() {
	c.Title = strings.TrimSpace(c.Title)
	c.Description = strings.TrimSpace(c.Description)
	c.Language = strings.ToLower(strings.TrimSpace(c.Language))
	if c.Kind == "" {
		c.Kind = ContentKindClass
	}
	if c.Difficulty == "" {
		c.Difficulty = DifficultyBeginner
	}
	if c.CategoryID != nil && strings.TrimSpace(*c.CategoryID) == "" {
		c.CategoryID = nil
	}
}

// Validate checks the fields a teacher supplies.
func (c Class) Validate() error {
	if c.Title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if len(c.Title) > 160 {
		return fmt.Errorf("%w: title is too long", ErrValidation)
	}
	if c.Duration < 0 {
		return fmt.Errorf("%w: duration must not be negative", ErrValidation)
	}
	switch c.Kind {
	case ContentKindClass, ContentKindMeditation, ContentKindBreathing:
	default:
		return fmt.Errorf("%w: unsupported kind %q", ErrValidation, c.Kind)
	}
	switch c.Difficulty {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
	default:
		return fmt.Errorf("%w: unsupported difficulty %q", ErrValidation, c.Difficulty)
	}
	if c.VideoType != nil {
		switch VideoType(*c.VideoType) {
		case VideoTypeMux, VideoTypeURL:
		default:
			return fmt.Errorf("%w: unsupported video type %q", ErrValidation, *c.VideoType)
		}
	}
	if s := c.Status(); s != "" && !s.Valid() {
		return fmt.Errorf("%w: unsupported mux status %q", ErrValidation, s)
	}
	return nil
}

// Course is an ordered playlist of classes.
type Course struct {
	ID          string     `json:"id"`
	TeacherID   string     `json:"teacherId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Difficulty  Difficulty `json:"difficulty"`
	Language    string     `json:"language"`
	Published   bool       `json:"published"`
	Classes     []Class    `json:"classes,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Validate checks the fields a teacher supplies.
func (c Course) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	switch c.Difficulty {
	case "", DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
	default:
		return fmt.Errorf("%w: unsupported difficulty %q", ErrValidation, c.Difficulty)
	}
	return nil
}

// PendingUpload is a persisted class whose video is still being transcoded.
type PendingUpload struct {
	ClassID  string
	UploadID string
	Status   UploadStatus
}
