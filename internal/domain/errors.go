package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid upload status transition")
	ErrUploadRejected    = errors.New("upload session rejected")
	ErrStalled           = errors.New("upload status polling stalled")
	ErrConflict          = errors.New("conflict")
)
