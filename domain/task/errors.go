package task

import "errors"

var (
	// ErrAccessDenied indicates the principal may not perform the operation.
	ErrAccessDenied = errors.New("access denied")
	// ErrTaskNotFound indicates the task does not exist.
	ErrTaskNotFound = errors.New("task not found")
	// ErrDocumentNotFound indicates the document record does not exist.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrInvalidReference indicates assigned_to does not resolve to a user.
	ErrInvalidReference = errors.New("invalid assignee reference")
	// ErrDocumentLimitExceeded indicates the attach would exceed the per-task cap.
	ErrDocumentLimitExceeded = errors.New("document limit exceeded")
	// ErrInvalidFileType indicates an attachment is not a PDF.
	ErrInvalidFileType = errors.New("invalid file type, only PDF documents are allowed")
	// ErrEmptyDocument indicates an attachment carries no content.
	ErrEmptyDocument = errors.New("document must not be empty")
	// ErrContentMissing indicates the document record exists but its blob is gone.
	ErrContentMissing = errors.New("document content missing")
)
