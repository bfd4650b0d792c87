package pdf

import "errors"

var (
	// ErrNotFound is returned when a document path is missing, is a directory
	// or cannot be opened for reading. No extraction attempt is made.
	ErrNotFound = errors.New("document not found")

	// ErrExtractionFailed is returned when neither strategy produced usable text.
	ErrExtractionFailed = errors.New("could not extract text from PDF")

	// ErrFileTooLarge is returned for documents above the configured size limit.
	ErrFileTooLarge = errors.New("file too large")
)
