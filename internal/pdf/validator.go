package pdf

import (
	"fmt"
	"os"
	"strings"
)

// Validator handles PDF file validation operations
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a new PDF validator. A maxFileSize of zero disables
// the size limit.
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{
		maxFileSize: maxFileSize,
	}
}

// CheckFile verifies that filePath names a readable regular file within the
// size limit. Missing, directory and unreadable paths yield ErrNotFound.
func (v *Validator) CheckFile(filePath string) error {
	if filePath == "" {
		return fmt.Errorf("%w: path cannot be empty", ErrNotFound)
	}

	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNotFound, filePath, err)
	}

	if fileInfo.IsDir() {
		return fmt.Errorf("%w: path is a directory, not a file: %s", ErrNotFound, filePath)
	}

	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNotFound, filePath, err)
	}
	f.Close()

	if v.maxFileSize > 0 && fileInfo.Size() > v.maxFileSize {
		return fmt.Errorf("%w: %d bytes (max: %d bytes)", ErrFileTooLarge, fileInfo.Size(), v.maxFileSize)
	}

	return nil
}

// ValidateFileInfo performs basic validation on file info without opening the PDF
func (v *Validator) ValidateFileInfo(filePath string, fileInfo os.FileInfo) error {
	if fileInfo.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", filePath)
	}

	if !isPDFName(filePath) {
		return fmt.Errorf("file is not a PDF: %s", filePath)
	}

	if fileInfo.Size() == 0 {
		return fmt.Errorf("file is empty: %s", filePath)
	}

	if v.maxFileSize > 0 && fileInfo.Size() > v.maxFileSize {
		return fmt.Errorf("%w: %d bytes (max: %d bytes)", ErrFileTooLarge, fileInfo.Size(), v.maxFileSize)
	}

	return nil
}

func isPDFName(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".pdf")
}
