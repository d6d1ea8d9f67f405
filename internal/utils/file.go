package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Extensions the analysis service accepts for resume uploads.
var resumeExtensions = []string{".pdf", ".doc", ".docx", ".txt", ".md", ".rtf"}

// Extensions treated as plain-text answer files (one answer per line).
var answerExtensions = []string{".txt", ".text", ".md", ".markdown"}

// ValidateInputFile checks that a path points at an existing, readable file.
func ValidateInputFile(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	info, err := os.Stat(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s", filename)
		}
		return fmt.Errorf("cannot access file %s: %w", filename, err)
	}

	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", filename)
	}

	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("cannot read file %s: %w", filename, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close file %s: %w", filename, err)
	}

	return nil
}

// ValidateOutputFile checks that an output path is usable, creating parent
// directories as needed. An empty path means stdout.
func ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil
	}

	dir := filepath.Dir(filename)
	if dir != "." {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("cannot create directory %s: %w", dir, err)
			}
		}
	}

	return nil
}

// GetFileExtension returns the file extension in lowercase.
func GetFileExtension(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// IsAnswersFile reports whether the file looks like a plain-text answers file.
func IsAnswersFile(filename string) bool {
	return slices.Contains(answerExtensions, GetFileExtension(filename))
}

// IsResumeFile reports whether the extension is one the analysis service
// accepts for resume uploads.
func IsResumeFile(filename string) bool {
	return slices.Contains(resumeExtensions, GetFileExtension(filename))
}
