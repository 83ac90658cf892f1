package helper

import (
	"fmt"
	"os"
	"regexp"

	"github.com/google/uuid"
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// GenerateUUID creates a random unique UUID string
func GenerateUUID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate UUID: %v", err)
	}
	return id.String(), nil
}

// CreateFolder makes the directory and its parents if missing
func CreateFolder(path string) error {
	return os.MkdirAll(path, 0o755)
}

// SafeFilename strips path tricks and odd characters from an uploaded
// filename and caps its length
func SafeFilename(name string) string {
	sanitized := unsafeFilenameChars.ReplaceAllString(name, "_")
	if len(sanitized) > 120 {
		sanitized = sanitized[:120]
	}
	if sanitized == "" {
		return "uploaded_file.txt"
	}
	return sanitized
}
