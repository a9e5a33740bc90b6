package usecase

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"kanladin-backend/pkg/apperrors"
)

const maxTitleLength = 100

// validateTitle trims title and enforces 1..100 characters
func validateTitle(title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", apperrors.NewValidation("Title is required")
	}
	if utf8.RuneCountInString(trimmed) > maxTitleLength {
		return "", apperrors.NewValidation("Title must be at most %d characters", maxTitleLength)
	}
	return trimmed, nil
}

// newID returns prefix-<8 hex chars>, e.g. card-1a2b3c4d
var newID = func(prefix string) string {
	return prefix + "-" + strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}
