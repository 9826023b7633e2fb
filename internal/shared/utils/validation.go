package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxJSONSize is the largest request body accepted by the tool API.
const MaxJSONSize = 1 * 1024 * 1024 // 1MB

// String length limits
const (
	MaxIDLength       = 128
	MaxCategoryLength = 64
	MaxQueryLength    = 1024
)

// Regular expressions for validation
var (
	// ToolIDPattern allows alphanumeric, hyphens, underscores, and dots (for service.tool format)
	ToolIDPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)
	// CategoryPattern allows lowercase letters, numbers, and hyphens
	CategoryPattern = regexp.MustCompile(`^[a-z0-9-]+$`)
)

// ValidateString validates a string field with length and content checks
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if required && value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}

	if value == "" && !required {
		return nil // Optional field, empty is OK
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", fieldName, maxLen)
	}

	// Check for null bytes (security issue)
	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}

	return nil
}

// ValidateToolID validates a tool ID field (allows dots for service.tool format)
func ValidateToolID(id, fieldName string, required bool) error {
	if err := ValidateString(id, fieldName, 1, MaxIDLength, required); err != nil {
		return err
	}

	if id != "" && !ToolIDPattern.MatchString(id) {
		return fmt.Errorf("%s contains invalid characters (only alphanumeric, dots, hyphens, and underscores allowed)", fieldName)
	}

	return nil
}

// ValidateCategory validates a category field
func ValidateCategory(category string, required bool) error {
	if err := ValidateString(category, "category", 0, MaxCategoryLength, required); err != nil {
		return err
	}

	if category != "" && !CategoryPattern.MatchString(category) {
		return fmt.Errorf("category must contain only lowercase letters, numbers, and hyphens")
	}

	return nil
}

// ValidateQuery validates a free-text discovery query
func ValidateQuery(query string) error {
	return ValidateString(query, "q", 1, MaxQueryLength, false)
}
