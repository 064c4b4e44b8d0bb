package domain

import "strings"

const (
	// MaxTitleLen and MaxDescriptionLen bound field lengths after trimming.
	MaxTitleLen       = 100
	MaxDescriptionLen = 500

	// EmptyDescription is the normalized value stored when a description is
	// empty or absent. "Explicitly cleared" and "never set" are not
	// distinguished downstream.
	EmptyDescription = "no description"
)

// ValidateTitle trims the title and checks it against the field rules,
// returning the value to persist.
func ValidateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ValidationError{Field: "title", Rule: "must not be empty"}
	}
	if len([]rune(title)) > MaxTitleLen {
		return "", ValidationError{Field: "title", Rule: "must be at most 100 characters"}
	}
	return title, nil
}

// ValidateDescription trims and length-checks the description, normalizing
// an empty value to EmptyDescription.
func ValidateDescription(description string) (string, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return EmptyDescription, nil
	}
	if len([]rune(description)) > MaxDescriptionLen {
		return "", ValidationError{Field: "description", Rule: "must be at most 500 characters"}
	}
	return description, nil
}

// ValidateID checks that id is a positive integer.
func ValidateID(id int64) error {
	if id <= 0 {
		return ValidationError{Field: "id", Rule: "must be a positive integer"}
	}
	return nil
}
