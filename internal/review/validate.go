package review

import (
	"strings"
	"unicode/utf8"
)

// MinCommentLength is the shortest accepted comment, in characters.
const MinCommentLength = 3

// ValidationError describes why a review was rejected. Messages from the data
// source are carried verbatim.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// ValidateInput checks what can be checked before submitting: the rating must
// be 1-5 and the trimmed comment at least MinCommentLength characters.
func ValidateInput(rating int, comment string) error {
	if rating < 1 || rating > 5 {
		return &ValidationError{Field: "rating", Message: "must be between 1 and 5"}
	}
	if utf8.RuneCountInString(strings.TrimSpace(comment)) < MinCommentLength {
		return &ValidationError{Field: "comment", Message: "must be at least 3 characters"}
	}
	return nil
}
