package service

import (
	"strings"
	"unicode"
)

// AnswerValidator checks submitted answers against the correct answer.
// Matching is exact after case and whitespace normalization.
type AnswerValidator struct{}

// NewAnswerValidator creates a new AnswerValidator.
func NewAnswerValidator() *AnswerValidator {
	return &AnswerValidator{}
}

// Validate checks if the user's answer matches the correct answer.
func (v *AnswerValidator) Validate(userAnswer, correctAnswer string) bool {
	correct := v.normalize(correctAnswer)
	if correct == "" {
		return false
	}
	return v.normalize(userAnswer) == correct
}

// normalize normalizes a string for comparison.
func (v *AnswerValidator) normalize(s string) string {
	// Convert to lowercase
	s = strings.ToLower(s)

	// Drop zero-width and other invisible runes pasted along with answers
	s = strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Cf, r) {
			return -1
		}
		return r
	}, s)

	// Remove extra whitespace
	s = strings.Join(strings.Fields(s), " ")

	return s
}
