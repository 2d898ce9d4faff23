package entities

import "strings"

// Word is a vocabulary token. Its identity is the normalized text.
type Word struct {
	Text    string
	Meaning string
}

// NormalizeText lowercases s, trims it and collapses inner whitespace.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// NormalizeWord returns the identity form of a word.
func NormalizeWord(s string) string {
	return NormalizeText(s)
}
