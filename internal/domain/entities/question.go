package entities

import (
	"errors"
	"fmt"
	"strings"
)

// Category is the quiz format a question belongs to.
type Category string

const (
	CategorySynonym     Category = "synonym"
	CategoryAntonym     Category = "antonym"
	CategoryOddOneOut   Category = "odd_one_out"
	CategoryAnalogy     Category = "analogy"
	CategoryWordMeaning Category = "word_meaning"
	CategoryFillInBlank Category = "fill_in_blank"
)

// Categories lists every supported category.
var Categories = []Category{
	CategorySynonym,
	CategoryAntonym,
	CategoryWordMeaning,
	CategoryFillInBlank,
	CategoryAnalogy,
	CategoryOddOneOut,
}

// Valid reports whether c is one of the supported categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory converts user input into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// Difficulty is an optional question difficulty band.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Band returns the difficulty used for balancing; unspecified counts as medium.
func (d Difficulty) Band() Difficulty {
	switch d {
	case DifficultyEasy, DifficultyHard:
		return d
	default:
		return DifficultyMedium
	}
}

const (
	MinOptions = 2
	MaxOptions = 6
)

var (
	ErrInvalidCategory      = errors.New("invalid question category")
	ErrEmptyCorrectAnswer   = errors.New("question has no correct answer")
	ErrOptionCount          = errors.New("question must have between 2 and 6 options")
	ErrAnswerNotAmongOption = errors.New("correct answer is not among the options")
)

// Question is a read-only content item owned by the content store.
type Question struct {
	ID            int64
	Category      Category
	Text          string
	CorrectAnswer string
	Options       []string // multiple choice, may be empty for free-text questions
	Difficulty    Difficulty
	Active        bool
	Words         []string // normalized words associated with the question
}

// Validate checks the structural rules a question must satisfy before it is stored.
func (q *Question) Validate() error {
	if !q.Category.Valid() {
		return ErrInvalidCategory
	}
	if NormalizeText(q.CorrectAnswer) == "" {
		return ErrEmptyCorrectAnswer
	}
	if len(q.Options) == 0 {
		return nil
	}
	if len(q.Options) < MinOptions || len(q.Options) > MaxOptions {
		return ErrOptionCount
	}

	correct := NormalizeText(q.CorrectAnswer)
	for _, opt := range q.Options {
		if NormalizeText(opt) == correct {
			return nil
		}
	}
	return ErrAnswerNotAmongOption
}

// AssociatedWords returns the normalized, deduplicated words of the correct
// answer and every option, in first-seen order.
func (q *Question) AssociatedWords() []string {
	seen := make(map[string]struct{}, len(q.Options)+1)
	out := make([]string, 0, len(q.Options)+1)

	add := func(s string) {
		w := NormalizeWord(s)
		if w == "" {
			return
		}
		if _, ok := seen[w]; ok {
			return
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}

	add(q.CorrectAnswer)
	for _, opt := range q.Options {
		add(opt)
	}
	return out
}

// QuestionFilter narrows the active questions returned by the content store.
type QuestionFilter struct {
	Category Category // empty means any category
}

// WordQuestion is one word to question association.
type WordQuestion struct {
	Word       string
	QuestionID int64
	Category   Category
}

// CategoryCount is the number of active questions in a category.
type CategoryCount struct {
	Category      Category
	QuestionCount int
}
