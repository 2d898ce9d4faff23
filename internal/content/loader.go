// Package content loads vocabulary seed files into a content store.
package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/aliskhannn/lexiquiz/internal/domain/entities"
	"github.com/aliskhannn/lexiquiz/pkg/validator"
)

// Seeder is the write side of a content store.
type Seeder interface {
	AddWord(ctx context.Context, w entities.Word) error
	AddQuestion(ctx context.Context, q *entities.Question) (int64, error)
}

// File is the YAML layout of a seed file.
type File struct {
	Words     []WordSpec     `yaml:"words" validate:"dive"`
	Questions []QuestionSpec `yaml:"questions" validate:"dive"`
}

// WordSpec is one word entry of a seed file.
type WordSpec struct {
	Text    string `yaml:"text" validate:"required"`
	Meaning string `yaml:"meaning"`
}

// QuestionSpec is one question entry of a seed file.
type QuestionSpec struct {
	ID            int64    `yaml:"id" validate:"min=0"`
	Category      string   `yaml:"category" validate:"required"`
	Text          string   `yaml:"text" validate:"required"`
	CorrectAnswer string   `yaml:"correct_answer" validate:"required"`
	Options       []string `yaml:"options" validate:"omitempty,min=2,max=6"`
	Difficulty    string   `yaml:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Active        *bool    `yaml:"active"` // defaults to true
	Words         []string `yaml:"words"`  // extra words besides the answer and options
}

// Stats counts what a seed run stored.
type Stats struct {
	Words     int
	Questions int
}

// Load decodes and validates a seed document.
func Load(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("decode content: %w", err)
	}
	if err := validator.ValidateStruct(&f); err != nil {
		return nil, fmt.Errorf("invalid content: %w", err)
	}
	return &f, nil
}

// LoadFile reads a seed document from path.
func LoadFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open content file: %w", err)
	}
	defer fh.Close()

	return Load(fh)
}

// Question converts the entry into a domain question.
func (q QuestionSpec) Question() (*entities.Question, error) {
	cat, err := entities.ParseCategory(q.Category)
	if err != nil {
		return nil, err
	}

	active := true
	if q.Active != nil {
		active = *q.Active
	}

	return &entities.Question{
		ID:            q.ID,
		Category:      cat,
		Text:          q.Text,
		CorrectAnswer: q.CorrectAnswer,
		Options:       q.Options,
		Difficulty:    entities.Difficulty(q.Difficulty),
		Active:        active,
		Words:         q.Words,
	}, nil
}

// Seed writes every word and question of f into the store.
// It stops at the first failing entry.
func Seed(ctx context.Context, store Seeder, f *File, logger *zap.Logger) (Stats, error) {
	var stats Stats

	for _, w := range f.Words {
		if err := store.AddWord(ctx, entities.Word{Text: w.Text, Meaning: w.Meaning}); err != nil {
			return stats, fmt.Errorf("seed word %q: %w", w.Text, err)
		}
		stats.Words++
	}

	for i, spec := range f.Questions {
		q, err := spec.Question()
		if err != nil {
			return stats, fmt.Errorf("seed question #%d: %w", i+1, err)
		}
		if _, err := store.AddQuestion(ctx, q); err != nil {
			return stats, fmt.Errorf("seed question #%d: %w", i+1, err)
		}
		stats.Questions++
	}

	logger.Info("content seeded",
		zap.Int("words", stats.Words),
		zap.Int("questions", stats.Questions),
	)

	return stats, nil
}

// SeedFile loads path and seeds it into the store.
func SeedFile(ctx context.Context, store Seeder, path string, logger *zap.Logger) (Stats, error) {
	f, err := LoadFile(path)
	if err != nil {
		return Stats{}, err
	}
	return Seed(ctx, store, f, logger)
}
