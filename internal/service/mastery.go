package service

import (
	"context"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/aliskhannn/lexiquiz/internal/domain/entities"
)

const wordsNeedingPracticeLimit = 10

// MasteryService serves the derived mastery read side.
type MasteryService struct {
	store  Store
	logger *zap.Logger
}

// NewMasteryService creates a new MasteryService.
func NewMasteryService(store Store, logger *zap.Logger) *MasteryService {
	return &MasteryService{store: store, logger: logger}
}

// GetWordMastery returns the word-level mastery of every word the user has encountered,
// highest percentage first.
func (s *MasteryService) GetWordMastery(ctx context.Context, userID int64) ([]entities.WordMastery, error) {
	const op = "mastery.GetWordMastery"

	if userID <= 0 {
		return nil, newError(KindValidation, op, ErrInvalidUser)
	}

	rows, err := s.store.Repos().Ledger.GetWordMastery(ctx, userID)
	if err != nil {
		return nil, wrap(op, err)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].MasteryPct != rows[j].MasteryPct {
			return rows[i].MasteryPct > rows[j].MasteryPct
		}
		return rows[i].Word < rows[j].Word
	})

	return rows, nil
}

// GetWordMasteryByCategory returns the per-category mastery rows ordered by word and category.
func (s *MasteryService) GetWordMasteryByCategory(ctx context.Context, userID int64) ([]entities.WordMastery, error) {
	const op = "mastery.GetWordMasteryByCategory"

	if userID <= 0 {
		return nil, newError(KindValidation, op, ErrInvalidUser)
	}

	rows, err := s.store.Repos().Ledger.GetWordMasteryByCategory(ctx, userID)
	if err != nil {
		return nil, wrap(op, err)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Word != rows[j].Word {
			return rows[i].Word < rows[j].Word
		}
		return rows[i].Category < rows[j].Category
	})

	return rows, nil
}

// GetProgressOverview summarizes the user's mastery.
func (s *MasteryService) GetProgressOverview(ctx context.Context, userID int64) (*entities.ProgressOverview, error) {
	const op = "mastery.GetProgressOverview"

	if userID <= 0 {
		return nil, newError(KindValidation, op, ErrInvalidUser)
	}

	repos := s.store.Repos()

	rows, err := repos.Ledger.GetWordMastery(ctx, userID)
	if err != nil {
		return nil, wrap(op, err)
	}

	attempted, mastered, err := repos.Ledger.CountUserQuestions(ctx, userID)
	if err != nil {
		return nil, wrap(op, err)
	}

	return buildOverview(userID, rows, attempted, mastered), nil
}

func buildOverview(userID int64, rows []entities.WordMastery, attempted, mastered int) *entities.ProgressOverview {
	ov := &entities.ProgressOverview{
		UserID:               userID,
		WordsEncountered:     len(rows),
		QuestionsEncountered: attempted,
		QuestionsMastered:    mastered,
	}
	if len(rows) == 0 {
		return ov
	}

	var sum float64
	practice := make([]entities.WordMastery, 0, len(rows))
	for _, m := range rows {
		sum += m.MasteryPct
		switch {
		case m.FullyMastered():
			ov.FullyMasteredWords++
		case m.MasteryPct > 0:
			ov.PartiallyMasteredWords++
		default:
			ov.UnmasteredWords++
		}
		if !m.FullyMastered() {
			practice = append(practice, m)
		}
	}

	ov.AverageWordMastery = math.Round(sum/float64(len(rows))*100) / 100
	ov.FullyMasteredPercentage = entities.MasteryPercentage(ov.FullyMasteredWords, len(rows))

	sort.SliceStable(practice, func(i, j int) bool {
		if practice[i].MasteryPct != practice[j].MasteryPct {
			return practice[i].MasteryPct < practice[j].MasteryPct
		}
		return practice[i].Word < practice[j].Word
	})
	ov.WordsNeedingPractice = takeFirst(practice, wordsNeedingPracticeLimit)

	return ov
}

// ListCategories returns every category with its number of active questions.
func (s *MasteryService) ListCategories(ctx context.Context) ([]entities.CategoryCount, error) {
	const op = "mastery.ListCategories"

	counts, err := s.store.Repos().Content.ListCategories(ctx)
	if err != nil {
		return nil, wrap(op, err)
	}
	return counts, nil
}
