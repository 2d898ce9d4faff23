package service

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/lexiquiz/internal/domain/entities"
)

const (
	RelaxMasteredWords   = "mastered_words"
	RelaxRecentQuestions = "recent_questions"
)

// SelectorConfig holds the balancing rules of the selector.
type SelectorConfig struct {
	// CategoryDistribution is the relative weight of each category; empty disables stratification.
	CategoryDistribution map[entities.Category]int
	// DifficultyDistribution is the wanted share of each difficulty band inside a category.
	DifficultyDistribution map[entities.Difficulty]float64
	// CategoryOrder defines category proximity for backfilling short buckets.
	CategoryOrder []entities.Category
	// Seed fixes the random source; zero seeds from the clock.
	Seed int64
}

// SelectRequest describes one question set to select.
type SelectRequest struct {
	UserID          int64
	TargetCount     int
	Category        entities.Category // empty means any category
	ExcludeMastered bool
	RecentBatches   int // how many recent window batches to exclude
}

// Selection is the selected question set in presentation order.
type Selection struct {
	Questions   []*entities.Question
	Requested   int
	Relaxations []string
	Short       bool
}

// IDs returns the question ids in presentation order.
func (s *Selection) IDs() []int64 {
	ids := make([]int64, len(s.Questions))
	for i, q := range s.Questions {
		ids[i] = q.ID
	}
	return ids
}

// QuestionSelector implements question selection for quiz rounds.
type QuestionSelector struct {
	store  Store
	window RecentWindow
	cfg    SelectorConfig
	logger *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewQuestionSelector creates a new QuestionSelector.
func NewQuestionSelector(store Store, window RecentWindow, cfg SelectorConfig, logger *zap.Logger) *QuestionSelector {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if len(cfg.CategoryOrder) == 0 {
		cfg.CategoryOrder = entities.Categories
	}

	return &QuestionSelector{
		store:  store,
		window: window,
		cfg:    cfg,
		logger: logger,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// SelectQuestions selects up to TargetCount active questions for the user.
//
// The recent window and fully mastered words are excluded first. When that
// leaves too few candidates the exclusions are relaxed, mastered words first,
// then recency. Only an empty content store is an error.
func (s *QuestionSelector) SelectQuestions(ctx context.Context, req SelectRequest) (*Selection, error) {
	return s.selectFrom(ctx, s.store.Repos(), req)
}

func (s *QuestionSelector) selectFrom(ctx context.Context, repos Repositories, req SelectRequest) (*Selection, error) {
	if req.TargetCount <= 0 {
		return nil, ErrInvalidQuestionCount
	}

	pool, err := repos.Content.GetActiveQuestions(ctx, entities.QuestionFilter{Category: req.Category})
	if err != nil {
		return nil, fmt.Errorf("get active questions: %w", err)
	}
	if len(pool) == 0 {
		return nil, ErrNoQuestionsAvailable
	}

	recent, err := s.recentSet(ctx, req.UserID, req.RecentBatches)
	if err != nil {
		return nil, err
	}

	mastered := map[string]struct{}{}
	if req.ExcludeMastered {
		mastered, err = s.masteredWords(ctx, repos, req.UserID)
		if err != nil {
			return nil, err
		}
	}

	// Tier 0 passes every exclusion, tier 1 only the recency one, tier 2 is the rest.
	var tiers [3][]*entities.Question
	for _, q := range pool {
		_, isRecent := recent[q.ID]
		switch {
		case isRecent:
			tiers[2] = append(tiers[2], q)
		case allWordsMastered(q, mastered):
			tiers[1] = append(tiers[1], q)
		default:
			tiers[0] = append(tiers[0], q)
		}
	}

	sel := &Selection{Requested: req.TargetCount}

	s.mu.Lock()
	defer s.mu.Unlock()

	sel.Questions = s.stratify(tiers[0], req.TargetCount, req.Category)
	if len(sel.Questions) < req.TargetCount && len(tiers[1]) > 0 {
		sel.Relaxations = append(sel.Relaxations, RelaxMasteredWords)
		sel.Questions = append(sel.Questions, s.stratify(tiers[1], req.TargetCount-len(sel.Questions), req.Category)...)
	}
	if len(sel.Questions) < req.TargetCount && len(tiers[2]) > 0 {
		sel.Relaxations = append(sel.Relaxations, RelaxRecentQuestions)
		sel.Questions = append(sel.Questions, s.stratify(tiers[2], req.TargetCount-len(sel.Questions), req.Category)...)
	}

	s.rng.Shuffle(len(sel.Questions), func(i, j int) {
		sel.Questions[i], sel.Questions[j] = sel.Questions[j], sel.Questions[i]
	})
	sel.Short = len(sel.Questions) < req.TargetCount

	if len(sel.Relaxations) > 0 {
		s.logger.Warn("question exclusions relaxed",
			zap.Int64("user_id", req.UserID),
			zap.Int("requested", req.TargetCount),
			zap.Int("actual", len(sel.Questions)),
			zap.Strings("relaxations", sel.Relaxations),
		)
	}

	return sel, nil
}

// SelectScoped returns exactly the given questions in the given order.
// Retry rounds use it so that no question is added or substituted.
func (s *QuestionSelector) SelectScoped(ctx context.Context, repos Repositories, ids []int64) ([]*entities.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	qs, err := repos.Content.GetQuestionsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get scoped questions: %w", err)
	}
	return qs, nil
}

// MarkPresented pushes a presented round into the user's recent window.
func (s *QuestionSelector) MarkPresented(ctx context.Context, userID int64, ids []int64) {
	if len(ids) == 0 {
		return
	}
	if err := s.window.Push(ctx, userID, ids); err != nil {
		s.logger.Warn("failed to update recent question window",
			zap.Int64("user_id", userID),
			zap.Int("questions", len(ids)),
			zap.Error(err),
		)
	}
}

func (s *QuestionSelector) recentSet(ctx context.Context, userID int64, batches int) (map[int64]struct{}, error) {
	out := map[int64]struct{}{}
	if batches <= 0 {
		return out, nil
	}

	ids, err := s.window.Recent(ctx, userID, batches)
	if err != nil {
		return nil, fmt.Errorf("get recent questions: %w", err)
	}
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, nil
}

func (s *QuestionSelector) masteredWords(ctx context.Context, repos Repositories, userID int64) (map[string]struct{}, error) {
	rows, err := repos.Ledger.GetWordMastery(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get word mastery: %w", err)
	}

	out := make(map[string]struct{}, len(rows))
	for _, m := range rows {
		if !m.FullyMastered() {
			continue
		}

		// The derived row may predate content changes, so confirm it against live associations.
		assoc, err := repos.Content.GetQuestionsForWord(ctx, m.Word)
		if err != nil {
			return nil, fmt.Errorf("get questions for word: %w", err)
		}
		entries, err := repos.Ledger.GetWordEntries(ctx, userID, m.Word)
		if err != nil {
			return nil, fmt.Errorf("get word entries: %w", err)
		}
		if live, _ := aggregate(userID, m.Word, assoc, entries, m.UpdatedAt); live.FullyMastered() {
			out[m.Word] = struct{}{}
		}
	}
	return out, nil
}

// allWordsMastered reports whether every word of q is fully mastered.
// A question without words is never excluded.
func allWordsMastered(q *entities.Question, mastered map[string]struct{}) bool {
	if len(q.Words) == 0 || len(mastered) == 0 {
		return false
	}
	for _, w := range q.Words {
		if _, ok := mastered[w]; !ok {
			return false
		}
	}
	return true
}

// stratify samples n questions from pool without replacement.
// Category quotas are honored when a distribution is configured and no category was requested;
// short buckets are backfilled from the closest category first, then from any.
// The caller must hold s.mu.
func (s *QuestionSelector) stratify(pool []*entities.Question, n int, only entities.Category) []*entities.Question {
	if n <= 0 || len(pool) == 0 {
		return nil
	}

	if only != "" || len(s.cfg.CategoryDistribution) == 0 {
		ordered := s.orderByDifficulty(pool, n)
		return takeFirst(ordered, n)
	}

	buckets := make(map[entities.Category][]*entities.Question)
	for _, q := range pool {
		buckets[q.Category] = append(buckets[q.Category], q)
	}

	quotas := scaleQuotas(s.cfg.CategoryDistribution, s.cfg.CategoryOrder, n)
	for cat, bucket := range buckets {
		buckets[cat] = s.orderByDifficulty(bucket, quotas[cat])
	}

	out := make([]*entities.Question, 0, n)
	var short []entities.Category
	deficit := make(map[entities.Category]int)

	for _, cat := range s.cfg.CategoryOrder {
		q := quotas[cat]
		if q == 0 {
			continue
		}
		got := takeFirst(buckets[cat], q)
		out = append(out, got...)
		buckets[cat] = buckets[cat][len(got):]
		if len(got) < q {
			short = append(short, cat)
			deficit[cat] = q - len(got)
		}
	}

	for _, cat := range short {
		for _, near := range closestCategories(cat, s.cfg.CategoryOrder) {
			if deficit[cat] == 0 {
				break
			}
			got := takeFirst(buckets[near], deficit[cat])
			out = append(out, got...)
			buckets[near] = buckets[near][len(got):]
			deficit[cat] -= len(got)
		}
	}

	if len(out) < n {
		var rest []*entities.Question
		for _, cat := range s.cfg.CategoryOrder {
			rest = append(rest, buckets[cat]...)
			delete(buckets, cat)
		}
		// Categories outside the configured order.
		var others []entities.Category
		for cat := range buckets {
			others = append(others, cat)
		}
		sort.Slice(others, func(i, j int) bool { return others[i] < others[j] })
		for _, cat := range others {
			rest = append(rest, buckets[cat]...)
		}

		s.rng.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })
		out = append(out, takeFirst(rest, n-len(out))...)
	}

	return out
}

// orderByDifficulty returns a shuffled copy of bucket whose first k questions
// follow the difficulty distribution as closely as the bucket allows.
// The caller must hold s.mu.
func (s *QuestionSelector) orderByDifficulty(bucket []*entities.Question, k int) []*entities.Question {
	out := append([]*entities.Question(nil), bucket...)
	s.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })

	if len(s.cfg.DifficultyDistribution) == 0 || k <= 0 || k >= len(out) {
		return out
	}

	bands := []entities.Difficulty{entities.DifficultyEasy, entities.DifficultyMedium, entities.DifficultyHard}
	byBand := make(map[entities.Difficulty][]*entities.Question, len(bands))
	for _, q := range out {
		b := q.Difficulty.Band()
		byBand[b] = append(byBand[b], q)
	}

	weights := make(map[entities.Difficulty]int, len(bands))
	for _, b := range bands {
		weights[b] = int(s.cfg.DifficultyDistribution[b] * 1000)
	}
	quotas := scaleQuotas(weights, bands, k)

	head := make([]*entities.Question, 0, len(out))
	picked := make(map[int64]struct{}, k)
	for _, b := range bands {
		for _, q := range takeFirst(byBand[b], quotas[b]) {
			head = append(head, q)
			picked[q.ID] = struct{}{}
		}
	}
	for _, q := range out {
		if _, ok := picked[q.ID]; !ok {
			head = append(head, q)
		}
	}
	return head
}

// scaleQuotas scales weights to sum to n using the largest remainder method.
// Ties are broken by the position in order.
func scaleQuotas[K comparable](weights map[K]int, order []K, n int) map[K]int {
	quotas := make(map[K]int, len(weights))

	total := 0
	for _, k := range order {
		if w := weights[k]; w > 0 {
			total += w
		}
	}
	if total == 0 || n <= 0 {
		return quotas
	}

	type rem struct {
		key   K
		frac  int
		index int
	}
	rems := make([]rem, 0, len(order))
	assigned := 0
	for i, k := range order {
		w := weights[k]
		if w <= 0 {
			continue
		}
		quotas[k] = w * n / total
		assigned += quotas[k]
		rems = append(rems, rem{key: k, frac: w * n % total, index: i})
	}

	sort.SliceStable(rems, func(i, j int) bool {
		if rems[i].frac != rems[j].frac {
			return rems[i].frac > rems[j].frac
		}
		return rems[i].index < rems[j].index
	})
	for i := 0; assigned < n && len(rems) > 0; i++ {
		quotas[rems[i%len(rems)].key]++
		assigned++
	}

	return quotas
}

// closestCategories lists the other categories of order by distance from cat.
// At equal distance the earlier category wins.
func closestCategories(cat entities.Category, order []entities.Category) []entities.Category {
	pos := -1
	for i, c := range order {
		if c == cat {
			pos = i
			break
		}
	}
	if pos < 0 {
		return nil
	}

	out := make([]entities.Category, 0, len(order)-1)
	for d := 1; d < len(order); d++ {
		if i := pos - d; i >= 0 {
			out = append(out, order[i])
		}
		if i := pos + d; i < len(order) {
			out = append(out, order[i])
		}
	}
	return out
}

// takeFirst returns the first n elements of in, or the whole slice if it is shorter.
func takeFirst[T any](in []T, n int) []T {
	if n <= 0 {
		return nil
	}
	if len(in) <= n {
		return in
	}
	return in[:n]
}
