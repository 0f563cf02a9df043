package game

import (
	"context"
	"log"
	"math/rand"
	"time"

	"knowball-service/internal/domain"
)

// QuestionSource fetches the full question pool (from cache/backing store).
type QuestionSource interface {
	FetchAll(ctx context.Context) ([]domain.Question, error)
}

// SeenStore persists the set of question IDs a user has already been shown.
type SeenStore interface {
	Load(ctx context.Context, userKey string) ([]string, error)
	Save(ctx context.Context, userKey string, ids []string) error
}

// Assembler builds difficulty-ramped rounds: an easy block, a medium block,
// then a hard block, each filled by quota with fixed fallback tiers.
type Assembler struct {
	source QuestionSource
	seen   SeenStore
	quotas domain.Quotas
	rnd    *rand.Rand
}

func NewAssembler(source QuestionSource, seen SeenStore, quotas domain.Quotas) *Assembler {
	return &Assembler{
		source: source,
		seen:   seen,
		quotas: quotas,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewAssemblerWithRand is test-only for deterministic selection.
func NewAssemblerWithRand(source QuestionSource, seen SeenStore, quotas domain.Quotas, rnd *rand.Rand) *Assembler {
	return &Assembler{source: source, seen: seen, quotas: quotas, rnd: rnd}
}

// AssembleRound produces one round of questions for userKey and records the
// newly shown IDs. Seen-history failures degrade to "may repeat sooner": a
// failed load counts as an empty set and a failed save is logged and dropped.
// An empty pool yields an empty round; the caller substitutes a fallback set.
func (a *Assembler) AssembleRound(ctx context.Context, userKey string) ([]domain.Question, error) {
	pool, err := a.source.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, nil
	}

	seenIDs, err := a.seen.Load(ctx, userKey)
	if err != nil {
		log.Printf("seen-set load failed for %s, starting empty: %v", userKey, err)
		seenIDs = nil
	}
	seen := make(map[string]struct{}, len(seenIDs))
	for _, id := range seenIDs {
		seen[id] = struct{}{}
	}

	unseen := make([]domain.Question, 0, len(pool))
	for _, q := range pool {
		if _, ok := seen[q.ID]; !ok {
			unseen = append(unseen, q)
		}
	}

	// Exhaustion reset: rather than serve a short round, discard the seen
	// history and draw from the whole pool again.
	if len(unseen) < a.quotas.Total() {
		unseen = pool
		seenIDs = nil
	}

	easy := SelectByDifficulty(a.rnd, unseen, a.quotas.Easy, domain.DifficultyEasy, domain.DifficultyMedium)
	rest := exclude(unseen, easy)
	medium := SelectByDifficulty(a.rnd, rest, a.quotas.Medium, domain.DifficultyMedium, domain.DifficultyEasy, domain.DifficultyHard)
	rest = exclude(rest, medium)
	hard := SelectByDifficulty(a.rnd, rest, a.quotas.Hard, domain.DifficultyHard, domain.DifficultyMedium)

	round := make([]domain.Question, 0, len(easy)+len(medium)+len(hard))
	round = append(round, easy...)
	round = append(round, medium...)
	round = append(round, hard...)

	// Each question gets its own independently shuffled option order without
	// touching the shared pool.
	for i := range round {
		round[i].Options = Shuffled(a.rnd, round[i].Options)
	}

	updated := append(seenIDs, questionIDs(round)...)
	if err := a.seen.Save(ctx, userKey, updated); err != nil {
		log.Printf("seen-set save failed for %s: %v", userKey, err)
	}

	return round, nil
}

func exclude(pool, taken []domain.Question) []domain.Question {
	ids := make(map[string]struct{}, len(taken))
	for _, q := range taken {
		ids[q.ID] = struct{}{}
	}
	out := make([]domain.Question, 0, len(pool))
	for _, q := range pool {
		if _, ok := ids[q.ID]; !ok {
			out = append(out, q)
		}
	}
	return out
}

func questionIDs(qs []domain.Question) []string {
	ids := make([]string, len(qs))
	for i, q := range qs {
		ids[i] = q.ID
	}
	return ids
}
