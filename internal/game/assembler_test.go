package game

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"knowball-service/internal/domain"
)

type staticSource struct {
	pool []domain.Question
	err  error
}

func (s *staticSource) FetchAll(context.Context) ([]domain.Question, error) {
	return s.pool, s.err
}

type fakeSeenStore struct {
	sets    map[string][]string
	loadErr error
	saveErr error
}

func newFakeSeenStore() *fakeSeenStore {
	return &fakeSeenStore{sets: make(map[string][]string)}
}

func (s *fakeSeenStore) Load(_ context.Context, userKey string) ([]string, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.sets[userKey], nil
}

func (s *fakeSeenStore) Save(_ context.Context, userKey string, ids []string) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.sets[userKey] = ids
	return nil
}

func fullPool() []domain.Question {
	pool := makeQuestions(domain.DifficultyEasy, 3)
	pool = append(pool, makeQuestions(domain.DifficultyMedium, 4)...)
	pool = append(pool, makeQuestions(domain.DifficultyHard, 3)...)
	return pool
}

func newTestAssembler(source QuestionSource, seen SeenStore) *Assembler {
	return NewAssemblerWithRand(source, seen, domain.DefaultQuotas(), rand.New(rand.NewSource(7)))
}

func TestAssembleRoundOrdering(t *testing.T) {
	seen := newFakeSeenStore()
	a := newTestAssembler(&staticSource{pool: fullPool()}, seen)

	round, err := a.AssembleRound(context.Background(), "u1")
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if len(round) != 10 {
		t.Fatalf("expected 10 questions, got %d", len(round))
	}
	for i, q := range round[:3] {
		if q.Difficulty != domain.DifficultyEasy {
			t.Fatalf("question %d: expected easy block, got %s", i, q.Difficulty)
		}
	}
	for i, q := range round[3:7] {
		if q.Difficulty != domain.DifficultyMedium {
			t.Fatalf("question %d: expected medium block, got %s", i+3, q.Difficulty)
		}
	}
	for i, q := range round[7:] {
		if q.Difficulty != domain.DifficultyHard {
			t.Fatalf("question %d: expected hard block, got %s", i+7, q.Difficulty)
		}
	}

	ids := make(map[string]bool)
	for _, q := range round {
		if ids[q.ID] {
			t.Fatalf("duplicate question %s in round", q.ID)
		}
		ids[q.ID] = true
	}
	if len(seen.sets["u1"]) != 10 {
		t.Fatalf("expected 10 seen IDs recorded, got %d", len(seen.sets["u1"]))
	}
}

func TestAssembleRoundFiltersSeen(t *testing.T) {
	pool := fullPool()
	pool = append(pool, makeQuestions(domain.DifficultyEasy, 5)...)
	pool = append(pool, makeQuestions(domain.DifficultyMedium, 5)...)
	pool = append(pool, makeQuestions(domain.DifficultyHard, 5)...)
	// Duplicate IDs from makeQuestions reuse: rebuild with unique suffixes.
	for i := range pool {
		pool[i].ID = pool[i].ID + "#" + string(rune('a'+i))
	}

	seen := newFakeSeenStore()
	seen.sets["u1"] = []string{pool[0].ID, pool[1].ID}
	a := newTestAssembler(&staticSource{pool: pool}, seen)

	round, err := a.AssembleRound(context.Background(), "u1")
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	for _, q := range round {
		if q.ID == pool[0].ID || q.ID == pool[1].ID {
			t.Fatalf("seen question %s selected again", q.ID)
		}
	}
	if len(seen.sets["u1"]) != 12 {
		t.Fatalf("expected prior 2 + 10 new seen IDs, got %d", len(seen.sets["u1"]))
	}
}

func TestAssembleRoundExhaustionReset(t *testing.T) {
	pool := fullPool()
	allIDs := make([]string, len(pool))
	for i, q := range pool {
		allIDs[i] = q.ID
	}

	seen := newFakeSeenStore()
	seen.sets["u1"] = allIDs // everything seen: unseen < round size
	a := newTestAssembler(&staticSource{pool: pool}, seen)

	round, err := a.AssembleRound(context.Background(), "u1")
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if len(round) != 10 {
		t.Fatalf("expected full round after reset, got %d", len(round))
	}
	// Prior history is discarded: only the current round's IDs remain.
	if len(seen.sets["u1"]) != 10 {
		t.Fatalf("expected seen set reset to 10 IDs, got %d", len(seen.sets["u1"]))
	}
}

func TestAssembleRoundSeenLoadFailureSoft(t *testing.T) {
	seen := newFakeSeenStore()
	seen.loadErr = errors.New("store down")
	a := newTestAssembler(&staticSource{pool: fullPool()}, seen)

	round, err := a.AssembleRound(context.Background(), "u1")
	if err != nil {
		t.Fatalf("expected soft-fail on seen load, got %v", err)
	}
	if len(round) != 10 {
		t.Fatalf("expected full round, got %d", len(round))
	}
}

func TestAssembleRoundSeenSaveFailureSoft(t *testing.T) {
	seen := newFakeSeenStore()
	seen.saveErr = errors.New("store down")
	a := newTestAssembler(&staticSource{pool: fullPool()}, seen)

	if _, err := a.AssembleRound(context.Background(), "u1"); err != nil {
		t.Fatalf("expected save failure swallowed, got %v", err)
	}
}

func TestAssembleRoundEmptyPool(t *testing.T) {
	a := newTestAssembler(&staticSource{}, newFakeSeenStore())

	round, err := a.AssembleRound(context.Background(), "u1")
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if len(round) != 0 {
		t.Fatalf("expected empty round for empty pool, got %d", len(round))
	}
}

func TestAssembleRoundShortPool(t *testing.T) {
	pool := makeQuestions(domain.DifficultyMedium, 4)
	a := newTestAssembler(&staticSource{pool: pool}, newFakeSeenStore())

	round, err := a.AssembleRound(context.Background(), "u1")
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if len(round) == 0 || len(round) > 4 {
		t.Fatalf("expected reduced-length round of at most 4, got %d", len(round))
	}
}

func TestAssembleRoundShufflesOptionsPerQuestion(t *testing.T) {
	pool := fullPool()
	for i := range pool {
		pool[i].Options = []string{"a", "b", "c", "d"}
		pool[i].CorrectAnswer = "a"
	}
	a := newTestAssembler(&staticSource{pool: pool}, newFakeSeenStore())

	round, err := a.AssembleRound(context.Background(), "u1")
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	reordered := false
	for _, q := range round {
		if len(q.Options) != 4 {
			t.Fatalf("options lost during shuffle: %v", q.Options)
		}
		if q.Options[0] != "a" || q.Options[1] != "b" || q.Options[2] != "c" || q.Options[3] != "d" {
			reordered = true
		}
	}
	if !reordered {
		t.Fatalf("no question had its options reordered across 10 questions")
	}
	// Shared pool must stay untouched.
	for _, q := range pool {
		if q.Options[0] != "a" || q.Options[3] != "d" {
			t.Fatalf("pool options mutated: %v", q.Options)
		}
	}
}
