package game

import (
	"fmt"
	"math/rand"
	"testing"

	"knowball-service/internal/domain"
)

func makeQuestions(difficulty domain.Difficulty, count int) []domain.Question {
	out := make([]domain.Question, count)
	for i := range out {
		out[i] = domain.Question{
			ID:            fmt.Sprintf("%s-%d", difficulty, i),
			Prompt:        fmt.Sprintf("question %s %d", difficulty, i),
			Options:       []string{"right", "wrong"},
			CorrectAnswer: "right",
			Difficulty:    difficulty,
		}
	}
	return out
}

func TestSelectNeverExceedsTarget(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	pool := makeQuestions(domain.DifficultyEasy, 10)

	got := SelectByDifficulty(rnd, pool, 4, domain.DifficultyEasy)
	if len(got) != 4 {
		t.Fatalf("expected 4 questions, got %d", len(got))
	}
}

func TestSelectFallsBackToAdjacentDifficulty(t *testing.T) {
	rnd := rand.New(rand.NewSource(2))
	pool := makeQuestions(domain.DifficultyMedium, 5)

	got := SelectByDifficulty(rnd, pool, 3, domain.DifficultyEasy, domain.DifficultyMedium)
	if len(got) != 3 {
		t.Fatalf("expected fallback to fill 3 questions, got %d", len(got))
	}
	for _, q := range got {
		if q.Difficulty != domain.DifficultyMedium {
			t.Fatalf("expected only medium fallback questions, got %s", q.Difficulty)
		}
	}
}

func TestSelectPartialFallback(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	pool := append(makeQuestions(domain.DifficultyEasy, 2), makeQuestions(domain.DifficultyMedium, 10)...)

	got := SelectByDifficulty(rnd, pool, 5, domain.DifficultyEasy, domain.DifficultyMedium)
	if len(got) != 5 {
		t.Fatalf("expected 5 questions, got %d", len(got))
	}
	easyCount := 0
	for _, q := range got {
		if q.Difficulty == domain.DifficultyEasy {
			easyCount++
		}
	}
	if easyCount != 2 {
		t.Fatalf("expected both easy questions selected, got %d", easyCount)
	}
}

func TestSelectShortPoolReturnsFewer(t *testing.T) {
	rnd := rand.New(rand.NewSource(4))
	pool := makeQuestions(domain.DifficultyHard, 2)

	got := SelectByDifficulty(rnd, pool, 5, domain.DifficultyHard, domain.DifficultyMedium)
	if len(got) != 2 {
		t.Fatalf("expected short selection of 2, got %d", len(got))
	}
}

func TestSelectNoDuplicates(t *testing.T) {
	rnd := rand.New(rand.NewSource(5))
	pool := append(makeQuestions(domain.DifficultyEasy, 3), makeQuestions(domain.DifficultyMedium, 3)...)

	got := SelectByDifficulty(rnd, pool, 6, domain.DifficultyEasy, domain.DifficultyMedium)
	seen := make(map[string]bool)
	for _, q := range got {
		if seen[q.ID] {
			t.Fatalf("duplicate question %s in selection", q.ID)
		}
		seen[q.ID] = true
	}
}
