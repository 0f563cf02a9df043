package memory

import (
	"context"
	"testing"
	"time"

	"knowball-service/internal/domain"
)

func TestQuestionSourceCaches(t *testing.T) {
	loader := &countingLoader{QuestionLoader: NewStaticQuestionLoader(FallbackQuestions())}
	source := NewQuestionSource(loader, time.Minute)

	if _, err := source.FetchAll(context.Background()); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := source.FetchAll(context.Background()); err != nil {
		t.Fatalf("fetch 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestStaticLoaderDropsMalformedQuestions(t *testing.T) {
	pool := append(FallbackQuestions(), domain.Question{
		ID:            "broken",
		Prompt:        "answer missing from options",
		Options:       []string{"a", "b"},
		CorrectAnswer: "c",
		Difficulty:    domain.DifficultyEasy,
	})
	loader := NewStaticQuestionLoader(pool)

	got, err := loader.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected malformed question dropped, got %d questions", len(got))
	}
	for _, q := range got {
		if q.ID == "broken" {
			t.Fatalf("malformed question survived normalization")
		}
	}
}

func TestFallbackQuestionsSpanDifficulties(t *testing.T) {
	seen := make(map[domain.Difficulty]bool)
	for _, q := range FallbackQuestions() {
		if !q.Valid() {
			t.Fatalf("fallback question %s is not answerable", q.ID)
		}
		seen[q.Difficulty] = true
	}
	if !seen[domain.DifficultyEasy] || !seen[domain.DifficultyMedium] || !seen[domain.DifficultyHard] {
		t.Fatalf("fallback set must span all difficulties, got %v", seen)
	}
}

type countingLoader struct {
	QuestionLoader
	calls int
}

func (l *countingLoader) LoadAll(ctx context.Context) ([]domain.Question, error) {
	l.calls++
	return l.QuestionLoader.LoadAll(ctx)
}
