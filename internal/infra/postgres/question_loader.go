package postgres

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v4/pgxpool"

	"knowball-service/internal/domain"
)

// QuestionLoader loads the trivia pool from Postgres. The stored shape mirrors
// the authoring format: four individual option columns, of which the last two
// may be null. Normalization happens here so the game core only ever sees
// well-formed questions: options collapse into a slice, difficulty is
// lowercased with a medium default, and rows whose answer is not among the
// options are dropped.
type QuestionLoader struct {
	pool *pgxpool.Pool
}

func NewQuestionLoader(pool *pgxpool.Pool) *QuestionLoader {
	return &QuestionLoader{pool: pool}
}

func (l *QuestionLoader) LoadAll(ctx context.Context) ([]domain.Question, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT id, question, option1, option2, option3, option4, answer, explanation, difficulty
		FROM questions`)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var out []domain.Question
	dropped := 0
	for rows.Next() {
		var (
			id, prompt, option1, option2, answer string
			option3, option4, explanation        *string
			difficulty                           *string
		)
		if err := rows.Scan(&id, &prompt, &option1, &option2, &option3, &option4, &answer, &explanation, &difficulty); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}

		options := []string{option1, option2}
		if option3 != nil {
			options = append(options, *option3)
		}
		if option4 != nil {
			options = append(options, *option4)
		}

		q := domain.Question{
			ID:            id,
			Prompt:        prompt,
			Options:       options,
			CorrectAnswer: answer,
			Difficulty:    domain.ParseDifficulty(stringOr(difficulty, "")),
			Explanation:   stringOr(explanation, ""),
		}
		if !q.Valid() {
			dropped++
			continue
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read questions: %w", err)
	}
	if dropped > 0 {
		log.Printf("dropped %d malformed question rows during load", dropped)
	}
	return out, nil
}

func stringOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
