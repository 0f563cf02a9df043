package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a game session ID is unknown or the round was abandoned.
	ErrSessionNotFound = errors.New("game session not found")
	// ErrQuestionNotActive is returned when a resolution targets a question index that is
	// not the one awaiting an answer (already resolved, or not yet reached).
	ErrQuestionNotActive = errors.New("question not active")
	// ErrRoundComplete is returned when a resolution arrives after the round finished.
	ErrRoundComplete = errors.New("round already complete")
	// ErrNoQuestions indicates the question source returned an empty pool.
	ErrNoQuestions = errors.New("no questions available")
)
