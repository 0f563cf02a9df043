package domain

import "strings"

// Difficulty is the tier a question belongs to.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty normalizes raw difficulty labels from the backing store.
// Unknown or empty values default to medium.
func ParseDifficulty(raw string) Difficulty {
	switch Difficulty(strings.ToLower(strings.TrimSpace(raw))) {
	case DifficultyEasy:
		return DifficultyEasy
	case DifficultyHard:
		return DifficultyHard
	default:
		return DifficultyMedium
	}
}

// Question is a single trivia question. Immutable once fetched; round assembly
// works on copies so shuffling options never mutates the shared pool.
type Question struct {
	ID            string     `json:"id"`
	Prompt        string     `json:"prompt"`
	Options       []string   `json:"options"`
	CorrectAnswer string     `json:"correctAnswer"`
	Explanation   string     `json:"explanation"`
	Difficulty    Difficulty `json:"difficulty"`
}

// Valid reports whether the question is answerable: 2-4 options with the
// correct answer among them. Malformed rows are dropped at the repository
// boundary so the game core never sees them.
func (q Question) Valid() bool {
	if len(q.Options) < 2 || len(q.Options) > 4 {
		return false
	}
	for _, opt := range q.Options {
		if opt == q.CorrectAnswer {
			return true
		}
	}
	return false
}

// Quotas is the per-difficulty target for one round.
type Quotas struct {
	Easy   int `json:"easy" yaml:"easy"`
	Medium int `json:"medium" yaml:"medium"`
	Hard   int `json:"hard" yaml:"hard"`
}

// Total is the full round size.
func (q Quotas) Total() int {
	return q.Easy + q.Medium + q.Hard
}

// DefaultQuotas matches the standard 10-question game.
func DefaultQuotas() Quotas {
	return Quotas{Easy: 3, Medium: 4, Hard: 3}
}

// ScoreState is the running tally for a round in play. Score is signed and may
// go negative; the floor at zero applies only when lifetime totals are merged.
type ScoreState struct {
	Score         int `json:"score"`
	CorrectCount  int `json:"correctCount"`
	CurrentStreak int `json:"currentStreak"`
	MaxStreak     int `json:"maxStreak"`
}

// RoundResult is the final tally handed to the score sink at round completion.
type RoundResult struct {
	UserKey        string `json:"userKey"`
	Score          int    `json:"score"`
	CorrectCount   int    `json:"correctCount"`
	TotalQuestions int    `json:"totalQuestions"`
	MaxStreak      int    `json:"maxStreak"`
}

// PlayerTotals is the lifetime record the score sink maintains per user.
type PlayerTotals struct {
	UserKey       string `json:"userKey"`
	TotalPoints   int    `json:"totalPoints"`
	GamesPlayed   int    `json:"gamesPlayed"`
	LongestStreak int    `json:"longestStreak"`
}
