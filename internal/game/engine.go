package game

import (
	"knowball-service/internal/domain"
)

// Scoring constants for the standard game.
const (
	PointsCorrect  = 10
	PointsPenalty  = 3
	StreakBonus    = 5
	StreakInterval = 3
)

// Outcome describes a single question resolution.
type Outcome struct {
	Index         int
	Correct       bool
	TimedOut      bool
	Delta         int
	CorrectAnswer string
	Explanation   string
	State         domain.ScoreState
	Complete      bool
}

// Engine is the scoring state machine for one round. It resolves questions
// strictly in order, exactly once each: a resolution advances the active index,
// so a question can never be scored twice. Not safe for concurrent use; the
// session layer serializes access.
type Engine struct {
	round    []domain.Question
	index    int
	state    domain.ScoreState
	complete bool
}

func NewEngine(round []domain.Question) *Engine {
	return &Engine{round: round, complete: len(round) == 0}
}

// CurrentIndex is the index of the question awaiting resolution.
func (e *Engine) CurrentIndex() int { return e.index }

// Len is the round length.
func (e *Engine) Len() int { return len(e.round) }

// State returns the running tally.
func (e *Engine) State() domain.ScoreState { return e.state }

// Complete reports whether every question has been resolved.
func (e *Engine) Complete() bool { return e.complete }

// Question returns the question awaiting resolution.
func (e *Engine) Question() (domain.Question, bool) {
	if e.complete {
		return domain.Question{}, false
	}
	return e.round[e.index], true
}

// ResolveAnswer scores an explicit answer for the question at index.
func (e *Engine) ResolveAnswer(index int, answer string) (Outcome, error) {
	return e.resolve(index, answer, false)
}

// ResolveTimeout scores an expired countdown for the question at index.
// A timeout is indistinguishable from a wrong answer in its effect.
func (e *Engine) ResolveTimeout(index int) (Outcome, error) {
	return e.resolve(index, "", true)
}

func (e *Engine) resolve(index int, answer string, timedOut bool) (Outcome, error) {
	if e.complete {
		return Outcome{}, domain.ErrRoundComplete
	}
	if index != e.index {
		return Outcome{}, domain.ErrQuestionNotActive
	}

	q := e.round[e.index]
	correct := !timedOut && answer == q.CorrectAnswer

	delta := 0
	if correct {
		delta = PointsCorrect
		e.state.CurrentStreak++
		e.state.CorrectCount++
		if e.state.CurrentStreak%StreakInterval == 0 {
			delta += StreakBonus
		}
		if e.state.CurrentStreak > e.state.MaxStreak {
			e.state.MaxStreak = e.state.CurrentStreak
		}
	} else {
		delta = -PointsPenalty
		e.state.CurrentStreak = 0
	}
	e.state.Score += delta

	e.index++
	if e.index == len(e.round) {
		e.complete = true
	}

	return Outcome{
		Index:         index,
		Correct:       correct,
		TimedOut:      timedOut,
		Delta:         delta,
		CorrectAnswer: q.CorrectAnswer,
		Explanation:   q.Explanation,
		State:         e.state,
		Complete:      e.complete,
	}, nil
}
