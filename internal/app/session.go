package app

import (
	"sync"
	"time"

	"knowball-service/internal/domain"
	"knowball-service/internal/game"
)

// EventType tags the session event stream.
type EventType string

const (
	EventQuestion EventType = "question"
	EventResult   EventType = "result"
	EventComplete EventType = "complete"
)

// QuestionView is what a player is shown: no correct answer, no explanation.
type QuestionView struct {
	Index            int      `json:"index"`
	Total            int      `json:"total"`
	Prompt           string   `json:"prompt"`
	Options          []string `json:"options"`
	TimeLimitSeconds int      `json:"timeLimitSeconds"`
}

// ResultView is the reveal after a question resolves.
type ResultView struct {
	Index         int    `json:"index"`
	Correct       bool   `json:"correct"`
	TimedOut      bool   `json:"timedOut"`
	Delta         int    `json:"delta"`
	CorrectAnswer string `json:"correctAnswer"`
	Explanation   string `json:"explanation"`
	Score         int    `json:"score"`
	CorrectCount  int    `json:"correctCount"`
	Streak        int    `json:"streak"`
	MaxStreak     int    `json:"maxStreak"`
}

// Event is one entry in a session's ordered event stream.
type Event struct {
	Type     EventType
	Question QuestionView       // set for EventQuestion
	Result   ResultView         // set for EventResult
	Final    domain.RoundResult // set for EventComplete
}

type phase int

const (
	phaseAwaiting phase = iota
	phaseReveal
	phaseDone
)

// Session drives one timed round of play. Each question arms a countdown that
// is either cancelled by an answer or fires a timeout, never both: the phase
// transition out of awaiting happens under the lock, and a generation counter
// keeps stale timers from touching later questions. After a resolution a fixed
// reveal delay runs before auto-advance; input during that window is ignored.
type Session struct {
	ID      string
	UserKey string

	timeLimit   time.Duration
	revealDelay time.Duration
	onComplete  func(domain.RoundResult)

	mu        sync.Mutex
	engine    *game.Engine
	phase     phase
	gen       int
	countdown *time.Timer
	events    chan Event
	closed    bool
}

func newSession(id, userKey string, round []domain.Question, timeLimit, revealDelay time.Duration, onComplete func(domain.RoundResult)) *Session {
	return &Session{
		ID:          id,
		UserKey:     userKey,
		timeLimit:   timeLimit,
		revealDelay: revealDelay,
		onComplete:  onComplete,
		engine:      game.NewEngine(round),
		events:      make(chan Event, 32),
	}
}

// Events is the ordered stream of question/result/complete events. The channel
// closes once the round completes or the session is abandoned.
func (s *Session) Events() <-chan Event {
	return s.events
}

// State returns the running tally.
func (s *Session) State() domain.ScoreState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.State()
}

// start emits the first question and arms its countdown.
func (s *Session) start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.emitQuestionLocked()
}

// Answer resolves the question at index with an explicit answer. Late or
// out-of-order input is ignored rather than rejected: the reveal window and
// double-taps are expected player behavior, not errors.
func (s *Session) Answer(index int, answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.phase != phaseAwaiting {
		return
	}
	if index != s.engine.CurrentIndex() {
		return
	}
	if s.countdown != nil {
		s.countdown.Stop()
	}
	outcome, err := s.engine.ResolveAnswer(index, answer)
	if err != nil {
		return
	}
	s.resolveLocked(outcome)
}

// Close abandons the session: timers stop and no partial score is persisted.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.countdown != nil {
		s.countdown.Stop()
	}
	s.closeLocked()
}

func (s *Session) emitQuestionLocked() {
	q, ok := s.engine.Question()
	if !ok {
		s.completeLocked()
		return
	}
	s.phase = phaseAwaiting
	s.gen++
	gen := s.gen
	s.emitLocked(Event{Type: EventQuestion, Question: QuestionView{
		Index:            s.engine.CurrentIndex(),
		Total:            s.engine.Len(),
		Prompt:           q.Prompt,
		Options:          q.Options,
		TimeLimitSeconds: int(s.timeLimit / time.Second),
	}})
	s.countdown = time.AfterFunc(s.timeLimit, func() { s.timeout(gen) })
}

func (s *Session) timeout(gen int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.phase != phaseAwaiting || gen != s.gen {
		return
	}
	outcome, err := s.engine.ResolveTimeout(s.engine.CurrentIndex())
	if err != nil {
		return
	}
	s.resolveLocked(outcome)
}

func (s *Session) resolveLocked(outcome game.Outcome) {
	s.phase = phaseReveal
	s.emitLocked(Event{Type: EventResult, Result: ResultView{
		Index:         outcome.Index,
		Correct:       outcome.Correct,
		TimedOut:      outcome.TimedOut,
		Delta:         outcome.Delta,
		CorrectAnswer: outcome.CorrectAnswer,
		Explanation:   outcome.Explanation,
		Score:         outcome.State.Score,
		CorrectCount:  outcome.State.CorrectCount,
		Streak:        outcome.State.CurrentStreak,
		MaxStreak:     outcome.State.MaxStreak,
	}})
	// The reveal delay is not cancellable and not skippable by further input.
	time.AfterFunc(s.revealDelay, s.advance)
}

func (s *Session) advance() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.phase != phaseReveal {
		return
	}
	if s.engine.Complete() {
		s.completeLocked()
		return
	}
	s.emitQuestionLocked()
}

func (s *Session) completeLocked() {
	s.phase = phaseDone
	state := s.engine.State()
	final := domain.RoundResult{
		UserKey:        s.UserKey,
		Score:          state.Score,
		CorrectCount:   state.CorrectCount,
		TotalQuestions: s.engine.Len(),
		MaxStreak:      state.MaxStreak,
	}
	s.emitLocked(Event{Type: EventComplete, Final: final})
	if s.onComplete != nil {
		go s.onComplete(final)
	}
	s.closeLocked()
}

func (s *Session) closeLocked() {
	s.closed = true
	close(s.events)
}

func (s *Session) emitLocked(ev Event) {
	select {
	case s.events <- ev:
	default:
		// Drop the oldest event rather than block the timer callbacks.
		select {
		case <-s.events:
		default:
		}
		s.events <- ev
	}
}
