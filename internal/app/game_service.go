package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"
	mrand "math/rand"
	"time"

	"knowball-service/internal/domain"
	"knowball-service/internal/game"
)

// SessionRepository abstracts how live game sessions are stored.
type SessionRepository interface {
	Put(session *Session)
	Get(id string) (*Session, bool)
	Delete(id string)
}

// ScoreSink receives the final tally at round completion (fire-and-forget).
type ScoreSink interface {
	SaveResult(ctx context.Context, result domain.RoundResult) error
}

// Settings holds the round parameters.
type Settings struct {
	Quotas      domain.Quotas
	TimeLimit   time.Duration
	RevealDelay time.Duration
}

// DefaultSettings matches the standard game: 3/4/3 quotas, 15s per question,
// 1.5s reveal before auto-advance.
func DefaultSettings() Settings {
	return Settings{
		Quotas:      domain.DefaultQuotas(),
		TimeLimit:   15 * time.Second,
		RevealDelay: 1500 * time.Millisecond,
	}
}

// GameService contains the game use cases: starting rounds (standard and
// challenge), routing answers, and abandoning sessions.
type GameService struct {
	sessions  SessionRepository
	assembler *game.Assembler
	sink      ScoreSink
	fallback  []domain.Question
	settings  Settings
	rnd       *mrand.Rand
}

// NewGameService wires the use cases. fallback is the static question set
// substituted when the repository is empty or unreachable; it should span all
// three difficulties so the game can always start.
func NewGameService(sessions SessionRepository, assembler *game.Assembler, sink ScoreSink, fallback []domain.Question, settings Settings) *GameService {
	return &GameService{
		sessions:  sessions,
		assembler: assembler,
		sink:      sink,
		fallback:  fallback,
		settings:  settings,
		rnd:       mrand.New(mrand.NewSource(time.Now().UnixNano())),
	}
}

// StartRound assembles a difficulty-balanced round for userKey and begins
// play. Repository failures degrade to the fallback set rather than blocking
// the game.
func (s *GameService) StartRound(ctx context.Context, userKey string) (*Session, error) {
	round, err := s.assembler.AssembleRound(ctx, userKey)
	if err != nil {
		log.Printf("round assembly failed for %s, using fallback set: %v", userKey, err)
		round = nil
	}
	if len(round) == 0 {
		round = s.fallbackRound()
	}
	if len(round) == 0 {
		return nil, domain.ErrNoQuestions
	}
	return s.begin(userKey, round), nil
}

// StartChallenge begins play on a pre-assembled, fixed question list,
// bypassing difficulty-balanced selection and the seen set. Scoring behaves
// identically to a standard round.
func (s *GameService) StartChallenge(_ context.Context, userKey string, questions []domain.Question) (*Session, error) {
	round := make([]domain.Question, 0, len(questions))
	for _, q := range questions {
		if !q.Valid() {
			log.Printf("challenge question %s dropped: answer not among options", q.ID)
			continue
		}
		q.Options = game.Shuffled(s.rnd, q.Options)
		round = append(round, q)
	}
	if len(round) == 0 {
		return nil, domain.ErrNoQuestions
	}
	return s.begin(userKey, round), nil
}

// Get looks up a live session.
func (s *GameService) Get(sessionID string) (*Session, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// Abandon discards a mid-play session. No partial score is persisted.
func (s *GameService) Abandon(sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	session.Close()
	s.sessions.Delete(sessionID)
}

func (s *GameService) begin(userKey string, round []domain.Question) *Session {
	id := newSessionID()
	session := newSession(id, userKey, round, s.settings.TimeLimit, s.settings.RevealDelay, func(result domain.RoundResult) {
		s.persistResult(result)
		s.sessions.Delete(id)
	})
	s.sessions.Put(session)
	session.start()
	return session
}

func (s *GameService) fallbackRound() []domain.Question {
	round := make([]domain.Question, len(s.fallback))
	copy(round, s.fallback)
	for i := range round {
		round[i].Options = game.Shuffled(s.rnd, round[i].Options)
	}
	return round
}

// persistResult hands the final tally to the sink. Failures are logged only:
// losing one score row is better than wedging the end-of-game flow.
func (s *GameService) persistResult(result domain.RoundResult) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.sink.SaveResult(ctx, result); err != nil {
		log.Printf("score save failed for %s: %v", result.UserKey, err)
	}
}

func newSessionID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return hex.EncodeToString([]byte(time.Now().String()))[:16]
	}
	return hex.EncodeToString(buf)
}
