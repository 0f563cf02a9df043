package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"knowball-service/internal/domain"
)

// QuestionLoader fetches the full question pool from a backing store.
type QuestionLoader interface {
	LoadAll(ctx context.Context) ([]domain.Question, error)
}

// QuestionSource caches the question pool with TTL to avoid repeated DB hits.
type QuestionSource struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	pool      []domain.Question
	expiresAt time.Time
}

func NewQuestionSource(loader QuestionLoader, ttl time.Duration) *QuestionSource {
	return &QuestionSource{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *QuestionSource) FetchAll(ctx context.Context) ([]domain.Question, error) {
	now := s.clock()

	s.mu.RLock()
	if s.pool != nil && s.expiresAt.After(now) {
		pool := s.pool
		s.mu.RUnlock()
		return pool, nil
	}
	s.mu.RUnlock()

	result, err, _ := s.sf.Do("all", func() (interface{}, error) {
		now := s.clock()
		s.mu.RLock()
		if s.pool != nil && s.expiresAt.After(now) {
			pool := s.pool
			s.mu.RUnlock()
			return pool, nil
		}
		s.mu.RUnlock()

		pool, err := s.loader.LoadAll(ctx)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.pool = pool
		s.expiresAt = now.Add(s.ttlWithJitter())
		s.mu.Unlock()
		return pool, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (s *QuestionSource) ttlWithJitter() time.Duration {
	if s.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(s.ttl) / 10
	return s.ttl + time.Duration(s.rnd.Int63n(jitterMax+1))
}

// StaticQuestionLoader serves a fixed pool (useful for tests/demos). Malformed
// questions are dropped up front, mirroring the repository boundary rule.
type StaticQuestionLoader struct {
	pool []domain.Question
}

func NewStaticQuestionLoader(pool []domain.Question) *StaticQuestionLoader {
	valid := make([]domain.Question, 0, len(pool))
	for _, q := range pool {
		if q.Valid() {
			valid = append(valid, q)
		}
	}
	return &StaticQuestionLoader{pool: valid}
}

func (l *StaticQuestionLoader) LoadAll(context.Context) ([]domain.Question, error) {
	out := make([]domain.Question, len(l.pool))
	copy(out, l.pool)
	return out, nil
}

// FallbackQuestions is the static set substituted when the question repository
// is empty or unreachable. It spans all three difficulties so a round can
// always start.
func FallbackQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:     "fallback-1",
			Prompt: "Which NFL team has won the most Super Bowl championships?",
			Options: []string{
				"New England Patriots",
				"Pittsburgh Steelers",
				"San Francisco 49ers",
				"Green Bay Packers",
			},
			CorrectAnswer: "New England Patriots",
			Explanation:   "The New England Patriots have won 6 Super Bowl championships.",
			Difficulty:    domain.DifficultyEasy,
		},
		{
			ID:     "fallback-2",
			Prompt: "Who holds the NBA record for most points scored in a single game?",
			Options: []string{
				"Kobe Bryant",
				"Michael Jordan",
				"Wilt Chamberlain",
				"LeBron James",
			},
			CorrectAnswer: "Wilt Chamberlain",
			Explanation:   "Wilt Chamberlain scored 100 points on March 2, 1962.",
			Difficulty:    domain.DifficultyMedium,
		},
		{
			ID:     "fallback-3",
			Prompt: "In which year did the Chicago Cubs break their World Series championship drought?",
			Options: []string{
				"2015",
				"2016",
				"2017",
				"2018",
			},
			CorrectAnswer: "2016",
			Explanation:   "The Cubs won in 2016, breaking a 108-year championship drought.",
			Difficulty:    domain.DifficultyHard,
		},
	}
}
