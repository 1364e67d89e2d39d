package app

import (
	"math"
	"math/rand"
	"time"

	"staff-compliance-service/internal/domain"
)

// AssessmentPolicy carries the tunable session constants. Zero fields
// fall back to the defaults so config can stay sparse.
type AssessmentPolicy struct {
	SessionLength int // questions drawn per session; shorter banks shorten the session
	PassThreshold int // minimum passing score, percent
}

const (
	DefaultSessionLength = 20
	DefaultPassThreshold = 80
)

func (p AssessmentPolicy) withDefaults() AssessmentPolicy {
	if p.SessionLength <= 0 {
		p.SessionLength = DefaultSessionLength
	}
	if p.PassThreshold <= 0 {
		p.PassThreshold = DefaultPassThreshold
	}
	return p
}

type sessionState int

const (
	statePresenting sessionState = iota
	stateExplaining
	stateFinished
)

// Feedback reports how one discrete action moved the session along.
type Feedback struct {
	QuestionID   int    `json:"questionId"`
	Correct      bool   `json:"correct"`
	AttemptsUsed int    `json:"attemptsUsed"`
	RetryAllowed bool   `json:"retryAllowed"`
	Explanation  string `json:"explanation,omitempty"`
	Advanced     bool   `json:"advanced"`
	Done         bool   `json:"done"`
}

// Session runs one assessment for one staff member. The caller owns the
// value and drives it through discrete Answer/Continue actions; the
// session performs no I/O and emits exactly one TestResult when finished.
type Session struct {
	id        string
	staffID   string
	questions []domain.Question
	current   int
	retried   bool
	attempts  []domain.QuestionAttempt
	state     sessionState
	policy    AssessmentPolicy
	now       func() time.Time
	result    domain.TestResult
}

// NewSession draws a uniformly random subset of the bank and starts at the
// first question. An empty bank cannot start a session.
func NewSession(id, staffID string, bank domain.QuestionBank, policy AssessmentPolicy, rnd *rand.Rand) (*Session, error) {
	return NewSessionWithClock(id, staffID, bank, policy, rnd, time.Now)
}

// NewSessionWithClock allows deterministic timestamps in tests.
func NewSessionWithClock(id, staffID string, bank domain.QuestionBank, policy AssessmentPolicy, rnd *rand.Rand, now func() time.Time) (*Session, error) {
	if len(bank.Questions) == 0 {
		return nil, domain.ErrEmptyQuestionPool
	}
	policy = policy.withDefaults()
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	drawn := make([]domain.Question, len(bank.Questions))
	copy(drawn, bank.Questions)
	rnd.Shuffle(len(drawn), func(i, j int) {
		drawn[i], drawn[j] = drawn[j], drawn[i]
	})
	if len(drawn) > policy.SessionLength {
		drawn = drawn[:policy.SessionLength]
	}

	return &Session{
		id:        id,
		staffID:   staffID,
		questions: drawn,
		attempts:  make([]domain.QuestionAttempt, 0, len(drawn)),
		state:     statePresenting,
		policy:    policy,
		now:       now,
	}, nil
}

func (s *Session) ID() string      { return s.id }
func (s *Session) StaffID() string { return s.staffID }

// Finished reports whether the session reached its terminal state.
func (s *Session) Finished() bool { return s.state == stateFinished }

// Current returns the question being presented; ok is false once finished.
func (s *Session) Current() (domain.Question, bool) {
	if s.state == stateFinished {
		return domain.Question{}, false
	}
	return s.questions[s.current], true
}

// Progress returns the zero-based index of the current question and the
// session total. After finishing, the index equals the total.
func (s *Session) Progress() (int, int) {
	return s.current, len(s.questions)
}

// Answer processes one option selection for the current question.
func (s *Session) Answer(option int) (Feedback, error) {
	switch s.state {
	case stateFinished:
		return Feedback{}, domain.ErrSessionFinished
	case stateExplaining:
		return Feedback{}, domain.ErrContinueRequired
	}

	question := s.questions[s.current]
	if option < 0 || option >= len(question.Options) {
		return Feedback{}, domain.ErrInvalidOption
	}

	correct := option == question.CorrectIndex
	if correct {
		used := 1
		if s.retried {
			used = 2
		}
		s.attempts = append(s.attempts, domain.QuestionAttempt{
			QuestionID:   question.ID,
			AttemptsUsed: used,
			Correct:      true,
		})
		s.advance()
		return Feedback{
			QuestionID:   question.ID,
			Correct:      true,
			AttemptsUsed: used,
			Advanced:     true,
			Done:         s.state == stateFinished,
		}, nil
	}

	if !s.retried {
		// First miss: one more attempt, explanation stays hidden.
		s.retried = true
		return Feedback{
			QuestionID:   question.ID,
			AttemptsUsed: 1,
			RetryAllowed: true,
		}, nil
	}

	s.attempts = append(s.attempts, domain.QuestionAttempt{
		QuestionID:   question.ID,
		AttemptsUsed: 2,
		Correct:      false,
	})
	s.state = stateExplaining
	return Feedback{
		QuestionID:   question.ID,
		AttemptsUsed: 2,
		Explanation:  question.Explanation,
	}, nil
}

// Continue acknowledges a revealed explanation and moves to the next
// question (or finishes the session on the last one).
func (s *Session) Continue() error {
	switch s.state {
	case stateFinished:
		return domain.ErrSessionFinished
	case statePresenting:
		return domain.ErrSessionActive
	}
	s.state = statePresenting
	s.advance()
	return nil
}

// Result returns the emitted TestResult once the session has finished.
func (s *Session) Result() (domain.TestResult, error) {
	if s.state != stateFinished {
		return domain.TestResult{}, domain.ErrSessionActive
	}
	return s.result, nil
}

func (s *Session) advance() {
	s.retried = false
	if s.current < len(s.questions)-1 {
		s.current++
		return
	}
	s.current = len(s.questions)
	s.finish()
}

func (s *Session) finish() {
	correct := 0
	for _, attempt := range s.attempts {
		if attempt.Correct {
			correct++
		}
	}
	score := int(math.Round(100 * float64(correct) / float64(len(s.questions))))
	s.result = domain.TestResult{
		CompletedAt:     s.now(),
		Score:           score,
		Passed:          score >= s.policy.PassThreshold,
		QuestionDetails: s.attempts,
	}
	s.state = stateFinished
}
