package app

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"staff-compliance-service/internal/domain"
)

// SessionRepository abstracts how in-flight sessions are held (in-memory, Redis-backed, etc).
type SessionRepository interface {
	Put(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// BankRepository loads question banks (from cache/backing store).
type BankRepository interface {
	GetBank(ctx context.Context, bankID string) (domain.QuestionBank, error)
}

// ResultHistoryRepository is the external append-only result store. Append
// must be atomic with respect to concurrent history reads.
type ResultHistoryRepository interface {
	Append(ctx context.Context, staffID string, result domain.TestResult) error
	History(ctx context.Context, staffID string) ([]domain.TestResult, error)
}

// StaffRepository resolves staff members for the compliance surfaces.
type StaffRepository interface {
	GetStaff(ctx context.Context, staffID string) (domain.StaffMember, error)
	ListStaff(ctx context.Context) ([]domain.StaffMember, error)
}

// AssessmentService runs assessment sessions end to end: draw, answer,
// explain, finish, and hand the result to the history store.
type AssessmentService struct {
	sessions SessionRepository
	banks    BankRepository
	results  ResultHistoryRepository
	policy   AssessmentPolicy

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewAssessmentService(sessions SessionRepository, banks BankRepository, results ResultHistoryRepository, policy AssessmentPolicy) *AssessmentService {
	return &AssessmentService{
		sessions: sessions,
		banks:    banks,
		results:  results,
		policy:   policy.withDefaults(),
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start draws a new session for a staff member from the given bank.
func (s *AssessmentService) Start(ctx context.Context, staffID, bankID string) (*Session, error) {
	bank, err := s.banks.GetBank(ctx, bankID)
	if err != nil {
		return nil, err
	}

	session, err := NewSession(uuid.NewString(), staffID, bank, s.policy, s.newRand())
	if err != nil {
		return nil, err
	}
	s.sessions.Put(session)
	return session, nil
}

// Current returns the question the session is presenting.
func (s *AssessmentService) Current(_ context.Context, sessionID string) (domain.Question, int, int, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.Question{}, 0, 0, domain.ErrSessionNotFound
	}
	question, ok := session.Current()
	index, total := session.Progress()
	if !ok {
		return domain.Question{}, index, total, domain.ErrSessionFinished
	}
	return question, index, total, nil
}

// SubmitAnswer applies one option selection. When the feedback reports
// Done, the caller collects the result via CollectResult.
func (s *AssessmentService) SubmitAnswer(_ context.Context, sessionID string, option int) (Feedback, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return Feedback{}, domain.ErrSessionNotFound
	}
	return session.Answer(option)
}

// Continue acknowledges an explanation. done reports whether the session
// finished on this transition.
func (s *AssessmentService) Continue(_ context.Context, sessionID string) (bool, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return false, domain.ErrSessionNotFound
	}
	if err := session.Continue(); err != nil {
		return false, err
	}
	return session.Finished(), nil
}

// CollectResult appends the finished session's result to the member's
// history and drops the session. On append failure the session is kept so
// the caller can retry; the service itself never retries (that is the
// store's concern).
func (s *AssessmentService) CollectResult(ctx context.Context, sessionID string) (domain.TestResult, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.TestResult{}, domain.ErrSessionNotFound
	}
	result, err := session.Result()
	if err != nil {
		return domain.TestResult{}, err
	}
	if err := s.results.Append(ctx, session.StaffID(), result); err != nil {
		return domain.TestResult{}, fmt.Errorf("append result for %s: %w", session.StaffID(), err)
	}
	s.sessions.Delete(sessionID)
	return result, nil
}

// Abandon drops a session without emitting a result. The transport calls
// this once it has given up on the connection, which also clears a
// finished session whose result could not be recorded.
func (s *AssessmentService) Abandon(_ context.Context, sessionID string) {
	s.sessions.Delete(sessionID)
}

// newRand hands each session its own source so concurrent sessions never
// contend on one generator.
func (s *AssessmentService) newRand() *rand.Rand {
	s.mu.Lock()
	defer s.mu.Unlock()
	return rand.New(rand.NewSource(s.rnd.Int63()))
}
