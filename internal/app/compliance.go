package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"staff-compliance-service/internal/domain"
)

// CompliancePolicy carries the rolling validity window.
type CompliancePolicy struct {
	ValidityDays int
}

const DefaultValidityDays = 365

func (p CompliancePolicy) withDefaults() CompliancePolicy {
	if p.ValidityDays <= 0 {
		p.ValidityDays = DefaultValidityDays
	}
	return p
}

// StatusFilter selects a slice of a dashboard collection by derived status.
type StatusFilter string

const (
	StatusAll         StatusFilter = "all"
	StatusOutstanding StatusFilter = "outstanding"
	StatusPassed      StatusFilter = "passed"
)

// ComplianceEvaluator reduces result histories to certification status.
// It is stateless apart from policy and clock: the same history always
// yields the same status.
type ComplianceEvaluator struct {
	policy CompliancePolicy
	now    func() time.Time
}

func NewComplianceEvaluator(policy CompliancePolicy) *ComplianceEvaluator {
	return NewComplianceEvaluatorWithClock(policy, time.Now)
}

// NewComplianceEvaluatorWithClock allows a fixed "today" in tests.
func NewComplianceEvaluatorWithClock(policy CompliancePolicy, now func() time.Time) *ComplianceEvaluator {
	return &ComplianceEvaluator{policy: policy.withDefaults(), now: now}
}

// Evaluate derives the current status from one member's full history.
//
// Records without a timestamp are malformed: they are excluded from the
// latest-pass selection and reported through the returned error (wrapping
// domain.ErrInvalidResultRecord) while the status is still computed from
// the valid remainder, so one bad record cannot hide a member's status.
func (e *ComplianceEvaluator) Evaluate(history []domain.TestResult) (domain.ComplianceStatus, error) {
	var invalid int
	passed := make([]domain.TestResult, 0, len(history))
	for _, result := range history {
		if result.CompletedAt.IsZero() {
			invalid++
			continue
		}
		if result.Passed {
			passed = append(passed, result)
		}
	}

	var warn error
	if invalid > 0 {
		warn = fmt.Errorf("%w: skipped %d malformed record(s)", domain.ErrInvalidResultRecord, invalid)
	}

	if len(passed) == 0 {
		// Never certified counts as expired.
		return domain.ComplianceStatus{Expired: true}, warn
	}

	// Stable sort keeps evaluation deterministic for identical timestamps.
	sort.SliceStable(passed, func(i, j int) bool {
		return passed[i].CompletedAt.After(passed[j].CompletedAt)
	})
	latest := passed[0]

	lastSuccess := latest.CompletedAt
	expiry := dayOf(lastSuccess).AddDate(0, 0, e.policy.ValidityDays)
	today := dayOf(e.now())

	return domain.ComplianceStatus{
		// Expiry lands on a calendar-day boundary and includes it.
		Expired:         !today.Before(expiry),
		LastSuccessDate: &lastSuccess,
		LastScore:       latest.Score,
	}, warn
}

// EvaluateAll maps Evaluate over a collection of members. Members are
// independent, so the work fans out concurrently; output order matches
// input order. Malformed-record warnings are joined, never fatal; a
// canceled context stops the remaining work and is returned instead.
func (e *ComplianceEvaluator) EvaluateAll(ctx context.Context, members []domain.MemberHistory) ([]domain.MemberCompliance, error) {
	annotated := make([]domain.MemberCompliance, len(members))
	warnings := make([]error, len(members))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(8)
	for i := range members {
		i := i
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			status, warn := e.Evaluate(members[i].Results)
			annotated[i] = domain.MemberCompliance{Member: members[i].Member, Status: status}
			if warn != nil {
				warnings[i] = fmt.Errorf("member %s: %w", members[i].Member.ID, warn)
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	return annotated, errors.Join(warnings...)
}

// FilterByStatus is a pure predicate over derived status; it never touches
// the underlying histories.
func FilterByStatus(list []domain.MemberCompliance, filter StatusFilter) []domain.MemberCompliance {
	if filter == StatusAll || filter == "" {
		return list
	}
	out := make([]domain.MemberCompliance, 0, len(list))
	for _, entry := range list {
		switch filter {
		case StatusOutstanding:
			if entry.Status.Expired {
				out = append(out, entry)
			}
		case StatusPassed:
			if !entry.Status.Expired {
				out = append(out, entry)
			}
		}
	}
	return out
}

// ReminderTargets selects the members the reminder dispatcher should
// contact: expired and still intending to continue.
func ReminderTargets(list []domain.MemberCompliance) []domain.MemberCompliance {
	out := make([]domain.MemberCompliance, 0, len(list))
	for _, entry := range list {
		if entry.Status.Expired && entry.Member.IntendsToContinue {
			out = append(out, entry)
		}
	}
	return out
}

// dayOf clears sub-day components so expiry comparisons happen on
// calendar-day boundaries.
func dayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
