package app

import (
	"context"
	"errors"
	"fmt"

	"staff-compliance-service/internal/domain"
)

// ComplianceService joins the staff roster with the result history store
// and serves the dashboard, reminder, and certificate collaborators.
type ComplianceService struct {
	staff     StaffRepository
	results   ResultHistoryRepository
	evaluator *ComplianceEvaluator
}

func NewComplianceService(staff StaffRepository, results ResultHistoryRepository, evaluator *ComplianceEvaluator) *ComplianceService {
	return &ComplianceService{staff: staff, results: results, evaluator: evaluator}
}

// MemberStatus evaluates one member. The returned error may wrap
// domain.ErrInvalidResultRecord as a non-fatal warning alongside a valid
// status; callers log it and serve the status regardless.
func (c *ComplianceService) MemberStatus(ctx context.Context, staffID string) (domain.MemberCompliance, error) {
	member, err := c.staff.GetStaff(ctx, staffID)
	if err != nil {
		return domain.MemberCompliance{}, err
	}
	history, err := c.results.History(ctx, staffID)
	if err != nil {
		return domain.MemberCompliance{}, fmt.Errorf("load history for %s: %w", staffID, err)
	}
	status, warn := c.evaluator.Evaluate(history)
	return domain.MemberCompliance{Member: member, Status: status}, warn
}

// Dashboard evaluates the whole roster and applies the status filter.
func (c *ComplianceService) Dashboard(ctx context.Context, filter StatusFilter) ([]domain.MemberCompliance, error) {
	annotated, err := c.evaluateRoster(ctx)
	if err != nil && !errors.Is(err, domain.ErrInvalidResultRecord) {
		return nil, err
	}
	return FilterByStatus(annotated, filter), err
}

// ReminderTargets returns the expired members who still intend to continue.
func (c *ComplianceService) ReminderTargets(ctx context.Context) ([]domain.MemberCompliance, error) {
	annotated, err := c.evaluateRoster(ctx)
	if err != nil && !errors.Is(err, domain.ErrInvalidResultRecord) {
		return nil, err
	}
	return ReminderTargets(annotated), err
}

// Certificate returns the data the certificate issuer needs for a member's
// most recent passing result.
func (c *ComplianceService) Certificate(ctx context.Context, staffID string) (domain.CertificateData, error) {
	annotated, err := c.MemberStatus(ctx, staffID)
	if err != nil && !errors.Is(err, domain.ErrInvalidResultRecord) {
		return domain.CertificateData{}, err
	}
	if annotated.Status.LastSuccessDate == nil {
		return domain.CertificateData{}, domain.ErrNotCertified
	}
	return domain.CertificateData{
		StaffID:     annotated.Member.ID,
		DisplayName: annotated.Member.DisplayName,
		Score:       annotated.Status.LastScore,
		AwardedAt:   *annotated.Status.LastSuccessDate,
	}, nil
}

// evaluateRoster returns the annotated roster; the error either wraps
// domain.ErrInvalidResultRecord (warning, roster still valid) or is fatal.
func (c *ComplianceService) evaluateRoster(ctx context.Context) ([]domain.MemberCompliance, error) {
	members, err := c.staff.ListStaff(ctx)
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	histories := make([]domain.MemberHistory, 0, len(members))
	for _, member := range members {
		history, err := c.results.History(ctx, member.ID)
		if err != nil {
			return nil, fmt.Errorf("load history for %s: %w", member.ID, err)
		}
		histories = append(histories, domain.MemberHistory{Member: member, Results: history})
	}
	return c.evaluator.EvaluateAll(ctx, histories)
}
