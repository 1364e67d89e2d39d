package app_test

import (
	"context"
	"errors"
	"testing"

	"staff-compliance-service/internal/app"
	"staff-compliance-service/internal/domain"
	"staff-compliance-service/internal/infra/memory"
)

func newTestComplianceService(t *testing.T) (*app.ComplianceService, *memory.HistoryStore) {
	t.Helper()
	directory := memory.NewStaffDirectory()
	directory.Upsert(domain.StaffMember{ID: "s1", DisplayName: "Alice", IntendsToContinue: true})
	directory.Upsert(domain.StaffMember{ID: "s2", DisplayName: "Bob", IntendsToContinue: true})
	directory.Upsert(domain.StaffMember{ID: "s3", DisplayName: "Cara", IntendsToContinue: false})

	history := memory.NewHistoryStore()
	ctx := context.Background()
	// Alice: current. Bob: lapsed. Cara: lapsed but not continuing.
	mustAppend(t, history, ctx, "s1", domain.TestResult{CompletedAt: daysAgo(30), Score: 95, Passed: true})
	mustAppend(t, history, ctx, "s2", domain.TestResult{CompletedAt: daysAgo(400), Score: 85, Passed: true})
	mustAppend(t, history, ctx, "s3", domain.TestResult{CompletedAt: daysAgo(500), Score: 80, Passed: true})

	return app.NewComplianceService(directory, history, testEvaluator()), history
}

func mustAppend(t *testing.T, store *memory.HistoryStore, ctx context.Context, staffID string, result domain.TestResult) {
	t.Helper()
	if err := store.Append(ctx, staffID, result); err != nil {
		t.Fatalf("append: %v", err)
	}
}

func TestMemberStatus(t *testing.T) {
	service, _ := newTestComplianceService(t)

	annotated, err := service.MemberStatus(context.Background(), "s2")
	if err != nil {
		t.Fatalf("member status: %v", err)
	}
	if !annotated.Status.Expired || annotated.Status.LastScore != 85 {
		t.Fatalf("expected lapsed with score 85, got %+v", annotated.Status)
	}

	if _, err := service.MemberStatus(context.Background(), "missing"); !errors.Is(err, domain.ErrStaffNotFound) {
		t.Fatalf("expected ErrStaffNotFound, got %v", err)
	}
}

func TestDashboardFilters(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestComplianceService(t)

	all, err := service.Dashboard(ctx, app.StatusAll)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 members, got %d", len(all))
	}

	outstanding, err := service.Dashboard(ctx, app.StatusOutstanding)
	if err != nil {
		t.Fatalf("dashboard outstanding: %v", err)
	}
	if len(outstanding) != 2 {
		t.Fatalf("expected 2 outstanding, got %+v", outstanding)
	}

	passed, err := service.Dashboard(ctx, app.StatusPassed)
	if err != nil {
		t.Fatalf("dashboard passed: %v", err)
	}
	if len(passed) != 1 || passed[0].Member.ID != "s1" {
		t.Fatalf("expected only Alice passed, got %+v", passed)
	}
}

func TestReminderTargetsRespectIntent(t *testing.T) {
	service, _ := newTestComplianceService(t)

	targets, err := service.ReminderTargets(context.Background())
	if err != nil {
		t.Fatalf("reminder targets: %v", err)
	}
	if len(targets) != 1 || targets[0].Member.ID != "s2" {
		t.Fatalf("expected only Bob targeted, got %+v", targets)
	}
}

func TestCertificateData(t *testing.T) {
	service, _ := newTestComplianceService(t)

	certificate, err := service.Certificate(context.Background(), "s1")
	if err != nil {
		t.Fatalf("certificate: %v", err)
	}
	if certificate.DisplayName != "Alice" || certificate.Score != 95 {
		t.Fatalf("unexpected certificate data: %+v", certificate)
	}
	if !certificate.AwardedAt.Equal(daysAgo(30)) {
		t.Fatalf("expected award date of last pass, got %v", certificate.AwardedAt)
	}
}

func TestCertificateRequiresAPass(t *testing.T) {
	directory := memory.NewStaffDirectory()
	directory.Upsert(domain.StaffMember{ID: "s9", DisplayName: "Dana"})
	service := app.NewComplianceService(directory, memory.NewHistoryStore(), testEvaluator())

	if _, err := service.Certificate(context.Background(), "s9"); !errors.Is(err, domain.ErrNotCertified) {
		t.Fatalf("expected ErrNotCertified, got %v", err)
	}
}

func TestDashboardSurvivesMalformedRecord(t *testing.T) {
	ctx := context.Background()
	service, history := newTestComplianceService(t)
	mustAppend(t, history, ctx, "s1", domain.TestResult{Score: 50, Passed: true}) // zero timestamp

	all, err := service.Dashboard(ctx, app.StatusAll)
	if !errors.Is(err, domain.ErrInvalidResultRecord) {
		t.Fatalf("expected invalid-record warning, got %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("one bad record must not hide the roster, got %d entries", len(all))
	}
	// Alice's valid pass still counts.
	for _, entry := range all {
		if entry.Member.ID == "s1" && entry.Status.Expired {
			t.Fatalf("valid pass hidden by malformed record: %+v", entry.Status)
		}
	}
}
