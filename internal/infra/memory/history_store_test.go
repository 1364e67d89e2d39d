package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"staff-compliance-service/internal/domain"
)

func TestHistoryStoreAppendIsIsolated(t *testing.T) {
	ctx := context.Background()
	store := NewHistoryStore()

	result := domain.TestResult{CompletedAt: time.Now(), Score: 85, Passed: true}
	if err := store.Append(ctx, "s1", result); err != nil {
		t.Fatalf("append: %v", err)
	}

	history, err := store.History(ctx, "s1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || history[0].Score != 85 {
		t.Fatalf("expected one result, got %+v", history)
	}

	// Mutating a read copy never touches the stored history.
	history[0].Score = 0
	again, _ := store.History(ctx, "s1")
	if again[0].Score != 85 {
		t.Fatalf("stored history mutated through a read copy")
	}

	other, _ := store.History(ctx, "s2")
	if len(other) != 0 {
		t.Fatalf("expected empty history for other member, got %+v", other)
	}
}

func TestStaffDirectory(t *testing.T) {
	ctx := context.Background()
	directory := NewStaffDirectory()
	directory.Upsert(domain.StaffMember{ID: "s1", DisplayName: "Alice"})
	directory.Upsert(domain.StaffMember{ID: "s2", DisplayName: "Bob"})
	directory.Upsert(domain.StaffMember{ID: "s1", DisplayName: "Alice M", IntendsToContinue: true})

	member, err := directory.GetStaff(ctx, "s1")
	if err != nil {
		t.Fatalf("get staff: %v", err)
	}
	if member.DisplayName != "Alice M" || !member.IntendsToContinue {
		t.Fatalf("expected upserted member, got %+v", member)
	}

	members, err := directory.ListStaff(ctx)
	if err != nil {
		t.Fatalf("list staff: %v", err)
	}
	if len(members) != 2 || members[0].ID != "s1" || members[1].ID != "s2" {
		t.Fatalf("expected stable ordering, got %+v", members)
	}

	if _, err := directory.GetStaff(ctx, "missing"); !errors.Is(err, domain.ErrStaffNotFound) {
		t.Fatalf("expected ErrStaffNotFound, got %v", err)
	}
}
