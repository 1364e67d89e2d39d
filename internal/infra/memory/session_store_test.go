package memory

import (
	"testing"

	"staff-compliance-service/internal/app"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()

	session, err := app.NewSession("sess-1", "s1", sampleBank(), app.AssessmentPolicy{}, nil)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	store.Put(session)

	if _, ok := store.Get("sess-1"); !ok {
		t.Fatalf("expected session present")
	}

	store.Delete("sess-1")
	if _, ok := store.Get("sess-1"); ok {
		t.Fatalf("expected session removed")
	}
}
