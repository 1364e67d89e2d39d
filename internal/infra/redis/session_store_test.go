package redis

import (
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"staff-compliance-service/internal/app"
)

func TestSessionStoreSetsAndClearsLivenessKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSessionStore(client, time.Minute)

	session, err := app.NewSession("sess-1", "s1", sampleBank(), app.AssessmentPolicy{}, nil)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	store.Put(session)
	if !mr.Exists("assessment:session:sess-1") {
		t.Fatalf("expected liveness key to be set")
	}
	if got, _ := store.Get("sess-1"); got != session {
		t.Fatalf("expected stored session returned")
	}

	store.Delete("sess-1")
	if mr.Exists("assessment:session:sess-1") {
		t.Fatalf("expected liveness key to be removed")
	}
	if _, ok := store.Get("sess-1"); ok {
		t.Fatalf("expected session removed")
	}
}
