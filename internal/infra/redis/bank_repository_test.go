package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"staff-compliance-service/internal/domain"
	"staff-compliance-service/internal/infra/memory"
)

func TestBankRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	loader := &countingLoader{
		BankLoader: memory.NewStaticBankLoader(map[string]domain.QuestionBank{
			"bank-1": sampleBank(),
		}),
	}
	repo := NewBankRepository(client, loader, time.Minute)

	bank, err := repo.GetBank(context.Background(), "bank-1")
	if err != nil {
		t.Fatalf("get bank: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if len(bank.Questions) != 1 || bank.Questions[0].Explanation == "" {
		t.Fatalf("expected full bank with explanations, got %+v", bank)
	}
	if !mr.Exists("bank:bank-1") {
		t.Fatalf("expected bank cached in redis")
	}

	// Second call should hit cache, loader not incremented.
	cached, err := repo.GetBank(context.Background(), "bank-1")
	if err != nil {
		t.Fatalf("get bank cached: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if cached.Questions[0].CorrectIndex != bank.Questions[0].CorrectIndex {
		t.Fatalf("cached bank differs from loaded bank")
	}
}

type countingLoader struct {
	memory.BankLoader
	calls int
}

func (l *countingLoader) LoadBank(ctx context.Context, bankID string) (domain.QuestionBank, error) {
	l.calls++
	return l.BankLoader.LoadBank(ctx, bankID)
}

func sampleBank() domain.QuestionBank {
	return domain.QuestionBank{
		ID: "bank-1",
		Questions: []domain.Question{
			{
				ID:           1,
				Text:         "Who should concerns be reported to?",
				Options:      []string{"A colleague", "The safeguarding lead"},
				CorrectIndex: 1,
				Explanation:  "Concerns go to the safeguarding lead.",
			},
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
