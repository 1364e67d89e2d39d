package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	mongooptions "go.mongodb.org/mongo-driver/mongo/options"

	"staff-compliance-service/internal/app"
	"staff-compliance-service/internal/config"
	"staff-compliance-service/internal/domain"
	"staff-compliance-service/internal/infra/memory"
	mongostore "staff-compliance-service/internal/infra/mongo"
	pgstore "staff-compliance-service/internal/infra/postgres"
	redisstore "staff-compliance-service/internal/infra/redis"
	transport "staff-compliance-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the compliance service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	sessionTTL := config.TTLDuration(cfg.Redis.TTL, 30*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var mongoClient *mongodriver.Client
	if cfg.Mongo.URI != "" {
		mongoClient, err = mongodriver.Connect(ctx, mongooptions.Client().ApplyURI(cfg.Mongo.URI))
		if err != nil {
			return err
		}
		defer func() { _ = mongoClient.Disconnect(context.Background()) }()
	}

	// Backing store: document DB when configured, then Postgres, then the
	// in-memory sample data for local development.
	var (
		loader  memory.BankLoader
		staff   app.StaffRepository
		results app.ResultHistoryRepository
	)
	switch {
	case mongoClient != nil:
		store := mongostore.NewStore(mongoClient, cfg.Mongo.Database)
		loader, staff, results = store, store, store
	case pool != nil:
		history := pgstore.NewHistoryStore(pool)
		loader, staff, results = pgstore.NewBankLoader(pool), history, history
	default:
		loader = memory.NewStaticBankLoader(sampleBanks())
		directory := memory.NewStaffDirectory()
		for _, member := range sampleStaff() {
			directory.Upsert(member)
		}
		staff, results = directory, memory.NewHistoryStore()
	}

	bankTTL := config.TTLDuration(cfg.Bank.TTL, 10*time.Minute)
	var banks app.BankRepository
	if redisClient != nil {
		banks = redisstore.NewBankRepository(redisClient, loader, bankTTL)
	} else {
		banks = memory.NewBankRepository(loader, bankTTL)
	}

	var sessions app.SessionRepository
	if redisClient != nil {
		sessions = redisstore.NewSessionStore(redisClient, sessionTTL)
	} else {
		sessions = memory.NewSessionStore()
	}

	assessments := app.NewAssessmentService(sessions, banks, results, app.AssessmentPolicy{
		SessionLength: cfg.Assessment.SessionLength,
		PassThreshold: cfg.Assessment.PassThreshold,
	})
	evaluator := app.NewComplianceEvaluator(app.CompliancePolicy{
		ValidityDays: cfg.Compliance.ValidityDays,
	})
	compliance := app.NewComplianceService(staff, results, evaluator)

	router := transport.NewRouter(transport.NewRESTHandler(compliance), transport.NewWSHandler(assessments))

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting compliance service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleBanks provides a minimal question bank; swap the loader for the
// document DB or Postgres-backed one in production.
func sampleBanks() map[string]domain.QuestionBank {
	return map[string]domain.QuestionBank{
		"safeguarding": {
			ID: "safeguarding",
			Questions: []domain.Question{
				{
					ID:           1,
					Text:         "Who should a concern about a staff member be reported to?",
					Options:      []string{"A colleague", "The designated safeguarding lead", "Nobody"},
					CorrectIndex: 1,
					Explanation:  "Concerns always go to the designated safeguarding lead, never sideways.",
				},
				{
					ID:           2,
					Text:         "How often must the assessment be retaken?",
					Options:      []string{"Every year", "Every five years", "Only once"},
					CorrectIndex: 0,
					Explanation:  "Certification lapses after a year; the assessment is annual.",
				},
			},
		},
	}
}

func sampleStaff() []domain.StaffMember {
	return []domain.StaffMember{
		{ID: "s1", DisplayName: "Alice Martin", IntendsToContinue: true},
		{ID: "s2", DisplayName: "Bob Fletcher", IntendsToContinue: false},
	}
}
