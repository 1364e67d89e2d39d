package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"staff-compliance-service/internal/domain"
)

// Store backs the service with a hosted document database, the backend the
// original portal ran on. It serves both the question banks and the
// append-only result history plus staff roster.
type Store struct {
	banks   *mongo.Collection
	staff   *mongo.Collection
	results *mongo.Collection
}

func NewStore(client *mongo.Client, database string) *Store {
	db := client.Database(database)
	return &Store{
		banks:   db.Collection("question_banks"),
		staff:   db.Collection("staff_members"),
		results: db.Collection("test_results"),
	}
}

func (s *Store) LoadBank(ctx context.Context, bankID string) (domain.QuestionBank, error) {
	var bank domain.QuestionBank
	err := s.banks.FindOne(ctx, bson.M{"_id": bankID}).Decode(&bank)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.QuestionBank{}, domain.ErrBankNotFound
		}
		return domain.QuestionBank{}, fmt.Errorf("load bank: %w", err)
	}
	return bank, nil
}

type resultDoc struct {
	StaffID string            `bson:"staffId"`
	Result  domain.TestResult `bson:"result"`
}

// Append inserts one document per result; a single InsertOne is atomic, so
// history readers never see a partially written entry.
func (s *Store) Append(ctx context.Context, staffID string, result domain.TestResult) error {
	if _, err := s.results.InsertOne(ctx, resultDoc{StaffID: staffID, Result: result}); err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

func (s *Store) History(ctx context.Context, staffID string) ([]domain.TestResult, error) {
	opts := options.Find().SetSort(bson.D{{Key: "result.completedAt", Value: 1}})
	cursor, err := s.results.Find(ctx, bson.M{"staffId": staffID}, opts)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []resultDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	history := make([]domain.TestResult, 0, len(docs))
	for _, doc := range docs {
		history = append(history, doc.Result)
	}
	return history, nil
}

func (s *Store) GetStaff(ctx context.Context, staffID string) (domain.StaffMember, error) {
	var member domain.StaffMember
	err := s.staff.FindOne(ctx, bson.M{"_id": staffID}).Decode(&member)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.StaffMember{}, domain.ErrStaffNotFound
		}
		return domain.StaffMember{}, fmt.Errorf("get staff: %w", err)
	}
	return member, nil
}

func (s *Store) ListStaff(ctx context.Context) ([]domain.StaffMember, error) {
	opts := options.Find().SetSort(bson.D{{Key: "displayName", Value: 1}})
	cursor, err := s.staff.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	defer cursor.Close(ctx)

	var members []domain.StaffMember
	if err := cursor.All(ctx, &members); err != nil {
		return nil, fmt.Errorf("decode staff: %w", err)
	}
	return members, nil
}
