package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"staff-compliance-service/internal/domain"
)

// HistoryStore persists the append-only result history and the staff
// roster. Appends are single inserts, so a concurrent dashboard read never
// observes a partially written result.
type HistoryStore struct {
	pool *pgxpool.Pool
}

func NewHistoryStore(pool *pgxpool.Pool) *HistoryStore {
	return &HistoryStore{pool: pool}
}

func (s *HistoryStore) Append(ctx context.Context, staffID string, result domain.TestResult) error {
	details, err := json.Marshal(result.QuestionDetails)
	if err != nil {
		return fmt.Errorf("marshal question details: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO test_results (staff_id, completed_at, score, passed, details) VALUES ($1, $2, $3, $4, $5)`,
		staffID, result.CompletedAt, result.Score, result.Passed, details)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

func (s *HistoryStore) History(ctx context.Context, staffID string) ([]domain.TestResult, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT completed_at, score, passed, details FROM test_results WHERE staff_id=$1 ORDER BY completed_at`,
		staffID)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var history []domain.TestResult
	for rows.Next() {
		var result domain.TestResult
		var details []byte
		if err := rows.Scan(&result.CompletedAt, &result.Score, &result.Passed, &details); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &result.QuestionDetails); err != nil {
				return nil, fmt.Errorf("unmarshal question details: %w", err)
			}
		}
		history = append(history, result)
	}
	return history, rows.Err()
}

func (s *HistoryStore) GetStaff(ctx context.Context, staffID string) (domain.StaffMember, error) {
	var member domain.StaffMember
	err := s.pool.QueryRow(ctx,
		`SELECT id, display_name, intends_to_continue FROM staff_members WHERE id=$1`, staffID).
		Scan(&member.ID, &member.DisplayName, &member.IntendsToContinue)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.StaffMember{}, domain.ErrStaffNotFound
		}
		return domain.StaffMember{}, fmt.Errorf("get staff: %w", err)
	}
	return member, nil
}

func (s *HistoryStore) ListStaff(ctx context.Context) ([]domain.StaffMember, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, display_name, intends_to_continue FROM staff_members ORDER BY display_name, id`)
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	defer rows.Close()

	var members []domain.StaffMember
	for rows.Next() {
		var member domain.StaffMember
		if err := rows.Scan(&member.ID, &member.DisplayName, &member.IntendsToContinue); err != nil {
			return nil, fmt.Errorf("scan staff: %w", err)
		}
		members = append(members, member)
	}
	return members, rows.Err()
}
