package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"habitQuestAPI/internal/completion"
)

// LedgerService is the append-only record of completions. Rows are never
// updated or deleted here; removing an account cascades in SQL.
type LedgerService struct {
	db *pgxpool.Pool
}

func NewLedgerService(db *pgxpool.Pool) *LedgerService {
	return &LedgerService{db: db}
}

// Append implements LedgerStore.
func (s *LedgerService) Append(ctx context.Context, rec *completion.Record) error {
	query := `
	INSERT INTO habit_completions (id, user_id, subscription_id, habit_id, habit_name,
		difficulty, cadence, completion_date, xp_earned, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.db.Exec(ctx, query,
		rec.ID, rec.UserID, rec.SubscriptionID, rec.HabitID, rec.HabitName,
		rec.Difficulty, rec.Cadence, rec.CompletionDate, rec.XPEarned, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append completion: %w", err)
	}
	return nil
}

// FindByUserInDateRange implements LedgerStore. Bounds are inclusive
// ISO-8601 dates; ISO date strings compare correctly as text. Results
// come back in insertion order.
func (s *LedgerService) FindByUserInDateRange(ctx context.Context, userID uuid.UUID, start, end string) ([]*completion.Record, error) {
	query := `
	SELECT id, user_id, subscription_id, habit_id, habit_name,
		difficulty, cadence, completion_date, xp_earned, created_at
	FROM habit_completions
	WHERE user_id = $1 AND completion_date BETWEEN $2 AND $3
	ORDER BY created_at
	`

	rows, err := s.db.Query(ctx, query, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query completions: %w", err)
	}
	defer rows.Close()

	records := []*completion.Record{}
	for rows.Next() {
		rec := &completion.Record{}
		err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.SubscriptionID, &rec.HabitID, &rec.HabitName,
			&rec.Difficulty, &rec.Cadence, &rec.CompletionDate, &rec.XPEarned, &rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan completion: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
