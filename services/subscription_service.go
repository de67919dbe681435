package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"habitQuestAPI/internal/habit"
	"habitQuestAPI/internal/progression"
	"habitQuestAPI/internal/subscription"
)

type SubscriptionService struct {
	db *pgxpool.Pool
}

func NewSubscriptionService(db *pgxpool.Pool) *SubscriptionService {
	return &SubscriptionService{db: db}
}

const subscriptionColumns = `id, user_id, habit_id, habit_name, difficulty, cadence,
	current_streak, longest_streak, last_completed_date, total_completions,
	total_xp_earned, active, version, created_at, updated_at`

// Accept subscribes the user to a catalog habit, denormalizing the
// habit's name, difficulty and cadence at accept time.
func (s *SubscriptionService) Accept(ctx context.Context, userID uuid.UUID, h *habit.Habit) (*subscription.Subscription, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM habit_subscriptions WHERE user_id = $1 AND habit_id = $2)`,
		userID, h.ID,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing subscription: %w", err)
	}
	if exists {
		return nil, progression.ErrDuplicateSubscription
	}

	sub := subscription.New(userID, h)

	query := `
	INSERT INTO habit_subscriptions (id, user_id, habit_id, habit_name, difficulty, cadence,
		current_streak, longest_streak, last_completed_date, total_completions,
		total_xp_earned, active, version, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err = s.db.Exec(ctx, query,
		sub.ID, sub.UserID, sub.HabitID, sub.HabitName, sub.Difficulty, sub.Cadence,
		sub.CurrentStreak, sub.LongestStreak, sub.LastCompletedDate, sub.TotalCompletions,
		sub.TotalXPEarned, sub.Active, sub.Version, sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	return sub, nil
}

// ListActive returns the user's active subscriptions, oldest first.
func (s *SubscriptionService) ListActive(ctx context.Context, userID uuid.UUID) ([]*subscription.Subscription, error) {
	query := `
	SELECT ` + subscriptionColumns + `
	FROM habit_subscriptions
	WHERE user_id = $1 AND active = true
	ORDER BY created_at
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	subs := []*subscription.Subscription{}
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// FindByUserAndHabit implements SubscriptionStore.
func (s *SubscriptionService) FindByUserAndHabit(ctx context.Context, userID, habitID uuid.UUID) (*subscription.Subscription, error) {
	query := `
	SELECT ` + subscriptionColumns + `
	FROM habit_subscriptions
	WHERE user_id = $1 AND habit_id = $2
	`

	sub, err := scanSubscription(s.db.QueryRow(ctx, query, userID, habitID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, progression.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return sub, nil
}

// Save implements SubscriptionStore. The update only lands if nobody
// else bumped the version since this copy was loaded; a rejected write
// surfaces as ErrConcurrencyConflict.
func (s *SubscriptionService) Save(ctx context.Context, sub *subscription.Subscription) error {
	query := `
	UPDATE habit_subscriptions
	SET current_streak = $1, longest_streak = $2, last_completed_date = $3,
		total_completions = $4, total_xp_earned = $5, active = $6,
		version = version + 1, updated_at = $7
	WHERE id = $8 AND version = $9
	`

	tag, err := s.db.Exec(ctx, query,
		sub.CurrentStreak, sub.LongestStreak, sub.LastCompletedDate,
		sub.TotalCompletions, sub.TotalXPEarned, sub.Active,
		time.Now(), sub.ID, sub.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to save subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return progression.ErrConcurrencyConflict
	}

	sub.Version++
	return nil
}

// Remove deletes the user's subscription for a habit.
func (s *SubscriptionService) Remove(ctx context.Context, userID, habitID uuid.UUID) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM habit_subscriptions WHERE user_id = $1 AND habit_id = $2`,
		userID, habitID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return progression.ErrSubscriptionNotFound
	}
	return nil
}

func scanSubscription(row pgx.Row) (*subscription.Subscription, error) {
	sub := &subscription.Subscription{}
	err := row.Scan(
		&sub.ID, &sub.UserID, &sub.HabitID, &sub.HabitName, &sub.Difficulty, &sub.Cadence,
		&sub.CurrentStreak, &sub.LongestStreak, &sub.LastCompletedDate, &sub.TotalCompletions,
		&sub.TotalXPEarned, &sub.Active, &sub.Version, &sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return sub, nil
}
