package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"habitQuestAPI/internal/habit"
	"habitQuestAPI/internal/progression"
)

// HabitService is a read-only view of the habit catalog. Entries are
// seeded out of band and never mutated through the API.
type HabitService struct {
	db *pgxpool.Pool
}

func NewHabitService(db *pgxpool.Pool) *HabitService {
	return &HabitService{db: db}
}

const habitColumns = `id, name, description, category, difficulty, cadence, created_at`

func (s *HabitService) GetAll(ctx context.Context) ([]*habit.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits ORDER BY category, name`
	return s.queryHabits(ctx, query)
}

func (s *HabitService) GetByID(ctx context.Context, id uuid.UUID) (*habit.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE id = $1`

	h, err := scanHabit(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, progression.ErrHabitNotFound
		}
		return nil, fmt.Errorf("failed to get habit: %w", err)
	}
	return h, nil
}

func (s *HabitService) GetByCategory(ctx context.Context, category string) ([]*habit.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE category = $1 ORDER BY name`
	return s.queryHabits(ctx, query, category)
}

func (s *HabitService) GetByDifficulty(ctx context.Context, difficulty habit.Difficulty) ([]*habit.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE difficulty = $1 ORDER BY name`
	return s.queryHabits(ctx, query, difficulty)
}

// GetRandom picks one habit of the given cadence, skipping any IDs the
// caller already has.
func (s *HabitService) GetRandom(ctx context.Context, cadence habit.Cadence, excludeIDs []uuid.UUID) (*habit.Habit, error) {
	query := `
	SELECT ` + habitColumns + `
	FROM habits
	WHERE cadence = $1 AND NOT (id = ANY($2))
	ORDER BY random()
	LIMIT 1
	`
	if excludeIDs == nil {
		excludeIDs = []uuid.UUID{}
	}

	h, err := scanHabit(s.db.QueryRow(ctx, query, cadence, excludeIDs))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, progression.ErrHabitNotFound
		}
		return nil, fmt.Errorf("failed to pick random habit: %w", err)
	}
	return h, nil
}

func (s *HabitService) queryHabits(ctx context.Context, query string, args ...any) ([]*habit.Habit, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query habits: %w", err)
	}
	defer rows.Close()

	habits := []*habit.Habit{}
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan habit: %w", err)
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func scanHabit(row pgx.Row) (*habit.Habit, error) {
	h := &habit.Habit{}
	err := row.Scan(&h.ID, &h.Name, &h.Description, &h.Category, &h.Difficulty, &h.Cadence, &h.CreatedAt)
	if err != nil {
		return nil, err
	}
	return h, nil
}
