package subscription

import (
	"time"

	"github.com/google/uuid"

	"habitQuestAPI/internal/habit"
)

// Subscription is a user's adoption of a catalog habit. Name, difficulty
// and cadence are captured at accept time so later catalog edits don't
// rewrite a user's history.
type Subscription struct {
	ID                uuid.UUID        `json:"id" db:"id"`
	UserID            uuid.UUID        `json:"user_id" db:"user_id"`
	HabitID           uuid.UUID        `json:"habit_id" db:"habit_id"`
	HabitName         string           `json:"habit_name" db:"habit_name"`
	Difficulty        habit.Difficulty `json:"difficulty" db:"difficulty"`
	Cadence           habit.Cadence    `json:"cadence" db:"cadence"`
	CurrentStreak     int              `json:"current_streak" db:"current_streak"`
	LongestStreak     int              `json:"longest_streak" db:"longest_streak"`
	LastCompletedDate *time.Time       `json:"last_completed_date" db:"last_completed_date"`
	TotalCompletions  int              `json:"total_completions" db:"total_completions"`
	TotalXPEarned     int              `json:"total_xp_earned" db:"total_xp_earned"`
	Active            bool             `json:"active" db:"active"`
	Version           int              `json:"-" db:"version"`
	CreatedAt         time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at" db:"updated_at"`
}

// New builds a fresh subscription for the given user and habit.
func New(userID uuid.UUID, h *habit.Habit) *Subscription {
	now := time.Now()
	return &Subscription{
		ID:         uuid.New(),
		UserID:     userID,
		HabitID:    h.ID,
		HabitName:  h.Name,
		Difficulty: h.Difficulty,
		Cadence:    h.Cadence,
		Active:     true,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
