package habit

import (
	"time"

	"github.com/google/uuid"
)

// Difficulty of a habit. Each tier maps to a fixed base XP reward.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// BaseXP is the XP awarded for a single completion of a habit
// at this difficulty.
func (d Difficulty) BaseXP() int {
	switch d {
	case DifficultyEasy:
		return 25
	case DifficultyMedium:
		return 50
	case DifficultyHard:
		return 100
	default:
		return 0
	}
}

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Cadence is the completion period unit of a habit.
type Cadence string

const (
	CadenceDaily  Cadence = "DAILY"
	CadenceWeekly Cadence = "WEEKLY"
)

func (c Cadence) Valid() bool {
	return c == CadenceDaily || c == CadenceWeekly
}

// Habit is an immutable catalog entry. Users never mutate these;
// subscriptions reference them by ID and denormalize the display fields.
type Habit struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description" db:"description"`
	Category    string     `json:"category" db:"category"`
	Difficulty  Difficulty `json:"difficulty" db:"difficulty"`
	Cadence     Cadence    `json:"cadence" db:"cadence"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}
