package completion

import (
	"time"

	"github.com/google/uuid"

	"habitQuestAPI/internal/habit"
	"habitQuestAPI/internal/subscription"
)

// ISODate is the format completion dates are persisted in.
const ISODate = "2006-01-02"

// Record is one immutable ledger entry: a habit was completed by a user
// on a calendar date for a given XP reward. Records are only ever
// appended, never updated or deleted.
type Record struct {
	ID             uuid.UUID        `json:"id" db:"id"`
	UserID         uuid.UUID        `json:"user_id" db:"user_id"`
	SubscriptionID uuid.UUID        `json:"subscription_id" db:"subscription_id"`
	HabitID        uuid.UUID        `json:"habit_id" db:"habit_id"`
	HabitName      string           `json:"habit_name" db:"habit_name"`
	Difficulty     habit.Difficulty `json:"difficulty" db:"difficulty"`
	Cadence        habit.Cadence    `json:"cadence" db:"cadence"`
	CompletionDate string           `json:"completion_date" db:"completion_date"`
	XPEarned       int              `json:"xp_earned" db:"xp_earned"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`
}

// NewRecord derives a ledger entry from a just-completed subscription.
func NewRecord(sub *subscription.Subscription, xpEarned int, today time.Time) *Record {
	return &Record{
		ID:             uuid.New(),
		UserID:         sub.UserID,
		SubscriptionID: sub.ID,
		HabitID:        sub.HabitID,
		HabitName:      sub.HabitName,
		Difficulty:     sub.Difficulty,
		Cadence:        sub.Cadence,
		CompletionDate: today.Format(ISODate),
		XPEarned:       xpEarned,
		CreatedAt:      time.Now(),
	}
}
