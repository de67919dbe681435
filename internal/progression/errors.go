package progression

import (
	"errors"

	"habitQuestAPI/internal/habit"
)

var (
	// ErrHabitNotFound is returned when a catalog habit does not exist.
	ErrHabitNotFound = errors.New("progression: habit not found")

	// ErrSubscriptionNotFound is returned when the user has no
	// subscription for the requested habit.
	ErrSubscriptionNotFound = errors.New("progression: habit not found in user's habit list")

	// ErrAccountNotFound is returned when no account exists for the
	// authenticated identity.
	ErrAccountNotFound = errors.New("progression: account not found")

	// ErrDuplicateSubscription is returned when accepting a habit the
	// user is already subscribed to.
	ErrDuplicateSubscription = errors.New("progression: habit already in user's habit list")

	// ErrConcurrencyConflict is returned when an optimistic write was
	// rejected because the record changed between load and store.
	ErrConcurrencyConflict = errors.New("progression: record was modified concurrently")
)

// AlreadyCompletedError rejects a completion that falls in the same
// period as the previous one. The message names the period unit so the
// client can render "already completed for this day" vs "... this week".
type AlreadyCompletedError struct {
	Cadence habit.Cadence
}

func (e *AlreadyCompletedError) Error() string {
	period := "day"
	if e.Cadence == habit.CadenceWeekly {
		period = "week"
	}
	return "habit already completed for this " + period
}
