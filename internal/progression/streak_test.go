package progression

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"habitQuestAPI/internal/habit"
	"habitQuestAPI/internal/subscription"
)

func newTestSubscription(cadence habit.Cadence, difficulty habit.Difficulty) *subscription.Subscription {
	return subscription.New(uuid.New(), &habit.Habit{
		ID:         uuid.New(),
		Name:       "Morning run",
		Category:   "fitness",
		Difficulty: difficulty,
		Cadence:    cadence,
	})
}

func TestCompleteSubscriptionFirstCompletion(t *testing.T) {
	sub := newTestSubscription(habit.CadenceDaily, habit.DifficultyMedium)
	today := d(2024, 5, 15)

	xp, err := CompleteSubscription(sub, today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if xp != 50 {
		t.Errorf("xp = %d, want 50", xp)
	}
	if sub.CurrentStreak != 1 || sub.LongestStreak != 1 {
		t.Errorf("streaks = %d/%d, want 1/1", sub.CurrentStreak, sub.LongestStreak)
	}
	if sub.TotalCompletions != 1 || sub.TotalXPEarned != 50 {
		t.Errorf("totals = %d completions, %d xp, want 1, 50", sub.TotalCompletions, sub.TotalXPEarned)
	}
	if sub.LastCompletedDate == nil || !sub.LastCompletedDate.Equal(today) {
		t.Errorf("lastCompletedDate = %v, want %v", sub.LastCompletedDate, today)
	}
}

func TestCompleteSubscriptionDailyContinuation(t *testing.T) {
	sub := newTestSubscription(habit.CadenceDaily, habit.DifficultyEasy)
	last := d(2024, 5, 15)
	sub.LastCompletedDate = &last
	sub.CurrentStreak = 4
	sub.LongestStreak = 9
	sub.TotalCompletions = 20

	if _, err := CompleteSubscription(sub, d(2024, 5, 16)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.CurrentStreak != 5 {
		t.Errorf("currentStreak = %d, want 5", sub.CurrentStreak)
	}
	if sub.LongestStreak != 9 {
		t.Errorf("longestStreak = %d, want 9 (unchanged)", sub.LongestStreak)
	}
	if sub.TotalCompletions != 21 {
		t.Errorf("totalCompletions = %d, want 21", sub.TotalCompletions)
	}
}

func TestCompleteSubscriptionDailyGapResets(t *testing.T) {
	sub := newTestSubscription(habit.CadenceDaily, habit.DifficultyEasy)
	last := d(2024, 5, 15)
	sub.LastCompletedDate = &last
	sub.CurrentStreak = 7
	sub.LongestStreak = 7

	if _, err := CompleteSubscription(sub, d(2024, 5, 17)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.CurrentStreak != 1 {
		t.Errorf("currentStreak = %d, want 1 after gap", sub.CurrentStreak)
	}
	if sub.LongestStreak != 7 {
		t.Errorf("longestStreak = %d, want 7 preserved", sub.LongestStreak)
	}
}

func TestCompleteSubscriptionLongestStreakFollowsCurrent(t *testing.T) {
	sub := newTestSubscription(habit.CadenceDaily, habit.DifficultyEasy)
	last := d(2024, 5, 15)
	sub.LastCompletedDate = &last
	sub.CurrentStreak = 9
	sub.LongestStreak = 9

	if _, err := CompleteSubscription(sub, d(2024, 5, 16)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.CurrentStreak != 10 || sub.LongestStreak != 10 {
		t.Errorf("streaks = %d/%d, want 10/10", sub.CurrentStreak, sub.LongestStreak)
	}
}

func TestCompleteSubscriptionSameDayRejected(t *testing.T) {
	sub := newTestSubscription(habit.CadenceDaily, habit.DifficultyHard)
	today := d(2024, 5, 15)

	if _, err := CompleteSubscription(sub, today); err != nil {
		t.Fatalf("first completion failed: %v", err)
	}

	before := *sub
	xp, err := CompleteSubscription(sub, today)

	var dup *AlreadyCompletedError
	if !errors.As(err, &dup) {
		t.Fatalf("expected AlreadyCompletedError, got %v", err)
	}
	if dup.Error() != "habit already completed for this day" {
		t.Errorf("message = %q", dup.Error())
	}
	if xp != 0 {
		t.Errorf("xp = %d, want 0 on rejection", xp)
	}
	if *sub != before {
		t.Errorf("subscription mutated by rejected completion: %+v != %+v", *sub, before)
	}
}

func TestCompleteSubscriptionSameWeekRejected(t *testing.T) {
	sub := newTestSubscription(habit.CadenceWeekly, habit.DifficultyMedium)
	last := d(2024, 5, 13) // Monday
	sub.LastCompletedDate = &last
	sub.CurrentStreak = 2
	sub.LongestStreak = 2

	_, err := CompleteSubscription(sub, d(2024, 5, 19)) // Sunday, same ISO week

	var dup *AlreadyCompletedError
	if !errors.As(err, &dup) {
		t.Fatalf("expected AlreadyCompletedError, got %v", err)
	}
	if dup.Error() != "habit already completed for this week" {
		t.Errorf("message = %q", dup.Error())
	}
	if sub.CurrentStreak != 2 || sub.TotalCompletions != 0 {
		t.Errorf("subscription mutated by rejected completion")
	}
}

func TestCompleteSubscriptionWeeklyContinuation(t *testing.T) {
	sub := newTestSubscription(habit.CadenceWeekly, habit.DifficultyMedium)
	last := d(2024, 3, 6) // week 10
	sub.LastCompletedDate = &last
	sub.CurrentStreak = 3
	sub.LongestStreak = 5

	if _, err := CompleteSubscription(sub, d(2024, 3, 11)); err != nil { // week 11
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.CurrentStreak != 4 {
		t.Errorf("currentStreak = %d, want 4", sub.CurrentStreak)
	}
}

func TestCompleteSubscriptionWeeklyYearRollover(t *testing.T) {
	tests := []struct {
		name  string
		last  time.Time
		today time.Time
	}{
		{"week 52 into week 1", d(2023, 12, 27), d(2024, 1, 2)},
		{"week 53 into week 1", d(2020, 12, 30), d(2021, 1, 5)},
	}

	for _, tt := range tests {
		sub := newTestSubscription(habit.CadenceWeekly, habit.DifficultyEasy)
		sub.LastCompletedDate = &tt.last
		sub.CurrentStreak = 6
		sub.LongestStreak = 6

		if _, err := CompleteSubscription(sub, tt.today); err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.name, err)
		}
		if sub.CurrentStreak != 7 {
			t.Errorf("%s: currentStreak = %d, want 7 (rollover is consecutive)", tt.name, sub.CurrentStreak)
		}
	}
}

func TestCompleteSubscriptionMonotonicCounters(t *testing.T) {
	sub := newTestSubscription(habit.CadenceDaily, habit.DifficultyEasy)
	day := d(2024, 1, 1)

	prevCompletions, prevXP := 0, 0
	// Completions every 1-3 days: streaks break and rebuild, totals only grow.
	for i := 0; i < 30; i++ {
		day = day.AddDate(0, 0, 1+i%3)
		if _, err := CompleteSubscription(sub, day); err != nil {
			t.Fatalf("completion %d failed: %v", i, err)
		}
		if sub.TotalCompletions < prevCompletions || sub.TotalXPEarned < prevXP {
			t.Fatalf("counters decreased at step %d", i)
		}
		if sub.CurrentStreak > sub.LongestStreak {
			t.Fatalf("currentStreak %d > longestStreak %d at step %d", sub.CurrentStreak, sub.LongestStreak, i)
		}
		prevCompletions, prevXP = sub.TotalCompletions, sub.TotalXPEarned
	}
}
