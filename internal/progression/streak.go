package progression

import (
	"time"

	"habitQuestAPI/internal/subscription"
)

// advanceStreak is the one streak transition both counters share: a
// completion in the period right after the previous one extends the
// streak, anything else (first ever, or a gap) resets it to 1, and the
// longest streak trails the maximum. Which periods count as consecutive
// is the caller's business, passed in as a predicate.
func advanceStreak(current, longest int, last *time.Time, today time.Time, consecutive func(previous, current time.Time) bool) (int, int) {
	if last != nil && consecutive(*last, today) {
		current++
	} else {
		current = 1
	}
	if current > longest {
		longest = current
	}
	return current, longest
}

// CompleteSubscription applies one habit completion to the subscription
// for the given date. It is a pure state transition: no I/O, and on
// rejection the subscription is untouched. Returns the XP awarded for
// this completion; crediting the account and appending the ledger entry
// are the caller's responsibility.
func CompleteSubscription(sub *subscription.Subscription, today time.Time) (int, error) {
	today = DateOf(today)

	if sub.LastCompletedDate != nil && SamePeriod(sub.Cadence, *sub.LastCompletedDate, today) {
		return 0, &AlreadyCompletedError{Cadence: sub.Cadence}
	}

	sub.CurrentStreak, sub.LongestStreak = advanceStreak(
		sub.CurrentStreak, sub.LongestStreak, sub.LastCompletedDate, today,
		func(prev, cur time.Time) bool {
			return IsConsecutivePeriod(sub.Cadence, prev, cur)
		},
	)

	completed := today
	sub.LastCompletedDate = &completed
	sub.TotalCompletions++

	xp := sub.Difficulty.BaseXP()
	sub.TotalXPEarned += xp
	return xp, nil
}
