package progression

import (
	"time"

	"habitQuestAPI/internal/account"
	"habitQuestAPI/internal/habit"
)

// XPThreshold is the cumulative XP required to hold level n: 100*n*(n-1)/2.
// Level 1 requires 0, level 2 requires 100, level 3 requires 300, so the
// cost of advancing from level k to k+1 is 100*k.
func XPThreshold(level int) int {
	return 100 * level * (level - 1) / 2
}

// LevelForXP returns the level a given XP total corresponds to.
// Recomputing from the same total is idempotent.
func LevelForXP(totalXP int) int {
	level := 1
	for totalXP >= XPThreshold(level+1) {
		level++
	}
	return level
}

// CreditXP adds XP to the account, advances its level past every newly
// cleared threshold, and updates the account-wide activity streak. The
// activity streak has no cadence: any XP-crediting event on consecutive
// days extends it, same-day repeats leave it unchanged, and a gap of
// more than one day resets it. Always succeeds; lastActiveDate is set
// even on a same-day repeat credit.
func CreditXP(acct *account.Account, amount int, today time.Time) {
	today = DateOf(today)

	acct.TotalXP += amount
	if acct.Level < 1 {
		acct.Level = 1
	}
	for acct.TotalXP >= XPThreshold(acct.Level+1) {
		acct.Level++
	}

	if acct.LastActiveDate == nil || DateOf(*acct.LastActiveDate).Before(today) {
		acct.CurrentStreak, acct.LongestStreak = advanceStreak(
			acct.CurrentStreak, acct.LongestStreak, acct.LastActiveDate, today,
			func(prev, cur time.Time) bool {
				return IsConsecutivePeriod(habit.CadenceDaily, prev, cur)
			},
		)
	}

	active := today
	acct.LastActiveDate = &active
}
