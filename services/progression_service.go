package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"habitQuestAPI/internal/account"
	"habitQuestAPI/internal/completion"
	"habitQuestAPI/internal/notification"
	"habitQuestAPI/internal/progression"
	"habitQuestAPI/internal/subscription"
)

// Store collaborators are consumed as interfaces so the orchestration can
// be exercised without a database. The pgx-backed services in this package
// implement them.

type SubscriptionStore interface {
	FindByUserAndHabit(ctx context.Context, userID, habitID uuid.UUID) (*subscription.Subscription, error)
	Save(ctx context.Context, sub *subscription.Subscription) error
}

type AccountStore interface {
	FindByClerkID(ctx context.Context, clerkID string) (*account.Account, error)
	Save(ctx context.Context, acct *account.Account) error
}

type LedgerStore interface {
	Append(ctx context.Context, rec *completion.Record) error
	FindByUserInDateRange(ctx context.Context, userID uuid.UUID, start, end string) ([]*completion.Record, error)
}

// LeaderboardUpdater mirrors XP credits into the leaderboard cache.
type LeaderboardUpdater interface {
	IncrementXP(ctx context.Context, clerkID string, delta int) error
}

// Notifier creates (and pushes) a user-facing notification.
type Notifier interface {
	Notify(ctx context.Context, req *notification.CreateNotificationRequest) error
}

// Saves rejected by the optimistic version check are retried with a fresh
// read this many times before giving up.
const maxSaveRetries = 3

var streakMilestones = []int{7, 30, 100}

// ProgressionService orchestrates the one externally meaningful operation:
// a user completes a habit. Streak, ledger and XP rules live in
// internal/progression; this service sequences them over the stores.
type ProgressionService struct {
	subscriptions SubscriptionStore
	accounts      AccountStore
	ledger        LedgerStore
	leaderboard   LeaderboardUpdater
	notifier      Notifier
	clock         progression.Clock
}

func NewProgressionService(subscriptions SubscriptionStore, accounts AccountStore, ledger LedgerStore, clock progression.Clock) *ProgressionService {
	if clock == nil {
		clock = progression.SystemClock()
	}
	return &ProgressionService{
		subscriptions: subscriptions,
		accounts:      accounts,
		ledger:        ledger,
		clock:         clock,
	}
}

// SetLeaderboard wires the optional leaderboard cache.
func (s *ProgressionService) SetLeaderboard(lb LeaderboardUpdater) {
	s.leaderboard = lb
}

// SetNotifier wires the optional notification sink.
func (s *ProgressionService) SetNotifier(n Notifier) {
	s.notifier = n
}

// CompleteHabit records one completion of the user's subscribed habit:
// streak transition on the subscription, an immutable ledger entry, and
// an XP credit on the account. Subscription and account writes are each
// guarded by an optimistic version check and retried with a reload; the
// two updates are independent atomicity domains, not one transaction.
func (s *ProgressionService) CompleteHabit(ctx context.Context, clerkID string, habitID uuid.UUID) (*subscription.Subscription, error) {
	acct, err := s.accounts.FindByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	today := s.clock.Today()

	var sub *subscription.Subscription
	var xp int
	for attempt := 1; ; attempt++ {
		sub, err = s.subscriptions.FindByUserAndHabit(ctx, acct.ID, habitID)
		if err != nil {
			return nil, err
		}

		xp, err = progression.CompleteSubscription(sub, today)
		if err != nil {
			return nil, err
		}

		err = s.subscriptions.Save(ctx, sub)
		if err == nil {
			break
		}
		if !errors.Is(err, progression.ErrConcurrencyConflict) || attempt >= maxSaveRetries {
			return nil, fmt.Errorf("failed to save subscription: %w", err)
		}
		log.Printf("CompleteHabit: subscription %s version conflict, retrying (%d/%d)", sub.ID, attempt, maxSaveRetries)
	}

	rec := completion.NewRecord(sub, xp, today)
	if err := s.ledger.Append(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to record completion: %w", err)
	}

	prevLevel := acct.Level
	for attempt := 1; ; attempt++ {
		prevLevel = acct.Level
		progression.CreditXP(acct, xp, today)

		err = s.accounts.Save(ctx, acct)
		if err == nil {
			break
		}
		if !errors.Is(err, progression.ErrConcurrencyConflict) || attempt >= maxSaveRetries {
			return nil, fmt.Errorf("failed to credit account: %w", err)
		}
		log.Printf("CompleteHabit: account %s version conflict, retrying (%d/%d)", acct.ID, attempt, maxSaveRetries)
		if acct, err = s.accounts.FindByClerkID(ctx, clerkID); err != nil {
			return nil, err
		}
	}

	// Leaderboard and notifications are best-effort: a completion never
	// fails because a side channel is down.
	if s.leaderboard != nil {
		if err := s.leaderboard.IncrementXP(ctx, acct.ClerkID, xp); err != nil {
			log.Printf("CompleteHabit: leaderboard update failed for %s: %v", acct.ClerkID, err)
		}
	}
	if s.notifier != nil {
		s.notifyProgress(ctx, acct, sub, prevLevel)
	}

	return sub, nil
}

func (s *ProgressionService) notifyProgress(ctx context.Context, acct *account.Account, sub *subscription.Subscription, prevLevel int) {
	if acct.Level > prevLevel {
		err := s.notifier.Notify(ctx, &notification.CreateNotificationRequest{
			UserID: acct.ID,
			Type:   notification.TypeLevelUp,
			Data:   map[string]any{"level": acct.Level},
		})
		if err != nil {
			log.Printf("CompleteHabit: level-up notification failed for %s: %v", acct.ClerkID, err)
		}
	}

	for _, m := range streakMilestones {
		if sub.CurrentStreak == m {
			err := s.notifier.Notify(ctx, &notification.CreateNotificationRequest{
				UserID: acct.ID,
				Type:   notification.TypeStreakMilestone,
				Data:   map[string]any{"habit": sub.HabitName, "streak": sub.CurrentStreak},
			})
			if err != nil {
				log.Printf("CompleteHabit: streak-milestone notification failed for %s: %v", acct.ClerkID, err)
			}
			break
		}
	}
}

// GetWeeklyCompletions returns the user's ledger entries for the ISO week
// containing the anchor date, Monday through Sunday inclusive.
func (s *ProgressionService) GetWeeklyCompletions(ctx context.Context, clerkID string, anchor time.Time) ([]*completion.Record, error) {
	acct, err := s.accounts.FindByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	start := progression.StartOfWeek(anchor)
	end := start.AddDate(0, 0, 6)

	return s.ledger.FindByUserInDateRange(ctx, acct.ID, start.Format(completion.ISODate), end.Format(completion.ISODate))
}
