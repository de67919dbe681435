package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"habitQuestAPI/internal/account"
	"habitQuestAPI/internal/completion"
	"habitQuestAPI/internal/habit"
	"habitQuestAPI/internal/notification"
	"habitQuestAPI/internal/progression"
	"habitQuestAPI/internal/subscription"
)

type fixedClock struct{ today time.Time }

func (c fixedClock) Today() time.Time { return c.today }

type fakeSubscriptionStore struct {
	subs          map[uuid.UUID]*subscription.Subscription // keyed by habit ID
	conflictsLeft int
	saves         int
}

func (f *fakeSubscriptionStore) FindByUserAndHabit(_ context.Context, _, habitID uuid.UUID) (*subscription.Subscription, error) {
	sub, ok := f.subs[habitID]
	if !ok {
		return nil, progression.ErrSubscriptionNotFound
	}
	cp := *sub
	return &cp, nil
}

func (f *fakeSubscriptionStore) Save(_ context.Context, sub *subscription.Subscription) error {
	f.saves++
	if f.conflictsLeft > 0 {
		f.conflictsLeft--
		return progression.ErrConcurrencyConflict
	}
	cp := *sub
	cp.Version++
	f.subs[sub.HabitID] = &cp
	sub.Version++
	return nil
}

type fakeAccountStore struct {
	accounts      map[string]*account.Account
	conflictsLeft int
}

func (f *fakeAccountStore) FindByClerkID(_ context.Context, clerkID string) (*account.Account, error) {
	acct, ok := f.accounts[clerkID]
	if !ok {
		return nil, progression.ErrAccountNotFound
	}
	cp := *acct
	return &cp, nil
}

func (f *fakeAccountStore) Save(_ context.Context, acct *account.Account) error {
	if f.conflictsLeft > 0 {
		f.conflictsLeft--
		return progression.ErrConcurrencyConflict
	}
	cp := *acct
	cp.Version++
	f.accounts[acct.ClerkID] = &cp
	acct.Version++
	return nil
}

type fakeLedger struct {
	records []*completion.Record
}

func (f *fakeLedger) Append(_ context.Context, rec *completion.Record) error {
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeLedger) FindByUserInDateRange(_ context.Context, userID uuid.UUID, start, end string) ([]*completion.Record, error) {
	out := []*completion.Record{}
	for _, r := range f.records {
		if r.UserID == userID && r.CompletionDate >= start && r.CompletionDate <= end {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeLeaderboard struct {
	scores map[string]int
}

func (f *fakeLeaderboard) IncrementXP(_ context.Context, clerkID string, delta int) error {
	if f.scores == nil {
		f.scores = map[string]int{}
	}
	f.scores[clerkID] += delta
	return nil
}

type fakeNotifier struct {
	sent []*notification.CreateNotificationRequest
}

func (f *fakeNotifier) Notify(_ context.Context, req *notification.CreateNotificationRequest) error {
	f.sent = append(f.sent, req)
	return nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newFixture(today time.Time) (*ProgressionService, *fakeSubscriptionStore, *fakeAccountStore, *fakeLedger, *subscription.Subscription, *account.Account) {
	acct := &account.Account{
		ID:      uuid.New(),
		ClerkID: "user_abc",
		Level:   1,
		Version: 1,
	}

	h := &habit.Habit{
		ID:         uuid.New(),
		Name:       "Read a book",
		Category:   "learning",
		Difficulty: habit.DifficultyMedium,
		Cadence:    habit.CadenceDaily,
	}
	sub := subscription.New(acct.ID, h)

	subs := &fakeSubscriptionStore{subs: map[uuid.UUID]*subscription.Subscription{h.ID: sub}}
	accts := &fakeAccountStore{accounts: map[string]*account.Account{acct.ClerkID: acct}}
	ledger := &fakeLedger{}

	svc := NewProgressionService(subs, accts, ledger, fixedClock{today})
	return svc, subs, accts, ledger, sub, acct
}

func TestCompleteHabitHappyPath(t *testing.T) {
	today := day(2024, 5, 15)
	svc, subs, accts, ledger, sub, _ := newFixture(today)

	got, err := svc.CompleteHabit(context.Background(), "user_abc", sub.HabitID)
	if err != nil {
		t.Fatalf("CompleteHabit failed: %v", err)
	}

	if got.CurrentStreak != 1 || got.TotalCompletions != 1 || got.TotalXPEarned != 50 {
		t.Errorf("subscription = streak %d, completions %d, xp %d; want 1, 1, 50",
			got.CurrentStreak, got.TotalCompletions, got.TotalXPEarned)
	}
	if stored := subs.subs[sub.HabitID]; stored.TotalCompletions != 1 {
		t.Errorf("stored subscription not updated")
	}

	if len(ledger.records) != 1 {
		t.Fatalf("ledger has %d records, want 1", len(ledger.records))
	}
	rec := ledger.records[0]
	if rec.CompletionDate != "2024-05-15" {
		t.Errorf("completionDate = %q, want 2024-05-15", rec.CompletionDate)
	}
	if rec.XPEarned != 50 || rec.HabitName != "Read a book" || rec.SubscriptionID != sub.ID {
		t.Errorf("ledger record fields wrong: %+v", rec)
	}

	acct := accts.accounts["user_abc"]
	if acct.TotalXP != 50 {
		t.Errorf("account totalXP = %d, want 50", acct.TotalXP)
	}
	if acct.CurrentStreak != 1 {
		t.Errorf("activity streak = %d, want 1", acct.CurrentStreak)
	}
	if acct.LastActiveDate == nil || !acct.LastActiveDate.Equal(today) {
		t.Errorf("lastActiveDate = %v, want %v", acct.LastActiveDate, today)
	}
}

func TestCompleteHabitAccountNotFound(t *testing.T) {
	svc, _, _, ledger, sub, _ := newFixture(day(2024, 5, 15))

	_, err := svc.CompleteHabit(context.Background(), "user_missing", sub.HabitID)
	if !errors.Is(err, progression.ErrAccountNotFound) {
		t.Fatalf("err = %v, want ErrAccountNotFound", err)
	}
	if len(ledger.records) != 0 {
		t.Errorf("ledger written despite failure")
	}
}

func TestCompleteHabitSubscriptionNotFound(t *testing.T) {
	svc, _, _, _, _, _ := newFixture(day(2024, 5, 15))

	_, err := svc.CompleteHabit(context.Background(), "user_abc", uuid.New())
	if !errors.Is(err, progression.ErrSubscriptionNotFound) {
		t.Fatalf("err = %v, want ErrSubscriptionNotFound", err)
	}
}

func TestCompleteHabitSecondSameDayRejected(t *testing.T) {
	today := day(2024, 5, 15)
	svc, _, accts, ledger, sub, _ := newFixture(today)

	if _, err := svc.CompleteHabit(context.Background(), "user_abc", sub.HabitID); err != nil {
		t.Fatalf("first completion failed: %v", err)
	}

	_, err := svc.CompleteHabit(context.Background(), "user_abc", sub.HabitID)
	var dup *progression.AlreadyCompletedError
	if !errors.As(err, &dup) {
		t.Fatalf("err = %v, want AlreadyCompletedError", err)
	}

	if len(ledger.records) != 1 {
		t.Errorf("ledger has %d records after rejection, want 1", len(ledger.records))
	}
	if accts.accounts["user_abc"].TotalXP != 50 {
		t.Errorf("account credited twice: totalXP = %d", accts.accounts["user_abc"].TotalXP)
	}
}

func TestCompleteHabitRetriesVersionConflict(t *testing.T) {
	today := day(2024, 5, 15)
	svc, subs, _, ledger, sub, _ := newFixture(today)
	subs.conflictsLeft = 1

	got, err := svc.CompleteHabit(context.Background(), "user_abc", sub.HabitID)
	if err != nil {
		t.Fatalf("CompleteHabit failed despite retry budget: %v", err)
	}
	if subs.saves != 2 {
		t.Errorf("saves = %d, want 2 (one conflict, one success)", subs.saves)
	}
	// The retry reloads and re-runs the transition; the streak must not
	// compound across attempts.
	if got.CurrentStreak != 1 || got.TotalCompletions != 1 {
		t.Errorf("retried subscription = streak %d, completions %d; want 1, 1", got.CurrentStreak, got.TotalCompletions)
	}
	if len(ledger.records) != 1 {
		t.Errorf("ledger has %d records, want 1", len(ledger.records))
	}
}

func TestCompleteHabitRetriesExhausted(t *testing.T) {
	svc, subs, _, ledger, sub, _ := newFixture(day(2024, 5, 15))
	subs.conflictsLeft = maxSaveRetries

	_, err := svc.CompleteHabit(context.Background(), "user_abc", sub.HabitID)
	if !errors.Is(err, progression.ErrConcurrencyConflict) {
		t.Fatalf("err = %v, want ErrConcurrencyConflict after retries exhaust", err)
	}
	if len(ledger.records) != 0 {
		t.Errorf("ledger written despite failed save")
	}
}

func TestCompleteHabitAccountConflictRetries(t *testing.T) {
	svc, _, accts, _, sub, _ := newFixture(day(2024, 5, 15))
	accts.conflictsLeft = 1

	if _, err := svc.CompleteHabit(context.Background(), "user_abc", sub.HabitID); err != nil {
		t.Fatalf("CompleteHabit failed: %v", err)
	}
	if accts.accounts["user_abc"].TotalXP != 50 {
		t.Errorf("totalXP = %d after account retry, want 50 (no double credit)", accts.accounts["user_abc"].TotalXP)
	}
}

func TestCompleteHabitSideEffects(t *testing.T) {
	today := day(2024, 5, 15)
	svc, subs, accts, _, sub, acct := newFixture(today)

	lb := &fakeLeaderboard{}
	notif := &fakeNotifier{}
	svc.SetLeaderboard(lb)
	svc.SetNotifier(notif)

	// Prime the account just below the level 2 threshold and the
	// subscription one day short of a 7-day milestone.
	acct.TotalXP = 99
	accts.accounts[acct.ClerkID] = acct
	last := day(2024, 5, 14)
	sub.LastCompletedDate = &last
	sub.CurrentStreak = 6
	sub.LongestStreak = 6
	subs.subs[sub.HabitID] = sub

	if _, err := svc.CompleteHabit(context.Background(), "user_abc", sub.HabitID); err != nil {
		t.Fatalf("CompleteHabit failed: %v", err)
	}

	if lb.scores["user_abc"] != 50 {
		t.Errorf("leaderboard delta = %d, want 50", lb.scores["user_abc"])
	}

	if len(notif.sent) != 2 {
		t.Fatalf("sent %d notifications, want 2 (level up + streak milestone)", len(notif.sent))
	}
	types := map[notification.Type]bool{}
	for _, n := range notif.sent {
		types[n.Type] = true
	}
	if !types[notification.TypeLevelUp] || !types[notification.TypeStreakMilestone] {
		t.Errorf("notification types = %v, want level_up and streak_milestone", types)
	}
}

func TestGetWeeklyCompletionsWindow(t *testing.T) {
	// Anchor on a Wednesday; the window must be that week's Monday
	// through Sunday inclusive regardless of anchor day.
	svc, _, _, ledger, sub, acct := newFixture(day(2024, 5, 15))

	dates := []string{"2024-05-12", "2024-05-13", "2024-05-15", "2024-05-19", "2024-05-20"}
	for _, date := range dates {
		ledger.records = append(ledger.records, &completion.Record{
			ID:             uuid.New(),
			UserID:         acct.ID,
			SubscriptionID: sub.ID,
			CompletionDate: date,
		})
	}

	for _, anchor := range []time.Time{day(2024, 5, 15), day(2024, 5, 13), day(2024, 5, 19)} {
		recs, err := svc.GetWeeklyCompletions(context.Background(), "user_abc", anchor)
		if err != nil {
			t.Fatalf("GetWeeklyCompletions(%v) failed: %v", anchor, err)
		}
		if len(recs) != 3 {
			t.Fatalf("anchor %v: got %d records, want 3 (Mon 13th through Sun 19th)", anchor, len(recs))
		}
		for _, r := range recs {
			if r.CompletionDate < "2024-05-13" || r.CompletionDate > "2024-05-19" {
				t.Errorf("anchor %v: record %s outside window", anchor, r.CompletionDate)
			}
		}
	}
}
