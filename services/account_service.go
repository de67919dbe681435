package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"habitQuestAPI/internal/account"
	"habitQuestAPI/internal/progression"
)

type AccountService struct {
	db *pgxpool.Pool
}

func NewAccountService(db *pgxpool.Pool) *AccountService {
	return &AccountService{db: db}
}

const accountColumns = `id, clerk_id, email, username, first_name, last_name, image_url,
	email_verified, total_xp, level, current_streak, longest_streak, last_active_date,
	version, created_at, updated_at`

// CreateAccount provisions a new account from the identity provider's
// user.created webhook. Fresh accounts start at level 1 with no streak.
func (s *AccountService) CreateAccount(ctx context.Context, req *account.CreateAccountRequest) (*account.Account, error) {
	now := time.Now()
	acct := &account.Account{
		ID:        uuid.New(),
		ClerkID:   req.ClerkID,
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		ImageURL:  req.ImageURL,
		Level:     1,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	query := `
	INSERT INTO accounts (id, clerk_id, email, username, first_name, last_name, image_url,
		email_verified, total_xp, level, current_streak, longest_streak, last_active_date,
		version, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := s.db.Exec(ctx, query,
		acct.ID, acct.ClerkID, acct.Email, acct.Username, acct.FirstName, acct.LastName, acct.ImageURL,
		acct.EmailVerified, acct.TotalXP, acct.Level, acct.CurrentStreak, acct.LongestStreak, acct.LastActiveDate,
		acct.Version, acct.CreatedAt, acct.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return acct, nil
}

// FindByClerkID implements AccountStore.
func (s *AccountService) FindByClerkID(ctx context.Context, clerkID string) (*account.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE clerk_id = $1`

	acct, err := scanAccount(s.db.QueryRow(ctx, query, clerkID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, progression.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return acct, nil
}

// Save implements AccountStore. Persists the gamification fields with an
// optimistic version check; a rejected write surfaces as
// ErrConcurrencyConflict so the caller can reload and retry.
func (s *AccountService) Save(ctx context.Context, acct *account.Account) error {
	query := `
	UPDATE accounts
	SET total_xp = $1, level = $2, current_streak = $3, longest_streak = $4,
		last_active_date = $5, version = version + 1, updated_at = $6
	WHERE id = $7 AND version = $8
	`

	tag, err := s.db.Exec(ctx, query,
		acct.TotalXP, acct.Level, acct.CurrentStreak, acct.LongestStreak,
		acct.LastActiveDate, time.Now(), acct.ID, acct.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return progression.ErrConcurrencyConflict
	}

	acct.Version++
	return nil
}

// UpdateProfileByClerkID updates the mutable profile fields, driven by
// the user.updated webhook or the profile endpoint.
func (s *AccountService) UpdateProfileByClerkID(ctx context.Context, clerkID string, req *account.UpdateProfileRequest) (*account.Account, error) {
	query := `
	UPDATE accounts
	SET username = $1, first_name = $2, last_name = $3, image_url = $4, updated_at = $5
	WHERE clerk_id = $6
	RETURNING ` + accountColumns

	acct, err := scanAccount(s.db.QueryRow(ctx, query,
		req.Username, req.FirstName, req.LastName, req.ImageURL, time.Now(), clerkID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, progression.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return acct, nil
}

func (s *AccountService) UpdateEmailVerification(ctx context.Context, clerkID string, verified bool) error {
	_, err := s.db.Exec(ctx,
		`UPDATE accounts SET email_verified = $1, updated_at = $2 WHERE clerk_id = $3`,
		verified, time.Now(), clerkID,
	)
	if err != nil {
		return fmt.Errorf("failed to update email verification: %w", err)
	}
	return nil
}

// DeleteByClerkID removes the account and everything hanging off it
// (subscriptions, ledger entries and notifications cascade in SQL).
func (s *AccountService) DeleteByClerkID(ctx context.Context, clerkID string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM accounts WHERE clerk_id = $1`, clerkID)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return progression.ErrAccountNotFound
	}
	return nil
}

func scanAccount(row pgx.Row) (*account.Account, error) {
	acct := &account.Account{}
	err := row.Scan(
		&acct.ID, &acct.ClerkID, &acct.Email, &acct.Username, &acct.FirstName, &acct.LastName, &acct.ImageURL,
		&acct.EmailVerified, &acct.TotalXP, &acct.Level, &acct.CurrentStreak, &acct.LongestStreak, &acct.LastActiveDate,
		&acct.Version, &acct.CreatedAt, &acct.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return acct, nil
}
