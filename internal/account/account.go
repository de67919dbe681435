package account

import (
	"time"

	"github.com/google/uuid"
)

// Account is an application user, created from the identity provider's
// user.created webhook. The streak fields are the account-wide activity
// streak, independent of any single habit's streak.
type Account struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	ClerkID        string     `json:"clerk_id" db:"clerk_id"`
	Email          string     `json:"email" db:"email"`
	Username       string     `json:"username" db:"username"`
	FirstName      string     `json:"first_name" db:"first_name"`
	LastName       string     `json:"last_name" db:"last_name"`
	ImageURL       string     `json:"image_url,omitempty" db:"image_url"`
	EmailVerified  bool       `json:"email_verified" db:"email_verified"`
	TotalXP        int        `json:"total_xp" db:"total_xp"`
	Level          int        `json:"level" db:"level"`
	CurrentStreak  int        `json:"current_streak" db:"current_streak"`
	LongestStreak  int        `json:"longest_streak" db:"longest_streak"`
	LastActiveDate *time.Time `json:"last_active_date" db:"last_active_date"`
	Version        int        `json:"-" db:"version"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

type CreateAccountRequest struct {
	ClerkID   string `json:"clerk_id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	ImageURL  string `json:"image_url"`
}

type UpdateProfileRequest struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	ImageURL  string `json:"image_url"`
}
