// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Plan represents a user's subscription tier.
type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

// FreePlanJobLimit is the maximum number of jobs a free-tier user may track.
const FreePlanJobLimit = 10

// User represents an ApplyWise account with authentication and 2FA fields.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize the hash
	Name         string    `json:"name"`
	Plan         Plan      `json:"plan"`
	TOTPSecret   *string   `json:"-"` // Nullable; set when 2FA enrollment starts
	TOTPEnabled  bool      `json:"twoFactorEnabled"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IsPro returns true if the user is on the pro plan.
func (u *User) IsPro() bool {
	return u.Plan == PlanPro
}

// HasPendingEnrollment returns true if a TOTP secret has been generated but
// not yet confirmed with a valid code.
func (u *User) HasPendingEnrollment() bool {
	return u.TOTPSecret != nil && !u.TOTPEnabled
}
