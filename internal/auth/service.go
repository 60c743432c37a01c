// Package auth implements the login and step-up state machine: password
// checks, session/step-up token issuance, and TOTP enrollment lifecycle.
// It is the only place that decides which token class a caller receives.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/nadiaharb/apply-wise/internal/models"
	"github.com/nadiaharb/apply-wise/internal/store"
	"github.com/nadiaharb/apply-wise/internal/token"
	"github.com/nadiaharb/apply-wise/internal/totp"
)

// dummyHash is a valid bcrypt hash compared against when the email is
// unknown, so both failure branches of Login cost one bcrypt verification.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

const minPasswordLen = 6

// Directory is the credential store the service works against. Implemented
// by store.UserStore; tests substitute an in-memory version.
type Directory interface {
	FindByEmail(email string) (*models.User, error)
	FindByID(id uuid.UUID) (*models.User, error)
	Create(email, password, name string) (*models.User, error)
	SetTOTPSecret(userID uuid.UUID, secret string) error
	EnableTOTP(userID uuid.UUID) error
	ResetTOTP(userID uuid.UUID) error
	CheckPassword(user *models.User, password string) bool
}

// ReplayGuard marks step-up tokens as consumed so a captured token cannot
// complete verification twice inside its lifetime. Optional; the short
// token TTL already bounds the window when no guard is configured.
type ReplayGuard interface {
	Consume(ctx context.Context, tokenID string) (bool, error)
}

// LoginResult is the outcome of a password check. Exactly one of
// SessionToken or StepUpToken is set: a session token when the account has
// no second factor, a step-up token when code entry is still required.
type LoginResult struct {
	SessionToken   string
	StepUpToken    string
	RequiresStepUp bool
	User           *models.User
}

// Service orchestrates authentication against the directory and the token
// issuer. All methods are safe for concurrent use; there is no in-process
// session state.
type Service struct {
	users  Directory
	tokens *token.Issuer
	replay ReplayGuard // may be nil
}

// NewService creates the authentication service. replay may be nil to run
// without a step-up replay guard.
func NewService(users Directory, tokens *token.Issuer, replay ReplayGuard) *Service {
	return &Service{users: users, tokens: tokens, replay: replay}
}

// Register creates an account and signs it straight in. New accounts start
// on the free plan with no second factor.
func (s *Service) Register(email, password, name string) (string, *models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", nil, ErrMissingFields
	}
	if len(password) < minPasswordLen {
		return "", nil, ErrWeakPassword
	}

	user, err := s.users.Create(email, password, name)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return "", nil, ErrEmailTaken
		}
		return "", nil, fmt.Errorf("register: %w", err)
	}

	sessionToken, err := s.tokens.IssueSession(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("register: %w", err)
	}

	slog.Info("user registered", "user_id", user.ID)
	return sessionToken, user, nil
}

// Login checks the password and decides the next step. Unknown email and
// wrong password are indistinguishable in both error and timing. When the
// account has 2FA enabled the result carries only a step-up token; a
// session token is never produced before the code is verified.
func (s *Service) Login(email, password string) (*LoginResult, error) {
	user, err := s.users.FindByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("login lookup: %w", err)
	}
	if user == nil {
		// Burn a comparison so the miss costs the same as a mismatch.
		bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
		return nil, ErrInvalidCredentials
	}
	if !s.users.CheckPassword(user, password) {
		return nil, ErrInvalidCredentials
	}

	if user.TOTPEnabled {
		stepUpToken, err := s.tokens.IssueStepUp(user.ID)
		if err != nil {
			return nil, fmt.Errorf("login: %w", err)
		}
		return &LoginResult{RequiresStepUp: true, StepUpToken: stepUpToken}, nil
	}

	sessionToken, err := s.tokens.IssueSession(user.ID)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &LoginResult{SessionToken: sessionToken, User: user}, nil
}

// VerifyStepUp exchanges a step-up token plus a valid TOTP code for a
// session token. A wrong code leaves the step-up token reusable until it
// expires; a correct code consumes it.
func (s *Service) VerifyStepUp(ctx context.Context, stepUpToken, code string) (string, *models.User, error) {
	id, err := s.tokens.Validate(stepUpToken, token.ScopeStepUp)
	if err != nil {
		return "", nil, ErrInvalidSession
	}

	user, err := s.users.FindByID(id.UserID)
	if err != nil {
		return "", nil, fmt.Errorf("step-up lookup: %w", err)
	}
	if user == nil {
		return "", nil, ErrInvalidSession
	}
	if user.TOTPSecret == nil {
		return "", nil, ErrNotEnrolled
	}

	if !totp.Verify(*user.TOTPSecret, code) {
		return "", nil, ErrInvalidCode
	}

	if s.replay != nil {
		fresh, err := s.replay.Consume(ctx, id.TokenID)
		if err != nil {
			return "", nil, fmt.Errorf("step-up replay check: %w", err)
		}
		if !fresh {
			return "", nil, ErrInvalidSession
		}
	}

	sessionToken, err := s.tokens.IssueSession(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("step-up: %w", err)
	}

	slog.Info("step-up verification completed", "user_id", user.ID)
	return sessionToken, user, nil
}

// StartEnrollment generates a fresh TOTP secret for the user and stores it
// as pending. Calling it again simply replaces the pending secret; the
// enabled flag only flips in ConfirmEnrollment.
func (s *Service) StartEnrollment(userID uuid.UUID) (*totp.Enrollment, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return nil, fmt.Errorf("enrollment lookup: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	enrollment, err := totp.Enroll(user.Email)
	if err != nil {
		return nil, fmt.Errorf("enrollment: %w", err)
	}
	if err := s.users.SetTOTPSecret(user.ID, enrollment.Secret); err != nil {
		return nil, fmt.Errorf("enrollment: %w", err)
	}
	return enrollment, nil
}

// ConfirmEnrollment verifies a code against the pending secret and, on
// success, activates the second factor. A wrong code leaves the pending
// secret intact for another attempt.
func (s *Service) ConfirmEnrollment(userID uuid.UUID, code string) error {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return fmt.Errorf("confirm lookup: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}
	if user.TOTPSecret == nil {
		return ErrNotPending
	}

	if !totp.Verify(*user.TOTPSecret, code) {
		return ErrInvalidCode
	}

	if err := s.users.EnableTOTP(user.ID); err != nil {
		return fmt.Errorf("confirm: %w", err)
	}
	slog.Info("two-factor authentication enabled", "user_id", user.ID)
	return nil
}

// DisableSecondFactor turns 2FA off after verifying a current code. A
// wrong code changes nothing.
func (s *Service) DisableSecondFactor(userID uuid.UUID, code string) error {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return fmt.Errorf("disable lookup: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}
	if !user.TOTPEnabled || user.TOTPSecret == nil {
		return ErrNotEnrolled
	}

	if !totp.Verify(*user.TOTPSecret, code) {
		return ErrInvalidCode
	}

	if err := s.users.ResetTOTP(user.ID); err != nil {
		return fmt.Errorf("disable: %w", err)
	}
	slog.Info("two-factor authentication disabled", "user_id", user.ID)
	return nil
}

// Me resolves a user ID (from a validated session token) to the account.
func (s *Service) Me(userID uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return nil, fmt.Errorf("me lookup: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
