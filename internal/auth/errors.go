package auth

import "errors"

// The full failure taxonomy of the authentication flows. Handlers map each
// sentinel to one HTTP response; anything else that comes out of the
// service is an internal fault (usually database connectivity) and must
// surface as such, never disguised as a credential failure.
var (
	// ErrMissingFields is returned when registration lacks an email or password.
	ErrMissingFields = errors.New("email and password are required")

	// ErrWeakPassword is returned when the password is under 6 characters.
	ErrWeakPassword = errors.New("password must be at least 6 characters")

	// ErrEmailTaken is returned when registering an already-used email.
	ErrEmailTaken = errors.New("email already in use")

	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password, deliberately indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidSession covers every step-up token failure: malformed,
	// expired, wrong scope, or already consumed. Collapsed to one error so
	// the response never reveals which check failed.
	ErrInvalidSession = errors.New("invalid or expired session")

	// ErrInvalidCode is returned when a submitted TOTP code does not match.
	ErrInvalidCode = errors.New("invalid code")

	// ErrNotEnrolled is returned when an operation requires an active
	// second factor and the user has none.
	ErrNotEnrolled = errors.New("two-factor authentication is not enabled")

	// ErrNotPending is returned when confirming enrollment without a
	// pending secret.
	ErrNotPending = errors.New("no two-factor setup in progress")

	// ErrUserNotFound is returned when a token subject no longer resolves
	// to an account.
	ErrUserNotFound = errors.New("user not found")
)
