// Package token mints and validates the two bearer token classes used by
// ApplyWise: long-lived session tokens granting full account access, and
// short-lived step-up tokens proving only that the password check passed.
// Both are stateless HS256 JWTs; the embedded scope claim is checked here,
// at validation time, so a step-up token can never pass as a session token
// no matter what the caller forgets to do.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Scope is the declared purpose of a token, enforced by Validate.
type Scope string

const (
	// ScopeSession marks a token minted after full authentication.
	ScopeSession Scope = "full"

	// ScopeStepUp marks an intermediate token minted after the password
	// check for a 2FA-enabled account. It is consumable only by the
	// step-up verification endpoint.
	ScopeStepUp Scope = "step-up-pending"
)

const (
	// SessionTTL is how long a session token stays valid.
	SessionTTL = 7 * 24 * time.Hour

	// StepUpTTL bounds the window between password entry and code entry.
	StepUpTTL = 5 * time.Minute
)

var (
	// ErrExpired is returned when a token's expiry has passed.
	ErrExpired = errors.New("token expired")

	// ErrInvalid is returned when a token is malformed or its signature
	// does not verify.
	ErrInvalid = errors.New("token invalid")

	// ErrScopeMismatch is returned when a structurally valid token carries
	// a different scope than the one required.
	ErrScopeMismatch = errors.New("token scope mismatch")
)

// Claims is the JWT payload. Subject holds the user ID; Scope is the
// token class discriminant.
type Claims struct {
	Scope Scope `json:"scope"`
	jwt.RegisteredClaims
}

// Identity is the result of a successful validation.
type Identity struct {
	UserID  uuid.UUID
	TokenID string // jti, used by the step-up replay guard
}

// Issuer signs and validates tokens with a single HMAC secret. Tokens are
// self-contained; there is no server-side record of issued tokens, so
// revocation before expiry is only possible by rotating the secret.
type Issuer struct {
	secret     []byte
	sessionTTL time.Duration
	stepUpTTL  time.Duration
}

// NewIssuer creates an Issuer with the default lifetimes.
func NewIssuer(secret []byte) *Issuer {
	return &Issuer{
		secret:     secret,
		sessionTTL: SessionTTL,
		stepUpTTL:  StepUpTTL,
	}
}

// IssueSession mints a full-scope token for the given user.
func (i *Issuer) IssueSession(userID uuid.UUID) (string, error) {
	return i.issue(userID, ScopeSession, i.sessionTTL)
}

// IssueStepUp mints a short-lived step-up token for the given user.
func (i *Issuer) IssueStepUp(userID uuid.UUID) (string, error) {
	return i.issue(userID, ScopeStepUp, i.stepUpTTL)
}

func (i *Issuer) issue(userID uuid.UUID, scope Scope, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate verifies the signature and expiry of tokenStr and checks that
// its scope equals required. It returns ErrExpired for a past expiry,
// ErrInvalid for any structural or signature problem, and ErrScopeMismatch
// when the token belongs to the other class.
func (i *Issuer) Validate(tokenStr string, required Scope) (*Identity, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}
	if !parsed.Valid {
		return nil, ErrInvalid
	}

	if claims.Scope != required {
		return nil, ErrScopeMismatch
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalid
	}

	return &Identity{UserID: userID, TokenID: claims.ID}, nil
}
