package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

var testSecret = []byte("test-signing-secret-0123456789ab")

// TestIssueSession_RoundTrip verifies that a freshly issued session token
// validates with the session scope and returns the original user ID.
func TestIssueSession_RoundTrip(t *testing.T) {
	issuer := NewIssuer(testSecret)
	userID := uuid.New()

	tok, err := issuer.IssueSession(userID)
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}

	id, err := issuer.Validate(tok, ScopeSession)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if id.UserID != userID {
		t.Errorf("UserID: got %s, want %s", id.UserID, userID)
	}
	if id.TokenID == "" {
		t.Error("TokenID should not be empty")
	}
}

// TestIssueStepUp_RoundTrip verifies that a step-up token validates with
// the step-up scope.
func TestIssueStepUp_RoundTrip(t *testing.T) {
	issuer := NewIssuer(testSecret)
	userID := uuid.New()

	tok, err := issuer.IssueStepUp(userID)
	if err != nil {
		t.Fatalf("IssueStepUp: %v", err)
	}

	id, err := issuer.Validate(tok, ScopeStepUp)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if id.UserID != userID {
		t.Errorf("UserID: got %s, want %s", id.UserID, userID)
	}
}

// TestValidate_ScopeEnforcement verifies that a step-up token is never
// accepted where a session token is required, and vice versa. This is the
// property that prevents a half-authenticated user from reaching protected
// resources.
func TestValidate_ScopeEnforcement(t *testing.T) {
	issuer := NewIssuer(testSecret)
	userID := uuid.New()

	stepUp, err := issuer.IssueStepUp(userID)
	if err != nil {
		t.Fatalf("IssueStepUp: %v", err)
	}
	session, err := issuer.IssueSession(userID)
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}

	if _, err := issuer.Validate(stepUp, ScopeSession); !errors.Is(err, ErrScopeMismatch) {
		t.Errorf("step-up token as session: got %v, want ErrScopeMismatch", err)
	}
	if _, err := issuer.Validate(session, ScopeStepUp); !errors.Is(err, ErrScopeMismatch) {
		t.Errorf("session token as step-up: got %v, want ErrScopeMismatch", err)
	}
}

// TestValidate_Expired verifies that a token past its expiry fails with
// ErrExpired rather than a generic invalid error.
func TestValidate_Expired(t *testing.T) {
	issuer := &Issuer{
		secret:     testSecret,
		sessionTTL: -1 * time.Minute, // already expired at issue time
		stepUpTTL:  -1 * time.Minute,
	}

	tok, err := issuer.IssueSession(uuid.New())
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}

	if _, err := issuer.Validate(tok, ScopeSession); !errors.Is(err, ErrExpired) {
		t.Errorf("expired token: got %v, want ErrExpired", err)
	}
}

// TestValidate_Malformed verifies that garbage and structurally broken
// inputs fail with ErrInvalid.
func TestValidate_Malformed(t *testing.T) {
	issuer := NewIssuer(testSecret)

	inputs := []string{
		"",
		"not-a-jwt",
		"aaaa.bbbb.cccc",
		"Bearer abc",
	}
	for _, in := range inputs {
		if _, err := issuer.Validate(in, ScopeSession); !errors.Is(err, ErrInvalid) {
			t.Errorf("Validate(%q): got %v, want ErrInvalid", in, err)
		}
	}
}

// TestValidate_TamperedSignature verifies that flipping part of the
// signature makes the token fail with ErrInvalid.
func TestValidate_TamperedSignature(t *testing.T) {
	issuer := NewIssuer(testSecret)

	tok, err := issuer.IssueSession(uuid.New())
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}

	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		t.Fatalf("expected 3 JWT segments, got %d", len(parts))
	}
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	if _, err := issuer.Validate(tampered, ScopeSession); !errors.Is(err, ErrInvalid) {
		t.Errorf("tampered token: got %v, want ErrInvalid", err)
	}
}

// TestValidate_WrongKey verifies that a token signed with a different
// secret fails with ErrInvalid.
func TestValidate_WrongKey(t *testing.T) {
	issuer := NewIssuer(testSecret)
	other := NewIssuer([]byte("a-completely-different-secret!!!"))

	tok, err := other.IssueSession(uuid.New())
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}

	if _, err := issuer.Validate(tok, ScopeSession); !errors.Is(err, ErrInvalid) {
		t.Errorf("wrong-key token: got %v, want ErrInvalid", err)
	}
}

// TestIssue_DistinctTokenIDs verifies that two tokens for the same user get
// distinct jti values, so the replay guard can tell them apart.
func TestIssue_DistinctTokenIDs(t *testing.T) {
	issuer := NewIssuer(testSecret)
	userID := uuid.New()

	t1, err := issuer.IssueStepUp(userID)
	if err != nil {
		t.Fatalf("IssueStepUp: %v", err)
	}
	t2, err := issuer.IssueStepUp(userID)
	if err != nil {
		t.Fatalf("IssueStepUp: %v", err)
	}

	id1, err := issuer.Validate(t1, ScopeStepUp)
	if err != nil {
		t.Fatalf("Validate t1: %v", err)
	}
	id2, err := issuer.Validate(t2, ScopeStepUp)
	if err != nil {
		t.Fatalf("Validate t2: %v", err)
	}

	if id1.TokenID == id2.TokenID {
		t.Error("expected distinct jti values for separately issued tokens")
	}
}
