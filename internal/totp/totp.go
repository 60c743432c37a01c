// Package totp wraps time-based one-time-password enrollment and
// verification for the second authentication factor. Secrets are 160-bit
// random values; codes are 6 digits over 30-second steps with a drift
// tolerance of one step either side.
package totp

import (
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	// issuerName appears in authenticator apps next to the account label.
	issuerName = "ApplyWise"

	// period is the TOTP time step in seconds.
	period = 30

	// secretSize is the raw secret length in bytes (160 bits).
	secretSize = 20

	// driftSkew is how many adjacent time steps are accepted on each side
	// of the current one. Widening this grows the replay and brute-force
	// surface against the 10^6 code space, so it stays at 1.
	driftSkew = 1

	// qrSize is the pixel size of the generated enrollment QR code.
	qrSize = 256
)

// Enrollment holds the material a user needs to register the secret in an
// authenticator app: the base32 secret for manual entry, the otpauth URL,
// and that URL rendered as a PNG QR code.
type Enrollment struct {
	Secret string
	URL    string
	QRPNG  []byte
}

// Enroll generates a fresh random secret for the given account label and
// returns the provisioning material.
func Enroll(accountName string) (*Enrollment, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuerName,
		AccountName: accountName,
		Period:      period,
		SecretSize:  secretSize,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, fmt.Errorf("totp generate: %w", err)
	}

	png, err := qrcode.Encode(key.URL(), qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("totp qr encode: %w", err)
	}

	return &Enrollment{
		Secret: key.Secret(),
		URL:    key.URL(),
		QRPNG:  png,
	}, nil
}

// Verify reports whether code matches the secret at the current time,
// tolerating one step of clock drift either way. Malformed input
// (wrong length, non-numeric) never matches.
func Verify(secret, code string) bool {
	return verifyAt(secret, code, time.Now())
}

// verifyAt is the clock-injected core of Verify, used directly by tests.
func verifyAt(secret, code string, at time.Time) bool {
	ok, err := totp.ValidateCustom(code, secret, at.UTC(), totp.ValidateOpts{
		Period:    period,
		Skew:      driftSkew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}
