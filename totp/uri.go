package totp

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pquerna/otp"
)

var ErrUnsupportedURI = errors.New("totp: unsupported otpauth uri")

// IsURI reports whether s looks like an otpauth:// key URI.
func IsURI(s string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(s)), "otpauth://")
}

// ParseURI extracts an account name and normalized secret from an
// otpauth://totp URI. Keys that are not SHA1 with a 30 second period are
// rejected.
func ParseURI(uri string) (name, secret string, err error) {
	key, err := otp.NewKeyFromURL(strings.TrimSpace(uri))
	if err != nil {
		return "", "", fmt.Errorf("totp: parse uri: %w", err)
	}
	if key.Type() != "totp" {
		return "", "", fmt.Errorf("%w: type %q", ErrUnsupportedURI, key.Type())
	}
	if key.Algorithm() != otp.AlgorithmSHA1 {
		return "", "", fmt.Errorf("%w: algorithm %s", ErrUnsupportedURI, key.Algorithm())
	}
	if key.Period() != Period {
		return "", "", fmt.Errorf("%w: period %d", ErrUnsupportedURI, key.Period())
	}

	secret = NormalizeSecret(key.Secret())
	if err := ValidateSecret(secret); err != nil {
		return "", "", err
	}

	name = key.AccountName()
	if issuer := key.Issuer(); issuer != "" && issuer != name {
		if name == "" {
			name = issuer
		} else {
			name = issuer + ":" + name
		}
	}
	return name, secret, nil
}
