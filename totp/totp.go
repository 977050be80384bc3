// Package totp generates RFC 6238 time-based one-time passwords from Base32
// shared secrets. Only HMAC-SHA1 with a 30 second step is supported.
package totp

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	DefaultDigits = 6
	Period        = 30

	alphabet = "0123456789"
)

var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

// KeyDecodeError reports a secret that is not valid Base32.
type KeyDecodeError struct {
	Key string
	Err error
}

func (e *KeyDecodeError) Error() string {
	return fmt.Sprintf("totp: invalid base32 key %q: %v", e.Key, e.Err)
}

func (e *KeyDecodeError) Unwrap() error { return e.Err }

type Generator struct {
	key    []byte
	digits int
	now    func() time.Time
}

type Option func(*Generator)

// WithDigits sets the code length. Zero yields an empty code.
func WithDigits(n int) Option {
	return func(g *Generator) { g.digits = max(n, 0) }
}

func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// New decodes an unpadded Base32 secret.
func New(secret string, opts ...Option) (*Generator, error) {
	key, err := b32.DecodeString(secret)
	if err != nil {
		return nil, &KeyDecodeError{Key: secret, Err: err}
	}
	g := &Generator{key: key, digits: DefaultDigits, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Generate returns the current code and the seconds left in its window.
func (g *Generator) Generate() (string, uint32) {
	return g.GenerateAt(g.now())
}

func (g *Generator) GenerateAt(t time.Time) (string, uint32) {
	ts := uint64(t.Unix())
	counter, remain := ts/Period, Period-ts%Period
	return HOTP(g.key, counter, g.digits), uint32(remain)
}

// HOTP computes the RFC 4226 code for counter.
func HOTP(key []byte, counter uint64, digits int) string {
	digits = max(digits, 0)
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], counter)
	mac := hmac.New(sha1.New, key)
	mac.Write(msg[:])
	return encodeDigest(mac.Sum(nil), digits)
}

func encodeDigest(digest []byte, digits int) string {
	offset := digest[len(digest)-1] & 0x0f
	snum := binary.BigEndian.Uint32(digest[offset:offset+4]) & 0x7fffffff
	mod := uint64(1)
	// snum has 31 bits, so widening past 10 digits only adds zero padding.
	for i := 0; i < digits && mod <= math.MaxUint32; i++ {
		mod *= uint64(len(alphabet))
	}
	return format(uint64(snum)%mod, digits)
}

// format renders v in the digit alphabet, left padded to width.
func format(v uint64, width int) string {
	out := make([]byte, width)
	base := uint64(len(alphabet))
	for i := width - 1; i >= 0; i-- {
		out[i] = alphabet[v%base]
		v /= base
	}
	return string(out)
}

// NormalizeSecret uppercases a secret and drops whitespace and '=' padding,
// the form secrets are stored in.
func NormalizeSecret(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', '=':
			return -1
		}
		return r
	}, s)
	return strings.ToUpper(s)
}

// ValidateSecret reports whether s decodes as unpadded Base32.
func ValidateSecret(s string) error {
	if _, err := b32.DecodeString(s); err != nil {
		return &KeyDecodeError{Key: s, Err: err}
	}
	return nil
}
