package vault

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/fahmaliyi/otpvault/logger"
)

const maxPasswordRetries = 2

type Vault struct {
	Filename string
	prompt   Prompter
	log      *slog.Logger
}

type Option func(*Vault)

func WithLogger(l *slog.Logger) Option {
	return func(v *Vault) {
		if l != nil {
			v.log = l
		}
	}
}

func NewVault(filename string, p Prompter, opts ...Option) *Vault {
	v := &Vault{
		Filename: filename,
		prompt:   p,
		log:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.log = v.log.With(logger.Component("vault"))
	return v
}

// Read loads and decrypts the container, creating an empty one if the file
// does not exist yet.
func (v *Vault) Read() (*State, error) {
	if err := ensureFile(v.Filename); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(v.Filename)
	if err != nil {
		return nil, fmt.Errorf("vault: read file: %w", err)
	}

	start := time.Now()
	s, err := Open(raw, v.prompt)
	if err != nil {
		v.log.Debug("open failed", logger.Path(v.Filename), logger.Error(err))
		return nil, err
	}
	v.log.Debug("vault opened",
		logger.Path(v.Filename),
		slog.Bool("empty", s.Empty),
		slog.String("mode", s.Mode.String()),
		slog.Int("accounts", len(s.Accounts)),
		logger.Elapsed(start),
	)
	return s, nil
}

// Save encrypts s under a fresh nonce and replaces the container.
func (v *Vault) Save(s *State) (bool, error) {
	start := time.Now()
	raw, err := Seal(s)
	if err != nil {
		return false, err
	}
	if err := atomicWriteFile(v.Filename, raw, 0o600); err != nil {
		return false, fmt.Errorf("vault: write file: %w", err)
	}
	v.log.Debug("vault saved",
		logger.Path(v.Filename),
		slog.String("mode", s.Mode.String()),
		slog.Int("bytes", len(raw)),
		logger.Elapsed(start),
	)
	return true, nil
}

// InitPassword asks for a new password twice. An empty password switches the
// vault to default mode.
func (v *Vault) InitPassword(s *State) (bool, error) {
	var pwd []byte
	for retries := maxPasswordRetries; ; retries-- {
		p, err := v.prompt.ReadPassword("New password: ")
		if err != nil {
			return false, fmt.Errorf("vault: read password: %w", err)
		}
		confirm, err := v.prompt.ReadPassword("Confirm password: ")
		if err != nil {
			zero(p)
			return false, fmt.Errorf("vault: read password: %w", err)
		}
		match := bytes.Equal(p, confirm)
		zero(confirm)
		if match {
			pwd = p
			break
		}
		zero(p)
		if retries == 0 {
			v.log.Warn("password confirmation failed")
			return false, ErrWrongPassword
		}
		v.prompt.Notify("Different password, try again!")
	}

	if len(pwd) == 0 {
		s.Mode = DefaultPassword
		zero(s.Password)
		s.Password = nil
	} else {
		s.Mode = UserPassword
		zero(s.Password)
		s.Password = pwd
	}
	return true, nil
}

// Seal serializes and encrypts s into container bytes.
func Seal(s *State) ([]byte, error) {
	if _, err := parseMode(byte(s.Mode)); err != nil {
		return nil, err
	}
	accounts := s.Accounts
	if accounts == nil {
		accounts = map[string]string{}
	}
	for name, secret := range accounts {
		if err := ValidateAccount(name, secret); err != nil {
			return nil, err
		}
	}
	pt, err := toml.Marshal(accounts)
	if err != nil {
		return nil, fmt.Errorf("vault: encode accounts: %w", err)
	}
	defer zero(pt)

	nonce, err := randBytes(NonceLen)
	if err != nil {
		return nil, fmt.Errorf("vault: generate nonce: %w", err)
	}

	key, err := DeriveKey(keyMaterial(s.Mode, s.Password, nonce), nonce, KeyLen)
	if err != nil {
		return nil, err
	}
	defer zero(key)

	ct, err := aeadSeal(key, nonce, pt)
	if err != nil {
		return nil, err
	}
	return encodeContainer(nonce, s.Mode, ct), nil
}

// Open decrypts container bytes. A zero-length container is an empty vault;
// p is only consulted in user-password mode.
func Open(raw []byte, p Prompter) (*State, error) {
	if len(raw) == 0 {
		return newEmptyState(), nil
	}
	nonce, mode, ct, err := decodeHeader(raw)
	if err != nil {
		return nil, err
	}

	s := &State{Mode: mode, Accounts: map[string]string{}}
	if mode == UserPassword {
		if p == nil {
			return nil, fmt.Errorf("vault: no password prompter configured")
		}
		s.Password, err = p.ReadPassword("Password: ")
		if err != nil {
			return nil, fmt.Errorf("vault: read password: %w", err)
		}
	}

	key, err := DeriveKey(keyMaterial(mode, s.Password, nonce), nonce, KeyLen)
	if err != nil {
		return nil, err
	}
	defer zero(key)

	pt, err := aeadOpen(key, nonce, ct)
	if err != nil {
		return nil, err
	}
	defer zero(pt)

	if err := toml.Unmarshal(pt, &s.Accounts); err != nil {
		return nil, fmt.Errorf("vault: decode accounts: %w", err)
	}
	if s.Accounts == nil {
		s.Accounts = map[string]string{}
	}
	return s, nil
}

// Zero securely wipes a byte slice from memory.
func Zero(b []byte) {
	zero(b)
}
