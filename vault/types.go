package vault

import (
	"errors"
	"fmt"
	"sort"
	"unicode/utf8"
)

const (
	KeyLen    = 32
	NonceLen  = 12
	TagLen    = 16
	HeaderLen = NonceLen + 1

	argonTime    = 3
	argonMemory  = 64 * 1024
	argonThreads = 4
)

var (
	ErrHomeDirNotFound = errors.New("vault: home directory not found")
	ErrInvalidDataFile = errors.New("vault: invalid data file")
	ErrWrongPassword   = errors.New("vault: wrong password")
	ErrInvalidAccount  = errors.New("vault: account is not valid UTF-8")
)

// PasswordMode is the byte stored right after the nonce in the container.
type PasswordMode uint8

const (
	UserPassword    PasswordMode = 1
	DefaultPassword PasswordMode = 2
)

func parseMode(b byte) (PasswordMode, error) {
	switch m := PasswordMode(b); m {
	case UserPassword, DefaultPassword:
		return m, nil
	default:
		return 0, ErrInvalidDataFile
	}
}

func (m PasswordMode) String() string {
	switch m {
	case UserPassword:
		return "user"
	case DefaultPassword:
		return "default"
	default:
		return "unknown"
	}
}

// State is the decrypted vault as seen by one session.
type State struct {
	// Empty is set when the container has never been written.
	Empty bool
	// Password is only meaningful under UserPassword and is never persisted.
	Password []byte
	Mode     PasswordMode
	Accounts map[string]string
}

func newEmptyState() *State {
	return &State{Empty: true, Mode: DefaultPassword, Accounts: map[string]string{}}
}

func (s *State) Names() []string {
	names := make([]string, 0, len(s.Accounts))
	for name := range s.Accounts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *State) Add(name, secret string) {
	if s.Accounts == nil {
		s.Accounts = map[string]string{}
	}
	s.Accounts[name] = secret
}

func (s *State) Remove(name string) bool {
	if _, ok := s.Accounts[name]; !ok {
		return false
	}
	delete(s.Accounts, name)
	return true
}

func (s *State) Secret(name string) (string, bool) {
	secret, ok := s.Accounts[name]
	return secret, ok
}

// Prompter supplies interactive input to the vault.
type Prompter interface {
	// ReadPassword reads a line without echoing it.
	ReadPassword(prompt string) ([]byte, error)
	// Notify shows a short message to the user.
	Notify(msg string)
}

// ValidateAccount reports whether name and secret can be stored. The
// serialized account map must be valid UTF-8 to be read back.
func ValidateAccount(name, secret string) error {
	if !utf8.ValidString(name) {
		return fmt.Errorf("%w: name %q", ErrInvalidAccount, name)
	}
	if !utf8.ValidString(secret) {
		return fmt.Errorf("%w: secret of %q", ErrInvalidAccount, name)
	}
	return nil
}
