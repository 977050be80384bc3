package vault

import (
	"golang.org/x/crypto/argon2"
)

// DeriveKey stretches password into keyLen bytes with Argon2id using fixed
// parameters (64 MiB, 3 passes, 4 lanes). The container nonce is the salt, so
// every write derives a fresh key.
func DeriveKey(password, salt []byte, keyLen uint32) ([]byte, error) {
	if len(salt) != NonceLen || keyLen == 0 {
		return nil, ErrInvalidDataFile
	}
	key := argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, keyLen)
	if uint32(len(key)) != keyLen {
		return nil, ErrInvalidDataFile
	}
	return key, nil
}
