package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

func randBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, err
	}
	return b, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("vault: create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("vault: create gcm: %w", err)
	}
	return gcm, nil
}

func aeadSeal(key, nonce, plaintext []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	return gcm.Seal(nil, nonce, plaintext, nil), nil
}

func aeadOpen(key, nonce, ciphertext []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	pt, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrWrongPassword
	}
	return pt, nil
}

// keyMaterial picks the KDF input for a mode. In default mode the nonce
// itself stands in for the password.
func keyMaterial(mode PasswordMode, password, nonce []byte) []byte {
	if mode == DefaultPassword {
		return nonce
	}
	return password
}

// +-------+------+---------------------+
// | nonce | mode | ciphertext || tag   |
// +-------+------+---------------------+
// | 12B   | 1B   | ...                 |
// +-------+------+---------------------+

func encodeContainer(nonce []byte, mode PasswordMode, ct []byte) []byte {
	raw := make([]byte, 0, HeaderLen+len(ct))
	raw = append(raw, nonce...)
	raw = append(raw, byte(mode))
	return append(raw, ct...)
}

func decodeHeader(raw []byte) (nonce []byte, mode PasswordMode, ct []byte, err error) {
	if len(raw) < HeaderLen {
		return nil, 0, nil, ErrInvalidDataFile
	}
	mode, err = parseMode(raw[NonceLen])
	if err != nil {
		return nil, 0, nil, err
	}
	return raw[:NonceLen], mode, raw[HeaderLen:], nil
}

// ensureFile creates dir and an empty container if the file is missing.
func ensureFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("vault: create directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if os.IsExist(err) {
			return nil
		}
		return fmt.Errorf("vault: create file: %w", err)
	}
	return f.Close()
}

func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmpPath := filepath.Join(dir, "."+filepath.Base(path)+"-"+uuid.NewString()+".tmp")
	tmpFile, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return err
	}
	if err := tmpFile.Sync(); err != nil {
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return err
	}

	_ = syncDir(dir)
	_ = os.Chmod(path, perm)
	return nil
}

func syncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
