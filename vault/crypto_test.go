package vault

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	t.Parallel()
	m, err := parseMode(1)
	require.NoError(t, err)
	assert.Equal(t, UserPassword, m)

	m, err = parseMode(2)
	require.NoError(t, err)
	assert.Equal(t, DefaultPassword, m)

	_, err = parseMode(0)
	assert.ErrorIs(t, err, ErrInvalidDataFile)
}

func TestContainerLayout(t *testing.T) {
	t.Parallel()
	nonce := bytes.Repeat([]byte{0xAA}, NonceLen)
	ct := []byte("ciphertext-and-tag")

	raw := encodeContainer(nonce, DefaultPassword, ct)
	require.Len(t, raw, HeaderLen+len(ct))
	assert.Equal(t, nonce, raw[:NonceLen])
	assert.Equal(t, byte(2), raw[12])
	assert.Equal(t, ct, raw[13:])

	gotNonce, mode, gotCT, err := decodeHeader(raw)
	require.NoError(t, err)
	assert.Equal(t, nonce, gotNonce)
	assert.Equal(t, DefaultPassword, mode)
	assert.Equal(t, ct, gotCT)
}

func TestKeyMaterial(t *testing.T) {
	t.Parallel()
	nonce := []byte("nonce-bytes!")
	pw := []byte("pw")
	assert.Equal(t, nonce, keyMaterial(DefaultPassword, pw, nonce))
	assert.Equal(t, pw, keyMaterial(UserPassword, pw, nonce))
}

func TestOpenMalformedPlaintext(t *testing.T) {
	t.Parallel()
	nonce, err := randBytes(NonceLen)
	require.NoError(t, err)
	key, err := DeriveKey(nonce, nonce, KeyLen)
	require.NoError(t, err)
	ct, err := aeadSeal(key, nonce, []byte("this is = [not toml"))
	require.NoError(t, err)

	_, err = Open(encodeContainer(nonce, DefaultPassword, ct), nil)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrWrongPassword))
	assert.False(t, errors.Is(err, ErrInvalidDataFile))
	assert.Contains(t, err.Error(), "decode accounts")
}

func TestAccountsEncodingIsSorted(t *testing.T) {
	t.Parallel()
	s := &State{Mode: DefaultPassword, Accounts: map[string]string{"zeta": "AAAA", "alpha": "BBBB"}}
	raw, err := Seal(s)
	require.NoError(t, err)

	nonce, _, ct, err := decodeHeader(raw)
	require.NoError(t, err)
	key, err := DeriveKey(nonce, nonce, KeyLen)
	require.NoError(t, err)
	pt, err := aeadOpen(key, nonce, ct)
	require.NoError(t, err)

	assert.Equal(t, "alpha = \"BBBB\"\nzeta = \"AAAA\"\n", string(pt))
}

func TestZero(t *testing.T) {
	t.Parallel()
	b := []byte("secret")
	Zero(b)
	assert.Equal(t, make([]byte, 6), b)
}
