package totp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatPadsLeft(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "000042", format(42, 6))
	assert.Equal(t, "000000", format(0, 6))
	assert.Equal(t, "999999", format(999999, 6))
	assert.Equal(t, "", format(42, 0))
}

func TestEncodeDigestTruncation(t *testing.T) {
	t.Parallel()
	// RFC 4226 section 5.4 example digest.
	digest := []byte{
		0x1f, 0x86, 0x98, 0x69, 0x0e, 0x02, 0xca, 0x16, 0x61, 0x85,
		0x50, 0xef, 0x7f, 0x19, 0xda, 0x8e, 0x94, 0x5b, 0x55, 0x5a,
	}
	assert.Equal(t, "872921", encodeDigest(digest, 6))
	assert.Equal(t, "1357872921", encodeDigest(digest, 10))
}

func TestEncodeDigestMasksSignBit(t *testing.T) {
	t.Parallel()
	digest := make([]byte, 20)
	digest[0] = 0xff
	digest[19] = 0x00
	// 0x7f000000 = 2130706432
	assert.Equal(t, "2130706432", encodeDigest(digest, 10))
}
