package common

import (
	"testing"

	qerrors "github.com/mezonai/qledger/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBase58_RoundTrip(t *testing.T) {
	key := []byte{0, 0, 1, 2, 3, 250, 251}
	s := EncodeBytesToBase58(key)
	assert.True(t, IsValidBase58(s))

	got, err := DecodeBase58ToBytes(" " + s + "\n")
	require.NoError(t, err)
	assert.Equal(t, key, got)
}

func TestDecodeKey(t *testing.T) {
	s := EncodeBytesToBase58([]byte{1, 2, 3, 4})

	key, err := DecodeKey(s, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, key)

	_, err = DecodeKey(s, 0)
	assert.NoError(t, err)

	_, err = DecodeKey(s, 5)
	assert.ErrorIs(t, err, qerrors.ErrMalformedInput)

	_, err = DecodeKey("0OIl", 4)
	assert.ErrorIs(t, err, qerrors.ErrMalformedInput)

	_, err = DecodeKey("", 0)
	assert.ErrorIs(t, err, qerrors.ErrMalformedInput)
	assert.False(t, IsValidBase58(""))
}
