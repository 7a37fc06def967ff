package transaction

import (
	"bytes"
	"strings"
	"testing"

	fuzz "github.com/google/gofuzz"
	qerrors "github.com/mezonai/qledger/errors"
	"github.com/mezonai/qledger/pqsig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_BinaryRoundTripVerifies(t *testing.T) {
	kp := newKeyPair(t, pqsig.DefaultScheme)
	tx := signedTx(t, kp, "Alice", "Bob", 100, 1)

	data, err := tx.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, byte(pqsig.DefaultScheme), data[len(data)-1], "scheme_id is the last field")

	decoded, err := DecodeRecord(data)
	require.NoError(t, err)
	assert.True(t, tx.Equal(decoded))
	assert.True(t, NewVerifier().Verify(decoded, kp.PublicKey))
}

func TestRecord_JSONRoundTripVerifies(t *testing.T) {
	kp := newKeyPair(t, pqsig.SchemeMLDSA44)
	tx := signedTx(t, kp, "Alice", "Bob", 18_446_744_073_709_551_615, 7)

	data, err := tx.EncodeJSON()
	require.NoError(t, err)
	s := string(data)
	order := []string{`"sender"`, `"receiver"`, `"amount"`, `"nonce"`, `"signature"`, `"scheme_id"`}
	for i := 1; i < len(order); i++ {
		assert.Less(t, strings.Index(s, order[i-1]), strings.Index(s, order[i]), "field order %s before %s", order[i-1], order[i])
	}

	decoded, err := DecodeJSON(data)
	require.NoError(t, err)
	assert.True(t, tx.Equal(decoded))
	assert.True(t, NewVerifier().Verify(decoded, kp.PublicKey))
}

func TestRecord_DecodeRejectsMalformed(t *testing.T) {
	kp := newKeyPair(t, pqsig.SchemeMLDSA44)
	good, err := signedTx(t, kp, "Alice", "Bob", 100, 1).MarshalBinary()
	require.NoError(t, err)

	cases := map[string][]byte{
		"empty":             {},
		"truncated":         good[:len(good)-1],
		"trailing byte":     append(append([]byte(nil), good...), 0),
		"non-minimal len":   append([]byte{0x85, 0x00}, good[1:]...),
		"sender too long":   {0x81, 0x04},
		"length past end":   {0x05, 'A', 'l'},
		"missing amount":    {0x01, 'A', 0x01, 'B', 0, 0, 0},
		"huge":              bytes.Repeat([]byte{1}, MaxRecordLen+1),
		"overflowing len":   {0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01},
		"signature too big": append([]byte{0x01, 'A', 0x01, 'B', 0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 1}, 0x81, 0x80, 0x01),
	}

	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeRecord(data)
			assert.ErrorIs(t, err, qerrors.ErrMalformedInput)
		})
	}
}

func TestRecord_DecodeNeverPanics(t *testing.T) {
	f := fuzz.NewWithSeed(7).NilChance(0).NumElements(0, 600)
	verifier := NewVerifier()
	for i := 0; i < 2000; i++ {
		var data []byte
		f.Fuzz(&data)
		assert.NotPanics(t, func() {
			tx, err := DecodeRecord(data)
			if err == nil {
				verifier.Verify(tx, nil)
			}
		})
	}
}

func TestRecord_MarshalRejectsOversize(t *testing.T) {
	tx := New(strings.Repeat("a", 300), "Bob", 1, 1)
	_, err := tx.MarshalBinary()
	assert.ErrorIs(t, err, qerrors.ErrMalformedInput)

	tx = New("Alice", "Bob", 1, 1)
	tx.Signature = make([]byte, MaxSignatureLen+1)
	_, err = tx.MarshalBinary()
	assert.ErrorIs(t, err, qerrors.ErrMalformedInput)
}

func TestRecord_DecodeJSONRejectsGarbage(t *testing.T) {
	_, err := DecodeJSON([]byte(`{"sender":`))
	assert.ErrorIs(t, err, qerrors.ErrMalformedInput)

	_, err = DecodeJSON([]byte(`{"sender":"a","amount":-1}`))
	assert.ErrorIs(t, err, qerrors.ErrMalformedInput)
}
