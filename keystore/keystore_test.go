package keystore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mezonai/qledger/jsonx"
	"github.com/mezonai/qledger/pqsig"
	"github.com/mezonai/qledger/security/validation"
	"github.com/mezonai/qledger/transaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSKeystore_EncryptedRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "keys")
	ks, err := NewFSKeystore(dir, []byte("correct horse"))
	require.NoError(t, err)

	kp, err := pqsig.GenerateKeyPair(pqsig.SchemeMLDSA44)
	require.NoError(t, err)
	require.NoError(t, ks.Put("Alice", kp))

	ok, err := ks.Has("Alice")
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := ks.Get("Alice")
	require.NoError(t, err)
	assert.Equal(t, kp.Scheme, got.Scheme)
	assert.Equal(t, kp.PublicKey, got.PublicKey)
	assert.Equal(t, kp.PrivateKey, got.PrivateKey)

	// the loaded key still signs for the stored public key
	signer, err := transaction.NewSigner(got.Scheme)
	require.NoError(t, err)
	tx := transaction.New("Alice", "Bob", 1, 1)
	require.NoError(t, signer.SignTransaction(tx, got.PrivateKey))
	assert.True(t, transaction.NewVerifier().Verify(tx, kp.PublicKey))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())
	info, err = os.Stat(ks.keyPath("Alice"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	raw, err := os.ReadFile(ks.keyPath("Alice"))
	require.NoError(t, err)
	var kf keyFile
	require.NoError(t, jsonx.Unmarshal(raw, &kf))
	assert.True(t, kf.Encrypted)
	assert.Len(t, kf.Salt, saltSize)
	assert.NotEqual(t, kp.PrivateKey, kf.PrivateKey)
}

func TestFSKeystore_WrongPassword(t *testing.T) {
	dir := t.TempDir()
	ks, err := NewFSKeystore(dir, []byte("secret"))
	require.NoError(t, err)
	kp, err := pqsig.GenerateKeyPair(pqsig.SchemeMLDSA44)
	require.NoError(t, err)
	require.NoError(t, ks.Put("Alice", kp))

	wrong, err := NewFSKeystore(dir, []byte("guess"))
	require.NoError(t, err)
	_, err = wrong.Get("Alice")
	assert.ErrorIs(t, err, ErrWrongPassword)

	none, err := NewFSKeystore(dir, nil)
	require.NoError(t, err)
	_, err = none.Get("Alice")
	assert.ErrorIs(t, err, ErrWrongPassword)
}

func TestFSKeystore_PlainAndList(t *testing.T) {
	ks, err := NewFSKeystore(t.TempDir(), nil)
	require.NoError(t, err)

	for _, name := range []string{"bob", "alice/ops", "Zo\u00eb"} {
		kp, err := pqsig.GenerateKeyPair(pqsig.SchemeMLDSA44)
		require.NoError(t, err)
		require.NoError(t, ks.Put(name, kp))

		got, err := ks.Get(name)
		require.NoError(t, err)
		assert.Equal(t, kp.PrivateKey, got.PrivateKey)
	}

	names, err := ks.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"Zo\u00eb", "alice/ops", "bob"}, names)
}

func TestFSKeystore_LongestValidName(t *testing.T) {
	ks, err := NewFSKeystore(t.TempDir(), []byte("pw"))
	require.NoError(t, err)
	kp, err := pqsig.GenerateKeyPair(pqsig.SchemeMLDSA44)
	require.NoError(t, err)

	name := strings.Repeat("a", validation.MaxIdentityLength)
	require.NoError(t, ks.Put(name, kp))

	got, err := ks.Get(name)
	require.NoError(t, err)
	assert.Equal(t, kp.PrivateKey, got.PrivateKey)

	names, err := ks.List()
	require.NoError(t, err)
	assert.Equal(t, []string{name}, names)
}

func TestFSKeystore_ListSkipsForeignFiles(t *testing.T) {
	ks, err := NewFSKeystore(t.TempDir(), nil)
	require.NoError(t, err)
	kp, err := pqsig.GenerateKeyPair(pqsig.SchemeMLDSA44)
	require.NoError(t, err)
	require.NoError(t, ks.Put("Alice", kp))

	data, err := os.ReadFile(ks.keyPath("Alice"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(ks.dir, "copy.key"), data, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(ks.dir, "junk.key"), []byte("{broken"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(ks.dir, "notes.txt"), []byte("x"), 0o600))

	names, err := ks.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice"}, names)
}

func TestFSKeystore_Errors(t *testing.T) {
	ks, err := NewFSKeystore(t.TempDir(), nil)
	require.NoError(t, err)
	kp, err := pqsig.GenerateKeyPair(pqsig.SchemeMLDSA44)
	require.NoError(t, err)

	_, err = ks.Get("nobody")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, ks.Put("Alice", kp))
	assert.ErrorIs(t, ks.Put("Alice", kp), ErrKeyExists)

	assert.Error(t, ks.Put("", kp))
	assert.ErrorIs(t, ks.Put("Bob", &pqsig.KeyPair{Scheme: kp.Scheme, PublicKey: kp.PublicKey}), ErrInvalidKeyFile)

	require.NoError(t, os.WriteFile(ks.keyPath("Carol"), []byte("{broken"), 0o600))
	_, err = ks.Get("Carol")
	assert.ErrorIs(t, err, ErrInvalidKeyFile)
}
