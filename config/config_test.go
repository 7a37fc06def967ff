package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mezonai/qledger/common"
	qerrors "github.com/mezonai/qledger/errors"
	"github.com/mezonai/qledger/pqsig"
	"github.com/mezonai/qledger/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadLedgerConfig_Defaults(t *testing.T) {
	lc, err := LoadLedgerConfig("")
	require.NoError(t, err)

	scheme, err := lc.SignerScheme()
	require.NoError(t, err)
	assert.Equal(t, pqsig.DefaultScheme, scheme)
	assert.Equal(t, store.LevelDBStoreType, lc.Store.Type)
	assert.Equal(t, DefaultStoreDirectory, lc.Store.Directory)

	accepted, err := lc.AcceptedSchemes()
	require.NoError(t, err)
	assert.Empty(t, accepted)
}

func TestLoadLedgerConfig_File(t *testing.T) {
	path := writeFile(t, "ledger.ini", `
[signer]
scheme = ML-DSA-87
accepted_schemes = ml-dsa-65, ml-dsa-87

[store]
type = boltdb
directory = /tmp/qledger

[log]
filename = /tmp/qledger.log
max_size_mb = 5
console = true
`)
	lc, err := LoadLedgerConfig(path)
	require.NoError(t, err)

	scheme, err := lc.SignerScheme()
	require.NoError(t, err)
	assert.Equal(t, pqsig.SchemeMLDSA87, scheme)

	accepted, err := lc.AcceptedSchemes()
	require.NoError(t, err)
	assert.Equal(t, []pqsig.SchemeID{pqsig.SchemeMLDSA65, pqsig.SchemeMLDSA87}, accepted)

	assert.Equal(t, store.BoltDBStoreType, lc.Store.Type)
	assert.Equal(t, "/tmp/qledger", lc.Store.Directory)

	opts := lc.Log.Options()
	assert.Equal(t, "/tmp/qledger.log", opts.Filename)
	assert.Equal(t, 5, opts.MaxSizeMB)
	assert.Zero(t, opts.MaxAgeDays)
	assert.True(t, opts.Console)
}

func TestLoadLedgerConfig_PartialKeepsDefaults(t *testing.T) {
	path := writeFile(t, "ledger.ini", "[store]\ntype = memory\n")
	lc, err := LoadLedgerConfig(path)
	require.NoError(t, err)
	assert.Equal(t, store.MemoryStoreType, lc.Store.Type)
	assert.Equal(t, pqsig.DefaultScheme.String(), lc.Signer.Scheme)
}

func TestLoadLedgerConfig_Invalid(t *testing.T) {
	cases := map[string]string{
		"unknown scheme":   "[signer]\nscheme = rsa-2048\n",
		"unknown accepted": "[signer]\naccepted_schemes = ml-dsa-44,sphincs\n",
		"unknown store":    "[store]\ntype = rocksdb\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadLedgerConfig(writeFile(t, "ledger.ini", content))
			assert.Error(t, err)
		})
	}

	_, err := LoadLedgerConfig(filepath.Join(t.TempDir(), "missing.ini"))
	assert.Error(t, err)
}

func TestIdentities_SaveAndLoad(t *testing.T) {
	alice, err := pqsig.GenerateKeyPair(pqsig.SchemeMLDSA44)
	require.NoError(t, err)
	bob, err := pqsig.GenerateKeyPair(pqsig.SchemeMLDSA65)
	require.NoError(t, err)

	kr := NewKeyring()
	require.NoError(t, kr.Add("bob", bob.Scheme, bob.PublicKey))
	require.NoError(t, kr.Add("alice", alice.Scheme, alice.PublicKey))
	assert.Error(t, kr.Add("alice", alice.Scheme, alice.PublicKey))
	assert.ErrorIs(t, kr.Add("", alice.Scheme, alice.PublicKey), qerrors.ErrMalformedInput)

	path := filepath.Join(t.TempDir(), "identities.yml")
	require.NoError(t, kr.Save(path))

	loaded, err := LoadIdentities(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, loaded.Names())

	scheme, pub, ok := loaded.Lookup("alice")
	require.True(t, ok)
	assert.Equal(t, pqsig.SchemeMLDSA44, scheme)
	assert.Equal(t, alice.PublicKey, pub)

	_, _, ok = loaded.Lookup("carol")
	assert.False(t, ok)
}

func TestLoadIdentities_Rejects(t *testing.T) {
	kp, err := pqsig.GenerateKeyPair(pqsig.SchemeMLDSA44)
	require.NoError(t, err)
	key := common.EncodeBytesToBase58(kp.PublicKey)

	cases := map[string]string{
		"duplicate name": "identities:\n  - {name: alice, scheme: ml-dsa-44, public_key: " + key + "}\n" +
			"  - {name: alice, scheme: ml-dsa-44, public_key: " + key + "}\n",
		"wrong key size": "identities:\n  - {name: alice, scheme: ml-dsa-65, public_key: " + key + "}\n",
		"bad base58":     "identities:\n  - {name: alice, scheme: ml-dsa-44, public_key: 0OIl}\n",
		"unknown scheme": "identities:\n  - {name: alice, scheme: falcon-512, public_key: " + key + "}\n",
		"not yaml":       "identities: [",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadIdentities(writeFile(t, "identities.yml", content))
			assert.Error(t, err)
		})
	}
}
