package cmd

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mezonai/qledger/common"
	"github.com/mezonai/qledger/config"
	qerrors "github.com/mezonai/qledger/errors"
	"github.com/mezonai/qledger/jsonx"
	"github.com/mezonai/qledger/keystore"
	"github.com/mezonai/qledger/pqsig"
	"github.com/mezonai/qledger/transaction"
)

const (
	defaultKeystoreDir = "./data/keys"
	passwordEnv        = "QLEDGER_PASSWORD"
)

// KeystoreFlags are shared by commands that touch private keys
type KeystoreFlags struct {
	Dir      string
	Password string
}

func (kf KeystoreFlags) open() (*keystore.FSKeystore, error) {
	password := kf.Password
	if password == "" {
		password = os.Getenv(passwordEnv)
	}
	return keystore.NewFSKeystore(kf.Dir, []byte(password))
}

// parseAmount accepts digits with optional '_' separators
func parseAmount(s string) (uint64, error) {
	amount, err := strconv.ParseUint(strings.ReplaceAll(strings.TrimSpace(s), "_", ""), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: amount %q: %v", qerrors.ErrMalformedInput, s, err)
	}
	return amount, nil
}

func randomNonce() (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(rand.Reader, buf[:]); err != nil {
		return 0, fmt.Errorf("could not draw nonce: %w", err)
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

// readTransaction loads a wire record from path, JSON or binary
func readTransaction(path string) (*transaction.Transaction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		return transaction.DecodeJSON(trimmed)
	}
	return transaction.DecodeRecord(data)
}

// resolvePublicKey picks the key the sender is checked against: an
// explicit base58 key wins over the keyring entry for tx.Sender.
func resolvePublicKey(tx *transaction.Transaction, pubkey, identitiesPath string) ([]byte, error) {
	if pubkey != "" {
		return common.DecodeKey(pubkey, 0)
	}
	if identitiesPath == "" {
		return nil, fmt.Errorf("%w: need --pubkey or --identities", qerrors.ErrMalformedInput)
	}

	kr, err := config.LoadIdentities(identitiesPath)
	if err != nil {
		return nil, err
	}
	scheme, pub, ok := kr.Lookup(tx.Sender)
	if !ok {
		return nil, fmt.Errorf("%w: no declared key for sender %q", qerrors.ErrInvalidSignature, tx.Sender)
	}
	if scheme != tx.SchemeID {
		return nil, fmt.Errorf("%w: sender %q declared %s, transaction uses %s",
			qerrors.ErrInvalidSignature, tx.Sender, scheme, tx.SchemeID)
	}
	return pub, nil
}

func newVerifier() (*transaction.Verifier, error) {
	accepted, err := ledgerConfig.AcceptedSchemes()
	if err != nil {
		return nil, err
	}
	return transaction.NewVerifier(accepted...), nil
}

func signerScheme(flagValue string) (pqsig.SchemeID, error) {
	if flagValue != "" {
		return pqsig.ParseScheme(flagValue)
	}
	return ledgerConfig.SignerScheme()
}

func writeJSON(w io.Writer, v interface{}) error {
	data, err := jsonx.MarshalIndent(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
