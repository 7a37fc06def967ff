package transaction

import (
	"fmt"

	qerrors "github.com/mezonai/qledger/errors"
	"github.com/mezonai/qledger/logx"
	"github.com/mezonai/qledger/monitoring"
	"github.com/mezonai/qledger/pqsig"
)

// Signer binds canonical payloads to a private key of one scheme. It holds
// no key material and is safe for concurrent use.
type Signer struct {
	scheme *pqsig.Scheme
}

func NewSigner(id pqsig.SchemeID) (*Signer, error) {
	s, ok := pqsig.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: unknown scheme %s", qerrors.ErrSigningFailure, id)
	}
	return &Signer{scheme: s}, nil
}

func (s *Signer) Scheme() pqsig.SchemeID {
	return s.scheme.ID
}

// SignPayload signs an already canonical payload
func (s *Signer) SignPayload(payload, privateKey []byte) ([]byte, error) {
	if len(payload) == 0 || len(payload) > MaxPayloadSize {
		return nil, fmt.Errorf("%w: payload size %d outside (0, %d]", qerrors.ErrSigningFailure, len(payload), MaxPayloadSize)
	}

	sig, err := s.scheme.Sign(privateKey, payload, DomainTag)
	if err != nil {
		logx.Warn("SIGNER", "sign failed: ", err)
		return nil, fmt.Errorf("%w: %v", qerrors.ErrSigningFailure, err)
	}

	monitoring.IncreaseSignedTxCount()
	return sig, nil
}

// Sign canonicalizes the payload tuple and signs it
func (s *Signer) Sign(sender, receiver string, amount, nonce uint64, privateKey []byte) ([]byte, error) {
	if err := New(sender, receiver, amount, nonce).Validate(); err != nil {
		return nil, err
	}
	return s.SignPayload(Canonicalize(sender, receiver, amount, nonce), privateKey)
}

// SignTransaction attaches a signature and the scheme tag to tx. On error
// tx is left unchanged.
func (s *Signer) SignTransaction(tx *Transaction, privateKey []byte) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	sig, err := s.SignPayload(tx.Payload(), privateKey)
	if err != nil {
		return err
	}
	tx.Signature = sig
	tx.SchemeID = s.scheme.ID
	return nil
}
