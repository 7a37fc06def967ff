package transaction

import (
	"bytes"
	"fmt"

	qerrors "github.com/mezonai/qledger/errors"
	"github.com/mezonai/qledger/pqsig"
	"github.com/mezonai/qledger/security/validation"
)

// Transaction is a value-transfer claim. Sender, Receiver, Amount and Nonce
// form the signed payload; Signature and SchemeID are attached by a Signer.
// Field order matches the wire record.
type Transaction struct {
	Sender    string         `json:"sender"`
	Receiver  string         `json:"receiver"`
	Amount    uint64         `json:"amount"`
	Nonce     uint64         `json:"nonce"`
	Signature []byte         `json:"signature,omitempty"`
	SchemeID  pqsig.SchemeID `json:"scheme_id"`
}

// New drafts an unsigned transaction
func New(sender, receiver string, amount, nonce uint64) *Transaction {
	return &Transaction{
		Sender:   sender,
		Receiver: receiver,
		Amount:   amount,
		Nonce:    nonce,
	}
}

// Validate checks the structural rules that must hold before any
// cryptographic work is spent on the transaction.
func (tx *Transaction) Validate() error {
	if tx == nil {
		return fmt.Errorf("%w: nil transaction", qerrors.ErrMalformedInput)
	}
	if err := validation.ValidateIdentity(validation.SenderField, tx.Sender); err != nil {
		return err
	}
	return validation.ValidateIdentity(validation.ReceiverField, tx.Receiver)
}

// Payload returns the canonical bytes that are signed and verified
func (tx *Transaction) Payload() []byte {
	return Canonicalize(tx.Sender, tx.Receiver, tx.Amount, tx.Nonce)
}

// ID returns the content id. It ignores the signature, so it is the same
// before and after signing.
func (tx *Transaction) ID() ID {
	return ComputeID(tx.Sender, tx.Receiver, tx.Amount, tx.Nonce)
}

func (tx *Transaction) IsSigned() bool {
	return len(tx.Signature) > 0 && tx.SchemeID != pqsig.SchemeUnset
}

// Clone returns a deep copy; the signature backing array is not shared
func (tx *Transaction) Clone() *Transaction {
	if tx == nil {
		return nil
	}
	cp := *tx
	if tx.Signature != nil {
		cp.Signature = append([]byte(nil), tx.Signature...)
	}
	return &cp
}

func (tx *Transaction) Equal(other *Transaction) bool {
	if tx == nil || other == nil {
		return tx == other
	}
	return tx.Sender == other.Sender &&
		tx.Receiver == other.Receiver &&
		tx.Amount == other.Amount &&
		tx.Nonce == other.Nonce &&
		tx.SchemeID == other.SchemeID &&
		bytes.Equal(tx.Signature, other.Signature)
}

func (tx *Transaction) String() string {
	return fmt.Sprintf("tx %s (%s -> %s, amount %d, nonce %d, %s)",
		tx.ID().Short(), tx.Sender, tx.Receiver, tx.Amount, tx.Nonce, tx.SchemeID)
}
