package transaction

import (
	"encoding/binary"
	"fmt"

	"github.com/multiformats/go-varint"

	qerrors "github.com/mezonai/qledger/errors"
	"github.com/mezonai/qledger/jsonx"
	"github.com/mezonai/qledger/pqsig"
	"github.com/mezonai/qledger/security/validation"
)

// Limits to prevent DoS via oversized inputs
const (
	MaxSignatureLen = 8192
	MaxRecordLen    = 2*(2+validation.MaxIdentityLength) + 16 + 2 + MaxSignatureLen + 1
)

// MarshalBinary encodes the wire record:
//
//	uvarint len | sender | uvarint len | receiver | amount u64be | nonce u64be |
//	uvarint len | signature | scheme_id u8
func (tx *Transaction) MarshalBinary() ([]byte, error) {
	if len(tx.Sender) > validation.MaxIdentityLength || len(tx.Receiver) > validation.MaxIdentityLength {
		return nil, fmt.Errorf("%w: identity exceeds %d bytes", qerrors.ErrMalformedInput, validation.MaxIdentityLength)
	}
	if len(tx.Signature) > MaxSignatureLen {
		return nil, fmt.Errorf("%w: signature exceeds %d bytes", qerrors.ErrMalformedInput, MaxSignatureLen)
	}

	buf := make([]byte, 0, len(tx.Sender)+len(tx.Receiver)+len(tx.Signature)+32)
	buf = appendField(buf, tx.Sender)
	buf = appendField(buf, tx.Receiver)
	buf = binary.BigEndian.AppendUint64(buf, tx.Amount)
	buf = binary.BigEndian.AppendUint64(buf, tx.Nonce)
	buf = append(buf, varint.ToUvarint(uint64(len(tx.Signature)))...)
	buf = append(buf, tx.Signature...)
	buf = append(buf, byte(tx.SchemeID))
	return buf, nil
}

// UnmarshalBinary decodes a wire record. It checks structure and bounds
// only; signature validity is the Verifier's job.
func (tx *Transaction) UnmarshalBinary(data []byte) error {
	if len(data) > MaxRecordLen {
		return fmt.Errorf("%w: record is %d bytes, max %d", qerrors.ErrMalformedInput, len(data), MaxRecordLen)
	}

	r := recordReader{buf: data}
	sender := r.readField("sender", validation.MaxIdentityLength)
	receiver := r.readField("receiver", validation.MaxIdentityLength)
	amount := r.readUint64("amount")
	nonce := r.readUint64("nonce")
	sig := r.readField("signature", MaxSignatureLen)
	scheme := r.readByte("scheme_id")
	if r.err != nil {
		return r.err
	}
	if r.off != len(data) {
		return fmt.Errorf("%w: %d trailing bytes", qerrors.ErrMalformedInput, len(data)-r.off)
	}

	*tx = Transaction{
		Sender:   string(sender),
		Receiver: string(receiver),
		Amount:   amount,
		Nonce:    nonce,
		SchemeID: pqsig.SchemeID(scheme),
	}
	if len(sig) > 0 {
		tx.Signature = append([]byte(nil), sig...)
	}
	return nil
}

// DecodeRecord parses a binary wire record
func DecodeRecord(data []byte) (*Transaction, error) {
	tx := &Transaction{}
	if err := tx.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return tx, nil
}

// EncodeJSON renders the JSON wire record
func (tx *Transaction) EncodeJSON() ([]byte, error) {
	return jsonx.MarshalIndent(tx)
}

// DecodeJSON parses a JSON wire record
func DecodeJSON(data []byte) (*Transaction, error) {
	if len(data) > 4*MaxRecordLen {
		return nil, fmt.Errorf("%w: json record is %d bytes", qerrors.ErrMalformedInput, len(data))
	}
	var tx Transaction
	if err := jsonx.Unmarshal(data, &tx); err != nil {
		return nil, fmt.Errorf("%w: %v", qerrors.ErrMalformedInput, err)
	}
	if len(tx.Signature) > MaxSignatureLen {
		return nil, fmt.Errorf("%w: signature exceeds %d bytes", qerrors.ErrMalformedInput, MaxSignatureLen)
	}
	return &tx, nil
}

// recordReader keeps the first error and turns every later read into a no-op
type recordReader struct {
	buf []byte
	off int
	err error
}

func (r *recordReader) fail(field, format string, args ...interface{}) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: %s: %s", qerrors.ErrMalformedInput, field, fmt.Sprintf(format, args...))
	}
}

func (r *recordReader) readField(name string, limit int) []byte {
	if r.err != nil {
		return nil
	}
	n, read, err := varint.FromUvarint(r.buf[r.off:])
	if err != nil {
		r.fail(name, "bad length prefix: %v", err)
		return nil
	}
	r.off += read
	if n > uint64(limit) {
		r.fail(name, "length %d exceeds %d", n, limit)
		return nil
	}
	if uint64(len(r.buf)-r.off) < n {
		r.fail(name, "truncated")
		return nil
	}
	out := r.buf[r.off : r.off+int(n)]
	r.off += int(n)
	return out
}

func (r *recordReader) readUint64(name string) uint64 {
	if r.err != nil {
		return 0
	}
	if len(r.buf)-r.off < 8 {
		r.fail(name, "truncated")
		return 0
	}
	v := binary.BigEndian.Uint64(r.buf[r.off:])
	r.off += 8
	return v
}

func (r *recordReader) readByte(name string) byte {
	if r.err != nil {
		return 0
	}
	if r.off >= len(r.buf) {
		r.fail(name, "truncated")
		return 0
	}
	b := r.buf[r.off]
	r.off++
	return b
}
