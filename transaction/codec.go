package transaction

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/minio/sha256-simd"
	"github.com/multiformats/go-varint"
)

// DomainTag prefixes every canonical payload and is also the signature
// context, so a qledger signature cannot be replayed as any other message.
const DomainTag = "qledger/tx/v1"

// MaxPayloadSize is the largest canonical payload a valid transaction can have
const MaxPayloadSize = len(DomainTag) + 1 + 2*(2+256) + 16

// Canonicalize encodes the signed fields of a transaction:
//
//	DomainTag 0x00 | uvarint len | sender | uvarint len | receiver | amount u64be | nonce u64be
//
// Length prefixes are minimal uvarints and integers are fixed width, so
// distinct tuples never share an encoding.
func Canonicalize(sender, receiver string, amount, nonce uint64) []byte {
	size := len(DomainTag) + 1 +
		varint.UvarintSize(uint64(len(sender))) + len(sender) +
		varint.UvarintSize(uint64(len(receiver))) + len(receiver) + 16

	buf := make([]byte, 0, size)
	buf = append(buf, DomainTag...)
	buf = append(buf, 0x00)
	buf = appendField(buf, sender)
	buf = appendField(buf, receiver)
	buf = binary.BigEndian.AppendUint64(buf, amount)
	buf = binary.BigEndian.AppendUint64(buf, nonce)
	return buf
}

func appendField(buf []byte, field string) []byte {
	buf = append(buf, varint.ToUvarint(uint64(len(field)))...)
	return append(buf, field...)
}

// ID is the ledger key of a transaction: SHA-256 of its canonical payload
type ID [sha256.Size]byte

// ComputeID derives the id of the payload tuple
func ComputeID(sender, receiver string, amount, nonce uint64) ID {
	return ID(sha256.Sum256(Canonicalize(sender, receiver, amount, nonce)))
}

// ParseID decodes the hex form produced by ID.String
func ParseID(s string) (ID, error) {
	var id ID
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("invalid transaction id %q: %w", s, err)
	}
	if len(b) != len(id) {
		return id, fmt.Errorf("invalid transaction id length %d", len(b))
	}
	copy(id[:], b)
	return id, nil
}

func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// Short is the first 8 hex characters, for log lines
func (id ID) Short() string {
	return hex.EncodeToString(id[:4])
}

func (id ID) IsZero() bool {
	return id == ID{}
}

// MarshalText renders the id as hex, so JSON and YAML carry the hex form
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := ParseID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
