package ledger

import (
	"encoding/binary"

	"github.com/mezonai/qledger/transaction"
	"github.com/minio/sha256-simd"
)

const digestDomain = "qledger/ledger-digest/v1"

// ComputeDigest fingerprints an ordered id sequence. Two ledgers holding
// the same entries in the same order have the same digest.
// Each record is encoded as: seq(8B BE)|id(32B)
func ComputeDigest(ids []transaction.ID) [32]byte {
	h := sha256.New()
	h.Write([]byte(digestDomain))
	h.Write([]byte{0x00})

	buf := make([]byte, 8)
	for i, id := range ids {
		binary.BigEndian.PutUint64(buf, uint64(i+1))
		h.Write(buf)
		h.Write(id[:])
	}

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
