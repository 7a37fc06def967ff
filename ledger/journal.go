package ledger

import (
	"github.com/mezonai/qledger/transaction"
)

// Entry is one admitted transaction together with the public key it was
// verified against. Seq starts at 1 and has no gaps.
type Entry struct {
	Seq       uint64                   `json:"seq"`
	ID        transaction.ID           `json:"id"`
	Tx        *transaction.Transaction `json:"tx"`
	PublicKey []byte                   `json:"public_key"`
}

// Journal durably records admitted entries. Append is called under the
// ledger's write lock; if it fails the entry is not admitted.
type Journal interface {
	Append(entry *Entry) error
}
