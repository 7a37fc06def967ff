package ledger

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"

	qerrors "github.com/mezonai/qledger/errors"
	"github.com/mezonai/qledger/logx"
	"github.com/mezonai/qledger/monitoring"
	"github.com/mezonai/qledger/transaction"
)

var (
	ErrLedgerNotEmpty = errors.New("ledger is not empty")
)

// Ledger is an append-only set of verified transactions keyed by content
// id and kept in admission order. Admissions are serialized; reads run
// concurrently and never see a partially inserted entry.
type Ledger struct {
	mu       sync.RWMutex
	index    map[transaction.ID]int
	entries  []*Entry
	verifier *transaction.Verifier
	journal  Journal
}

// NewLedger creates an empty ledger. A nil verifier accepts every
// registered scheme; a nil journal keeps the ledger in memory only.
func NewLedger(verifier *transaction.Verifier, journal Journal) *Ledger {
	if verifier == nil {
		verifier = transaction.NewVerifier()
	}
	return &Ledger{
		index:    make(map[transaction.ID]int),
		verifier: verifier,
		journal:  journal,
	}
}

// AddTransaction admits tx if it is well formed, not yet present, and
// signed by publicKey. On any error the ledger is unchanged.
func (l *Ledger) AddTransaction(tx *transaction.Transaction, publicKey []byte) error {
	if err := tx.Validate(); err != nil {
		return l.reject(nil, err)
	}

	// work on private copies so the caller cannot change what was verified
	cp := tx.Clone()
	pub := append([]byte(nil), publicKey...)
	id := cp.ID()

	if l.Has(id) {
		return l.reject(&id, fmt.Errorf("%w: %s", qerrors.ErrDuplicateTransaction, id))
	}
	if err := l.verifier.Check(cp, pub); err != nil {
		return l.reject(&id, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// re-check under the write lock, a concurrent admission may have won
	if _, exists := l.index[id]; exists {
		return l.reject(&id, fmt.Errorf("%w: %s", qerrors.ErrDuplicateTransaction, id))
	}

	entry := &Entry{
		Seq:       uint64(len(l.entries)) + 1,
		ID:        id,
		Tx:        cp,
		PublicKey: pub,
	}
	if l.journal != nil {
		if err := l.journal.Append(entry); err != nil {
			monitoring.RecordRejectedTx(monitoring.TxJournalFailure)
			logx.Error("LEDGER", fmt.Sprintf("Journal append failed for tx %s: %v", id.Short(), err))
			return fmt.Errorf("could not journal tx %s: %w", id, err)
		}
	}
	l.insert(entry)

	monitoring.RecordAdmittedTx()
	monitoring.SetLedgerSize(len(l.entries))
	logx.Info("LEDGER", fmt.Sprintf("Admitted tx %s seq=%d %s -> %s amount=%d nonce=%d",
		id.Short(), entry.Seq, cp.Sender, cp.Receiver, cp.Amount, cp.Nonce))
	return nil
}

func (l *Ledger) insert(entry *Entry) {
	l.index[entry.ID] = len(l.entries)
	l.entries = append(l.entries, entry)
}

func (l *Ledger) reject(id *transaction.ID, err error) error {
	reason := monitoring.TxRejectedUnknown
	switch qerrors.CodeOf(err) {
	case qerrors.ErrCodeMalformedInput:
		reason = monitoring.TxMalformedInput
	case qerrors.ErrCodeInvalidSignature:
		reason = monitoring.TxInvalidSignature
	case qerrors.ErrCodeDuplicateTransaction:
		reason = monitoring.TxDuplicated
	}
	monitoring.RecordRejectedTx(reason)

	short := "-"
	if id != nil {
		short = id.Short()
	}
	logx.Warn("LEDGER", fmt.Sprintf("Rejected tx %s: %v", short, err))
	return err
}

// Has reports whether id has been admitted
func (l *Ledger) Has(id transaction.ID) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.index[id]
	return ok
}

// Get returns a copy of the admitted transaction with the given id
func (l *Ledger) Get(id transaction.ID) (*transaction.Transaction, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i, ok := l.index[id]
	if !ok {
		return nil, false
	}
	return l.entries[i].Tx.Clone(), true
}

// Len returns the number of admitted transactions
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Iter returns copies of every admitted transaction in admission order
func (l *Ledger) Iter() []*transaction.Transaction {
	snapshot := l.snapshot()
	txs := make([]*transaction.Transaction, len(snapshot))
	for i, e := range snapshot {
		txs[i] = e.Tx.Clone()
	}
	return txs
}

// All ranges over the entries present when iteration starts, in admission
// order. Each range call takes a fresh snapshot.
func (l *Ledger) All() iter.Seq2[transaction.ID, *transaction.Transaction] {
	return func(yield func(transaction.ID, *transaction.Transaction) bool) {
		for _, e := range l.snapshot() {
			if !yield(e.ID, e.Tx.Clone()) {
				return
			}
		}
	}
}

// Entries returns copies of the full journal view, including public keys
func (l *Ledger) Entries() []Entry {
	snapshot := l.snapshot()
	out := make([]Entry, len(snapshot))
	for i, e := range snapshot {
		out[i] = Entry{
			Seq:       e.Seq,
			ID:        e.ID,
			Tx:        e.Tx.Clone(),
			PublicKey: append([]byte(nil), e.PublicKey...),
		}
	}
	return out
}

// Digest fingerprints the ordered id sequence, see ComputeDigest
func (l *Ledger) Digest() [32]byte {
	snapshot := l.snapshot()
	ids := make([]transaction.ID, len(snapshot))
	for i, e := range snapshot {
		ids[i] = e.ID
	}
	return ComputeDigest(ids)
}

// snapshot copies the entry pointer slice; entries themselves are never
// mutated after insert.
func (l *Ledger) snapshot() []*Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]*Entry(nil), l.entries...)
}

// Restore loads journal entries into an empty ledger. Every entry is
// re-verified and sequence numbers must run 1..n without gaps; a journal
// that was edited on disk is refused as a whole. The journal is not
// written to.
func (l *Ledger) Restore(ctx context.Context, entries []*Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) > 0 {
		return ErrLedgerNotEmpty
	}

	seen := make(map[transaction.ID]struct{}, len(entries))
	items := make([]transaction.BatchItem, len(entries))
	for i, e := range entries {
		if e == nil || e.Tx == nil {
			return fmt.Errorf("journal entry %d: %w: missing transaction", i+1, qerrors.ErrMalformedInput)
		}
		if e.Seq != uint64(i)+1 {
			return fmt.Errorf("journal entry %d: %w: sequence %d out of order", i+1, qerrors.ErrMalformedInput, e.Seq)
		}
		if e.Tx.ID() != e.ID {
			return fmt.Errorf("journal entry %d: %w: id %s does not match payload", e.Seq, qerrors.ErrMalformedInput, e.ID.Short())
		}
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("journal entry %d: %w: %s", e.Seq, qerrors.ErrDuplicateTransaction, e.ID)
		}
		seen[e.ID] = struct{}{}
		items[i] = transaction.BatchItem{Tx: e.Tx, PublicKey: e.PublicKey}
	}

	results, err := l.verifier.VerifyBatch(ctx, items)
	if err != nil {
		return fmt.Errorf("restore interrupted: %w", err)
	}
	for i, res := range results {
		if res != nil {
			logx.Error("LEDGER", fmt.Sprintf("Journal entry %d failed verification: %v", i+1, res))
			return fmt.Errorf("journal entry %d: %w", i+1, res)
		}
	}

	for _, e := range entries {
		l.insert(&Entry{
			Seq:       e.Seq,
			ID:        e.ID,
			Tx:        e.Tx.Clone(),
			PublicKey: append([]byte(nil), e.PublicKey...),
		})
	}

	monitoring.RecordRestoredTx(len(entries))
	monitoring.SetLedgerSize(len(l.entries))
	logx.Info("LEDGER", fmt.Sprintf("Restored %d entries from journal", len(entries)))
	return nil
}
