package store

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/mezonai/qledger/db"
	qerrors "github.com/mezonai/qledger/errors"
	"github.com/mezonai/qledger/jsonx"
	"github.com/mezonai/qledger/ledger"
	"github.com/mezonai/qledger/logx"
	"github.com/mezonai/qledger/transaction"
)

// LedgerStore is the durable journal behind a ledger. It satisfies
// ledger.Journal and replays entries in sequence order on Load.
type LedgerStore interface {
	ledger.Journal
	Load() ([]*ledger.Entry, error)
	GetByID(id transaction.ID) (*ledger.Entry, error)
	MustClose()
}

// GenericLedgerStore keeps entries under entry:<seq> and an id index under
// txid:<hex>, both written in one batch per entry.
type GenericLedgerStore struct {
	mu         sync.Mutex
	dbProvider db.IterableProvider
}

// NewGenericLedgerStore creates a ledger store over provider
func NewGenericLedgerStore(dbProvider db.IterableProvider) (*GenericLedgerStore, error) {
	if dbProvider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}

	return &GenericLedgerStore{
		dbProvider: dbProvider,
	}, nil
}

// Append persists entry. It refuses to overwrite an existing sequence
// number or to index the same id twice.
func (ls *GenericLedgerStore) Append(entry *ledger.Entry) error {
	if entry == nil || entry.Tx == nil {
		return fmt.Errorf("%w: empty journal entry", qerrors.ErrMalformedInput)
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	seqKey := entryKey(entry.Seq)
	exists, err := ls.dbProvider.Has(seqKey)
	if err != nil {
		return fmt.Errorf("could not check entry %d: %w", entry.Seq, err)
	}
	if exists {
		return fmt.Errorf("entry %d already stored", entry.Seq)
	}
	exists, err = ls.dbProvider.Has(txIDKey(entry.ID))
	if err != nil {
		return fmt.Errorf("could not check tx %s: %w", entry.ID, err)
	}
	if exists {
		return fmt.Errorf("%w: %s already stored", qerrors.ErrDuplicateTransaction, entry.ID)
	}

	data, err := jsonx.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry %d: %w", entry.Seq, err)
	}

	batch := ls.dbProvider.Batch()
	batch.Put(seqKey, data)
	batch.Put(txIDKey(entry.ID), seqKey[len(PrefixEntry):])
	if err := batch.Write(); err != nil {
		return fmt.Errorf("failed to write entry %d to database: %w", entry.Seq, err)
	}

	logx.Debug("LEDGER_STORE", fmt.Sprintf("Stored entry %d tx %s", entry.Seq, entry.ID.Short()))
	return nil
}

// Load returns every stored entry in sequence order. It does not verify
// signatures; that is left to ledger.Restore.
func (ls *GenericLedgerStore) Load() ([]*ledger.Entry, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	var (
		entries []*ledger.Entry
		decErr  error
	)
	err := ls.dbProvider.IteratePrefix([]byte(PrefixEntry), func(key, value []byte) bool {
		var e ledger.Entry
		if err := jsonx.Unmarshal(value, &e); err != nil {
			decErr = fmt.Errorf("%w: entry %x: %v", qerrors.ErrMalformedInput, key[len(PrefixEntry):], err)
			return false
		}
		entries = append(entries, &e)
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("could not iterate entries: %w", err)
	}
	if decErr != nil {
		return nil, decErr
	}

	logx.Info("LEDGER_STORE", "Load: loaded", len(entries), "entries")
	return entries, nil
}

// GetByID returns the stored entry for id, or nil if there is none
func (ls *GenericLedgerStore) GetByID(id transaction.ID) (*ledger.Entry, error) {
	seq, err := ls.dbProvider.Get(txIDKey(id))
	if err != nil {
		return nil, fmt.Errorf("could not get tx %s from db: %w", id, err)
	}
	if seq == nil {
		return nil, nil
	}

	data, err := ls.dbProvider.Get([]byte(PrefixEntry + string(seq)))
	if err != nil {
		return nil, fmt.Errorf("could not get entry for tx %s: %w", id, err)
	}
	if data == nil {
		return nil, fmt.Errorf("%w: index points at missing entry for tx %s", qerrors.ErrMalformedInput, id)
	}

	var e ledger.Entry
	if err := jsonx.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal entry for tx %s: %v", qerrors.ErrMalformedInput, id, err)
	}
	return &e, nil
}

// MustClose closes the store and related resources
func (ls *GenericLedgerStore) MustClose() {
	if err := ls.dbProvider.Close(); err != nil {
		logx.Error("LEDGER_STORE", "Failed to close provider: ", err)
	}
}

// entryKey sorts by sequence because the number is big-endian
func entryKey(seq uint64) []byte {
	key := make([]byte, len(PrefixEntry), len(PrefixEntry)+8)
	copy(key, PrefixEntry)
	return binary.BigEndian.AppendUint64(key, seq)
}

func txIDKey(id transaction.ID) []byte {
	return []byte(PrefixTxID + id.String())
}
