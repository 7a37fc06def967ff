package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mezonai/qledger/db"
)

// StoreType represents the type of store implementation
type StoreType string

const (
	// LevelDBStoreType uses the LevelDB implementation
	LevelDBStoreType StoreType = "leveldb"

	// BoltDBStoreType uses a single bbolt file inside Directory
	BoltDBStoreType StoreType = "boltdb"

	// MemoryStoreType keeps everything in an in-memory LevelDB
	MemoryStoreType StoreType = "memory"
)

const boltFileName = "ledger.db"

// StoreConfig holds configuration for creating store instances
type StoreConfig struct {
	// Type specifies which store implementation to use
	Type StoreType `json:"type" yaml:"type" ini:"type"`

	// Directory is the database directory path (for file-based databases)
	Directory string `json:"directory" yaml:"directory" ini:"directory"`
}

// Validate validates the store configuration
func (sc *StoreConfig) Validate() error {
	if sc.Type == "" {
		return fmt.Errorf("store type cannot be empty")
	}

	switch sc.Type {
	case MemoryStoreType:
		return nil
	case LevelDBStoreType, BoltDBStoreType:
		if sc.Directory == "" {
			return fmt.Errorf("directory cannot be empty")
		}
		return nil
	default:
		return fmt.Errorf("unsupported store type: %s", sc.Type)
	}
}

// CreateProvider creates a database provider based on the configuration
func CreateProvider(config *StoreConfig) (db.IterableProvider, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	switch config.Type {
	case LevelDBStoreType:
		return db.NewLevelDBProvider(config.Directory)

	case BoltDBStoreType:
		if err := os.MkdirAll(config.Directory, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
		return db.NewBoltDBProvider(filepath.Join(config.Directory, boltFileName))

	case MemoryStoreType:
		return db.NewMemLevelDBProvider()

	default:
		return nil, fmt.Errorf("unsupported store type: %s", config.Type)
	}
}

// CreateLedgerStore opens the provider named by config and wraps it
func CreateLedgerStore(config *StoreConfig) (LedgerStore, error) {
	provider, err := CreateProvider(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}

	ls, err := NewGenericLedgerStore(provider)
	if err != nil {
		_ = provider.Close()
		return nil, fmt.Errorf("failed to create ledger store: %w", err)
	}
	return ls, nil
}
