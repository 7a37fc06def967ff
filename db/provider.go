package db

// DatabaseProvider abstracts the key-value backend behind the ledger
// journal, so the journal works the same on LevelDB, bbolt or memory.
type DatabaseProvider interface {
	// Get retrieves a value by key; a missing key yields nil, nil
	Get(key []byte) ([]byte, error)

	// Put stores a key-value pair
	Put(key, value []byte) error

	// Delete removes a key-value pair
	Delete(key []byte) error

	// Has checks if a key exists
	Has(key []byte) (bool, error)

	// Close closes the database connection
	Close() error

	// Batch returns a new batch for atomic operations
	Batch() DatabaseBatch
}

// IterableProvider extends DatabaseProvider with ordered iteration
type IterableProvider interface {
	DatabaseProvider

	// IteratePrefix visits every pair whose key starts with prefix in
	// ascending key order. key and value are only valid during the
	// callback. Return false to stop.
	IteratePrefix(prefix []byte, callback func(key, value []byte) bool) error
}

// DatabaseBatch collects writes that are applied all-or-nothing
type DatabaseBatch interface {
	// Put adds a key-value pair to the batch
	Put(key, value []byte)

	// Delete adds a deletion to the batch
	Delete(key []byte)

	// Write commits all operations in the batch
	Write() error

	// Reset clears the batch
	Reset()
}
