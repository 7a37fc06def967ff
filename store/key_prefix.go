package store

// Declare database key prefix for objects
const (
	PrefixEntry = "entry:"
	PrefixTxID  = "txid:"
)
