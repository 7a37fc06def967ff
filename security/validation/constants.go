package validation

const (
	// MaxIdentityLength bounds sender/receiver in bytes, not runes, so the
	// canonical payload size is bounded regardless of script.
	MaxIdentityLength = 256

	SenderField   = "sender"
	ReceiverField = "receiver"
)
