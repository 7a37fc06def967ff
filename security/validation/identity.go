package validation

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	qerrors "github.com/mezonai/qledger/errors"
	"golang.org/x/text/unicode/norm"
)

// ValidateIdentity checks a sender or receiver identity string. Identities
// must be NFC so that two strings rendering identically cannot map to two
// different transaction ids.
func ValidateIdentity(fieldName, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s is empty", qerrors.ErrMalformedInput, fieldName)
	}
	if len(value) > MaxIdentityLength {
		return fmt.Errorf("%w: %s is %d bytes, max %d", qerrors.ErrMalformedInput, fieldName, len(value), MaxIdentityLength)
	}
	if !utf8.ValidString(value) {
		return fmt.Errorf("%w: %s is not valid UTF-8", qerrors.ErrMalformedInput, fieldName)
	}
	if !norm.NFC.IsNormalString(value) {
		return fmt.Errorf("%w: %s is not NFC normalized", qerrors.ErrMalformedInput, fieldName)
	}
	for _, r := range value {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: %s contains control character %U", qerrors.ErrMalformedInput, fieldName, r)
		}
	}
	return nil
}

// NormalizeIdentity returns the NFC form of value, for callers building
// transactions from user input.
func NormalizeIdentity(value string) string {
	return norm.NFC.String(value)
}
