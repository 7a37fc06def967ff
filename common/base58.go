package common

import (
	"fmt"
	"strings"

	qerrors "github.com/mezonai/qledger/errors"
	"github.com/mr-tron/base58"
)

// EncodeBytesToBase58 encodes bytes directly to base58
func EncodeBytesToBase58(bytes []byte) string {
	return base58.Encode(bytes)
}

// DecodeBase58ToBytes decodes base58 string to bytes
func DecodeBase58ToBytes(base58Str string) ([]byte, error) {
	bytes, err := base58.Decode(strings.TrimSpace(base58Str))
	if err != nil {
		return nil, fmt.Errorf("failed to decode base58 string: %w", err)
	}
	return bytes, nil
}

// DecodeKey decodes a base58 key and checks its length. expectedLen <= 0
// skips the length check.
func DecodeKey(base58Str string, expectedLen int) ([]byte, error) {
	key, err := DecodeBase58ToBytes(base58Str)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", qerrors.ErrMalformedInput, err)
	}
	if len(key) == 0 {
		return nil, fmt.Errorf("%w: empty key", qerrors.ErrMalformedInput)
	}
	if expectedLen > 0 && len(key) != expectedLen {
		return nil, fmt.Errorf("%w: key is %d bytes, expected %d", qerrors.ErrMalformedInput, len(key), expectedLen)
	}
	return key, nil
}

// IsValidBase58 checks if a string is valid base58
func IsValidBase58(str string) bool {
	decoded, err := base58.Decode(str)
	return err == nil && len(decoded) > 0
}
