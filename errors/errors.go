package errors

import (
	stderrors "errors"

	"github.com/mezonai/qledger/jsonx"
)

// Rejection taxonomy shared by every package. Callers wrap these with
// fmt.Errorf("%w: ...") and test them with errors.Is.
var (
	ErrKeyGeneration        = stderrors.New("key generation failure")
	ErrSigningFailure       = stderrors.New("signing failure")
	ErrInvalidSignature     = stderrors.New("invalid signature")
	ErrDuplicateTransaction = stderrors.New("duplicate transaction")
	ErrMalformedInput       = stderrors.New("malformed input")
)

// ErrorCode is the stable machine-readable name of a rejection
type ErrorCode string

const (
	ErrCodeInternal             ErrorCode = "internal_error"
	ErrCodeKeyGeneration        ErrorCode = "key_generation_failure"
	ErrCodeSigningFailure       ErrorCode = "signing_failure"
	ErrCodeInvalidSignature     ErrorCode = "invalid_signature"
	ErrCodeDuplicateTransaction ErrorCode = "duplicate_transaction"
	ErrCodeMalformedInput       ErrorCode = "malformed_input"
)

// Error message constants - user-friendly and concise
const (
	ErrMsgInternal             = "Unexpected error, please try again"
	ErrMsgKeyGeneration        = "Could not generate a key pair"
	ErrMsgSigningFailure       = "Transaction could not be signed"
	ErrMsgInvalidSignature     = "Transaction signature is invalid"
	ErrMsgDuplicateTransaction = "This transaction already exists"
	ErrMsgMalformedInput       = "Transaction data is invalid"
)

var codes = []struct {
	sentinel error
	code     ErrorCode
	message  string
}{
	{ErrKeyGeneration, ErrCodeKeyGeneration, ErrMsgKeyGeneration},
	{ErrSigningFailure, ErrCodeSigningFailure, ErrMsgSigningFailure},
	{ErrInvalidSignature, ErrCodeInvalidSignature, ErrMsgInvalidSignature},
	{ErrDuplicateTransaction, ErrCodeDuplicateTransaction, ErrMsgDuplicateTransaction},
	{ErrMalformedInput, ErrCodeMalformedInput, ErrMsgMalformedInput},
}

// LedgerError is the rendered form of a rejection handed to external callers
type LedgerError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Detail  string    `json:"detail,omitempty"`
}

// Error implements the error interface
func (e *LedgerError) Error() string {
	b, _ := jsonx.Marshal(e)
	return string(b)
}

// NewError creates a new LedgerError and returns it as error interface
func NewError(code ErrorCode, message string) error {
	return &LedgerError{
		Code:    code,
		Message: message,
	}
}

// CodeOf maps err onto the taxonomy, ErrCodeInternal when nothing matches
func CodeOf(err error) ErrorCode {
	var le *LedgerError
	if stderrors.As(err, &le) {
		return le.Code
	}
	for _, c := range codes {
		if stderrors.Is(err, c.sentinel) {
			return c.code
		}
	}
	return ErrCodeInternal
}

// ToLedgerError wraps any error into its coded, user-facing form
func ToLedgerError(err error) *LedgerError {
	if err == nil {
		return nil
	}
	var le *LedgerError
	if stderrors.As(err, &le) {
		return le
	}
	code := CodeOf(err)
	msg := ErrMsgInternal
	for _, c := range codes {
		if c.code == code {
			msg = c.message
			break
		}
	}
	return &LedgerError{Code: code, Message: msg, Detail: err.Error()}
}
