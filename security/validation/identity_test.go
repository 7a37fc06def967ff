package validation

import (
	"strings"
	"testing"

	qerrors "github.com/mezonai/qledger/errors"
	"github.com/stretchr/testify/assert"
)

func TestValidateIdentity(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{name: "valid", value: "Alice"},
		{name: "unicode nfc", value: "Zo\u00eb"},
		{name: "separator chars allowed", value: "alice:bob|carol"},
		{name: "max length", value: strings.Repeat("a", MaxIdentityLength)},
		{name: "empty", value: "", wantErr: true},
		{name: "too long", value: strings.Repeat("a", MaxIdentityLength+1), wantErr: true},
		{name: "invalid utf8", value: "al\xffce", wantErr: true},
		{name: "decomposed", value: "Zoe\u0308", wantErr: true},
		{name: "newline", value: "alice\nbob", wantErr: true},
		{name: "nul", value: "alice\x00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIdentity(SenderField, tt.value)
			if tt.wantErr {
				assert.ErrorIs(t, err, qerrors.ErrMalformedInput)
				assert.Contains(t, err.Error(), SenderField)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNormalizeIdentity(t *testing.T) {
	n := NormalizeIdentity("Zoe\u0308")
	assert.Equal(t, "Zo\u00eb", n)
	assert.NoError(t, ValidateIdentity(ReceiverField, n))
}
