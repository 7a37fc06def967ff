package transaction

import (
	"bytes"
	"strings"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payloadTuple struct {
	Sender   string
	Receiver string
	Amount   uint64
	Nonce    uint64
}

func TestCanonicalize_Layout(t *testing.T) {
	got := Canonicalize("Alice", "Bob", 100, 1)

	want := []byte(DomainTag + "\x00")
	want = append(want, 5)
	want = append(want, "Alice"...)
	want = append(want, 3)
	want = append(want, "Bob"...)
	want = append(want, 0, 0, 0, 0, 0, 0, 0, 100)
	want = append(want, 0, 0, 0, 0, 0, 0, 0, 1)
	assert.Equal(t, want, got)
	assert.LessOrEqual(t, len(Canonicalize(strings.Repeat("a", 256), strings.Repeat("b", 256), 1, 1)), MaxPayloadSize)
}

func TestCanonicalize_Deterministic(t *testing.T) {
	assert.Equal(t, Canonicalize("Alice", "Bob", 100, 1), Canonicalize("Alice", "Bob", 100, 1))
	assert.Equal(t, ComputeID("Alice", "Bob", 100, 1), ComputeID("Alice", "Bob", 100, 1))
}

func TestCanonicalize_BoundaryShifts(t *testing.T) {
	pairs := [][2]payloadTuple{
		{{"ab", "c", 1, 1}, {"a", "bc", 1, 1}},
		{{"Alice:Bob", "", 100, 1}, {"Alice", "Bob", 100, 1}},
		{{"Alice", "Bob:100", 1, 1}, {"Alice:Bob", "100", 1, 1}},
		{{"Alice", "Bob", 1, 2}, {"Alice", "Bob", 2, 1}},
		{{"Alice", "Bob", 256, 0}, {"Alice", "Bob", 1, 0}},
		{{"\x03Bob", "", 0, 0}, {"", "Bob", 0, 0}},
		{{"Alice", "Bob", 100, 1}, {"Bob", "Alice", 100, 1}},
	}

	for _, p := range pairs {
		a, b := p[0], p[1]
		ca := Canonicalize(a.Sender, a.Receiver, a.Amount, a.Nonce)
		cb := Canonicalize(b.Sender, b.Receiver, b.Amount, b.Nonce)
		assert.False(t, bytes.Equal(ca, cb), "%+v and %+v share an encoding", a, b)
		assert.NotEqual(t, ComputeID(a.Sender, a.Receiver, a.Amount, a.Nonce), ComputeID(b.Sender, b.Receiver, b.Amount, b.Nonce))
	}
}

func TestCanonicalize_InjectiveRandomized(t *testing.T) {
	// tiny alphabet and value range so that random tuples collide often
	f := fuzz.NewWithSeed(42).NilChance(0).Funcs(
		func(s *string, c fuzz.Continue) {
			const alphabet = "ab:|"
			n := c.Intn(4)
			var sb strings.Builder
			for i := 0; i < n; i++ {
				sb.WriteByte(alphabet[c.Intn(len(alphabet))])
			}
			*s = sb.String()
		},
		func(v *uint64, c fuzz.Continue) {
			*v = uint64(c.Intn(3))
		},
	)

	seen := make(map[string]payloadTuple)
	for i := 0; i < 5000; i++ {
		var tup payloadTuple
		f.Fuzz(&tup)
		key := string(Canonicalize(tup.Sender, tup.Receiver, tup.Amount, tup.Nonce))
		if prev, ok := seen[key]; ok {
			require.Equal(t, prev, tup, "distinct tuples produced identical canonical bytes")
		}
		seen[key] = tup
	}
}

func TestID_StableAcrossSigning(t *testing.T) {
	tx := New("Alice", "Bob", 100, 1)
	before := tx.ID()

	tx.Signature = []byte{1, 2, 3}
	tx.SchemeID = 2
	assert.Equal(t, before, tx.ID())
	assert.Equal(t, ComputeID("Alice", "Bob", 100, 1), before)
}

func TestParseID(t *testing.T) {
	id := ComputeID("Alice", "Bob", 100, 1)
	parsed, err := ParseID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
	assert.Len(t, id.Short(), 8)
	assert.False(t, id.IsZero())
	assert.True(t, ID{}.IsZero())

	_, err = ParseID("zz")
	assert.Error(t, err)
	_, err = ParseID("abcd")
	assert.Error(t, err)
}
