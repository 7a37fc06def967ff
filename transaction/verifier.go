package transaction

import (
	"context"
	"fmt"
	"runtime"
	"time"

	qerrors "github.com/mezonai/qledger/errors"
	"github.com/mezonai/qledger/logx"
	"github.com/mezonai/qledger/monitoring"
	"github.com/mezonai/qledger/pqsig"
	"golang.org/x/sync/errgroup"
)

// Verifier checks transaction signatures. Verification is pure, so one
// Verifier may be shared by any number of goroutines.
type Verifier struct {
	accepted map[pqsig.SchemeID]struct{}
}

// NewVerifier creates a verifier accepting the given schemes, or every
// registered scheme when none are given.
func NewVerifier(accepted ...pqsig.SchemeID) *Verifier {
	if len(accepted) == 0 {
		accepted = pqsig.Schemes()
	}
	v := &Verifier{accepted: make(map[pqsig.SchemeID]struct{}, len(accepted))}
	for _, id := range accepted {
		v.accepted[id] = struct{}{}
	}
	return v
}

func (v *Verifier) Accepts(id pqsig.SchemeID) bool {
	_, ok := v.accepted[id]
	return ok
}

// Verify reports whether tx carries a valid signature by publicKey
func (v *Verifier) Verify(tx *Transaction, publicKey []byte) bool {
	return v.Check(tx, publicKey) == nil
}

// Check is Verify with the rejection reason. Structural problems wrap
// ErrMalformedInput, everything else wraps ErrInvalidSignature.
func (v *Verifier) Check(tx *Transaction, publicKey []byte) error {
	if err := tx.Validate(); err != nil {
		return err
	}

	scheme, ok := pqsig.Lookup(tx.SchemeID)
	if !ok || !v.Accepts(tx.SchemeID) {
		return fmt.Errorf("%w: scheme %s not accepted", qerrors.ErrInvalidSignature, tx.SchemeID)
	}
	if len(tx.Signature) != scheme.SignatureSize() {
		return fmt.Errorf("%w: signature is %d bytes, %s expects %d",
			qerrors.ErrInvalidSignature, len(tx.Signature), scheme.Name, scheme.SignatureSize())
	}
	if len(publicKey) != scheme.PublicKeySize() {
		return fmt.Errorf("%w: public key is %d bytes, %s expects %d",
			qerrors.ErrInvalidSignature, len(publicKey), scheme.Name, scheme.PublicKeySize())
	}

	start := time.Now()
	valid := scheme.Verify(publicKey, tx.Payload(), tx.Signature, DomainTag)
	monitoring.RecordVerifyDuration(time.Since(start))
	if !valid {
		logx.Debug("VERIFIER", fmt.Sprintf("signature mismatch for tx %s", tx.ID().Short()))
		return fmt.Errorf("%w: signature does not match payload and public key", qerrors.ErrInvalidSignature)
	}
	return nil
}

// BatchItem pairs a transaction with the public key it must verify against
type BatchItem struct {
	Tx        *Transaction
	PublicKey []byte
}

// VerifyBatch checks items concurrently. The returned slice holds one
// result per item in order; the error is non-nil only if ctx ended first.
func (v *Verifier) VerifyBatch(ctx context.Context, items []BatchItem) ([]error, error) {
	results := make([]error, len(items))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, item := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = v.Check(item.Tx, item.PublicKey)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
