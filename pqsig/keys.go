package pqsig

import (
	"crypto/rand"
	"fmt"
	"io"

	qerrors "github.com/mezonai/qledger/errors"
	"github.com/mezonai/qledger/logx"
)

// KeyPair is a post-quantum signing identity. The private key stays with
// its owner and is never written into a transaction or ledger entry.
type KeyPair struct {
	Scheme     SchemeID `json:"scheme"`
	PublicKey  []byte   `json:"public_key"`
	PrivateKey []byte   `json:"-"`
}

// Wipe zeroes the private key in place
func (kp *KeyPair) Wipe() {
	for i := range kp.PrivateKey {
		kp.PrivateKey[i] = 0
	}
}

// KeyManager generates key pairs for one scheme from one entropy source
type KeyManager struct {
	scheme *Scheme
	rand   io.Reader
}

// NewKeyManager creates a key manager. A nil entropy source means crypto/rand.
func NewKeyManager(id SchemeID, entropy io.Reader) (*KeyManager, error) {
	s, ok := Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: unknown scheme %s", qerrors.ErrKeyGeneration, id)
	}
	if entropy == nil {
		entropy = rand.Reader
	}
	return &KeyManager{scheme: s, rand: entropy}, nil
}

// Scheme returns the scheme this manager generates keys for
func (km *KeyManager) Scheme() SchemeID {
	return km.scheme.ID
}

// Generate draws a fresh seed and expands it into a key pair
func (km *KeyManager) Generate() (*KeyPair, error) {
	seed := make([]byte, km.scheme.SeedSize())
	defer func() {
		for i := range seed {
			seed[i] = 0
		}
	}()

	if _, err := io.ReadFull(km.rand, seed); err != nil {
		logx.Error("KEYGEN", "entropy source failed: ", err)
		return nil, fmt.Errorf("%w: entropy source failed: %v", qerrors.ErrKeyGeneration, err)
	}

	pub, priv, err := km.scheme.derive(seed)
	if err != nil {
		logx.Error("KEYGEN", fmt.Sprintf("%s setup failed: %v", km.scheme.Name, err))
		return nil, fmt.Errorf("%w: %s setup failed: %v", qerrors.ErrKeyGeneration, km.scheme.Name, err)
	}

	logx.Debug("KEYGEN", fmt.Sprintf("generated %s key pair (%d byte public key)", km.scheme.Name, len(pub)))
	return &KeyPair{
		Scheme:     km.scheme.ID,
		PublicKey:  pub,
		PrivateKey: priv,
	}, nil
}

// GenerateKeyPair generates a key pair for id using crypto/rand
func GenerateKeyPair(id SchemeID) (*KeyPair, error) {
	km, err := NewKeyManager(id, nil)
	if err != nil {
		return nil, err
	}
	return km.Generate()
}
