package pqsig

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cloudflare/circl/sign"
	"github.com/cloudflare/circl/sign/mldsa/mldsa44"
	"github.com/cloudflare/circl/sign/mldsa/mldsa65"
	"github.com/cloudflare/circl/sign/mldsa/mldsa87"
)

// SchemeID is the small integer tag carried by every wire record so the
// signature scheme can be upgraded without ambiguity. Zero means unset.
type SchemeID uint8

// Algorithm versions
const (
	SchemeUnset   SchemeID = 0
	SchemeMLDSA44 SchemeID = 1 // NIST Level 2
	SchemeMLDSA65 SchemeID = 2 // NIST Level 3
	SchemeMLDSA87 SchemeID = 3 // NIST Level 5

	DefaultScheme = SchemeMLDSA65
)

// Scheme describes one registered post-quantum signature algorithm
type Scheme struct {
	ID   SchemeID
	Name string
	impl sign.Scheme
}

var registry = map[SchemeID]*Scheme{
	SchemeMLDSA44: {ID: SchemeMLDSA44, Name: "ml-dsa-44", impl: mldsa44.Scheme()},
	SchemeMLDSA65: {ID: SchemeMLDSA65, Name: "ml-dsa-65", impl: mldsa65.Scheme()},
	SchemeMLDSA87: {ID: SchemeMLDSA87, Name: "ml-dsa-87", impl: mldsa87.Scheme()},
}

// Lookup returns the registered scheme for id
func Lookup(id SchemeID) (*Scheme, bool) {
	s, ok := registry[id]
	return s, ok
}

// ParseScheme resolves a scheme by its name, case-insensitively
func ParseScheme(name string) (SchemeID, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for id, s := range registry {
		if s.Name == name {
			return id, nil
		}
	}
	return SchemeUnset, fmt.Errorf("unsupported signature scheme %q", name)
}

// Schemes lists every registered scheme id in ascending order
func Schemes() []SchemeID {
	out := make([]SchemeID, 0, len(registry))
	for id := range registry {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (id SchemeID) String() string {
	if s, ok := registry[id]; ok {
		return s.Name
	}
	return fmt.Sprintf("scheme(%d)", uint8(id))
}

func (s *Scheme) PublicKeySize() int  { return s.impl.PublicKeySize() }
func (s *Scheme) PrivateKeySize() int { return s.impl.PrivateKeySize() }
func (s *Scheme) SignatureSize() int  { return s.impl.SignatureSize() }
func (s *Scheme) SeedSize() int       { return s.impl.SeedSize() }

// Sign signs message under the given domain context. Malformed keys and
// panics raised by the primitive are reported as errors.
func (s *Scheme) Sign(privateKey, message []byte, context string) (sig []byte, err error) {
	if len(privateKey) != s.impl.PrivateKeySize() {
		return nil, fmt.Errorf("private key is %d bytes, %s expects %d", len(privateKey), s.Name, s.impl.PrivateKeySize())
	}
	sk, err := s.impl.UnmarshalBinaryPrivateKey(privateKey)
	if err != nil {
		return nil, fmt.Errorf("could not parse %s private key: %w", s.Name, err)
	}

	defer func() {
		if r := recover(); r != nil {
			sig, err = nil, fmt.Errorf("%s sign primitive rejected input: %v", s.Name, r)
		}
	}()
	return s.impl.Sign(sk, message, s.opts(context)), nil
}

// Verify reports whether sig is a valid signature of message by publicKey.
// Any malformed input yields false.
func (s *Scheme) Verify(publicKey, message, sig []byte, context string) (ok bool) {
	if len(publicKey) != s.impl.PublicKeySize() || len(sig) != s.impl.SignatureSize() {
		return false
	}
	pk, err := s.impl.UnmarshalBinaryPublicKey(publicKey)
	if err != nil {
		return false
	}

	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	return s.impl.Verify(pk, message, sig, s.opts(context))
}

func (s *Scheme) opts(context string) *sign.SignatureOpts {
	if context == "" || !s.impl.SupportsContext() {
		return nil
	}
	return &sign.SignatureOpts{Context: context}
}

// derive expands a seed of SeedSize bytes into a key pair
func (s *Scheme) derive(seed []byte) (pub, priv []byte, err error) {
	pk, sk := s.impl.DeriveKey(seed)
	if pub, err = pk.MarshalBinary(); err != nil {
		return nil, nil, err
	}
	if priv, err = sk.MarshalBinary(); err != nil {
		return nil, nil, err
	}
	return pub, priv, nil
}
