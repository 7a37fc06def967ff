package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/mezonai/qledger/common"
	"github.com/mezonai/qledger/pqsig"
	"github.com/mezonai/qledger/security/validation"
)

// Keyring maps identity names to their declared public keys
type Keyring struct {
	byName map[string]*pqsig.KeyPair
}

func NewKeyring() *Keyring {
	return &Keyring{byName: make(map[string]*pqsig.KeyPair)}
}

// LoadIdentities reads a YAML keyring. A missing file is an error; use
// NewKeyring for an empty one.
func LoadIdentities(path string) (*Keyring, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var f IdentitiesFile
	if err := yaml.NewDecoder(file).Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	kr := NewKeyring()
	for i, ident := range f.Identities {
		scheme, err := pqsig.ParseScheme(ident.Scheme)
		if err != nil {
			return nil, fmt.Errorf("identity %d (%s): %w", i, ident.Name, err)
		}
		s, _ := pqsig.Lookup(scheme)
		pub, err := common.DecodeKey(ident.PublicKey, s.PublicKeySize())
		if err != nil {
			return nil, fmt.Errorf("identity %d (%s): %w", i, ident.Name, err)
		}
		if err := kr.Add(ident.Name, scheme, pub); err != nil {
			return nil, fmt.Errorf("identity %d: %w", i, err)
		}
	}
	return kr, nil
}

// Add declares a public key for name. Names follow the same rules as
// transaction identities and must be unique.
func (kr *Keyring) Add(name string, scheme pqsig.SchemeID, publicKey []byte) error {
	if err := validation.ValidateIdentity("identity name", name); err != nil {
		return err
	}
	if _, exists := kr.byName[name]; exists {
		return fmt.Errorf("duplicate identity %q", name)
	}
	kr.byName[name] = &pqsig.KeyPair{
		Scheme:    scheme,
		PublicKey: append([]byte(nil), publicKey...),
	}
	return nil
}

// Lookup returns the declared scheme and public key of name
func (kr *Keyring) Lookup(name string) (pqsig.SchemeID, []byte, bool) {
	kp, ok := kr.byName[name]
	if !ok {
		return pqsig.SchemeUnset, nil, false
	}
	return kp.Scheme, append([]byte(nil), kp.PublicKey...), true
}

// Names returns identity names in sorted order
func (kr *Keyring) Names() []string {
	names := make([]string, 0, len(kr.byName))
	for name := range kr.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Save writes the keyring as YAML, names sorted
func (kr *Keyring) Save(path string) error {
	f := IdentitiesFile{}
	for _, name := range kr.Names() {
		kp := kr.byName[name]
		f.Identities = append(f.Identities, Identity{
			Name:      name,
			Scheme:    kp.Scheme.String(),
			PublicKey: common.EncodeBytesToBase58(kp.PublicKey),
		})
	}
	data, err := yaml.Marshal(&f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
