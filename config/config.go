package config

import (
	"fmt"
	"os"

	"gopkg.in/ini.v1"

	"github.com/mezonai/qledger/logx"
	"github.com/mezonai/qledger/pqsig"
	"github.com/mezonai/qledger/store"
)

const (
	DefaultStoreDirectory = "./data/ledger"
)

// DefaultLedgerConfig is used for anything the ini file leaves out
func DefaultLedgerConfig() *LedgerConfig {
	return &LedgerConfig{
		Signer: SignerConfig{
			Scheme: pqsig.DefaultScheme.String(),
		},
		Store: store.StoreConfig{
			Type:      store.LevelDBStoreType,
			Directory: DefaultStoreDirectory,
		},
	}
}

// LoadLedgerConfig reads the ini file at path on top of the defaults. An
// empty path yields the defaults.
func LoadLedgerConfig(path string) (*LedgerConfig, error) {
	lc := DefaultLedgerConfig()
	if path == "" {
		return lc, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}

	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	sections := map[string]interface{}{
		"signer": &lc.Signer,
		"store":  &lc.Store,
		"log":    &lc.Log,
	}
	for name, target := range sections {
		if !cfg.HasSection(name) {
			continue
		}
		if err := cfg.Section(name).MapTo(target); err != nil {
			return nil, fmt.Errorf("failed to map [%s]: %w", name, err)
		}
	}

	if err := lc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	logx.Debug("CONFIG", fmt.Sprintf("Loaded %s: scheme=%s store=%s", path, lc.Signer.Scheme, lc.Store.Type))
	return lc, nil
}

// Validate rejects unknown schemes and store types
func (lc *LedgerConfig) Validate() error {
	if _, err := lc.SignerScheme(); err != nil {
		return err
	}
	if _, err := lc.AcceptedSchemes(); err != nil {
		return err
	}
	return lc.Store.Validate()
}

// SignerScheme is the scheme new keys and signatures use
func (lc *LedgerConfig) SignerScheme() (pqsig.SchemeID, error) {
	if lc.Signer.Scheme == "" {
		return pqsig.DefaultScheme, nil
	}
	return pqsig.ParseScheme(lc.Signer.Scheme)
}

// AcceptedSchemes is the verifier allow-list. Empty means every
// registered scheme.
func (lc *LedgerConfig) AcceptedSchemes() ([]pqsig.SchemeID, error) {
	ids := make([]pqsig.SchemeID, 0, len(lc.Signer.AcceptedSchemes))
	for _, name := range lc.Signer.AcceptedSchemes {
		if name == "" {
			continue
		}
		id, err := pqsig.ParseScheme(name)
		if err != nil {
			return nil, fmt.Errorf("accepted_schemes: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
