package config

import (
	"github.com/mezonai/qledger/logx"
	"github.com/mezonai/qledger/store"
)

type SignerConfig struct {
	Scheme          string   `ini:"scheme"`
	AcceptedSchemes []string `ini:"accepted_schemes" delim:","`
}

type LogConfig struct {
	Filename   string `ini:"filename"`
	MaxSizeMB  int    `ini:"max_size_mb"`
	MaxAgeDays int    `ini:"max_age_days"`
	Console    bool   `ini:"console"`
}

// Options converts the [log] section for logx.Configure
func (lc LogConfig) Options() logx.Options {
	return logx.Options{
		Filename:   lc.Filename,
		MaxSizeMB:  lc.MaxSizeMB,
		MaxAgeDays: lc.MaxAgeDays,
		Console:    lc.Console,
	}
}

// LedgerConfig holds the ini configuration of a ledger deployment
type LedgerConfig struct {
	Signer SignerConfig
	Store  store.StoreConfig
	Log    LogConfig
}

// Identity is one entry of the YAML keyring
type Identity struct {
	Name      string `yaml:"name"`
	Scheme    string `yaml:"scheme"`
	PublicKey string `yaml:"public_key"`
}

// IdentitiesFile is the top-level structure for identities.yml
type IdentitiesFile struct {
	Identities []Identity `yaml:"identities"`
}
