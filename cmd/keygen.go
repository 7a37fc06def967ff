package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mezonai/qledger/common"
	"github.com/mezonai/qledger/config"
	"github.com/mezonai/qledger/logx"
	"github.com/mezonai/qledger/pqsig"
	"github.com/mezonai/qledger/security/validation"
)

type KeygenConfig struct {
	Name       string
	Scheme     string
	Identities string
	Keystore   KeystoreFlags
}

var keygenConfig KeygenConfig

var keygenCmd = &cobra.Command{
	Use:   "keygen [flags]",
	Short: "Generate a post-quantum key pair for an identity",
	Long: `Generates an ML-DSA key pair, stores it in the keystore and prints the
public key. With --identities the public key is also declared in that
YAML keyring, which is created if missing.

Examples:
  keygen -n Alice
  keygen -n Bob -s ml-dsa-87 --identities identities.yml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runKeygen(cmd, keygenConfig)
	},
}

func init() {
	rootCmd.AddCommand(keygenCmd)

	keygenCmd.Flags().StringVarP(&keygenConfig.Name, "name", "n", "", "identity name")
	keygenCmd.Flags().StringVarP(&keygenConfig.Scheme, "scheme", "s", "", "signature scheme (default from config)")
	keygenCmd.Flags().StringVar(&keygenConfig.Identities, "identities", "", "YAML keyring to declare the public key in")
	keygenCmd.Flags().StringVarP(&keygenConfig.Keystore.Dir, "keystore", "k", defaultKeystoreDir, "keystore directory")
	keygenCmd.Flags().StringVarP(&keygenConfig.Keystore.Password, "password", "p", "", "keystore password (or $"+passwordEnv+")")
	_ = keygenCmd.MarkFlagRequired("name")
}

func runKeygen(cmd *cobra.Command, cfg KeygenConfig) error {
	name := validation.NormalizeIdentity(cfg.Name)
	scheme, err := signerScheme(cfg.Scheme)
	if err != nil {
		return err
	}
	ks, err := cfg.Keystore.open()
	if err != nil {
		return fmt.Errorf("failed to open keystore: %w", err)
	}

	var keyring *config.Keyring
	if cfg.Identities != "" {
		keyring, err = config.LoadIdentities(cfg.Identities)
		if os.IsNotExist(err) {
			keyring, err = config.NewKeyring(), nil
		}
		if err != nil {
			return err
		}
		if _, _, exists := keyring.Lookup(name); exists {
			return fmt.Errorf("identity %q already declared in %s", name, cfg.Identities)
		}
	}

	kp, err := pqsig.GenerateKeyPair(scheme)
	if err != nil {
		return err
	}
	defer kp.Wipe()

	if err := ks.Put(name, kp); err != nil {
		return err
	}
	if keyring != nil {
		if err := keyring.Add(name, kp.Scheme, kp.PublicKey); err != nil {
			return err
		}
		if err := keyring.Save(cfg.Identities); err != nil {
			return fmt.Errorf("failed to write %s: %w", cfg.Identities, err)
		}
	}

	logx.Info("CMD", fmt.Sprintf("Generated %s key pair for %s", kp.Scheme, name))
	return writeJSON(cmd.OutOrStdout(), map[string]string{
		"name":       name,
		"scheme":     kp.Scheme.String(),
		"public_key": common.EncodeBytesToBase58(kp.PublicKey),
	})
}
