package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mezonai/qledger/logx"
	"github.com/mezonai/qledger/security/validation"
	"github.com/mezonai/qledger/transaction"
)

type SignConfig struct {
	Name     string
	To       string
	Amount   string
	Nonce    uint64
	Out      string
	Binary   bool
	Keystore KeystoreFlags
}

var signConfig SignConfig

var signCmd = &cobra.Command{
	Use:   "sign [flags]",
	Short: "Sign a transfer with a keystore identity",
	Long: `Builds a transfer from --name to --to and signs it with the private key
stored for --name. Without --nonce a random 64-bit nonce is used, so signing
the same transfer twice yields two distinct transactions.

Examples:
  sign -n Alice -t Bob -a 100 --nonce 1
  sign -n Alice -t Bob -a 1_000 -o tx.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSign(cmd, signConfig)
	},
}

func init() {
	rootCmd.AddCommand(signCmd)

	signCmd.Flags().StringVarP(&signConfig.Name, "name", "n", "", "sender identity (keystore name)")
	signCmd.Flags().StringVarP(&signConfig.To, "to", "t", "", "receiver identity")
	signCmd.Flags().StringVarP(&signConfig.Amount, "amount", "a", "", "amount")
	signCmd.Flags().Uint64Var(&signConfig.Nonce, "nonce", 0, "nonce (random when omitted)")
	signCmd.Flags().StringVarP(&signConfig.Out, "out", "o", "", "write the record to this file instead of stdout")
	signCmd.Flags().BoolVar(&signConfig.Binary, "binary", false, "write the binary wire record (requires --out)")
	signCmd.Flags().StringVarP(&signConfig.Keystore.Dir, "keystore", "k", defaultKeystoreDir, "keystore directory")
	signCmd.Flags().StringVarP(&signConfig.Keystore.Password, "password", "p", "", "keystore password (or $"+passwordEnv+")")
	_ = signCmd.MarkFlagRequired("name")
	_ = signCmd.MarkFlagRequired("to")
	_ = signCmd.MarkFlagRequired("amount")
}

func runSign(cmd *cobra.Command, cfg SignConfig) error {
	if cfg.Binary && cfg.Out == "" {
		return fmt.Errorf("--binary requires --out")
	}
	amount, err := parseAmount(cfg.Amount)
	if err != nil {
		return err
	}
	nonce := cfg.Nonce
	if !cmd.Flags().Changed("nonce") {
		if nonce, err = randomNonce(); err != nil {
			return err
		}
	}

	ks, err := cfg.Keystore.open()
	if err != nil {
		return fmt.Errorf("failed to open keystore: %w", err)
	}
	sender := validation.NormalizeIdentity(cfg.Name)
	kp, err := ks.Get(sender)
	if err != nil {
		return err
	}
	defer kp.Wipe()

	signer, err := transaction.NewSigner(kp.Scheme)
	if err != nil {
		return err
	}
	tx := transaction.New(sender, validation.NormalizeIdentity(cfg.To), amount, nonce)
	if err := signer.SignTransaction(tx, kp.PrivateKey); err != nil {
		return err
	}

	var data []byte
	if cfg.Binary {
		data, err = tx.MarshalBinary()
	} else {
		data, err = tx.EncodeJSON()
		data = append(data, '\n')
	}
	if err != nil {
		return err
	}

	logx.Info("CMD", fmt.Sprintf("Signed %s", tx))
	if cfg.Out == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	return os.WriteFile(cfg.Out, data, 0o644)
}
