package cmd

import (
	"github.com/spf13/cobra"
)

type VerifyConfig struct {
	TxFile     string
	PubKey     string
	Identities string
}

var verifyConfig VerifyConfig

var verifyCmd = &cobra.Command{
	Use:   "verify [flags]",
	Short: "Verify a signed transaction record",
	Long: `Checks the signature of a JSON or binary transaction record against an
explicit public key or the sender's entry in a YAML keyring. Exits non-zero
when the signature does not hold.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVerify(cmd, verifyConfig)
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVar(&verifyConfig.TxFile, "tx", "", "transaction record file")
	verifyCmd.Flags().StringVar(&verifyConfig.PubKey, "pubkey", "", "sender public key in base58")
	verifyCmd.Flags().StringVar(&verifyConfig.Identities, "identities", "", "YAML keyring holding the sender's key")
	_ = verifyCmd.MarkFlagRequired("tx")
}

func runVerify(cmd *cobra.Command, cfg VerifyConfig) error {
	tx, err := readTransaction(cfg.TxFile)
	if err != nil {
		return err
	}
	pub, err := resolvePublicKey(tx, cfg.PubKey, cfg.Identities)
	if err != nil {
		return err
	}
	verifier, err := newVerifier()
	if err != nil {
		return err
	}
	if err := verifier.Check(tx, pub); err != nil {
		return err
	}

	return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
		"id":     tx.ID().String(),
		"valid":  true,
		"scheme": tx.SchemeID.String(),
	})
}
