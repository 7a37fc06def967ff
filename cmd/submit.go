package cmd

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mezonai/qledger/ledger"
	"github.com/mezonai/qledger/logx"
	"github.com/mezonai/qledger/store"
)

type SubmitConfig struct {
	TxFile     string
	Identities string
}

var submitConfig SubmitConfig

var submitCmd = &cobra.Command{
	Use:   "submit [flags]",
	Short: "Admit a signed transaction into the ledger",
	Long: `Opens the configured store, restores and re-verifies the ledger from its
journal, then admits the transaction if its signature holds for the sender
declared in the keyring and it has not been admitted before.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSubmit(cmd, submitConfig)
	},
}

func init() {
	rootCmd.AddCommand(submitCmd)

	submitCmd.Flags().StringVar(&submitConfig.TxFile, "tx", "", "transaction record file")
	submitCmd.Flags().StringVar(&submitConfig.Identities, "identities", "", "YAML keyring holding declared sender keys")
	_ = submitCmd.MarkFlagRequired("tx")
	_ = submitCmd.MarkFlagRequired("identities")
}

// openLedger restores the ledger journaled in the configured store. The
// caller must close the returned store.
func openLedger(ctx context.Context) (*ledger.Ledger, store.LedgerStore, error) {
	ls, err := store.CreateLedgerStore(&ledgerConfig.Store)
	if err != nil {
		return nil, nil, err
	}
	verifier, err := newVerifier()
	if err != nil {
		ls.MustClose()
		return nil, nil, err
	}

	entries, err := ls.Load()
	if err != nil {
		ls.MustClose()
		return nil, nil, err
	}
	l := ledger.NewLedger(verifier, ls)
	if err := l.Restore(ctx, entries); err != nil {
		ls.MustClose()
		return nil, nil, fmt.Errorf("journal rejected: %w", err)
	}
	return l, ls, nil
}

func runSubmit(cmd *cobra.Command, cfg SubmitConfig) error {
	tx, err := readTransaction(cfg.TxFile)
	if err != nil {
		return err
	}
	pub, err := resolvePublicKey(tx, "", cfg.Identities)
	if err != nil {
		return err
	}

	l, ls, err := openLedger(cmd.Context())
	if err != nil {
		return err
	}
	defer ls.MustClose()

	if err := l.AddTransaction(tx, pub); err != nil {
		return err
	}

	digest := l.Digest()
	logx.Info("CMD", fmt.Sprintf("Submitted %s, ledger size %d", tx, l.Len()))
	return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
		"id":     tx.ID().String(),
		"seq":    l.Len(),
		"digest": hex.EncodeToString(digest[:]),
	})
}
