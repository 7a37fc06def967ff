package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mezonai/qledger/config"
	qerrors "github.com/mezonai/qledger/errors"
	"github.com/mezonai/qledger/logx"
)

var (
	configPath   string
	ledgerConfig *config.LedgerConfig
)

var rootCmd = &cobra.Command{
	Use:   "qledger",
	Short: "Post-quantum signed transaction ledger",
	Long: `Command line interface for generating ML-DSA keys, signing transfers
and admitting them into a local append-only ledger.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		lc, err := config.LoadLedgerConfig(configPath)
		if err != nil {
			return err
		}
		logx.Configure(lc.Log.Options())
		ledgerConfig = lc
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "ledger ini config file")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logx.Error("CMD", "Command execution failed:", err)
		printError(rootCmd.ErrOrStderr(), err)
		os.Exit(1)
	}
}

// printError renders err as the coded JSON error callers can parse
func printError(w io.Writer, err error) {
	fmt.Fprintln(w, qerrors.ToLedgerError(err).Error())
}
