package cmd

import (
	"encoding/hex"

	"github.com/spf13/cobra"

	"github.com/mezonai/qledger/common"
)

type listedEntry struct {
	Seq       uint64 `json:"seq"`
	ID        string `json:"id"`
	Sender    string `json:"sender"`
	Receiver  string `json:"receiver"`
	Amount    uint64 `json:"amount"`
	Nonce     uint64 `json:"nonce"`
	Scheme    string `json:"scheme"`
	PublicKey string `json:"public_key"`
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the ledger in admission order",
	RunE: func(cmd *cobra.Command, args []string) error {
		l, ls, err := openLedger(cmd.Context())
		if err != nil {
			return err
		}
		defer ls.MustClose()

		entries := l.Entries()
		out := make([]listedEntry, len(entries))
		for i, e := range entries {
			out[i] = listedEntry{
				Seq:       e.Seq,
				ID:        e.ID.String(),
				Sender:    e.Tx.Sender,
				Receiver:  e.Tx.Receiver,
				Amount:    e.Tx.Amount,
				Nonce:     e.Tx.Nonce,
				Scheme:    e.Tx.SchemeID.String(),
				PublicKey: common.EncodeBytesToBase58(e.PublicKey),
			}
		}
		digest := l.Digest()
		return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
			"entries": out,
			"digest":  hex.EncodeToString(digest[:]),
		})
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
