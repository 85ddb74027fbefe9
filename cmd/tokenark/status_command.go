package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show every backed up wallet and its storage health",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.manifestStore()
			if err != nil {
				return err
			}
			index, err := store.LoadIndex()
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					fmt.Fprintln(cmd.OutOrStdout(), "No backups yet. Run `tokenark backup <wallet>` first.")
					return nil
				}
				return err
			}
			if jsonOut {
				return writeJSON(cmd, index)
			}

			colorize := shouldColorize(cmd.OutOrStdout())
			rows := make([][]string, 0, len(index.Manifests))
			for _, entry := range index.Manifests {
				m, err := store.LoadManifestFile(storePath(store.Root(), entry.Path))
				if err != nil {
					rows = append(rows, []string{entry.ChainName, entry.WalletAddress, entry.BackupDate, "-", "-", "-", "-"})
					continue
				}
				rows = append(rows, []string{
					entry.ChainName,
					walletLabel(entry.WalletAddress, entry.WalletName),
					entry.BackupDate,
					strconv.Itoa(m.Summary.TotalNFTs),
					strconv.Itoa(m.Summary.FullyDecentralized),
					strconv.Itoa(m.Summary.AtRisk),
					colorizeStatus(walletVerdict(m.Summary.FullyDecentralized, m.Summary.AtRisk), colorize),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Chain", "Wallet", "Backup Date", "NFTs", "Decentralized", "At Risk", "Storage"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the index as JSON")
	return cmd
}

// walletVerdict reduces a wallet's counts to one storage label.
func walletVerdict(decentralized, atRisk int) string {
	switch {
	case atRisk == 0:
		return "decentralized"
	case decentralized == 0:
		return "at-risk"
	default:
		return "mixed"
	}
}

func walletLabel(address, name string) string {
	if name != "" {
		return fmt.Sprintf("%s (%s)", name, address)
	}
	return address
}
