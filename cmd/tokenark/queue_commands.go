package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"tokenark/internal/queue"
)

func newLedgerCommand(ctx *commandContext) *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and maintain the backup ledger",
	}

	ledgerCmd.AddCommand(newLedgerListCommand(ctx))
	ledgerCmd.AddCommand(newLedgerResetCommand(ctx))

	return ledgerCmd
}

func newLedgerListCommand(ctx *commandContext) *cobra.Command {
	var runID string
	var limit int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ledger items, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := queue.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			var items []*queue.Item
			if runID != "" {
				items, err = store.ListByRun(cmd.Context(), runID)
			} else {
				items, err = store.ListRecent(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, items)
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Ledger is empty.")
				return nil
			}

			rows := make([][]string, 0, len(items))
			for _, item := range items {
				rows = append(rows, []string{
					strconv.FormatInt(item.ID, 10),
					item.RunID,
					item.ChainName,
					item.ContractAddress,
					item.TokenID,
					string(item.Status),
					item.ErrorMessage,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Run", "Chain", "Contract", "Token", "Status", "Error"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Limit to one run id")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum items to show")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit ledger items as JSON")
	return cmd
}

func newLedgerResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Fail items stuck in non-terminal states after an interrupted run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := queue.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			affected, err := store.ResetStuck(cmd.Context(), "reset after interrupted run")
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reset %d stuck item(s)\n", affected)
			return nil
		},
	}
}
