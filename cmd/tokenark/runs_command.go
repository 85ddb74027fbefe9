package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "runs <chain> <wallet>",
		Short: "Show the run history for one wallet on one chain",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.manifestStore()
			if err != nil {
				return err
			}
			records, err := store.LoadRunRecords(args[0], args[1])
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, records)
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded for this wallet.")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, record := range records {
				rows = append(rows, []string{
					record.RunID,
					strconv.Itoa(record.Summary.Added),
					strconv.Itoa(record.Summary.Updated),
					strconv.Itoa(record.Summary.Removed),
					previewIDs(record.Added),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Run", "Added", "Updated", "Removed", "New Assets"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit run records as JSON")
	return cmd
}

// previewIDs shows the first few asset IDs of a delta without flooding
// the table.
func previewIDs(ids []string) string {
	const maxShown = 3
	if len(ids) <= maxShown {
		return strings.Join(ids, ", ")
	}
	return fmt.Sprintf("%s, ... (%d more)", strings.Join(ids[:maxShown], ", "), len(ids)-maxShown)
}
