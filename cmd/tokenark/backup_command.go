package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"tokenark/internal/backup"
)

func newBackupCommand(ctx *commandContext) *cobra.Command {
	var chains []string
	var atRiskOnly bool

	cmd := &cobra.Command{
		Use:   "backup <wallet>",
		Short: "Back up a wallet's collectibles across the configured chains",
		Long: "Discovers every collectible the wallet holds, classifies where each " +
			"referenced URL is stored, downloads metadata and media into the archive, " +
			"and writes the versioned manifest. The wallet may be a literal address " +
			"or a resolvable name.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("at-risk-only") {
				cfg.Backup.AtRiskOnly = atRiskOnly
			}

			runner, err := backup.NewRunner(cfg, backup.WithLogger(logger))
			if err != nil {
				return err
			}
			defer runner.Close()

			outcome, err := runner.Run(cmd.Context(), args[0], chains)
			if err != nil {
				if errors.Is(err, backup.ErrLocked) {
					return errors.New("another backup run is already in progress")
				}
				return err
			}

			printOutcome(cmd, outcome)
			if outcome.Failed() {
				return errors.New("backup completed with failures")
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&chains, "chain", nil, "Limit the run to a configured chain (repeatable)")
	cmd.Flags().BoolVar(&atRiskOnly, "at-risk-only", false, "Only download media stored on centralized hosts")
	return cmd
}

func printOutcome(cmd *cobra.Command, outcome *backup.Outcome) {
	out := cmd.OutOrStdout()
	wallet := outcome.WalletAddress
	if outcome.DisplayName != "" {
		wallet = fmt.Sprintf("%s (%s)", outcome.DisplayName, outcome.WalletAddress)
	}
	fmt.Fprintf(out, "Run %s for %s\n", outcome.RunID, wallet)

	rows := make([][]string, 0, len(outcome.Chains))
	for _, chain := range outcome.Chains {
		if chain.Err != nil {
			rows = append(rows, []string{chain.Chain.Name, "-", "-", "-", "-", chain.Err.Error()})
			continue
		}
		rows = append(rows, []string{
			chain.Chain.Name,
			strconv.Itoa(chain.Summary.TotalNFTs),
			strconv.Itoa(chain.Summary.FullyDecentralized),
			strconv.Itoa(chain.Summary.AtRisk),
			strconv.Itoa(chain.Summary.Failed),
			"",
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Chain", "NFTs", "Decentralized", "At Risk", "Failed", "Error"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
	))
}
