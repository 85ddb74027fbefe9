package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tokenark/internal/gallery"
)

func newGalleryCommand(ctx *commandContext) *cobra.Command {
	galleryCmd := &cobra.Command{
		Use:   "gallery",
		Short: "Work with the offline gallery bundle",
	}
	galleryCmd.AddCommand(newGalleryExportCommand(ctx))
	return galleryCmd
}

func newGalleryExportCommand(ctx *commandContext) *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "export <directory>",
		Short: "Copy the archive into a self-contained export directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.manifestStore()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			exporter := gallery.NewExporter(store,
				gallery.WithLogger(logger),
				gallery.WithWorkers(workers))
			result, err := exporter.Export(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Exported %d file(s) to %s\n", result.FilesCopied, args[0])
			if len(result.Missing) > 0 {
				fmt.Fprintf(out, "%d referenced file(s) were missing from the archive:\n", len(result.Missing))
				for _, rel := range result.Missing {
					fmt.Fprintf(out, "  %s\n", rel)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 0, "Copy worker count (default 4)")
	return cmd
}
