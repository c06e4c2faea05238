package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"scribe/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent transcription runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg.Paths.DataDir)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No transcription runs recorded")
				return nil
			}

			headers := []string{"When", "Input", "Model", "Lang", "Format", "Audio", "Wall", "RTF", "Speakers"}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				speakers := "-"
				if run.Speakers > 0 {
					speakers = fmt.Sprintf("%d", run.Speakers)
				}
				lang := run.Language
				if lang == "" {
					lang = "-"
				}
				rows = append(rows, []string{
					run.CreatedAt.Local().Format("2006-01-02 15:04"),
					filepath.Base(run.InputPath),
					run.Model,
					lang,
					run.Format,
					formatSeconds(run.AudioSeconds),
					formatSeconds(run.WallSeconds),
					fmt.Sprintf("%.2f", run.RTF),
					speakers,
				})
			}
			fmt.Fprintln(out, renderTable(headers, rows, 5, 6, 7, 8))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	cmd.AddCommand(newHistoryClearCommand(ctx))
	return cmd
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg.Paths.DataDir)
			if err != nil {
				return err
			}
			defer store.Close()

			deleted, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d recorded runs\n", deleted)
			return nil
		},
	}
}
