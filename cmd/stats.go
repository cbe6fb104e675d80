package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/datagen/internal/record"
	"github.com/abhisek/datagen/internal/trace"
	"github.com/abhisek/datagen/internal/ui/theme"
)

var statsCmd = &cobra.Command{
	Use:   "stats <dataset.json>",
	Short: "Summarize a generated or processed dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		recs, err := record.ReadFile(args[0])
		if err != nil {
			return err
		}
		minScore, _ := cmd.Flags().GetFloat64("min-score")
		if !cmd.Flags().Changed("min-score") {
			minScore = appCfg.Processing.MinQualityScore
		}

		s := describe(recs, minScore)
		fmt.Fprintln(cmd.OutOrStdout(), theme.Panel(args[0], datasetRows(s, minScore)...))
		return nil
	},
}

var lineageCmd = &cobra.Command{
	Use:   "lineage <record-id>",
	Short: "Show the recorded operations for a record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := json.MarshalIndent(trace.Lineage(args[0], time.Now()), "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	statsCmd.Flags().Float64("min-score", 0, "Quality threshold to report against (default from config)")
}
