package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/planbureau/planproof/internal/app"
	"github.com/planbureau/planproof/internal/indicator"
)

var indicatorsCmd = &cobra.Command{
	Use:   "indicators <file>",
	Short: "Extract numeric planning indicators from a document",
	Long: `indicators builds the document model, extracts every recognized numeric
indicator (areas, ratios, population counts, years, percentages) and prints
them as JSON, each with its source paragraph or table position.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := app.BuildModel(args[0])
		if err != nil {
			return fail(err)
		}
		inds := indicator.Extract(doc)
		enc := json.NewEncoder(os.Stdout)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(inds)
	},
}

func init() {
	rootCmd.AddCommand(indicatorsCmd)
}
