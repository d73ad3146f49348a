package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/planbureau/planproof/internal/app"
)

var buildCmd = &cobra.Command{
	Use:   "build <file>",
	Short: "Build and print the structured document model",
	Long: `build parses a .docx, .pdf or .html document into the structured model
(paragraphs with stable indices, tables, headers/footers) and prints it as
JSON. The same bytes always produce the same indices.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := app.BuildModel(args[0])
		if err != nil {
			return fail(err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
}
