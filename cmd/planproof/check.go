package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/planbureau/planproof/internal/app"
	"github.com/planbureau/planproof/internal/corpus"
	"github.com/planbureau/planproof/internal/crossval"
	"github.com/planbureau/planproof/internal/indicator"
	"github.com/planbureau/planproof/internal/issue"
	"github.com/planbureau/planproof/internal/lexical"
)

var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Run the rule-based checks and print the findings",
	Long: `check runs the numeric cross-validator and the lexical/format checker
over a document and prints the aggregated findings as JSON, ordered by
document position and severity. No report or annotated copy is written.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := buildConfig()
		if err != nil {
			return fail(err)
		}
		c, err := corpus.Load(cfg.CorpusPath)
		if err != nil {
			return fail(err)
		}
		doc, err := app.BuildModel(args[0])
		if err != nil {
			return fail(err)
		}
		inds := indicator.Extract(doc)
		issues, summary := issue.Aggregate(
			crossval.Validate(doc, inds),
			lexical.Check(doc, c),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(issues); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "共 %d 项：错误 %d，警告 %d，建议 %d\n",
			summary.Total,
			summary.BySeverity[issue.SeverityError],
			summary.BySeverity[issue.SeverityWarning],
			summary.BySeverity[issue.SeveritySuggestion])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
