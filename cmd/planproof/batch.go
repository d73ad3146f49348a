package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/planbureau/planproof/internal/app"
	"github.com/planbureau/planproof/internal/issue"
)

var flagBatchWorkers int

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Run the pipeline over every supported document in a directory",
	Long: `batch processes each .docx, .pdf and .html file under the given directory
with an independent pipeline, writing artifacts to <output>/<stem>/ per
document. Documents run in parallel; a failing document is reported but does
not stop the others.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := buildConfig()
		if err != nil {
			return fail(err)
		}
		cfg.AnnotateAll = flagAnnotateAll
		cfg.BatchWorkers = flagBatchWorkers

		a, err := app.New(cfg)
		if err != nil {
			return fail(err)
		}
		results, err := a.RunBatch(context.Background(), args[0])
		printBatchSummary(results)
		if err != nil {
			return fail(err)
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().IntVar(&flagBatchWorkers, "workers", 0, "max documents processed in parallel (0 = number of CPUs)")
	batchCmd.Flags().BoolVar(&flagAnnotateAll, "annotate-all", false,
		"write an annotated copy from all findings, bypassing curation")
	rootCmd.AddCommand(batchCmd)
}

func printBatchSummary(results map[string]*app.Result) {
	if len(results) == 0 {
		return
	}
	files := make([]string, 0, len(results))
	for f := range results {
		files = append(files, f)
	}
	sort.Strings(files)

	bold := color.New(color.Bold)
	bold.Printf("批量校对完成：%d 份文档\n", len(files))
	for _, f := range files {
		s := results[f].Summary
		fmt.Printf("  %s：%d 项（错误 %d，警告 %d，建议 %d）\n", f, s.Total,
			s.BySeverity[issue.SeverityError],
			s.BySeverity[issue.SeverityWarning],
			s.BySeverity[issue.SeveritySuggestion])
	}
}
