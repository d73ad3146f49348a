package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/planbureau/planproof/internal/app"
	"github.com/planbureau/planproof/internal/issue"
)

var flagAnnotateAll bool

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Run the full proofreading pipeline on one document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := buildConfig()
		if err != nil {
			return fail(err)
		}
		cfg.InputPath = args[0]
		cfg.AnnotateAll = flagAnnotateAll

		a, err := app.New(cfg)
		if err != nil {
			return fail(err)
		}
		res, err := a.Run(context.Background(), cfg.InputPath)
		if err != nil {
			return fail(err)
		}
		printSummary(res)
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&flagAnnotateAll, "annotate-all", false,
		"write an annotated copy from all findings, bypassing curation")
	rootCmd.AddCommand(runCmd)
}

func printSummary(res *app.Result) {
	bold := color.New(color.Bold)
	bold.Println("校对完成")
	fmt.Printf("  问题总数 : %d 项\n", res.Summary.Total)
	color.Red("  错误     : %d 项", res.Summary.BySeverity[issue.SeverityError])
	color.Yellow("  警告     : %d 项", res.Summary.BySeverity[issue.SeverityWarning])
	color.Cyan("  建议     : %d 项", res.Summary.BySeverity[issue.SeveritySuggestion])
	if res.AISummary != "" {
		fmt.Printf("  AI 评估  : %s\n", res.AISummary)
	}
	fmt.Printf("  校对报告 : %s\n", res.ReportPath)
	if res.PDFPath != "" {
		fmt.Printf("  PDF 报告 : %s\n", res.PDFPath)
	}
	if res.AnnotatedPath != "" {
		fmt.Printf("  批注文档 : %s\n", res.AnnotatedPath)
	}
}
