package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/planbureau/planproof/internal/annotate"
	"github.com/planbureau/planproof/internal/issue"
)

var flagAnnotateOut string

var annotateCmd = &cobra.Command{
	Use:   "annotate <file.docx> <requests.json>",
	Short: "Write curated review comments into a copy of a .docx",
	Long: `annotate reads a JSON array of annotation requests (sourceIndex, comment,
severity) and writes each one as a positioned review comment into a copy of
the document. The original file is never modified. If any request points at
a paragraph index the document does not have, nothing is written.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, reqFile := args[0], args[1]
		data, err := os.ReadFile(reqFile)
		if err != nil {
			return fail(err)
		}
		requests, err := issue.ParseRequests(data)
		if err != nil {
			return fail(fmt.Errorf("parse %s: %w", reqFile, err))
		}
		if len(requests) == 0 {
			return fail(fmt.Errorf("%s contains no annotation requests", reqFile))
		}

		out := flagAnnotateOut
		if out == "" {
			stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
			out = filepath.Join(filepath.Dir(input), stem+"_annotated.docx")
		}
		if err := annotate.Apply(input, requests, out); err != nil {
			return fail(err)
		}
		fmt.Printf("已写入 %d 条批注：%s\n", len(requests), out)
		return nil
	},
}

func init() {
	annotateCmd.Flags().StringVar(&flagAnnotateOut, "out", "", "path for the annotated copy (default: <stem>_annotated.docx beside the input)")
	rootCmd.AddCommand(annotateCmd)
}
