// Package app wires the pipeline stages together: build the document model,
// extract indicators, run the cross-validator and lexical checker (plus the
// optional AI deep proofread), aggregate, and render the report and the
// annotated copy. Each stage is a pure function over the previous stage's
// immutable output; app only sequences them and handles I/O.
package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/planbureau/planproof/internal/aiproof"
	"github.com/planbureau/planproof/internal/annotate"
	"github.com/planbureau/planproof/internal/corpus"
	"github.com/planbureau/planproof/internal/crossval"
	"github.com/planbureau/planproof/internal/docmodel"
	"github.com/planbureau/planproof/internal/docx"
	"github.com/planbureau/planproof/internal/format"
	"github.com/planbureau/planproof/internal/htmldoc"
	"github.com/planbureau/planproof/internal/indicator"
	"github.com/planbureau/planproof/internal/issue"
	"github.com/planbureau/planproof/internal/lexical"
	"github.com/planbureau/planproof/internal/llm"
	"github.com/planbureau/planproof/internal/pdftext"
	"github.com/planbureau/planproof/internal/report"
)

// App holds the loaded rule corpus and configuration shared by all runs.
// The corpus is read-only after load and safe for concurrent pipelines.
type App struct {
	cfg    Config
	corpus *corpus.Corpus
	ai     llm.Client
}

// Result collects everything one pipeline run produced.
type Result struct {
	Doc           *docmodel.Document
	Indicators    []indicator.Indicator
	Issues        []issue.Issue
	Summary       issue.Summary
	AISummary     string
	ReportPath    string
	PDFPath       string
	AnnotatedPath string
}

// New loads the rule corpus and, when the deep proofread is enabled, the
// chat client. Corpus problems fail here, never mid-run.
func New(cfg Config) (*App, error) {
	c, err := corpus.Load(cfg.CorpusPath)
	if err != nil {
		return nil, err
	}
	a := &App{cfg: cfg, corpus: c}
	if cfg.AIEnabled {
		if cfg.LLMModel == "" {
			return nil, fmt.Errorf("ai proofread enabled but no model configured")
		}
		a.ai = llm.New(cfg.LLMBaseURL, cfg.LLMAPIKey)
	}
	return a, nil
}

// BuildModel sniffs the input format and dispatches to the matching builder.
func BuildModel(path string) (*docmodel.Document, error) {
	f, err := format.Detect(path)
	if err != nil {
		return nil, err
	}
	switch f {
	case format.DOCX:
		return docx.Read(path)
	case format.PDF:
		return pdftext.Read(path)
	case format.HTML:
		return htmldoc.Read(path)
	default:
		return nil, fmt.Errorf("%w: %s", docmodel.ErrFormat, path)
	}
}

// Run executes the full pipeline for inputPath and writes all artifacts to
// the configured output directory.
func (a *App) Run(ctx context.Context, inputPath string) (*Result, error) {
	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}

	started := time.Now()
	outDir := a.cfg.OutputDir
	if outDir == "" {
		outDir = "output"
	}
	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))

	doc, err := BuildModel(inputPath)
	if err != nil {
		return nil, err
	}
	log.Info().Str("file", inputPath).
		Int("paragraphs", len(doc.Paragraphs)).
		Int("tables", len(doc.Tables)).
		Msg("document model built")
	if err := writeJSONArtifact(outDir, "doc_content.json", doc); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	inds := indicator.Extract(doc)
	log.Info().Int("indicators", len(inds)).Msg("indicators extracted")
	if err := writeJSONArtifact(outDir, "indicators.json", inds); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	numeric := crossval.Validate(doc, inds)
	lex := lexical.Check(doc, a.corpus)
	log.Info().Int("numeric", len(numeric)).Int("lexical", len(lex)).Msg("checks complete")

	var aiIssues []issue.Issue
	var aiSummary string
	if a.ai != nil {
		pr := &aiproof.Proofreader{Client: a.ai, Model: a.cfg.LLMModel}
		aiIssues, aiSummary, err = pr.Run(ctx, doc)
		if err != nil {
			// Deadline overruns abort the run; anything else degrades to
			// rule-based findings only.
			if ctx.Err() != nil {
				return nil, err
			}
			log.Warn().Err(err).Msg("ai proofread failed; continuing without it")
		}
	}

	issues, summary := issue.Aggregate(numeric, lex, aiIssues)
	if err := writeJSONArtifact(outDir, "issues.json", issues); err != nil {
		return nil, err
	}

	md := report.Markdown(report.Params{
		Title:      stem,
		Doc:        doc,
		Issues:     issues,
		Summary:    summary,
		Indicators: inds,
		AISummary:  aiSummary,
		AIModel:    aiModelLabel(a.cfg),
		Now:        time.Now(),
	})
	reportPath, err := writeTextArtifact(outDir, "report.md", md)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Doc:        doc,
		Indicators: inds,
		Issues:     issues,
		Summary:    summary,
		AISummary:  aiSummary,
		ReportPath: reportPath,
	}

	if a.cfg.EnablePDF {
		pdfPath := filepath.Join(outDir, "report.pdf")
		if err := report.WritePDF(md, a.cfg.PDFFontPath, pdfPath); err != nil {
			log.Warn().Err(err).Msg("pdf report skipped")
		} else {
			res.PDFPath = pdfPath
		}
	}

	if a.cfg.AnnotateAll && len(issues) > 0 {
		docFormat, _ := format.Detect(inputPath)
		if docFormat == format.DOCX {
			requests := issue.RequestsFromIssues(issues)
			annotated := filepath.Join(outDir, stem+"_annotated.docx")
			if err := annotate.Apply(inputPath, requests, annotated); err != nil {
				return nil, err
			}
			res.AnnotatedPath = annotated
		} else {
			log.Warn().Str("file", inputPath).Msg("annotation is only supported for .docx input")
		}
	}

	log.Info().
		Int("issues", summary.Total).
		Dur("elapsed", time.Since(started)).
		Msg("proofread complete")
	return res, nil
}

func aiModelLabel(cfg Config) string {
	if !cfg.AIEnabled {
		return ""
	}
	return cfg.LLMModel
}
