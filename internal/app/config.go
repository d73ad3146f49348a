package app

import "time"

// Config holds runtime configuration for one proofreading run.
type Config struct {
	InputPath string
	OutputDir string

	// Rule corpus; empty means the embedded defaults.
	CorpusPath string

	// Optional AI deep proofread (OpenAI-compatible endpoint).
	AIEnabled  bool
	LLMBaseURL string
	LLMModel   string
	LLMAPIKey  string

	// Report rendering.
	EnablePDF   bool
	PDFFontPath string

	// Annotate straight from the aggregated issues instead of a curated
	// request file. Off by default: curation is the human filter point.
	AnnotateAll bool

	// Whole-pipeline deadline; 0 disables.
	Timeout time.Duration

	// Batch mode parallelism; 0 means GOMAXPROCS.
	BatchWorkers int

	Verbose bool
}
