package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/planbureau/planproof/internal/app"
)

var (
	flagVerbose    bool
	flagConfigFile string
	flagOutputDir  string
	flagCorpus     string
	flagTimeout    time.Duration

	flagAI      bool
	flagAIBase  string
	flagAIModel string
	flagAIKey   string

	flagPDF     bool
	flagPDFFont string
)

var rootCmd = &cobra.Command{
	Use:   "planproof",
	Short: "Consistency auditor for urban-planning deliverables",
	Long: `planproof checks planning narratives, zoning plates and official memos
for numeric consistency, terminology and format uniformity, land-use-code
compliance and typographical problems, and produces an itemized report plus
an optional annotated copy of the source document.`,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if flagVerbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
		return app.LoadEnvFile(".env")
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "verbose logging")
	pf.StringVar(&flagConfigFile, "config", "", "path to YAML config file")
	pf.StringVarP(&flagOutputDir, "output", "o", "output", "output directory for artifacts")
	pf.StringVar(&flagCorpus, "corpus", "", "path to rule corpus YAML (default: embedded rules)")
	pf.DurationVar(&flagTimeout, "timeout", 0, "whole-pipeline timeout, e.g. 5m (0 disables)")

	pf.BoolVar(&flagAI, "ai", false, "enable AI deep proofread (OpenAI-compatible endpoint)")
	pf.StringVar(&flagAIBase, "ai.base", "", "OpenAI-compatible base URL (env LLM_BASE_URL)")
	pf.StringVar(&flagAIModel, "ai.model", "", "model name for deep proofread (env LLM_MODEL)")
	pf.StringVar(&flagAIKey, "ai.key", "", "API key for the AI endpoint (env LLM_API_KEY)")

	pf.BoolVar(&flagPDF, "pdf", false, "also render the report as PDF")
	pf.StringVar(&flagPDFFont, "pdf.font", "", "path to a UTF-8 TTF font for PDF rendering (env PDF_FONT)")
}

// buildConfig assembles the effective configuration with precedence
// flags > env > config file > defaults.
func buildConfig() (app.Config, error) {
	cfg := app.Config{
		OutputDir:   flagOutputDir,
		CorpusPath:  flagCorpus,
		AIEnabled:   flagAI,
		LLMBaseURL:  flagAIBase,
		LLMModel:    flagAIModel,
		LLMAPIKey:   flagAIKey,
		EnablePDF:   flagPDF,
		PDFFontPath: flagPDFFont,
		Timeout:     flagTimeout,
		Verbose:     flagVerbose,
	}
	if flagOutputDir == "output" {
		// Let a config file override the unchanged default.
		cfg.OutputDir = ""
	}
	// Environment values, including anything loaded from .env, fill in
	// behind explicit flags and ahead of the config file.
	setFromEnv(&cfg.LLMBaseURL, "LLM_BASE_URL")
	setFromEnv(&cfg.LLMModel, "LLM_MODEL")
	setFromEnv(&cfg.LLMAPIKey, "LLM_API_KEY")
	setFromEnv(&cfg.PDFFontPath, "PDF_FONT")
	if flagConfigFile != "" {
		fc, err := app.LoadConfigFile(flagConfigFile)
		if err != nil {
			return cfg, err
		}
		fc.Apply(&cfg)
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "output"
	}
	return cfg, nil
}

func setFromEnv(dst *string, key string) {
	if *dst == "" {
		*dst = os.Getenv(key)
	}
}

func fail(err error) error {
	fmt.Fprintln(os.Stderr, "错误：", err)
	return err
}
