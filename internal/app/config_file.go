package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the single-file YAML configuration schema. Nested sections
// map naturally onto flags and environment variables; precedence is
// flags > env > file > defaults, applied by the CLI layer.
type FileConfig struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
	Corpus string `yaml:"corpus"`

	AI struct {
		Enable  bool   `yaml:"enable"`
		BaseURL string `yaml:"base"`
		Model   string `yaml:"model"`
		APIKey  string `yaml:"key"`
	} `yaml:"ai"`

	PDF struct {
		Enable bool   `yaml:"enable"`
		Font   string `yaml:"font"`
	} `yaml:"pdf"`

	AnnotateAll bool          `yaml:"annotateAll"`
	Timeout     time.Duration `yaml:"timeout"`
	Workers     int           `yaml:"workers"`
	Verbose     bool          `yaml:"verbose"`
}

// LoadConfigFile reads and decodes a YAML config file. A missing path is an
// error: the caller only asks for a file it explicitly configured.
func LoadConfigFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	var fc FileConfig
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return &fc, nil
}

// Apply copies the file's values onto cfg, only where cfg still holds the
// zero value, preserving anything flags or env already set.
func (fc *FileConfig) Apply(cfg *Config) {
	setIfEmpty(&cfg.InputPath, fc.Input)
	setIfEmpty(&cfg.OutputDir, fc.Output)
	setIfEmpty(&cfg.CorpusPath, fc.Corpus)
	setIfEmpty(&cfg.LLMBaseURL, fc.AI.BaseURL)
	setIfEmpty(&cfg.LLMModel, fc.AI.Model)
	setIfEmpty(&cfg.LLMAPIKey, fc.AI.APIKey)
	setIfEmpty(&cfg.PDFFontPath, fc.PDF.Font)
	if fc.AI.Enable {
		cfg.AIEnabled = true
	}
	if fc.PDF.Enable {
		cfg.EnablePDF = true
	}
	if fc.AnnotateAll {
		cfg.AnnotateAll = true
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = fc.Timeout
	}
	if cfg.BatchWorkers == 0 {
		cfg.BatchWorkers = fc.Workers
	}
	if fc.Verbose {
		cfg.Verbose = true
	}
}

func setIfEmpty(dst *string, val string) {
	if strings.TrimSpace(*dst) == "" && strings.TrimSpace(val) != "" {
		*dst = val
	}
}
