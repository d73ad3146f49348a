// Package corpus loads the rule corpus driving the lexical/format checker:
// format rules, terminology consistency pairs, confusable typo pairs,
// required terms, and the land-use classification table. Rules are data, not
// code: the checker interprets whatever the corpus supplies, so rule updates
// never require touching checker logic.
package corpus

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"

	yaml "gopkg.in/yaml.v3"
)

// ErrRuleCorpus marks missing or malformed reference data. It is always
// raised at load time, never mid-run.
var ErrRuleCorpus = errors.New("corpus: invalid rule corpus")

//go:embed defaults.yaml
var defaultCorpus []byte

// FormatRule is a regex-triggered formatting convention. Pattern is compiled
// at load time; Message should tell the reviewer what the convention is.
type FormatRule struct {
	Name     string `yaml:"name"`
	Pattern  string `yaml:"pattern"`
	Message  string `yaml:"message"`
	Severity string `yaml:"severity"`

	re *regexp.Regexp
}

// Find returns all matches of the rule in text.
func (r *FormatRule) Find(text string) []string {
	return r.re.FindAllString(text, -1)
}

// TermRule describes one canonical term and its deviating variants.
//
// When Always is true every variant occurrence is a required correction and
// is flagged on its own. Otherwise the rule is a consistency rule: variants
// are only flagged when they are the minority spelling within the document
// (the canonical form wins ties).
type TermRule struct {
	Canonical string   `yaml:"canonical"`
	Variants  []string `yaml:"variants"`
	Note      string   `yaml:"note"`
	Always    bool     `yaml:"always"`
	Severity  string   `yaml:"severity"`
}

// Confusable is a visually or phonetically similar substitution that is
// wrong wherever it appears.
type Confusable struct {
	Wrong    string `yaml:"wrong"`
	Right    string `yaml:"right"`
	Note     string `yaml:"note"`
	Severity string `yaml:"severity"`
}

// RequiredTerm must appear somewhere in the document; its absence is a
// completeness finding with no single location.
type RequiredTerm struct {
	Term    string `yaml:"term"`
	Message string `yaml:"message"`
}

// LandUseClass is one entry of the land-use classification code table.
type LandUseClass struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

// Corpus is the full rule set consumed by the lexical/format checker.
type Corpus struct {
	FormatRules    []FormatRule   `yaml:"formatRules"`
	Terms          []TermRule     `yaml:"terms"`
	Confusables    []Confusable   `yaml:"confusables"`
	RequiredTerms  []RequiredTerm `yaml:"requiredTerms"`
	LandUse        []LandUseClass `yaml:"landUse"`
	DuplicateWords struct {
		Enabled  bool   `yaml:"enabled"`
		Message  string `yaml:"message"`
		Severity string `yaml:"severity"`
	} `yaml:"duplicateWords"`

	landUseByCode map[string]string
}

// Default returns the embedded rule corpus.
func Default() (*Corpus, error) {
	return parse(defaultCorpus, "embedded defaults")
}

// Load reads a corpus from a YAML file. An empty path falls back to the
// embedded defaults.
func Load(path string) (*Corpus, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRuleCorpus, path, err)
	}
	return parse(data, path)
}

func parse(data []byte, origin string) (*Corpus, error) {
	var c Corpus
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRuleCorpus, origin, err)
	}
	if err := c.compile(origin); err != nil {
		return nil, err
	}
	return &c, nil
}

// compile validates every rule up front so malformed reference data fails at
// load time, never in the middle of a run.
func (c *Corpus) compile(origin string) error {
	for i := range c.FormatRules {
		r := &c.FormatRules[i]
		if r.Pattern == "" {
			return fmt.Errorf("%w: %s: format rule %q has no pattern", ErrRuleCorpus, origin, r.Name)
		}
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return fmt.Errorf("%w: %s: format rule %q: %v", ErrRuleCorpus, origin, r.Name, err)
		}
		r.re = re
		if r.Severity == "" {
			r.Severity = "suggestion"
		}
	}
	for i, t := range c.Terms {
		if t.Canonical == "" || len(t.Variants) == 0 {
			return fmt.Errorf("%w: %s: term rule %d is missing canonical or variants", ErrRuleCorpus, origin, i)
		}
	}
	for i, cf := range c.Confusables {
		if cf.Wrong == "" || cf.Right == "" {
			return fmt.Errorf("%w: %s: confusable %d is missing wrong or right form", ErrRuleCorpus, origin, i)
		}
	}
	c.landUseByCode = make(map[string]string, len(c.LandUse))
	for _, lu := range c.LandUse {
		if lu.Code == "" {
			return fmt.Errorf("%w: %s: land-use entry with empty code", ErrRuleCorpus, origin)
		}
		c.landUseByCode[lu.Code] = lu.Name
	}
	return nil
}

// LandUseName returns the classification name for a code and whether the
// code exists in the table.
func (c *Corpus) LandUseName(code string) (string, bool) {
	name, ok := c.landUseByCode[code]
	return name, ok
}
