// Package lexical checks the document model against the rule corpus:
// formatting conventions, confusable typo pairs, terminology consistency,
// land-use codes, and required-term completeness. Matching is pattern and
// substring based, driven entirely by corpus data.
//
// The checker deliberately over-reports: a possible match is never silently
// dropped, and every finding carries the exact matched span so the human
// curation step can verify it. False positives are part of the contract.
package lexical

import (
	"fmt"
	"strings"

	"github.com/planbureau/planproof/internal/corpus"
	"github.com/planbureau/planproof/internal/docmodel"
	"github.com/planbureau/planproof/internal/issue"
)

// Check runs every corpus-driven check over the document and returns the
// raw (unaggregated) findings.
func Check(doc *docmodel.Document, c *corpus.Corpus) []issue.Issue {
	var issues []issue.Issue
	issues = append(issues, checkFormatRules(doc, c)...)
	issues = append(issues, checkDuplicatedWords(doc, c)...)
	issues = append(issues, checkConfusables(doc, c)...)
	issues = append(issues, checkTermConsistency(doc, c)...)
	issues = append(issues, checkLandUseCodes(doc, c)...)
	issues = append(issues, checkRequiredTerms(doc, c)...)
	return issues
}

func severityOf(s string, fallback issue.Severity) issue.Severity {
	sev := issue.Severity(s)
	if sev.Valid() {
		return sev
	}
	return fallback
}

func checkFormatRules(doc *docmodel.Document, c *corpus.Corpus) []issue.Issue {
	var issues []issue.Issue
	for _, p := range doc.Paragraphs {
		for i := range c.FormatRules {
			rule := &c.FormatRules[i]
			matches := rule.Find(p.Text)
			if len(matches) == 0 {
				continue
			}
			msg := fmt.Sprintf("[格式] %s（匹配：%s）", rule.Message, matches[0])
			issues = append(issues, issue.At(p.Index, severityOf(rule.Severity, issue.SeveritySuggestion),
				issue.CategoryFormat, msg, matches...))
		}
	}
	return issues
}

func checkConfusables(doc *docmodel.Document, c *corpus.Corpus) []issue.Issue {
	var issues []issue.Issue
	for _, p := range doc.Paragraphs {
		for _, cf := range c.Confusables {
			if !strings.Contains(p.Text, cf.Wrong) {
				continue
			}
			msg := fmt.Sprintf("疑似错别字：「%s」应为「%s」", cf.Wrong, cf.Right)
			if cf.Note != "" {
				msg += "，" + cf.Note
			}
			issues = append(issues, issue.At(p.Index, severityOf(cf.Severity, issue.SeverityError),
				issue.CategoryTypo, msg, cf.Wrong))
		}
	}
	return issues
}

func checkRequiredTerms(doc *docmodel.Document, c *corpus.Corpus) []issue.Issue {
	if len(c.RequiredTerms) == 0 {
		return nil
	}
	var all strings.Builder
	for _, p := range doc.Paragraphs {
		all.WriteString(p.Text)
		all.WriteByte('\n')
	}
	for _, t := range doc.Tables {
		for _, row := range t.Rows {
			for _, cell := range row {
				all.WriteString(cell)
				all.WriteByte('\n')
			}
		}
	}
	text := all.String()

	var issues []issue.Issue
	for _, rt := range c.RequiredTerms {
		if strings.Contains(text, rt.Term) {
			continue
		}
		msg := rt.Message
		if msg == "" {
			msg = fmt.Sprintf("全文未出现必备术语「%s」，请确认相关内容是否缺失", rt.Term)
		}
		issues = append(issues, issue.Unlocated(issue.SeverityWarning, issue.CategoryCompleteness, msg, rt.Term))
	}
	return issues
}

// exclusion runes around a reduplication that make it legitimate
// (一一对应, 各各不同, 每每如此).
var duplicationBoundary = map[rune]bool{'一': true, '各': true, '每': true}

// checkDuplicatedWords flags ABAB-style accidental word doubling. The rule
// corpus only toggles it; the matching itself is code because it needs
// backreferences, which the regexp engine does not provide.
func checkDuplicatedWords(doc *docmodel.Document, c *corpus.Corpus) []issue.Issue {
	if !c.DuplicateWords.Enabled {
		return nil
	}
	var issues []issue.Issue
	for _, p := range doc.Paragraphs {
		for _, m := range findDuplicatedWords(p.Text) {
			msg := fmt.Sprintf("[格式] %s（匹配：%s）", c.DuplicateWords.Message, m)
			issues = append(issues, issue.At(p.Index, severityOf(c.DuplicateWords.Severity, issue.SeveritySuggestion),
				issue.CategoryTypo, msg, m))
		}
	}
	return issues
}

// findDuplicatedWords scans for a 2–4 rune Han sequence immediately repeated
// (规划规划), skipping repeats framed by 一/各/每 which mark intentional
// reduplication.
func findDuplicatedWords(text string) []string {
	runes := []rune(text)
	var out []string
	for i := 0; i < len(runes); {
		advanced := false
		for l := 4; l >= 2; l-- {
			if i+2*l > len(runes) {
				continue
			}
			if !allHan(runes[i:i+2*l]) || !equalRunes(runes[i:i+l], runes[i+l:i+2*l]) {
				continue
			}
			if i > 0 && duplicationBoundary[runes[i-1]] {
				continue
			}
			if i+2*l < len(runes) && duplicationBoundary[runes[i+2*l]] {
				continue
			}
			out = append(out, string(runes[i:i+2*l]))
			i += 2 * l
			advanced = true
			break
		}
		if !advanced {
			i++
		}
	}
	return out
}

func allHan(rs []rune) bool {
	for _, r := range rs {
		if r < 0x4E00 || r > 0x9FA5 {
			return false
		}
	}
	return true
}

func equalRunes(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
