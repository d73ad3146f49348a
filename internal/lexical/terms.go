package lexical

import (
	"fmt"
	"sort"
	"strings"

	"github.com/planbureau/planproof/internal/corpus"
	"github.com/planbureau/planproof/internal/docmodel"
	"github.com/planbureau/planproof/internal/issue"
)

// textUnit is one addressable piece of document text for term counting.
// Table cells are attributed to the table's anchor paragraph; header and
// footer text carries index -1 and degrades to unlocated findings.
type textUnit struct {
	index int
	text  string
}

func textUnits(doc *docmodel.Document) []textUnit {
	units := make([]textUnit, 0, len(doc.Paragraphs))
	for _, p := range doc.Paragraphs {
		units = append(units, textUnit{index: p.Index, text: p.Text})
	}
	for _, t := range doc.Tables {
		anchor := doc.AnchorForTable(t.Index)
		for _, row := range t.Rows {
			for _, cell := range row {
				if cell != "" {
					units = append(units, textUnit{index: anchor, text: cell})
				}
			}
		}
	}
	keys := make([]string, 0, len(doc.HeaderFooter))
	for k := range doc.HeaderFooter {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if text := doc.HeaderFooter[k]; text != "" {
			units = append(units, textUnit{index: -1, text: text})
		}
	}
	return units
}

// checkTermConsistency applies the corpus term rules in two passes. The
// first pass counts every occurrence of the canonical form and each variant
// across paragraphs and table cells; the second pass emits the findings.
// The split exists because minority-variant flagging needs the document-wide
// majority before anything can be flagged.
func checkTermConsistency(doc *docmodel.Document, c *corpus.Corpus) []issue.Issue {
	units := textUnits(doc)

	var issues []issue.Issue
	for _, rule := range c.Terms {
		counts := map[string]int{}
		positions := map[string][]int{}
		forms := append([]string{rule.Canonical}, rule.Variants...)

		// Pass 1: collect occurrences. A variant that contains the
		// canonical form (绿化覆盖率 vs 绿地率 does not, but 控规详细规划
		// vs 控制性详细规划 style overlaps can) is counted on the longest
		// matching form first.
		ordered := append([]string(nil), forms...)
		sort.SliceStable(ordered, func(a, b int) bool { return len(ordered[a]) > len(ordered[b]) })
		for _, u := range units {
			remaining := u.text
			for _, form := range ordered {
				n := strings.Count(remaining, form)
				if n == 0 {
					continue
				}
				counts[form] += n
				for k := 0; k < n; k++ {
					positions[form] = append(positions[form], u.index)
				}
				remaining = strings.ReplaceAll(remaining, form, "")
			}
		}

		// Pass 2: emit findings from the collected summary.
		if rule.Always {
			for _, variant := range rule.Variants {
				for _, idx := range positions[variant] {
					msg := fmt.Sprintf("[术语] 「%s」应为「%s」", variant, rule.Canonical)
					if rule.Note != "" {
						msg += "，" + rule.Note
					}
					issues = append(issues, located(idx, severityOf(rule.Severity, issue.SeverityError),
						issue.CategoryTerminology, msg, variant))
				}
			}
			continue
		}

		// Consistency mode: only documents that mix forms are flagged.
		majority := rule.Canonical
		for _, form := range forms {
			if counts[form] > counts[majority] {
				majority = form
			}
		}
		for _, form := range forms {
			if form == majority || counts[form] == 0 {
				continue
			}
			for _, idx := range positions[form] {
				msg := fmt.Sprintf(
					"[术语] 「%s」为全文少数写法（%d 处，多数写法「%s」%d 处）",
					form, counts[form], majority, counts[majority],
				)
				if rule.Note != "" {
					msg += "，" + rule.Note
				}
				msg += fmt.Sprintf("。建议全文统一使用「%s」", rule.Canonical)
				issues = append(issues, located(idx, severityOf(rule.Severity, issue.SeverityWarning),
					issue.CategoryTerminology, msg, form))
			}
		}
	}
	return issues
}

// located builds an issue at idx, degrading to an unlocated issue for
// table text with no known anchor paragraph.
func located(idx int, sev issue.Severity, cat issue.Category, msg string, evidence ...string) issue.Issue {
	if idx < 0 {
		return issue.Unlocated(sev, cat, msg, evidence...)
	}
	return issue.At(idx, sev, cat, msg, evidence...)
}
