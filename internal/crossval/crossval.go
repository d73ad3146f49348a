// Package crossval applies the numeric consistency rules to the extracted
// indicator sequence and the document's tables: total-vs-subtotal checks,
// repeated-indicator contradictions, domain range bounds, planning-horizon
// year ordering, and unit-notation mixing. The validator is stateless and
// order-independent: the same inputs always produce the same issues in the
// same order.
package crossval

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/planbureau/planproof/internal/docmodel"
	"github.com/planbureau/planproof/internal/indicator"
	"github.com/planbureau/planproof/internal/issue"
)

// ratioBounds holds the domain-plausible range per ratio keyword.
var ratioBounds = map[string][2]float64{
	"容积率":  {0.1, 8.0},
	"建筑密度": {5.0, 80.0},
	"绿地率":  {5.0, 70.0},
}

// ratioKeywordOrder fixes iteration order over ratioBounds.
var ratioKeywordOrder = []string{"容积率", "建筑密度", "绿地率"}

var horizonRe = regexp.MustCompile(`规划期限[为是：:]{0,2}\s*(\d{4})\s*[年\-—–~～至到]+\s*(\d{4})\s*年`)

var targetYearRe = regexp.MustCompile(`到\s*(20\d{2})\s*年|(20\d{2})\s*年(?:底|末|前|实现|达到|完成)`)

// Validate runs the full rule set. doc supplies tables and paragraph text
// for the table-sum and planning-horizon rules; everything else works purely
// off the indicator sequence.
func Validate(doc *docmodel.Document, inds []indicator.Indicator) []issue.Issue {
	var issues []issue.Issue
	issues = append(issues, checkParagraphTotals(inds)...)
	issues = append(issues, checkRatioIndicators(inds)...)
	issues = append(issues, checkPercentBounds(inds)...)
	issues = append(issues, checkPlanningHorizon(doc)...)
	issues = append(issues, validateTableSums(doc)...)
	issues = append(issues, checkNotationMixing(inds)...)
	return issues
}

// checkParagraphTotals verifies total-vs-subtotal agreement for indicators
// of the same unit class found in adjacent paragraphs where a total label
// co-occurs. Table cells are excluded here: structured table totals are
// checked row-wise by validateTableSums.
func checkParagraphTotals(inds []indicator.Indicator) []issue.Issue {
	var issues []issue.Issue

	byUnit := map[indicator.Unit][]indicator.Indicator{}
	for _, in := range inds {
		if in.FromTable {
			continue
		}
		byUnit[in.Unit] = append(byUnit[in.Unit], in)
	}

	for _, unit := range []indicator.Unit{indicator.UnitArea, indicator.UnitPopulation} {
		group := byUnit[unit]
		sort.SliceStable(group, func(a, b int) bool { return group[a].SourceIndex < group[b].SourceIndex })

		// Split into runs of adjacent paragraphs.
		var run []indicator.Indicator
		flush := func() {
			issues = append(issues, checkTotalRun(run)...)
			run = nil
		}
		for _, in := range group {
			if len(run) > 0 && in.SourceIndex > run[len(run)-1].SourceIndex+1 {
				flush()
			}
			run = append(run, in)
		}
		flush()
	}
	return issues
}

func checkTotalRun(run []indicator.Indicator) []issue.Issue {
	var totals, parts []indicator.Indicator
	for _, in := range run {
		if containsAny(in.Context, totalKeywords) {
			totals = append(totals, in)
		} else {
			parts = append(parts, in)
		}
	}
	if len(totals) != 1 || len(parts) < 2 {
		return nil
	}
	stated := totals[0]
	sum := 0.0
	for _, p := range parts {
		sum += p.Value
	}
	tol := abs(stated.Value) * tolRel
	if tol < tolAbs {
		tol = tolAbs
	}
	diff := sum - stated.Value
	if abs(diff) <= tol {
		return nil
	}
	msg := fmt.Sprintf(
		"分项之和 %s 与合计值 %s 不一致（差值 %+.6g），请核查第 %d 段附近的数据",
		strconv.FormatFloat(sum, 'g', 6, 64),
		strconv.FormatFloat(stated.Value, 'g', 6, 64),
		diff, stated.SourceIndex,
	)
	return []issue.Issue{issue.At(stated.SourceIndex, issue.SeverityError, issue.CategoryNumeric, msg, stated.Matched)}
}

// checkRatioIndicators flags the same named ratio appearing with different
// values across the document, and values outside the domain-plausible range.
func checkRatioIndicators(inds []indicator.Indicator) []issue.Issue {
	var issues []issue.Issue

	type occurrence struct {
		val  float64
		para int
		raw  string
	}
	occ := map[string][]occurrence{}
	for _, in := range inds {
		if in.Unit != indicator.UnitRatio {
			continue
		}
		for _, kw := range ratioKeywordOrder {
			if strings.Contains(in.Context, kw) || strings.Contains(in.Matched, kw) {
				occ[kw] = append(occ[kw], occurrence{val: in.Value, para: in.SourceIndex, raw: in.Raw})
				break
			}
		}
	}

	for _, kw := range ratioKeywordOrder {
		list := occ[kw]
		if len(list) == 0 {
			continue
		}

		uniq := map[float64]struct{}{}
		for _, o := range list {
			uniq[o.val] = struct{}{}
		}
		if len(uniq) > 1 {
			vals := make([]float64, 0, len(uniq))
			for v := range uniq {
				vals = append(vals, v)
			}
			sort.Float64s(vals)
			var valStrs, paraStrs []string
			for _, v := range vals {
				valStrs = append(valStrs, strconv.FormatFloat(v, 'g', -1, 64))
			}
			for _, o := range list {
				paraStrs = append(paraStrs, strconv.Itoa(o.para))
			}
			msg := fmt.Sprintf(
				"「%s」在文中出现多个不同数值（%s），涉及第 %s 段，请核实是否为不同地块或章节笔误",
				kw, strings.Join(valStrs, "、"), strings.Join(paraStrs, "、"),
			)
			issues = append(issues, located(list[0].para, issue.SeverityWarning, issue.CategoryNumeric, msg, kw))
		}

		bounds := ratioBounds[kw]
		for _, o := range list {
			if o.val < bounds[0] || o.val > bounds[1] {
				msg := fmt.Sprintf(
					"「%s」数值 %s 超出合理范围（%g–%g），请核实是否笔误或单位有误",
					kw, strconv.FormatFloat(o.val, 'g', -1, 64), bounds[0], bounds[1],
				)
				issues = append(issues, located(o.para, issue.SeverityError, issue.CategoryNumeric, msg, o.raw))
			}
		}
	}
	return issues
}

// checkPercentBounds flags percentages outside 0–100.
func checkPercentBounds(inds []indicator.Indicator) []issue.Issue {
	var issues []issue.Issue
	for _, in := range inds {
		if in.Unit != indicator.UnitPercentage {
			continue
		}
		if in.Value < 0 || in.Value > 100 {
			msg := fmt.Sprintf("百分比数值 %s%% 超出 0–100 范围，请核查", in.Raw)
			issues = append(issues, located(in.SourceIndex, issue.SeverityError, issue.CategoryNumeric, msg, in.Matched))
		}
	}
	return issues
}

// checkPlanningHorizon locates the stated planning horizon and verifies that
// its years are ordered and that target-year phrases do not exceed the
// horizon end. A target year may legitimately cite a superior plan, so the
// overshoot is a suggestion, not an error.
func checkPlanningHorizon(doc *docmodel.Document) []issue.Issue {
	var issues []issue.Issue

	start, end, para := 0, 0, -1
	for _, p := range doc.Paragraphs {
		m := horizonRe.FindStringSubmatch(p.Text)
		if m == nil {
			continue
		}
		start, _ = strconv.Atoi(m[1])
		end, _ = strconv.Atoi(m[2])
		para = p.Index
		break
	}
	if para < 0 {
		return nil
	}

	if start >= end {
		msg := fmt.Sprintf("规划期限起止年份顺序错误（%d–%d），起始年份应早于期末年份", start, end)
		issues = append(issues, issue.At(para, issue.SeverityError, issue.CategoryNumeric, msg,
			fmt.Sprintf("%d-%d", start, end)))
		return issues
	}

	for _, p := range doc.Paragraphs {
		for _, m := range targetYearRe.FindAllStringSubmatchIndex(p.Text, -1) {
			yearStr := groupAt(p.Text, m, 1)
			if yearStr == "" {
				yearStr = groupAt(p.Text, m, 2)
			}
			year, err := strconv.Atoi(yearStr)
			if err != nil {
				continue
			}
			if year <= end {
				continue
			}
			// A horizon restatement ("规划至2040年") is not a target overshoot.
			prefixStart := m[0] - 15
			if prefixStart < 0 {
				prefixStart = 0
			}
			if strings.Contains(p.Text[prefixStart:m[0]], "规划") {
				continue
			}
			msg := fmt.Sprintf(
				"目标年份 %d 年超出本规划期末（%d 年），请确认是引用上位规划还是本规划目标年份有误",
				year, end,
			)
			issues = append(issues, issue.At(p.Index, issue.SeveritySuggestion, issue.CategoryNumeric, msg,
				fmt.Sprintf("%d年", year)))
		}
	}
	return issues
}

// notationFamilies groups the spellings of each area unit. Mixing spellings
// of the same unit across one document is a consistency break.
var notationFamilies = []struct {
	name      string
	spellings []string
}{
	{"平方公里", []string{"平方公里", "km²", "km2"}},
	{"公顷", []string{"公顷", "hm²", "hm2", "ha"}},
	{"平方米", []string{"平方米", "m²", "m2"}},
}

// notationOf identifies which spelling an area match uses. Longer spellings
// are tested first so that "km2" is never mistaken for "m2".
func notationOf(matched string) (family int, spelling string) {
	best := ""
	bestFam := -1
	for fi, fam := range notationFamilies {
		for _, sp := range fam.spellings {
			if strings.Contains(matched, sp) && len(sp) > len(best) {
				best = sp
				bestFam = fi
			}
		}
	}
	return bestFam, best
}

// checkNotationMixing flags documents that write the same area unit in more
// than one notation. The finding spans the whole document, so it carries no
// single source index; the evidence lists the notations seen.
func checkNotationMixing(inds []indicator.Indicator) []issue.Issue {
	var issues []issue.Issue
	seenByFamily := make([]map[string]struct{}, len(notationFamilies))
	for i := range seenByFamily {
		seenByFamily[i] = map[string]struct{}{}
	}
	for _, in := range inds {
		if in.Unit != indicator.UnitArea {
			continue
		}
		if fam, sp := notationOf(in.Matched); fam >= 0 {
			seenByFamily[fam][sp] = struct{}{}
		}
	}
	for fi, fam := range notationFamilies {
		seen := seenByFamily[fi]
		if len(seen) < 2 {
			continue
		}
		var used []string
		for _, sp := range fam.spellings {
			if _, ok := seen[sp]; ok {
				used = append(used, sp)
			}
		}
		msg := fmt.Sprintf("同一面积单位「%s」在文中混用了多种写法（%s），建议全文统一", fam.name, strings.Join(used, "、"))
		issues = append(issues, issue.Unlocated(issue.SeverityWarning, issue.CategoryNumeric, msg, used...))
	}
	return issues
}

// located builds an issue at idx, degrading to an unlocated issue for
// indicators drawn from a table with no anchor paragraph.
func located(idx int, sev issue.Severity, cat issue.Category, msg string, evidence ...string) issue.Issue {
	if idx < 0 {
		return issue.Unlocated(sev, cat, msg, evidence...)
	}
	return issue.At(idx, sev, cat, msg, evidence...)
}

func groupAt(text string, m []int, group int) string {
	if m[2*group] < 0 {
		return ""
	}
	return text[m[2*group]:m[2*group+1]]
}
