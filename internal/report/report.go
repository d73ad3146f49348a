// Package report renders the aggregated issue list into the human-readable
// proofreading report: one Markdown document with an overall assessment,
// per-severity finding tables, and the numeric cross-validation table, plus
// an optional PDF rendering of the same content.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/planbureau/planproof/internal/docmodel"
	"github.com/planbureau/planproof/internal/indicator"
	"github.com/planbureau/planproof/internal/issue"
)

// Params carries everything the renderer needs. AISummary is empty when the
// deep-proofread stage did not run.
type Params struct {
	Title      string
	Doc        *docmodel.Document
	Issues     []issue.Issue
	Summary    issue.Summary
	Indicators []indicator.Indicator
	AISummary  string
	AIModel    string
	Now        time.Time
}

var severitySections = []struct {
	severity issue.Severity
	heading  string
	empty    string
}{
	{issue.SeverityError, "## 一、错误（必须修改）", "*未检测到错误。*"},
	{issue.SeverityWarning, "## 二、警告（建议修改）", "*未检测到警告。*"},
	{issue.SeveritySuggestion, "## 三、建议（可考虑优化）", "*无额外建议。*"},
}

var unitLabels = map[indicator.Unit]string{
	indicator.UnitArea:       "面积",
	indicator.UnitRatio:      "指标比率",
	indicator.UnitYear:       "年份",
	indicator.UnitPopulation: "人口",
	indicator.UnitPercentage: "百分比",
	indicator.UnitUnknown:    "未分类",
}

// Markdown renders the full report.
func Markdown(p Params) string {
	locations := LocationMap(p.Doc)

	var b strings.Builder
	fmt.Fprintf(&b, "# 校对报告 — %s\n\n", p.Title)
	fmt.Fprintf(&b, "**校对日期：** %s\n", p.Now.Format("2006年01月02日"))
	if p.AIModel != "" {
		fmt.Fprintf(&b, "**生成方式：** 自动检查（数字交叉核验 + 术语/格式规则）+ %s 深度校对\n", p.AIModel)
	} else {
		b.WriteString("**生成方式：** 自动检查（数字交叉核验 + 术语/格式规则），AI 深度校对未启用\n")
	}
	b.WriteString("\n---\n\n## 总体评估\n\n")
	if p.AISummary != "" {
		fmt.Fprintf(&b, "> %s\n\n", p.AISummary)
	}
	fmt.Fprintf(&b, "共发现 **%d** 项潜在问题：\n\n", p.Summary.Total)
	b.WriteString("| 问题级别 | 数量 |\n|---|---|\n")
	fmt.Fprintf(&b, "| 错误（必须修改） | %d 项 |\n", p.Summary.BySeverity[issue.SeverityError])
	fmt.Fprintf(&b, "| 警告（建议修改） | %d 项 |\n", p.Summary.BySeverity[issue.SeverityWarning])
	fmt.Fprintf(&b, "| 建议（可考虑）   | %d 项 |\n", p.Summary.BySeverity[issue.SeveritySuggestion])
	b.WriteString("\n| 问题类别 | 数量 |\n|---|---|\n")
	for _, cat := range []issue.Category{
		issue.CategoryNumeric, issue.CategoryTerminology, issue.CategoryFormat,
		issue.CategoryTypo, issue.CategoryLandCode, issue.CategoryCompleteness,
	} {
		if n := p.Summary.ByCategory[cat]; n > 0 {
			fmt.Fprintf(&b, "| %s | %d 项 |\n", cat, n)
		}
	}
	b.WriteString("\n---\n\n")

	for _, section := range severitySections {
		b.WriteString(section.heading + "\n\n")
		rows := 0
		for _, is := range p.Issues {
			if is.Severity != section.severity {
				continue
			}
			if rows == 0 {
				b.WriteString("| 位置 | 类别 | 问题描述 | 匹配文本 |\n|---|---|---|---|\n")
			}
			rows++
			fmt.Fprintf(&b, "| %s | %s | %s | `%s` |\n",
				cellEscape(locationOf(locations, is)),
				is.Category,
				cellEscape(is.Message),
				cellEscape(strings.Join(is.Evidence, "、")))
		}
		if rows == 0 {
			b.WriteString(section.empty + "\n")
		}
		b.WriteString("\n---\n\n")
	}

	b.WriteString("## 数字指标交叉核验表\n\n")
	if len(p.Indicators) == 0 {
		b.WriteString("*未提取到数字指标。*\n")
	} else {
		b.WriteString("| 类别 | 数值 | 原文 | 位置 |\n|---|---|---|---|\n")
		for _, in := range p.Indicators {
			loc := Describe(locations, in.SourceIndex)
			if in.FromTable {
				loc = fmt.Sprintf("第 %d 张表格（%s附近）", in.TableIndex+1, loc)
			}
			fmt.Fprintf(&b, "| %s | %s | `%s` | %s |\n",
				unitLabels[in.Unit], in.Raw, cellEscape(in.Matched), cellEscape(loc))
		}
	}

	b.WriteString("\n---\n\n*本报告由规划文件校对工具自动生成，请人工复核后使用。*\n")
	return b.String()
}

func locationOf(locations map[int]string, is issue.Issue) string {
	if is.SourceIndex == nil {
		return "全文范围"
	}
	return Describe(locations, *is.SourceIndex)
}

// cellEscape keeps free text from breaking Markdown table rows.
func cellEscape(s string) string {
	s = strings.ReplaceAll(s, "|", "｜")
	return strings.ReplaceAll(s, "\n", " ")
}
