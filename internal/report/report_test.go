package report

import (
	"strings"
	"testing"
	"time"

	"github.com/planbureau/planproof/internal/docmodel"
	"github.com/planbureau/planproof/internal/indicator"
	"github.com/planbureau/planproof/internal/issue"
)

func sampleDoc() *docmodel.Document {
	return &docmodel.Document{
		Paragraphs: []docmodel.Paragraph{
			{Index: 0, Text: "一、总则", Level: 1},
			{Index: 1, Text: "1.1 规划依据", Level: 2},
			{Index: 2, Text: "依据相关法律法规编制本规划。"},
			{Index: 3, Text: "规划期限为2021年至2035年。"},
			{Index: 4, Text: "二、发展目标", Level: 1},
			{Index: 5, Text: "建设宜居城市。"},
		},
	}
}

func TestLocationMap_SectionPaths(t *testing.T) {
	locations := LocationMap(sampleDoc())

	if got := locations[2]; !strings.Contains(got, "规划依据") || !strings.Contains(got, "第1段") {
		t.Fatalf("unexpected location for paragraph 2: %q", got)
	}
	// Nested sections name the parent heading too.
	if got := locations[3]; !strings.Contains(got, "总则") || !strings.Contains(got, "规划依据") {
		t.Fatalf("expected parent and section in %q", got)
	}
	// A new top-level heading resets the body counter.
	if got := locations[5]; !strings.Contains(got, "发展目标") || !strings.Contains(got, "第1段") {
		t.Fatalf("unexpected location for paragraph 5: %q", got)
	}
	if got := locations[0]; !strings.Contains(got, "章节标题") {
		t.Fatalf("heading location should be marked as such: %q", got)
	}
}

func TestLocationMap_BodyBeforeAnyHeading(t *testing.T) {
	doc := &docmodel.Document{
		Paragraphs: []docmodel.Paragraph{{Index: 0, Text: "前言段落。"}},
	}
	locations := LocationMap(doc)
	if got := locations[0]; !strings.Contains(got, "开篇第1段") {
		t.Fatalf("unexpected location %q", got)
	}
}

func TestHeadingLevel_NumberedStyleFallback(t *testing.T) {
	cases := []struct {
		style string
		want  int
	}{
		{"0-1.1", 2},
		{"1.2.3", 3},
		{"2", 1},
		{"正文", 0},
	}
	for _, tc := range cases {
		p := docmodel.Paragraph{Style: tc.style}
		if got := headingLevel(p); got != tc.want {
			t.Fatalf("headingLevel(%q) = %d, want %d", tc.style, got, tc.want)
		}
	}
}

func TestDescribe_Fallback(t *testing.T) {
	if got := Describe(map[int]string{}, 9); got != "第9段" {
		t.Fatalf("unexpected fallback %q", got)
	}
}

func TestMarkdown_Content(t *testing.T) {
	idx := 2
	params := Params{
		Title: "某市中心片区控规",
		Doc:   sampleDoc(),
		Issues: []issue.Issue{
			{Severity: issue.SeverityError, Category: issue.CategoryTerminology,
				Message: "「绿化率」应为「绿地率」", SourceIndex: &idx, Evidence: []string{"绿化率"}},
			issue.Unlocated(issue.SeverityWarning, issue.CategoryCompleteness, "全文未出现「规划范围」"),
		},
		Summary: issue.Summary{
			Total:      2,
			BySeverity: map[issue.Severity]int{issue.SeverityError: 1, issue.SeverityWarning: 1},
			ByCategory: map[issue.Category]int{issue.CategoryTerminology: 1, issue.CategoryCompleteness: 1},
		},
		Indicators: []indicator.Indicator{
			{Value: 120, Raw: "120", Unit: indicator.UnitArea, Matched: "120平方公里", SourceIndex: 2},
		},
		Now: time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC),
	}
	md := Markdown(params)

	for _, want := range []string{
		"# 校对报告 — 某市中心片区控规",
		"2026年03月15日",
		"共发现 **2** 项潜在问题",
		"## 一、错误（必须修改）",
		"「绿化率」应为「绿地率」",
		"全文范围",
		"*无额外建议。*",
		"## 数字指标交叉核验表",
		"120平方公里",
		"AI 深度校对未启用",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("report missing %q", want)
		}
	}
}

func TestMarkdown_AISummaryIncluded(t *testing.T) {
	params := Params{
		Title:     "测试",
		Doc:       sampleDoc(),
		Summary:   issue.Summary{BySeverity: map[issue.Severity]int{}, ByCategory: map[issue.Category]int{}},
		AISummary: "整体质量良好，存在少量术语问题。",
		AIModel:   "deepseek-chat",
		Now:       time.Now(),
	}
	md := Markdown(params)
	if !strings.Contains(md, "整体质量良好") || !strings.Contains(md, "deepseek-chat") {
		t.Fatal("AI assessment missing from report")
	}
}

func TestMarkdown_EscapesTableCells(t *testing.T) {
	idx := 2
	params := Params{
		Title: "t",
		Doc:   sampleDoc(),
		Issues: []issue.Issue{
			{Severity: issue.SeverityError, Category: issue.CategoryFormat,
				Message: "包含|竖线\n与换行", SourceIndex: &idx},
		},
		Summary: issue.Summary{Total: 1,
			BySeverity: map[issue.Severity]int{issue.SeverityError: 1},
			ByCategory: map[issue.Category]int{issue.CategoryFormat: 1}},
		Now: time.Now(),
	}
	md := Markdown(params)
	if strings.Contains(md, "包含|竖线") {
		t.Fatal("pipe not escaped in table cell")
	}
	if !strings.Contains(md, "包含｜竖线 与换行") {
		t.Fatal("escaped cell text missing")
	}
}

func TestWritePDF_RequiresFont(t *testing.T) {
	if err := WritePDF("# 标题", "", t.TempDir()+"/out.pdf"); err == nil {
		t.Fatal("expected error when no font is configured")
	}
}
