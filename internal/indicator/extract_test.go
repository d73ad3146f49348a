package indicator

import (
	"strings"
	"testing"

	"github.com/planbureau/planproof/internal/docmodel"
)

func TestFromText_AreaUnits(t *testing.T) {
	cases := []struct {
		text string
		raw  string
	}{
		{"规划总用地面积120平方公里。", "120"},
		{"绿地面积为35.5公顷。", "35.5"},
		{"建筑面积12000平方米。", "12000"},
		{"占地约300亩。", "300"},
	}
	for _, tc := range cases {
		inds := FromText(tc.text, 0)
		if len(inds) != 1 {
			t.Fatalf("%q: expected 1 indicator, got %d", tc.text, len(inds))
		}
		if inds[0].Unit != UnitArea || inds[0].Raw != tc.raw {
			t.Fatalf("%q: got unit %s raw %q", tc.text, inds[0].Unit, inds[0].Raw)
		}
	}
}

func TestFromText_RatioBeatsPercentage(t *testing.T) {
	inds := FromText("绿地率为35%。", 4)
	if len(inds) != 1 {
		t.Fatalf("expected 1 indicator, got %d: %+v", len(inds), inds)
	}
	got := inds[0]
	if got.Unit != UnitRatio {
		t.Fatalf("expected ratio, got %s", got.Unit)
	}
	if got.Value != 35 || got.SourceIndex != 4 {
		t.Fatalf("got value %v at index %d", got.Value, got.SourceIndex)
	}
}

func TestFromText_YearAndPopulation(t *testing.T) {
	inds := FromText("到2035年规划常住人口为45万人。", 0)
	if len(inds) != 2 {
		t.Fatalf("expected 2 indicators, got %d: %+v", len(inds), inds)
	}
	if inds[0].Unit != UnitYear || inds[0].Raw != "2035" {
		t.Fatalf("first should be year 2035, got %+v", inds[0])
	}
	if inds[1].Unit != UnitPopulation || inds[1].Value != 45 {
		t.Fatalf("second should be population 45, got %+v", inds[1])
	}
}

func TestFromText_FullwidthDigitsAreFolded(t *testing.T) {
	inds := FromText("用地面积１２０平方公里", 0)
	if len(inds) != 1 || inds[0].Value != 120 {
		t.Fatalf("fullwidth digits not folded: %+v", inds)
	}
}

func TestFromText_BarePercentage(t *testing.T) {
	inds := FromText("城镇化率达到68.5%。", 0)
	if len(inds) != 1 || inds[0].Unit != UnitPercentage || inds[0].Value != 68.5 {
		t.Fatalf("unexpected result %+v", inds)
	}
}

func TestFromText_ContextIsClippedToLine(t *testing.T) {
	text := "第一行无关内容\n本地块容积率为2.5，建筑退线另行规定。\n第三行无关内容"
	inds := FromText(text, 0)
	if len(inds) != 1 {
		t.Fatalf("expected 1 indicator, got %d", len(inds))
	}
	ctx := inds[0].Context
	if strings.Contains(ctx, "第一行") || strings.Contains(ctx, "第三行") {
		t.Fatalf("context leaked across lines: %q", ctx)
	}
	if !strings.Contains(ctx, "容积率为2.5") {
		t.Fatalf("context missing the match: %q", ctx)
	}
}

func TestFromText_NoIndicators(t *testing.T) {
	if inds := FromText("本章阐述规划原则与总体思路。", 0); len(inds) != 0 {
		t.Fatalf("expected no indicators, got %+v", inds)
	}
}

func TestExtract_TableCellsUseAnchor(t *testing.T) {
	doc := &docmodel.Document{
		Paragraphs: []docmodel.Paragraph{
			{Index: 0, Text: "用地汇总如下："},
		},
		Tables: []docmodel.Table{
			{Index: 0, Rows: [][]string{{"居住用地", "40公顷"}}},
		},
		TableAnchors: map[int]int{0: 0},
	}
	inds := Extract(doc)
	if len(inds) != 1 {
		t.Fatalf("expected 1 indicator, got %d", len(inds))
	}
	got := inds[0]
	if !got.FromTable || got.TableIndex != 0 || got.SourceIndex != 0 {
		t.Fatalf("table attribution wrong: %+v", got)
	}
	if got.Unit != UnitArea || got.Value != 40 {
		t.Fatalf("unexpected indicator %+v", got)
	}
}

func TestExtract_ParagraphsBeforeTables(t *testing.T) {
	doc := &docmodel.Document{
		Paragraphs: []docmodel.Paragraph{
			{Index: 3, Text: "面积50公顷。"},
		},
		Tables: []docmodel.Table{
			{Index: 0, Rows: [][]string{{"10公顷"}}},
		},
		TableAnchors: map[int]int{0: 3},
	}
	inds := Extract(doc)
	if len(inds) != 2 {
		t.Fatalf("expected 2 indicators, got %d", len(inds))
	}
	if inds[0].FromTable || !inds[1].FromTable {
		t.Fatal("paragraph indicators must precede table indicators")
	}
}

func TestExtract_Deterministic(t *testing.T) {
	doc := &docmodel.Document{
		Paragraphs: []docmodel.Paragraph{
			{Index: 0, Text: "总用地120平方公里，其中绿地率为35%，到2035年人口45万人。"},
		},
	}
	first := Extract(doc)
	second := Extract(doc)
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("indicator %d differs between runs", i)
		}
	}
}

func TestFromText_BareWanPopulation(t *testing.T) {
	inds := FromText("规划总人口5万。", 0)
	if len(inds) != 1 {
		t.Fatalf("expected 1 indicator, got %d: %+v", len(inds), inds)
	}
	got := inds[0]
	if got.Unit != UnitPopulation || got.Value != 5 {
		t.Fatalf("got unit %s value %g", got.Unit, got.Value)
	}

	// The suffixed form still wins over the bare one on the same span.
	inds = FromText("新增居住人口1.2万人。", 0)
	if len(inds) != 1 || inds[0].Matched != "1.2万人" {
		t.Fatalf("expected the 万人 form to claim the span, got %+v", inds)
	}
}
