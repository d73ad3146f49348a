package crossval

import (
	"strings"
	"testing"

	"github.com/planbureau/planproof/internal/docmodel"
	"github.com/planbureau/planproof/internal/issue"
)

func tableDoc(anchor int, rows [][]string) *docmodel.Document {
	doc := &docmodel.Document{
		Paragraphs: []docmodel.Paragraph{{Index: 0, Text: "用地平衡表如下："}},
		Tables:     []docmodel.Table{{Index: 0, Rows: rows}},
	}
	if anchor >= 0 {
		doc.TableAnchors = map[int]int{0: anchor}
	}
	return doc
}

func TestParseCellNumber(t *testing.T) {
	cases := []struct {
		cell string
		want float64
		ok   bool
	}{
		{"120", 120, true},
		{" 35.5 ", 35.5, true},
		{"1,200", 1200, true},
		{"40公顷", 40, true},
		{"68.5%", 68.5, true},
		{"45万人", 45, true},
		{"-3.2", -3.2, true},
		{"约120", 0, false},
		{"面积", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseCellNumber(tc.cell)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Fatalf("parseCellNumber(%q) = %v %v, want %v %v", tc.cell, got, ok, tc.want, tc.ok)
		}
	}
}

func TestValidateTableSums_Mismatch(t *testing.T) {
	doc := tableDoc(0, [][]string{
		{"用地类别", "面积"},
		{"居住用地", "40"},
		{"工业用地", "30"},
		{"绿地", "30"},
		{"合计", "120"},
	})
	issues := validateTableSums(doc)
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %+v", issues)
	}
	got := issues[0]
	if got.Severity != issue.SeverityError || got.Category != issue.CategoryNumeric {
		t.Fatalf("unexpected classification %+v", got)
	}
	if got.SourceIndex == nil || *got.SourceIndex != 0 {
		t.Fatalf("issue should anchor to the table's preceding paragraph: %+v", got.SourceIndex)
	}
	if !strings.Contains(got.Message, "100") || !strings.Contains(got.Message, "120") {
		t.Fatalf("message should name computed and stated sums: %q", got.Message)
	}
}

func TestValidateTableSums_MatchWithinTolerance(t *testing.T) {
	doc := tableDoc(0, [][]string{
		{"用地类别", "面积"},
		{"居住用地", "40.04"},
		{"工业用地", "30.03"},
		{"绿地", "29.98"},
		{"合计", "100.00"},
	})
	if issues := validateTableSums(doc); len(issues) != 0 {
		t.Fatalf("rounding inside tolerance should be silent: %+v", issues)
	}
}

func TestValidateTableSums_ExplicitSubRowsExcluded(t *testing.T) {
	doc := tableDoc(0, [][]string{
		{"用地类别", "面积"},
		{"建设用地", "100"},
		{"其中：居住用地", "40"},
		{"其中：工业用地", "60"},
		{"非建设用地", "50"},
		{"合计", "150"},
	})
	if issues := validateTableSums(doc); len(issues) != 0 {
		t.Fatalf("marked sub-rows must not be double-counted: %+v", issues)
	}
}

func TestValidateTableSums_NestedSubRowsEliminated(t *testing.T) {
	// 40 + 60 restate the 100 above them, so only 100 and 50 count.
	doc := tableDoc(0, [][]string{
		{"用地类别", "面积"},
		{"建设用地", "100"},
		{"居住用地", "40"},
		{"工业用地", "60"},
		{"非建设用地", "50"},
		{"合计", "150"},
	})
	if issues := validateTableSums(doc); len(issues) != 0 {
		t.Fatalf("nested breakdown wrongly added to the total: %+v", issues)
	}
}

func TestValidateTableSums_EqualSiblingIsNotABreakdown(t *testing.T) {
	doc := tableDoc(0, [][]string{
		{"用地类别", "面积"},
		{"工业用地", "30"},
		{"绿地", "30"},
		{"广场用地", "40"},
		{"合计", "100"},
	})
	if issues := validateTableSums(doc); len(issues) != 0 {
		t.Fatalf("two rows with the same value must both count: %+v", issues)
	}
}

func TestValidateTableSums_NoAnchorMeansUnlocated(t *testing.T) {
	doc := tableDoc(-1, [][]string{
		{"用地类别", "面积"},
		{"居住用地", "40"},
		{"工业用地", "30"},
		{"合计", "100"},
	})
	issues := validateTableSums(doc)
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %+v", issues)
	}
	if issues[0].SourceIndex != nil {
		t.Fatalf("anchorless table issue should be unlocated: %+v", issues[0])
	}
}

func TestValidateTableSums_NonNumericColumnsSkipped(t *testing.T) {
	doc := tableDoc(0, [][]string{
		{"用地类别", "备注"},
		{"居住用地", "集中布局"},
		{"工业用地", "沿江布局"},
		{"合计", "全市域"},
	})
	if issues := validateTableSums(doc); len(issues) != 0 {
		t.Fatalf("text column wrongly validated: %+v", issues)
	}
}

func TestRemoveSubItems_MultiLevelBreakdown(t *testing.T) {
	vals := []float64{100, 40, 60, 50}
	present := []bool{true, true, true, true}
	top := removeSubItems(vals, present)
	want := []float64{100, 50}
	if len(top) != len(want) {
		t.Fatalf("got %v, want %v", top, want)
	}
	for i := range want {
		if top[i] != want[i] {
			t.Fatalf("got %v, want %v", top, want)
		}
	}
}
