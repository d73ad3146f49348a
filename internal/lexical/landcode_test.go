package lexical

import (
	"strings"
	"testing"

	"github.com/planbureau/planproof/internal/docmodel"
	"github.com/planbureau/planproof/internal/issue"
)

func landCodeIssues(t *testing.T, text string) []issue.Issue {
	t.Helper()
	doc := docFromParas(docmodel.Paragraph{Index: 0, Text: text})
	return byCategory(Check(doc, defaultCorpus(t)), issue.CategoryLandCode)
}

func TestCheck_UnknownLandCode(t *testing.T) {
	issues := landCodeIssues(t, "规划Z9类用地沿路布局。")
	if len(issues) != 1 {
		t.Fatalf("expected 1 finding, got %+v", issues)
	}
	got := issues[0]
	if got.Severity != issue.SeverityError || !strings.Contains(got.Message, "Z9") {
		t.Fatalf("unexpected finding %+v", got)
	}
}

func TestCheck_LandCodeNameMismatch(t *testing.T) {
	issues := landCodeIssues(t, "该地块用地性质为R2类一类居住用地。")
	if len(issues) != 1 {
		t.Fatalf("expected 1 finding, got %+v", issues)
	}
	got := issues[0]
	if got.Severity != issue.SeverityWarning {
		t.Fatalf("name mismatch should warn: %+v", got)
	}
	if !strings.Contains(got.Message, "二类居住用地") {
		t.Fatalf("message should name the table entry: %q", got.Message)
	}
}

func TestCheck_CorrectLandCodeSilent(t *testing.T) {
	if issues := landCodeIssues(t, "该地块用地性质为R2类二类居住用地。"); len(issues) != 0 {
		t.Fatalf("correct code/name pair wrongly flagged: %+v", issues)
	}
}

func TestCheck_CodeWithNameSuffixAccepted(t *testing.T) {
	// "R2类居住用地" abbreviates the table's 二类居住用地.
	if issues := landCodeIssues(t, "新增R2类居住用地两处。"); len(issues) != 0 {
		t.Fatalf("suffix-compatible name wrongly flagged: %+v", issues)
	}
}

func TestCheck_CapitalLetterOutsideLandContextIgnored(t *testing.T) {
	if issues := landCodeIssues(t, "沿G15高速公路两侧严控开发强度。"); len(issues) != 0 {
		t.Fatalf("road designation wrongly treated as land code: %+v", issues)
	}
}
