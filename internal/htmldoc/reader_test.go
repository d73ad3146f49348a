package htmldoc

import (
	"os"
	"path/filepath"
	"testing"
)

func writeHTML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRead_BlocksBecomeParagraphs(t *testing.T) {
	path := writeHTML(t, `<!doctype html><html><body>
<h1>总体规划说明</h1>
<p>规划期限为2021年至2035年。</p>
<ul><li>规划范围：市域全部。</li></ul>
</body></html>`)

	doc, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Paragraphs) != 3 {
		t.Fatalf("expected 3 paragraphs, got %+v", doc.Paragraphs)
	}
	if doc.Paragraphs[0].Level != 1 || doc.Paragraphs[0].Text != "总体规划说明" {
		t.Fatalf("unexpected heading %+v", doc.Paragraphs[0])
	}
	for i, p := range doc.Paragraphs {
		if p.Index != i {
			t.Fatalf("expected continuous indices, got %+v", doc.Paragraphs)
		}
	}
}

func TestRead_TableWithAnchor(t *testing.T) {
	path := writeHTML(t, `<html><body>
<p>用地平衡表：</p>
<table>
<tr><th>类别</th><th>面积</th></tr>
<tr><td>居住用地</td><td>40</td></tr>
</table>
<p>表后说明。</p>
</body></html>`)

	doc, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Tables) != 1 {
		t.Fatalf("expected 1 table, got %+v", doc.Tables)
	}
	if doc.Tables[0].Rows[1][0] != "居住用地" {
		t.Fatalf("unexpected rows %v", doc.Tables[0].Rows)
	}
	if got := doc.AnchorForTable(0); got != 0 {
		t.Fatalf("expected anchor 0, got %d", got)
	}
	if doc.Paragraphs[1].Index != 1 {
		t.Fatalf("table must not consume a paragraph index: %+v", doc.Paragraphs)
	}
}

func TestRead_SkipsChromeElements(t *testing.T) {
	path := writeHTML(t, `<html><body>
<nav><p>导航</p></nav>
<script>var x = 1;</script>
<p>正文内容。</p>
<footer><p>版权信息</p></footer>
</body></html>`)

	doc, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Paragraphs) != 1 || doc.Paragraphs[0].Text != "正文内容。" {
		t.Fatalf("chrome content leaked into the model: %+v", doc.Paragraphs)
	}
}

func TestRead_WhitespaceCollapsed(t *testing.T) {
	path := writeHTML(t, "<html><body><p>规划\n  期限   2035</p></body></html>")
	doc, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Paragraphs[0].Text != "规划 期限 2035" {
		t.Fatalf("unexpected text %q", doc.Paragraphs[0].Text)
	}
}
