// Package htmldoc builds a docmodel.Document from an HTML file. Block-level
// elements become paragraphs (headings keep their level) and <table> elements
// become tables, so HTML deliverables flow through the same checking stages
// as Word documents.
package htmldoc

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/net/html"

	"github.com/planbureau/planproof/internal/docmodel"
)

var headingTags = map[string]int{
	"h1": 1, "h2": 2, "h3": 3, "h4": 4, "h5": 5, "h6": 6,
}

// Read parses the HTML file at path into a document model. Paragraph indices
// follow document order over block elements; table indices are separate,
// anchored to the preceding block like the Word builder does.
func Read(path string) (*docmodel.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", docmodel.ErrCorruptInput, path, err)
	}
	node, err := html.Parse(strings.NewReader(string(data)))
	if err != nil || node == nil {
		return nil, fmt.Errorf("%w: %s: not parseable as HTML", docmodel.ErrFormat, path)
	}

	doc := &docmodel.Document{
		SourceFile:   path,
		TableAnchors: map[int]int{},
	}
	b := &builder{doc: doc, paraIndex: -1}
	body := findFirst(node, "body")
	if body == nil {
		body = node
	}
	b.walk(body)
	if len(doc.TableAnchors) == 0 {
		doc.TableAnchors = nil
	}
	return doc, nil
}

type builder struct {
	doc       *docmodel.Document
	paraIndex int
}

func (b *builder) walk(n *html.Node) {
	if n.Type == html.ElementNode {
		tag := strings.ToLower(n.Data)
		switch {
		case tag == "script" || tag == "style" || tag == "nav" || tag == "footer":
			return
		case tag == "table":
			rows := parseTable(n)
			idx := len(b.doc.Tables)
			b.doc.TableAnchors[idx] = b.paraIndex
			b.doc.Tables = append(b.doc.Tables, docmodel.Table{Index: idx, Rows: rows})
			return
		case tag == "p" || tag == "li" || headingTags[tag] > 0:
			b.paraIndex++
			text := strings.TrimSpace(collectText(n))
			if text != "" {
				b.doc.Paragraphs = append(b.doc.Paragraphs, docmodel.Paragraph{
					Index: b.paraIndex,
					Text:  text,
					Level: headingTags[tag],
				})
			}
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.walk(c)
	}
}

func parseTable(table *html.Node) [][]string {
	var rows [][]string
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && strings.EqualFold(n.Data, "tr") {
			var row []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (strings.EqualFold(c.Data, "td") || strings.EqualFold(c.Data, "th")) {
					row = append(row, strings.TrimSpace(collectText(c)))
				}
			}
			rows = append(rows, row)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(table)
	return padRows(rows)
}

func padRows(rows [][]string) [][]string {
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	for i, r := range rows {
		for len(r) < width {
			r = append(r, "")
		}
		rows[i] = r
	}
	return rows
}

func collectText(n *html.Node) string {
	var b strings.Builder
	var visit func(*html.Node)
	visit = func(cur *html.Node) {
		if cur.Type == html.TextNode {
			b.WriteString(cur.Data)
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func findFirst(n *html.Node, tag string) *html.Node {
	var res *html.Node
	var dfs func(*html.Node)
	dfs = func(cur *html.Node) {
		if res != nil {
			return
		}
		if cur.Type == html.ElementNode && strings.EqualFold(cur.Data, tag) {
			res = cur
			return
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			dfs(c)
			if res != nil {
				return
			}
		}
	}
	dfs(n)
	return res
}
