// Package docx builds a docmodel.Document from a Word (.docx) OOXML
// container. Only the parts the pipeline addresses are extracted: body
// paragraphs, body tables, and section headers/footers.
//
// Addressing semantics: a paragraph's index is its ordinal among the direct
// body-level w:p elements of word/document.xml. Paragraphs nested inside
// tables do not count, and blank body paragraphs consume an index but are
// omitted from the model. The annotator relies on exactly this numbering to
// re-locate paragraphs in the untouched source, so it must never change.
package docx

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/planbureau/planproof/internal/docmodel"
)

// heading style names mapped to outline levels, covering both the English
// built-in styles and the localized Chinese ones.
var headingStyles = map[string]int{
	"heading 1": 1, "heading 2": 2, "heading 3": 3,
	"heading 4": 4, "heading 5": 5, "heading 6": 6,
	"标题 1": 1, "标题 2": 2, "标题 3": 3,
	"标题1": 1, "标题2": 2, "标题3": 3,
}

// HeadingLevel returns the outline level for a paragraph style name, or 0
// for body text.
func HeadingLevel(styleName string) int {
	return headingStyles[strings.ToLower(strings.TrimSpace(styleName))]
}

// Read builds the document model from the .docx file at path. It returns
// docmodel.ErrFormat when the file is not a readable OOXML container and
// docmodel.ErrCorruptInput when the container is recognized but a required
// part cannot be read.
func Read(path string) (*docmodel.Document, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a zip container", docmodel.ErrFormat, path)
	}
	defer zr.Close()

	main := findMember(&zr.Reader, "word/document.xml")
	if main == nil {
		return nil, fmt.Errorf("%w: %s has no word/document.xml", docmodel.ErrFormat, path)
	}

	rc, err := main.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", docmodel.ErrCorruptInput, path, err)
	}
	defer rc.Close()

	paragraphs, tables, anchors, err := parseBody(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", docmodel.ErrCorruptInput, path, err)
	}

	hf := readHeadersFooters(&zr.Reader)

	return &docmodel.Document{
		SourceFile:   path,
		Paragraphs:   paragraphs,
		Tables:       tables,
		TableAnchors: anchors,
		HeaderFooter: hf,
	}, nil
}

func findMember(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// parseBody walks the main document part with a streaming tokenizer. Only
// w:p and w:tbl elements that are direct children of w:body define the
// paragraph and table index spaces; everything nested inside a table belongs
// to that table's cells.
func parseBody(r io.Reader) ([]docmodel.Paragraph, []docmodel.Table, map[int]int, error) {
	dec := xml.NewDecoder(r)

	var (
		paragraphs []docmodel.Paragraph
		tables     []docmodel.Table
		anchors    = map[int]int{}
		inBody     bool
		paraIndex  = -1 // index of the most recent body-level w:p
		tableIndex int
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, nil, err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "body":
				inBody = true
			case "p":
				if !inBody {
					if err := dec.Skip(); err != nil {
						return nil, nil, nil, err
					}
					continue
				}
				paraIndex++
				text, style, err := parseParagraph(dec)
				if err != nil {
					return nil, nil, nil, err
				}
				text = strings.TrimSpace(text)
				if text == "" {
					continue
				}
				paragraphs = append(paragraphs, docmodel.Paragraph{
					Index: paraIndex,
					Text:  text,
					Style: style,
					Level: HeadingLevel(style),
				})
			case "tbl":
				if !inBody {
					if err := dec.Skip(); err != nil {
						return nil, nil, nil, err
					}
					continue
				}
				rows, err := parseTable(dec)
				if err != nil {
					return nil, nil, nil, err
				}
				anchors[tableIndex] = paraIndex
				tables = append(tables, docmodel.Table{Index: tableIndex, Rows: rows})
				tableIndex++
			}
		case xml.EndElement:
			if el.Name.Local == "body" {
				inBody = false
			}
		}
	}
	return paragraphs, tables, anchors, nil
}

// parseParagraph consumes a w:p element that was just opened, returning the
// concatenated run text and the paragraph style name.
func parseParagraph(dec *xml.Decoder) (text, style string, err error) {
	var b strings.Builder
	depth := 1
	inText := false
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return "", "", err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			depth++
			switch el.Name.Local {
			case "t":
				inText = true
			case "pStyle":
				for _, a := range el.Attr {
					if a.Name.Local == "val" {
						style = a.Value
					}
				}
			case "tab":
				b.WriteByte('\t')
			case "br", "cr":
				b.WriteByte('\n')
			}
		case xml.EndElement:
			depth--
			if el.Name.Local == "t" {
				inText = false
			}
		case xml.CharData:
			if inText {
				b.Write(el)
			}
		}
	}
	return b.String(), style, nil
}

// parseTable consumes a w:tbl element that was just opened and returns its
// rows, padded to a rectangle. Nested tables fold their text into the
// enclosing cell rather than producing their own entries.
func parseTable(dec *xml.Decoder) ([][]string, error) {
	var rows [][]string
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			if el.Name.Local == "tr" && depth == 1 {
				row, err := parseRow(dec)
				if err != nil {
					return nil, err
				}
				rows = append(rows, row)
				continue
			}
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return padRows(rows), nil
}

func parseRow(dec *xml.Decoder) ([]string, error) {
	var row []string
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			if el.Name.Local == "tc" && depth == 1 {
				cell, err := parseCell(dec)
				if err != nil {
					return nil, err
				}
				row = append(row, cell)
				continue
			}
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return row, nil
}

// parseCell collects all text inside a w:tc, joining the cell's paragraphs
// with newlines so multi-paragraph cells keep their line structure.
func parseCell(dec *xml.Decoder) (string, error) {
	var parts []string
	var b strings.Builder
	depth := 1
	inText := false
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			depth++
			if el.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			depth--
			switch el.Name.Local {
			case "t":
				inText = false
			case "p":
				if s := strings.TrimSpace(b.String()); s != "" {
					parts = append(parts, s)
				}
				b.Reset()
			}
		case xml.CharData:
			if inText {
				b.Write(el)
			}
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		parts = append(parts, s)
	}
	return strings.Join(parts, "\n"), nil
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

// readHeadersFooters extracts the first paragraph of every header/footer
// part. The first distinct non-empty header gets the key "header", further
// distinct ones "header-2", "header-3" in part order; footers likewise.
// Missing or empty parts simply produce no entry.
func readHeadersFooters(zr *zip.Reader) map[string]string {
	hf := map[string]string{}
	collect := func(prefix string) {
		var names []string
		for _, f := range zr.File {
			if strings.HasPrefix(f.Name, "word/"+prefix) && strings.HasSuffix(f.Name, ".xml") {
				names = append(names, f.Name)
			}
		}
		sort.Strings(names)
		seen := map[string]bool{}
		n := 0
		for _, name := range names {
			text := firstParagraphText(zr, name)
			if text == "" || seen[text] {
				continue
			}
			seen[text] = true
			n++
			key := prefix
			if n > 1 {
				key = fmt.Sprintf("%s-%d", prefix, n)
			}
			hf[key] = text
		}
	}
	collect("header")
	collect("footer")
	if len(hf) == 0 {
		return nil
	}
	return hf
}

func firstParagraphText(zr *zip.Reader, name string) string {
	member := findMember(zr, name)
	if member == nil {
		return ""
	}
	rc, err := member.Open()
	if err != nil {
		return ""
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if err != nil {
			return ""
		}
		if el, ok := tok.(xml.StartElement); ok && el.Name.Local == "p" {
			text, _, err := parseParagraph(dec)
			if err != nil {
				return ""
			}
			return strings.TrimSpace(text)
		}
	}
}
