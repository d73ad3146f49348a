package annotate

import (
	"fmt"
	"strings"
)

// paraSpan locates one body-level w:p element inside document.xml.
// contentStart is the byte offset just after the opening tag's '>',
// contentEnd the offset of the matching "</w:p>". Self-closing paragraphs
// (<w:p/>) have no content span and must be expanded before insertion.
type paraSpan struct {
	tagStart     int
	contentStart int
	contentEnd   int
	selfClosing  bool
}

// scanBodyParagraphs walks the raw XML of the main document part and returns
// the spans of the direct body-level w:p elements, in order. Paragraphs
// inside tables (w:tbl) or inside other paragraphs (text-box content) do not
// count: the numbering must match what the model builder produced from the
// same bytes, or comments would land on the wrong paragraphs.
func scanBodyParagraphs(xml string) ([]paraSpan, error) {
	var spans []paraSpan
	inBody := false
	tblDepth := 0
	pDepth := 0
	current := paraSpan{tagStart: -1}

	for i := 0; i < len(xml); {
		lt := strings.IndexByte(xml[i:], '<')
		if lt < 0 {
			break
		}
		tagStart := i + lt
		gt := strings.IndexByte(xml[tagStart:], '>')
		if gt < 0 {
			return nil, fmt.Errorf("unterminated tag at offset %d", tagStart)
		}
		tagEnd := tagStart + gt + 1
		tag := xml[tagStart:tagEnd]
		i = tagEnd

		name, closing, selfClosing := parseTag(tag)
		switch name {
		case "w:body":
			if closing {
				inBody = false
			} else {
				inBody = true
			}
		case "w:tbl":
			if !inBody {
				continue
			}
			if closing {
				tblDepth--
			} else if !selfClosing {
				tblDepth++
			}
		case "w:p":
			if !inBody || tblDepth > 0 {
				continue
			}
			switch {
			case selfClosing && pDepth == 0:
				spans = append(spans, paraSpan{tagStart: tagStart, contentStart: tagEnd, contentEnd: tagEnd, selfClosing: true})
			case !closing:
				if pDepth == 0 {
					current = paraSpan{tagStart: tagStart, contentStart: tagEnd}
				}
				pDepth++
			case closing:
				pDepth--
				if pDepth == 0 {
					current.contentEnd = tagStart
					spans = append(spans, current)
				}
			}
		}
	}
	if pDepth != 0 || tblDepth != 0 {
		return nil, fmt.Errorf("unbalanced paragraph or table elements")
	}
	return spans, nil
}

func parseTag(tag string) (name string, closing, selfClosing bool) {
	inner := strings.TrimPrefix(strings.TrimSuffix(tag, ">"), "<")
	if strings.HasPrefix(inner, "?") || strings.HasPrefix(inner, "!") {
		return "", false, false
	}
	if strings.HasPrefix(inner, "/") {
		closing = true
		inner = inner[1:]
	}
	if strings.HasSuffix(inner, "/") {
		selfClosing = true
		inner = strings.TrimSuffix(inner, "/")
	}
	if sp := strings.IndexAny(inner, " \t\r\n"); sp >= 0 {
		inner = inner[:sp]
	}
	return inner, closing, selfClosing
}

// splice is one pending edit: delete del bytes at pos, then insert text.
// Pure insertions have del == 0. Splices at equal offsets keep their
// relative order.
type splice struct {
	pos  int
	del  int
	text string
}

// applySplices rewrites s in one pass. The splice list must be sorted by pos
// (stable) and edits must not overlap.
func applySplices(s string, edits []splice) string {
	var b strings.Builder
	b.Grow(len(s) + totalLen(edits))
	last := 0
	for _, e := range edits {
		b.WriteString(s[last:e.pos])
		b.WriteString(e.text)
		last = e.pos + e.del
	}
	b.WriteString(s[last:])
	return b.String()
}

func totalLen(edits []splice) int {
	n := 0
	for _, e := range edits {
		n += len(e.text)
	}
	return n
}

// escapeXML escapes comment text for embedding in an XML text node.
func escapeXML(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
	)
	return r.Replace(s)
}
