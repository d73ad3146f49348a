// Package docmodel defines the structured document model shared by every
// pipeline stage. A Document is built once from a source file and is treated
// as immutable afterwards: all downstream stages address its content only by
// paragraph or table index, never by holding structural copies.
package docmodel

// Paragraph is one body paragraph. Index is the paragraph's position among
// the body-level paragraphs of the source document. Blank paragraphs consume
// an index but are omitted from the model, so indices may have gaps; they are
// stable across rebuilds of the same source and are the sole addressing key
// for issues and annotations.
type Paragraph struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
	Style string `json:"style,omitempty"`
	Level int    `json:"level,omitempty"`
}

// Table is one table, flattened row-major. Rows are rectangular: ragged
// source rows are padded with empty strings. Table indices form their own
// zero-based space, separate from paragraph indices.
type Table struct {
	Index int        `json:"index"`
	Rows  [][]string `json:"rows"`
}

// Document is the uniform structured model produced by the builders.
//
// TableAnchors maps a table index to the index of the body paragraph
// immediately preceding that table (-1 when the table is the first body
// element). Annotations can only attach to paragraphs, so table-sourced
// findings are anchored through this map.
type Document struct {
	SourceFile   string            `json:"file"`
	Paragraphs   []Paragraph       `json:"paragraphs"`
	Tables       []Table           `json:"tables"`
	TableAnchors map[int]int       `json:"tableAnchors,omitempty"`
	HeaderFooter map[string]string `json:"headerFooter,omitempty"`
}

// HasParagraph reports whether idx addresses a paragraph present in the model.
func (d *Document) HasParagraph(idx int) bool {
	for _, p := range d.Paragraphs {
		if p.Index == idx {
			return true
		}
	}
	return false
}

// MaxParagraphIndex returns the highest paragraph index, or -1 for an empty
// document.
func (d *Document) MaxParagraphIndex() int {
	max := -1
	for _, p := range d.Paragraphs {
		if p.Index > max {
			max = p.Index
		}
	}
	return max
}

// AnchorForTable returns the paragraph index a table-sourced finding should
// attach to, or -1 when no anchor is known.
func (d *Document) AnchorForTable(tableIndex int) int {
	if d.TableAnchors == nil {
		return -1
	}
	if a, ok := d.TableAnchors[tableIndex]; ok {
		return a
	}
	return -1
}
