// Package indicator extracts numeric planning indicators (areas, plot
// ratios, years, population counts, percentages) from the document model.
// Extraction is pattern-based and deliberately keeps duplicates: repeated
// statements of the same real-world quantity are exactly what the
// cross-validator needs as input.
package indicator

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/width"

	"github.com/planbureau/planproof/internal/docmodel"
)

// Unit is the unit class of an extracted indicator.
type Unit string

const (
	UnitArea       Unit = "area"
	UnitRatio      Unit = "ratio"
	UnitYear       Unit = "year"
	UnitPopulation Unit = "population"
	UnitPercentage Unit = "percentage"
	UnitUnknown    Unit = "unknown"
)

// precedence resolves numbers matching more than one unit-class pattern.
// This is a fixed, documented tie-break, not a best guess.
var precedence = []Unit{UnitArea, UnitRatio, UnitPopulation, UnitYear, UnitPercentage}

// Indicator is one extracted numeric fact. Raw is the verbatim numeric
// token, Matched the full matched span, Context a fixed-width window of
// surrounding text. SourceIndex addresses the paragraph the fact came from;
// for table cells it is the table's anchor paragraph and TableIndex names
// the table itself.
type Indicator struct {
	Value       float64 `json:"value"`
	Raw         string  `json:"raw"`
	Unit        Unit    `json:"unit"`
	Matched     string  `json:"matched"`
	Context     string  `json:"context"`
	SourceIndex int     `json:"sourceIndex"`
	FromTable   bool    `json:"fromTable,omitempty"`
	TableIndex  int     `json:"tableIndex,omitempty"`
}

// contextWindow is the number of runes kept on each side of a match.
const contextWindow = 30

type pattern struct {
	unit Unit
	re   *regexp.Regexp
}

var patterns = []pattern{
	{UnitArea, regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:平方公里|km²|km2)`)},
	{UnitArea, regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:公顷|hm²|ha)`)},
	{UnitArea, regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:平方米|m²|m2)`)},
	{UnitArea, regexp.MustCompile(`(\d+(?:\.\d+)?)\s*亩`)},
	{UnitRatio, regexp.MustCompile(`(?:容积率|建筑密度|绿地率)[为是：:]\s*(\d+(?:\.\d+)?)\s*%?`)},
	{UnitRatio, regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%[^%\n]*?(?:绿地率|建筑密度|容积率)`)},
	{UnitPopulation, regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:万人|万户|万)`)},
	{UnitPopulation, regexp.MustCompile(`人口[为是约：:]\s*(\d+(?:\.\d+)?)\s*万`)},
	{UnitYear, regexp.MustCompile(`((?:19|20)\d{2})\s*年`)},
	{UnitPercentage, regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)},
}

// Extract scans the whole document model and returns indicators in document
// order: all paragraphs first, then all tables, each in index order. Text is
// width-folded before matching so fullwidth digits and percent signs are
// recognized. An empty result is a normal outcome, not an error.
func Extract(doc *docmodel.Document) []Indicator {
	var out []Indicator
	for _, p := range doc.Paragraphs {
		out = append(out, FromText(p.Text, p.Index)...)
	}
	for _, t := range doc.Tables {
		anchor := doc.AnchorForTable(t.Index)
		for _, row := range t.Rows {
			for _, cell := range row {
				for _, ind := range FromText(cell, anchor) {
					ind.FromTable = true
					ind.TableIndex = t.Index
					out = append(out, ind)
				}
			}
		}
	}
	return out
}

type span struct {
	start, end int
	unit       Unit
	matched    string
	raw        string
}

// FromText extracts indicators from a single text block, attributing them to
// sourceIndex. Overlapping matches from different unit classes are resolved
// by the fixed precedence order area > ratio > population > year >
// percentage; within a class, longer then leftmost matches win.
func FromText(text string, sourceIndex int) []Indicator {
	folded := width.Fold.String(text)

	byUnit := map[Unit][]span{}
	for _, p := range patterns {
		for _, m := range p.re.FindAllStringSubmatchIndex(folded, -1) {
			s := span{start: m[0], end: m[1], unit: p.unit, matched: folded[m[0]:m[1]]}
			if m[2] >= 0 {
				s.raw = folded[m[2]:m[3]]
			} else {
				s.raw = s.matched
			}
			byUnit[p.unit] = append(byUnit[p.unit], s)
		}
	}

	var claimed []span
	for _, unit := range precedence {
		candidates := byUnit[unit]
		sort.Slice(candidates, func(a, b int) bool {
			la, lb := candidates[a].end-candidates[a].start, candidates[b].end-candidates[b].start
			if la != lb {
				return la > lb
			}
			return candidates[a].start < candidates[b].start
		})
		for _, c := range candidates {
			if overlapsAny(c, claimed) {
				continue
			}
			claimed = append(claimed, c)
		}
	}
	sort.Slice(claimed, func(a, b int) bool { return claimed[a].start < claimed[b].start })

	out := make([]Indicator, 0, len(claimed))
	for _, c := range claimed {
		val, err := strconv.ParseFloat(c.raw, 64)
		if err != nil {
			continue
		}
		out = append(out, Indicator{
			Value:       val,
			Raw:         c.raw,
			Unit:        c.unit,
			Matched:     strings.TrimSpace(c.matched),
			Context:     contextAround(folded, c.start, c.end),
			SourceIndex: sourceIndex,
		})
	}
	return out
}

func overlapsAny(c span, claimed []span) bool {
	for _, o := range claimed {
		if c.start < o.end && o.start < c.end {
			return true
		}
	}
	return false
}

// contextAround returns a window of contextWindow runes on each side of the
// byte span [start,end), clipped to the enclosing line.
func contextAround(text string, start, end int) string {
	lineStart := strings.LastIndexByte(text[:start], '\n') + 1
	lineEnd := len(text)
	if i := strings.IndexByte(text[end:], '\n'); i >= 0 {
		lineEnd = end + i
	}

	before := []rune(text[lineStart:start])
	if len(before) > contextWindow {
		before = before[len(before)-contextWindow:]
	}
	after := []rune(text[end:lineEnd])
	if len(after) > contextWindow {
		after = after[:contextWindow]
	}
	return strings.TrimSpace(string(before) + text[start:end] + string(after))
}
