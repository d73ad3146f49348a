package report

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/planbureau/planproof/internal/docmodel"
)

// numberedStyleRe matches custom numbered style names like "0-1.1" or
// "1.2.3" whose dot count encodes the heading depth.
var numberedStyleRe = regexp.MustCompile(`^\d+(?:\.\d+)*$`)

// headingLevel infers a paragraph's outline level. The builder's style-based
// level wins; custom numbered styles are a fallback for documents that use
// house styles instead of the built-in headings.
func headingLevel(p docmodel.Paragraph) int {
	if p.Level > 0 {
		return p.Level
	}
	part := p.Style
	if i := strings.LastIndex(part, "-"); i >= 0 {
		part = part[i+1:]
	}
	if numberedStyleRe.MatchString(part) {
		return strings.Count(part, ".") + 1
	}
	return 0
}

// LocationMap describes each paragraph's place in the document
// ("「二、现状分析 · 2.1 用地现状」第3段") so report readers can find a
// finding without counting paragraphs.
func LocationMap(doc *docmodel.Document) map[int]string {
	locations := map[int]string{}
	headings := map[int]string{}
	bodyCount := 0

	for _, p := range doc.Paragraphs {
		level := headingLevel(p)
		if level > 0 {
			headings[level] = p.Text
			for l := range headings {
				if l > level {
					delete(headings, l)
				}
			}
			bodyCount = 0
			locations[p.Index] = fmt.Sprintf("「%s」（章节标题）", clip(p.Text, 30))
			continue
		}

		bodyCount++
		if len(headings) == 0 {
			locations[p.Index] = fmt.Sprintf("开篇第%d段", bodyCount)
			continue
		}
		deepest := 0
		for l := range headings {
			if l > deepest {
				deepest = l
			}
		}
		section := clip(headings[deepest], 20)
		if parent, ok := headings[deepest-1]; ok && deepest > 1 {
			locations[p.Index] = fmt.Sprintf("「%s · %s」第%d段", clip(parent, 15), section, bodyCount)
		} else {
			locations[p.Index] = fmt.Sprintf("「%s」第%d段", section, bodyCount)
		}
	}
	return locations
}

// Describe resolves an index against the map, with a plain fallback for
// indices outside it (e.g. table anchors of blank paragraphs).
func Describe(locations map[int]string, idx int) string {
	if loc, ok := locations[idx]; ok {
		return loc
	}
	return fmt.Sprintf("第%d段", idx)
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
