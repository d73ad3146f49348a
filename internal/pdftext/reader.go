// Package pdftext builds a docmodel.Document from a page-oriented PDF. The
// format exposes no table or header/footer structure, so the resulting model
// carries paragraphs only; that degradation is part of the builder contract,
// not an error.
package pdftext

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tsawler/tabula"
	"github.com/tsawler/tabula/reader"

	"github.com/planbureau/planproof/internal/docmodel"
)

// Read extracts the page text of the PDF at path. Each page's text is split
// into paragraphs on blank lines; paragraph indices run continuously across
// pages so the whole document shares one address space. Rebuilding the same
// file always yields the same indices because extraction order follows page
// and line order.
func Read(path string) (*docmodel.Document, error) {
	r, err := reader.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", docmodel.ErrCorruptInput, path, err)
	}
	defer r.Close()

	pageCount, err := tabula.FromReader(r).PageCount()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", docmodel.ErrCorruptInput, path, err)
	}

	doc := &docmodel.Document{SourceFile: path}
	index := 0
	for page := 1; page <= pageCount; page++ {
		text, warnings, err := tabula.FromReader(r).Pages(page).Text()
		if err != nil {
			return nil, fmt.Errorf("%w: %s page %d: %v", docmodel.ErrCorruptInput, path, page, err)
		}
		if len(warnings) > 0 {
			log.Debug().Str("file", path).Int("page", page).Int("warnings", len(warnings)).Msg("pdf extraction warnings")
		}
		for _, para := range splitParagraphs(text) {
			doc.Paragraphs = append(doc.Paragraphs, docmodel.Paragraph{Index: index, Text: para})
			index++
		}
	}
	return doc, nil
}

// splitParagraphs breaks page text into paragraph strings on blank lines,
// collapsing intra-paragraph line breaks into spaces for Latin text and
// joining directly for CJK-heavy lines, where a hard wrap carries no space.
func splitParagraphs(text string) []string {
	var out []string
	for _, block := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		lines := strings.Split(block, "\n")
		var kept []string
		for _, ln := range lines {
			if s := strings.TrimSpace(ln); s != "" {
				kept = append(kept, s)
			}
		}
		if len(kept) == 0 {
			continue
		}
		out = append(out, joinWrappedLines(kept))
	}
	return out
}

func joinWrappedLines(lines []string) string {
	var b strings.Builder
	for i, ln := range lines {
		if i > 0 && needsSpace(lines[i-1], ln) {
			b.WriteByte(' ')
		}
		b.WriteString(ln)
	}
	return b.String()
}

// needsSpace reports whether a wrapped line break should become a space.
// Between two CJK runes the break is purely visual.
func needsSpace(prev, next string) bool {
	pr := []rune(prev)
	nr := []rune(next)
	if len(pr) == 0 || len(nr) == 0 {
		return false
	}
	return !isCJK(pr[len(pr)-1]) || !isCJK(nr[0])
}

func isCJK(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) ||
		(r >= 0x3000 && r <= 0x303F) ||
		(r >= 0xFF00 && r <= 0xFFEF)
}
