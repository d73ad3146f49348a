// Package annotate replays curated annotation requests onto a Word document
// as positioned review comments. The source file is never modified: the
// annotated copy is always written as a new .docx, identical in content and
// differing only in comment metadata.
package annotate

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/planbureau/planproof/internal/docmodel"
	"github.com/planbureau/planproof/internal/issue"
)

// ErrIndexNotFound means an annotation request targets a paragraph index
// that does not exist in the document, typically because the source was
// edited after the model was built. The whole annotation run is aborted and
// no output is written, so a stale request can never place comments on the
// wrong paragraphs.
var ErrIndexNotFound = errors.New("annotate: paragraph index not found")

const commentAuthor = "校对系统"

var severityPrefix = map[issue.Severity]string{
	issue.SeverityError:      "[错误]",
	issue.SeverityWarning:    "[警告]",
	issue.SeveritySuggestion: "[建议]",
}

const (
	commentsContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.comments+xml"
	commentsRelType     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/comments"
)

// Apply writes a copy of the .docx at inputPath to outputPath with one
// review comment attached per request. All requested indices are validated
// against the document before anything is written; any unknown index fails
// the whole run with ErrIndexNotFound naming that index.
func Apply(inputPath string, requests []issue.AnnotationRequest, outputPath string) error {
	zr, err := zip.OpenReader(inputPath)
	if err != nil {
		return fmt.Errorf("%w: %s is not a zip container", docmodel.ErrFormat, inputPath)
	}
	defer zr.Close()

	parts, err := readParts(&zr.Reader)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", docmodel.ErrCorruptInput, inputPath, err)
	}
	docXML, ok := parts["word/document.xml"]
	if !ok {
		return fmt.Errorf("%w: %s has no word/document.xml", docmodel.ErrFormat, inputPath)
	}

	spans, err := scanBodyParagraphs(docXML)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", docmodel.ErrCorruptInput, inputPath, err)
	}

	// Validate every index up front. A partial annotated copy would be
	// worse than none.
	for _, req := range requests {
		if req.SourceIndex < 0 || req.SourceIndex >= len(spans) {
			return fmt.Errorf("%w: index %d (document has paragraphs 0–%d)",
				ErrIndexNotFound, req.SourceIndex, len(spans)-1)
		}
	}

	commentsXML, firstID := existingComments(parts)
	now := time.Now().UTC().Format("2006-01-02T15:04:05Z")

	var edits []splice
	var commentDefs strings.Builder
	nextID := firstID
	for _, req := range requests {
		span := spans[req.SourceIndex]
		id := strconv.Itoa(nextID)
		nextID++

		prefix, ok := severityPrefix[req.Severity]
		if !ok {
			prefix = "[备注]"
		}
		text := escapeXML(prefix + " " + strings.TrimSpace(req.Comment))
		fmt.Fprintf(&commentDefs,
			`<w:comment w:id="%s" w:author="%s" w:date="%s" w:initials="PF"><w:p><w:r><w:t xml:space="preserve">%s</w:t></w:r></w:p></w:comment>`,
			id, commentAuthor, now, text)

		rangeStart := fmt.Sprintf(`<w:commentRangeStart w:id="%s"/>`, id)
		rangeEnd := fmt.Sprintf(
			`<w:commentRangeEnd w:id="%s"/><w:r><w:rPr><w:rStyle w:val="CommentReference"/></w:rPr><w:commentReference w:id="%s"/></w:r>`,
			id, id)

		if span.selfClosing {
			// Expand <w:p …/> so the comment range has somewhere to live.
			tag := docXML[span.tagStart:span.contentStart]
			opened := strings.TrimSuffix(tag, "/>") + ">"
			edits = append(edits, splice{
				pos:  span.tagStart,
				del:  span.contentStart - span.tagStart,
				text: opened + rangeStart + rangeEnd + "</w:p>",
			})
			continue
		}
		edits = append(edits, splice{pos: span.contentStart, text: rangeStart})
		edits = append(edits, splice{pos: span.contentEnd, text: rangeEnd})
	}
	sort.SliceStable(edits, func(a, b int) bool { return edits[a].pos < edits[b].pos })

	parts["word/document.xml"] = applySplices(docXML, edits)
	parts["word/comments.xml"] = strings.Replace(commentsXML, "</w:comments>", commentDefs.String()+"</w:comments>", 1)
	parts["word/_rels/document.xml.rels"] = ensureCommentsRel(parts["word/_rels/document.xml.rels"])
	parts["[Content_Types].xml"] = ensureCommentsContentType(parts["[Content_Types].xml"])

	if err := writeDocx(outputPath, &zr.Reader, parts); err != nil {
		return err
	}
	log.Info().Int("comments", len(requests)).Str("output", outputPath).Msg("annotated copy written")
	return nil
}

func readParts(zr *zip.Reader) (map[string]string, error) {
	parts := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		parts[f.Name] = string(data)
	}
	return parts, nil
}

var commentIDRe = regexp.MustCompile(`w:id="(\d+)"`)

// existingComments returns the comments part to extend (creating an empty
// one when absent) and the next free comment id.
func existingComments(parts map[string]string) (string, int) {
	existing, ok := parts["word/comments.xml"]
	if !ok {
		return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<w:comments xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"></w:comments>`, 0
	}
	next := 0
	for _, m := range commentIDRe.FindAllStringSubmatch(existing, -1) {
		if id, err := strconv.Atoi(m[1]); err == nil && id >= next {
			next = id + 1
		}
	}
	return existing, next
}

func ensureCommentsRel(rels string) string {
	if strings.Contains(rels, commentsRelType) {
		return rels
	}
	rel := `<Relationship Id="rIdComments" Type="` + commentsRelType + `" Target="comments.xml"/>`
	if rels == "" {
		return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			rel + `</Relationships>`
	}
	return strings.Replace(rels, "</Relationships>", rel+"</Relationships>", 1)
}

func ensureCommentsContentType(ct string) string {
	if ct == "" || strings.Contains(ct, "/word/comments.xml") {
		return ct
	}
	override := `<Override PartName="/word/comments.xml" ContentType="` + commentsContentType + `"/>`
	return strings.Replace(ct, "</Types>", override+"</Types>", 1)
}

// writeDocx repacks the parts into a new zip, keeping the original member
// order and appending any newly created parts.
func writeDocx(outputPath string, original *zip.Reader, parts map[string]string) error {
	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	zw := zip.NewWriter(out)

	written := map[string]bool{}
	for _, f := range original.File {
		w, err := zw.Create(f.Name)
		if err != nil {
			out.Close()
			return err
		}
		if _, err := io.WriteString(w, parts[f.Name]); err != nil {
			out.Close()
			return err
		}
		written[f.Name] = true
	}

	var added []string
	for name := range parts {
		if !written[name] {
			added = append(added, name)
		}
	}
	sort.Strings(added)
	for _, name := range added {
		w, err := zw.Create(name)
		if err != nil {
			out.Close()
			return err
		}
		if _, err := io.WriteString(w, parts[name]); err != nil {
			out.Close()
			return err
		}
	}

	if err := zw.Close(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
