package report

import (
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// WritePDF renders the Markdown report as a simple line-oriented PDF. The
// report is predominantly CJK text, which the PDF core fonts cannot encode,
// so a UTF-8 TTF font file must be supplied; callers should skip the PDF
// artifact (with a warning) when no font is configured rather than emit
// mojibake.
func WritePDF(markdown, fontPath, outPath string) error {
	if strings.TrimSpace(fontPath) == "" {
		return fmt.Errorf("pdf: no UTF-8 font configured")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddUTF8Font("report", "", fontPath)
	pdf.SetFont("report", "", 11)
	pdf.AddPage()

	for _, line := range strings.Split(markdown, "\n") {
		s := strings.TrimSpace(line)
		if s == "" {
			pdf.Ln(4)
			continue
		}
		if s == "---" {
			pdf.Ln(2)
			continue
		}
		if strings.HasPrefix(s, "#") {
			i := 0
			for i < len(s) && s[i] == '#' {
				i++
			}
			text := strings.TrimSpace(s[i:])
			if text == "" {
				continue
			}
			size := 15.0
			if i >= 2 {
				size = 12.5
			}
			pdf.SetFont("report", "", size)
			pdf.MultiCell(0, 7, text, "", "L", false)
			pdf.SetFont("report", "", 11)
			continue
		}
		// Strip table pipes into readable rows; full table layout is not
		// worth the complexity for a review artifact.
		if strings.HasPrefix(s, "|") {
			cells := strings.Split(strings.Trim(s, "|"), "|")
			if isTableRule(cells) {
				continue
			}
			for i := range cells {
				cells[i] = strings.TrimSpace(cells[i])
			}
			s = strings.Join(cells, "　")
		}
		s = strings.ReplaceAll(s, "**", "")
		s = strings.ReplaceAll(s, "`", "")
		pdf.MultiCell(0, 5.5, s, "", "L", false)
	}

	if pdf.Err() {
		return fmt.Errorf("pdf: %v", pdf.Error())
	}
	return pdf.OutputFileAndClose(outPath)
}

func isTableRule(cells []string) bool {
	for _, c := range cells {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if strings.Trim(c, "-:") != "" {
			return false
		}
	}
	return true
}
