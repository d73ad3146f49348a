// Package format sniffs the container format of an input document so the
// right builder can be dispatched without trusting file extensions alone.
package format

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
)

// Format represents a supported input format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// DOCX indicates a Word (.docx) OOXML container.
	DOCX
	// PDF indicates a PDF document.
	PDF
	// HTML indicates an HTML document.
	HTML
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case DOCX:
		return "DOCX"
	case PDF:
		return "PDF"
	case HTML:
		return "HTML"
	default:
		return "Unknown"
	}
}

// Detect sniffs the format of the file at path. Content wins over extension:
// a zip container holding word/document.xml is DOCX regardless of its name,
// a %PDF- header is PDF, and a leading <!doctype/<html tag is HTML. The
// extension is only consulted as a tie-break for HTML, whose header may be
// preceded by arbitrary whitespace or comments.
func Detect(path string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return Unknown, err
	}
	defer f.Close()

	head := make([]byte, 1024)
	n, _ := f.Read(head)
	head = head[:n]

	switch {
	case bytes.HasPrefix(head, []byte("PK\x03\x04")):
		if isDocxArchive(path) {
			return DOCX, nil
		}
		return Unknown, nil
	case bytes.HasPrefix(head, []byte("%PDF-")):
		return PDF, nil
	}

	trimmed := strings.ToLower(strings.TrimSpace(string(head)))
	if strings.HasPrefix(trimmed, "<!doctype") || strings.HasPrefix(trimmed, "<html") {
		return HTML, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return HTML, nil
	}
	return Unknown, nil
}

// isDocxArchive reports whether the zip at path contains the main OOXML
// document part.
func isDocxArchive(path string) bool {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return false
	}
	defer zr.Close()
	for _, member := range zr.File {
		if member.Name == "word/document.xml" {
			return true
		}
	}
	return false
}
