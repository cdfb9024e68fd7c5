package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/bookseg/internal/book"
	"golang.org/x/net/html"
)

// Parser converts raw document bytes into HTML markup for segmentation.
type Parser interface {
	Parse(r io.Reader, filename string) (*book.Source, error)
}

// TitleClass is put on headings recovered from structured formats so the
// default classifier treats them as chapter titles.
const TitleClass = "section-title"

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".xhtml":    true,
	".pdf":      true,
	".docx":     true,
	".epub":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm", ".xhtml":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	case ".epub":
		return &EPUBParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// Options carries parser settings that come from configuration.
type Options struct {
	PDFFallbackPdftotext bool
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

func trimExt(filename string) string {
	return strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
}

// paragraphsHTML renders each paragraph as an escaped <p>.
func paragraphsHTML(paragraphs []string) string {
	var buf strings.Builder
	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		buf.WriteString("<p>")
		buf.WriteString(html.EscapeString(p))
		buf.WriteString("</p>\n")
	}
	return buf.String()
}

// splitParagraphs splits on blank lines.
func splitParagraphs(text string) []string {
	var out []string
	var current strings.Builder
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				out = append(out, current.String())
				current.Reset()
			}
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(strings.TrimRight(line, "\r"))
	}
	if current.Len() > 0 {
		out = append(out, current.String())
	}
	return out
}
