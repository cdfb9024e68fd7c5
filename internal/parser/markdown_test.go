package parser

import (
	"strings"
	"testing"
)

func TestMarkdownParser_HeadingsMarked(t *testing.T) {
	input := `# The Book

Intro text.

## Chapter One

Chapter one content.

### A Scene

Scene content.
`
	p := &MarkdownParser{}
	src, err := p.Parse(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if src.Title != "The Book" {
		t.Errorf("expected title %q, got %q", "The Book", src.Title)
	}
	for _, want := range []string{
		`<h1 class="section-title">The Book</h1>`,
		`<h2 class="section-title">Chapter One</h2>`,
		`<h3 class="section-title">A Scene</h3>`,
		`<p>Intro text.</p>`,
		`<p>Scene content.</p>`,
	} {
		if !strings.Contains(src.Markup, want) {
			t.Errorf("expected markup to contain %q, got %q", want, src.Markup)
		}
	}
}

func TestMarkdownParser_NoHeadings(t *testing.T) {
	input := `Just some plain text.

Another paragraph here.`

	p := &MarkdownParser{}
	src, err := p.Parse(strings.NewReader(input), "plain.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(src.Markup, "section-title") {
		t.Errorf("expected no title markers, got %q", src.Markup)
	}
	if strings.Count(src.Markup, "<p>") != 2 {
		t.Errorf("expected 2 paragraphs, got %q", src.Markup)
	}
}

func TestMarkdownParser_EmptyInput(t *testing.T) {
	p := &MarkdownParser{}
	src, err := p.Parse(strings.NewReader(""), "empty.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(src.Markup) != "" {
		t.Errorf("expected empty markup, got %q", src.Markup)
	}
}

func TestMarkdownParser_TitleStripping(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"readme.md", "readme"},
		{"notes.markdown", "notes"},
		{"plain.md", "plain"},
	}
	p := &MarkdownParser{}
	for _, tt := range tests {
		src, err := p.Parse(strings.NewReader("text"), tt.filename)
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", tt.filename, err)
		}
		if src.Title != tt.want {
			t.Errorf("filename=%q: expected title %q, got %q", tt.filename, tt.want, src.Title)
		}
	}
}
