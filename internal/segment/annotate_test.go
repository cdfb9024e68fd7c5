package segment

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func TestAnnotate_Devanagari(t *testing.T) {
	got, changed := Annotate("नमस्ते", Devanagari)
	if !changed {
		t.Fatal("expected text to be annotated")
	}
	if got != "[translate:नमस्ते]" {
		t.Errorf("expected %q, got %q", "[translate:नमस्ते]", got)
	}
}

func TestAnnotate_NoQualifyingRunes(t *testing.T) {
	inputs := []string{"Hello", "", "   ", "12 Chapter", "Ünïcödé", "[translate:abc]", "日本語"}
	for _, in := range inputs {
		got, changed := Annotate(in, Devanagari)
		if changed {
			t.Errorf("input %q: expected no change", in)
		}
		if got != in {
			t.Errorf("input %q: expected byte-identical output, got %q", in, got)
		}
	}
}

func TestAnnotate_Idempotent(t *testing.T) {
	inputs := []string{"नमस्ते", "  मराठी text  ", "Hello", "११ प्रभो राजसी"}
	for _, in := range inputs {
		once, _ := Annotate(in, Devanagari)
		twice, changed := Annotate(once, Devanagari)
		if changed {
			t.Errorf("input %q: second pass reported a change", in)
		}
		if once != twice {
			t.Errorf("input %q: expected %q after second pass, got %q", in, once, twice)
		}
	}
}

func TestAnnotate_PreservesWhitespaceVerbatim(t *testing.T) {
	got, _ := Annotate("  नमस्ते\n", Devanagari)
	if got != "[translate:  नमस्ते\n]" {
		t.Errorf("expected whitespace kept inside marker, got %q", got)
	}
}

func TestAnnotate_MixedScriptWrapsWholeText(t *testing.T) {
	got, _ := Annotate("Chapter अध्याय one", Devanagari)
	if got != "[translate:Chapter अध्याय one]" {
		t.Errorf("expected full text wrapped, got %q", got)
	}
}

func TestAnnotate_NilScriptUsesDevanagari(t *testing.T) {
	_, changed := Annotate("नमस्ते", nil)
	if !changed {
		t.Error("expected nil script to fall back to Devanagari")
	}
}

func TestAnnotateTree(t *testing.T) {
	root, err := parseFragment(`<p>Hello <b>नमस्ते</b> world</p><p>[translate:पहले]</p>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n := AnnotateTree(root, Devanagari); n != 1 {
		t.Errorf("expected 1 changed node, got %d", n)
	}
	if n := AnnotateTree(root, Devanagari); n != 0 {
		t.Errorf("expected second pass to change nothing, got %d", n)
	}

	var buf strings.Builder
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			t.Fatalf("render: %v", err)
		}
	}
	want := `<p>Hello <b>[translate:नमस्ते]</b> world</p><p>[translate:पहले]</p>`
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestAnnotateTree_Nil(t *testing.T) {
	if n := AnnotateTree(nil, Devanagari); n != 0 {
		t.Errorf("expected 0 for nil root, got %d", n)
	}
}
