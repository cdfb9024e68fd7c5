package segment

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

const (
	markerOpen  = "[translate:"
	markerClose = "]"
)

// Devanagari is the Unicode block U+0900–U+097F. It is narrower than
// unicode.Devanagari, which also covers the extended blocks.
var Devanagari = &unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0x0900, Hi: 0x097F, Stride: 1}},
}

// Annotate wraps text as [translate:<text>] when it contains at least one
// rune from script and carries no marker yet. The text is inserted verbatim.
// The second result reports whether the text changed.
func Annotate(text string, script *unicode.RangeTable) (string, bool) {
	if text == "" || !hasScript(text, script) {
		return text, false
	}
	if IsAnnotated(text) {
		return text, false
	}
	return markerOpen + text + markerClose, true
}

// IsAnnotated reports whether text already carries an annotation marker.
func IsAnnotated(text string) bool {
	return strings.Contains(text, markerOpen)
}

// AnnotateTree runs Annotate over every text node below root in document
// order and writes the result back into the node. It returns the number of
// nodes that changed.
func AnnotateTree(root *html.Node, script *unicode.RangeTable) int {
	if root == nil {
		return 0
	}

	// Collect first so replacements never affect the traversal.
	var nodes []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			nodes = append(nodes, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	changed := 0
	for _, n := range nodes {
		if out, ok := Annotate(n.Data, script); ok {
			n.Data = out
			changed++
		}
	}
	return changed
}

func hasScript(text string, script *unicode.RangeTable) bool {
	if script == nil {
		script = Devanagari
	}
	for _, r := range text {
		if unicode.Is(script, r) {
			return true
		}
	}
	return false
}
