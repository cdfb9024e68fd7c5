package segment

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Block is a snapshot of one block-level element with non-empty text.
type Block struct {
	Tag     string   `json:"tag"`
	Classes []string `json:"classes,omitempty"`
	Text    string   `json:"text"`   // Rendered text, trimmed, annotation markers included
	Source  string   `json:"source"` // Text before annotation, trimmed and NFC-normalized
	Markup  string   `json:"markup"` // Inner HTML, verbatim

	sel *goquery.Selection // detached deep clone, nil for synthetic blocks
}

// Chapter is one title block followed by its body blocks in source order.
type Chapter struct {
	Title      string  `json:"title"`
	TitleBlock Block   `json:"title_block"`
	Body       []Block `json:"body"`
}

// ChapterList holds chapters in the order their titles were detected.
type ChapterList []Chapter

// NewBlock builds a block that has no backing markup tree. Descendant rules
// never match such a block.
func NewBlock(tag string, classes []string, text string) Block {
	t := strings.TrimSpace(text)
	return Block{
		Tag:     tag,
		Classes: classes,
		Text:    t,
		Source:  t,
		Markup:  t,
	}
}

// blockFrom snapshots a single-node selection. source is the element's text
// as it was before the annotation pass.
func blockFrom(sel *goquery.Selection, source string) Block {
	clone := sel.Clone()
	markup, _ := clone.Html()
	return Block{
		Tag:     goquery.NodeName(clone),
		Classes: strings.Fields(clone.AttrOr("class", "")),
		Text:    strings.TrimSpace(clone.Text()),
		Source:  source,
		Markup:  markup,
		sel:     clone,
	}
}

// HasClass reports whether token is one of the block's class tokens.
func (b Block) HasClass(token string) bool {
	for _, c := range b.Classes {
		if c == token {
			return true
		}
	}
	return false
}

// ClassAttr is the block's class attribute with tokens separated by single
// spaces.
func (b Block) ClassAttr() string {
	return strings.Join(b.Classes, " ")
}

// Contains reports whether any descendant element of the block matches m.
func (b Block) Contains(m goquery.Matcher) bool {
	if b.sel == nil || m == nil {
		return false
	}
	return b.sel.FindMatcher(m).Length() > 0
}

// plain is the text the classifier looks at.
func (b Block) plain() string {
	if b.Source != "" {
		return b.Source
	}
	return strings.TrimSpace(b.Text)
}

// Blocks flattens the list back into source order: each title followed by
// its body.
func (cl ChapterList) Blocks() []Block {
	var out []Block
	for _, ch := range cl {
		out = append(out, ch.TitleBlock)
		out = append(out, ch.Body...)
	}
	return out
}

// Titles returns the chapter titles in order.
func (cl ChapterList) Titles() []string {
	titles := make([]string, len(cl))
	for i, ch := range cl {
		titles[i] = ch.Title
	}
	return titles
}
