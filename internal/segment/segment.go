// Package segment splits a digitized book's HTML into chapters.
//
// A run parses the input as a body fragment, annotates text in the
// qualifying script, picks out block-level elements and folds them into a
// ChapterList using an ordered set of title heuristics.
package segment

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"
)

// ErrEmptyInput is returned when the input holds nothing but whitespace.
var ErrEmptyInput = errors.New("input is empty")

// DefaultBlockSelector selects the elements treated as blocks.
const DefaultBlockSelector = "p, h1, h2, h3, div"

// Options configures a Segmenter. Zero values fall back to the defaults.
type Options struct {
	BlockSelector  string
	TitleClasses   []string
	TitleSelector  string
	Script         *unicode.RangeTable
	SkipAnnotation bool
	ClassTokens    bool // match TitleClasses as whole tokens, not substrings
}

// DefaultOptions returns the stock configuration.
func DefaultOptions() Options {
	return Options{
		BlockSelector: DefaultBlockSelector,
		TitleClasses:  append([]string(nil), DefaultTitleClasses...),
		TitleSelector: DefaultTitleSelector,
		Script:        Devanagari,
	}
}

// Result is the outcome of one segmentation run.
type Result struct {
	Chapters  ChapterList `json:"chapters"`
	Blocks    int         `json:"blocks"`    // non-empty blocks found
	Discarded int         `json:"discarded"` // blocks before the first title
	Annotated int         `json:"annotated"` // text nodes wrapped
}

// Segmenter holds compiled selectors and the title classifier. It keeps no
// state between runs and is safe for concurrent use.
type Segmenter struct {
	blocks     cascadia.Selector
	script     *unicode.RangeTable
	annotate   bool
	classifier *Classifier
}

// New compiles opts into a Segmenter using the default title rules.
func New(opts Options) (*Segmenter, error) {
	def := DefaultOptions()
	if opts.BlockSelector == "" {
		opts.BlockSelector = def.BlockSelector
	}
	if len(opts.TitleClasses) == 0 {
		opts.TitleClasses = def.TitleClasses
	}
	if opts.TitleSelector == "" {
		opts.TitleSelector = def.TitleSelector
	}
	if opts.Script == nil {
		opts.Script = def.Script
	}

	blocks, err := cascadia.Compile(opts.BlockSelector)
	if err != nil {
		return nil, fmt.Errorf("compile block selector %q: %w", opts.BlockSelector, err)
	}
	spans, err := cascadia.Compile(opts.TitleSelector)
	if err != nil {
		return nil, fmt.Errorf("compile title selector %q: %w", opts.TitleSelector, err)
	}

	classes := ClassMarkerRule(opts.TitleClasses...)
	if opts.ClassTokens {
		classes = ClassTokenRule(opts.TitleClasses...)
	}

	return &Segmenter{
		blocks:   blocks,
		script:   opts.Script,
		annotate: !opts.SkipAnnotation,
		classifier: NewClassifier(
			classes,
			LeadingDigitsRule(),
			DescendantRule(spans),
		),
	}, nil
}

// WithClassifier returns a copy of s that uses c for title detection.
func (s *Segmenter) WithClassifier(c *Classifier) *Segmenter {
	cp := *s
	cp.classifier = c
	return &cp
}

// Classifier returns the title classifier in use.
func (s *Segmenter) Classifier() *Classifier {
	return s.classifier
}

// Segment runs one full pass over raw. Input without a leading '<' is
// wrapped in a single <div> before parsing. Finding no titles is not an
// error: the result simply has no chapters.
func (s *Segmenter) Segment(raw string) (*Result, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, ErrEmptyInput
	}
	src := raw
	if !strings.HasPrefix(trimmed, "<") {
		src = "<div>" + raw + "</div>"
	}

	root, err := parseFragment(src)
	if err != nil {
		return nil, err
	}

	// Source text is captured before annotation so the heuristics see what
	// the author wrote.
	var found []*goquery.Selection
	var sources []string
	goquery.NewDocumentFromNode(root).FindMatcher(s.blocks).Each(func(_ int, sel *goquery.Selection) {
		t := strings.TrimSpace(sel.Text())
		if t == "" {
			return
		}
		found = append(found, sel)
		sources = append(sources, norm.NFC.String(t))
	})

	annotated := 0
	if s.annotate {
		annotated = AnnotateTree(root, s.script)
	}

	blocks := make([]Block, 0, len(found))
	for i, sel := range found {
		blocks = append(blocks, blockFrom(sel, sources[i]))
	}

	chapters, discarded := Extract(blocks, s.classifier)
	return &Result{
		Chapters:  chapters,
		Blocks:    len(blocks),
		Discarded: discarded,
		Annotated: annotated,
	}, nil
}

// parseFragment parses src in a <body> context and hangs the resulting
// nodes under a fresh document node.
func parseFragment(src string) (*html.Node, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(src), body)
	if err != nil {
		return nil, fmt.Errorf("parse fragment: %w", err)
	}
	root := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root, nil
}
