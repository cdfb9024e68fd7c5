package segment

import (
	"testing"

	"github.com/andybalholm/cascadia"
)

func defaultClassifier(t *testing.T) *Classifier {
	t.Helper()
	s, err := New(DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return s.Classifier()
}

func TestClassifier_Rules(t *testing.T) {
	c := defaultClassifier(t)

	tests := []struct {
		name     string
		block    Block
		wantRule string
		wantOK   bool
	}{
		{"empty text", NewBlock("p", []string{"p8"}, "   "), "", false},
		{"prominent class", NewBlock("p", []string{"p8"}, "anything at all"), RuleClassMarker, true},
		{"section-title class", NewBlock("div", []string{"x", "section-title"}, "Prologue"), RuleClassMarker, true},
		{"higher-level header class", NewBlock("p", []string{"p12"}, "Part Two"), RuleClassMarker, true},
		{"marker inside a longer class", NewBlock("p", []string{"p80"}, "body text"), RuleClassMarker, true},
		{"section-title prefix", NewBlock("p", []string{"section-title-main"}, "Book One"), RuleClassMarker, true},
		{"marker at end of class", NewBlock("p", []string{"xp12"}, "Part"), RuleClassMarker, true},
		{"unrelated class", NewBlock("p", []string{"p3"}, "body text"), "", false},
		{"devanagari digits", NewBlock("p", nil, "११ प्रभो राजसी"), RuleLeadingDigits, true},
		{"ascii digits", NewBlock("p", nil, "12 The Return"), RuleLeadingDigits, true},
		{"digits without space", NewBlock("p", nil, "3."), RuleLeadingDigits, true},
		{"plain body", NewBlock("p", nil, "It was a dark night."), "", false},
		{"digit later in text", NewBlock("p", nil, "Chapter 4"), "", false},
	}

	for _, tt := range tests {
		rule, ok := c.Classify(tt.block)
		if ok != tt.wantOK {
			t.Errorf("%s: expected title=%v, got %v", tt.name, tt.wantOK, ok)
		}
		if rule != tt.wantRule {
			t.Errorf("%s: expected rule %q, got %q", tt.name, tt.wantRule, rule)
		}
		if c.IsTitle(tt.block) != tt.wantOK {
			t.Errorf("%s: IsTitle disagrees with Classify", tt.name)
		}
	}
}

func TestClassifier_HeaderSpan(t *testing.T) {
	s, err := New(DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res, err := s.Segment(`<p>Intro</p><p><span class="s7">The Court</span></p><p><span class="s3">plain</span></p>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Chapters) != 1 {
		t.Fatalf("expected 1 chapter, got %d", len(res.Chapters))
	}
	if rule, _ := s.Classifier().Classify(res.Chapters[0].TitleBlock); rule != RuleHeaderSpan {
		t.Errorf("expected rule %q, got %q", RuleHeaderSpan, rule)
	}
	if len(res.Chapters[0].Body) != 1 {
		t.Errorf("expected 1 body block, got %d", len(res.Chapters[0].Body))
	}
}

func TestClassifier_ProminentClassAlwaysWins(t *testing.T) {
	c := defaultClassifier(t)
	texts := []string{"x", "lowercase words", "…", "नमस्ते", "[translate:नमस्ते]"}
	for _, text := range texts {
		if !c.IsTitle(NewBlock("p", []string{"p8"}, text)) {
			t.Errorf("expected p8 block %q to be a title", text)
		}
	}
}

func TestClassifier_FirstMatchWins(t *testing.T) {
	calls := 0
	c := NewClassifier(
		Rule{Name: "first", Match: func(Block) bool { return true }},
		Rule{Name: "second", Match: func(Block) bool { calls++; return true }},
	)
	rule, ok := c.Classify(NewBlock("p", nil, "text"))
	if !ok || rule != "first" {
		t.Errorf("expected rule %q, got %q (ok=%v)", "first", rule, ok)
	}
	if calls != 0 {
		t.Errorf("expected later rules to be skipped, got %d calls", calls)
	}
}

func TestClassifier_NoRules(t *testing.T) {
	c := NewClassifier()
	if c.IsTitle(NewBlock("h1", []string{"p8"}, "Title")) {
		t.Error("expected classifier without rules to reject every block")
	}
}

func TestDescendantRule_SyntheticBlock(t *testing.T) {
	r := DescendantRule(cascadia.MustCompile("span"))
	if r.Match(NewBlock("p", nil, "text")) {
		t.Error("expected synthetic block never to match a descendant rule")
	}
}

func TestClassifier_RulesCopy(t *testing.T) {
	c := defaultClassifier(t)
	rules := c.Rules()
	if len(rules) != 3 {
		t.Fatalf("expected 3 default rules, got %d", len(rules))
	}
	rules[0] = Rule{Name: "mutated"}
	if c.Rules()[0].Name != RuleClassMarker {
		t.Error("expected Rules to return a copy")
	}
}

func TestClassTokenRule(t *testing.T) {
	r := ClassTokenRule(DefaultTitleClasses...)
	tests := []struct {
		classes []string
		want    bool
	}{
		{[]string{"p8"}, true},
		{[]string{"a", "section-title"}, true},
		{[]string{"p80"}, false},
		{[]string{"section-title-main"}, false},
		{[]string{"xp12"}, false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := r.Match(NewBlock("p", tt.classes, "text")); got != tt.want {
			t.Errorf("classes=%v: expected %v, got %v", tt.classes, tt.want, got)
		}
	}
}

func TestSegment_ClassMatchModes(t *testing.T) {
	inputs := []string{
		`<p class="p80">Intro</p><p>body</p>`,
		`<p class="section-title-main">Intro</p><p>body</p>`,
		`<p class="xp12">Intro</p><p>body</p>`,
	}

	substr, err := New(DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	opts := DefaultOptions()
	opts.ClassTokens = true
	tokens, err := New(opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, in := range inputs {
		res, err := substr.Segment(in)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res.Chapters) != 1 || res.Chapters[0].Title != "Intro" {
			t.Errorf("%s: expected one chapter titled Intro, got %v", in, res.Chapters.Titles())
		}

		res, err = tokens.Segment(in)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res.Chapters) != 0 || res.Discarded != 2 {
			t.Errorf("%s: expected no chapters with token matching, got %d (discarded %d)", in, len(res.Chapters), res.Discarded)
		}
	}
}
