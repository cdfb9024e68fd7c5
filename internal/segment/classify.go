package segment

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Rule names reported by Classify.
const (
	RuleClassMarker   = "class-marker"
	RuleLeadingDigits = "leading-digits"
	RuleHeaderSpan    = "header-span"
)

// DefaultTitleClasses are the class tokens that mark prominent titles and
// higher-level headers in the digitized sources this tool was built for.
var DefaultTitleClasses = []string{"p8", "section-title", "p12"}

// DefaultTitleSelector matches the inline spans commonly used for headers.
const DefaultTitleSelector = "span.s7, span.s8"

// Rule is one named title heuristic.
type Rule struct {
	Name  string
	Match func(Block) bool
}

// Classifier decides whether a block starts a new chapter. Rules are
// evaluated in order and the first match wins.
type Classifier struct {
	rules []Rule
}

// NewClassifier returns a classifier over the given rules.
func NewClassifier(rules ...Rule) *Classifier {
	return &Classifier{rules: rules}
}

// IsTitle reports whether b is a chapter title.
func (c *Classifier) IsTitle(b Block) bool {
	_, ok := c.Classify(b)
	return ok
}

// Classify returns the name of the first rule that marks b as a title.
// Blocks with empty text are never titles.
func (c *Classifier) Classify(b Block) (string, bool) {
	if b.plain() == "" {
		return "", false
	}
	for _, r := range c.rules {
		if r.Match != nil && r.Match(b) {
			return r.Name, true
		}
	}
	return "", false
}

// Rules returns a copy of the classifier's rule list.
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// ClassMarkerRule matches blocks whose class attribute contains any of the
// markers as a substring, so "p80" and "section-title-main" match "p8" and
// "section-title".
func ClassMarkerRule(markers ...string) Rule {
	return Rule{
		Name: RuleClassMarker,
		Match: func(b Block) bool {
			attr := b.ClassAttr()
			if attr == "" {
				return false
			}
			for _, m := range markers {
				if m != "" && strings.Contains(attr, m) {
					return true
				}
			}
			return false
		},
	}
}

// ClassTokenRule matches blocks carrying any of the markers as a whole
// class token.
func ClassTokenRule(markers ...string) Rule {
	return Rule{
		Name: RuleClassMarker,
		Match: func(b Block) bool {
			for _, m := range markers {
				if b.HasClass(m) {
					return true
				}
			}
			return false
		},
	}
}

// LeadingDigitsRule matches numbered headings: text starting with an ASCII
// or Devanagari digit.
func LeadingDigitsRule() Rule {
	return Rule{
		Name: RuleLeadingDigits,
		Match: func(b Block) bool {
			r, _ := utf8.DecodeRuneInString(b.plain())
			return isHeadingDigit(r)
		},
	}
}

// DescendantRule matches blocks with a descendant element matching m.
func DescendantRule(m goquery.Matcher) Rule {
	return Rule{
		Name: RuleHeaderSpan,
		Match: func(b Block) bool {
			return b.Contains(m)
		},
	}
}

func isHeadingDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 0x0966 && r <= 0x096F)
}
