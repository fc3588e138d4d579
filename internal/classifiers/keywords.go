package classifiers

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

// Text is case-folded text prepared for keyword matching.
type Text struct {
	folded string
}

// Prepare folds the concatenation of parts, separated by newlines.
func Prepare(parts ...string) Text {
	return Text{folded: Fold(strings.Join(parts, "\n"))}
}

// Fold returns the case-folded form of s.
// A new caser is created per call since casers are not safe for concurrent use.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// String returns the folded text.
func (t Text) String() string {
	return t.folded
}

// Contains reports whether the folded text contains keyword as a substring.
func (t Text) Contains(keyword string) bool {
	return strings.Contains(t.folded, Fold(keyword))
}

// ContainsAny reports whether any keyword occurs, returning the first hit.
func (t Text) ContainsAny(keywords []string) (string, bool) {
	for _, k := range keywords {
		if t.Contains(k) {
			return k, true
		}
	}
	return "", false
}

// Matcher matches a list of keywords as whole words.
// Multi-word keywords match across any run of whitespace.
type Matcher struct {
	keywords []string
	re       *regexp.Regexp
}

// Words compiles a whole-word matcher for keywords.
func Words(keywords ...string) *Matcher {
	m := &Matcher{keywords: keywords}
	if len(keywords) == 0 {
		return m
	}
	alts := make([]string, 0, len(keywords))
	for _, k := range keywords {
		parts := strings.Fields(Fold(k))
		for i, p := range parts {
			parts[i] = regexp.QuoteMeta(p)
		}
		alts = append(alts, strings.Join(parts, `\s+`))
	}
	m.re = regexp.MustCompile(`(?:^|[^\p{L}\p{N}])(?:` + strings.Join(alts, "|") + `)(?:[^\p{L}\p{N}]|$)`)
	return m
}

// Keywords returns the keywords the matcher was built from.
func (m *Matcher) Keywords() []string {
	return m.keywords
}

// Match reports whether any keyword occurs in t as a whole word.
func (m *Matcher) Match(t Text) bool {
	if m.re == nil {
		return false
	}
	return m.re.MatchString(t.folded)
}
