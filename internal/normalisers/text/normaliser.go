package text

import (
	"strings"
	"unicode/utf8"
)

// DefaultTitleLength is the maximum title length in runes.
const DefaultTitleLength = 120

// Step is one named, independently testable cleaning transformation.
type Step struct {
	Name  string
	Apply func(string) string
}

// Option configures a Normaliser.
type Option func(*Normaliser)

// WithAddresses adds store address variants stripped as boilerplate.
func WithAddresses(addresses ...string) Option {
	return func(n *Normaliser) {
		n.addresses = append(n.addresses, addresses...)
	}
}

// WithTitleLength overrides the maximum title length.
func WithTitleLength(runes int) Option {
	return func(n *Normaliser) {
		if runes > 0 {
			n.titleLength = runes
		}
	}
}

// Normaliser cleans raw message text.
type Normaliser struct {
	addresses   []string
	titleLength int
	steps       []Step
}

// New creates a Normaliser with the standard step order.
func New(opts ...Option) *Normaliser {
	n := &Normaliser{titleLength: DefaultTitleLength}
	for _, opt := range opts {
		opt(n)
	}

	// Order matters: markup must be gone before boilerplate patterns see the
	// text, and boilerplate must be gone before whitespace is collapsed.
	n.steps = []Step{
		{Name: "decode-entities", Apply: DecodeEntities},
		{Name: "strip-markup", Apply: StripMarkup},
		{Name: "unicode-nfc", Apply: NormaliseUnicode},
		{Name: "strip-boilerplate", Apply: boilerplate(n.addresses)},
		{Name: "strip-handles", Apply: StripHandles},
		{Name: "strip-urls", Apply: StripURLs},
		{Name: "collapse-whitespace", Apply: CollapseWhitespace},
		{Name: "trim-punctuation", Apply: TrimPunctuation},
	}
	return n
}

// Steps returns the cleaning steps in application order.
func (n *Normaliser) Steps() []Step {
	out := make([]Step, len(n.steps))
	copy(out, n.steps)
	return out
}

// Normalise cleans raw text. Empty input yields an empty string.
// The step list is reapplied until the output is stable, which makes
// Normalise idempotent however deeply the input is escaped.
func (n *Normaliser) Normalise(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	out := raw
	for {
		next := n.apply(out)
		if next == out {
			return out
		}
		out = next
	}
}

func (n *Normaliser) apply(s string) string {
	for _, step := range n.steps {
		s = step.Apply(s)
	}
	return s
}

// Title derives a product title from cleaned text: the first non-empty line,
// cut on a word boundary to the configured length.
func (n *Normaliser) Title(clean string) string {
	for _, line := range strings.Split(clean, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		return TrimPunctuation(truncate(line, n.titleLength))
	}
	return ""
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)[:limit]
	cut := string(runes)
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut)
}
