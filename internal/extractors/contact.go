package extractors

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

var (
	// localPhone matches 09XXXXXXXX with optional single separators between digit pairs.
	localPhone = regexp.MustCompile(`09\d{2}[ \-]?\d{2}[ \-]?\d{2}[ \-]?\d{2}`)

	// intlPhone matches the same numbers written with the +251 country code.
	intlPhone = regexp.MustCompile(`\+?251[ \-]?9\d{2}[ \-]?\d{2}[ \-]?\d{2}[ \-]?\d{2}`)

	handle = regexp.MustCompile(`@[A-Za-z][A-Za-z0-9_]{2,31}`)
)

type phoneHit struct {
	number string
	s      span
}

// findPhones returns every local phone number (digits only, 09 prefix) and
// the spans to strip, in text order.
func findPhones(text string) ([]string, []span) {
	var hits []phoneHit

	for _, loc := range intlPhone.FindAllStringIndex(text, -1) {
		if !boundedByNonDigits(text, loc[0], loc[1]) {
			continue
		}
		digits := onlyDigits(text[loc[0]:loc[1]])
		hits = append(hits, phoneHit{number: "0" + strings.TrimPrefix(digits, "251"), s: span{loc[0], loc[1]}})
	}

	for _, loc := range localPhone.FindAllStringIndex(text, -1) {
		if !boundedByNonDigits(text, loc[0], loc[1]) || overlaps(loc, hits) {
			continue
		}
		hits = append(hits, phoneHit{number: onlyDigits(text[loc[0]:loc[1]]), s: span{loc[0], loc[1]}})
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].s.start < hits[j].s.start })

	numbers := make([]string, 0, len(hits))
	spans := make([]span, 0, len(hits))
	for _, h := range hits {
		numbers = append(numbers, h.number)
		spans = append(spans, h.s)
	}
	return numbers, spans
}

// findHandles returns every @handle not attached to a preceding word
// (so e-mail addresses are ignored) and the spans to strip.
func findHandles(text string) ([]string, []span) {
	var names []string
	var spans []span
	for _, loc := range handle.FindAllStringIndex(text, -1) {
		prev := runeBefore(text, loc[0])
		if isWordRune(prev) || prev == '.' || prev == '@' {
			continue
		}
		if next := runeAfter(text, loc[1]); isWordRune(next) {
			continue
		}
		names = append(names, text[loc[0]:loc[1]])
		spans = append(spans, span{loc[0], loc[1]})
	}
	return names, spans
}

func boundedByNonDigits(text string, start, end int) bool {
	return !unicode.IsDigit(runeBefore(text, start)) && !unicode.IsDigit(runeAfter(text, end))
}

func overlaps(loc []int, hits []phoneHit) bool {
	for _, h := range hits {
		if loc[0] < h.s.end && h.s.start < loc[1] {
			return true
		}
	}
	return false
}

func onlyDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
