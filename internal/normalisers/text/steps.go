package text

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Pre-compiled regular expressions for cleaning performance.
var (
	brTags       = regexp.MustCompile(`(?i)<br\s*/?>`)
	blockClose   = regexp.MustCompile(`(?i)</(p|div|li|blockquote|pre)>`)
	allTags      = regexp.MustCompile(`<[^>]+>`)
	addressLine  = regexp.MustCompile(`(?im)^[^\S\n]*(?:address|location|አድራሻ)[^\S\n]*[:\-].*$`)
	soldOutStart = regexp.MustCompile(`(?i)\A[^\p{L}\p{N}]*(?:sold[\s-]*out|out\s+of\s+stock)\b[\s:!.,\-]*`)
	handles      = regexp.MustCompile(`(^|[^\w.@])@[A-Za-z0-9_]+`)
	urls         = regexp.MustCompile(`(?i)(?:\bhttps?://|\bwww\.|\bt\.me/)\S*`)
	multiSpaces  = regexp.MustCompile(`[ \t\x{00A0}]+`)
	spaceComma   = regexp.MustCompile(`[ \t]+,`)
	repeatComma  = regexp.MustCompile(`,(?:[ \t]*,)+`)
	multiBlank   = regexp.MustCompile(`\n{3,}`)
)

// Contact trailers run to the end of the text. A keyword only starts a
// trailer when contact residue follows it, when it stands alone on its line,
// or when it follows a separator and nothing but separators follow it.
var (
	trailerWithContact = regexp.MustCompile(`(?i)(?:\A|[\s,.;:!|\-])` + trailerKeyword +
		`[\s:\-,]*(?:\+?\d[\d \-]{6,}\d|@\w|https?://|www\.|t\.me/)(?s:.*)\z`)

	trailerAtEnd = regexp.MustCompile(`(?i)(?:(?:\A|\s*[,.;:!|\-\n])\s*` + trailerKeyword + `)+[\s:\-,.!]*\z`)

	trailerOnLine = regexp.MustCompile(`(?i)(?:\A|\n)[ \t]*` + trailerKeyword + `[ \t:\-,.!]*\n(?s:.*)\z`)
)

// trailerKeyword is a contact call to action, optionally followed by us, me or now.
const trailerKeyword = `(?:call|contact(?:[ \t]+us)?|join(?:[ \t]+us)?|inbox)\b(?:[ \t]+(?:us|me|now)\b)?`

// edgeNoise is trimmed from both ends of the cleaned text.
const edgeNoise = " \t\r\n-–—.,;:|/\\*_~•·=>"

// DecodeEntities decodes HTML entities such as &amp;, &quot;, &lt;, &gt;, &#39; and &apos;,
// repeating until nested escapes like &amp;amp; are fully decoded.
func DecodeEntities(s string) string {
	for {
		next := html.UnescapeString(s)
		if next == s {
			return s
		}
		s = next
	}
}

// StripMarkup converts line-break tags to newlines and removes every other tag.
func StripMarkup(s string) string {
	s = brTags.ReplaceAllString(s, "\n")
	s = blockClose.ReplaceAllString(s, "\n")
	return allTags.ReplaceAllString(s, "")
}

// NormaliseUnicode applies NFC composition and drops control characters other than newline and tab.
func NormaliseUnicode(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = norm.NFC.String(s)
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// StripHandles removes @handle tokens. Email addresses are left alone.
func StripHandles(s string) string {
	return handles.ReplaceAllString(s, "$1")
}

// StripURLs removes bare links.
func StripURLs(s string) string {
	return urls.ReplaceAllString(s, "")
}

// CollapseWhitespace collapses space runs, trims each line, drops orphaned
// separators and reduces runs of blank lines to one.
func CollapseWhitespace(s string) string {
	s = multiSpaces.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")
	s = spaceComma.ReplaceAllString(s, ",")
	s = repeatComma.ReplaceAllString(s, ",")
	s = multiBlank.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// TrimPunctuation trims leftover separator runs from both ends.
func TrimPunctuation(s string) string {
	return strings.Trim(s, edgeNoise)
}

// boilerplate builds the boilerplate step for a set of store addresses.
func boilerplate(addresses []string) func(string) string {
	var literal []*regexp.Regexp
	for _, a := range addresses {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		literal = append(literal, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(a)))
	}

	return func(s string) string {
		for _, re := range literal {
			s = re.ReplaceAllString(s, "")
		}
		s = addressLine.ReplaceAllString(s, "")
		s = soldOutStart.ReplaceAllString(s, "")
		s = trailerWithContact.ReplaceAllString(s, "")
		s = trailerOnLine.ReplaceAllString(s, "")
		return trailerAtEnd.ReplaceAllString(s, "")
	}
}
