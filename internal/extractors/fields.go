package extractors

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Field names reported in Fields.Ambiguous.
const (
	FieldPrice  = "price"
	FieldPhone  = "phone"
	FieldHandle = "handle"
)

// Fields is the result of extraction.
type Fields struct {
	// Price is the extracted price, or 0 when none was found.
	// Callers decide whether 0 means unknown or free.
	Price float64

	// PriceText is the matched price phrase.
	PriceText string

	// Phone is the first local phone number, digits only.
	Phone string

	// Handle is the first @handle including the @.
	Handle string

	// Stripped is the input with every extracted token removed.
	Stripped string

	// Ambiguous lists fields that had more than one candidate.
	// The first candidate by precedence was taken.
	Ambiguous []string
}

// span is a byte range within the text.
type span struct {
	start, end int
}

// Extract pulls phone, handle and price from text. Every match of a field is
// stripped. Phones and handles go first so they cannot be read as prices.
func Extract(text string) Fields {
	var f Fields

	phones, phoneSpans := findPhones(text)
	if len(phones) > 0 {
		f.Phone = phones[0]
		if len(phones) > 1 {
			f.Ambiguous = append(f.Ambiguous, FieldPhone)
		}
	}
	text = cut(text, phoneSpans)

	handles, handleSpans := findHandles(text)
	if len(handles) > 0 {
		f.Handle = handles[0]
		if len(handles) > 1 {
			f.Ambiguous = append(f.Ambiguous, FieldHandle)
		}
	}
	text = cut(text, handleSpans)

	price, priceSpans := findPrice(text)
	if len(priceSpans) > 0 {
		f.Price = price
		f.PriceText = text[priceSpans[0].start:priceSpans[0].end]
		if len(priceSpans) > 1 {
			f.Ambiguous = append(f.Ambiguous, FieldPrice)
		}
		text = cut(text, priceSpans)
	}

	f.Stripped = text
	return f
}

// cut removes the given non-overlapping spans, which must be in ascending order.
func cut(text string, spans []span) string {
	if len(spans) == 0 {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, s := range spans {
		b.WriteString(text[last:s.start])
		last = s.end
	}
	b.WriteString(text[last:])
	return b.String()
}

// runeBefore returns the rune ending at byte offset i, or utf8.RuneError at the start.
func runeBefore(text string, i int) rune {
	if i <= 0 {
		return utf8.RuneError
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return r
}

// runeAfter returns the rune starting at byte offset i, or utf8.RuneError at the end.
func runeAfter(text string, i int) rune {
	if i >= len(text) {
		return utf8.RuneError
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return r
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
