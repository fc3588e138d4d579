package extractors

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// number accepts thousands separators ("12,500") and decimals ("99.50").
const number = `(\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?)`

var (
	// currencyPrice is a number immediately followed by a currency marker,
	// optionally preceded by a price label. It takes precedence.
	currencyPrice = regexp.MustCompile(`(?i)(?:(?:price|cost|ዋጋ)\s*[:\-=]?\s*)?` + number + `\s*(?:birr|br|etb|ብር)`)

	// labelledPrice is a number preceded by a price label without a currency marker.
	labelledPrice = regexp.MustCompile(`(?i)(?:price|cost|ዋጋ)\s*[:\-=]?\s*` + number)

	// unitSuffix marks numbers that measure something other than money.
	unitSuffix = regexp.MustCompile(`(?i)^\s*(?:(?:gb|tb|mb|ghz|mhz|hz|mah|mp|w|v|inch|in|pcs|pieces|gen|cm|mm|kg|g|ram|ssd|hdd)\b|")`)
)

// findPrice returns the first price by precedence and the spans of every
// candidate the winning pattern saw, in text order.
func findPrice(text string) (float64, []span) {
	if value, spans := matchPrices(text, currencyPrice, false); len(spans) > 0 {
		return value, spans
	}
	return matchPrices(text, labelledPrice, true)
}

func matchPrices(text string, re *regexp.Regexp, rejectUnits bool) (float64, []span) {
	var (
		value float64
		spans []span
	)

	for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
		start, end := loc[0], loc[1]
		if prev := runeBefore(text, start); isWordRune(prev) || prev == '.' || prev == ',' {
			continue
		}
		if next := runeAfter(text, end); unicode.IsLetter(next) || (rejectUnits && unicode.IsDigit(next)) {
			continue
		}
		if rejectUnits && unitSuffix.MatchString(text[end:]) {
			continue
		}

		parsed, err := parseNumber(text[loc[2]:loc[3]])
		if err != nil {
			continue
		}

		if len(spans) == 0 {
			value = parsed
		}
		spans = append(spans, span{start, end})
	}
	return value, spans
}

func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}
