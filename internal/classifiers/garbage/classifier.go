// Package garbage decides whether a segmented record is spam or unusable.
// Garbage records are dropped before the catalog is written.
package garbage

import (
	"unicode/utf8"

	"github.com/custodia-labs/shelf/internal/classifiers"
	"github.com/custodia-labs/shelf/internal/core/domain"
)

// DefaultMinTitleLength is the shortest usable product title in runes.
const DefaultMinTitleLength = 3

// DefaultBlacklist lists spam markers: betting promos, "we buy" solicitations and promo-code spam.
var DefaultBlacklist = []string{
	"1xbet",
	"melbet",
	"betting",
	"casino",
	"jackpot",
	"promo code",
	"promocode",
	"bonus code",
	"we buy",
	"buy your",
}

// Record is the view of a candidate product the classifier needs.
type Record struct {
	Title       string
	Description string
	Images      int
}

// Verdict explains a classification.
type Verdict struct {
	Garbage bool
	Reason  domain.DropReason
	// Marker is the blacklist entry that matched, for spam verdicts.
	Marker string
}

// Classifier flags spam and unusable records.
type Classifier struct {
	blacklist      []string
	minTitleLength int
}

// New creates a classifier. Extra markers are added to DefaultBlacklist.
// A minTitleLength of 0 selects DefaultMinTitleLength.
func New(minTitleLength int, extra ...string) *Classifier {
	if minTitleLength <= 0 {
		minTitleLength = DefaultMinTitleLength
	}
	blacklist := make([]string, 0, len(DefaultBlacklist)+len(extra))
	blacklist = append(blacklist, DefaultBlacklist...)
	for _, m := range extra {
		if m != "" {
			blacklist = append(blacklist, m)
		}
	}
	return &Classifier{blacklist: blacklist, minTitleLength: minTitleLength}
}

// Classify checks spam markers first, then images, then title length.
func (c *Classifier) Classify(rec Record) Verdict {
	text := classifiers.Prepare(rec.Title, rec.Description)
	if marker, ok := text.ContainsAny(c.blacklist); ok {
		return Verdict{Garbage: true, Reason: domain.DropSpam, Marker: marker}
	}
	if rec.Images == 0 {
		return Verdict{Garbage: true, Reason: domain.DropNoImage}
	}
	if utf8.RuneCountInString(rec.Title) < c.minTitleLength {
		return Verdict{Garbage: true, Reason: domain.DropShortTitle}
	}
	return Verdict{}
}

// IsGarbage reports whether rec should be dropped.
func (c *Classifier) IsGarbage(rec Record) bool {
	return c.Classify(rec).Garbage
}
