package domain

// Catalog defaults applied when a record cannot be classified.
const (
	// DefaultCategory is the category assigned when no rule matches.
	DefaultCategory = "Other"

	// DefaultDepartment is the department assigned when no rule matches.
	DefaultDepartment = "Electronics"
)

// RawMessage is one parsed block of the chat export.
// It is discarded once folded into a Draft.
type RawMessage struct {
	// ID is the numeric message id. Ids may collide across re-exports.
	ID int

	// HasText reports whether the block carries a text container.
	HasText bool

	// Text is the inner markup of the text container.
	Text string

	// PhotoRefs are photo hrefs in document order.
	PhotoRefs []string

	// Service marks a system block (channel created, pinned message, date separator).
	Service bool

	// Position is the ordinal of the block in the export, used for log context.
	Position int
}

// Draft is a product-shaped group produced by segmentation:
// one text block plus any photo-only continuation blocks that followed it.
type Draft struct {
	// SourceID is the id of the text block that opened the group.
	SourceID int

	// Text is the raw text of the opening block.
	Text string

	// PhotoRefs is the deduplicated photo set in first-seen order.
	PhotoRefs []string

	// Continuations lists ids of photo-only blocks attached to the group.
	Continuations []int

	// Flagged lists continuation ids that were not contiguous with the group.
	Flagged []int
}

// Product is a persisted catalog record.
type Product struct {
	ID             int64    `json:"id"`
	SourceID       int      `json:"sourceId,omitempty"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Price          float64  `json:"price"`
	Category       string   `json:"category"`
	Department     string   `json:"department"`
	Images         []string `json:"images"`
	SellerPhone    string   `json:"sellerPhone,omitempty"`
	TelegramHandle string   `json:"telegramHandle,omitempty"`
	Variations     []string `json:"variations"`
}

// HasImage reports whether the product has at least one image.
func (p *Product) HasImage() bool {
	return len(p.Images) > 0
}

// Normalise fills zero-valued collections and defaults so the serialised
// form is stable: images and variations are never null, category and
// department are never empty and price is never negative.
func (p *Product) Normalise() {
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Variations == nil {
		p.Variations = []string{}
	}
	if p.Category == "" {
		p.Category = DefaultCategory
	}
	if p.Department == "" {
		p.Department = DefaultDepartment
	}
	if p.Price < 0 {
		p.Price = 0
	}
}

// Classification is the output of the category classifier.
type Classification struct {
	Category   string
	Department string
}
