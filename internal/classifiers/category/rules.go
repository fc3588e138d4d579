package category

import (
	"regexp"
	"sort"

	"github.com/custodia-labs/shelf/internal/classifiers"
)

// Predicate decides whether prepared text satisfies a rule.
type Predicate func(classifiers.Text) bool

// Rule maps a predicate to a category. Rules are evaluated in order and the
// first match wins.
type Rule struct {
	Name       string
	Category   string
	Department string
	Match      Predicate
}

// AnyOf matches when any keyword occurs as a whole word.
func AnyOf(keywords ...string) Predicate {
	m := classifiers.Words(keywords...)
	return m.Match
}

// NoneOf matches when no keyword occurs as a whole word.
func NoneOf(keywords ...string) Predicate {
	m := classifiers.Words(keywords...)
	return func(t classifiers.Text) bool { return !m.Match(t) }
}

// AllOf matches when every predicate matches.
func AllOf(preds ...Predicate) Predicate {
	return func(t classifiers.Text) bool {
		for _, p := range preds {
			if !p(t) {
				return false
			}
		}
		return true
	}
}

// Pattern matches a regular expression against the folded text.
func Pattern(expr string) Predicate {
	re := regexp.MustCompile(expr)
	return func(t classifiers.Text) bool { return re.MatchString(t.String()) }
}

// Insert returns a copy of rules with r placed before the rule named before.
// If no rule has that name, r is appended.
func Insert(rules []Rule, before string, r Rule) []Rule {
	out := make([]Rule, 0, len(rules)+1)
	inserted := false
	for _, existing := range rules {
		if !inserted && existing.Name == before {
			out = append(out, r)
			inserted = true
		}
		out = append(out, existing)
	}
	if !inserted {
		out = append(out, r)
	}
	return out
}

// sizeUnit matches storage capacities such as "64GB", "1 TB" or "512 gb".
const sizeUnit = `\b\d+(?:\.\d+)?\s*(?:gb|tb)\b`

// accessoryWords exclude a listing from Laptops: a standalone charger or
// replacement keyboard mentions a laptop brand but is not a laptop.
var accessoryWords = []string{
	"keyboard", "screen", "battery", "charger", "adapter", "stand", "bag", "sleeve", "cooling pad", "skin",
}

// DefaultRules returns the built-in ordered rule list.
// More specific rules come before broader ones: tablets and watches before
// phones, laptops before storage so "256GB SSD" inside a laptop listing
// does not claim it.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name: "tablets", Category: "Tablets", Department: "Electronics",
			Match: AnyOf("tablet", "ipad", "galaxy tab", "matepad", "kindle"),
		},
		{
			Name: "smartwatches", Category: "Smartwatches", Department: "Electronics",
			Match: AnyOf("smartwatch", "smart watch", "apple watch", "galaxy watch", "mi band", "fitbit"),
		},
		{
			Name: "phones", Category: "Phones", Department: "Electronics",
			Match: AllOf(
				AnyOf("phone", "smartphone", "iphone", "galaxy", "redmi", "xiaomi", "tecno", "infinix",
					"itel", "pixel", "oneplus", "nokia", "huawei", "oppo", "vivo"),
				NoneOf("case", "cover", "screen protector", "tempered glass", "charger", "cable",
					"adapter", "power bank", "holder"),
			),
		},
		{
			Name: "laptops", Category: "Laptops", Department: "Electronics",
			Match: AllOf(
				AnyOf("laptop", "notebook", "macbook", "thinkpad", "elitebook", "probook", "latitude",
					"inspiron", "ideapad", "zenbook", "vivobook", "chromebook", "pavilion", "surface laptop"),
				NoneOf(accessoryWords...),
			),
		},
		{
			Name: "storage", Category: "Storage", Department: "Electronics",
			Match: AllOf(
				Pattern(sizeUnit),
				AnyOf("flash", "flash drive", "flash disk", "usb drive", "pendrive", "memory card",
					"sd card", "micro sd", "microsd", "hdd", "ssd", "hard disk", "hard drive", "external drive"),
			),
		},
		{
			Name: "keyboards", Category: "Keyboards", Department: "Electronics",
			Match: AllOf(AnyOf("keyboard"), NoneOf("laptop")),
		},
		{
			Name: "mice", Category: "Mice", Department: "Electronics",
			Match: AllOf(AnyOf("mouse", "mice"), NoneOf("laptop")),
		},
		{
			Name: "chargers", Category: "Chargers", Department: "Electronics",
			Match: AnyOf("charger", "power bank", "powerbank", "charging cable", "fast charging adapter"),
		},
		{
			Name: "audio", Category: "Audio", Department: "Electronics",
			Match: AnyOf("headphone", "headphones", "earbuds", "earphone", "earphones", "airpods",
				"headset", "speaker", "soundbar", "jbl"),
		},
		{
			Name: "cameras", Category: "Cameras", Department: "Electronics",
			Match: AnyOf("camera", "dslr", "mirrorless", "gopro", "webcam", "canon eos", "nikon"),
		},
		{
			Name: "tvs", Category: "TVs", Department: "Electronics",
			Match: AnyOf("tv", "television", "smart tv", "android tv"),
		},
		{
			Name: "gaming", Category: "Gaming", Department: "Electronics",
			Match: AnyOf("ps5", "ps4", "playstation", "xbox", "nintendo", "gamepad", "controller"),
		},
		{
			Name: "monitors", Category: "Monitors", Department: "Electronics",
			Match: AnyOf("monitor", "display panel"),
		},
		{
			Name: "desktops", Category: "Desktops", Department: "Electronics",
			Match: AnyOf("desktop", "all in one", "imac", "cpu tower", "mini pc"),
		},
		{
			Name: "printers", Category: "Printers", Department: "Electronics",
			Match: AnyOf("printer", "scanner", "toner", "cartridge"),
		},
		{
			Name: "networking", Category: "Networking", Department: "Electronics",
			Match: AnyOf("router", "modem", "access point", "wifi extender", "network switch"),
		},
		{
			Name: "appliances", Category: "Appliances", Department: "Home",
			Match: AnyOf("fridge", "refrigerator", "washing machine", "microwave", "blender",
				"air conditioner", "water dispenser", "stove"),
		},
		{
			Name: "furniture", Category: "Furniture", Department: "Home",
			Match: AnyOf("sofa", "wardrobe", "bed frame", "office chair", "bookshelf"),
		},
		{
			Name: "shoes", Category: "Shoes", Department: "Fashion",
			Match: AnyOf("shoe", "shoes", "sneaker", "sneakers", "boots", "sandals"),
		},
		{
			Name: "bags", Category: "Bags", Department: "Fashion",
			Match: AnyOf("backpack", "handbag", "laptop bag", "bag"),
		},
		{
			Name: "watches", Category: "Watches", Department: "Fashion",
			Match: AnyOf("watch", "wristwatch"),
		},
		{
			Name: "accessories", Category: "Accessories", Department: "Electronics",
			Match: AnyOf("case", "cover", "screen protector", "tempered glass", "stand", "holder",
				"cable", "hub", "adapter", "cooling pad", "battery"),
		},
	}
}

// refinements holds sharper rule lists for a department, applied by Refine.
var refinements = map[string]func() []Rule{
	"Electronics": func() []Rule {
		rules := DefaultRules()
		rules = Insert(rules, "accessories", Rule{
			Name: "components", Category: "Components", Department: "Electronics",
			Match: AnyOf("graphics card", "gpu", "motherboard", "processor", "power supply",
				"ddr4", "ddr5", "ram stick", "cpu cooler"),
		})
		rules = Insert(rules, "laptops", Rule{
			Name: "laptop-parts", Category: "Components", Department: "Electronics",
			Match: AllOf(
				AnyOf("laptop", "macbook", "thinkpad", "notebook"),
				AnyOf("replacement keyboard", "keyboard replacement", "replacement screen",
					"screen replacement", "battery"),
			),
		})
		return rules
	},
}

// RefineRules returns the refinement rule list for a department.
func RefineRules(department string) ([]Rule, bool) {
	build, ok := refinements[department]
	if !ok {
		return nil, false
	}
	return build(), true
}

// RefinableDepartments lists departments with a refinement rule list, sorted.
func RefinableDepartments() []string {
	out := make([]string, 0, len(refinements))
	for d := range refinements {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}
