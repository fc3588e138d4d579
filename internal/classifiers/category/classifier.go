// Package category files products under a storefront category using an
// ordered, first-match-wins keyword rule list. Classification is a pure
// function of title and description, so re-running it is always safe.
package category

import (
	"github.com/custodia-labs/shelf/internal/classifiers"
	"github.com/custodia-labs/shelf/internal/core/domain"
)

// Classifier evaluates an ordered rule list.
type Classifier struct {
	rules []Rule
	vocab *domain.Vocabulary
}

// New creates a classifier over rules. A nil vocabulary selects domain.DefaultVocabulary.
func New(rules []Rule, vocab *domain.Vocabulary) *Classifier {
	if vocab == nil {
		vocab = domain.DefaultVocabulary()
	}
	return &Classifier{rules: rules, vocab: vocab}
}

// Default creates a classifier with DefaultRules.
func Default(vocab *domain.Vocabulary) *Classifier {
	return New(DefaultRules(), vocab)
}

// Rules returns the rule list in evaluation order.
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Classify returns the category of a product.
func (c *Classifier) Classify(title, description string) domain.Classification {
	cls, _ := c.Explain(title, description)
	return cls
}

// Explain returns the classification and the name of the rule that produced it.
// The rule name is empty when the default applied.
func (c *Classifier) Explain(title, description string) (domain.Classification, string) {
	text := classifiers.Prepare(title, description)
	for _, r := range c.rules {
		if r.Match(text) {
			return c.vocab.Coerce(domain.Classification{Category: r.Category, Department: r.Department}), r.Name
		}
	}
	return domain.Classification{Category: domain.DefaultCategory, Department: domain.DefaultDepartment}, ""
}

// match is like Explain but reports whether any rule matched.
func (c *Classifier) match(title, description string) (domain.Classification, bool) {
	cls, rule := c.Explain(title, description)
	return cls, rule != ""
}

// Apply reclassifies every product in place and returns how many changed.
func (c *Classifier) Apply(products []domain.Product) int {
	changed := 0
	for i := range products {
		p := &products[i]
		cls := c.Classify(p.Title, p.Description)
		if p.Category != cls.Category || p.Department != cls.Department {
			p.Category = cls.Category
			p.Department = cls.Department
			changed++
		}
	}
	return changed
}

// Refine reclassifies only products already filed under department, using
// refiner. Products the refiner has no rule for keep their current category.
// No field other than category and department is touched.
func Refine(products []domain.Product, department string, refiner *Classifier) int {
	changed := 0
	for i := range products {
		p := &products[i]
		if p.Department != department {
			continue
		}
		cls, ok := refiner.match(p.Title, p.Description)
		if !ok {
			continue
		}
		if p.Category != cls.Category || p.Department != cls.Department {
			p.Category = cls.Category
			p.Department = cls.Department
			changed++
		}
	}
	return changed
}
