package domain

import "sort"

// Vocabulary is the set of categories the storefront knows, grouped by department.
// Classifier output outside the vocabulary degrades to DefaultCategory.
type Vocabulary struct {
	departments map[string]map[string]bool
}

// NewVocabulary builds a vocabulary from department -> categories.
// DefaultCategory is always accepted in every department.
func NewVocabulary(departments map[string][]string) *Vocabulary {
	v := &Vocabulary{departments: make(map[string]map[string]bool, len(departments))}
	for dept, cats := range departments {
		set := make(map[string]bool, len(cats)+1)
		for _, c := range cats {
			set[c] = true
		}
		set[DefaultCategory] = true
		v.departments[dept] = set
	}
	if _, ok := v.departments[DefaultDepartment]; !ok {
		v.departments[DefaultDepartment] = map[string]bool{DefaultCategory: true}
	}
	return v
}

// DefaultVocabulary returns the built-in storefront vocabulary.
func DefaultVocabulary() *Vocabulary {
	return NewVocabulary(map[string][]string{
		"Electronics": {
			"Phones", "Tablets", "Laptops", "Desktops", "Monitors", "Storage",
			"Keyboards", "Mice", "Chargers", "Audio", "Cameras", "TVs", "Gaming",
			"Networking", "Printers", "Smartwatches", "Accessories", "Components",
		},
		"Home": {"Appliances", "Furniture", "Kitchen"},
		"Fashion": {"Shoes", "Clothing", "Bags", "Watches"},
	})
}

// Has reports whether category is known in department.
func (v *Vocabulary) Has(department, category string) bool {
	cats, ok := v.departments[department]
	if !ok {
		return false
	}
	return cats[category]
}

// Departments returns all known departments in sorted order.
func (v *Vocabulary) Departments() []string {
	out := make([]string, 0, len(v.departments))
	for d := range v.departments {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Coerce maps a classification onto the vocabulary. An unknown department
// falls back to DefaultDepartment and an unknown category to DefaultCategory.
func (v *Vocabulary) Coerce(c Classification) Classification {
	if _, ok := v.departments[c.Department]; !ok {
		c.Department = DefaultDepartment
	}
	if !v.Has(c.Department, c.Category) {
		c.Category = DefaultCategory
	}
	return c
}
