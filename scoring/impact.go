package scoring

import "sort"

// Categories group raw field names that feed the same kind of criteria
var Categories = map[string][]FieldKey{
	"seoTitle": {FieldTitle, FieldMetaTitle},
	"keywords": {FieldPrimaryKeyword, FieldSecondaryKeywords},
	"url":      {FieldURLSlug},
	"body":     {FieldContent, FieldContentDescription},
	"locale":   {FieldLanguage, FieldTargetCountry},
}

// ImpactIndex maps input fields to the rules that read them
type ImpactIndex struct {
	byField    map[FieldKey][]int
	byCategory map[string][]int
}

// NewImpactIndex inverts the catalog's field declarations. Inactive rules
// never move, so they are left out.
func NewImpactIndex(catalog *Catalog) *ImpactIndex {
	idx := &ImpactIndex{
		byField:    make(map[FieldKey][]int),
		byCategory: make(map[string][]int, len(Categories)),
	}
	for _, r := range catalog.rules {
		if r.Inactive {
			continue
		}
		for _, f := range r.Fields {
			idx.byField[f] = append(idx.byField[f], r.ID)
		}
	}
	for f, ids := range idx.byField {
		idx.byField[f] = sortedUnique(ids)
	}
	for name, fields := range Categories {
		var ids []int
		for _, f := range fields {
			ids = append(ids, idx.byField[f]...)
		}
		idx.byCategory[name] = sortedUnique(ids)
	}
	return idx
}

// Affected returns the rule ids influenced by a raw field name or a
// category name, ascending. Unknown names return nil.
func (idx *ImpactIndex) Affected(field string) []int {
	if ids, ok := idx.byField[FieldKey(field)]; ok {
		return append([]int(nil), ids...)
	}
	if ids, ok := idx.byCategory[field]; ok {
		return append([]int(nil), ids...)
	}
	return nil
}

// Known reports whether name is a field or category the index understands
func (idx *ImpactIndex) Known(name string) bool {
	if FieldKey(name).Valid() {
		return true
	}
	_, ok := Categories[name]
	return ok
}

// CategoryFields resolves a field or category name to raw fields
func CategoryFields(name string) []FieldKey {
	if FieldKey(name).Valid() {
		return []FieldKey{FieldKey(name)}
	}
	return append([]FieldKey(nil), Categories[name]...)
}

func sortedUnique(ids []int) []int {
	if len(ids) == 0 {
		return []int{}
	}
	sort.Ints(ids)
	out := ids[:1]
	for _, id := range ids[1:] {
		if id != out[len(out)-1] {
			out = append(out, id)
		}
	}
	return out
}
