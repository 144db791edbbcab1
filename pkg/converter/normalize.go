package converter

import "sort"

// TypeNormalizer maps vendor category spellings to the sampler's vocabulary.
// The table is fixed once constructed.
type TypeNormalizer struct {
	table map[string]string
}

// DefaultTypeTable returns the built-in plural-to-singular substitutions.
func DefaultTypeTable() map[string]string {
	return map[string]string{
		"Fills":   "Fill",
		"Breaks":  "Break",
		"Grooves": "Groove",
	}
}

// NewTypeNormalizer copies table into a new normalizer. Keys are matched
// after title-casing the raw value, so they should be title-cased too.
func NewTypeNormalizer(table map[string]string) *TypeNormalizer {
	t := make(map[string]string, len(table))
	for k, v := range table {
		t[k] = v
	}
	return &TypeNormalizer{table: t}
}

// Normalize title-cases raw and applies the table. Unknown values pass through.
func (n *TypeNormalizer) Normalize(raw string) string {
	s := Title(raw)
	if v, ok := n.table[s]; ok {
		return v
	}
	return s
}

// Table returns a copy of the substitution table
func (n *TypeNormalizer) Table() map[string]string {
	return NewTypeNormalizer(n.table).table
}

// Keys returns the table's keys in sorted order
func (n *TypeNormalizer) Keys() []string {
	keys := make([]string, 0, len(n.table))
	for k := range n.table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
