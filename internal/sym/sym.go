// Package sym provides a bidirectional interner for the names that appear
// in tensor IR terms: operator heads, tensor references, and shape
// variables (spec §4.A). Equality and hashing on a Symbol are constant
// time regardless of the string it stands for.
package sym

// Symbol is an interned identifier. The zero Symbol is never returned by
// Table.Intern; it is reserved to let callers use it as a "no symbol" sentinel.
type Symbol uint32

// Table is a single-compilation-lifetime interner. It is not safe for
// concurrent use; the core is single-threaded (spec §5).
type Table struct {
	byName []string
	lookup map[string]Symbol
}

// NewTable creates an empty interner.
func NewTable() *Table {
	return &Table{
		byName: []string{""}, // index 0 reserved for the zero Symbol
		lookup: map[string]Symbol{"": 0},
	}
}

// Intern returns the Symbol for name, allocating a new one on first use.
func (t *Table) Intern(name string) Symbol {
	if s, ok := t.lookup[name]; ok {
		return s
	}
	s := Symbol(len(t.byName))
	t.byName = append(t.byName, name)
	t.lookup[name] = s
	return s
}

// Name returns the string a Symbol was interned from. Panics if s was not
// produced by this table, since that indicates a programmer error rather
// than a user-facing one.
func (t *Table) Name(s Symbol) string {
	if int(s) >= len(t.byName) {
		panic("sym: symbol not owned by this table")
	}
	return t.byName[s]
}

// Len returns the number of distinct interned names, including the
// reserved zero entry.
func (t *Table) Len() int {
	return len(t.byName)
}
