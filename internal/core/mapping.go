package core

// mapping.go validates user-declared column mappings.
//
// A mapping holds one label per raw column. Blank labels mark columns to
// ignore. Validation never mutates the caller's slice; it returns a cleaned
// copy with blanks removed.

import "strings"

// AddressSets are the combinations of address labels that describe a
// complete address. A mapping with any address label must contain at least
// one of them.
var AddressSets = [][]Field{
	{FieldStreetAddress, FieldCityStatePostalCode},
	{FieldStreetAddress, FieldCity, FieldState, FieldPostalCode},
	{FieldAddressLine1, FieldAddressLine2, FieldCityStatePostalCode},
	{FieldAddressLine1, FieldAddressLine2, FieldCity, FieldState, FieldPostalCode},
	{FieldAddressLine1, FieldCityStatePostalCode},
	{FieldAddressLine1, FieldCity, FieldState, FieldPostalCode},
}

// ColumnMapping assigns a vocabulary label (or blank) to each raw column.
type ColumnMapping []string

// ParseMapping splits a comma-separated list of labels, keeping blanks so
// positions line up with raw columns: "Name,,Gift" maps columns 0 and 2.
func ParseMapping(s string) ColumnMapping {
	if strings.TrimSpace(s) == "" {
		return ColumnMapping{}
	}
	parts := strings.Split(s, ",")
	m := make(ColumnMapping, len(parts))
	for i, p := range parts {
		m[i] = strings.TrimSpace(p)
	}
	return m
}

// Clean returns a copy of m without blank labels.
func (m ColumnMapping) Clean() ColumnMapping {
	out := make(ColumnMapping, 0, len(m))
	for _, label := range m {
		if strings.TrimSpace(label) == "" {
			continue
		}
		out = append(out, label)
	}
	return out
}

// Index returns the first raw column carrying f, or -1.
func (m ColumnMapping) Index(f Field) int {
	for i, label := range m {
		if got, ok := ParseField(label); ok && got == f {
			return i
		}
	}
	return -1
}

// Contains reports whether f appears anywhere in the mapping.
func (m ColumnMapping) Contains(f Field) bool {
	return m.Index(f) >= 0
}

// String joins the labels with commas, the inverse of ParseMapping.
func (m ColumnMapping) String() string {
	return strings.Join(m, ",")
}

// ValidateMapping checks that m can build valid entities.
//
// Rules, in order:
//  1. Blank labels are dropped.
//  2. Every remaining label must be in the vocabulary.
//  3. Name must be present.
//  4. If any address label is present, some AddressSets entry must be fully present.
//
// The cleaned mapping is returned on success.
func ValidateMapping(m ColumnMapping) (ColumnMapping, error) {
	cleaned := m.Clean()

	present := make(map[Field]bool, len(cleaned))
	for _, label := range cleaned {
		f, ok := ParseField(label)
		if !ok {
			return nil, &UnknownFieldError{Label: label, Available: Labels()}
		}
		present[f] = true
	}

	if !present[FieldName] {
		return nil, &MissingNameError{}
	}

	if !hasAddressField(present) {
		return cleaned, nil
	}

	for _, set := range AddressSets {
		if containsAll(present, set) {
			return cleaned, nil
		}
	}

	return nil, &IncompleteAddressError{Sets: AddressSets}
}

func hasAddressField(present map[Field]bool) bool {
	for f := range present {
		if f.IsAddress() {
			return true
		}
	}
	return false
}

func containsAll(present map[Field]bool, set []Field) bool {
	for _, f := range set {
		if !present[f] {
			return false
		}
	}
	return true
}
