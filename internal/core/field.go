package core

import "strings"

// Field is one label of the fixed column-mapping vocabulary.
type Field int

const (
	FieldName Field = iota + 1
	FieldStreetAddress
	FieldCityStatePostalCode
	FieldAddressLine1
	FieldAddressLine2
	FieldCity
	FieldState
	FieldPostalCode
	FieldGift
)

const numFields = int(FieldGift)

var fieldLabels = [numFields]string{
	"Name",
	"Street Address",
	"City State Postal Code",
	"Address Line 1",
	"Address Line 2",
	"City",
	"State",
	"Postal Code",
	"Gift",
}

var fieldKeys = [numFields]string{
	"recipient_name",
	"full_street_address",
	"city_state_zip",
	"address_line_1",
	"address_line_2",
	"city",
	"state",
	"postal_code",
	"gift",
}

// Fields returns the whole vocabulary in its canonical order.
func Fields() []Field {
	out := make([]Field, numFields)
	for i := range out {
		out[i] = Field(i + 1)
	}
	return out
}

// Labels returns the display labels of the vocabulary in canonical order.
func Labels() []string {
	return append([]string(nil), fieldLabels[:]...)
}

// ParseField resolves a mapping label to a Field.
// Matching ignores surrounding whitespace and letter case.
func ParseField(label string) (Field, bool) {
	label = strings.TrimSpace(label)
	for i, l := range fieldLabels {
		if strings.EqualFold(l, label) {
			return Field(i + 1), true
		}
	}
	return 0, false
}

// Valid reports whether f is part of the vocabulary.
func (f Field) Valid() bool {
	return f >= FieldName && f <= FieldGift
}

// String returns the mapping label, e.g. "Address Line 1".
func (f Field) String() string {
	if !f.Valid() {
		return "Unknown"
	}
	return fieldLabels[f-1]
}

// Key returns the snake_case attribute name used in JSON and CSV output.
func (f Field) Key() string {
	if !f.Valid() {
		return ""
	}
	return fieldKeys[f-1]
}

// IsAddress reports whether f takes part in the address rule.
func (f Field) IsAddress() bool {
	switch f {
	case FieldStreetAddress, FieldCityStatePostalCode, FieldAddressLine1,
		FieldAddressLine2, FieldCity, FieldState, FieldPostalCode:
		return true
	}
	return false
}
