package core

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/JonMunkholm/graticard/internal/address"
)

// addressStrategies lists the field combinations used to build a joined
// address for normalization, in priority order.
var addressStrategies = [][]Field{
	{FieldStreetAddress, FieldCityStatePostalCode},
	{FieldAddressLine1, FieldAddressLine2, FieldCity, FieldState, FieldPostalCode},
	{FieldAddressLine1, FieldCity, FieldState, FieldPostalCode},
}

// Entity holds everything needed to print one thank-you card.
//
// Every field is optional until set. Presence is tracked separately from the
// value, so a field set to "" is distinct from one that was never set.
// The normalized address is derived and can only be produced by
// NormalizeAddress or NormalizeFrom.
type Entity struct {
	values     [numFields]string
	present    [numFields]bool
	normalized *address.Address
}

// NewEntity returns an empty entity.
func NewEntity() *Entity {
	return &Entity{}
}

// Clone returns a deep copy of e.
func (e *Entity) Clone() *Entity {
	c := *e
	if e.normalized != nil {
		addr := *e.normalized
		c.normalized = &addr
	}
	return &c
}

// Set assigns a field value. Unknown fields are ignored.
func (e *Entity) Set(f Field, value string) {
	if !f.Valid() {
		return
	}
	e.values[f-1] = value
	e.present[f-1] = true
}

// Clear marks a field as never set.
func (e *Entity) Clear(f Field) {
	if !f.Valid() {
		return
	}
	e.values[f-1] = ""
	e.present[f-1] = false
}

// Get returns a field value and whether it has been set.
func (e *Entity) Get(f Field) (string, bool) {
	if !f.Valid() {
		return "", false
	}
	return e.values[f-1], e.present[f-1]
}

// Value returns a field value, or "" if unset.
func (e *Entity) Value(f Field) string {
	v, _ := e.Get(f)
	return v
}

// Has reports whether a field has been set.
func (e *Entity) Has(f Field) bool {
	_, ok := e.Get(f)
	return ok
}

// RecipientName returns the Name field.
func (e *Entity) RecipientName() string { return e.Value(FieldName) }

// Gift returns the Gift field.
func (e *Entity) Gift() string { return e.Value(FieldGift) }

// CityStatePostalCode renders the discrete City, State and Postal Code fields
// as one line.
func (e *Entity) CityStatePostalCode() string {
	return fmt.Sprintf("%s %s %s", e.Value(FieldCity), e.Value(FieldState), e.Value(FieldPostalCode))
}

// NormalizedAddress returns the derived address, or nil if none was produced.
func (e *Entity) NormalizedAddress() *address.Address {
	return e.normalized
}

// NormalizeAddress joins the first fully populated address strategy and runs
// it through n. It reports whether a normalized address was stored. A missing
// strategy or a normalizer failure leaves the address absent.
func (e *Entity) NormalizeAddress(n address.Normalizer) bool {
	if n == nil {
		return false
	}
	for _, strategy := range addressStrategies {
		parts, ok := e.collect(strategy)
		if !ok {
			continue
		}
		return e.NormalizeFrom(n, strings.Join(parts, " "))
	}
	return false
}

// NormalizeFrom normalizes an externally supplied complete address string.
func (e *Entity) NormalizeFrom(n address.Normalizer, full string) bool {
	if n == nil {
		return false
	}
	addr, err := n.Normalize(full)
	if err != nil || addr == nil {
		e.normalized = nil
		return false
	}
	e.normalized = addr
	return true
}

func (e *Entity) collect(fields []Field) ([]string, bool) {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		v, ok := e.Get(f)
		if !ok {
			return nil, false
		}
		parts = append(parts, v)
	}
	return parts, true
}

// String renders the card label block: name, street lines and city line.
func (e *Entity) String() string {
	lines := []string{e.RecipientName()}

	switch {
	case e.normalized != nil:
		lines = append(lines, e.normalized.String())
	case e.Has(FieldStreetAddress):
		lines = append(lines, e.Value(FieldStreetAddress), e.Value(FieldCityStatePostalCode))
	default:
		lines = append(lines, e.Value(FieldAddressLine1))
		if e.Has(FieldAddressLine2) {
			lines = append(lines, e.Value(FieldAddressLine2))
		}
		lines = append(lines, e.CityStatePostalCode())
	}

	return strings.Join(lines, "\n")
}

// MarshalJSON renders set fields by key, unset fields as null.
func (e *Entity) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, numFields+1)
	for _, f := range Fields() {
		if v, ok := e.Get(f); ok {
			out[f.Key()] = v
		} else {
			out[f.Key()] = nil
		}
	}
	out["normalized_address"] = e.normalized
	return json.Marshal(out)
}
