// Package output writes merged entities for mail-merge tools.
package output

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/JonMunkholm/graticard/internal/core"
)

// ErrNoDestination is returned when a merge is requested without anywhere to
// write the result.
var ErrNoDestination = errors.New("need output destination")

// Header is the column order of WriteCSV.
var Header = []string{
	"recipient_name",
	"address_line_1",
	"address_line_2",
	"city",
	"state",
	"postal_code",
	"gift",
}

// WriteCSV writes one row per entity. The normalized address is used when
// present; otherwise the discrete address fields are written, falling back to
// Street Address and City State Postal Code in the first and third columns.
func WriteCSV(w io.Writer, entities []*core.Entity) error {
	if w == nil {
		return ErrNoDestination
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, e := range entities {
		if err := cw.Write(Record(e)); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Record renders one entity in Header order.
func Record(e *core.Entity) []string {
	rec := make([]string, len(Header))
	rec[0] = e.RecipientName()
	rec[6] = e.Gift()

	if addr := e.NormalizedAddress(); addr != nil {
		rec[1] = addr.Line1
		rec[2] = addr.Line2
		rec[3] = addr.City
		rec[4] = addr.State
		rec[5] = addr.PostalCode
		return rec
	}

	if e.Has(core.FieldStreetAddress) && !e.Has(core.FieldAddressLine1) {
		rec[1] = e.Value(core.FieldStreetAddress)
	} else {
		rec[1] = e.Value(core.FieldAddressLine1)
	}
	rec[2] = e.Value(core.FieldAddressLine2)

	if e.Has(core.FieldCityStatePostalCode) && !e.Has(core.FieldCity) {
		rec[3] = e.Value(core.FieldCityStatePostalCode)
	} else {
		rec[3] = e.Value(core.FieldCity)
		rec[4] = e.Value(core.FieldState)
		rec[5] = e.Value(core.FieldPostalCode)
	}
	return rec
}
