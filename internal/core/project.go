package core

import "github.com/JonMunkholm/graticard/internal/address"

// fieldColumn binds a field to the raw column it is read from.
type fieldColumn struct {
	field Field
	index int
}

// resolveColumns returns the first column index of every field present in m,
// in vocabulary order. Later duplicates of a label are ignored.
func resolveColumns(m ColumnMapping) []fieldColumn {
	var cols []fieldColumn
	for _, f := range Fields() {
		if idx := m.Index(f); idx >= 0 {
			cols = append(cols, fieldColumn{field: f, index: idx})
		}
	}
	return cols
}

// Project builds one entity per row using mapping m and normalizes each
// entity's address with n (nil skips normalization).
//
// The mapping is validated first; an invalid mapping returns its validation
// error and no entities. A row too short to reach a mapped column leaves
// that field unset.
func Project(rows [][]string, m ColumnMapping, n address.Normalizer) ([]*Entity, error) {
	if _, err := ValidateMapping(m); err != nil {
		return nil, err
	}

	cols := resolveColumns(m)
	entities := make([]*Entity, 0, len(rows))
	for _, row := range rows {
		entities = append(entities, projectRow(row, cols, n))
	}
	return entities, nil
}

// ProjectRow projects a single row. See Project.
func ProjectRow(row []string, m ColumnMapping, n address.Normalizer) (*Entity, error) {
	if _, err := ValidateMapping(m); err != nil {
		return nil, err
	}
	return projectRow(row, resolveColumns(m), n), nil
}

func projectRow(row []string, cols []fieldColumn, n address.Normalizer) *Entity {
	e := NewEntity()
	for _, c := range cols {
		if c.index >= len(row) {
			continue
		}
		e.Set(c.field, row[c.index])
	}
	e.NormalizeAddress(n)
	return e
}
