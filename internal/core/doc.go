// Package core provides the reconciliation engine for thank-you card data.
//
// This package is independent of any UI, transport or file format. It can be
// driven by the HTTP API, the CLI or tests without modification, and performs
// no I/O: rows arrive already loaded by a source adapter.
//
// # Column Mapping
//
// A [ColumnMapping] assigns one label of the fixed vocabulary (see [Field])
// to each raw column, or leaves it blank. [ValidateMapping] decides whether
// the mapping can build valid entities:
//
//	cleaned, err := core.ValidateMapping(core.ColumnMapping{"Name", "", "Address Line 1", "City", "State", "Postal Code", "Gift"})
//
// Validation failures are typed ([UnknownFieldError], [MissingNameError],
// [IncompleteAddressError]) and all match [ErrInvalidMapping] via errors.Is.
//
// # Projection
//
// [Project] turns rows into [Entity] values. Each label is read from the
// first column that carries it. Once all fields are set, the entity's
// address is normalized through an address.Normalizer using the first
// complete strategy: street + city/state/postal, line 1 + line 2 + city +
// state + postal, or line 1 + city + state + postal.
//
// # Merge
//
// [Merge] reconciles two [Collection] values keyed by recipient name. Exact
// names copy the gift directly. Other names fall back to the best [Scorer]
// match, accepted only when its score is strictly above the confidence floor.
// The merge is primary-driven; unmatched secondary entities are dropped.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each category has a code for support reference:
//
//   - MAP001-MAP003: Column mapping errors
//   - SRC001-SRC004: Source file errors
//   - MRG001-MRG002: Merge preconditions
//   - SES001-SES004: Session errors
//   - TPL001-TPL002: Mapping template errors
//   - REQ001-REQ004: Request errors
package core
