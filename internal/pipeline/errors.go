package pipeline

import "errors"

var (
	// ErrParseFirst is returned by Merge while a source is pending or a side
	// of the merge has no parsed source.
	ErrParseFirst = errors.New("parse data first")

	// ErrSourceNotFound is returned for an unknown source ID.
	ErrSourceNotFound = errors.New("source not found")

	// ErrAlreadyParsed is returned when changing a source that is complete.
	ErrAlreadyParsed = errors.New("source already parsed")

	// ErrRowOutOfRange is returned by RemoveRows for an index past the rows.
	ErrRowOutOfRange = errors.New("row index out of range")

	// ErrSessionNotFound is returned by Manager for an unknown or expired session.
	ErrSessionNotFound = errors.New("session not found")

	// ErrNoMergeResult is returned by Result before any successful Merge.
	ErrNoMergeResult = errors.New("parse data first: no merge result yet")
)
