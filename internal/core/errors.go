package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidMapping is matched by every column-mapping validation error.
var ErrInvalidMapping = errors.New("invalid column mapping")

// UnknownFieldError reports a mapping label outside the vocabulary.
// Labels are compared after trimming and without regard to case, so "name"
// and " City " are accepted; see ParseField.
type UnknownFieldError struct {
	Label     string
	Available []string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q given in column mapping; available fields are %s",
		e.Label, strings.Join(e.Available, ", "))
}

// Is implements errors.Is support.
func (e *UnknownFieldError) Is(target error) bool {
	return target == ErrInvalidMapping
}

// MissingNameError reports a mapping without a Name column.
type MissingNameError struct{}

func (e *MissingNameError) Error() string {
	return `the column mapping must contain "Name"`
}

// Is implements errors.Is support.
func (e *MissingNameError) Is(target error) bool {
	return target == ErrInvalidMapping
}

// IncompleteAddressError reports address labels that do not form any
// complete address set.
type IncompleteAddressError struct {
	Sets [][]Field
}

func (e *IncompleteAddressError) Error() string {
	sets := make([]string, len(e.Sets))
	for i, set := range e.Sets {
		labels := make([]string, len(set))
		for j, f := range set {
			labels[j] = f.String()
		}
		sets[i] = "[" + strings.Join(labels, ", ") + "]"
	}
	return "incomplete address: when specifying addresses the column mapping must contain " +
		"at least one of the following sets " + strings.Join(sets, "; ")
}

// Is implements errors.Is support.
func (e *IncompleteAddressError) Is(target error) bool {
	return target == ErrInvalidMapping
}
