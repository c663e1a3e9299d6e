package store

import "errors"

var (
	// ErrValidation is returned when a record is missing its company name or payload.
	ErrValidation = errors.New("company name and data are required")
	// ErrInvalidID is returned for identifiers that are not well-formed ObjectIDs.
	ErrInvalidID = errors.New("invalid research id")
	// ErrNotFound is returned when no record matches a well-formed id.
	ErrNotFound = errors.New("research not found")
)
