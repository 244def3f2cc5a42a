package service

import "errors"

var (
	// ErrNotFound is returned when a referenced CRE or standard does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidDocument is returned when a document has the wrong doctype or no name.
	ErrInvalidDocument = errors.New("invalid document")
	// ErrInvalidLinkType is returned when a link type cannot be used for the relation.
	ErrInvalidLinkType = errors.New("invalid link type")
)
