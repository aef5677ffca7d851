package scriptbuilder

import "errors"

var (
	// ErrNoKB indicates that no knowledge-base rows are loaded.
	ErrNoKB = errors.New("knowledge base is empty")
	// ErrEmptyQuery indicates a blank caller description.
	ErrEmptyQuery = errors.New("query is empty")
	// ErrNoMatch indicates that no row scored at or above the minimum.
	ErrNoMatch = errors.New("no match above the minimum score")
)
