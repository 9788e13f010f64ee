package dao

import "errors"

var (
	// ErrNotFound reports a key with no stored record.
	ErrNotFound = errors.New("dao: record not found")
	// ErrInvalidID reports an empty key.
	ErrInvalidID = errors.New("dao: empty record key")
	// ErrNilEntity reports an attempt to save nil.
	ErrNilEntity = errors.New("dao: nil record")
)
