package idgen

import "github.com/google/uuid"

// NewFunc generates identifiers for runs and queued items. Tests replace it
// to get predictable ids.
var NewFunc = func() string { return uuid.New().String() }

// New returns a new globally unique identifier.
func New() string { return NewFunc() }
