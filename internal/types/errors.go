package types

import "errors"

// ErrNotFound is returned by entry stores for absent paths
var ErrNotFound = errors.New("entry not found")

// ErrExists is returned when creating an entry that is already present
var ErrExists = errors.New("entry already exists")
