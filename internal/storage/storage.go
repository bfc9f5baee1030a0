package storage

import (
	"context"
	"errors"
)

// SchemaVersion is the current persisted cart layout. A stored payload
// carrying any other version is discarded in full on load.
const SchemaVersion = 2

var ErrNotFound = errors.New("no stored cart state")

// Backend persists the raw serialized cart state for one session.
// Implementations must write the full state on every Store call, so a retried
// or reordered write can never leave a partial cart behind.
type Backend interface {
	Load(ctx context.Context) ([]byte, error)
	Store(ctx context.Context, data []byte) error
	Delete(ctx context.Context) error
}
