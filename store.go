package storytree

import (
	"context"
	"errors"
)

var (
	ErrNotFound         = errors.New("storytree: not found")
	ErrDuplicateID      = errors.New("storytree: duplicate id")
	ErrDuplicateBranch  = errors.New("storytree: more than one node for the same parent and choice")
	ErrInvalidTree      = errors.New("storytree: invalid story tree")
	ErrGenerationFailed = errors.New("storytree: generation failed")
	ErrBusy             = errors.New("storytree: a choice is already being resolved for this story")
	ErrUnknownChoice    = errors.New("storytree: choice is not offered by the current node")
	ErrInvalidInput     = errors.New("storytree: invalid input")
)

// DefaultKey is the key the story collection is persisted under.
const DefaultKey = "stories"

// KV is the durable key-value store the Repository persists into.
// Implementations live in the badger, sqlite, postgres and redis packages;
// MemoryKV is the in-process one.
type KV interface {
	// Load returns the value stored under key.
	// Returns nil, nil if the key is absent.
	Load(ctx context.Context, key string) ([]byte, error)
	// Save replaces the value stored under key.
	Save(ctx context.Context, key string, value []byte) error
}
