package imagestore

import "context"

// NoOpStore discards every delete. Used when no object store is configured.
type NoOpStore struct{}

// NewNoOp creates a store that does nothing.
func NewNoOp() *NoOpStore {
	return &NoOpStore{}
}

// Delete implements Store.
func (*NoOpStore) Delete(context.Context, string) error {
	return nil
}
