package dao

import "context"

// Service stores records of type T keyed by K. Run history is kept through it
// so the same code path serves the in-memory and the afs backed stores.
type Service[K comparable, T any] interface {
	Save(ctx context.Context, record *T) error
	Load(ctx context.Context, key K) (*T, error)
	Delete(ctx context.Context, key K) error
	List(ctx context.Context, parameters ...*Parameter) ([]*T, error)
}
