// Package memory is the in-process blob backend used when no external
// storage is configured.
package memory

import (
	"context"
	"sync"
)

type Blob struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewBlob() *Blob {
	return &Blob{data: make(map[string][]byte)}
}

func (b *Blob) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	return clone(b.data[key]), nil
}

func (b *Blob) Save(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	b.data[key] = clone(data)
	b.mu.Unlock()

	return nil
}

func (b *Blob) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	delete(b.data, key)
	b.mu.Unlock()

	return nil
}

// Update holds the lock across fn, so concurrent updates of any key are serialized.
func (b *Blob) Update(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	next, err := fn(clone(b.data[key]))
	if err != nil {
		return err
	}

	b.data[key] = clone(next)

	return nil
}

func clone(p []byte) []byte {
	if p == nil {
		return nil
	}
	return append([]byte(nil), p...)
}
