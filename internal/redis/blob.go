package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const maxWatchAttempts = 16

// Blob keeps each record under its own string key.
type Blob struct {
	rdb *redis.Client
}

func NewBlob(rdb *redis.Client) *Blob {
	return &Blob{rdb: rdb}
}

func (b *Blob) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := b.rdb.Get(ctx, KeyBlob(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis.Blob.Load: %w", err)
	}
	return data, nil
}

func (b *Blob) Save(ctx context.Context, key string, data []byte) error {
	return b.rdb.Set(ctx, KeyBlob(key), data, 0).Err()
}

func (b *Blob) Delete(ctx context.Context, key string) error {
	return b.rdb.Del(ctx, KeyBlob(key)).Err()
}

// Update runs fn under WATCH and commits with MULTI/EXEC, starting over when
// another client changed the key in between.
func (b *Blob) Update(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error {
	const op = "redis.Blob.Update"

	k := KeyBlob(key)

	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, k).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}

		next, err := fn(current)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, next, 0)
			return nil
		})
		return err
	}

	for range maxWatchAttempts {
		err := b.rdb.Watch(ctx, txf, k)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	}

	return fmt.Errorf("%s: %w", op, redis.TxFailedErr)
}
