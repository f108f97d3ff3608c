package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS kv_blobs (
	key        TEXT PRIMARY KEY,
	data       BYTEA,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// BlobRepo stores each key as one row of kv_blobs.
type BlobRepo struct {
	store *Store
}

func (r *BlobRepo) handle() DB {
	return r.store.pool
}

// EnsureSchema creates the kv_blobs table if it is missing.
func (r *BlobRepo) EnsureSchema(ctx context.Context) error {
	const op = "postgres.BlobRepo.EnsureSchema"

	if _, err := r.handle().Exec(ctx, schemaSQL); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *BlobRepo) Load(ctx context.Context, key string) ([]byte, error) {
	const op = "postgres.BlobRepo.Load"

	var data []byte
	err := r.handle().QueryRow(ctx,
		`SELECT data FROM kv_blobs WHERE key = $1`,
		key,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return data, nil
}

func (r *BlobRepo) Save(ctx context.Context, key string, data []byte) error {
	const op = "postgres.BlobRepo.Save"

	_, err := r.handle().Exec(ctx,
		`INSERT INTO kv_blobs (key, data, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		key, data,
	)

	return wrapDBErr(op, err)
}

func (r *BlobRepo) Delete(ctx context.Context, key string) error {
	const op = "postgres.BlobRepo.Delete"

	_, err := r.handle().Exec(ctx, `DELETE FROM kv_blobs WHERE key = $1`, key)

	return wrapDBErr(op, err)
}

// Update locks the row with SELECT ... FOR UPDATE. The row lock already
// serializes writers, so read committed is enough; deadlocks are retried.
func (r *BlobRepo) Update(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error {
	const op = "postgres.BlobRepo.Update"

	var fnErr error

	opts := &pgx.TxOptions{IsoLevel: pgx.ReadCommitted, AccessMode: pgx.ReadWrite}

	err := r.store.RunTxRetry(ctx, opts, func(ctx context.Context, tx DB) error {
		fnErr = nil

		if _, err := tx.Exec(ctx,
			`INSERT INTO kv_blobs (key, data) VALUES ($1, NULL) ON CONFLICT (key) DO NOTHING`,
			key,
		); err != nil {
			return err
		}

		var current []byte
		if err := tx.QueryRow(ctx,
			`SELECT data FROM kv_blobs WHERE key = $1 FOR UPDATE`,
			key,
		).Scan(&current); err != nil {
			return err
		}

		next, err := fn(current)
		if err != nil {
			fnErr = err
			return err
		}

		_, err = tx.Exec(ctx,
			`UPDATE kv_blobs SET data = $2, updated_at = now() WHERE key = $1`,
			key, next,
		)
		return err
	})
	if fnErr != nil {
		return fnErr
	}
	if err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}
