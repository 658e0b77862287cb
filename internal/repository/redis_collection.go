package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Collection key suffixes appended to the configured Redis key prefix.
const (
	KeyDonors      = "_donors"
	KeyAuditLogs   = "_audit_logs"
	KeyAlerts      = "_emergency_alerts_collection"
	KeyAdminUsers  = "_admin_users_list"
	maxTxnAttempts = 5
)

// ErrConcurrentUpdate is returned when optimistic Redis transactions keep colliding.
var ErrConcurrentUpdate = errors.New("collection changed concurrently")

// blobCollection stores a whole collection as one JSON array under a single key.
type blobCollection[T any] struct {
	client *redis.Client
	key    string
}

func newBlobCollection[T any](client *redis.Client, key string) blobCollection[T] {
	return blobCollection[T]{client: client, key: key}
}

// load returns the stored items and whether the key has ever been written.
func (c blobCollection[T]) load(ctx context.Context) ([]T, bool, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", c.key, err)
	}
	items, err := c.decode(raw)
	if err != nil {
		return nil, true, err
	}
	return items, true, nil
}

func (c blobCollection[T]) decode(raw []byte) ([]T, error) {
	var items []T
	if len(raw) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.key, err)
	}
	return items, nil
}

func (c blobCollection[T]) encode(items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", c.key, err)
	}
	return payload, nil
}

// update applies fn to the stored items under WATCH and writes the result back.
// fn may return errSkipWrite to finish without writing.
func (c blobCollection[T]) update(ctx context.Context, fn func([]T) ([]T, error)) error {
	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, c.key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("redis get %s: %w", c.key, err)
		}
		items, err := c.decode(raw)
		if err != nil {
			return err
		}
		next, err := fn(items)
		if err != nil {
			return err
		}
		payload, err := c.encode(next)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.key, payload, 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxTxnAttempts; attempt++ {
		err := c.client.Watch(ctx, txf, c.key)
		if errors.Is(err, errSkipWrite) {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrConcurrentUpdate
}

// replace overwrites the collection unconditionally.
func (c blobCollection[T]) replace(ctx context.Context, items []T) error {
	payload, err := c.encode(items)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, c.key, payload, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", c.key, err)
	}
	return nil
}

// seed writes items only when the key has never been written.
func (c blobCollection[T]) seed(ctx context.Context, items []T) (bool, error) {
	payload, err := c.encode(items)
	if err != nil {
		return false, err
	}
	ok, err := c.client.SetNX(ctx, c.key, payload, 0).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %s: %w", c.key, err)
	}
	return ok, nil
}

var errSkipWrite = errors.New("skip write")
