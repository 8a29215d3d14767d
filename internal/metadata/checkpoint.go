// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

package metadata

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// checkpointPrefix namespaces fetched items; the external id follows it.
const checkpointPrefix = "metadata:item:"

// Checkpoint persists fetched metadata so an interrupted fetch can resume.
type Checkpoint interface {
	// Load returns every saved item keyed by external id.
	Load(ctx context.Context) (map[string]Details, error)

	// Save records one fetched item.
	Save(ctx context.Context, id string, d Details) error

	// Clear removes all saved items.
	Clear(ctx context.Context) error
}

// BadgerCheckpoint stores one key per fetched item in BadgerDB.
type BadgerCheckpoint struct {
	db    *badger.DB
	owned bool
}

// NewBadgerCheckpoint wraps an already open database. Close does not close db.
func NewBadgerCheckpoint(db *badger.DB) *BadgerCheckpoint {
	return &BadgerCheckpoint{db: db}
}

// OpenBadgerCheckpoint opens (or creates) a checkpoint database in dir.
func OpenBadgerCheckpoint(dir string) (*BadgerCheckpoint, error) {
	opts := badger.DefaultOptions(dir)
	opts.SyncWrites = true
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open checkpoint: %w", err)
	}
	return &BadgerCheckpoint{db: db, owned: true}, nil
}

// Load implements Checkpoint.
func (c *BadgerCheckpoint) Load(ctx context.Context) (map[string]Details, error) {
	out := make(map[string]Details)

	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(checkpointPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			item := it.Item()
			id := string(item.Key()[len(prefix):])

			var d Details
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &d)
			}); err != nil {
				return fmt.Errorf("decode checkpoint entry %s: %w", id, err)
			}
			out[id] = d
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}
	return out, nil
}

// Save implements Checkpoint.
func (c *BadgerCheckpoint) Save(_ context.Context, id string, d Details) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal details: %w", err)
	}

	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(checkpointPrefix+id), data)
	})
}

// Clear implements Checkpoint.
func (c *BadgerCheckpoint) Clear(_ context.Context) error {
	err := c.db.DropPrefix([]byte(checkpointPrefix))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	return err
}

// Close closes the database if it was opened by OpenBadgerCheckpoint.
func (c *BadgerCheckpoint) Close() error {
	if !c.owned {
		return nil
	}
	return c.db.Close()
}

// MemoryCheckpoint keeps progress in memory only.
type MemoryCheckpoint struct {
	mu    sync.Mutex
	items map[string]Details
}

// NewMemoryCheckpoint creates an empty in-memory checkpoint.
func NewMemoryCheckpoint() *MemoryCheckpoint {
	return &MemoryCheckpoint{items: make(map[string]Details)}
}

// Load implements Checkpoint. The returned map is a copy.
func (c *MemoryCheckpoint) Load(_ context.Context) (map[string]Details, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]Details, len(c.items))
	for id, d := range c.items {
		out[id] = d
	}
	return out, nil
}

// Save implements Checkpoint.
func (c *MemoryCheckpoint) Save(_ context.Context, id string, d Details) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[id] = d
	return nil
}

// Clear implements Checkpoint.
func (c *MemoryCheckpoint) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]Details)
	return nil
}
