// Package storage defines the key-value surface journey state is persisted
// through, plus an in-memory implementation.
package storage

import (
	"context"
	"sync"
)

// KV stores raw values under string keys. A missing key is reported by
// ok == false, not by an error.
type KV interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
}

// Buckets hands out isolated KV namespaces, one per journey profile or
// session.
type Buckets interface {
	Bucket(name string) KV
}

// Memory is a process-local Buckets implementation.
type Memory struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]map[string][]byte)}
}

// Bucket returns the namespace called name.
func (m *Memory) Bucket(name string) KV {
	return &memoryBucket{parent: m, name: name}
}

type memoryBucket struct {
	parent *Memory
	name   string
}

func (b *memoryBucket) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	b.parent.mu.RLock()
	defer b.parent.mu.RUnlock()
	value, ok := b.parent.data[b.name][key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

func (b *memoryBucket) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.parent.mu.Lock()
	defer b.parent.mu.Unlock()
	entries, ok := b.parent.data[b.name]
	if !ok {
		entries = make(map[string][]byte)
		b.parent.data[b.name] = entries
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	entries[key] = stored
	return nil
}
