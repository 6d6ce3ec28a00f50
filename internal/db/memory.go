package db

import (
	"context"
	"sort"
	"strings"

	"github.com/patrickmn/go-cache"
)

// Memory is a process-local backend. Nothing survives a restart.
type Memory struct {
	items *cache.Cache
}

func NewMemory() *Memory {
	return &Memory{items: cache.New(cache.NoExpiration, 0)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.items.Get(key)
	if !ok {
		return nil, false, nil
	}
	return clone(v.([]byte)), true, nil
}

func (m *Memory) Put(_ context.Context, key string, value []byte) error {
	m.items.Set(key, clone(value), cache.NoExpiration)
	return nil
}

func (m *Memory) ListKeys(_ context.Context, prefix string) ([]string, error) {
	keys := []string{}
	for k := range m.items.Items() {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *Memory) Close() error {
	return nil
}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}
