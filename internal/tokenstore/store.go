package tokenstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/patrickmn/go-cache"
)

// Store is a durable key/value sink for issued tokens.
type Store interface {
	Put(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (string, bool, error)
}

// CacheStore keeps tokens in a go-cache and, when path is set, mirrors every
// write to a JSON file so tokens survive restarts.
type CacheStore struct {
	mu    sync.Mutex
	path  string
	items *cache.Cache
}

// NewMemory returns a CacheStore without file persistence.
func NewMemory() *CacheStore {
	return &CacheStore{items: cache.New(cache.NoExpiration, 0)}
}

// OpenFile loads path if it exists. The file is created on the first Put.
func OpenFile(path string) (*CacheStore, error) {
	s := &CacheStore{path: path, items: cache.New(cache.NoExpiration, 0)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}
	if len(data) == 0 {
		return s, nil
	}
	var saved map[string]string
	if err := json.Unmarshal(data, &saved); err != nil {
		return nil, fmt.Errorf("decode token file %s: %w", path, err)
	}
	for k, v := range saved {
		s.items.Set(k, v, cache.NoExpiration)
	}
	return s, nil
}

func (s *CacheStore) Put(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items.Set(key, value, cache.NoExpiration)
	if s.path == "" {
		return nil
	}
	return s.flushLocked()
}

func (s *CacheStore) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := s.items.Get(key)
	if !ok {
		return "", false, nil
	}
	str, ok := v.(string)
	return str, ok, nil
}

func (s *CacheStore) flushLocked() error {
	items := s.items.Items()
	out := make(map[string]string, len(items))
	for k, item := range items {
		if v, ok := item.Object.(string); ok {
			out[k] = v
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}
	tmp, err := os.CreateTemp(dir, ".tokens-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
