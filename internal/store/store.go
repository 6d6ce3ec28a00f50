package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Backend - represents the external key-value store the link registry is persisted in.
// Get reports found=false (and a nil error) when the key does not exist.
type Backend interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Put(ctx context.Context, key string, value []byte) error
	ListKeys(ctx context.Context, prefix string) ([]string, error)
}

// Key identifies a short link inside a host's namespace.
type Key struct {
	Host string
	Slug string
}

// String flattens the key into the "{host}:{slug}" form used by backends.
func (k Key) String() string {
	return hostPrefix(k.Host) + k.Slug
}

func hostPrefix(host string) string {
	return host + ":"
}

// ShortLink is the persisted record.
type ShortLink struct {
	RedirectURL string `json:"redirectUrl"`
	Hits        uint64 `json:"hits"`
}

// Entry is a slug and its link, as yielded by ListByHostPrefix.
type Entry struct {
	Slug string
	Link ShortLink
}

// LinkStore maps namespaced keys to ShortLink records on top of a Backend.
// It holds no locks; all consistency comes from the backend.
type LinkStore struct {
	backend Backend
}

func New(backend Backend) *LinkStore {
	return &LinkStore{backend: backend}
}

// Get returns ErrNotFound when nothing is stored under (host, slug).
func (s *LinkStore) Get(ctx context.Context, host, slug string) (ShortLink, error) {
	return s.get(ctx, Key{Host: host, Slug: slug})
}

func (s *LinkStore) get(ctx context.Context, key Key) (ShortLink, error) {
	k := key.String()
	raw, found, err := s.backend.Get(ctx, k)
	if err != nil {
		return ShortLink{}, &BackendError{Op: "get", Key: k, Err: err}
	}
	if !found {
		return ShortLink{}, ErrNotFound
	}
	return decode(k, raw)
}

// Put unconditionally overwrites whatever is stored under (host, slug).
func (s *LinkStore) Put(ctx context.Context, host, slug string, link ShortLink) error {
	return s.put(ctx, Key{Host: host, Slug: slug}, link)
}

func (s *LinkStore) put(ctx context.Context, key Key, link ShortLink) error {
	k := key.String()
	raw, err := json.Marshal(link)
	if err != nil {
		return fmt.Errorf("failed to marshal link %q: %w", k, err)
	}
	if err := s.backend.Put(ctx, k, raw); err != nil {
		return &BackendError{Op: "put", Key: k, Err: err}
	}
	return nil
}

// ListByHostPrefix returns every link stored for host, in backend key order.
// Keys that vanish between listing and reading are skipped; a record that
// fails to decode aborts the whole listing.
func (s *LinkStore) ListByHostPrefix(ctx context.Context, host string) ([]Entry, error) {
	prefix := hostPrefix(host)
	keys, err := s.backend.ListKeys(ctx, prefix)
	if err != nil {
		return nil, &BackendError{Op: "list", Key: prefix, Err: err}
	}

	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		slug, ok := strings.CutPrefix(k, prefix)
		if !ok {
			continue
		}
		link, err := s.get(ctx, Key{Host: host, Slug: slug})
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Slug: slug, Link: link})
	}
	return entries, nil
}

// Resolve counts one hit against (host, slug) and returns the updated link.
// The increment is a plain read-modify-write, so concurrent resolves of the
// same key can lose updates. check, when non-nil, runs before the write and
// aborts the resolve (leaving the counter untouched) if it returns an error.
func (s *LinkStore) Resolve(ctx context.Context, host, slug string, check func(ShortLink) error) (ShortLink, error) {
	key := Key{Host: host, Slug: slug}
	link, err := s.get(ctx, key)
	if err != nil {
		return ShortLink{}, err
	}
	if check != nil {
		if err := check(link); err != nil {
			return ShortLink{}, err
		}
	}

	link.Hits++
	if err := s.put(ctx, key, link); err != nil {
		return ShortLink{}, err
	}
	return link, nil
}

func decode(key string, raw []byte) (ShortLink, error) {
	var link ShortLink
	if err := json.Unmarshal(raw, &link); err != nil {
		return ShortLink{}, &DeserializationError{Key: key, Err: err}
	}
	return link, nil
}
