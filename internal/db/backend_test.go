package db

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/undeadops/golinks/internal/store"
)

// testBackend runs the behaviour every store.Backend must share.
func testBackend(t *testing.T, b store.Backend) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		v, found, err := b.Get(ctx, "go.example:missing")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, v)
	})

	t.Run("put then get", func(t *testing.T) {
		require.NoError(t, b.Put(ctx, "go.example:abc", []byte(`{"redirectUrl":"https://a.test","hits":0}`)))

		v, found, err := b.Get(ctx, "go.example:abc")
		require.NoError(t, err)
		assert.True(t, found)
		assert.JSONEq(t, `{"redirectUrl":"https://a.test","hits":0}`, string(v))
	})

	t.Run("put overwrites", func(t *testing.T) {
		require.NoError(t, b.Put(ctx, "go.example:over", []byte(`{"hits":1}`)))
		require.NoError(t, b.Put(ctx, "go.example:over", []byte(`{"hits":2}`)))

		v, found, err := b.Get(ctx, "go.example:over")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, `{"hits":2}`, string(v))
	})

	t.Run("list by prefix", func(t *testing.T) {
		for _, k := range []string{"list.test:a", "list.test:b/c", "list.testing:x", "other.test:a", "LIST.test:z"} {
			require.NoError(t, b.Put(ctx, k, []byte(`{}`)))
		}

		keys, err := b.ListKeys(ctx, "list.test:")
		require.NoError(t, err)
		sort.Strings(keys)
		assert.Equal(t, []string{"list.test:a", "list.test:b/c"}, keys)
	})

	t.Run("list treats glob characters literally", func(t *testing.T) {
		require.NoError(t, b.Put(ctx, "g*b.test:a", []byte(`{}`)))
		require.NoError(t, b.Put(ctx, "gxb.test:a", []byte(`{}`)))

		keys, err := b.ListKeys(ctx, "g*b.test:")
		require.NoError(t, err)
		assert.Equal(t, []string{"g*b.test:a"}, keys)
	})

	t.Run("list empty prefix space", func(t *testing.T) {
		keys, err := b.ListKeys(ctx, "nobody.test:")
		require.NoError(t, err)
		assert.Empty(t, keys)
	})

	t.Run("drives a LinkStore", func(t *testing.T) {
		links := store.New(b)
		require.NoError(t, links.Put(ctx, "store.test", "s", store.ShortLink{RedirectURL: "https://s.test"}))

		link, err := links.Resolve(ctx, "store.test", "s", nil)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), link.Hits)

		entries, err := links.ListByHostPrefix(ctx, "store.test")
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "s", entries[0].Slug)
		assert.Equal(t, uint64(1), entries[0].Link.Hits)
	})
}
