package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestResponseCache_GetSet(t *testing.T) {
	c := New("test-get-set", 200*time.Millisecond)
	require.Equal(t, 0, c.Len())

	// Expect a miss before anything is stored.
	got, ok := c.Get("key")
	require.False(t, ok)
	require.Nil(t, got)

	c.Set("key", []byte(`{"a":1}`))
	require.Equal(t, 1, c.Len())

	got, ok = c.Get("key")
	require.True(t, ok)
	require.Equal(t, []byte(`{"a":1}`), got)

	require.Equal(t, float64(1), testutil.ToFloat64(cacheLookups.WithLabelValues("test-get-set", "true")))
	require.Equal(t, float64(1), testutil.ToFloat64(cacheLookups.WithLabelValues("test-get-set", "false")))
	require.Equal(t, float64(1), testutil.ToFloat64(cacheSizeMetric.WithLabelValues("test-get-set")))
}

func TestResponseCache_Expiry(t *testing.T) {
	c := New("test-expiry", 100*time.Millisecond)
	c.Set("key", []byte("value"))

	// Reads must not extend the lifetime of an entry.
	time.Sleep(60 * time.Millisecond)
	_, ok := c.Get("key")
	require.True(t, ok)

	time.Sleep(60 * time.Millisecond)
	_, ok = c.Get("key")
	require.False(t, ok)

	c.DeleteExpired()
	require.Equal(t, 0, c.Len())
	require.Equal(t, float64(0), testutil.ToFloat64(cacheSizeMetric.WithLabelValues("test-expiry")))
}

func TestResponseCache_ConcurrentAccess(t *testing.T) {
	c := New("test-concurrent", time.Minute)

	const (
		workers = 8
		keys    = 50
	)

	var wg sync.WaitGroup

	for w := range workers {
		wg.Add(1)

		go func(worker int) {
			defer wg.Done()

			for i := range keys {
				key := fmt.Sprintf("key-%d", i)
				c.Set(key, []byte(key))

				got, ok := c.Get(key)
				if ok && string(got) != key {
					t.Errorf("worker %d read %q for %s", worker, got, key)
				}

				c.DeleteExpired()
				_ = c.Len()
			}
		}(w)
	}

	wg.Wait()

	require.Equal(t, keys, c.Len())

	for i := range keys {
		key := fmt.Sprintf("key-%d", i)
		got, ok := c.Get(key)
		require.True(t, ok)
		require.Equal(t, []byte(key), got)
	}
}
