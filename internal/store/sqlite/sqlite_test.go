package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sliderCaptchaAuth/pkg/puzzle"
)

var (
	_ puzzle.Store   = (*Store)(nil)
	_ puzzle.Swapper = (*Store)(nil)
)

func openTestStore(t *testing.T, ttl time.Duration) (*Store, *time.Time) {
	t.Helper()
	s, err := Open(":memory:", ttl)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	return s, &now
}

func TestSetGetDelete(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t, time.Minute)

	_, ok, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "a", "120"))
	require.NoError(t, s.Set(ctx, "a", "130"))
	v, ok, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "130", v)

	require.NoError(t, s.Delete(ctx, "a"))
	_, ok, err = s.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExpiryAndSweep(t *testing.T) {
	ctx := context.Background()
	s, now := openTestStore(t, time.Minute)
	require.NoError(t, s.Set(ctx, "a", "120"))

	*now = now.Add(2 * time.Minute)
	require.NoError(t, s.Set(ctx, "b", "60"))

	_, ok, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	swapped, err := s.CompareAndSwap(ctx, "a", "120", puzzle.Sentinel)
	require.NoError(t, err)
	assert.False(t, swapped, "expired challenges cannot be verified")

	n, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, ok, err = s.Get(ctx, "b")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t, 0)
	require.NoError(t, s.Set(ctx, "a", "120"))

	ok, err := s.CompareAndSwap(ctx, "a", "100", puzzle.Sentinel)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.CompareAndSwap(ctx, "a", "120", puzzle.Sentinel)
	require.NoError(t, err)
	assert.True(t, ok)

	v, _, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, puzzle.Sentinel, v)
}

func TestMarkVerified(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t, time.Minute)
	require.NoError(t, s.Set(ctx, "a", "120"))
	require.NoError(t, s.MarkVerified(ctx, "a", puzzle.Sentinel))

	v, ok, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, puzzle.Sentinel, v)
}

func TestConcurrentVerify(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t, time.Minute)
	require.NoError(t, s.Set(ctx, "id", "150"))
	v := puzzle.NewVerifier(s)

	var wg sync.WaitGroup
	results := make([]puzzle.Result, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = v.Verify(ctx, "id", "145")
		}(i)
	}
	wg.Wait()

	for _, res := range results {
		assert.True(t, res.Success, res.Reason)
	}
}

func TestOpenFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "captcha.db")

	s, err := Open(path, time.Hour)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "a", "99"))
	require.NoError(t, s.Close())

	s, err = Open(path, time.Hour)
	require.NoError(t, err)
	defer s.Close()
	v, ok, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "99", v)
}
