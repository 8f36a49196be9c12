package gridio

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeGate struct {
	acquireErr error
	acquires   atomic.Int64
	releases   atomic.Int64
}

func (g *fakeGate) AcquireFile(ctx context.Context) error {
	g.acquires.Add(1)
	return g.acquireErr
}
func (g *fakeGate) ReleaseFile() { g.releases.Add(1) }

type passthroughValidator struct{}

func (passthroughValidator) ValidateOpenPath(path string) (string, error) { return path, nil }

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestGetOrOpenByPathCachesHandle(t *testing.T) {
	dir := t.TempDir()
	p := writeCSV(t, dir, "sample.csv", "a,b\n1,2\n")

	gate := &fakeGate{}
	m := NewManager(2*time.Second, time.Second, gate, passthroughValidator{}, time.Now)

	id1, canonical1, err := m.GetOrOpenByPath(context.Background(), p, "")
	require.NoError(t, err)
	require.NotEmpty(t, id1)
	require.Equal(t, p, canonical1)
	require.Equal(t, int64(1), gate.acquires.Load())
	require.Equal(t, 1, m.Count())

	id2, _, err := m.GetOrOpenByPath(context.Background(), p, "")
	require.NoError(t, err)
	require.Equal(t, id1, id2)
	require.Equal(t, int64(1), gate.acquires.Load()) // no second acquire, cache hit

	err = m.WithGrid(id1, func(grid [][]string, version int64) error {
		require.Equal(t, []string{"a", "b"}, grid[0])
		require.NotZero(t, version)
		return nil
	})
	require.NoError(t, err)
}

func TestCloseHandleReleasesGate(t *testing.T) {
	dir := t.TempDir()
	p := writeCSV(t, dir, "sample.csv", "a\n1\n")

	gate := &fakeGate{}
	m := NewManager(2*time.Second, time.Second, gate, passthroughValidator{}, time.Now)

	id, _, err := m.GetOrOpenByPath(context.Background(), p, "")
	require.NoError(t, err)

	require.NoError(t, m.CloseHandle(id))
	require.Equal(t, 0, m.Count())
	require.Equal(t, int64(1), gate.releases.Load())

	require.ErrorIs(t, m.CloseHandle(id), ErrHandleNotFound)
}

func TestEvictExpired(t *testing.T) {
	dir := t.TempDir()
	p := writeCSV(t, dir, "sample.csv", "a\n1\n")

	var now atomic.Int64
	now.Store(time.Now().UnixNano())
	clock := func() time.Time { return time.Unix(0, now.Load()) }

	gate := &fakeGate{}
	m := NewManager(50*time.Millisecond, 5*time.Millisecond, gate, passthroughValidator{}, clock)

	_, _, err := m.GetOrOpenByPath(context.Background(), p, "")
	require.NoError(t, err)
	require.Equal(t, 1, m.Count())

	now.Store(time.Now().Add(200 * time.Millisecond).UnixNano())
	m.EvictExpired()

	require.Equal(t, 0, m.Count())
	require.Equal(t, int64(1), gate.releases.Load())
}
