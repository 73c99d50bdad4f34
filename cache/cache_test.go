package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, opts Options) *Manager {
	t.Helper()
	if opts.Dir == "" {
		opts.Dir = t.TempDir()
	}
	if opts.MaxAge == 0 {
		opts.MaxAge = 10 * time.Minute
	}
	return NewManager(opts)
}

func TestKeyIsOrderInsensitive(t *testing.T) {
	a := Key("subnet", []string{"eu-west-1", "us-east-1"}, []string{"prod", "dev"})
	b := Key("subnet", []string{"us-east-1", "eu-west-1"}, []string{"dev", "prod"})
	assert.Equal(t, a, b)

	c := Key("vpc", []string{"eu-west-1", "us-east-1"}, []string{"prod", "dev"})
	assert.NotEqual(t, a, c, "resource type is part of the key")
}

func TestPutGetRoundTrip(t *testing.T) {
	m := newTestManager(t, Options{Enabled: true})
	key := Key("subnet", []string{"eu-west-1"}, []string{"default"})

	payload := json.RawMessage(`[{"id":"subnet-1"}]`)
	require.NoError(t, m.Put(key, payload))

	entry, ok := m.Get(key)
	require.True(t, ok)
	assert.JSONEq(t, string(payload), string(entry.Payload))
	assert.Equal(t, key, entry.Key)
}

func TestGetMissesWhenExpired(t *testing.T) {
	current := time.Now()
	m := newTestManager(t, Options{
		Enabled: true,
		MaxAge:  time.Minute,
		Now:     func() time.Time { return current },
	})

	key := Key("vpc", []string{"eu-west-1"}, []string{"default"})
	require.NoError(t, m.Put(key, json.RawMessage(`[]`)))

	_, ok := m.Get(key)
	assert.True(t, ok, "fresh entry should hit")

	current = current.Add(2 * time.Minute)
	_, ok = m.Get(key)
	assert.False(t, ok, "expired entry should miss")
}

func TestGetMissesOnEnvDrift(t *testing.T) {
	t.Setenv("AWSVARS_TEST_ENV", "one")

	dir := t.TempDir()
	m := newTestManager(t, Options{Enabled: true, Dir: dir, EnvVars: []string{"AWSVARS_TEST_ENV"}})
	key := Key("subnet", []string{"eu-west-1"}, []string{"default"})
	require.NoError(t, m.Put(key, json.RawMessage(`[]`)))

	_, ok := m.Get(key)
	assert.True(t, ok)

	// A later run with a changed watched variable must miss.
	t.Setenv("AWSVARS_TEST_ENV", "two")
	m2 := newTestManager(t, Options{Enabled: true, Dir: dir, EnvVars: []string{"AWSVARS_TEST_ENV"}})
	_, ok = m2.Get(key)
	assert.False(t, ok)
}

func TestGetMissesWhenWatchedVarBecameUnset(t *testing.T) {
	t.Setenv("AWSVARS_TEST_UNSET", "set")

	dir := t.TempDir()
	m := newTestManager(t, Options{Enabled: true, Dir: dir, EnvVars: []string{"AWSVARS_TEST_UNSET"}})
	key := Key("subnet", []string{"eu-west-1"}, []string{"default"})
	require.NoError(t, m.Put(key, json.RawMessage(`[]`)))

	require.NoError(t, os.Unsetenv("AWSVARS_TEST_UNSET"))
	m2 := newTestManager(t, Options{Enabled: true, Dir: dir, EnvVars: []string{"AWSVARS_TEST_UNSET"}})
	_, ok := m2.Get(key)
	assert.False(t, ok, "unset watched variable is a mismatch")
}

func TestDisabledCacheNeverHitsNeverWrites(t *testing.T) {
	dir := t.TempDir()

	enabled := newTestManager(t, Options{Enabled: true, Dir: dir})
	key := Key("subnet", []string{"eu-west-1"}, []string{"default"})
	require.NoError(t, enabled.Put(key, json.RawMessage(`[]`)))

	disabled := newTestManager(t, Options{Enabled: false, Dir: dir})
	_, ok := disabled.Get(key)
	assert.False(t, ok, "disabled cache must miss even with a valid entry on disk")

	require.NoError(t, disabled.Put("other", json.RawMessage(`[]`)))
	_, err := os.Stat(filepath.Join(dir, "other.json"))
	assert.True(t, os.IsNotExist(err), "disabled cache must not write")
}

func TestCorruptEntryIsAMiss(t *testing.T) {
	dir := t.TempDir()
	m := newTestManager(t, Options{Enabled: true, Dir: dir})
	key := Key("subnet", []string{"eu-west-1"}, []string{"default"})

	require.NoError(t, os.WriteFile(filepath.Join(dir, key+".json"), []byte("{not json"), 0o600))

	_, ok := m.Get(key)
	assert.False(t, ok)
}

func TestPutReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	m := newTestManager(t, Options{Enabled: true, Dir: dir})
	key := Key("subnet", []string{"eu-west-1"}, []string{"default"})

	require.NoError(t, m.Put(key, json.RawMessage(`["old"]`)))
	require.NoError(t, m.Put(key, json.RawMessage(`["new"]`)))

	entry, ok := m.Get(key)
	require.True(t, ok)
	assert.JSONEq(t, `["new"]`, string(entry.Payload))

	// No temp files survive a completed write.
	leftovers, err := filepath.Glob(filepath.Join(dir, "*.tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestFlush(t *testing.T) {
	m := newTestManager(t, Options{Enabled: true})
	key := Key("subnet", []string{"eu-west-1"}, []string{"default"})
	require.NoError(t, m.Put(key, json.RawMessage(`[]`)))

	require.NoError(t, m.Flush())

	_, ok := m.Get(key)
	assert.False(t, ok)
}
