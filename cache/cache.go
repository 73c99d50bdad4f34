// Package cache persists fetch results between runs, invalidated by
// age and by drift in watched environment variables.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Entry is one persisted cache slot. The environment snapshot is part
// of the stored entry and compared on read, not part of the key, so an
// invalidated slot is distinguishable from a different slot.
type Entry struct {
	Key         string            `json:"key"`
	FetchedAt   time.Time         `json:"fetched_at"`
	EnvSnapshot map[string]string `json:"env_snapshot,omitempty"`
	Payload     json.RawMessage   `json:"payload"`
}

// Options configures a Manager.
type Options struct {
	Dir     string
	MaxAge  time.Duration
	Enabled bool
	EnvVars []string
	Logger  zerolog.Logger

	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

// Manager reads and writes cache entries. The watched-environment
// snapshot is captured once at construction and threaded through, not
// read ad hoc.
type Manager struct {
	dir     string
	maxAge  time.Duration
	enabled bool
	envVars []string
	env     map[string]string
	logger  zerolog.Logger
	now     func() time.Time
}

// NewManager creates a cache manager rooted at opts.Dir.
func NewManager(opts Options) *Manager {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{
		dir:     opts.Dir,
		maxAge:  opts.MaxAge,
		enabled: opts.Enabled,
		envVars: opts.EnvVars,
		env:     SnapshotEnv(opts.EnvVars),
		logger:  opts.Logger,
		now:     now,
	}
}

// SnapshotEnv captures the current values of the watched environment
// variables. Unset variables are omitted so "unset" and "empty" stay
// distinguishable.
func SnapshotEnv(names []string) map[string]string {
	snapshot := make(map[string]string, len(names))
	for _, name := range names {
		if v, ok := os.LookupEnv(name); ok {
			snapshot[name] = v
		}
	}
	return snapshot
}

// Key derives the cache slot identity from the resource type and the
// configured region and profile sets. Sets are sorted so declaration
// order does not split slots.
func Key(resourceType string, regions, profiles []string) string {
	sortedRegions := append([]string(nil), regions...)
	sortedProfiles := append([]string(nil), profiles...)
	sort.Strings(sortedRegions)
	sort.Strings(sortedProfiles)

	h := sha256.New()
	fmt.Fprintf(h, "%s\n%s\n%s", resourceType, strings.Join(sortedRegions, ","), strings.Join(sortedProfiles, ","))
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the entry for key when it is both fresh and written
// under an identical environment snapshot. A disabled cache always
// misses. Corrupt or unreadable entries are logged and reported as a
// miss, never as a failure.
func (m *Manager) Get(key string) (*Entry, bool) {
	if !m.enabled {
		return nil, false
	}

	data, err := os.ReadFile(m.path(key))
	if err != nil {
		if !os.IsNotExist(err) {
			m.logger.Warn().Err(err).Str("key", key).Msg("failed to read cache entry, treating as miss")
		}
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		m.logger.Warn().Err(err).Str("key", key).Msg("corrupt cache entry, treating as miss")
		return nil, false
	}

	if m.now().Sub(entry.FetchedAt) > m.maxAge {
		m.logger.Debug().Str("key", key).Msg("cache entry expired")
		return nil, false
	}

	if !maps.Equal(m.restrict(entry.EnvSnapshot), m.env) {
		m.logger.Debug().Str("key", key).Msg("watched environment changed, cache entry invalid")
		return nil, false
	}

	return &entry, true
}

// Put persists payload under key. The write is atomic: the entry is
// written to a temp file in the cache directory and renamed over the
// previous one, so a concurrent reader never observes a partial entry.
// A disabled cache writes nothing.
func (m *Manager) Put(key string, payload json.RawMessage) error {
	if !m.enabled {
		return nil
	}

	entry := Entry{
		Key:         key,
		FetchedAt:   m.now(),
		EnvSnapshot: m.env,
		Payload:     payload,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	if err := os.MkdirAll(m.dir, 0o700); err != nil {
		return fmt.Errorf("failed to create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(m.dir, key+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp cache file: %w", err)
	}

	if err := os.Rename(tmp.Name(), m.path(key)); err != nil {
		return fmt.Errorf("failed to replace cache entry: %w", err)
	}
	return nil
}

// Flush removes every cache entry.
func (m *Manager) Flush() error {
	entries, err := filepath.Glob(filepath.Join(m.dir, "*.json"))
	if err != nil {
		return fmt.Errorf("failed to list cache entries: %w", err)
	}
	for _, path := range entries {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove cache entry %s: %w", path, err)
		}
	}
	return nil
}

// restrict drops snapshot keys that are not watched, so entries
// written under an older cache_env_vars config compare correctly.
func (m *Manager) restrict(snapshot map[string]string) map[string]string {
	restricted := make(map[string]string, len(m.envVars))
	for _, name := range m.envVars {
		if v, ok := snapshot[name]; ok {
			restricted[name] = v
		}
	}
	return restricted
}

func (m *Manager) path(key string) string {
	return filepath.Join(m.dir, key+".json")
}
