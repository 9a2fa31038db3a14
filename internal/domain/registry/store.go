package registry

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/zstd"

	"github.com/GriffinCanCode/bundlekit/internal/domain/bundle"
	"github.com/GriffinCanCode/bundlekit/internal/shared/id"
)

const (
	// DefaultStoreCacheSize is the number of snapshots kept in memory when no size is given
	DefaultStoreCacheSize = 256

	snapshotExt = ".snap.zst"
)

// ErrSnapshotNotFound is returned when no snapshot is stored for a bundle
var ErrSnapshotNotFound = errors.New("snapshot not found")

// StoredSnapshot is the persisted form of a bundle
type StoredSnapshot struct {
	Revision id.RevisionID  `json:"revision"`
	SavedAt  time.Time       `json:"saved_at"`
	Snapshot bundle.Snapshot `json:"snapshot"`
}

// Store persists bundle snapshots as zstd-compressed JSON files, one per bundle
type Store struct {
	dir       string
	cache     sync.Map // bundle name -> *StoredSnapshot
	cacheSize int64    // Atomic counter for cache size
	maxCache  int64
	evicting  int32 // Atomic flag to prevent concurrent evictions

	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewStore creates a store rooted at dir, creating the directory if needed
func NewStore(dir string, cacheSize int) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	if cacheSize <= 0 {
		cacheSize = DefaultStoreCacheSize
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	return &Store{
		dir:      dir,
		maxCache: int64(cacheSize),
		encoder:  encoder,
		decoder:  decoder,
	}, nil
}

// Close releases the codec resources
func (s *Store) Close() {
	s.decoder.Close()
	_ = s.encoder.Close()
}

// Save writes a new revision of the bundle's snapshot
func (s *Store) Save(ctx context.Context, snap bundle.Snapshot) (*StoredSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := snap.App.BundleName
	if name == "" {
		return nil, fmt.Errorf("snapshot bundle name is required")
	}

	stored := &StoredSnapshot{
		Revision: id.NewRevisionID(),
		SavedAt:  time.Now().UTC(),
		Snapshot: snap,
	}
	data, err := sonic.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	// Write to a temporary file first so readers never see a partial snapshot
	path := s.path(name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, s.encoder.EncodeAll(data, nil), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return nil, fmt.Errorf("failed to commit snapshot: %w", err)
	}

	s.remember(name, stored)
	return stored, nil
}

// Load returns the latest snapshot of a bundle
func (s *Store) Load(ctx context.Context, name string) (*StoredSnapshot, error) {
	if cached, ok := s.cache.Load(name); ok {
		return cached.(*StoredSnapshot), nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	compressed, err := os.ReadFile(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	data, err := s.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress snapshot %s: %w", name, err)
	}

	var stored StoredSnapshot
	if err := sonic.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot %s: %w", name, err)
	}
	if stored.Snapshot.App.BundleName != name {
		return nil, fmt.Errorf("snapshot %s holds bundle %q", name, stored.Snapshot.App.BundleName)
	}

	s.remember(name, &stored)
	return &stored, nil
}

// Delete removes the bundle's snapshot. Deleting a missing snapshot is not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(s.path(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	if _, existed := s.cache.LoadAndDelete(name); existed {
		atomic.AddInt64(&s.cacheSize, -1)
	}
	return nil
}

// List returns the names of every stored bundle in ascending order
func (s *Store) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), snapshotExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), snapshotExt))
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) remember(name string, stored *StoredSnapshot) {
	if _, existed := s.cache.Swap(name, stored); !existed {
		if atomic.AddInt64(&s.cacheSize, 1) > s.maxCache {
			s.evictCacheEntries()
		}
	}
}

// evictCacheEntries drops entries once the cache grows past its limit.
// Only one goroutine evicts at a time.
func (s *Store) evictCacheEntries() {
	if !atomic.CompareAndSwapInt32(&s.evicting, 0, 1) {
		return
	}
	defer atomic.StoreInt32(&s.evicting, 0)

	current := atomic.LoadInt64(&s.cacheSize)
	if current <= s.maxCache {
		return
	}

	// sync.Map has no order, so eviction is pseudo-random; files stay authoritative
	target := current - s.maxCache
	var evicted int64
	s.cache.Range(func(key, _ any) bool {
		if evicted >= target {
			return false
		}
		if _, ok := s.cache.LoadAndDelete(key); ok {
			evicted++
		}
		return true
	})
	atomic.AddInt64(&s.cacheSize, -evicted)
}

// cached returns the number of snapshots held in memory
func (s *Store) cached() int64 {
	return atomic.LoadInt64(&s.cacheSize)
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+snapshotExt)
}
