// Package cache provides content-addressed memoization of per-PR,
// per-algorithm recommendation results. Entries are keyed by a fingerprint of
// the exact computation inputs, never by modification time, so any upstream
// data or algorithm change invalidates stale entries naturally.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"

	"github.com/sevigo/review-scout/internal/core"
)

const (
	dirPerms  = 0o700
	filePerms = 0o600
)

// ScoreCache is a two-tier (memory + disk) implementation of core.ScoreCache.
// An unusable backing directory degrades the cache to memory-only; a
// corrupted entry degrades to a miss. Neither condition is ever fatal.
type ScoreCache struct {
	dir     string
	bypass  bool
	enabled bool
	logger  *slog.Logger

	mu    sync.RWMutex
	mem   map[string]*core.RecommendationResult
	group singleflight.Group
}

// New creates a score cache rooted at dir. An empty dir disables disk
// persistence. With bypass set, every call misses and recomputes; stored
// entries are left untouched.
func New(dir string, bypass bool, logger *slog.Logger) *ScoreCache {
	c := &ScoreCache{
		dir:     dir,
		bypass:  bypass,
		enabled: dir != "",
		logger:  logger,
		mem:     make(map[string]*core.RecommendationResult),
	}
	if c.enabled {
		if err := os.MkdirAll(dir, dirPerms); err != nil {
			logger.Warn("cache directory unavailable, falling back to memory-only",
				"dir", dir, "error", fmt.Errorf("%w: %v", core.ErrCacheUnavailable, err))
			c.enabled = false
		}
	}
	return c
}

// GetOrCompute implements core.ScoreCache. Concurrent callers of the same key
// share a single computation; distinct keys compute concurrently.
func (c *ScoreCache) GetOrCompute(ctx context.Context, key core.CacheKey, compute func() (*core.RecommendationResult, error)) (*core.RecommendationResult, error) {
	if c.bypass {
		result, err := compute()
		if err != nil {
			return nil, err
		}
		result.Fingerprint = key.Fingerprint
		return result, nil
	}

	id := c.keyString(key)
	v, err, _ := c.group.Do(id, func() (any, error) {
		if cached, ok := c.lookup(key, id); ok {
			return cached, nil
		}
		result, err := compute()
		if err != nil {
			return nil, err
		}
		result.Fingerprint = key.Fingerprint
		c.store(key, id, result)
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return v.(*core.RecommendationResult), nil
}

// lookup checks memory first, then disk. A disk hit is promoted to memory.
func (c *ScoreCache) lookup(key core.CacheKey, id string) (*core.RecommendationResult, bool) {
	c.mu.RLock()
	cached, ok := c.mem[id]
	c.mu.RUnlock()
	if ok {
		return cached, true
	}

	if !c.enabled {
		return nil, false
	}

	data, err := os.ReadFile(c.entryPath(key))
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("cache entry unreadable, recomputing", "key", id, "error", err)
		}
		return nil, false
	}

	var result core.RecommendationResult
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Warn("cache entry corrupted, recomputing", "key", id, "error", err)
		return nil, false
	}
	// The file name carries only a fingerprint prefix; the entry must match
	// the full fingerprint.
	if result.Fingerprint != key.Fingerprint {
		return nil, false
	}

	c.mu.Lock()
	c.mem[id] = &result
	c.mu.Unlock()
	return &result, true
}

// store writes the entry to memory and, when enabled, to disk.
func (c *ScoreCache) store(key core.CacheKey, id string, result *core.RecommendationResult) {
	c.mu.Lock()
	c.mem[id] = result
	c.mu.Unlock()

	if !c.enabled {
		return
	}

	path := c.entryPath(key)
	if err := os.MkdirAll(filepath.Dir(path), dirPerms); err != nil {
		c.logger.Warn("failed to create cache subdirectory", "path", path, "error", err)
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Warn("failed to encode cache entry", "key", id, "error", err)
		return
	}
	if err := os.WriteFile(path, data, filePerms); err != nil {
		c.logger.Warn("failed to persist cache entry", "key", id, "error", err)
	}
}

// keyString is the singleflight and memory-map identity of a key.
func (c *ScoreCache) keyString(key core.CacheKey) string {
	return fmt.Sprintf("%s|%s|%d|%s", key.Repo.DirName(), key.Algorithm, key.PRNumber, key.Fingerprint)
}

// entryPath maps a key onto its backing file. The fingerprint prefix keeps
// file names short while the full fingerprint inside the entry guards
// against collisions.
func (c *ScoreCache) entryPath(key core.CacheKey) string {
	fp := key.Fingerprint
	if len(fp) > 16 {
		fp = fp[:16]
	}
	name := fmt.Sprintf("%d-%s.json", key.PRNumber, fp)
	return filepath.Join(c.dir, key.Repo.DirName(), key.Algorithm, name)
}
