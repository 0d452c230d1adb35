// Package cache provides caching for rendered grid images and report
// summaries.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/hexgrid/server/internal/hexgrid"
)

// Config contains cache configuration.
type Config struct {
	RenderCacheSizeMB int
	RenderTTL         time.Duration
	SummaryCacheSize  int
}

// Manager holds the render and summary caches. Both are safe for
// concurrent use; the pipeline stays correct without them, they only
// avoid redundant recomputation.
type Manager struct {
	renderCache  *bigcache.BigCache
	summaryCache *lru.Cache[string, []byte]
}

// NewManager creates a cache manager.
func NewManager(cfg Config) (*Manager, error) {
	renderConfig := bigcache.Config{
		Shards:             256,
		LifeWindow:         cfg.RenderTTL,
		CleanWindow:        cfg.RenderTTL / 2,
		MaxEntriesInWindow: 10000,
		MaxEntrySize:       512 * 1024, // rendered grids are larger than map tiles
		HardMaxCacheSize:   cfg.RenderCacheSizeMB,
		Verbose:            false,
	}

	renderCache, err := bigcache.New(context.Background(), renderConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create render cache: %w", err)
	}

	summaryCache, err := lru.New[string, []byte](cfg.SummaryCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create summary cache: %w", err)
	}

	return &Manager{
		renderCache:  renderCache,
		summaryCache: summaryCache,
	}, nil
}

// GetRender retrieves a rendered image from cache.
func (m *Manager) GetRender(key string) ([]byte, bool) {
	data, err := m.renderCache.Get(key)
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetRender stores a rendered image.
func (m *Manager) SetRender(key string, data []byte) error {
	return m.renderCache.Set(key, data)
}

// GetSummary retrieves a cached summary.
func (m *Manager) GetSummary(key string) ([]byte, bool) {
	return m.summaryCache.Get(key)
}

// SetSummary stores a summary.
func (m *Manager) SetSummary(key string, data []byte) {
	m.summaryCache.Add(key, data)
}

// RenderKey builds a content-hash key for one rendered unit. Hashing the
// full processing config keeps stale entries from outliving a config
// change.
func RenderKey(neuronType string, region hexgrid.Region, side hexgrid.Side, metric hexgrid.Metric, cfg hexgrid.ProcessingConfig, format string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%s|%s", neuronType, region, side, metric, format)
	if cfgJSON, err := json.Marshal(cfg); err == nil {
		h.Write(cfgJSON)
	}
	return fmt.Sprintf("render:%s/%s/%s:%s", region, side, metric, hex.EncodeToString(h.Sum(nil))[:16])
}

// SummaryKey builds a key for a report summary.
func SummaryKey(neuronType string, metric hexgrid.Metric) string {
	return "summary:" + neuronType + ":" + string(metric)
}

// Stats returns cache statistics.
func (m *Manager) Stats() map[string]interface{} {
	return map[string]interface{}{
		"render_cache_len":  m.renderCache.Len(),
		"render_cache_cap":  m.renderCache.Capacity(),
		"summary_cache_len": m.summaryCache.Len(),
	}
}

// Close closes the cache manager.
func (m *Manager) Close() error {
	return m.renderCache.Close()
}
