package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/SAP-F-2025/quiz-generator/internal/storage"
)

const briefKeyPrefix = "quiz:brief:"

// BriefCache stores content briefs between runs. Load returns ErrCacheMiss
// when nothing usable is cached.
type BriefCache interface {
	Load(ctx context.Context, url string) (string, error)
	Store(ctx context.Context, url, brief string) error
}

// FileBriefCache keeps a single brief in one file regardless of URL. An empty
// file counts as a miss.
type FileBriefCache struct {
	Path  string
	store *storage.Store
}

func NewFileBriefCache(path string, store *storage.Store) *FileBriefCache {
	if store == nil {
		store = storage.New()
	}
	return &FileBriefCache{Path: path, store: store}
}

func (c *FileBriefCache) Load(ctx context.Context, _ string) (string, error) {
	data, err := c.store.Read(ctx, c.Path)
	if errors.Is(err, storage.ErrNotFound) {
		return "", ErrCacheMiss
	}
	if err != nil {
		return "", err
	}
	brief := string(data)
	if strings.TrimSpace(brief) == "" {
		return "", ErrCacheMiss
	}
	return brief, nil
}

func (c *FileBriefCache) Store(ctx context.Context, _ string, brief string) error {
	return c.store.Write(ctx, c.Path, []byte(brief))
}

// KeyedBriefCache stores one brief per URL in a CacheService.
type KeyedBriefCache struct {
	cache CacheService
	ttl   time.Duration
}

func NewKeyedBriefCache(cache CacheService, ttl time.Duration) *KeyedBriefCache {
	return &KeyedBriefCache{cache: cache, ttl: ttl}
}

func (c *KeyedBriefCache) Load(ctx context.Context, url string) (string, error) {
	var brief string
	if err := c.cache.Get(ctx, BriefKey(url), &brief); err != nil {
		return "", err
	}
	if strings.TrimSpace(brief) == "" {
		return "", ErrCacheMiss
	}
	return brief, nil
}

func (c *KeyedBriefCache) Store(ctx context.Context, url, brief string) error {
	return c.cache.Set(ctx, BriefKey(url), brief, c.ttl)
}

// Purge drops every cached brief.
func (c *KeyedBriefCache) Purge(ctx context.Context) error {
	return c.cache.DeletePattern(ctx, briefKeyPrefix+"*")
}

// BriefKey is the cache key for the brief of url.
func BriefKey(url string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(url)))
	return briefKeyPrefix + hex.EncodeToString(sum[:])
}
