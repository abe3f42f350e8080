package feed

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

const (
	descriptionCacheMaxEntries = 1024
	descriptionCacheTTL        = 24 * time.Hour
)

// descriptionCache keeps generated descriptions so that an entry whose
// ingestion failed is not summarized again on the next import.
type descriptionCache struct {
	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List
	maxEntries int
}

type descriptionCacheEntry struct {
	key         string
	description string
	expiresAt   time.Time
}

func newDescriptionCache(maxEntries int) *descriptionCache {
	if maxEntries <= 0 {
		return nil
	}

	return &descriptionCache{
		entries:    make(map[string]*list.Element, maxEntries),
		order:      list.New(),
		maxEntries: maxEntries,
	}
}

func descriptionCacheKey(link string, content string) string {
	link = strings.TrimSpace(link)
	content = strings.TrimSpace(content)
	if link == "" || content == "" {
		return ""
	}

	hash := sha256.Sum256([]byte(content))

	return link + "|" + hex.EncodeToString(hash[:])
}

func (c *descriptionCache) get(key string, now time.Time) (string, bool) {
	if c == nil || key == "" {
		return "", false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return "", false
	}

	entry := elem.Value.(*descriptionCacheEntry) //nolint:forcetypeassert // Only entries are stored.
	if now.After(entry.expiresAt) {
		c.removeElement(elem)

		return "", false
	}

	c.order.MoveToFront(elem)

	return entry.description, true
}

func (c *descriptionCache) set(key string, description string, now time.Time) {
	if c == nil || key == "" || description == "" {
		return
	}

	expiresAt := now.Add(descriptionCacheTTL)

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		entry := elem.Value.(*descriptionCacheEntry) //nolint:forcetypeassert // Only entries are stored.
		entry.description = description
		entry.expiresAt = expiresAt
		c.order.MoveToFront(elem)

		return
	}

	c.entries[key] = c.order.PushFront(&descriptionCacheEntry{
		key:         key,
		description: description,
		expiresAt:   expiresAt,
	})

	c.evictExpiredLocked(now)

	for len(c.entries) > c.maxEntries {
		c.removeElement(c.order.Back())
	}
}

func (c *descriptionCache) evictExpiredLocked(now time.Time) {
	for elem := c.order.Back(); elem != nil; {
		prev := elem.Prev()

		if entry := elem.Value.(*descriptionCacheEntry); now.After(entry.expiresAt) { //nolint:forcetypeassert // Only entries are stored.
			c.removeElement(elem)
		}

		elem = prev
	}
}

func (c *descriptionCache) removeElement(elem *list.Element) {
	entry := elem.Value.(*descriptionCacheEntry) //nolint:forcetypeassert // Only entries are stored.

	delete(c.entries, entry.key)
	c.order.Remove(elem)
}
