package crawler

import (
	"container/list"

	"github.com/xDarkicex/touchgraph/internal/graphpage"
)

// pageCache is a bounded LRU cache of decoded pages keyed by page id,
// used by the prefetching crawler so a page whose speculative fetch
// already landed need not be re-read (spec §4.9 "a bounded LRU-like
// cache keyed by page id"). Adapted from internal/memory.LRUCache:
// the mutex is dropped since one crawl runs on a single goroutine,
// and values are typed graphpage.Page rather than interface{}.
type pageCache struct {
	capacity int
	items    map[uint64]*list.Element
	order    *list.List
}

type cacheEntry struct {
	pageID uint64
	page   graphpage.Page
}

func newPageCache(capacity int) *pageCache {
	if capacity <= 0 {
		capacity = 1
	}
	return &pageCache{capacity: capacity, items: make(map[uint64]*list.Element), order: list.New()}
}

func (c *pageCache) get(pageID uint64) (graphpage.Page, bool) {
	elem, ok := c.items[pageID]
	if !ok {
		return graphpage.Page{}, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*cacheEntry).page, true
}

func (c *pageCache) put(pageID uint64, pg graphpage.Page) {
	if elem, ok := c.items[pageID]; ok {
		elem.Value.(*cacheEntry).page = pg
		c.order.MoveToFront(elem)
		return
	}
	elem := c.order.PushFront(&cacheEntry{pageID: pageID, page: pg})
	c.items[pageID] = elem
	if c.order.Len() > c.capacity {
		back := c.order.Back()
		c.order.Remove(back)
		delete(c.items, back.Value.(*cacheEntry).pageID)
	}
}
