package bluele_cache

import (
	"time"

	bl "github.com/bluele/gcache"

	"github.com/hust-tianbo/go_bitmap/cache/bitmap/bitmap_scanner"
	"github.com/hust-tianbo/go_bitmap/log"
)

var defaultCapacity = 4096

// RangeCache 缓存扫描结果，key 由调用方保证与位图内容一一对应（例如文件名+版本）
type RangeCache struct {
	D bl.Cache
}

func NewRangeCacheLRU() *RangeCache {
	return NewRangeCacheLRUWithCapacity(defaultCapacity)
}

func NewRangeCacheLRUWithCapacity(capacity int) *RangeCache {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &RangeCache{D: bl.New(capacity).LRU().Build()}
}

func (rc *RangeCache) Add(key string, ranges []bitmap_scanner.Range) error {
	return rc.D.Set(key, ranges)
}

func (rc *RangeCache) AddWithExpire(key string, ranges []bitmap_scanner.Range, lifeSpan time.Duration) error {
	return rc.D.SetWithExpire(key, ranges, lifeSpan)
}

func (rc *RangeCache) Get(key string) ([]bitmap_scanner.Range, bool) {
	v, err := rc.D.Get(key)
	if err != nil {
		return nil, false
	}
	ranges, ok := v.([]bitmap_scanner.Range)
	return ranges, ok
}

// Ranges 命中则直接返回，否则扫描一次并写入缓存
func (rc *RangeCache) Ranges(key string, sc *bitmap_scanner.Scanner) []bitmap_scanner.Range {
	if ranges, ok := rc.Get(key); ok {
		return ranges
	}

	ranges := sc.Collect()
	if err := rc.Add(key, ranges); err != nil {
		log.Warnf("[RangeCache]add key:%s fail:%v", key, err)
	}
	return ranges
}

func (rc *RangeCache) Remove(key string) bool {
	return rc.D.Remove(key)
}

func (rc *RangeCache) Len() int {
	return rc.D.Len(false)
}

func (rc *RangeCache) Clear() {
	rc.D.Purge()
}
