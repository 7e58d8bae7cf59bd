package equiledger

import (
	"sync"
	"time"

	"github.com/equiledger/equiledger/cache"
	"github.com/equiledger/equiledger/schema"
)

// Cache holds the hot supply snapshot plus a bigcache for paged read
// responses. The snapshot is refreshed by a gocron tick and after boot.
type Cache struct {
	lock     sync.RWMutex
	snapshot schema.SupplySnapshot

	local *cache.Cache
}

func NewCache() *Cache {
	localCache, err := cache.NewLocalCache(2 * time.Minute)
	if err != nil {
		panic(err)
	}
	return &Cache{local: localCache}
}

func (c *Cache) GetSnapshot() schema.SupplySnapshot {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.snapshot
}

func (c *Cache) UpdateSnapshot(snap schema.SupplySnapshot) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.snapshot = snap
}

func (c *Cache) GetResp(key string) ([]byte, error) {
	return c.local.Cache.Get(key)
}

func (c *Cache) SetResp(key string, body []byte) error {
	return c.local.Cache.Set(key, body)
}
