package config

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
)

var (
	// StatsCache holds the admin dashboard aggregate.
	StatsCache *cache.Cache
	// RouteCache holds the route list; flushed on every route write.
	RouteCache *cache.Cache
)

func InitCache(statsTTL time.Duration) {
	if statsTTL <= 0 {
		statsTTL = 30 * time.Second
	}
	StatsCache = cache.New(statsTTL, 2*statsTTL)
	RouteCache = cache.New(10*time.Minute, 20*time.Minute)
}

func ClearAllCaches() {
	if StatsCache != nil {
		StatsCache.Flush()
	}
	if RouteCache != nil {
		RouteCache.Flush()
	}
}

func GetCacheKey(prefix string, params ...any) string {
	key := prefix
	for _, p := range params {
		key += ":" + fmt.Sprintf("%v", p)
	}
	return key
}
