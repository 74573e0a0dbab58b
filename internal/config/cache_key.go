package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SessionKey returns the cache key that marks a token's JTI as live.
func (r *CacheKeyStruct) SessionKey(jti string) string {
	return fmt.Sprintf("session:%s", jti)
}

// DashboardStatsKey returns the cache key for the admin dashboard aggregate.
func (r *CacheKeyStruct) DashboardStatsKey() string {
	return "dashboard:stats"
}

// ResultEventsChannel returns the Redis PubSub channel for result mutations.
func (r *CacheKeyStruct) ResultEventsChannel() string {
	return "results:events"
}

var CacheKey = NewCacheKeyStruct()
