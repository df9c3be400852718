package common

import (
	"fmt"
	"strings"
	"time"

	"notionflow/server/internal/constants"
	"notionflow/server/internal/models/entities"
)

func GetResponseTime(init time.Time) string {
	timeDiff := time.Since(init).Milliseconds()
	return fmt.Sprintf("%dms", timeDiff)
}

func GetKeysStringMap(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// ConnectionCacheKey builds the cache key for a user's platform connection
func ConnectionCacheKey(userID string, platform constants.Platform) string {
	return string(constants.CachePrefixConnection) + userID + ":" + string(platform)
}

func GetConnectionFromCache(c *CacheService, userID string, platform constants.Platform) *entities.PlatformConnection {
	val, found := c.Get(ConnectionCacheKey(userID, platform))
	if !found {
		return nil
	}

	if conn, ok := val.(entities.PlatformConnection); ok {
		return &conn
	}
	return nil
}

func GetCalendarListFromCache(c *CacheService, userID string) []string {
	val, found := c.Get(string(constants.CachePrefixCalendarList) + userID)
	if !found {
		return nil
	}

	if calendars, ok := val.([]string); ok {
		return calendars
	}
	return nil
}

// ParsePlatformTime converts strings like
// "2025-07-27T09:57:51Z"  →  time.Time (UTC)
func ParsePlatformTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// ShortPlatformLabel returns a compact display label for a platform
func ShortPlatformLabel(platform constants.Platform) string {
	name := string(platform)
	if len(name) > 4 {
		return strings.ToUpper(name[:4])
	}
	return strings.ToUpper(name)
}
