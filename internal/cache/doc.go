// Package cache provides the bounded LRU cache used for memoized text
// layout.
//
//	c := cache.New[string, *Layout](256)
//	layout := c.GetOrCreate(key, func() *Layout { return shape(key) })
//
// A capacity of 0 means unlimited. Cache is safe for concurrent use and
// must not be copied after creation.
package cache
