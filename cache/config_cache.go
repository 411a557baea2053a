// Package cache holds the process-wide guild config cache. It exists to
// avoid a database round-trip on every gateway event; entries live until
// explicitly replaced or cleared, there is no TTL.
package cache

import (
	"sync"

	"modguard/model"
)

// FetchFunc loads a guild's config from the store on a cache miss.
type FetchFunc func(guildID string) (*model.GuildConfig, error)

// GuildConfigCache maps guild ids to config snapshots. Unlike the config
// store it is never authoritative: every write path must call Set or Clear
// for the touched guild. Access is guarded by a RWMutex since gateway and
// HTTP handlers run on separate goroutines.
//
// Concurrent Gets for the same cold guild may both fall through to the
// store; the read is idempotent and the last Set wins, so no per-key
// single-flight is needed.
type GuildConfigCache struct {
	mu      sync.RWMutex
	entries map[string]*model.GuildConfig
	fetch   FetchFunc
}

// New creates a cache backed by the given store fetch function.
func New(fetch FetchFunc) *GuildConfigCache {
	return &GuildConfigCache{
		entries: make(map[string]*model.GuildConfig),
		fetch:   fetch,
	}
}

// Get returns the cached config for the guild, fetching and caching it from
// the store on a miss. A store failure propagates without retry and caches
// nothing.
func (c *GuildConfigCache) Get(guildID string) (*model.GuildConfig, error) {
	c.mu.RLock()
	config, ok := c.entries[guildID]
	c.mu.RUnlock()
	if ok {
		return config, nil
	}

	config, err := c.fetch(guildID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[guildID] = config
	c.mu.Unlock()
	return config, nil
}

// Set unconditionally replaces the cached entry for the guild. Called right
// after a persisted write so cache and store agree.
func (c *GuildConfigCache) Set(guildID string, config *model.GuildConfig) {
	c.mu.Lock()
	c.entries[guildID] = config
	c.mu.Unlock()
}

// Clear removes the entry for one guild.
func (c *GuildConfigCache) Clear(guildID string) {
	c.mu.Lock()
	delete(c.entries, guildID)
	c.mu.Unlock()
}

// ClearAll drops every cached entry.
func (c *GuildConfigCache) ClearAll() {
	c.mu.Lock()
	c.entries = make(map[string]*model.GuildConfig)
	c.mu.Unlock()
}
