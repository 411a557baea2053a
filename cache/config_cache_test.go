package cache

import (
	"errors"
	"testing"

	"modguard/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMissFetchesAndCaches(t *testing.T) {
	fetches := 0
	c := New(func(guildID string) (*model.GuildConfig, error) {
		fetches++
		return &model.GuildConfig{GuildID: guildID, TimeoutLogEnabled: true}, nil
	})

	config, err := c.Get("g1")
	require.NoError(t, err)
	assert.Equal(t, "g1", config.GuildID)
	assert.Equal(t, 1, fetches)

	// Second get must be served from the cache.
	_, err = c.Get("g1")
	require.NoError(t, err)
	assert.Equal(t, 1, fetches)
}

func TestGetAfterSetReturnsExactlyThatConfigWithoutStoreRead(t *testing.T) {
	c := New(func(guildID string) (*model.GuildConfig, error) {
		t.Fatalf("store must not be read after Set, got fetch for %s", guildID)
		return nil, nil
	})

	want := &model.GuildConfig{GuildID: "g1", BanLogEnabled: true, BanLogChannelID: "C1"}
	c.Set("g1", want)

	got, err := c.Get("g1")
	require.NoError(t, err)
	assert.Same(t, want, got)
}

func TestGetPropagatesStoreError(t *testing.T) {
	storeErr := errors.New("store down")
	fetches := 0
	c := New(func(guildID string) (*model.GuildConfig, error) {
		fetches++
		return nil, storeErr
	})

	_, err := c.Get("g1")
	assert.ErrorIs(t, err, storeErr)

	// A failed fetch must not be cached.
	_, err = c.Get("g1")
	assert.ErrorIs(t, err, storeErr)
	assert.Equal(t, 2, fetches)
}

func TestClearForcesRefetch(t *testing.T) {
	fetches := 0
	c := New(func(guildID string) (*model.GuildConfig, error) {
		fetches++
		return &model.GuildConfig{GuildID: guildID}, nil
	})

	_, err := c.Get("g1")
	require.NoError(t, err)
	c.Clear("g1")
	_, err = c.Get("g1")
	require.NoError(t, err)
	assert.Equal(t, 2, fetches)
}

func TestClearAllDropsEveryEntry(t *testing.T) {
	fetches := 0
	c := New(func(guildID string) (*model.GuildConfig, error) {
		fetches++
		return &model.GuildConfig{GuildID: guildID}, nil
	})

	_, _ = c.Get("g1")
	_, _ = c.Get("g2")
	c.ClearAll()
	_, _ = c.Get("g1")
	_, _ = c.Get("g2")
	assert.Equal(t, 4, fetches)
}

func TestSetOverwritesCachedEntry(t *testing.T) {
	c := New(func(guildID string) (*model.GuildConfig, error) {
		return &model.GuildConfig{GuildID: guildID, TimeoutLogChannelID: "old"}, nil
	})

	_, err := c.Get("g1")
	require.NoError(t, err)

	updated := &model.GuildConfig{GuildID: "g1", TimeoutLogChannelID: "new"}
	c.Set("g1", updated)

	got, err := c.Get("g1")
	require.NoError(t, err)
	assert.Equal(t, "new", got.TimeoutLogChannelID)
}
