package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndGet(t *testing.T) {
	c := New(time.Second)

	c.Set("key", 42)

	value, found := c.Get("key")
	require.True(t, found)
	assert.Equal(t, 42, value)
}

func TestGetMissing(t *testing.T) {
	c := New(time.Second)

	_, found := c.Get("nope")
	assert.False(t, found)
}

func TestExpiry(t *testing.T) {
	c := New(20 * time.Millisecond)

	c.Set("key", "value")
	time.Sleep(40 * time.Millisecond)

	_, found := c.Get("key")
	assert.False(t, found)
}

func TestGetOrSet_ComputesOnce(t *testing.T) {
	c := New(time.Second)

	calls := 0
	fn := func() (interface{}, error) {
		calls++
		return "computed", nil
	}

	value, err := c.GetOrSet("key", fn)
	require.NoError(t, err)
	assert.Equal(t, "computed", value)

	value, err = c.GetOrSet("key", fn)
	require.NoError(t, err)
	assert.Equal(t, "computed", value)
	assert.Equal(t, 1, calls)
}

func TestClose_Idempotent(t *testing.T) {
	c := New(time.Second)

	c.Set("key", "value")
	c.Close()
	c.Close()

	// The cache stays usable after the sweep stops
	value, found := c.Get("key")
	require.True(t, found)
	assert.Equal(t, "value", value)

	c.Set("other", 1)
	_, found = c.Get("other")
	assert.True(t, found)
}

func TestGetOrSet_ErrorNotCached(t *testing.T) {
	c := New(time.Second)

	_, err := c.GetOrSet("key", func() (interface{}, error) {
		return nil, errors.New("boom")
	})
	assert.Error(t, err)

	_, found := c.Get("key")
	assert.False(t, found)
}
