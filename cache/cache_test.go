package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKey_Normalizes(t *testing.T) {
	assert.Equal(t, "https://marham.pk/doctors/lahore/dermatologist",
		Key("https://WWW.Marham.pk/doctors/lahore/dermatologist/#reviews"))
	assert.Equal(t, Key("https://www.marham.pk/dr/a"), Key("https://marham.pk/dr/a/"))
	assert.NotEqual(t, Key("https://marham.pk/x?page=1"), Key("https://marham.pk/x?page=2"))
}

func TestCache_RemembersNil(t *testing.T) {
	c := New[*string](0, 0)
	c.Set("k", nil)

	v, ok := c.Get("k")
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestCache_Reset(t *testing.T) {
	c := New[int](0, 0)
	c.Set("a", 1)
	c.Set("b", 2)
	assert.Equal(t, 2, c.Len())

	c.Delete("b")
	assert.Equal(t, 1, c.Len())

	c.Reset()
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestCache_Expiry(t *testing.T) {
	now := time.Unix(1000, 0)
	c := New[string](0, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("k", "v")
	v, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestCache_Capacity(t *testing.T) {
	c := New[int](2, 0)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("a", 10) // overwrite does not evict
	assert.Equal(t, 2, c.Len())

	c.Set("c", 3)
	assert.Equal(t, 2, c.Len())
	v, ok := c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
}
