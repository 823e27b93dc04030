package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/genericcache/errors"
)

type user struct {
	Name string
}

func TestGetAs_HeterogeneousPayloads(t *testing.T) {
	c := newTestCache[any](t, 10)

	c.Set("count", 42)
	c.Set("user", &user{Name: "ada"})
	c.Set("tags", []string{"a", "b"})

	n, ok, err := GetAs[int](c, "count")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 42, n)

	u, ok, err := GetAs[*user](c, "user")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ada", u.Name)

	tags, ok, err := GetAs[[]string](c, "tags")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, tags)

	_, ok, err = GetAs[int](c, "missing")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestGetAs_TypeMismatchDoesNotPromote(t *testing.T) {
	c := newTestCache[any](t, 2)

	c.Set("a", "text")
	c.Set("b", 2)

	_, ok, err := GetAs[int](c, "a")
	require.Error(t, err)
	assert.False(t, ok)
	assert.ErrorIs(t, err, errors.ErrTypeMismatch)
	assert.True(t, errors.IsInvalid(err))
	assert.Contains(t, err.Error(), "want int")

	c.Set("c", 3)
	assert.False(t, c.Contains("a"), "mismatched read must leave recency unchanged")
	assert.True(t, c.Contains("b"))
	assert.Equal(t, int64(0), c.Stats().Hits())
}

func TestGetAs_NilPayload(t *testing.T) {
	c := newTestCache[any](t, 2)
	c.Set("empty", nil)

	u, ok, err := GetAs[*user](c, "empty")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Nil(t, u)

	_, ok, err = GetAs[int](c, "empty")
	assert.ErrorIs(t, err, errors.ErrTypeMismatch)
	assert.False(t, ok)
}

func TestSubscribeDeleteAs(t *testing.T) {
	c := newTestCache[any](t, 1)
	rec := &recorder[*user]{}
	SubscribeDeleteAs(c, rec.record)

	ada := &user{Name: "ada"}
	c.Set("ada", ada)
	c.Set("count", 1) // evicts ada
	c.Delete("count") // not a *user

	assert.Equal(t, []deletionEvent[*user]{{Key: "ada", Reason: ReasonCapacityReached, Value: ada}}, rec.snapshot())
	assert.Equal(t, int64(1), c.Stats().SubscriberFailures())
}
