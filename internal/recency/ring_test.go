package recency

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type item struct {
	id   string
	note string
}

func itemKey(i item) string { return i.id }

func TestPush_MovesExistingToFront(t *testing.T) {
	ring := []item{{id: "a"}, {id: "b"}, {id: "c"}}

	got := Push(ring, item{id: "c", note: "again"}, itemKey, 5)

	assert.Equal(t, []item{{id: "c", note: "again"}, {id: "a"}, {id: "b"}}, got)
	assert.Len(t, ring, 3, "input must not be modified")
}

func TestPush_TwiceKeepsSingleEntry(t *testing.T) {
	var ring []item
	ring = Push(ring, item{id: "r"}, itemKey, 5)
	ring = Push(ring, item{id: "r"}, itemKey, 5)
	assert.Equal(t, []item{{id: "r"}}, ring)
}

func TestPush_NeverExceedsLimit(t *testing.T) {
	var ring []string
	for i := 0; i < 50; i++ {
		ring = Push(ring, fmt.Sprintf("q%d", i), Identity[string], 10)
		assert.LessOrEqual(t, len(ring), 10)
	}
	assert.Equal(t, "q49", ring[0])
	assert.Equal(t, "q40", ring[9])
}

func TestPush_Unbounded(t *testing.T) {
	var ring []string
	for i := 0; i < 20; i++ {
		ring = Push(ring, fmt.Sprint(i), Identity[string], 0)
	}
	assert.Len(t, ring, 20)
}

func TestRemove(t *testing.T) {
	ring := []item{{id: "a"}, {id: "b"}}

	got, ok := Remove(ring, "a", itemKey)
	assert.True(t, ok)
	assert.Equal(t, []item{{id: "b"}}, got)

	got, ok = Remove(got, "zzz", itemKey)
	assert.False(t, ok)
	assert.Len(t, got, 1)
}

func TestUpsert(t *testing.T) {
	list := []item{{id: "a"}, {id: "b"}}

	got := Upsert(list, item{id: "c"}, itemKey)
	assert.Equal(t, []item{{id: "a"}, {id: "b"}, {id: "c"}}, got)

	got = Upsert(got, item{id: "a", note: "edited"}, itemKey)
	assert.Equal(t, []item{{id: "a", note: "edited"}, {id: "b"}, {id: "c"}}, got)
	assert.Equal(t, item{id: "a"}, list[0], "input untouched")
}
