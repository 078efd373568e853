package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_RoundTripAndCopies(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	in := []byte("abc")
	require.NoError(t, r.Set(ctx, "edusync:a", in))
	in[0] = 'X'

	v, err := r.Get(ctx, "edusync:a")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), v)

	m, err := r.List(ctx, "edusync:")
	require.NoError(t, err)
	assert.Len(t, m, 1)

	require.NoError(t, r.Delete(ctx, "edusync:a"))
	v, err = r.Get(ctx, "edusync:a")
	require.NoError(t, err)
	assert.Nil(t, v)
}
