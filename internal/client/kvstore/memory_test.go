package kvstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	var s Store = NewMemoryStore()
	ctx := context.Background()

	v, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, v)

	buf := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", buf))
	buf[0] = 'x'

	v, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), v, "stored value must not alias caller buffer")

	v[1] = 'z'
	again, _ := s.Get(ctx, "k")
	assert.Equal(t, []byte("abc"), again, "returned value must not alias stored buffer")

	require.NoError(t, s.Remove(ctx, "k"))
	require.NoError(t, s.Remove(ctx, "k"))
	v, _ = s.Get(ctx, "k")
	assert.Nil(t, v)
}
