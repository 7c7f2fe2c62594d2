package state

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Get(ctx, KeyAutoMode)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, KeyAutoMode, ModeOff))
	v, err := s.Get(ctx, KeyAutoMode)
	require.NoError(t, err)
	assert.Equal(t, ModeOff, v)

	require.NoError(t, s.Set(ctx, KeyAutoMode, ModeOn))
	v, _ = s.Get(ctx, KeyAutoMode)
	assert.Equal(t, ModeOn, v)

	require.NoError(t, s.Delete(ctx, KeyAutoMode))
	_, err = s.Get(ctx, KeyAutoMode)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_DeleteAbsentKey(t *testing.T) {
	s := NewMemoryStore()
	assert.NoError(t, s.Delete(context.Background(), "never-set"))
}

func TestGetJSON_MissingKeyIsAbsent(t *testing.T) {
	var out []string
	ok := GetJSON(context.Background(), NewMemoryStore(), KeyLatestMatches, &out)
	assert.False(t, ok)
	assert.Nil(t, out)
}

func TestGetJSON_CorruptPayloadIsAbsent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Set(ctx, KeyLatestMatches, "{not json"))

	var out []string
	assert.False(t, GetJSON(ctx, s, KeyLatestMatches, &out))
}

func TestSetJSON_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	type match struct {
		Client string  `json:"client"`
		Amount float64 `json:"amount"`
	}
	in := []match{{Client: "Acme", Amount: 120.5}}
	require.NoError(t, SetJSON(ctx, s, KeyLatestMatches, in))

	var out []match
	require.True(t, GetJSON(ctx, s, KeyLatestMatches, &out))
	assert.Equal(t, in, out)
}
