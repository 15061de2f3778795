package main

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	calls []string
	err   map[string]error
}

func (r *recorder) EnsureIndexes(context.Context) error {
	r.calls = append(r.calls, "indexes")
	return r.err["indexes"]
}

func (r *recorder) Migrate(context.Context) error {
	r.calls = append(r.calls, "migrate")
	return r.err["migrate"]
}

func TestEnsureSchema(t *testing.T) {
	ctx := context.Background()

	t.Run("mongo only", func(t *testing.T) {
		r := &recorder{}
		require.NoError(t, ensureSchema(ctx, r, nil, zerolog.Nop()))
		assert.Equal(t, []string{"indexes"}, r.calls)
	})

	t.Run("with postgres", func(t *testing.T) {
		r := &recorder{}
		require.NoError(t, ensureSchema(ctx, r, r, zerolog.Nop()))
		assert.Equal(t, []string{"indexes", "migrate"}, r.calls)
	})

	t.Run("index failure stops startup", func(t *testing.T) {
		r := &recorder{err: map[string]error{"indexes": errors.New("not primary")}}
		err := ensureSchema(ctx, r, r, zerolog.Nop())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ensure indexes")
		assert.Equal(t, []string{"indexes"}, r.calls)
	})

	t.Run("migration failure", func(t *testing.T) {
		r := &recorder{err: map[string]error{"migrate": errors.New("permission denied")}}
		err := ensureSchema(ctx, r, r, zerolog.Nop())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "postgres migrate")
	})
}
