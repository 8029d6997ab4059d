package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/bowling/internal/game/bowling"
	"github.com/cory-johannsen/bowling/internal/game/ruleset"
)

// RunStoreContract exercises the behaviour every bowling.Store must share.
// newStore must return an empty store for each call.
func RunStoreContract(t *testing.T, newStore func(t *testing.T) bowling.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("save assigns ids and timestamps", func(t *testing.T) {
		s := newStore(t)
		a, err := s.Save(ctx, bowling.NewGame())
		require.NoError(t, err)
		b, err := s.Save(ctx, bowling.NewGame())
		require.NoError(t, err)

		assert.NotZero(t, a.ID)
		assert.Greater(t, b.ID, a.ID)
		assert.False(t, a.CreatedAt.IsZero())
		assert.False(t, a.UpdatedAt.IsZero())
		assert.Equal(t, 0, a.RollCount())
	})

	t.Run("rolls round trip in order", func(t *testing.T) {
		s := newStore(t)
		g, err := s.Save(ctx, bowling.NewGame())
		require.NoError(t, err)

		for _, pins := range []int{10, 7, 3, 0} {
			g.AppendRoll(pins)
		}
		g.CurrentScore = 20
		_, err = s.Save(ctx, g)
		require.NoError(t, err)

		got, err := s.FindByID(ctx, g.ID)
		require.NoError(t, err)
		assert.Equal(t, []int{10, 7, 3, 0}, got.Rolls())
		assert.Equal(t, 4, got.RollCount())
		assert.Equal(t, 20, got.CurrentScore)
		assert.Equal(t, g.CreatedAt.Unix(), got.CreatedAt.Unix())
	})

	t.Run("saved game is isolated from caller", func(t *testing.T) {
		s := newStore(t)
		g, err := s.Save(ctx, bowling.NewGame())
		require.NoError(t, err)
		g.AppendRoll(5)

		got, err := s.FindByID(ctx, g.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.RollCount())
	})

	t.Run("explicit id then new game", func(t *testing.T) {
		s := newStore(t)
		explicit, err := s.Save(ctx, bowling.RestoreGame(100, []int{3}, 0))
		require.NoError(t, err)
		assert.Equal(t, int64(100), explicit.ID)

		fresh, err := s.Save(ctx, bowling.NewGame())
		require.NoError(t, err)
		assert.Greater(t, fresh.ID, explicit.ID)

		got, err := s.FindByID(ctx, 100)
		require.NoError(t, err)
		assert.Equal(t, []int{3}, got.Rolls())
	})

	t.Run("missing game", func(t *testing.T) {
		s := newStore(t)
		_, err := s.FindByID(ctx, 404)
		assert.ErrorIs(t, err, bowling.ErrGameNotFound)
		assert.ErrorIs(t, s.DeleteByID(ctx, 404), bowling.ErrGameNotFound)
	})

	t.Run("delete and list", func(t *testing.T) {
		s := newStore(t)
		a, err := s.Save(ctx, bowling.NewGame())
		require.NoError(t, err)
		b, err := s.Save(ctx, bowling.NewGame())
		require.NoError(t, err)

		all, err := s.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, a.ID, all[0].ID)
		assert.Equal(t, b.ID, all[1].ID)

		require.NoError(t, s.DeleteByID(ctx, a.ID))
		_, err = s.FindByID(ctx, a.ID)
		assert.ErrorIs(t, err, bowling.ErrGameNotFound)

		all, err = s.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, b.ID, all[0].ID)
	})

	t.Run("service plays a full game", func(t *testing.T) {
		s := newStore(t)
		svc := bowling.NewService(s, ruleset.TenPin(), zaptest.NewLogger(t))
		g, err := svc.CreateGame(ctx)
		require.NoError(t, err)
		for i := 0; i < 12; i++ {
			_, err := svc.ApplyRoll(ctx, g.ID, 10)
			require.NoError(t, err)
		}
		scored, err := svc.Score(ctx, g.ID)
		require.NoError(t, err)
		assert.Equal(t, 300, scored.CurrentScore)
	})
}
