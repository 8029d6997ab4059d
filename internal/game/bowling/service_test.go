package bowling_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/bowling/internal/game/bowling"
	"github.com/cory-johannsen/bowling/internal/game/ruleset"
	"github.com/cory-johannsen/bowling/internal/storage/memory"
)

func newTestService(t *testing.T) (*bowling.Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	return bowling.NewService(store, ruleset.TenPin(), zaptest.NewLogger(t)), store
}

func newTestGame(t *testing.T, svc *bowling.Service) int64 {
	t.Helper()
	g, err := svc.CreateGame(context.Background())
	require.NoError(t, err)
	return g.ID
}

func applyMany(t *testing.T, svc *bowling.Service, id int64, pins, times int) {
	t.Helper()
	for i := 0; i < times; i++ {
		_, err := svc.ApplyRoll(context.Background(), id, pins)
		require.NoError(t, err)
	}
}

func TestService_GameWithoutKnockedOverPinsScoresZero(t *testing.T) {
	svc, _ := newTestService(t)
	id := newTestGame(t, svc)
	applyMany(t, svc, id, 0, svc.Ruleset().MaxRollCount())

	scored, err := svc.Score(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 0, scored.CurrentScore)
}

func TestService_SamePinsEveryRoll(t *testing.T) {
	svc, _ := newTestService(t)
	id := newTestGame(t, svc)
	applyMany(t, svc, id, 3, svc.Ruleset().MaxRollCount())

	scored, err := svc.Score(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 60, scored.CurrentScore)
}

func TestService_AllStrikes(t *testing.T) {
	svc, _ := newTestService(t)
	id := newTestGame(t, svc)
	applyMany(t, svc, id, svc.Ruleset().PinCount(), svc.Ruleset().FrameCount()+2)

	scored, err := svc.Score(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 300, scored.CurrentScore)
}

func TestService_LastFrameSpare(t *testing.T) {
	svc, _ := newTestService(t)
	id := newTestGame(t, svc)
	applyMany(t, svc, id, 3, 18)
	applyMany(t, svc, id, svc.Ruleset().PinCount()/2, 2)
	applyMany(t, svc, id, 4, 1)

	scored, err := svc.Score(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 68, scored.CurrentScore)
}

func TestService_LastFrameStrike(t *testing.T) {
	svc, _ := newTestService(t)
	id := newTestGame(t, svc)
	applyMany(t, svc, id, 3, 18)
	applyMany(t, svc, id, svc.Ruleset().PinCount(), 1)
	applyMany(t, svc, id, 3, 1)
	applyMany(t, svc, id, 4, 1)

	scored, err := svc.Score(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 71, scored.CurrentScore)
}

func TestService_ApplyRoll_NotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.ApplyRoll(context.Background(), 99, 3)
	assert.ErrorIs(t, err, bowling.ErrGameNotFound)
}

func TestService_Score_NotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Score(context.Background(), 99)
	assert.ErrorIs(t, err, bowling.ErrGameNotFound)
}

func TestService_ApplyRoll_IllegalPinCount(t *testing.T) {
	svc, store := newTestService(t)
	id := newTestGame(t, svc)
	applyMany(t, svc, id, 2, 3)

	for _, pins := range []int{-1, svc.Ruleset().PinCount() + 1} {
		_, err := svc.ApplyRoll(context.Background(), id, pins)
		assert.ErrorIs(t, err, bowling.ErrIllegalPinCount, "pins %d", pins)
	}

	g, err := store.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 3, g.RollCount())
}

func TestService_ApplyRoll_RollBudgetExceeded(t *testing.T) {
	svc, store := newTestService(t)
	id := newTestGame(t, svc)
	applyMany(t, svc, id, 1, svc.Ruleset().MaxRollCount())

	_, err := svc.ApplyRoll(context.Background(), id, 1)
	assert.ErrorIs(t, err, bowling.ErrRollBudgetExceeded)

	g, err := store.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, svc.Ruleset().MaxRollCount(), g.RollCount())
	assert.Equal(t, []int{1, 1, 1}, g.Rolls()[:3])
}

func TestService_ApplyRoll_IllegalPinsReportedBeforeBudget(t *testing.T) {
	svc, _ := newTestService(t)
	id := newTestGame(t, svc)
	applyMany(t, svc, id, 0, svc.Ruleset().MaxRollCount())

	_, err := svc.ApplyRoll(context.Background(), id, -1)
	assert.ErrorIs(t, err, bowling.ErrIllegalPinCount)
	assert.False(t, errors.Is(err, bowling.ErrRollBudgetExceeded))
}

func TestService_Score_Idempotent(t *testing.T) {
	svc, _ := newTestService(t)
	id := newTestGame(t, svc)
	applyMany(t, svc, id, 10, 3)
	applyMany(t, svc, id, 4, 1)

	first, err := svc.Score(context.Background(), id)
	require.NoError(t, err)
	second, err := svc.Score(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, first.CurrentScore, second.CurrentScore)
	assert.Equal(t, 30+24, second.CurrentScore)
}

func TestService_Score_PersistsCachedScore(t *testing.T) {
	svc, store := newTestService(t)
	id := newTestGame(t, svc)
	applyMany(t, svc, id, 4, 2)

	_, err := svc.Score(context.Background(), id)
	require.NoError(t, err)

	g, err := store.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 8, g.CurrentScore)
}

func TestService_ApplyRoll_DoesNotRescore(t *testing.T) {
	svc, _ := newTestService(t)
	id := newTestGame(t, svc)
	applyMany(t, svc, id, 4, 2)

	g, err := svc.ApplyRoll(context.Background(), id, 4)
	require.NoError(t, err)
	assert.Equal(t, 0, g.CurrentScore)
	assert.Equal(t, 3, g.RollCount())
}

func TestService_CRUD(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a := newTestGame(t, svc)
	b := newTestGame(t, svc)

	games, err := svc.ListGames(ctx)
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, a, games[0].ID)
	assert.Equal(t, b, games[1].ID)

	got, err := svc.Game(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, a, got.ID)

	require.NoError(t, svc.DeleteGame(ctx, a))
	_, err = svc.Game(ctx, a)
	assert.ErrorIs(t, err, bowling.ErrGameNotFound)
	assert.ErrorIs(t, svc.DeleteGame(ctx, a), bowling.ErrGameNotFound)
}

var errDiskFull = errors.New("disk full")

// failingStore wraps a Store and fails every Save.
type failingStore struct {
	bowling.Store
}

func (f failingStore) Save(context.Context, *bowling.Game) (*bowling.Game, error) {
	return nil, errDiskFull
}

func TestService_StoreFailuresAreWrapped(t *testing.T) {
	inner := memory.NewStore()
	seeded, err := inner.Save(context.Background(), bowling.NewGame())
	require.NoError(t, err)

	svc := bowling.NewService(failingStore{Store: inner}, ruleset.TenPin(), zaptest.NewLogger(t))

	_, err = svc.ApplyRoll(context.Background(), seeded.ID, 5)
	assert.ErrorIs(t, err, errDiskFull)
	assert.False(t, errors.Is(err, bowling.ErrGameNotFound))

	_, err = svc.Score(context.Background(), seeded.ID)
	assert.ErrorIs(t, err, errDiskFull)

	_, err = svc.CreateGame(context.Background())
	assert.ErrorIs(t, err, errDiskFull)

	g, err := inner.FindByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, g.RollCount())
}

// Property: RollCount equals the number of accepted rolls, never exceeds the
// budget, and every rejection carries the documented reason.
func TestProperty_Service_ApplyRollStateMachine(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		svc, store := newTestService(t)
		ctx := context.Background()
		g, err := svc.CreateGame(ctx)
		if err != nil {
			rt.Fatalf("CreateGame: %v", err)
		}
		rs := svc.Ruleset()

		attempts := rapid.SliceOfN(rapid.IntRange(-2, rs.PinCount()+2), 0, 40).Draw(rt, "attempts")
		accepted := 0
		for _, pins := range attempts {
			_, err := svc.ApplyRoll(ctx, g.ID, pins)
			switch {
			case rs.IsIllegalPinCount(pins):
				if !errors.Is(err, bowling.ErrIllegalPinCount) {
					rt.Fatalf("pins %d: got %v, want ErrIllegalPinCount", pins, err)
				}
			case accepted >= rs.MaxRollCount():
				if !errors.Is(err, bowling.ErrRollBudgetExceeded) {
					rt.Fatalf("roll %d: got %v, want ErrRollBudgetExceeded", accepted, err)
				}
			default:
				if err != nil {
					rt.Fatalf("pins %d: unexpected error %v", pins, err)
				}
				accepted++
			}
		}

		stored, err := store.FindByID(ctx, g.ID)
		if err != nil {
			rt.Fatalf("FindByID: %v", err)
		}
		if stored.RollCount() != accepted {
			rt.Fatalf("RollCount() = %d, want %d", stored.RollCount(), accepted)
		}
		scored, err := svc.Score(ctx, g.ID)
		if err != nil {
			rt.Fatalf("Score: %v", err)
		}
		if scored.CurrentScore < 0 || scored.CurrentScore > rs.MaxScore() {
			rt.Fatalf("CurrentScore = %d out of [0, %d]", scored.CurrentScore, rs.MaxScore())
		}
	})
}
