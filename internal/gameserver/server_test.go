package gameserver_test

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/cory-johannsen/bowling/internal/game/bowling"
	"github.com/cory-johannsen/bowling/internal/game/ruleset"
	"github.com/cory-johannsen/bowling/internal/gameserver"
	"github.com/cory-johannsen/bowling/internal/storage/memory"
)

type harness struct {
	client *gameserver.Client
	conn   *grpc.ClientConn
	store  *memory.Store
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := zaptest.NewLogger(t)
	store := memory.NewStore()
	svc := bowling.NewService(store, ruleset.TenPin(), logger)

	lis := bufconn.Listen(1 << 20)
	srv := gameserver.NewGRPCServer(gameserver.NewBowlingServer(svc, logger), logger)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &harness{client: gameserver.NewClient(conn), conn: conn, store: store}
}

func ctxWithTimeout(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestServer_PlayPerfectGame(t *testing.T) {
	h := newHarness(t)
	ctx := ctxWithTimeout(t)

	g, err := h.client.CreateGame(ctx)
	require.NoError(t, err)
	assert.NotZero(t, g.ID)
	assert.Equal(t, "ten_pin", g.Ruleset)

	for i := 0; i < 12; i++ {
		g, err = h.client.Roll(ctx, g.ID, 10)
		require.NoError(t, err)
	}
	assert.Equal(t, 12, g.RollCount)
	assert.True(t, g.Complete)
	assert.False(t, g.BudgetExhausted)
	assert.Equal(t, 0, g.CurrentScore, "Roll does not rescore")

	scored, err := h.client.Score(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, 300, scored.CurrentScore)
	require.Len(t, scored.Frames, 10)
	assert.Equal(t, "strike", scored.Frames[0].Kind)
	assert.Equal(t, 300, scored.Frames[9].Running)

	fetched, err := h.client.GetGame(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, 300, fetched.CurrentScore)
	assert.Equal(t, scored.Rolls, fetched.Rolls)
}

func TestServer_ErrorCodes(t *testing.T) {
	h := newHarness(t)
	ctx := ctxWithTimeout(t)

	_, err := h.client.GetGame(ctx, 99)
	assert.Equal(t, codes.NotFound, status.Code(err))
	_, err = h.client.Roll(ctx, 99, 3)
	assert.Equal(t, codes.NotFound, status.Code(err))
	_, err = h.client.Score(ctx, 99)
	assert.Equal(t, codes.NotFound, status.Code(err))
	assert.Equal(t, codes.NotFound, status.Code(h.client.DeleteGame(ctx, 99)))

	g, err := h.client.CreateGame(ctx)
	require.NoError(t, err)

	_, err = h.client.Roll(ctx, g.ID, 11)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	_, err = h.client.Roll(ctx, g.ID, -1)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	for i := 0; i < 21; i++ {
		_, err = h.client.Roll(ctx, g.ID, 0)
		require.NoError(t, err)
	}
	_, err = h.client.Roll(ctx, g.ID, 0)
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}

func TestServer_MalformedRoll(t *testing.T) {
	h := newHarness(t)
	ctx := ctxWithTimeout(t)

	cases := map[string]map[string]interface{}{
		"missing game_id": {"pins": 3},
		"missing pins":    {"game_id": 1},
		"fractional pins": {"game_id": 1, "pins": 2.5},
		"string pins":     {"game_id": 1, "pins": "three"},
		"huge game_id":    {"game_id": 1e300, "pins": 1},
	}
	for name, fields := range cases {
		t.Run(name, func(t *testing.T) {
			req, err := structpb.NewStruct(fields)
			require.NoError(t, err)
			err = h.conn.Invoke(ctx, gameserver.MethodRoll, req, new(structpb.Struct))
			assert.Equal(t, codes.InvalidArgument, status.Code(err))
		})
	}
}

func TestServer_ListAndDelete(t *testing.T) {
	h := newHarness(t)
	ctx := ctxWithTimeout(t)

	a, err := h.client.CreateGame(ctx)
	require.NoError(t, err)
	b, err := h.client.CreateGame(ctx)
	require.NoError(t, err)

	games, err := h.client.ListGames(ctx)
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, a.ID, games[0].ID)
	assert.Equal(t, b.ID, games[1].ID)

	require.NoError(t, h.client.DeleteGame(ctx, a.ID))
	games, err = h.client.ListGames(ctx)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, b.ID, games[0].ID)
}

func TestServer_Ruleset(t *testing.T) {
	h := newHarness(t)
	rs, err := h.client.Ruleset(ctxWithTimeout(t))
	require.NoError(t, err)
	assert.Equal(t, "ten_pin", rs.ID)
	assert.Equal(t, 10, rs.PinCount)
	assert.Equal(t, 10, rs.FrameCount)
	assert.Equal(t, 1, rs.BonusRollCount)
	assert.Equal(t, 21, rs.MaxRollCount)
	assert.Equal(t, 300, rs.MaxScore)
}

func TestServer_Status(t *testing.T) {
	h := newHarness(t)
	st, err := h.client.Status(ctxWithTimeout(t))
	require.NoError(t, err)
	assert.True(t, st.OK)
	assert.Equal(t, gameserver.ServiceName, st.Service)
	assert.Equal(t, gameserver.Version, st.Version)
	assert.Equal(t, "ten_pin", st.Ruleset)

	started, err := time.Parse(time.RFC3339Nano, st.StartedAt)
	require.NoError(t, err)
	assert.False(t, started.After(time.Now()))

	assert.Contains(t, st.Methods, gameserver.MethodRoll)
	assert.Contains(t, st.Methods, gameserver.MethodStatus)
	assert.Len(t, st.Methods, len(gameserver.ServiceDesc.Methods))
}

func TestServer_ConcurrentRollsAreSerialized(t *testing.T) {
	h := newHarness(t)
	ctx := ctxWithTimeout(t)

	g, err := h.client.CreateGame(ctx)
	require.NoError(t, err)

	const attempts = 30
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		rejected int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.client.Roll(ctx, g.ID, 1)
			mu.Lock()
			defer mu.Unlock()
			switch status.Code(err) {
			case codes.OK:
				accepted++
			case codes.FailedPrecondition:
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 21, accepted)
	assert.Equal(t, attempts-21, rejected)
	stored, err := h.store.FindByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, 21, stored.RollCount())
}

func TestServer_RequestIDEchoed(t *testing.T) {
	h := newHarness(t)
	ctx := metadata.AppendToOutgoingContext(ctxWithTimeout(t), gameserver.RequestIDHeader, "req-123")

	var header metadata.MD
	err := h.conn.Invoke(ctx, gameserver.MethodRuleset, &emptypb.Empty{}, new(structpb.Struct), grpc.Header(&header))
	require.NoError(t, err)
	assert.Equal(t, []string{"req-123"}, header.Get(gameserver.RequestIDHeader))
}

func TestServer_RequestIDGeneratedWhenAbsent(t *testing.T) {
	h := newHarness(t)

	var header metadata.MD
	err := h.conn.Invoke(ctxWithTimeout(t), gameserver.MethodListGames, &emptypb.Empty{}, new(structpb.ListValue), grpc.Header(&header))
	require.NoError(t, err)

	ids := header.Get(gameserver.RequestIDHeader)
	require.Len(t, ids, 1)
	_, err = uuid.Parse(ids[0])
	assert.NoError(t, err)
}

func TestServer_Health(t *testing.T) {
	h := newHarness(t)
	resp, err := healthpb.NewHealthClient(h.conn).Check(ctxWithTimeout(t),
		&healthpb.HealthCheckRequest{Service: gameserver.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
