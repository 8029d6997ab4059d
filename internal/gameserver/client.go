package gameserver

import (
	"context"
	"fmt"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// FrameView is the decoded form of one frame in a game response.
type FrameView struct {
	Index    int
	Kind     string
	Rolls    []int
	Bonus    []int
	Score    int
	Running  int
	Complete bool
}

// GameView is the decoded form of a game response.
type GameView struct {
	ID              int64
	Rolls           []int
	RollCount       int
	CurrentScore    int
	Complete        bool
	BudgetExhausted bool
	Ruleset         string
	Frames          []FrameView
}

// RulesetView is the decoded form of a Ruleset response.
type RulesetView struct {
	ID             string
	Name           string
	PinCount       int
	FrameCount     int
	BonusRollCount int
	MaxRollCount   int
	MaxScore       int
}

// StatusView is the decoded form of a Status response.
type StatusView struct {
	OK        bool
	Service   string
	Version   string
	Ruleset   string
	StartedAt string
	Methods   []string
}

// Client calls the bowling service over a gRPC connection.
type Client struct {
	conn grpc.ClientConnInterface
}

// NewClient wraps an existing connection.
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// Dial opens an insecure connection to addr with OpenTelemetry client stats.
//
// Postcondition: The caller must Close the returned connection.
func Dial(addr string, opts ...grpc.DialOption) (*Client, *grpc.ClientConn, error) {
	base := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	}
	conn, err := grpc.NewClient(addr, append(base, opts...)...)
	if err != nil {
		return nil, nil, fmt.Errorf("dialing %s: %w", addr, err)
	}
	return NewClient(conn), conn, nil
}

// CreateGame starts a new game.
func (c *Client) CreateGame(ctx context.Context) (GameView, error) {
	return c.invokeGame(ctx, MethodCreateGame, &emptypb.Empty{})
}

// GetGame fetches a game.
func (c *Client) GetGame(ctx context.Context, id int64) (GameView, error) {
	return c.invokeGame(ctx, MethodGetGame, wrapperspb.Int64(id))
}

// Roll records pins as the next roll of game id.
func (c *Client) Roll(ctx context.Context, id int64, pins int) (GameView, error) {
	req, err := structpb.NewStruct(map[string]interface{}{"game_id": id, "pins": pins})
	if err != nil {
		return GameView{}, fmt.Errorf("encoding roll: %w", err)
	}
	return c.invokeGame(ctx, MethodRoll, req)
}

// Score recomputes the score of game id.
func (c *Client) Score(ctx context.Context, id int64) (GameView, error) {
	return c.invokeGame(ctx, MethodScore, wrapperspb.Int64(id))
}

// ListGames fetches every game.
func (c *Client) ListGames(ctx context.Context) ([]GameView, error) {
	out := new(structpb.ListValue)
	if err := c.conn.Invoke(ctx, MethodListGames, &emptypb.Empty{}, out); err != nil {
		return nil, err
	}
	games := make([]GameView, 0, len(out.GetValues()))
	for _, v := range out.GetValues() {
		games = append(games, decodeGame(v.GetStructValue()))
	}
	return games, nil
}

// DeleteGame removes game id.
func (c *Client) DeleteGame(ctx context.Context, id int64) error {
	return c.conn.Invoke(ctx, MethodDeleteGame, wrapperspb.Int64(id), new(emptypb.Empty))
}

// Ruleset describes the server's rules.
func (c *Client) Ruleset(ctx context.Context) (RulesetView, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, MethodRuleset, &emptypb.Empty{}, out); err != nil {
		return RulesetView{}, err
	}
	f := out.GetFields()
	return RulesetView{
		ID:             f["id"].GetStringValue(),
		Name:           f["name"].GetStringValue(),
		PinCount:       int(f["pin_count"].GetNumberValue()),
		FrameCount:     int(f["frame_count"].GetNumberValue()),
		BonusRollCount: int(f["bonus_roll_count"].GetNumberValue()),
		MaxRollCount:   int(f["max_roll_count"].GetNumberValue()),
		MaxScore:       int(f["max_score"].GetNumberValue()),
	}, nil
}

// Status reports the server's version and the methods it serves.
func (c *Client) Status(ctx context.Context) (StatusView, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, MethodStatus, &emptypb.Empty{}, out); err != nil {
		return StatusView{}, err
	}
	f := out.GetFields()
	v := StatusView{
		OK:        f["ok"].GetBoolValue(),
		Service:   f["service"].GetStringValue(),
		Version:   f["version"].GetStringValue(),
		Ruleset:   f["ruleset"].GetStringValue(),
		StartedAt: f["started_at"].GetStringValue(),
	}
	for _, m := range f["methods"].GetListValue().GetValues() {
		v.Methods = append(v.Methods, m.GetStringValue())
	}
	return v, nil
}

func (c *Client) invokeGame(ctx context.Context, method string, req interface{}) (GameView, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, method, req, out); err != nil {
		return GameView{}, err
	}
	return decodeGame(out), nil
}

func decodeGame(s *structpb.Struct) GameView {
	f := s.GetFields()
	g := GameView{
		ID:              int64(f["id"].GetNumberValue()),
		Rolls:           listToInts(f["rolls"].GetListValue()),
		RollCount:       int(f["roll_count"].GetNumberValue()),
		CurrentScore:    int(f["current_score"].GetNumberValue()),
		Complete:        f["complete"].GetBoolValue(),
		BudgetExhausted: f["budget_exhausted"].GetBoolValue(),
		Ruleset:         f["ruleset"].GetStringValue(),
	}
	for _, fv := range f["frames"].GetListValue().GetValues() {
		ff := fv.GetStructValue().GetFields()
		g.Frames = append(g.Frames, FrameView{
			Index:    int(ff["index"].GetNumberValue()),
			Kind:     ff["kind"].GetStringValue(),
			Rolls:    listToInts(ff["rolls"].GetListValue()),
			Bonus:    listToInts(ff["bonus"].GetListValue()),
			Score:    int(ff["score"].GetNumberValue()),
			Running:  int(ff["running"].GetNumberValue()),
			Complete: ff["complete"].GetBoolValue(),
		})
	}
	return g
}

func listToInts(l *structpb.ListValue) []int {
	out := make([]int, 0, len(l.GetValues()))
	for _, v := range l.GetValues() {
		out = append(out, int(v.GetNumberValue()))
	}
	return out
}
