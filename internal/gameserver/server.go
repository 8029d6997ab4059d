// Package gameserver exposes the bowling service over gRPC.
//
// The service is described by a hand-written grpc.ServiceDesc whose messages
// are protobuf well-known types. A game travels as a structpb.Struct with the
// fields id, rolls, roll_count, current_score, complete, budget_exhausted,
// frames, ruleset, created_at and updated_at. Roll takes a Struct with the
// integer fields game_id and pins. Status reports the build version and the
// methods the server answers.
package gameserver

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/cory-johannsen/bowling/internal/game/bowling"
)

// Version is the build version reported by Status. Release builds set it
// with -ldflags "-X github.com/cory-johannsen/bowling/internal/gameserver.Version=...".
var Version = "dev"

// BowlingServer implements BowlingServiceServer on top of bowling.Service.
//
// Calls that change a game are serialized per game id.
type BowlingServer struct {
	svc       *bowling.Service
	logger    *zap.Logger
	locks     *gameLocks
	startedAt time.Time
}

// NewBowlingServer creates a BowlingServer.
//
// Precondition: svc and logger must be non-nil.
func NewBowlingServer(svc *bowling.Service, logger *zap.Logger) *BowlingServer {
	return &BowlingServer{
		svc:       svc,
		logger:    logger,
		locks:     newGameLocks(),
		startedAt: time.Now().UTC(),
	}
}

// CreateGame starts a new empty game.
func (s *BowlingServer) CreateGame(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	g, err := s.svc.CreateGame(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return s.encode(ctx, g)
}

// GetGame returns a game without rescoring it.
func (s *BowlingServer) GetGame(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	g, err := s.svc.Game(ctx, req.GetValue())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return s.encode(ctx, g)
}

// ListGames returns every game ordered by id.
func (s *BowlingServer) ListGames(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	games, err := s.svc.ListGames(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	list := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(games))}
	for _, g := range games {
		st, err := s.encode(ctx, g)
		if err != nil {
			return nil, err
		}
		list.Values = append(list.Values, structpb.NewStructValue(st))
	}
	return list, nil
}

// Roll records the next roll of a game.
func (s *BowlingServer) Roll(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := intField(req, "game_id")
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	pins, err := intField(req, "pins")
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	unlock := s.locks.lock(id)
	defer unlock()

	g, err := s.svc.ApplyRoll(ctx, id, int(pins))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return s.encode(ctx, g)
}

// Score recomputes and stores the score of a game.
func (s *BowlingServer) Score(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	unlock := s.locks.lock(req.GetValue())
	defer unlock()

	g, err := s.svc.Score(ctx, req.GetValue())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return s.encode(ctx, g)
}

// DeleteGame removes a game.
func (s *BowlingServer) DeleteGame(ctx context.Context, req *wrapperspb.Int64Value) (*emptypb.Empty, error) {
	unlock := s.locks.lock(req.GetValue())
	defer unlock()

	if err := s.svc.DeleteGame(ctx, req.GetValue()); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &emptypb.Empty{}, nil
}

// Ruleset describes the rules the server enforces.
func (s *BowlingServer) Ruleset(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	st, err := rulesetToStruct(s.svc.Ruleset())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return st, nil
}

// Status reports that the server is up, with its version, ruleset and
// method names.
func (s *BowlingServer) Status(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	st, err := statusToStruct(Version, s.svc.Ruleset().ID(), s.startedAt)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return st, nil
}

func (s *BowlingServer) encode(ctx context.Context, g *bowling.Game) (*structpb.Struct, error) {
	st, err := gameToStruct(g, s.svc.Ruleset())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return st, nil
}

// toStatus maps domain errors onto gRPC status codes. Unexpected errors are
// logged and reported as Internal without their detail.
func (s *BowlingServer) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, bowling.ErrGameNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, bowling.ErrIllegalPinCount), errors.Is(err, errMalformed):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, bowling.ErrRollBudgetExceeded):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		s.logger.Error("request failed",
			zap.String("request_id", RequestIDFromContext(ctx)),
			zap.Error(err),
		)
		return status.Error(codes.Internal, "internal error")
	}
}

var _ BowlingServiceServer = (*BowlingServer)(nil)
