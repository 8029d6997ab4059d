package gameserver

import (
	"errors"
	"fmt"
	"math"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/cory-johannsen/bowling/internal/game/bowler"
	"github.com/cory-johannsen/bowling/internal/game/bowling"
	"github.com/cory-johannsen/bowling/internal/game/ruleset"
)

// errMalformed marks requests whose fields are missing or mistyped.
var errMalformed = errors.New("malformed request")

// gameToStruct encodes g and its derived frame view.
func gameToStruct(g *bowling.Game, rs ruleset.Ruleset) (*structpb.Struct, error) {
	rolls := g.Rolls()
	_, done := bowler.Lane(rolls, rs)

	frames := bowling.Frames(g, rs)
	frameValues := make([]interface{}, 0, len(frames))
	for _, f := range frames {
		frameValues = append(frameValues, map[string]interface{}{
			"index":    f.Index,
			"kind":     f.Kind.String(),
			"rolls":    intsToList(f.Rolls),
			"bonus":    intsToList(f.Bonus),
			"score":    f.Score,
			"running":  f.Running,
			"complete": f.Complete,
		})
	}

	fields := map[string]interface{}{
		"id":               g.ID,
		"rolls":            intsToList(rolls),
		"roll_count":       g.RollCount(),
		"current_score":    g.CurrentScore,
		"complete":         done,
		"budget_exhausted": g.IsBudgetExhausted(rs),
		"frames":           frameValues,
		"ruleset":          rs.ID(),
	}
	if !g.CreatedAt.IsZero() {
		fields["created_at"] = g.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	if !g.UpdatedAt.IsZero() {
		fields["updated_at"] = g.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}

	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("encoding game %d: %w", g.ID, err)
	}
	return s, nil
}

func rulesetToStruct(rs ruleset.Ruleset) (*structpb.Struct, error) {
	fields := map[string]interface{}{
		"id":               rs.ID(),
		"pin_count":        rs.PinCount(),
		"frame_count":      rs.FrameCount(),
		"bonus_roll_count": rs.BonusRollCount(),
		"max_roll_count":   rs.MaxRollCount(),
		"max_score":        rs.MaxScore(),
	}
	if v, ok := rs.(*ruleset.Variant); ok {
		fields["name"] = v.DisplayName()
		fields["description"] = v.Description
	}
	return structpb.NewStruct(fields)
}

// statusToStruct encodes the Status reply. methods lists every full method
// name of ServiceDesc.
func statusToStruct(version, rulesetID string, startedAt time.Time) (*structpb.Struct, error) {
	methods := make([]interface{}, 0, len(ServiceDesc.Methods))
	for _, m := range ServiceDesc.Methods {
		methods = append(methods, "/"+ServiceName+"/"+m.MethodName)
	}
	return structpb.NewStruct(map[string]interface{}{
		"ok":         true,
		"service":    ServiceName,
		"version":    version,
		"ruleset":    rulesetID,
		"started_at": startedAt.UTC().Format(time.RFC3339Nano),
		"methods":    methods,
	})
}

func intsToList(in []int) []interface{} {
	out := make([]interface{}, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

// maxExactInt is the largest integer a float64 holds exactly.
const maxExactInt = 1 << 53

// intField reads an integral number field from s.
func intField(s *structpb.Struct, name string) (int64, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return 0, fmt.Errorf("%w: field %q is required", errMalformed, name)
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%w: field %q must be a number", errMalformed, name)
	}
	f := n.NumberValue
	if f != math.Trunc(f) || math.Abs(f) > maxExactInt {
		return 0, fmt.Errorf("%w: field %q must be an integer, got %v", errMalformed, name, f)
	}
	return int64(f), nil
}
