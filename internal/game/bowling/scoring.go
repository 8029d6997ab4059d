package bowling

import (
	"github.com/cory-johannsen/bowling/internal/game/ruleset"
)

// FrameKind classifies how a frame was closed.
type FrameKind int

const (
	// FrameOpen left pins standing after two rolls.
	FrameOpen FrameKind = iota
	// FrameSpare cleared the pins with the second roll.
	FrameSpare
	// FrameStrike cleared the pins with the first roll.
	FrameStrike
)

// String returns "open", "spare", or "strike".
func (k FrameKind) String() string {
	switch k {
	case FrameSpare:
		return "spare"
	case FrameStrike:
		return "strike"
	default:
		return "open"
	}
}

// Frame is a derived, read-only view of one frame. It is recomputed from the
// roll history on every call and never stored.
type Frame struct {
	Index int
	Kind  FrameKind
	// Rolls are the rolls that belong to this frame: one for a strike, two otherwise.
	Rolls []int
	// Bonus are the later rolls a strike or spare borrows for its score.
	Bonus []int
	// Score is this frame's contribution; zero while incomplete.
	Score int
	// Running is the cumulative score through this frame; zero while incomplete.
	Running int
	// Complete is false when a roll the frame needs has not been recorded yet.
	Complete bool
}

// Score returns the total of every frame whose score is fully determined by
// the rolls recorded so far.
//
// A strike scores PinCount plus the next two rolls and consumes one roll; a
// spare scores PinCount plus the next roll and consumes two; an open frame
// scores its two rolls. Bonus windows overlap later frames. Scoring stops at
// the first frame that needs an unrecorded roll, so an in-progress frame
// contributes nothing until it can be scored.
//
// Postcondition: 0 <= result <= rs.MaxScore() for rolls that passed validation.
func Score(g *Game, rs ruleset.Ruleset) int {
	total := 0
	walkFrames(g, rs, func(f Frame) {
		if f.Complete {
			total += f.Score
		}
	})
	return total
}

// Frames returns the scored frames followed, when the game is mid-frame, by
// one incomplete frame holding the rolls recorded for it so far.
//
// Postcondition: len(result) <= rs.FrameCount(); only the last element may be
// incomplete.
func Frames(g *Game, rs ruleset.Ruleset) []Frame {
	frames := make([]Frame, 0, rs.FrameCount())
	walkFrames(g, rs, func(f Frame) {
		frames = append(frames, f)
	})
	return frames
}

// walkFrames visits frames in order. It stops after the first incomplete
// frame, which is still visited with Complete == false.
func walkFrames(g *Game, rs ruleset.Ruleset, visit func(Frame)) {
	pins := rs.PinCount()
	cursor := 0
	running := 0
	for frame := 0; frame < rs.FrameCount(); frame++ {
		first, err := g.PinsAt(cursor)
		if err != nil {
			return
		}
		f := Frame{Index: frame, Rolls: []int{first}}

		strike, _ := g.IsStrikeAt(cursor, rs)
		if strike {
			f.Kind = FrameStrike
			f.Bonus = lookahead(g, cursor+1, 2)
			if len(f.Bonus) < 2 {
				visit(f)
				return
			}
			f.Score = pins + f.Bonus[0] + f.Bonus[1]
			cursor++
		} else {
			second, err := g.PinsAt(cursor + 1)
			if err != nil {
				visit(f)
				return
			}
			f.Rolls = append(f.Rolls, second)
			if spare, _ := g.IsSpareAt(cursor, rs); spare {
				f.Kind = FrameSpare
				f.Bonus = lookahead(g, cursor+2, 1)
				if len(f.Bonus) < 1 {
					visit(f)
					return
				}
				f.Score = pins + f.Bonus[0]
			} else {
				f.Kind = FrameOpen
				f.Score = first + second
			}
			cursor += 2
		}

		running += f.Score
		f.Running = running
		f.Complete = true
		visit(f)
	}
}

// lookahead returns up to n recorded rolls starting at from.
func lookahead(g *Game, from, n int) []int {
	out := make([]int, 0, n)
	for i := from; i < from+n; i++ {
		pins, err := g.PinsAt(i)
		if err != nil {
			break
		}
		out = append(out, pins)
	}
	return out
}
