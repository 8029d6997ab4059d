// Package bowler generates plausible rolls for a game in progress and drives
// games to their natural end.
package bowler

import "github.com/cory-johannsen/bowling/internal/game/ruleset"

// Lane reports how many pins stand before the next roll of a game with the
// given history, and whether the game has reached its natural end.
//
// A frame's second roll faces the pins the first left standing. After the last
// frame a strike earns two fill rolls and a spare one, capped by the roll
// budget; fill rolls re-rack whenever every pin is down.
func Lane(rolls []int, rs ruleset.Ruleset) (standing int, done bool) {
	pins := rs.PinCount()
	if rs.IsRollBudgetExceeded(len(rolls)) {
		return 0, true
	}

	i := 0
	fill := 0
	for f := 0; f < rs.FrameCount(); f++ {
		if i == len(rolls) {
			return pins, false
		}
		first := rolls[i]
		i++
		if first >= pins {
			fill = 2
			continue
		}
		if i == len(rolls) {
			return pins - first, false
		}
		second := rolls[i]
		i++
		if first+second >= pins {
			fill = 1
		} else {
			fill = 0
		}
	}

	if left := rs.MaxRollCount() - i; fill > left {
		fill = left
	}
	standing = pins
	for j := 0; j < fill; j++ {
		if i == len(rolls) {
			return standing, false
		}
		standing -= rolls[i]
		i++
		if standing <= 0 {
			standing = pins
		}
	}
	return 0, true
}
