// Package ruleset defines the structural constants and legality checks for
// bowling variants, and loads variant definitions from YAML.
package ruleset

import (
	"errors"
	"fmt"
	"strings"
)

// rollsPerFrame is the baseline roll allotment of a frame used to size the
// roll budget.
const rollsPerFrame = 2

// Ruleset exposes the constants and legality predicates of one bowling variant.
//
// Implementations MUST be immutable and safe for concurrent use.
type Ruleset interface {
	// ID returns the stable variant identifier, e.g. "ten_pin".
	ID() string
	// PinCount returns the pins standing at the start of a frame.
	PinCount() int
	// FrameCount returns the number of scoring frames.
	FrameCount() int
	// BonusRollCount returns the rolls appended after the final frame.
	BonusRollCount() int
	// MaxRollCount returns the hard ceiling on recorded rolls.
	MaxRollCount() int
	// MaxScore returns the upper bound of any score under this variant.
	MaxScore() int
	// IsIllegalPinCount reports whether pins can never be the result of a roll.
	IsIllegalPinCount(pins int) bool
	// IsRollBudgetExceeded reports whether a roll written at the zero-based
	// rollIndex would exceed MaxRollCount.
	IsRollBudgetExceeded(rollIndex int) bool
}

// ErrInvalidVariant is returned when a Variant violates its invariants.
var ErrInvalidVariant = errors.New("invalid ruleset variant")

// Variant is the data-driven Ruleset implementation.
//
// Invariant (after Validate): ID non-empty, Pins > 0, Frames > 0, BonusRolls >= 0.
type Variant struct {
	VariantID   string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Pins        int    `yaml:"pins"`
	Frames      int    `yaml:"frames"`
	BonusRolls  int    `yaml:"bonus_rolls"`
}

// TenPin returns the standard ten-pin variant: 10 pins, 10 frames, 1 bonus roll.
//
// Postcondition: MaxRollCount() == 21 and MaxScore() == 300.
func TenPin() *Variant {
	return &Variant{
		VariantID:   TenPinID,
		Name:        "Ten-pin",
		Description: "Standard ten-pin bowling.",
		Pins:        10,
		Frames:      10,
		BonusRolls:  1,
	}
}

// TenPinID is the identifier of the standard variant.
const TenPinID = "ten_pin"

// Validate checks the variant invariants.
//
// Postcondition: Returns nil if valid, or an error wrapping ErrInvalidVariant
// that lists every violation.
func (v *Variant) Validate() error {
	var errs []string
	if strings.TrimSpace(v.VariantID) == "" {
		errs = append(errs, "id must not be empty")
	}
	if v.Pins < 1 {
		errs = append(errs, fmt.Sprintf("pins must be >= 1, got %d", v.Pins))
	}
	if v.Frames < 1 {
		errs = append(errs, fmt.Sprintf("frames must be >= 1, got %d", v.Frames))
	}
	if v.BonusRolls < 0 {
		errs = append(errs, fmt.Sprintf("bonus_rolls must be >= 0, got %d", v.BonusRolls))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w %q: %s", ErrInvalidVariant, v.VariantID, strings.Join(errs, "; "))
	}
	return nil
}

// DisplayName returns Name, falling back to the ID when Name is empty.
func (v *Variant) DisplayName() string {
	if v.Name == "" {
		return v.VariantID
	}
	return v.Name
}

func (v *Variant) ID() string          { return v.VariantID }
func (v *Variant) PinCount() int       { return v.Pins }
func (v *Variant) FrameCount() int     { return v.Frames }
func (v *Variant) BonusRollCount() int { return v.BonusRolls }

// MaxRollCount returns rollsPerFrame*Frames + BonusRolls.
func (v *Variant) MaxRollCount() int {
	return rollsPerFrame*v.Frames + v.BonusRolls
}

// MaxScore returns 3*Pins*Frames.
//
// An open frame scores at most 2*Pins-1, a spare at most 2*Pins, and a strike
// at most 3*Pins, so no frame can exceed 3*Pins whatever the bonus roll count.
// The bound is reached by an all-strike game when Frames+2 <= MaxRollCount.
func (v *Variant) MaxScore() int {
	return 3 * v.Pins * v.Frames
}

// IsIllegalPinCount reports pins < 0 || pins > Pins.
func (v *Variant) IsIllegalPinCount(pins int) bool {
	return pins < 0 || pins > v.Pins
}

// IsRollBudgetExceeded reports rollIndex >= MaxRollCount.
func (v *Variant) IsRollBudgetExceeded(rollIndex int) bool {
	return rollIndex >= v.MaxRollCount()
}

var _ Ruleset = (*Variant)(nil)
