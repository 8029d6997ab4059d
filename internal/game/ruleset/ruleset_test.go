package ruleset_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/bowling/internal/game/ruleset"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestTenPin_Constants(t *testing.T) {
	rs := ruleset.TenPin()
	assert.Equal(t, "ten_pin", rs.ID())
	assert.Equal(t, 10, rs.PinCount())
	assert.Equal(t, 10, rs.FrameCount())
	assert.Equal(t, 1, rs.BonusRollCount())
	assert.Equal(t, 21, rs.MaxRollCount())
	assert.Equal(t, 300, rs.MaxScore())
	assert.NoError(t, rs.Validate())
}

func TestTenPin_IsIllegalPinCount(t *testing.T) {
	rs := ruleset.TenPin()
	assert.True(t, rs.IsIllegalPinCount(-1))
	assert.True(t, rs.IsIllegalPinCount(11))
	for pins := 0; pins <= 10; pins++ {
		assert.False(t, rs.IsIllegalPinCount(pins), "pins %d should be legal", pins)
	}
}

func TestTenPin_IsRollBudgetExceeded(t *testing.T) {
	rs := ruleset.TenPin()
	assert.False(t, rs.IsRollBudgetExceeded(0))
	assert.False(t, rs.IsRollBudgetExceeded(20))
	assert.True(t, rs.IsRollBudgetExceeded(21))
	assert.True(t, rs.IsRollBudgetExceeded(22))
}

func TestVariant_Validate(t *testing.T) {
	cases := []struct {
		name    string
		variant ruleset.Variant
	}{
		{"empty id", ruleset.Variant{Pins: 10, Frames: 10}},
		{"zero pins", ruleset.Variant{VariantID: "x", Frames: 10}},
		{"zero frames", ruleset.Variant{VariantID: "x", Pins: 10}},
		{"negative bonus", ruleset.Variant{VariantID: "x", Pins: 10, Frames: 10, BonusRolls: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.variant.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ruleset.ErrInvalidVariant))
		})
	}
}

func TestVariant_DisplayName(t *testing.T) {
	assert.Equal(t, "Ten-pin", ruleset.TenPin().DisplayName())
	v := &ruleset.Variant{VariantID: "short"}
	assert.Equal(t, "short", v.DisplayName())
}

// Property: the predicates agree with the variant constants for any valid variant.
func TestProperty_Variant_Predicates(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := &ruleset.Variant{
			VariantID:  "generated",
			Pins:       rapid.IntRange(1, 20).Draw(t, "pins"),
			Frames:     rapid.IntRange(1, 15).Draw(t, "frames"),
			BonusRolls: rapid.IntRange(0, 3).Draw(t, "bonus"),
		}
		if v.MaxRollCount() != 2*v.Frames+v.BonusRolls {
			t.Fatalf("MaxRollCount() = %d, want %d", v.MaxRollCount(), 2*v.Frames+v.BonusRolls)
		}
		pins := rapid.IntRange(-5, 25).Draw(t, "candidate")
		if got, want := v.IsIllegalPinCount(pins), pins < 0 || pins > v.Pins; got != want {
			t.Fatalf("IsIllegalPinCount(%d) = %v, want %v", pins, got, want)
		}
		idx := rapid.IntRange(0, 40).Draw(t, "rollIndex")
		if got, want := v.IsRollBudgetExceeded(idx), idx >= v.MaxRollCount(); got != want {
			t.Fatalf("IsRollBudgetExceeded(%d) = %v, want %v", idx, got, want)
		}
	})
}

func TestLoadVariants_ParsesYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "short.yaml"), `
id: short
name: "Short game"
pins: 5
frames: 3
bonus_rolls: 2
`)
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")
	variants, err := ruleset.LoadVariants(dir)
	require.NoError(t, err)
	require.Len(t, variants, 1)
	v := variants[0]
	assert.Equal(t, "short", v.ID())
	assert.Equal(t, 5, v.PinCount())
	assert.Equal(t, 3, v.FrameCount())
	assert.Equal(t, 2, v.BonusRollCount())
	assert.Equal(t, 8, v.MaxRollCount())
}

func TestLoadVariants_RejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bad.yaml"), "id: bad\npins: 0\nframes: 10\n")
	_, err := ruleset.LoadVariants(dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, ruleset.ErrInvalidVariant)
}

func TestLoadVariants_MissingDir(t *testing.T) {
	_, err := ruleset.LoadVariants(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestLoadVariants_ContentDirectory(t *testing.T) {
	variants, err := ruleset.LoadVariants("../../../content/rulesets")
	require.NoError(t, err)
	require.NotEmpty(t, variants)
	reg, err := ruleset.NewRegistry(variants...)
	require.NoError(t, err)
	tenPin, err := reg.Lookup(ruleset.TenPinID)
	require.NoError(t, err)
	assert.Equal(t, 21, tenPin.MaxRollCount())
}

func TestRegistry_BuiltinAndLookup(t *testing.T) {
	reg, err := ruleset.NewRegistry()
	require.NoError(t, err)
	assert.Equal(t, []string{ruleset.TenPinID}, reg.IDs())

	_, err = reg.Lookup("duckpin")
	assert.ErrorIs(t, err, ruleset.ErrUnknownVariant)
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	a := &ruleset.Variant{VariantID: "dup", Pins: 10, Frames: 10}
	b := &ruleset.Variant{VariantID: "dup", Pins: 5, Frames: 5}
	_, err := ruleset.NewRegistry(a, b)
	assert.Error(t, err)
}

func TestResolve_BuiltinWithoutDir(t *testing.T) {
	v, err := ruleset.Resolve("", ruleset.TenPinID)
	require.NoError(t, err)
	assert.Equal(t, 300, v.MaxScore())

	_, err = ruleset.Resolve("", "nine_pin_short")
	assert.ErrorIs(t, err, ruleset.ErrUnknownVariant)
}
