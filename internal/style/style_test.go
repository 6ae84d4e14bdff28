package style

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMapNoOverlap(t *testing.T) {
	cfg := DefaultConfig()

	for _, count := range []int{0, 1} {
		thickness, color := cfg.Map(count)
		if thickness != cfg.BaseThickness {
			t.Errorf("Map(%d) thickness = %f, want base %f", count, thickness, cfg.BaseThickness)
		}
		if color != cfg.NoOverlapColor {
			t.Errorf("Map(%d) color = %v, want neutral %v", count, color, cfg.NoOverlapColor)
		}
	}
}

func TestMapMonotonic(t *testing.T) {
	cfg := DefaultConfig()

	prevThickness, prevColor := cfg.Map(2)
	for count := 3; count <= cfg.RampFull; count++ {
		thickness, color := cfg.Map(count)
		if thickness < prevThickness {
			t.Errorf("thickness(%d) = %f < thickness(%d) = %f", count, thickness, count-1, prevThickness)
		}
		if color[0] < prevColor[0] {
			t.Errorf("red(%d) = %f < red(%d) = %f", count, color[0], count-1, prevColor[0])
		}
		prevThickness, prevColor = thickness, color
	}
}

func TestMapSaturates(t *testing.T) {
	cfg := DefaultConfig()

	thickness, color := cfg.Map(cfg.RampFull)
	if thickness != cfg.ThickMax {
		t.Errorf("thickness at full count = %f, want max %f", thickness, cfg.ThickMax)
	}
	if color != cfg.MaxOverlapColor {
		t.Errorf("color at full count = %v, want hot %v", color, cfg.MaxOverlapColor)
	}

	// Past the full-effect count, nothing grows further.
	thickness2, color2 := cfg.Map(cfg.RampFull * 10)
	if thickness2 != thickness || color2 != color {
		t.Errorf("attributes keep changing past saturation: %f/%v", thickness2, color2)
	}
}

func TestMapDegenerateRamp(t *testing.T) {
	// Full-effect count equal to the ramp start must not divide by zero:
	// any count at or above the threshold saturates.
	cfg := DefaultConfig()
	cfg.RampStart = 2
	cfg.RampFull = 2

	thickness, _ := cfg.Map(2)
	if thickness != cfg.ThickMax {
		t.Errorf("degenerate ramp thickness = %f, want max %f", thickness, cfg.ThickMax)
	}
	thickness, _ = cfg.Map(7)
	if thickness != cfg.ThickMax {
		t.Errorf("degenerate ramp thickness above threshold = %f, want max %f", thickness, cfg.ThickMax)
	}
}

func TestMapChannelsInterpolateIndependently(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NoOverlapColor = RGB{0, 0.5, 1}
	cfg.MaxOverlapColor = RGB{1, 0.5, 0}

	// Halfway along the color ramp (1..5): count 3.
	_, color := cfg.Map(3)
	require.InDelta(t, 0.5, color[0], 1e-9)
	require.InDelta(t, 0.5, color[1], 1e-9)
	require.InDelta(t, 0.5, color[2], 1e-9)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	bad := DefaultConfig()
	bad.BaseThickness = 0
	require.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.RampFull = 1 // below RampStart
	require.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.MaxOverlapColor = RGB{2, 0, 0} // channel out of range
	require.Error(t, bad.Validate())
}

func TestFiltersDefaultVisible(t *testing.T) {
	f := NewFilters()
	if !f.Enabled("Run") {
		t.Error("unseen type should default to visible")
	}

	f.Set("Run", false)
	if f.Enabled("Run") {
		t.Error("disabled type should be hidden")
	}
	if !f.Enabled("Ride") {
		t.Error("other types stay visible")
	}

	f.Set("Run", true)
	if !f.Enabled("Run") {
		t.Error("re-enabled type should be visible")
	}
}

func TestFiltersClone(t *testing.T) {
	f := NewFilters()
	f.Set("Ride", false)

	c := f.Clone()
	c.Set("Ride", true)

	if f.Enabled("Ride") {
		t.Error("mutating the clone changed the original")
	}
	if !c.Enabled("Ride") {
		t.Error("clone did not apply its own change")
	}
}

func TestFiltersStates(t *testing.T) {
	f := NewFilters()
	f.Set("Hike", false)

	states := f.States([]string{"Run", "Hike"})
	require.Equal(t, map[string]bool{"Run": true, "Hike": false}, states)
}
