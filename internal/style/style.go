// Package style converts overlap counts into render attributes. Heavily
// shared segments get thicker and shift toward the hot color; unique
// segments stay thin and neutral.
package style

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// RGB is a color with channels in [0,1].
type RGB [3]float64

// Config holds the style ramp tunables. The zero value is not usable;
// start from DefaultConfig.
type Config struct {
	// BaseThickness is used for segments with no overlap.
	BaseThickness float64 `mapstructure:"base_thickness" validate:"gt=0"`
	// ThickStart and ThickMax bound the thickness ramp output.
	ThickStart float64 `mapstructure:"thick_start" validate:"gt=0"`
	ThickMax   float64 `mapstructure:"thick_max" validate:"gtefield=ThickStart"`
	// RampStart is the overlap count where the thickness ramp leaves zero,
	// RampFull the count where both ramps saturate.
	RampStart int `mapstructure:"ramp_start" validate:"min=1"`
	RampFull  int `mapstructure:"ramp_full" validate:"gtefield=RampStart"`
	// NoOverlapColor and MaxOverlapColor are the color ramp endpoints.
	NoOverlapColor  RGB `mapstructure:"no_overlap_color" validate:"dive,min=0,max=1"`
	MaxOverlapColor RGB `mapstructure:"max_overlap_color" validate:"dive,min=0,max=1"`
}

// DefaultConfig returns the stock styling: 2px black lines ramping to 8px
// red between 2 and 5 co-occurring tracks.
func DefaultConfig() Config {
	return Config{
		BaseThickness:   2.0,
		ThickStart:      2.0,
		ThickMax:        8.0,
		RampStart:       2,
		RampFull:        5,
		NoOverlapColor:  RGB{0, 0, 0},
		MaxOverlapColor: RGB{1, 0, 0},
	}
}

var validate = validator.New()

// Validate checks the config invariants.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("style config: %w", err)
	}
	return nil
}

// Map converts an overlap count into a line thickness and color. Pure
// function of (count, config).
func (c Config) Map(count int) (thickness float64, color RGB) {
	if count <= 1 {
		return c.BaseThickness, c.NoOverlapColor
	}

	// Two independent linear ramps, each clamped to [0,1]. The thickness
	// ramp starts at RampStart, the color ramp at the minimum count 1;
	// both saturate at RampFull.
	tRamp := ramp01(count, c.RampStart, c.RampFull)
	cRamp := ramp01(count, 1, c.RampFull)

	thickness = c.ThickStart + tRamp*(c.ThickMax-c.ThickStart)
	thickness = clamp(thickness, c.ThickStart, c.ThickMax)

	for i := range color {
		color[i] = c.NoOverlapColor[i] + cRamp*(c.MaxOverlapColor[i]-c.NoOverlapColor[i])
	}
	return thickness, color
}

// ramp01 maps count linearly from [zero..full] onto [0,1]. A degenerate
// ramp (full == zero) saturates for any count at or above the threshold.
func ramp01(count, zero, full int) float64 {
	if full <= zero {
		if count >= full {
			return 1
		}
		return 0
	}
	v := float64(count-zero) / float64(full-zero)
	return clamp(v, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
