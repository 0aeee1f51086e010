// Package layout packs photos into justified rows and windows them against a viewport.
package layout

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is wrapped by every Config.Validate failure.
var ErrInvalidConfig = errors.New("invalid layout config")

// PartialPolicy sizes the final, unstretched row of a group.
// The defaults were chosen by eye and are kept configurable.
type PartialPolicy struct {
	// One item on desktop: min(SingleMax, T*SingleScale).
	SingleMax   float64 `toml:"single_max" env:"SINGLE_MAX"`
	SingleScale float64 `toml:"single_scale" env:"SINGLE_SCALE"`

	// One item on mobile wider than LandscapeAspect: min(LandscapeMax, width/aspect).
	LandscapeAspect float64 `toml:"landscape_aspect" env:"LANDSCAPE_ASPECT"`
	LandscapeMax    float64 `toml:"landscape_max" env:"LANDSCAPE_MAX"`

	// One item on mobile otherwise: min(PortraitMax, T*PortraitScale).
	PortraitMax   float64 `toml:"portrait_max" env:"PORTRAIT_MAX"`
	PortraitScale float64 `toml:"portrait_scale" env:"PORTRAIT_SCALE"`

	// Two items on desktop: min(PairMax, T*PairScale).
	PairMax   float64 `toml:"pair_max" env:"PAIR_MAX"`
	PairScale float64 `toml:"pair_scale" env:"PAIR_SCALE"`

	// Anything else: min(T*TrailScale, fill height).
	TrailScale float64 `toml:"trail_scale" env:"TRAIL_SCALE"`
}

// Config parameterizes the row builder and the windower.
type Config struct {
	Gap                    float64       `toml:"gap" env:"GAP"`
	TargetRowHeightDesktop float64       `toml:"target_row_height_desktop" env:"ROW_HEIGHT_DESKTOP"`
	TargetRowHeightMobile  float64       `toml:"target_row_height_mobile" env:"ROW_HEIGHT_MOBILE"`
	MobileBreakpoint       float64       `toml:"mobile_breakpoint" env:"MOBILE_BREAKPOINT"`
	HeaderHeight           float64       `toml:"header_height" env:"HEADER_HEIGHT"`
	OverscanRows           int           `toml:"overscan_rows" env:"OVERSCAN_ROWS"`
	PrefetchMargin         float64       `toml:"prefetch_margin" env:"PREFETCH_MARGIN"`
	Partial                PartialPolicy `toml:"partial" envPrefix:"PARTIAL_"`
}

// DefaultPartialPolicy returns the stock partial row caps.
func DefaultPartialPolicy() PartialPolicy {
	return PartialPolicy{
		SingleMax:       480,
		SingleScale:     1.6,
		LandscapeAspect: 1.3,
		LandscapeMax:    350,
		PortraitMax:     450,
		PortraitScale:   1.5,
		PairMax:         380,
		PairScale:       1.3,
		TrailScale:      1.2,
	}
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		Gap:                    8,
		TargetRowHeightDesktop: 280,
		TargetRowHeightMobile:  180,
		MobileBreakpoint:       640,
		HeaderHeight:           60,
		OverscanRows:           5,
		PrefetchMargin:         200,
		Partial:                DefaultPartialPolicy(),
	}
}

// Validate reports the first unusable setting.
func (c Config) Validate() error {
	positive := []struct {
		name string
		v    float64
	}{
		{"target_row_height_desktop", c.TargetRowHeightDesktop},
		{"target_row_height_mobile", c.TargetRowHeightMobile},
		{"header_height", c.HeaderHeight},
		{"partial.single_max", c.Partial.SingleMax},
		{"partial.single_scale", c.Partial.SingleScale},
		{"partial.landscape_aspect", c.Partial.LandscapeAspect},
		{"partial.landscape_max", c.Partial.LandscapeMax},
		{"partial.portrait_max", c.Partial.PortraitMax},
		{"partial.portrait_scale", c.Partial.PortraitScale},
		{"partial.pair_max", c.Partial.PairMax},
		{"partial.pair_scale", c.Partial.PairScale},
		{"partial.trail_scale", c.Partial.TrailScale},
	}
	for _, p := range positive {
		if !(p.v > 0) {
			return fmt.Errorf("%s must be positive, got %v: %w", p.name, p.v, ErrInvalidConfig)
		}
	}

	if c.Gap < 0 {
		return fmt.Errorf("gap must not be negative, got %v: %w", c.Gap, ErrInvalidConfig)
	}
	if c.MobileBreakpoint < 0 {
		return fmt.Errorf("mobile_breakpoint must not be negative, got %v: %w", c.MobileBreakpoint, ErrInvalidConfig)
	}
	if c.OverscanRows < 0 {
		return fmt.Errorf("overscan_rows must not be negative, got %d: %w", c.OverscanRows, ErrInvalidConfig)
	}
	if c.PrefetchMargin < 0 {
		return fmt.Errorf("prefetch_margin must not be negative, got %v: %w", c.PrefetchMargin, ErrInvalidConfig)
	}
	return nil
}

// Mobile reports whether width falls in the mobile width class.
func (c Config) Mobile(width float64) bool {
	return width < c.MobileBreakpoint
}

// TargetHeight returns the target row height for the width class of width.
func (c Config) TargetHeight(width float64) float64 {
	if c.Mobile(width) {
		return c.TargetRowHeightMobile
	}
	return c.TargetRowHeightDesktop
}
