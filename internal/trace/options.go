package trace

import (
	"errors"
	"fmt"
)

// ErrInvalidOptions is returned when trace or post-processing options are out of range.
var ErrInvalidOptions = errors.New("invalid trace options")

// SeedOptions configures a seeded directional trace.
type SeedOptions struct {
	WindowHalfHeight int     `json:"window_half_height"` // Rows searched above and below the previous hit
	Tolerance        float64 `json:"tolerance"`          // Maximum color distance to accept, 0..√3
	MaxGap           int     `json:"max_gap"`            // Consecutive missed columns before stopping
	Lookahead        int     `json:"lookahead"`          // Columns searched ahead to bridge dashes
}

// DefaultSeedOptions returns the defaults used by the interactive tool.
func DefaultSeedOptions() SeedOptions {
	return SeedOptions{
		WindowHalfHeight: 8,
		Tolerance:        0.25,
		MaxGap:           3,
		Lookahead:        3,
	}
}

// Validate checks that every field is in range.
func (o SeedOptions) Validate() error {
	if o.WindowHalfHeight <= 0 {
		return fmt.Errorf("%w: window half-height must be > 0, got %d", ErrInvalidOptions, o.WindowHalfHeight)
	}
	if o.Tolerance < 0 {
		return fmt.Errorf("%w: tolerance must be >= 0, got %g", ErrInvalidOptions, o.Tolerance)
	}
	if o.MaxGap < 0 {
		return fmt.Errorf("%w: max gap must be >= 0, got %d", ErrInvalidOptions, o.MaxGap)
	}
	if o.Lookahead < 0 {
		return fmt.Errorf("%w: lookahead must be >= 0, got %d", ErrInvalidOptions, o.Lookahead)
	}
	return nil
}

// PostOptions configures smoothing and outlier rejection.
type PostOptions struct {
	MedianWindow    int     `json:"median_window"`    // Odd window size; 1 disables smoothing
	OutlierFraction float64 `json:"outlier_fraction"` // Max jump as a fraction of the Y range; 0 disables
}

// DefaultPostOptions returns a 3-point median and a 10% jump limit.
func DefaultPostOptions() PostOptions {
	return PostOptions{
		MedianWindow:    3,
		OutlierFraction: 0.10,
	}
}

// Validate checks that every field is in range.
func (o PostOptions) Validate() error {
	if o.MedianWindow < 1 || o.MedianWindow%2 == 0 {
		return fmt.Errorf("%w: median window must be odd and >= 1, got %d", ErrInvalidOptions, o.MedianWindow)
	}
	if o.OutlierFraction < 0 {
		return fmt.Errorf("%w: outlier fraction must be >= 0, got %g", ErrInvalidOptions, o.OutlierFraction)
	}
	return nil
}
