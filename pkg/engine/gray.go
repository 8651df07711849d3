package engine

import (
	"fmt"
	"math"
	"strings"
)

// RoundingMode selects how the grayscale value (R+G+B)/3 is derived.
type RoundingMode int

const (
	// RoundingExact keeps the unrounded mean, a multiple of 1/3.
	RoundingExact RoundingMode = iota
	// RoundingRounded rounds the mean to the nearest integer level.
	RoundingRounded
)

func (m RoundingMode) String() string {
	switch m {
	case RoundingExact:
		return "exact"
	case RoundingRounded:
		return "rounded"
	default:
		return fmt.Sprintf("rounding(%d)", int(m))
	}
}

// MarshalText encodes the mode by name.
func (m RoundingMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// ParseRoundingMode parses "exact" or "rounded". An empty string means exact.
func ParseRoundingMode(s string) (RoundingMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "exact", "unrounded":
		return RoundingExact, nil
	case "rounded", "round":
		return RoundingRounded, nil
	default:
		return 0, fmt.Errorf("%w: rounding mode %q", ErrInvalidParameter, s)
	}
}

// Grayscale returns the grayscale intensity of one pixel.
func Grayscale(r, g, b uint8, mode RoundingMode) float64 {
	return graySum(int(r)+int(g)+int(b), mode)
}

func graySum(sum int, mode RoundingMode) float64 {
	v := float64(sum) / 3
	if mode == RoundingRounded {
		return math.Round(v)
	}
	return v
}
