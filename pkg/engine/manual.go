package engine

import "fmt"

// Manual returns a caller-supplied threshold.
type Manual struct {
	Value int
}

func (Manual) Method() Method         { return MethodManual }
func (Manual) Direction() Direction   { return GreaterEqualIsForeground }
func (Manual) Rounding() RoundingMode { return RoundingExact }

// Select validates the value; the buffer is not inspected.
func (s Manual) Select(_ *PixelBuffer) (Threshold, error) {
	if s.Value < 0 || s.Value > Levels-1 {
		return Threshold{}, fmt.Errorf("%w: manual threshold %d outside [0,255]", ErrInvalidParameter, s.Value)
	}
	return Threshold{
		Method:    MethodManual,
		Value:     float64(s.Value),
		Direction: s.Direction(),
		Rounding:  s.Rounding(),
	}, nil
}
