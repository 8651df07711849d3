package strategy

import (
	"context"
	"fmt"

	"go-image-threshold/pkg/engine"
)

// PipelineState is threaded through the strategies of a pipeline. Each
// strategy reads Current and records its result; Current always holds the
// buffer the next strategy should see.
type PipelineState struct {
	Source    *engine.PixelBuffer
	Current   *engine.PixelBuffer
	Stretch   *engine.StretchReport
	Threshold *engine.Threshold
	Binary    *engine.PixelBuffer
}

// ProcessingStrategy defines one step of image processing
type ProcessingStrategy interface {
	Apply(ctx context.Context, state *PipelineState) error
	GetStrategyName() string
}

// StretchStrategy applies a linear contrast stretch.
type StretchStrategy struct{}

// NewStretchStrategy creates a new contrast stretch strategy
func NewStretchStrategy() ProcessingStrategy {
	return &StretchStrategy{}
}

// Apply stretches the current buffer. Histograms are rebuilt from it.
func (s *StretchStrategy) Apply(ctx context.Context, state *PipelineState) error {
	out, report, err := engine.StretchContrast(state.Current)
	if err != nil {
		return fmt.Errorf("contrast stretch: %w", err)
	}
	state.Current = out
	state.Stretch = &report
	return nil
}

// GetStrategyName returns the strategy name
func (s *StretchStrategy) GetStrategyName() string {
	return "stretch"
}

// ThresholdStrategy selects a threshold with one selector.
type ThresholdStrategy struct {
	selector engine.Selector
}

// NewThresholdStrategy creates a threshold selection strategy
func NewThresholdStrategy(selector engine.Selector) ProcessingStrategy {
	return &ThresholdStrategy{selector: selector}
}

// Apply selects a threshold for the current buffer. A non-convergence result
// still records the last estimate before the error is returned.
func (s *ThresholdStrategy) Apply(ctx context.Context, state *PipelineState) error {
	t, err := s.selector.Select(state.Current)
	if err != nil {
		if t.Method != "" {
			state.Threshold = &t
		}
		return fmt.Errorf("%s threshold: %w", s.selector.Method(), err)
	}
	state.Threshold = &t
	return nil
}

// GetStrategyName returns the strategy name
func (s *ThresholdStrategy) GetStrategyName() string {
	return "threshold:" + string(s.selector.Method())
}

// BinarizeStrategy applies the threshold selected earlier in the pipeline.
type BinarizeStrategy struct{}

// NewBinarizeStrategy creates a binarization strategy
func NewBinarizeStrategy() ProcessingStrategy {
	return &BinarizeStrategy{}
}

// Apply binarizes the current buffer with the recorded threshold.
func (s *BinarizeStrategy) Apply(ctx context.Context, state *PipelineState) error {
	if state.Threshold == nil {
		return fmt.Errorf("binarize: no threshold selected")
	}
	out, err := engine.Binarize(state.Current, *state.Threshold)
	if err != nil {
		return fmt.Errorf("binarize: %w", err)
	}
	state.Binary = out
	state.Current = out
	return nil
}

// GetStrategyName returns the strategy name
func (s *BinarizeStrategy) GetStrategyName() string {
	return "binarize"
}

// PipelineContext runs strategies in order
type PipelineContext struct {
	strategies []ProcessingStrategy
}

// NewPipelineContext creates a new pipeline
func NewPipelineContext(strategies ...ProcessingStrategy) *PipelineContext {
	return &PipelineContext{
		strategies: strategies,
	}
}

// AddStrategy appends a strategy
func (c *PipelineContext) AddStrategy(strategy ProcessingStrategy) *PipelineContext {
	c.strategies = append(c.strategies, strategy)
	return c
}

// Execute runs every strategy against buf. The context is checked between
// strategies; the state reached so far is returned alongside any error.
func (c *PipelineContext) Execute(ctx context.Context, buf *engine.PixelBuffer) (*PipelineState, error) {
	state := &PipelineState{Source: buf, Current: buf}
	for _, s := range c.strategies {
		if err := ctx.Err(); err != nil {
			return state, err
		}
		if err := s.Apply(ctx, state); err != nil {
			return state, err
		}
	}
	return state, nil
}

// GetStrategyNames returns the names of the strategies in order
func (c *PipelineContext) GetStrategyNames() []string {
	names := make([]string, len(c.strategies))
	for i, s := range c.strategies {
		names[i] = s.GetStrategyName()
	}
	return names
}
