package service

import (
	"errors"
	"fmt"

	"go-image-threshold/internal/analyzer"
	apperrors "go-image-threshold/internal/errors"
	"go-image-threshold/pkg/engine"
	"go-image-threshold/pkg/models"
)

// convertThreshold converts an engine threshold into its response form
func convertThreshold(t engine.Threshold, foregroundRatio float64) models.ThresholdResult {
	return models.ThresholdResult{
		Method:          string(t.Method),
		Value:           t.Value,
		Level:           t.Level(),
		Direction:       t.Direction.String(),
		Rounding:        t.Rounding.String(),
		Score:           t.Score,
		Iterations:      t.Iterations,
		Clamped:         t.Clamped,
		ForegroundRatio: foregroundRatio,
	}
}

// convertStretch converts a stretch report; nil stays nil
func convertStretch(r *engine.StretchReport) *models.StretchSummary {
	if r == nil {
		return nil
	}
	summary := &models.StretchSummary{
		Red:   convertRange(r.Red),
		Green: convertRange(r.Green),
		Blue:  convertRange(r.Blue),
	}
	for _, c := range r.Degenerate {
		summary.Degenerate = append(summary.Degenerate, c.String())
	}
	return summary
}

func convertRange(r engine.StretchRange) models.ChannelRange {
	return models.ChannelRange{Min: r.Min, Max: r.Max, Degenerate: r.Degenerate()}
}

// convertComparison converts per-method outcomes, keeping request order
func convertComparison(outcome *analyzer.ComparisonOutcome) []models.MethodComparison {
	results := make([]models.MethodComparison, 0, len(outcome.Results))
	for _, r := range outcome.Results {
		mc := models.MethodComparison{Method: string(r.Method)}
		if r.Threshold != nil {
			tr := convertThreshold(*r.Threshold, r.ForegroundRatio)
			mc.Threshold = &tr
		}
		if r.Err != nil {
			appErr := apperrors.FromEngine(r.Err)
			mc.Error = &models.ErrorResponse{
				Error:   string(appErr.Type),
				Message: appErr.Message,
				Code:    appErr.Code,
			}
		}
		results = append(results, mc)
	}
	return results
}

// describeMethods lists every method with its conventions
func describeMethods() models.MethodsResponse {
	var resp models.MethodsResponse
	for _, m := range engine.Methods() {
		info, err := engine.Describe(m)
		if err != nil {
			continue
		}
		resp.Methods = append(resp.Methods, models.MethodDescription{
			Method:     string(info.Method),
			Direction:  info.Direction.String(),
			Rounding:   info.Rounding.String(),
			Parameters: info.Parameters,
		})
	}
	return resp
}

// thresholdError converts a selection failure. A non-converged estimate is
// kept in the error details.
func thresholdError(outcome *analyzer.ThresholdOutcome, err error) *apperrors.AppError {
	appErr := apperrors.FromEngine(err)
	if errors.Is(err, engine.ErrNonConvergence) && outcome != nil {
		appErr.Details = fmt.Sprintf("last estimate %.4g after %d iterations",
			outcome.Threshold.Value, outcome.Threshold.Iterations)
	}
	return appErr
}
