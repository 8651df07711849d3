package validation

import (
	"errors"
	"math"
	"reflect"
	"testing"

	apperrors "go-image-threshold/internal/errors"
	"go-image-threshold/pkg/engine"
	"go-image-threshold/pkg/models"
)

func intPtr(v int) *int { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestValidateThreshold(t *testing.T) {
	v := NewParamsValidator(100)

	tests := []struct {
		name    string
		req     models.ProcessRequest
		want    ThresholdParams
		wantErr string
	}{
		{
			name: "defaults to iterative mean",
			req:  models.ProcessRequest{},
			want: ThresholdParams{Method: engine.MethodIterativeMean, Params: engine.Params{MaxIterations: 100}},
		},
		{
			name: "threshold implies manual",
			req:  models.ProcessRequest{Threshold: intPtr(128)},
			want: ThresholdParams{Method: engine.MethodManual, Params: engine.Params{ManualValue: 128, MaxIterations: 100}},
		},
		{
			name: "percent implies percent black",
			req:  models.ProcessRequest{Percent: floatPtr(25), Stretch: true},
			want: ThresholdParams{Method: engine.MethodPercentBlack, Params: engine.Params{Percent: 25, MaxIterations: 100}, Stretch: true},
		},
		{
			name: "explicit method with iterations",
			req:  models.ProcessRequest{Method: "isodata", MaxIterations: 12},
			want: ThresholdParams{Method: engine.MethodIterativeMean, Params: engine.Params{MaxIterations: 12}},
		},
		{
			name: "camel case method",
			req:  models.ProcessRequest{Method: "fuzzyMinimumError"},
			want: ThresholdParams{Method: engine.MethodFuzzyMinimumError, Params: engine.Params{MaxIterations: 100}},
		},
		{
			name:    "unknown method",
			req:     models.ProcessRequest{Method: "otsu"},
			wantErr: apperrors.CodeUnknownMethod,
		},
		{
			name:    "manual without threshold",
			req:     models.ProcessRequest{Method: "manual"},
			wantErr: apperrors.CodeInvalidParameter,
		},
		{
			name:    "manual out of range",
			req:     models.ProcessRequest{Method: "manual", Threshold: intPtr(256)},
			wantErr: apperrors.CodeInvalidParameter,
		},
		{
			name:    "negative percent",
			req:     models.ProcessRequest{Percent: floatPtr(-1)},
			wantErr: apperrors.CodeInvalidParameter,
		},
		{
			name:    "NaN percent",
			req:     models.ProcessRequest{Method: "percent_black", Percent: floatPtr(math.NaN())},
			wantErr: apperrors.CodeInvalidParameter,
		},
		{
			name:    "negative iterations",
			req:     models.ProcessRequest{MaxIterations: -1},
			wantErr: apperrors.CodeInvalidParameter,
		},
		{
			name:    "too many iterations",
			req:     models.ProcessRequest{MaxIterations: MaxIterationsLimit + 1},
			wantErr: apperrors.CodeInvalidParameter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.ValidateThreshold(tt.req)
			if tt.wantErr != "" {
				var appErr *apperrors.AppError
				if !errors.As(err, &appErr) {
					t.Fatalf("Expected AppError, got %v", err)
				}
				if appErr.Code != tt.wantErr || appErr.Type != apperrors.ErrorTypeValidation {
					t.Errorf("Expected validation error %s, got %s/%s", tt.wantErr, appErr.Type, appErr.Code)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestValidateThreshold_ParameterErrorsWrapEngineSentinel(t *testing.T) {
	_, err := NewParamsValidator(0).ValidateThreshold(models.ProcessRequest{Threshold: intPtr(-5)})
	if !errors.Is(err, engine.ErrInvalidParameter) {
		t.Errorf("Expected ErrInvalidParameter in chain, got %v", err)
	}
}

func TestValidateMethods(t *testing.T) {
	v := NewParamsValidator(0)

	all, err := v.ValidateMethods(nil)
	if err != nil || !reflect.DeepEqual(all, engine.Methods()) {
		t.Errorf("Expected every method, got %v (%v)", all, err)
	}

	got, err := v.ValidateMethods([]string{"max_entropy, isodata", "maxEntropy", " "})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := []engine.Method{engine.MethodMaxEntropy, engine.MethodIterativeMean}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	if _, err := v.ValidateMethods([]string{"manual,bogus"}); !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestValidateRounding(t *testing.T) {
	v := NewParamsValidator(0)

	tests := []struct {
		in      string
		want    engine.RoundingMode
		wantErr bool
	}{
		{"", engine.RoundingRounded, false},
		{"exact", engine.RoundingExact, false},
		{"Rounded", engine.RoundingRounded, false},
		{"floor", 0, true},
	}
	for _, tt := range tests {
		got, err := v.ValidateRounding(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%q: expected error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("%q: expected %v, got %v (%v)", tt.in, tt.want, got, err)
		}
	}
}

func TestValidateLanguage(t *testing.T) {
	v := NewParamsValidator(0)
	for _, ok := range []string{"", "eng", "eng+deu", "chi_sim"} {
		if err := v.ValidateLanguage(ok); err != nil {
			t.Errorf("Expected %q to be valid, got %v", ok, err)
		}
	}
	for _, bad := range []string{"en", "eng+", "../eng", "eng deu"} {
		if err := v.ValidateLanguage(bad); err == nil {
			t.Errorf("Expected %q to be rejected", bad)
		}
	}
}

func TestValidateCompare(t *testing.T) {
	v := NewParamsValidator(64)

	params, methods, err := v.ValidateCompare(models.ProcessRequest{Stretch: true})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := engine.Params{ManualValue: DefaultCompareThreshold, Percent: DefaultComparePercent, MaxIterations: 64}
	if params.Params != want || !params.Stretch {
		t.Errorf("Expected defaults %+v, got %+v", want, params)
	}
	if len(methods) != len(engine.Methods()) {
		t.Errorf("Expected every method, got %v", methods)
	}

	params, methods, err = v.ValidateCompare(models.ProcessRequest{
		Methods:   []string{"manual", "percent_black"},
		Threshold: intPtr(90),
		Percent:   floatPtr(10),
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if params.Params.ManualValue != 90 || params.Params.Percent != 10 || len(methods) != 2 {
		t.Errorf("Expected supplied parameters, got %+v %v", params, methods)
	}

	if _, _, err := v.ValidateCompare(models.ProcessRequest{Percent: floatPtr(101)}); err == nil {
		t.Error("Expected out of range percent to be rejected")
	}
}
