package ocr

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestSplitLanguages(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"eng", []string{"eng"}},
		{"eng+deu", []string{"eng", "deu"}},
		{" eng + jpn ", []string{"eng", "jpn"}},
		{"+", nil},
	}
	for _, tt := range tests {
		if got := splitLanguages(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%q: expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestEngine_RejectsBeforeRecognition(t *testing.T) {
	e := NewEngine("")
	if e.defaultLanguage != "eng" {
		t.Errorf("Expected eng default, got %q", e.defaultLanguage)
	}

	if _, err := e.Recognize(context.Background(), nil, ""); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("Expected ErrEmptyImage, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.Recognize(ctx, []byte{1}, ""); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}

	if err := e.Close(); err != nil {
		t.Fatalf("Unexpected close error: %v", err)
	}
	if err := e.Close(); err != nil {
		t.Errorf("Expected second close to be a no-op, got %v", err)
	}
	if _, err := e.Recognize(context.Background(), []byte{1}, ""); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
}
