package main

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"go-image-threshold/pkg/models"
)

func writeFixture(t *testing.T, dir string) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			v := uint8(20)
			if x >= 2 {
				v = 220
			}
			img.Set(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	path := filepath.Join(dir, "in.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	in := writeFixture(t, dir)
	out := filepath.Join(dir, "out.png")

	threshold := 100
	if err := run(models.ProcessRequest{Threshold: &threshold}, false, in, out); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("Expected output file: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("Expected PNG output: %v", err)
	}
	if r, _, _, _ := img.At(0, 0).RGBA(); r != 0 {
		t.Error("Expected dark half to be black")
	}
	if r, _, _, _ := img.At(3, 1).RGBA(); r != 0xffff {
		t.Error("Expected light half to be white")
	}
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	in := writeFixture(t, dir)
	out := filepath.Join(dir, "out.png")

	if err := run(models.ProcessRequest{Method: "manual"}, false, in, out); err == nil {
		t.Error("Expected error for manual without threshold")
	}
	if err := run(models.ProcessRequest{}, false, filepath.Join(dir, "missing.png"), out); err == nil {
		t.Error("Expected error for missing input")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("Expected no output after failures")
	}
}
