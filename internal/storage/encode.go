package storage

import (
	"bytes"
	"fmt"
	"image/png"

	"go-image-threshold/pkg/engine"
)

// EncodePNG encodes a pixel buffer as a PNG, keeping its alpha channel
func EncodePNG(buf *engine.PixelBuffer) ([]byte, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	var out bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&out, buf.ToNRGBA()); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return out.Bytes(), nil
}
