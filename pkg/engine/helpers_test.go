package engine

// grayRow builds a 1xN opaque buffer whose pixels have R=G=B=v.
func grayRow(values ...uint8) *PixelBuffer {
	buf := NewPixelBuffer(len(values), 1)
	for i, v := range values {
		o := i * bytesPerPixel
		buf.Pix[o], buf.Pix[o+1], buf.Pix[o+2], buf.Pix[o+3] = v, v, v, 255
	}
	return buf
}

// rgbaRow builds a 1xN buffer from explicit samples.
func rgbaRow(pixels ...[4]uint8) *PixelBuffer {
	buf := NewPixelBuffer(len(pixels), 1)
	for i, p := range pixels {
		copy(buf.Pix[i*bytesPerPixel:], p[:])
	}
	return buf
}

// bimodal builds a buffer with n pixels spread over [loFrom,loTo] and n over
// [hiFrom,hiTo].
func bimodal(n int, loFrom, loTo, hiFrom, hiTo uint8) *PixelBuffer {
	values := make([]uint8, 0, 2*n)
	for i := 0; i < n; i++ {
		values = append(values, loFrom+uint8(i%int(loTo-loFrom+1)))
		values = append(values, hiFrom+uint8(i%int(hiTo-hiFrom+1)))
	}
	return grayRow(values...)
}
