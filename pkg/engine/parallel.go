package engine

import (
	"runtime"
	"sync"
)

// Buffers smaller than this are scanned on the calling goroutine.
const parallelMinPixels = 1 << 16

// stripCount returns how many contiguous pixel ranges a scan is split into.
func stripCount(pixels int) int {
	if pixels < parallelMinPixels {
		return 1
	}
	n := runtime.NumCPU()
	if n > pixels/parallelMinPixels {
		n = pixels / parallelMinPixels
	}
	if n < 1 {
		n = 1
	}
	return n
}

// forEachStrip runs fn over disjoint pixel ranges covering [0, pixels) and
// waits for all of them. Strips are numbered from zero.
func forEachStrip(pixels, strips int, fn func(strip, start, end int)) {
	if strips <= 1 {
		fn(0, 0, pixels)
		return
	}
	per := (pixels + strips - 1) / strips // ceil division

	var wg sync.WaitGroup
	for i := 0; i < strips; i++ {
		start := i * per
		end := start + per
		if end > pixels {
			end = pixels
		}
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(strip, start, end int) {
			defer wg.Done()
			fn(strip, start, end)
		}(i, start, end)
	}
	wg.Wait()
}
