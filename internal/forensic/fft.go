package forensic

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/dsp/fourier"
)

// fft2Magnitude computes the magnitude of the 2D discrete Fourier
// transform of a grayscale plane, row-then-column via 1D complex FFTs
// (gonum's dsp/fourier only exposes 1D transforms), then fftshifts the
// result so the DC component sits at the center - matching
// np.fft.fftshift(np.fft.fft2(...)) in original_source. Each pool job
// constructs its own fourier.CmplxFFT: the plan reuses internal scratch
// buffers across calls and isn't safe to share across goroutines.
func fft2Magnitude(plane [][]float64) [][]float64 {
	h := len(plane)
	if h == 0 {
		return nil
	}
	w := len(plane[0])

	pool := newWorkerPool()

	grid := make([][]complex128, h)
	for y := 0; y < h; y++ {
		y := y
		pool.submit(func() {
			rowFFT := fourier.NewCmplxFFT(w)
			row := make([]complex128, w)
			for x := 0; x < w; x++ {
				row[x] = complex(plane[y][x], 0)
			}
			grid[y] = rowFFT.Coefficients(nil, row)
		})
	}
	pool.wait()

	transformed := make([][]complex128, h)
	for y := range transformed {
		transformed[y] = make([]complex128, w)
	}
	for x := 0; x < w; x++ {
		x := x
		pool.submit(func() {
			colFFT := fourier.NewCmplxFFT(h)
			col := make([]complex128, h)
			for y := 0; y < h; y++ {
				col[y] = grid[y][x]
			}
			out := colFFT.Coefficients(nil, col)
			for y := 0; y < h; y++ {
				transformed[y][x] = out[y]
			}
		})
	}
	pool.wait()

	mag := make([][]float64, h)
	for y := 0; y < h; y++ {
		mag[y] = make([]float64, w)
		for x := 0; x < w; x++ {
			mag[y][x] = cmplxAbs(transformed[y][x])
		}
	}

	return fftshift(mag)
}

func cmplxAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}

// fftshift swaps quadrants so the zero-frequency term moves to the
// center of the plane, matching numpy.fft.fftshift.
func fftshift(plane [][]float64) [][]float64 {
	h := len(plane)
	if h == 0 {
		return plane
	}
	w := len(plane[0])
	out := make([][]float64, h)
	for y := 0; y < h; y++ {
		out[y] = make([]float64, w)
	}
	hh, hw := h/2, w/2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			ny := (y + hh) % h
			nx := (x + hw) % w
			out[ny][nx] = plane[y][x]
		}
	}
	return out
}

// resamplingPeakRatio zeroes the DC-centered window of an fftshifted
// magnitude plane and compares the mean of its top-N remaining peaks to
// the median of the rest; resampling (upscale/downscale, rotation) tends
// to leave a sharp secondary peak unrelated to the DC component.
func resamplingPeakRatio(mag [][]float64, dcRadius, topN int) float64 {
	h := len(mag)
	if h == 0 {
		return 0
	}
	w := len(mag[0])
	cy, cx := h/2, w/2

	values := make([]float64, 0, h*w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if abs(y-cy) <= dcRadius && abs(x-cx) <= dcRadius {
				continue
			}
			values = append(values, mag[y][x])
		}
	}
	if len(values) == 0 {
		return 0
	}

	sorted := append([]float64(nil), values...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	n := topN
	if n > len(sorted) {
		n = len(sorted)
	}
	topMean := 0.0
	for i := 0; i < n; i++ {
		topMean += sorted[i]
	}
	topMean /= float64(n)

	rest := sorted[n:]
	medianMag := median(rest)

	return topMean / (medianMag + epsTiny)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
