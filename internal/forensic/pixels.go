package forensic

import (
	"image"
	"math"
	"sort"

	"golang.org/x/image/draw"
)

// grayscale converts an image to a float64 luminance plane using the
// simple channel-mean PIL's "L" conversion approximates, matching what
// original_source does before handing pixels to the FFT/median-filter
// passes: img.convert('L') there is a per-channel average, not a
// perceptual luma weighting.
func grayscale(img image.Image) [][]float64 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([][]float64, h)
	for y := 0; y < h; y++ {
		row := make([]float64, w)
		for x := 0; x < w; x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			row[x] = (float64(r>>8) + float64(g>>8) + float64(bl>>8)) / 3.0
		}
		out[y] = row
	}
	return out
}

// downscaleLanczos resizes img so its longer side is at most maxDim,
// using a Lanczos-3 kernel. Images already within bounds are returned
// unchanged.
func downscaleLanczos(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	scale := float64(maxDim) / float64(w)
	if h > w {
		scale = float64(maxDim) / float64(h)
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	lanczos3.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

// lanczos3 is a Lanczos-windowed sinc kernel with a 3-lobe support,
// matching the resampling filter original_source applies before running
// the FFT peak-ratio check on oversized images.
var lanczos3 = draw.Kernel{
	Support: 3,
	At:      lanczosKernel(3),
}

func lanczosKernel(a float64) func(float64) float64 {
	return func(x float64) float64 {
		if x == 0 {
			return 1
		}
		if x < -a || x > a {
			return 0
		}
		px := math.Pi * x
		return a * math.Sin(px) * math.Sin(px/a) / (px * px)
	}
}

// medianFilter3x3 applies a 3x3 median filter to a grayscale plane,
// clamping at the border by replicating the edge value.
func medianFilter3x3(plane [][]float64) [][]float64 {
	h := len(plane)
	if h == 0 {
		return plane
	}
	w := len(plane[0])
	out := make([][]float64, h)
	window := make([]float64, 9)

	for y := 0; y < h; y++ {
		out[y] = make([]float64, w)
		for x := 0; x < w; x++ {
			n := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					yy := clampIdx(y+dy, h)
					xx := clampIdx(x+dx, w)
					window[n] = plane[yy][xx]
					n++
				}
			}
			sort.Float64s(window)
			out[y][x] = window[4]
		}
	}
	return out
}

// gaussianBlur applies a separable Gaussian blur with the given sigma.
func gaussianBlur(plane [][]float64, sigma float64) [][]float64 {
	radius := int(sigma*3 + 0.5)
	if radius < 1 {
		radius = 1
	}
	kernel := make([]float64, 2*radius+1)
	sum := 0.0
	for i := -radius; i <= radius; i++ {
		v := gaussianWeight(float64(i), sigma)
		kernel[i+radius] = v
		sum += v
	}
	for i := range kernel {
		kernel[i] /= sum
	}

	h := len(plane)
	if h == 0 {
		return plane
	}
	w := len(plane[0])

	horiz := make([][]float64, h)
	for y := 0; y < h; y++ {
		horiz[y] = make([]float64, w)
		for x := 0; x < w; x++ {
			acc := 0.0
			for k := -radius; k <= radius; k++ {
				acc += plane[y][clampIdx(x+k, w)] * kernel[k+radius]
			}
			horiz[y][x] = acc
		}
	}

	out := make([][]float64, h)
	for y := 0; y < h; y++ {
		out[y] = make([]float64, w)
	}
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			acc := 0.0
			for k := -radius; k <= radius; k++ {
				acc += horiz[clampIdx(y+k, h)][x] * kernel[k+radius]
			}
			out[y][x] = acc
		}
	}
	return out
}

func gaussianWeight(x, sigma float64) float64 {
	return math.Exp(-(x * x) / (2 * sigma * sigma))
}

func clampIdx(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// laplacianEdges computes a simple 3x3 Laplacian edge map, standing in
// for PIL's ImageFilter.FIND_EDGES kernel.
func laplacianEdges(plane [][]float64) [][]float64 {
	kernel := [3][3]float64{
		{-1, -1, -1},
		{-1, 8, -1},
		{-1, -1, -1},
	}
	return convolve3x3(plane, kernel)
}

// edgeEnhanceMore approximates PIL's ImageFilter.EDGE_ENHANCE_MORE, a
// stronger unsharp-style kernel than a plain Laplacian.
func edgeEnhanceMore(plane [][]float64) [][]float64 {
	kernel := [3][3]float64{
		{-1, -1, -1},
		{-1, 9, -1},
		{-1, -1, -1},
	}
	return convolve3x3(plane, kernel)
}

func convolve3x3(plane [][]float64, kernel [3][3]float64) [][]float64 {
	h := len(plane)
	if h == 0 {
		return plane
	}
	w := len(plane[0])
	out := make([][]float64, h)
	for y := 0; y < h; y++ {
		out[y] = make([]float64, w)
		for x := 0; x < w; x++ {
			acc := 0.0
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					acc += plane[clampIdx(y+ky, h)][clampIdx(x+kx, w)] * kernel[ky+1][kx+1]
				}
			}
			out[y][x] = acc
		}
	}
	return out
}

// rgbPlanes splits an image into three float64 channel planes.
func rgbPlanes(img image.Image) (r, g, bl [][]float64) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	r = make([][]float64, h)
	g = make([][]float64, h)
	bl = make([][]float64, h)
	for y := 0; y < h; y++ {
		r[y] = make([]float64, w)
		g[y] = make([]float64, w)
		bl[y] = make([]float64, w)
		for x := 0; x < w; x++ {
			rr, gg, bb, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			r[y][x] = float64(rr >> 8)
			g[y][x] = float64(gg >> 8)
			bl[y][x] = float64(bb >> 8)
		}
	}
	return r, g, bl
}

func flatten(plane [][]float64) []float64 {
	total := 0
	for _, row := range plane {
		total += len(row)
	}
	out := make([]float64, 0, total)
	for _, row := range plane {
		out = append(out, row...)
	}
	return out
}
