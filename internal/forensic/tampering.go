package forensic

import (
	"bytes"
	"context"
	"crypto/md5"
	"image"
	"image/jpeg"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/docforensics/core/internal/config"
	"github.com/docforensics/core/internal/validation"
)

// TamperingDetector runs the full suite of pixel-level forensic checks:
// error level analysis, clone-region detection, compression-consistency,
// quantization-table anomaly, FFT resampling, median-filter detection,
// color-channel correlation, noise-ratio, and edge-consistency. Each
// sub-analysis is independent of the others and runs concurrently.
type TamperingDetector struct {
	cfg *config.ForensicConfig
}

// NewTamperingDetector constructs a TamperingDetector bound to cfg.
func NewTamperingDetector(cfg *config.ForensicConfig) *TamperingDetector {
	return &TamperingDetector{cfg: cfg}
}

type tamperingFindings struct {
	elaPerformed    bool
	elaRatio        float64
	elaVariance     float64
	elaConfidence   float64
	elaTampered     bool

	hasClones bool

	compressionConsistent bool

	quantAnomalous bool

	resamplingFlagged bool

	medianFilterFlagged bool

	colorCorrelation float64
	colorCorrLow     bool

	noiseRatio    float64
	noiseFlagged  bool

	edgeDiff     float64
	edgeFlagged  bool
}

// Detect decodes data as an image and runs every sub-analysis
// concurrently via errgroup, then aggregates the results into a verdict.
func (d *TamperingDetector) Detect(ctx context.Context, data []byte, format string) (TamperingDetectionResult, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		issue := validation.NewIssue("tampering", validation.SeverityLow, "image could not be decoded for pixel-level analysis: "+err.Error())
		return TamperingDetectionResult{
			IsTampered:   false,
			Confidence:   0,
			ELAPerformed: false,
			Issues:       []validation.Issue{issue},
		}, nil
	}

	var f tamperingFindings

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if format != "jpeg" {
			return nil
		}
		ratio, variance, tampered, performed := d.performELA(img)
		f.elaPerformed = performed
		f.elaRatio = ratio
		f.elaVariance = variance
		f.elaTampered = tampered
		f.elaConfidence = math.Min(ratio*d.cfg.ELAConfidenceScale, 1.0)
		return gctx.Err()
	})

	g.Go(func() error {
		f.hasClones = d.detectClonedRegions(img)
		return gctx.Err()
	})

	g.Go(func() error {
		f.compressionConsistent = d.checkCompressionConsistency(img)
		return gctx.Err()
	})

	g.Go(func() error {
		if format != "jpeg" {
			f.quantAnomalous = false
			return nil
		}
		values := quantizationTables(data)
		_, _, anomalous := quantizationAnomaly(values)
		f.quantAnomalous = anomalous
		return gctx.Err()
	})

	g.Go(func() error {
		f.resamplingFlagged = d.detectResamplingFFT(img)
		return gctx.Err()
	})

	g.Go(func() error {
		f.medianFilterFlagged = d.detectMedianFilter(img)
		return gctx.Err()
	})

	g.Go(func() error {
		f.colorCorrelation = d.colorCorrelation(img)
		f.colorCorrLow = f.colorCorrelation < d.cfg.ColorCorrLow
		return gctx.Err()
	})

	g.Go(func() error {
		f.noiseRatio = d.noiseRatio(img)
		f.noiseFlagged = f.noiseRatio > d.cfg.NoiseRatioMax
		return gctx.Err()
	})

	g.Go(func() error {
		f.edgeDiff = d.edgeConsistency(img)
		f.edgeFlagged = f.edgeDiff > d.cfg.EdgeConsistencyDiff
		return gctx.Err()
	})

	if err := g.Wait(); err != nil {
		return TamperingDetectionResult{}, err
	}

	return d.aggregate(f), nil
}

// aggregate combines every sub-analysis into the final verdict: tampered
// if any single indicator fired, confidence scaled by how many
// independent indicators agree (or by the ELA anomaly ratio when ELA
// itself is the one that fired).
func (d *TamperingDetector) aggregate(f tamperingFindings) TamperingDetectionResult {
	var issues []validation.Issue
	indicators := 0

	if f.elaPerformed && f.elaTampered {
		indicators++
		issues = append(issues, validation.NewIssue("tampering", validation.SeverityCritical, "error level analysis found a localized recompression anomaly"))
	}
	if f.hasClones {
		indicators++
		issues = append(issues, validation.NewIssue("tampering", validation.SeverityHigh, "CLONE: duplicated pixel blocks detected, possible copy-move forgery"))
	}
	if !f.compressionConsistent {
		indicators++
		issues = append(issues, validation.NewIssue("tampering", validation.SeverityMedium, "compression variance is inconsistent across image quadrants"))
	}
	if f.quantAnomalous {
		indicators++
		issues = append(issues, validation.NewIssue("tampering", validation.SeverityMedium, "JPEG quantization table values are anomalous for a camera original"))
	}
	if f.resamplingFlagged {
		indicators++
		issues = append(issues, validation.NewIssue("tampering", validation.SeverityHigh, "RESAMPLING: frequency-domain peak suggests geometric resampling"))
	}
	if f.medianFilterFlagged {
		indicators++
		issues = append(issues, validation.NewIssue("tampering", validation.SeverityMedium, "MEDIAN_FILTER: image matches a median-smoothing signature"))
	}
	if f.colorCorrLow {
		indicators++
		issues = append(issues, validation.NewIssue("tampering", validation.SeverityMedium, "COLOR_CORRELATION: channel correlation is lower than expected for a natural photo"))
	}
	if f.noiseFlagged {
		indicators++
		issues = append(issues, validation.NewIssue("tampering", validation.SeverityMedium, "noise variance ratio across regions exceeds the natural-photo range"))
	}
	if f.edgeFlagged {
		indicators++
		issues = append(issues, validation.NewIssue("tampering", validation.SeverityMedium, "EDGE_CONSISTENCY: edge-filter responses diverge beyond the natural-photo range"))
	}

	isTampered := indicators > 0

	var confidence float64
	switch {
	case f.elaPerformed && f.elaTampered:
		confidence = f.elaConfidence
	case indicators >= 3:
		confidence = 0.85
	case indicators >= 2:
		confidence = 0.7
	case indicators >= 1:
		confidence = 0.5
	default:
		confidence = 0.0
	}

	result := TamperingDetectionResult{
		IsTampered:            isTampered,
		Confidence:            round3(confidence),
		ELAPerformed:          f.elaPerformed,
		HasClonedRegions:      f.hasClones,
		CompressionConsistent: f.compressionConsistent,
		Issues:                issues,
	}
	if f.elaPerformed {
		ratio := round3(f.elaRatio)
		variance := round3(f.elaVariance)
		result.ELAAnomalyRatio = &ratio
		result.ELAVariance = &variance
	}
	return result
}

// performELA re-encodes the image at quality 90, scales the per-channel
// difference image by 255/M (M the max channel difference over the whole
// image - matching original_source's ImageChops.difference followed by a
// point(lambda p: p*scale) brightening step), and measures the fraction of
// (pixel, channel) values whose scaled difference exceeds mean+2*stddev -
// a signature of localized recompression left behind when a region is
// edited and resaved into an otherwise untouched JPEG.
func (d *TamperingDetector) performELA(img image.Image) (ratio, variance float64, tampered, performed bool) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: elaRequantizeQuality}); err != nil {
		return 0, 0, false, false
	}
	recompressed, err := jpeg.Decode(&buf)
	if err != nil {
		return 0, 0, false, false
	}

	b := img.Bounds()
	raw := make([]float64, 0, b.Dx()*b.Dy()*3)
	maxDiff := 0.0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r1, g1, b1, _ := img.At(x, y).RGBA()
			r2, g2, b2, _ := recompressed.At(x, y).RGBA()
			dr := math.Abs(float64(r1>>8) - float64(r2>>8))
			dg := math.Abs(float64(g1>>8) - float64(g2>>8))
			db := math.Abs(float64(b1>>8) - float64(b2>>8))
			raw = append(raw, dr, dg, db)
			if dr > maxDiff {
				maxDiff = dr
			}
			if dg > maxDiff {
				maxDiff = dg
			}
			if db > maxDiff {
				maxDiff = db
			}
		}
	}
	if len(raw) == 0 {
		return 0, 0, false, false
	}

	scale := 1.0
	if maxDiff != 0 {
		scale = 255.0 / maxDiff
	}
	diffs := make([]float64, len(raw))
	for i, v := range raw {
		diffs[i] = v * scale
	}

	mean := meanOf(diffs)
	std := stddevOf(diffs, mean)
	threshold := mean + 2*std

	anomalous := 0
	for _, v := range diffs {
		if v > threshold {
			anomalous++
		}
	}
	ratio = float64(anomalous) / float64(len(diffs))
	variance = std * std

	return ratio, variance, ratio > d.cfg.ELAAnomalyThreshold, true
}

// detectClonedRegions hashes non-overlapping regionSize x regionSize
// blocks and flags the image if too many blocks hash identically,
// a signature of copy-move (clone-stamp) forgery.
func (d *TamperingDetector) detectClonedRegions(img image.Image) bool {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	regionSize := d.cfg.CloneRegionSize
	if regionSize < 1 || w < regionSize || h < regionSize {
		return false
	}

	var blockYs, blockXs []int
	for y := 0; y+regionSize <= h; y += regionSize {
		for x := 0; x+regionSize <= w; x += regionSize {
			blockYs = append(blockYs, y)
			blockXs = append(blockXs, x)
		}
	}
	total := len(blockYs)
	if total == 0 {
		return false
	}

	hashes := make([][16]byte, total)
	pool := newWorkerPool()
	for i := 0; i < total; i++ {
		i, y, x := i, blockYs[i], blockXs[i]
		pool.submit(func() {
			block := make([]byte, 0, regionSize*regionSize*cloneBlockChannels)
			for by := 0; by < regionSize; by++ {
				for bx := 0; bx < regionSize; bx++ {
					r, g, bl, _ := img.At(b.Min.X+x+bx, b.Min.Y+y+by).RGBA()
					block = append(block, byte(r>>8), byte(g>>8), byte(bl>>8))
				}
			}
			hashes[i] = md5.Sum(block)
		})
	}
	pool.wait()

	seen := make(map[[16]byte]bool, total)
	unique := 0
	for _, sum := range hashes {
		if !seen[sum] {
			seen[sum] = true
			unique++
		}
	}

	duplicateRatio := 1.0 - float64(unique)/float64(total)
	return duplicateRatio > d.cfg.CloneDuplicateRatioThresh
}

// checkCompressionConsistency splits the image into four quadrants and
// compares the variance of pixel intensity across them: a locally
// edited-and-resaved region tends to carry a different compression
// variance than the rest of the image.
func (d *TamperingDetector) checkCompressionConsistency(img image.Image) bool {
	plane := grayscale(img)
	h := len(plane)
	if h < 2 {
		return true
	}
	w := len(plane[0])
	if w < 2 {
		return true
	}
	midY, midX := h/2, w/2

	quadrants := [][][]float64{
		sub(plane, 0, midY, 0, midX),
		sub(plane, 0, midY, midX, w),
		sub(plane, midY, h, 0, midX),
		sub(plane, midY, h, midX, w),
	}

	variances := make([]float64, 4)
	for i, q := range quadrants {
		flat := flatten(q)
		m := meanOf(flat)
		variances[i] = varianceOf(flat, m)
	}

	std := stddevOf(variances, meanOf(variances))
	return std < d.cfg.CompressionVarianceThreshold
}

func sub(plane [][]float64, y0, y1, x0, x1 int) [][]float64 {
	out := make([][]float64, 0, y1-y0)
	for y := y0; y < y1; y++ {
		out = append(out, plane[y][x0:x1])
	}
	return out
}

// detectResamplingFFT downscales oversized images, takes the 2D FFT
// magnitude of the grayscale plane, and compares the top peak strength
// (excluding the DC-centered window) against the rest of the spectrum.
func (d *TamperingDetector) detectResamplingFFT(img image.Image) bool {
	scaled := downscaleLanczos(img, fftMaxDim)
	plane := grayscale(scaled)
	mag := fft2Magnitude(plane)
	ratio := resamplingPeakRatio(mag, fftDCWindow, fftTopN)
	return ratio > d.cfg.ResamplingFFTPeakRatio
}

// detectMedianFilter applies a 3x3 median filter to the grayscale plane
// and flags the image if it is already nearly identical to its own
// median-filtered version, a signature of prior median smoothing.
func (d *TamperingDetector) detectMedianFilter(img image.Image) bool {
	plane := grayscale(img)
	filtered := medianFilter3x3(plane)

	diffSum := 0.0
	count := 0
	for y := range plane {
		for x := range plane[y] {
			diffSum += math.Abs(plane[y][x] - filtered[y][x])
			count++
		}
	}
	if count == 0 {
		return false
	}
	meanDiff := diffSum / float64(count)
	return meanDiff < d.cfg.MedianFilterThreshold
}

// colorCorrelation averages the Pearson correlation between the R/G,
// R/B, and G/B channel planes. Natural photographs show strong
// inter-channel correlation; edited or synthetic regions often don't.
func (d *TamperingDetector) colorCorrelation(img image.Image) float64 {
	r, g, bl := rgbPlanes(img)
	rf, gf, bf := flatten(r), flatten(g), flatten(bl)

	corr := func(a, b []float64) float64 {
		if stddevOf(a, meanOf(a)) < epsSmall || stddevOf(b, meanOf(b)) < epsSmall {
			return 1.0
		}
		return stat.Correlation(a, b, nil)
	}

	rg := corr(rf, gf)
	rb := corr(rf, bf)
	gb := corr(gf, bf)

	return (rg + rb + gb) / 3.0
}

// noiseRatio compares the variance of the difference between the image
// and a Gaussian-blurred copy across fixed-size regions, then returns
// the ratio between the noisiest and quietest region.
func (d *TamperingDetector) noiseRatio(img image.Image) float64 {
	plane := grayscale(img)
	h := len(plane)
	if h == 0 {
		return 1.0
	}
	w := len(plane[0])

	regionSize := noiseRegionMax
	if w/4 < regionSize {
		regionSize = w / 4
	}
	if h/4 < regionSize {
		regionSize = h / 4
	}
	if regionSize < 1 {
		return 1.0
	}

	blurred := gaussianBlur(plane, noiseBlurSigma)

	var variances []float64
	for y := 0; y+regionSize <= h; y += regionSize {
		for x := 0; x+regionSize <= w; x += regionSize {
			diffs := make([]float64, 0, regionSize*regionSize)
			for ry := 0; ry < regionSize; ry++ {
				for rx := 0; rx < regionSize; rx++ {
					diffs = append(diffs, plane[y+ry][x+rx]-blurred[y+ry][x+rx])
				}
			}
			m := meanOf(diffs)
			variances = append(variances, varianceOf(diffs, m))
		}
	}
	if len(variances) == 0 {
		return 1.0
	}

	maxV, minV := variances[0], variances[0]
	for _, v := range variances {
		if v > maxV {
			maxV = v
		}
		if v < minV {
			minV = v
		}
	}
	if minV < epsSmall {
		minV = epsSmall
	}
	return maxV / minV
}

// edgeConsistency compares a Laplacian edge map against a stronger
// edge-enhance kernel; the mean absolute difference between the two
// diverges on regions whose edges were artificially sharpened or
// smoothed during editing.
func (d *TamperingDetector) edgeConsistency(img image.Image) float64 {
	plane := grayscale(img)
	edges := laplacianEdges(plane)
	enhanced := edgeEnhanceMore(plane)

	diffSum := 0.0
	count := 0
	for y := range edges {
		for x := range edges[y] {
			diffSum += math.Abs(edges[y][x] - enhanced[y][x])
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return diffSum / float64(count)
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func varianceOf(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(values))
}

func stddevOf(values []float64, mean float64) float64 {
	return math.Sqrt(varianceOf(values, mean))
}
