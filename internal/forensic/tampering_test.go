package forensic

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand"
	"testing"

	"github.com/docforensics/core/internal/config"
)

func noisyImage(w, h int, seed int64) *image.RGBA {
	r := rand.New(rand.NewSource(seed))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(r.Intn(256)),
				G: uint8(r.Intn(256)),
				B: uint8(r.Intn(256)),
				A: 255,
			})
		}
	}
	return img
}

// clonedImage builds an image where the bottom-right quadrant is an
// exact pixel-for-pixel copy of the top-left quadrant, the classic
// copy-move forgery signature.
func clonedImage(w, h int, seed int64) *image.RGBA {
	img := noisyImage(w, h, seed)
	for y := 0; y < h/2; y++ {
		for x := 0; x < w/2; x++ {
			img.Set(w/2+x, h/2+y, img.At(x, y))
		}
	}
	return img
}

func encodeJPEG(t *testing.T, img image.Image, quality int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		t.Fatalf("jpeg.Encode: %v", err)
	}
	return buf.Bytes()
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func testForensicConfig(t *testing.T) *config.ForensicConfig {
	t.Helper()
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load(): %v", err)
	}
	// Clone geometry needs to fit inside the small test fixtures.
	cfg.CloneRegionSize = 16
	return cfg
}

func TestTamperingDetectorClonedRegions(t *testing.T) {
	cfg := testForensicConfig(t)
	detector := NewTamperingDetector(cfg)

	img := clonedImage(128, 128, 7)
	data := encodeJPEG(t, img, 95)

	result, err := detector.Detect(context.Background(), data, "jpeg")
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if !result.HasClonedRegions {
		t.Error("expected HasClonedRegions true for a deliberately duplicated quadrant")
	}
	if !result.IsTampered {
		t.Error("expected IsTampered true when a clone indicator fires")
	}
}

func TestTamperingDetectorCleanImage(t *testing.T) {
	cfg := testForensicConfig(t)
	detector := NewTamperingDetector(cfg)

	img := noisyImage(128, 128, 11)
	data := encodeJPEG(t, img, 90)

	result, err := detector.Detect(context.Background(), data, "jpeg")
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if result.HasClonedRegions {
		t.Error("did not expect HasClonedRegions on independently random quadrants")
	}
	if result.Confidence < 0 || result.Confidence > 1 {
		t.Errorf("confidence out of [0,1] bounds: %v", result.Confidence)
	}
}

func TestTamperingDetectorPNGSkipsJPEGOnlyChecks(t *testing.T) {
	cfg := testForensicConfig(t)
	detector := NewTamperingDetector(cfg)

	img := noisyImage(64, 64, 3)
	data := encodePNG(t, img)

	result, err := detector.Detect(context.Background(), data, "png")
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if result.ELAPerformed {
		t.Error("ELA should not run on a PNG input")
	}
	if result.ELAAnomalyRatio != nil || result.ELAVariance != nil {
		t.Error("ELA fields should be nil when ELA did not run")
	}
}

func TestTamperingDetectorIdempotent(t *testing.T) {
	cfg := testForensicConfig(t)
	detector := NewTamperingDetector(cfg)

	img := noisyImage(96, 96, 21)
	data := encodeJPEG(t, img, 90)

	first, err := detector.Detect(context.Background(), data, "jpeg")
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	second, err := detector.Detect(context.Background(), data, "jpeg")
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}

	if first.IsTampered != second.IsTampered || first.Confidence != second.Confidence {
		t.Errorf("expected identical results across repeated runs on the same input: %+v vs %+v", first, second)
	}
}

func TestPipelineAnalyzeProducesBoundedAuthenticityScore(t *testing.T) {
	cfg := testForensicConfig(t)
	pipeline := NewPipeline(cfg)

	img := noisyImage(96, 96, 5)
	data := encodeJPEG(t, img, 90)

	result, err := pipeline.Analyze(context.Background(), data)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if result.AuthenticityScore < 0 || result.AuthenticityScore > 100 {
		t.Errorf("authenticity score out of [0,100] bounds: %v", result.AuthenticityScore)
	}

	riskInput := ToRiskInput(result)
	if riskInput.IsTampered != result.TamperingDetection.IsTampered {
		t.Error("ToRiskInput should preserve the tampering verdict")
	}
}
