package forensic

import (
	"math/rand"
	"testing"
)

func pseudoRandomBytes(n int, seed int64) []byte {
	r := rand.New(rand.NewSource(seed))
	data := make([]byte, n)
	r.Read(data)
	return data
}

func flatBytes(n int, value byte) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = value
	}
	return data
}

func TestAIDetectorNaturalLookingNoise(t *testing.T) {
	data := pseudoRandomBytes(6000, 42)
	result := NewAIDetector().Analyze(data, "jpeg")

	if result.ColorEntropy < 0.6 || result.ColorEntropy > 0.98 {
		t.Errorf("expected high-entropy random bytes to fall inside the natural-photo band, got %v", result.ColorEntropy)
	}
	if result.Confidence < 0 || result.Confidence > 1 {
		t.Errorf("confidence out of [0,1] bounds: %v", result.Confidence)
	}
}

func TestAIDetectorFlatRegionFlagsArtifacts(t *testing.T) {
	data := flatBytes(6000, 0x7F)
	result := NewAIDetector().Analyze(data, "jpeg")

	if !result.HasAIArtifacts {
		t.Error("expected a flat, zero-variance sample to raise at least one AI-artifact signal")
	}
	if result.NoiseLevel != 0 {
		t.Errorf("expected zero measured noise for a perfectly flat sample, got %v", result.NoiseLevel)
	}
}

func TestAIDetectorTooShortDataIsStable(t *testing.T) {
	result := NewAIDetector().Analyze([]byte{1, 2, 3}, "jpeg")
	if result.Confidence < 0 || result.Confidence > 1 {
		t.Errorf("confidence out of bounds for undersized input: %v", result.Confidence)
	}
}

func TestByteSimilarity(t *testing.T) {
	t.Run("identical slices are fully similar", func(t *testing.T) {
		a := []byte{1, 2, 3, 4}
		if got := byteSimilarity(a, a); got != 1.0 {
			t.Errorf("expected 1.0, got %v", got)
		}
	})

	t.Run("different lengths are not similar", func(t *testing.T) {
		if got := byteSimilarity([]byte{1, 2}, []byte{1, 2, 3}); got != 0 {
			t.Errorf("expected 0, got %v", got)
		}
	})

	t.Run("completely different slices of equal length", func(t *testing.T) {
		got := byteSimilarity([]byte{1, 2, 3}, []byte{9, 9, 9})
		if got != 0 {
			t.Errorf("expected 0, got %v", got)
		}
	})
}
