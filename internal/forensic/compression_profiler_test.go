package forensic

import "testing"

func TestCompressionProfilerDetectProfile(t *testing.T) {
	p := NewCompressionProfiler()

	t.Run("matches instagram by ELA variance and size", func(t *testing.T) {
		matches := p.DetectProfile(120, 1080, 1080)
		if len(matches) == 0 {
			t.Fatal("expected at least one profile match")
		}
		if matches[0].Profile != "instagram" {
			t.Errorf("expected instagram as the top match, got %s", matches[0].Profile)
		}
		if matches[0].Confidence != ConfidenceHigh {
			t.Errorf("expected HIGH confidence for size-matched instagram profile, got %s", matches[0].Confidence)
		}
	})

	t.Run("sorts HIGH confidence before MEDIUM", func(t *testing.T) {
		// ELA variance 150 falls within instagram (80-180), facebook
		// (120-280), twitter (60-160) and original_camera (150-450); at
		// 1080x1080 instagram and facebook size-match, the other two don't.
		matches := p.DetectProfile(150, 1080, 1080)
		if len(matches) < 2 {
			t.Fatalf("expected overlapping profile matches, got %d", len(matches))
		}
		if matches[0].Confidence != ConfidenceHigh {
			t.Errorf("expected the first match to be HIGH confidence, got %s at index 0", matches[0].Confidence)
		}
	})

	t.Run("no match outside every ELA band", func(t *testing.T) {
		matches := p.DetectProfile(5000, 1080, 1080)
		if len(matches) != 0 {
			t.Errorf("expected no matches for an out-of-range ELA variance, got %d", len(matches))
		}
	})

	t.Run("is deterministic across repeated calls", func(t *testing.T) {
		first := p.DetectProfile(100, 1280, 1280)
		second := p.DetectProfile(100, 1280, 1280)
		if len(first) != len(second) {
			t.Fatalf("expected stable match count, got %d then %d", len(first), len(second))
		}
		for i := range first {
			if first[i] != second[i] {
				t.Errorf("match %d differs between calls: %+v vs %+v", i, first[i], second[i])
			}
		}
	})
}

func TestIsSocialMediaCompressed(t *testing.T) {
	t.Run("true for whatsapp", func(t *testing.T) {
		profiles := []CompressionProfile{{Profile: "whatsapp_low"}}
		if !IsSocialMediaCompressed(profiles) {
			t.Error("expected whatsapp_low to be classified as social media compression")
		}
	})

	t.Run("false for camera original", func(t *testing.T) {
		profiles := []CompressionProfile{{Profile: "original_camera"}}
		if IsSocialMediaCompressed(profiles) {
			t.Error("expected original_camera to not be classified as social media compression")
		}
	})

	t.Run("false for no profiles", func(t *testing.T) {
		if IsSocialMediaCompressed(nil) {
			t.Error("expected no profiles to not be classified as social media compression")
		}
	})
}

func TestSizeWithinTolerance(t *testing.T) {
	cases := []struct {
		actual, typical int
		want            bool
	}{
		{1280, 1280, true},
		{1920, 1280, true},  // +50%
		{1921, 1280, false}, // just over +50%
		{640, 1280, true},   // -50%
		{639, 1280, false},
	}
	for _, c := range cases {
		if got := sizeWithinTolerance(c.actual, c.typical); got != c.want {
			t.Errorf("sizeWithinTolerance(%d, %d) = %v, want %v", c.actual, c.typical, got, c.want)
		}
	}
}
