package forensic

import "sort"

// compressionProfileSpec is one entry in the known-platform compression
// table: an ELA-variance band together with the typical resolution that
// platform re-encodes to.
type compressionProfileSpec struct {
	name        string
	elaLow      float64
	elaHigh     float64
	typicalW    int
	typicalH    int
}

// knownCompressionProfiles mirrors the platform re-encoding fingerprints
// observed in practice: messaging apps and social networks each resample
// and requantize uploads to a characteristic size and ELA-variance band.
var knownCompressionProfiles = []compressionProfileSpec{
	{"whatsapp_low", 10, 50, 1280, 1280},
	{"instagram", 80, 180, 1080, 1080},
	{"facebook", 120, 280, 2048, 2048},
	{"twitter", 60, 160, 1200, 675},
	{"original_camera", 150, 450, 4000, 3000},
}

// socialMediaProfiles is the subset of knownCompressionProfiles that
// indicates routine social-media re-compression rather than deliberate
// tampering.
var socialMediaProfiles = map[string]bool{
	"whatsapp_low": true,
	"instagram":    true,
	"facebook":     true,
	"twitter":      true,
}

// CompressionProfiler matches an image's ELA variance and pixel dimensions
// against knownCompressionProfiles.
type CompressionProfiler struct {
	profiles []compressionProfileSpec
}

// NewCompressionProfiler constructs a profiler over the standard platform
// table.
func NewCompressionProfiler() *CompressionProfiler {
	return &CompressionProfiler{profiles: knownCompressionProfiles}
}

// DetectProfile returns every known profile whose ELA-variance band
// contains elaVariance, each annotated with whether the image's pixel
// dimensions also fall within that platform's typical size (+/- 50%).
// HIGH-confidence (size matched) entries sort before MEDIUM ones.
func (p *CompressionProfiler) DetectProfile(elaVariance float64, width, height int) []CompressionProfile {
	var matches []CompressionProfile

	for _, spec := range p.profiles {
		if elaVariance < spec.elaLow || elaVariance > spec.elaHigh {
			continue
		}

		sizeMatch := sizeWithinTolerance(width, spec.typicalW) && sizeWithinTolerance(height, spec.typicalH)

		confidence := ConfidenceMedium
		if sizeMatch {
			confidence = ConfidenceHigh
		}

		matches = append(matches, CompressionProfile{
			Profile:     spec.name,
			Message:     profileMessage(spec.name, sizeMatch),
			Confidence:  confidence,
			SizeMatch:   sizeMatch,
			ELARange:    [2]float64{spec.elaLow, spec.elaHigh},
			TypicalSize: [2]int{spec.typicalW, spec.typicalH},
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence == ConfidenceHigh && matches[j].Confidence != ConfidenceHigh
	})

	return matches
}

// IsSocialMediaCompressed reports whether any of the given profiles
// belongs to a known social-media or messaging platform, as opposed to
// an unrecognized compression signature or a direct camera original.
func IsSocialMediaCompressed(profiles []CompressionProfile) bool {
	for _, p := range profiles {
		if socialMediaProfiles[p.Profile] {
			return true
		}
	}
	return false
}

func sizeWithinTolerance(actual, typical int) bool {
	diff := actual - typical
	if diff < 0 {
		diff = -diff
	}
	return float64(diff) <= float64(typical)*0.5
}

func profileMessage(name string, sizeMatch bool) string {
	qualifier := "possible"
	if sizeMatch {
		qualifier = "likely"
	}
	return qualifier + " " + name + " compression signature"
}
