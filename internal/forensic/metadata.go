package forensic

import (
	"encoding/binary"
	"strings"

	"github.com/docforensics/core/internal/validation"
)

// editingSoftwareSignatures are embedded-software strings that indicate an
// image passed through a general-purpose editor rather than coming
// straight off a camera or phone.
var editingSoftwareSignatures = []string{"Photoshop", "GIMP", "Lightroom", "Affinity Photo"}

// aiGeneratorSignatures are embedded strings left behind by common
// generative-image tools.
var aiGeneratorSignatures = []string{"DALL-E", "Midjourney", "Stable Diffusion", "ComfyUI"}

// cameraMakeSignatures are the camera manufacturer strings the metadata
// scanner looks for inside an EXIF segment.
var cameraMakeSignatures = []string{"Apple", "Canon", "Nikon", "Sony", "Samsung", "Google", "Fujifilm", "Olympus"}

// MetadataAnalyzer scans the raw container bytes for EXIF/text metadata
// without decoding the image, the same marker-scanning approach the
// dimension readers in format.go use.
type MetadataAnalyzer struct{}

// NewMetadataAnalyzer constructs a MetadataAnalyzer.
func NewMetadataAnalyzer() *MetadataAnalyzer {
	return &MetadataAnalyzer{}
}

// Analyze extracts what metadata it can find and raises issues for the
// absence of camera provenance or the presence of editing/generator
// signatures.
func (m *MetadataAnalyzer) Analyze(data []byte) MetadataAnalysisResult {
	format := detectFormat(data)

	var result MetadataAnalysisResult
	switch format {
	case "jpeg":
		result = m.scanJPEG(data)
	case "png":
		result = m.scanPNG(data)
	default:
		result = MetadataAnalysisResult{}
	}

	result.Issues = m.buildIssues(result)
	return result
}

func (m *MetadataAnalyzer) scanJPEG(data []byte) MetadataAnalysisResult {
	result := MetadataAnalysisResult{EXIFData: map[string]string{}}

	for i := 0; i < len(data)-10; i++ {
		if data[i] != 0xFF || data[i+1] != 0xE1 {
			continue
		}
		if i+10 >= len(data) {
			break
		}
		segment := data[i+4:]
		if len(segment) < 6 || string(segment[:4]) != "Exif" {
			break
		}
		result.HasEXIF = true
		exifData := string(segment)

		for _, make := range cameraMakeSignatures {
			if strings.Contains(exifData, make) {
				result.EXIFData["camera_make"] = make
				result.HasCameraInfo = true
				break
			}
		}

		for _, sw := range editingSoftwareSignatures {
			if strings.Contains(exifData, sw) {
				result.EXIFData["software"] = sw
				result.HasEditingSoftwareSigns = true
				break
			}
		}
		for _, sig := range aiGeneratorSignatures {
			if strings.Contains(exifData, sig) {
				result.EXIFData["software"] = sig
			}
		}

		if strings.Contains(exifData, "GPS") {
			result.EXIFData["has_gps"] = "true"
		}

		break
	}

	return result
}

func (m *MetadataAnalyzer) scanPNG(data []byte) MetadataAnalysisResult {
	result := MetadataAnalysisResult{EXIFData: map[string]string{}}

	for i := 8; i+8 <= len(data); {
		chunkLen := int(binary.BigEndian.Uint32(data[i : i+4]))
		chunkType := string(data[i+4 : i+8])

		if chunkType == "tEXt" || chunkType == "iTXt" {
			result.HasEXIF = true
		}

		if chunkLen > 0 && i+8+chunkLen <= len(data) {
			chunkData := string(data[i+8 : i+8+chunkLen])
			for _, sig := range aiGeneratorSignatures {
				if strings.Contains(chunkData, sig) {
					result.EXIFData["software"] = sig
				}
			}
		}

		i += 12 + chunkLen
		if chunkType == "IEND" {
			break
		}
	}

	return result
}

func (m *MetadataAnalyzer) buildIssues(r MetadataAnalysisResult) []validation.Issue {
	var issues []validation.Issue

	if !r.HasEXIF && !r.HasCameraInfo {
		issues = append(issues, validation.NewIssue("metadata", validation.SeverityLow, "no EXIF or camera metadata present"))
	}
	if r.HasEditingSoftwareSigns {
		issues = append(issues, validation.NewIssue("metadata", validation.SeverityMedium, "image metadata shows signs of editing software: "+r.EXIFData["software"]))
	}
	if sig, ok := r.EXIFData["software"]; ok {
		for _, ai := range aiGeneratorSignatures {
			if sig == ai {
				issues = append(issues, validation.NewIssue("metadata", validation.SeverityHigh, "image metadata contains a generative-AI tool signature: "+sig))
			}
		}
	}

	return issues
}
