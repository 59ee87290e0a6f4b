package forensic

import "encoding/binary"

// quantizationTables scans a JPEG byte stream for every DQT (Define
// Quantization Table, marker 0xFFDB) segment and returns the flattened
// values of every table found. A JPEG typically carries two tables
// (luminance, chrominance); this returns all values across all of them,
// mirroring what PIL exposes as img.info['quantization'].
func quantizationTables(data []byte) []int {
	var values []int

	i := 2 // skip the SOI marker
	for i+4 <= len(data) {
		if data[i] != 0xFF {
			i++
			continue
		}
		marker := data[i+1]

		// SOS (start of scan) ends the header section; entropy-coded data
		// follows and contains no more markers worth scanning.
		if marker == 0xDA {
			break
		}
		if marker == 0xD8 || marker == 0x01 || (marker >= 0xD0 && marker <= 0xD7) {
			i += 2
			continue
		}

		if i+4 > len(data) {
			break
		}
		segLen := int(binary.BigEndian.Uint16(data[i+2 : i+4]))
		if segLen < 2 || i+2+segLen > len(data) {
			break
		}

		if marker == 0xDB {
			values = append(values, parseDQTSegment(data[i+4:i+2+segLen])...)
		}

		i += 2 + segLen
	}

	return values
}

// parseDQTSegment parses the payload of one DQT segment, which may contain
// multiple tables back to back: each starts with a precision/id byte
// (high nibble 0 = 8-bit entries, 1 = 16-bit) followed by 64 entries.
func parseDQTSegment(payload []byte) []int {
	var values []int

	for len(payload) > 0 {
		precision := payload[0] >> 4
		payload = payload[1:]

		entrySize := 1
		if precision != 0 {
			entrySize = 2
		}
		need := entrySize * 64
		if len(payload) < need {
			break
		}

		for j := 0; j < 64; j++ {
			if entrySize == 1 {
				values = append(values, int(payload[j]))
			} else {
				values = append(values, int(binary.BigEndian.Uint16(payload[j*2:j*2+2])))
			}
		}
		payload = payload[need:]
	}

	return values
}

// quantizationAnomaly reports whether the average and variance of a
// JPEG's quantization table values indicate an anomalous re-encode: an
// implausibly high average (heavy, unusual requantization) or a tight,
// moderately elevated band, both signatures original_source associates
// with synthetic or re-saved imagery rather than camera-original JPEGs.
func quantizationAnomaly(values []int) (avg, variance float64, anomalous bool) {
	if len(values) == 0 {
		return 0, 0, false
	}

	sum := 0.0
	for _, v := range values {
		sum += float64(v)
	}
	avg = sum / float64(len(values))

	sqDiff := 0.0
	for _, v := range values {
		d := float64(v) - avg
		sqDiff += d * d
	}
	variance = sqDiff / float64(len(values))

	anomalous = avg > 40 || (variance < 20 && avg > 20)
	return avg, variance, anomalous
}
