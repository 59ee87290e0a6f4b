package forensic

// Blank-imported purely for their init() side effect of registering a
// decoder with image.Decode: spec.md §6 accepts JPEG, PNG, TIFF, and BMP
// uploads, and image.Decode only recognizes a format once its package
// has been imported somewhere in the binary.
import (
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)
