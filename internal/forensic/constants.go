package forensic

// Division-guard epsilons. Kept as named constants rather than inlined
// magic numbers; epsSmall is shared by more than one sub-analysis.
const (
	epsSmall = 1e-5 // guards near-zero denominators (std dev, min variance)
	epsTiny  = 1e-8 // guards the FFT peak-ratio denominator specifically
)

// Clone detection block geometry.
const (
	cloneBlockChannels = 3 // RGB bytes sampled per pixel when hashing a block
)

// FFT resampling detection geometry.
const (
	fftMaxDim   = 512 // images larger than this are downscaled before FFT
	fftDCWindow = 5   // radius of the DC-centered window zeroed before peak search
	fftTopN     = 50  // number of highest-magnitude bins averaged for the peak
)

// Noise ratio region sizing.
const (
	noiseRegionMax = 100 // upper bound on region_size before the w//4, h//4 clamp
	noiseBlurSigma = 2.0
)

// JPEG re-encode quality used for Error Level Analysis.
const elaRequantizeQuality = 90
