package colour

import "math"

const (
	// Reference lightness outside this band leaves too little chroma range
	// for a transferred hue to survive.
	minViableLightness = 0.05
	maxViableLightness = 0.95

	// maxViableChromaLoss is the largest fraction of chroma gamut mapping
	// may remove before a transfer is considered not viable.
	maxViableChromaLoss = 0.5
)

// Transfer performs an optical appearance transfer: the result carries the
// reference's lightness and chroma with the target's hue.
//
// An achromatic reference yields a grey that still records the target hue.
// An achromatic target expresses no hue preference, so the reference hue is
// kept. Out-of-gamut results are chroma-clamped; a clamp that collapses
// chroma to zero fails with a TransformationError wrapping ErrHueLost.
func Transfer(reference, target Colour) (Colour, error) {
	if !reference.valid() {
		return Colour{}, &ConversionError{Op: "transfer", Input: reference.String(), Err: errDegenerate}
	}
	if !target.valid() {
		return Colour{}, &ConversionError{Op: "transfer", Input: target.String(), Err: errDegenerate}
	}

	candidate := Colour{
		Lightness: reference.Lightness,
		Chroma:    reference.Chroma,
		Hue:       target.Hue,
		Alpha:     reference.Alpha,
	}

	targetHasHue := !target.IsAchromatic()
	if !targetHasHue {
		candidate.Hue = reference.Hue
	}
	if !math.IsNaN(candidate.Hue) {
		candidate.Hue = NormalizeHue(candidate.Hue)
	}

	if reference.Chroma < achromaticChroma {
		candidate.Chroma = 0
		if targetHasHue {
			candidate.Hue = NormalizeHue(target.Hue)
		}
		return ClampToGamut(candidate)
	}

	if IsDisplayable(candidate) {
		return candidate, nil
	}

	clamped, err := ClampToGamut(candidate)
	if err != nil {
		return Colour{}, &TransformationError{Reference: reference.String(), Target: target.String(), Err: err}
	}
	if clamped.Chroma == 0 && candidate.Chroma > 0 {
		return Colour{}, &TransformationError{Reference: reference.String(), Target: target.String(), Err: ErrHueLost}
	}
	return clamped, nil
}

// IsTransferViable is an advisory pre-flight check for Transfer. It rejects
// references too close to black or white, accepts grey-on-grey, and
// otherwise requires the transfer to survive gamut mapping with less than
// half its chroma removed.
func IsTransferViable(reference, target Colour) bool {
	if !reference.valid() || !target.valid() {
		return false
	}
	if reference.Lightness < minViableLightness || reference.Lightness > maxViableLightness {
		return false
	}
	if reference.IsAchromatic() && target.IsAchromatic() {
		return true
	}

	candidate := New(reference.Lightness, reference.Chroma, target.Hue)
	if target.IsAchromatic() {
		candidate.Hue = reference.Hue
	}
	if IsDisplayable(candidate) {
		return true
	}

	clamped, err := ClampToGamut(candidate)
	if err != nil || candidate.Chroma == 0 {
		return false
	}
	loss := (candidate.Chroma - clamped.Chroma) / candidate.Chroma
	return loss < maxViableChromaLoss
}
