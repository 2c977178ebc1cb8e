package pattern

import (
	"errors"
	"fmt"
	"math"

	"github.com/jmylchreest/tonal/internal/colour"
)

// SmoothedSuffix is appended to the name of a smoothed pattern.
const SmoothedSuffix = "-smoothed"

// quadratic is y = a*x^2 + b*x + c.
type quadratic struct {
	a, b, c float64
}

func (q quadratic) at(x float64) float64 {
	return q.a*x*x + q.b*x + q.c
}

// fitQuadratic fits a quadratic through (0, first), (xRef, 1) and
// (1, last). c is fixed at first, leaving a 2x2 system for a and b:
//
//	a*xRef^2 + b*xRef = 1 - c
//	a        + b      = last - c
func fitQuadratic(first, last, xRef float64) (quadratic, error) {
	det := xRef*xRef - xRef
	if det == 0 {
		return quadratic{}, &InterpolationError{
			Op:  "quadratic fit",
			Err: fmt.Errorf("reference position %g coincides with an endpoint", xRef),
		}
	}
	c := first
	a := (1 - c - (last-c)*xRef) / det
	b := (last - c) - a
	return quadratic{a: a, b: b, c: c}, nil
}

// CircularMean returns the mean of angles in degrees, in (-180, 180].
// Angles are averaged as unit vectors so values either side of +/-180 do
// not cancel to 0.
func CircularMean(degrees []float64) (float64, error) {
	if len(degrees) == 0 {
		return 0, &InterpolationError{Op: "circular mean", Err: ErrEmptyHueSet}
	}
	var sumSin, sumCos float64
	for _, d := range degrees {
		r := d * math.Pi / 180
		sumSin += math.Sin(r)
		sumCos += math.Cos(r)
	}
	mean := math.Atan2(sumSin/float64(len(degrees)), sumCos/float64(len(degrees))) * 180 / math.Pi
	if mean <= -180 {
		mean += 360
	}
	return mean, nil
}

// Smooth returns a new pattern whose lightness and chroma multipliers
// follow a quadratic through the stop-100, reference and stop-1000 ratios,
// and whose hue shift is the circular mean of the raw shifts. The reference
// stop keeps the identity transform. The input is not modified.
func Smooth(p *Pattern) (*Pattern, error) {
	if p == nil {
		return nil, &InterpolationError{Op: "smooth", Err: errors.New("pattern is nil")}
	}

	xRef := p.ReferenceStop.Position()
	first, last := p.Transform(minStop), p.Transform(maxStop)

	lq, err := fitQuadratic(first.LightnessMultiplier, last.LightnessMultiplier, xRef)
	if err != nil {
		return nil, err
	}
	cq, err := fitQuadratic(first.ChromaMultiplier, last.ChromaMultiplier, xRef)
	if err != nil {
		return nil, err
	}

	shifts := make([]float64, StopCount)
	for i, t := range p.Transforms {
		shifts[i] = t.HueShift
	}
	hue, err := CircularMean(shifts)
	if err != nil {
		return nil, err
	}

	out := &Pattern{
		Name:          p.Name + SmoothedSuffix,
		ReferenceStop: p.ReferenceStop,
		Metadata:      p.Metadata,
	}
	for i := range out.Transforms {
		stop := StopAt(i)
		if stop == p.ReferenceStop {
			out.Transforms[i] = Identity
			continue
		}
		x := stop.Position()
		out.Transforms[i] = StopTransform{
			LightnessMultiplier: math.Max(0, lq.at(x)),
			ChromaMultiplier:    math.Max(0, cq.at(x)),
			HueShift:            colour.HueDifference(0, hue),
		}
	}
	return out, nil
}
