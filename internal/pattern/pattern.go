package pattern

import (
	"encoding/json"
	"fmt"
	"math"
)

// StopTransform is a per-stop ratio relative to the reference stop.
type StopTransform struct {
	LightnessMultiplier float64 `json:"lightness"`
	ChromaMultiplier    float64 `json:"chroma"`
	HueShift            float64 `json:"hue_shift"`
}

// Identity is the transform of the reference stop.
var Identity = StopTransform{LightnessMultiplier: 1, ChromaMultiplier: 1, HueShift: 0}

// Metadata describes how a pattern was derived.
type Metadata struct {
	SourceCount int     `json:"source_count"`
	Confidence  float64 `json:"confidence"`
}

// Pattern is a learned transformation from the reference stop to every
// other stop. Patterns are treated as immutable once built and may be
// shared across goroutines.
type Pattern struct {
	Name          string
	ReferenceStop Stop
	Transforms    [StopCount]StopTransform
	Metadata      Metadata
}

// Transform returns the transform for a stop.
func (p *Pattern) Transform(s Stop) StopTransform {
	return p.Transforms[s.Index()]
}

// Validate checks the structural invariants of a pattern.
func (p *Pattern) Validate() error {
	if p == nil {
		return fmt.Errorf("pattern is nil")
	}
	if p.ReferenceStop != ReferenceStop {
		return fmt.Errorf("pattern %q: reference stop must be %d, got %d", p.Name, ReferenceStop, p.ReferenceStop)
	}
	if got := p.Transform(p.ReferenceStop); got != Identity {
		return fmt.Errorf("pattern %q: reference transform must be identity, got %+v", p.Name, got)
	}
	for i, t := range p.Transforms {
		if !finite(t.LightnessMultiplier) || !finite(t.ChromaMultiplier) || !finite(t.HueShift) {
			return fmt.Errorf("pattern %q: stop %s has non-finite transform", p.Name, StopAt(i))
		}
		if t.LightnessMultiplier < 0 || t.ChromaMultiplier < 0 {
			return fmt.Errorf("pattern %q: stop %s has negative multiplier", p.Name, StopAt(i))
		}
	}
	if p.Metadata.SourceCount < 1 {
		return fmt.Errorf("pattern %q: source count must be at least 1", p.Name)
	}
	if p.Metadata.Confidence < 0 || p.Metadata.Confidence > 1 {
		return fmt.Errorf("pattern %q: confidence %g out of range", p.Name, p.Metadata.Confidence)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// patternJSON is the on-disk form, with transforms keyed by stop.
type patternJSON struct {
	Name          string                   `json:"name"`
	ReferenceStop Stop                     `json:"reference_stop"`
	Transforms    map[string]StopTransform `json:"transforms"`
	Metadata      Metadata                 `json:"metadata"`
}

// MarshalJSON encodes transforms as an object keyed by stop position.
func (p Pattern) MarshalJSON() ([]byte, error) {
	out := patternJSON{
		Name:          p.Name,
		ReferenceStop: p.ReferenceStop,
		Transforms:    make(map[string]StopTransform, StopCount),
		Metadata:      p.Metadata,
	}
	for i, t := range p.Transforms {
		out.Transforms[StopAt(i).String()] = t
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the form written by MarshalJSON. All ten stops
// must be present.
func (p *Pattern) UnmarshalJSON(data []byte) error {
	var in patternJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if len(in.Transforms) != StopCount {
		return fmt.Errorf("pattern %q: expected %d transforms, got %d", in.Name, StopCount, len(in.Transforms))
	}

	decoded := Pattern{Name: in.Name, ReferenceStop: in.ReferenceStop, Metadata: in.Metadata}
	var seen [StopCount]bool
	for key, t := range in.Transforms {
		stop, err := ParseStop(key)
		if err != nil {
			return fmt.Errorf("pattern %q: %w", in.Name, err)
		}
		if seen[stop.Index()] {
			return fmt.Errorf("pattern %q: duplicate stop %s", in.Name, stop)
		}
		seen[stop.Index()] = true
		decoded.Transforms[stop.Index()] = t
	}
	*p = decoded
	return nil
}
