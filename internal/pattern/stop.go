// Package pattern models palette stops and transformation patterns, and
// learns patterns from example palettes.
//
// A pattern is built in two pure steps: Extract derives raw per-stop ratios
// from one or more example palettes, then Smooth fits a continuous curve
// through them. Both return new values and never mutate their input.
package pattern

import (
	"fmt"
	"strconv"
	"strings"
)

// Stop is a palette tier position, one of 100, 200, ..., 1000.
// Lower stops are lighter.
type Stop int

// Stop positions.
const (
	Stop100  Stop = 100
	Stop200  Stop = 200
	Stop300  Stop = 300
	Stop400  Stop = 400
	Stop500  Stop = 500
	Stop600  Stop = 600
	Stop700  Stop = 700
	Stop800  Stop = 800
	Stop900  Stop = 900
	Stop1000 Stop = 1000
)

const (
	// StopCount is the number of stops in every palette and pattern.
	StopCount = 10

	// ReferenceStop is the stop whose transform is fixed at identity.
	ReferenceStop = Stop500

	minStop  = Stop100
	maxStop  = Stop1000
	stopStep = 100
)

// Stops returns all stop positions, lightest first.
func Stops() [StopCount]Stop {
	var out [StopCount]Stop
	for i := range out {
		out[i] = StopAt(i)
	}
	return out
}

// StopAt returns the stop for an array index in [0, StopCount).
func StopAt(i int) Stop {
	return Stop((i + 1) * stopStep)
}

// Index returns the array index for the stop, (position/100 - 1).
func (s Stop) Index() int {
	return int(s)/stopStep - 1
}

// Valid reports whether s is one of the ten stop positions.
func (s Stop) Valid() bool {
	return s >= minStop && s <= maxStop && int(s)%stopStep == 0
}

// String returns the numeric position.
func (s Stop) String() string {
	return strconv.Itoa(int(s))
}

// Position returns the stop linearly normalised to [0, 1] over 100..1000.
func (s Stop) Position() float64 {
	return float64(s-minStop) / float64(maxStop-minStop)
}

// ParseStop parses a stop position such as "500".
func ParseStop(s string) (Stop, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid stop %q: %w", s, err)
	}
	stop := Stop(n)
	if !stop.Valid() {
		return 0, fmt.Errorf("invalid stop %d: must be one of 100, 200, ..., 1000", n)
	}
	return stop, nil
}
