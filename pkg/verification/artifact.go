// Package verification turns an agreed secret into the artifact two humans
// compare out of band.
//
// Both peers hash the secret and expand the digest with the deterministic
// derivation primitive, so identical secrets always give identical artifacts.
// Two schemes exist:
//
//   - Coloring: a row of colored cells, each with an orientation arrow.
//   - Positional: a path of numbered points on a plane.
//
// The devices are held face to face, so the Responder reads the coloring row
// mirrored and the Initiator's arrows are swapped left/right. Views applying
// that ordering are provided per Perspective.
package verification

import (
	"errors"
	"fmt"
	"strings"
)

// Errors.
var (
	ErrUnknownScheme = errors.New("verification: unknown scheme")
	ErrNilDeriver    = errors.New("verification: nil deriver")
	ErrElementCount  = errors.New("verification: element count out of range")
)

// Scheme selects the artifact variant.
type Scheme int

const (
	// SchemeColoring renders colored cells with orientation arrows.
	SchemeColoring Scheme = iota
	// SchemePositional renders a path of points.
	SchemePositional
)

// String returns the scheme name.
func (s Scheme) String() string {
	switch s {
	case SchemeColoring:
		return "coloring"
	case SchemePositional:
		return "positional"
	default:
		return "unknown"
	}
}

// Largest artifact sizes. A SHA-256 digest yields at least about 120 base-4
// digits and 54 base-21 digits; the limits leave enough headroom that
// DeriveIntegers does not run dry for any digest seen in practice.
const (
	MaxColoringElements   = 48
	MaxPositionalElements = 24
)

// MaxElements returns the largest element count the scheme supports, or 0 for
// an unknown scheme.
func (s Scheme) MaxElements() int {
	switch s {
	case SchemeColoring:
		return MaxColoringElements
	case SchemePositional:
		return MaxPositionalElements
	default:
		return 0
	}
}

// CheckElements returns ErrElementCount unless 1 <= n <= s.MaxElements().
func (s Scheme) CheckElements(n int) error {
	if limit := s.MaxElements(); n < 1 || n > limit {
		return fmt.Errorf("%w: %d elements for %s (1..%d)", ErrElementCount, n, s, limit)
	}
	return nil
}

// ParseScheme parses a scheme name as produced by String.
func ParseScheme(name string) (Scheme, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "coloring", "colors", "colours":
		return SchemeColoring, nil
	case "positional", "positions", "pipes":
		return SchemePositional, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownScheme, name)
	}
}

// Perspective is the side of the face-to-face pairing a view is rendered for.
type Perspective int

const (
	PerspectiveInitiator Perspective = iota
	PerspectiveResponder
)

// String returns the perspective name.
func (p Perspective) String() string {
	if p == PerspectiveResponder {
		return "Responder"
	}
	return "Initiator"
}

// Color is an index into the four-color palette.
type Color int

const (
	ColorRed Color = iota
	ColorGreen
	ColorBlue
	ColorWhite
)

// PaletteSize is the number of distinct colors.
const PaletteSize = 4

// String returns the color name.
func (c Color) String() string {
	switch c {
	case ColorRed:
		return "red"
	case ColorGreen:
		return "green"
	case ColorBlue:
		return "blue"
	case ColorWhite:
		return "white"
	default:
		return "unknown"
	}
}

// Orientation is the direction of the arrow drawn on a cell.
type Orientation int

const (
	OrientationUp Orientation = iota
	OrientationRight
	OrientationDown
	OrientationLeft
)

// OrientationCount is the number of distinct orientations.
const OrientationCount = 4

var orientationSymbols = [OrientationCount]string{"↑", "→", "↓", "←"}

// Symbol returns the arrow glyph for the orientation.
func (o Orientation) Symbol() string {
	if o < 0 || int(o) >= OrientationCount {
		return "?"
	}
	return orientationSymbols[o]
}

// mirror swaps left and right.
func (o Orientation) mirror() Orientation {
	switch o {
	case OrientationRight:
		return OrientationLeft
	case OrientationLeft:
		return OrientationRight
	default:
		return o
	}
}

// Point is a position on the verification plane, in meters from its center.
type Point struct {
	X float64
	Y float64
}

// Artifact is a derived verification artifact. It is immutable: every
// accessor returns a fresh copy.
type Artifact struct {
	scheme Scheme
	count  int
	values []int
}

// Scheme returns the variant the artifact was generated for.
func (a *Artifact) Scheme() Scheme {
	return a.scheme
}

// Count returns the number of elements (cells or points).
func (a *Artifact) Count() int {
	return a.count
}

// Values returns a copy of the raw derived integers.
func (a *Artifact) Values() []int {
	out := make([]int, len(a.values))
	copy(out, a.values)
	return out
}

// Equal reports whether two artifacts carry the same scheme and values.
func (a *Artifact) Equal(b *Artifact) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.scheme != b.scheme || a.count != b.count || len(a.values) != len(b.values) {
		return false
	}
	for i := range a.values {
		if a.values[i] != b.values[i] {
			return false
		}
	}
	return true
}

// index maps display slot i to the derived value index for perspective p.
func (a *Artifact) index(p Perspective, i int) int {
	if p == PerspectiveResponder {
		return a.count - i - 1
	}
	return i
}

// Colors returns the cell colors in display order for p.
// Returns nil for positional artifacts.
func (a *Artifact) Colors(p Perspective) []Color {
	if a.scheme != SchemeColoring {
		return nil
	}
	out := make([]Color, a.count)
	for i := range out {
		out[i] = Color(a.values[a.index(p, i)])
	}
	return out
}

// Orientations returns the cell arrows in display order for p.
// The Initiator sees left and right swapped.
// Returns nil for positional artifacts.
func (a *Artifact) Orientations(p Perspective) []Orientation {
	if a.scheme != SchemeColoring {
		return nil
	}
	out := make([]Orientation, a.count)
	for i := range out {
		o := Orientation(a.values[a.count+a.index(p, i)])
		if p == PerspectiveInitiator {
			o = o.mirror()
		}
		out[i] = o
	}
	return out
}

// Points returns the path of a positional artifact.
// Returns nil for coloring artifacts.
func (a *Artifact) Points() []Point {
	if a.scheme != SchemePositional {
		return nil
	}
	out := make([]Point, a.count)
	for i := range out {
		out[i] = Point{
			X: positionFromRaw(a.values[2*i]),
			Y: positionFromRaw(a.values[2*i+1]),
		}
	}
	return out
}
