package verification

import (
	"fmt"

	"github.com/backkem/holopair/pkg/crypto"
)

// Positional scheme constants. Raw values span [0, 2*positionMaxElement] and
// are centered, scaled and stretched, so coordinates lie in [-0.25, 0.25] m.
const (
	positionMaxElement = 10
	positionScale      = 100
	positionMultiplier = 2.5

	// PositionRange is the modulus used for positional derivation.
	PositionRange = 2*positionMaxElement + 1
)

// Deriver is the part of the crypto provider the generators need.
type Deriver interface {
	crypto.Hasher
	DeriveIntegers(digest []byte, count, modulus int) ([]int, error)
}

// Generator produces an artifact from a shared secret.
type Generator interface {
	// Scheme returns the variant this generator produces.
	Scheme() Scheme

	// Generate derives an artifact with count elements from secret.
	Generate(secret []byte, count int) (*Artifact, error)
}

// NewGenerator returns the generator for scheme.
func NewGenerator(scheme Scheme, d Deriver) (Generator, error) {
	if d == nil {
		return nil, ErrNilDeriver
	}
	switch scheme {
	case SchemeColoring, SchemePositional:
		return &generator{scheme: scheme, deriver: d}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownScheme, int(scheme))
	}
}

type generator struct {
	scheme  Scheme
	deriver Deriver
}

func (g *generator) Scheme() Scheme {
	return g.scheme
}

func (g *generator) Generate(secret []byte, count int) (*Artifact, error) {
	if err := g.scheme.CheckElements(count); err != nil {
		return nil, err
	}
	if g.scheme == SchemePositional {
		return Positions(g.deriver, secret, count)
	}
	return Coloring(g.deriver, secret, count)
}

// Coloring derives count colors followed by count orientations from the
// hash of secret.
func Coloring(d Deriver, secret []byte, count int) (*Artifact, error) {
	values, err := d.DeriveIntegers(d.Hash(secret), 2*count, PaletteSize)
	if err != nil {
		return nil, fmt.Errorf("verification: coloring: %w", err)
	}
	return &Artifact{scheme: SchemeColoring, count: count, values: values}, nil
}

// Positions derives count (x, y) points from the hash of secret.
func Positions(d Deriver, secret []byte, count int) (*Artifact, error) {
	values, err := d.DeriveIntegers(d.Hash(secret), 2*count, PositionRange)
	if err != nil {
		return nil, fmt.Errorf("verification: positions: %w", err)
	}
	return &Artifact{scheme: SchemePositional, count: count, values: values}, nil
}

func positionFromRaw(raw int) float64 {
	return float64(raw-positionMaxElement) / positionScale * positionMultiplier
}
