package verification

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"testing"

	"github.com/backkem/holopair/pkg/crypto"
)

// fixedDeriver hashes every input to the same digest.
type fixedDeriver struct {
	digest []byte
}

func (f fixedDeriver) Hash([]byte) []byte { return f.digest }

func (f fixedDeriver) DeriveIntegers(digest []byte, count, modulus int) ([]int, error) {
	return crypto.DeriveIntegers(digest, count, modulus)
}

func TestColoringFromKnownDigest(t *testing.T) {
	d := fixedDeriver{digest: []byte{10, 20, 30, 40}}

	a, err := Coloring(d, []byte("ignored"), 2)
	if err != nil {
		t.Fatalf("Coloring failed: %v", err)
	}
	if got := a.Values(); !reflect.DeepEqual(got, []int{2, 0, 2, 0}) {
		t.Fatalf("Values() = %v, want [2 0 2 0]", got)
	}

	if got := a.Colors(PerspectiveInitiator); !reflect.DeepEqual(got, []Color{ColorBlue, ColorRed}) {
		t.Errorf("initiator colors = %v", got)
	}
	if got := a.Colors(PerspectiveResponder); !reflect.DeepEqual(got, []Color{ColorRed, ColorBlue}) {
		t.Errorf("responder colors = %v", got)
	}
	if got := a.Orientations(PerspectiveInitiator); !reflect.DeepEqual(got, []Orientation{OrientationDown, OrientationUp}) {
		t.Errorf("initiator orientations = %v", got)
	}
	if got := a.Orientations(PerspectiveResponder); !reflect.DeepEqual(got, []Orientation{OrientationUp, OrientationDown}) {
		t.Errorf("responder orientations = %v", got)
	}
	if a.Points() != nil {
		t.Error("coloring artifact should have no points")
	}
}

func TestOrientationSwappedForInitiator(t *testing.T) {
	// [6 1] derives to colors [2] and orientations [1].
	d := fixedDeriver{digest: []byte{6, 1}}

	a, err := Coloring(d, nil, 1)
	if err != nil {
		t.Fatalf("Coloring failed: %v", err)
	}
	if got := a.Orientations(PerspectiveResponder)[0]; got != OrientationRight {
		t.Errorf("responder orientation = %v, want Right", got)
	}
	if got := a.Orientations(PerspectiveInitiator)[0]; got != OrientationLeft {
		t.Errorf("initiator orientation = %v, want Left", got)
	}
}

func TestPositionsFromKnownDigest(t *testing.T) {
	d := fixedDeriver{digest: []byte{10, 20, 30, 40}}

	a, err := Positions(d, nil, 2)
	if err != nil {
		t.Fatalf("Positions failed: %v", err)
	}
	want := []Point{{X: 0, Y: 0.25}, {X: -0.025, Y: -0.2}}
	got := a.Points()
	if len(got) != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), len(got))
	}
	for i := range want {
		if math.Abs(got[i].X-want[i].X) > 1e-9 || math.Abs(got[i].Y-want[i].Y) > 1e-9 {
			t.Errorf("point %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	if a.Colors(PerspectiveInitiator) != nil || a.Orientations(PerspectiveInitiator) != nil {
		t.Error("positional artifact should have no coloring views")
	}
}

func TestPositionsWithinBounds(t *testing.T) {
	p := crypto.NewProvider(nil)
	for i := 0; i < 20; i++ {
		a, err := Positions(p, []byte(fmt.Sprintf("secret-%d", i)), 8)
		if err != nil {
			t.Fatalf("Positions failed: %v", err)
		}
		for _, pt := range a.Points() {
			if pt.X < -0.25 || pt.X > 0.25 || pt.Y < -0.25 || pt.Y > 0.25 {
				t.Errorf("point %+v out of bounds", pt)
			}
		}
	}
}

func TestColoringRoleSymmetry(t *testing.T) {
	p := crypto.NewProvider(nil)

	for _, n := range []int{4, 6, 8} {
		for i := 0; i < 10; i++ {
			secret := []byte(fmt.Sprintf("shared-%d-%d", n, i))
			a, err := Coloring(p, secret, n)
			if err != nil {
				t.Fatalf("Coloring failed: %v", err)
			}

			ic := a.Colors(PerspectiveInitiator)
			rc := a.Colors(PerspectiveResponder)
			io := a.Orientations(PerspectiveInitiator)
			ro := a.Orientations(PerspectiveResponder)
			for j := 0; j < n; j++ {
				if ic[j] != rc[n-1-j] {
					t.Errorf("n=%d: initiator color %d = %v, responder mirrored = %v", n, j, ic[j], rc[n-1-j])
				}
				if io[j] != ro[n-1-j].mirror() {
					t.Errorf("n=%d: initiator orientation %d = %v, responder mirrored = %v", n, j, io[j], ro[n-1-j])
				}
			}
		}
	}
}

func TestGeneratorDeterministic(t *testing.T) {
	p := crypto.NewProvider(nil)
	secret := []byte("pubA|pubB|K")

	for _, scheme := range []Scheme{SchemeColoring, SchemePositional} {
		g, err := NewGenerator(scheme, p)
		if err != nil {
			t.Fatalf("NewGenerator(%v) failed: %v", scheme, err)
		}
		if g.Scheme() != scheme {
			t.Errorf("Scheme() = %v, want %v", g.Scheme(), scheme)
		}

		a, err := g.Generate(secret, 6)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		b, err := g.Generate(secret, 6)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if !a.Equal(b) {
			t.Errorf("%v: same secret produced different artifacts", scheme)
		}
		if a.Scheme() != scheme || a.Count() != 6 || len(a.Values()) != 12 {
			t.Errorf("%v: unexpected shape scheme=%v count=%d values=%d", scheme, a.Scheme(), a.Count(), len(a.Values()))
		}

		c, _ := g.Generate([]byte("pubB|K|pubA"), 6)
		if a.Equal(c) {
			t.Errorf("%v: different secrets produced equal artifacts", scheme)
		}
	}
}

func TestArtifactImmutable(t *testing.T) {
	a, err := Coloring(crypto.NewProvider(nil), []byte("s"), 4)
	if err != nil {
		t.Fatalf("Coloring failed: %v", err)
	}
	v := a.Values()
	v[0] = 99
	if a.Values()[0] == 99 {
		t.Error("mutating Values() result changed the artifact")
	}
}

func TestGeneratorErrors(t *testing.T) {
	if _, err := NewGenerator(Scheme(7), crypto.NewProvider(nil)); !errors.Is(err, ErrUnknownScheme) {
		t.Errorf("expected ErrUnknownScheme, got %v", err)
	}
	if _, err := NewGenerator(SchemeColoring, nil); !errors.Is(err, ErrNilDeriver) {
		t.Errorf("expected ErrNilDeriver, got %v", err)
	}

	// A two-byte digest cannot feed eight cells.
	g, _ := NewGenerator(SchemeColoring, fixedDeriver{digest: []byte{0, 0}})
	if _, err := g.Generate(nil, 8); !errors.Is(err, crypto.ErrDigestExhausted) {
		t.Errorf("expected ErrDigestExhausted, got %v", err)
	}
}

func TestGeneratorElementLimits(t *testing.T) {
	p := crypto.NewProvider(nil)
	for _, scheme := range []Scheme{SchemeColoring, SchemePositional} {
		g, err := NewGenerator(scheme, p)
		if err != nil {
			t.Fatalf("NewGenerator failed: %v", err)
		}
		for _, n := range []int{0, scheme.MaxElements() + 1} {
			if _, err := g.Generate([]byte("secret"), n); !errors.Is(err, ErrElementCount) {
				t.Errorf("%s/%d: expected ErrElementCount, got %v", scheme, n, err)
			}
		}

		// The largest allowed artifact must fit in any digest.
		for i := 0; i < 2000; i++ {
			secret, err := p.GenerateNonce()
			if err != nil {
				t.Fatalf("GenerateNonce failed: %v", err)
			}
			if _, err := g.Generate(secret, scheme.MaxElements()); err != nil {
				t.Fatalf("%s: Generate(%x, %d) failed: %v", scheme, secret, scheme.MaxElements(), err)
			}
		}
	}
	if Scheme(9).MaxElements() != 0 {
		t.Error("unknown scheme should support no elements")
	}
}

func TestParseScheme(t *testing.T) {
	tests := []struct {
		in      string
		want    Scheme
		wantErr bool
	}{
		{"coloring", SchemeColoring, false},
		{"Colors", SchemeColoring, false},
		{"positional", SchemePositional, false},
		{" pipes ", SchemePositional, false},
		{"sound", 0, true},
	}
	for _, tc := range tests {
		got, err := ParseScheme(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrUnknownScheme) {
				t.Errorf("ParseScheme(%q): expected ErrUnknownScheme, got %v", tc.in, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("ParseScheme(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
		}
		if again, _ := ParseScheme(got.String()); again != got {
			t.Errorf("String/ParseScheme round trip failed for %v", got)
		}
	}
}
