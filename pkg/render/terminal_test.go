package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/backkem/holopair/pkg/crypto"
	"github.com/backkem/holopair/pkg/verification"
)

func TestRow(t *testing.T) {
	got := Row(
		[]verification.Color{verification.ColorRed, verification.ColorBlue, verification.ColorWhite},
		[]verification.Orientation{verification.OrientationUp, verification.OrientationLeft, verification.OrientationDown},
	)
	if want := "[R ↑] [B ←] [W ↓]"; got != want {
		t.Errorf("Row = %q, want %q", got, want)
	}
}

func TestPath(t *testing.T) {
	got := Path([]verification.Point{{X: 0, Y: 0.25}, {X: -0.025, Y: -0.2}})
	want := "  1  x=+0.000 y=+0.250\n  2  x=-0.025 y=-0.200\n"
	if got != want {
		t.Errorf("Path = %q, want %q", got, want)
	}
}

func TestTerminalShowPlain(t *testing.T) {
	provider := crypto.NewProvider(nil)
	secret := []byte("shared secret")
	off := false

	tests := []struct {
		name   string
		scheme verification.Scheme
		p      verification.Perspective
	}{
		{"coloring initiator", verification.SchemeColoring, verification.PerspectiveInitiator},
		{"coloring responder", verification.SchemeColoring, verification.PerspectiveResponder},
		{"positional", verification.SchemePositional, verification.PerspectiveResponder},
	}
	for _, tc := range tests {
		g, err := verification.NewGenerator(tc.scheme, provider)
		if err != nil {
			t.Fatalf("NewGenerator failed: %v", err)
		}
		a, err := g.Generate(secret, 5)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}

		var buf bytes.Buffer
		term := NewTerminal(Config{Out: &buf, Color: &off})
		term.Show(a, tc.p)

		want := "Verification (" + tc.scheme.String() + ", " + tc.p.String() + " view)\n"
		if tc.scheme == verification.SchemePositional {
			want += Path(a.Points())
		} else {
			want += Row(a.Colors(tc.p), a.Orientations(tc.p)) + "\n"
		}
		if buf.String() != want {
			t.Errorf("%s: got %q, want %q", tc.name, buf.String(), want)
		}
	}
}

func TestTerminalClear(t *testing.T) {
	var buf bytes.Buffer
	off := false
	term := NewTerminal(Config{Out: &buf, Color: &off})

	term.Clear()
	if buf.Len() != 0 {
		t.Fatalf("Clear before Show should print nothing, got %q", buf.String())
	}

	a, err := verification.Coloring(crypto.NewProvider(nil), []byte("k"), 2)
	if err != nil {
		t.Fatalf("Coloring failed: %v", err)
	}
	term.Show(a, verification.PerspectiveInitiator)
	buf.Reset()
	term.Clear()
	if !strings.Contains(buf.String(), "cleared") {
		t.Errorf("expected clear marker, got %q", buf.String())
	}
	buf.Reset()
	term.Clear()
	if buf.Len() != 0 {
		t.Error("second Clear should print nothing")
	}
}

func TestTerminalShowColor(t *testing.T) {
	var buf bytes.Buffer
	on := true
	term := NewTerminal(Config{Out: &buf, Color: &on})

	a, err := verification.Coloring(crypto.NewProvider(nil), []byte("k"), 3)
	if err != nil {
		t.Fatalf("Coloring failed: %v", err)
	}
	term.Show(a, verification.PerspectiveResponder)
	for _, o := range a.Orientations(verification.PerspectiveResponder) {
		if !strings.Contains(buf.String(), o.Symbol()) {
			t.Errorf("missing arrow %s in %q", o.Symbol(), buf.String())
		}
	}
}
