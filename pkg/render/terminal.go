// Package render draws verification artifacts in a terminal.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/backkem/holopair/pkg/verification"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// cellColors maps palette entries to ANSI colors.
var cellColors = map[verification.Color]lipgloss.Color{
	verification.ColorRed:   lipgloss.Color("196"),
	verification.ColorGreen: lipgloss.Color("42"),
	verification.ColorBlue:  lipgloss.Color("33"),
	verification.ColorWhite: lipgloss.Color("255"),
}

// Config configures a Terminal.
type Config struct {
	// Out receives the drawing. Default: os.Stdout
	Out io.Writer

	// Color forces colored output on or off. If nil, color is used when Out
	// is a terminal.
	Color *bool
}

// Terminal implements pairing.Renderer for a text terminal.
type Terminal struct {
	mu    sync.Mutex
	out   io.Writer
	color bool
	shown bool

	title lipgloss.Style
	muted lipgloss.Style
	cell  lipgloss.Style
}

// NewTerminal creates a terminal renderer.
func NewTerminal(config Config) *Terminal {
	out := config.Out
	if out == nil {
		out = os.Stdout
	}
	color := isTerminal(out)
	if config.Color != nil {
		color = *config.Color
	}

	r := lipgloss.NewRenderer(out)
	return &Terminal{
		out:   out,
		color: color,
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		muted: r.NewStyle().Foreground(lipgloss.Color("241")),
		cell:  r.NewStyle().Bold(true).Padding(0, 1).Foreground(lipgloss.Color("16")),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd())) // #nosec G115 - file descriptors are small integers
}

// Show draws a for perspective p.
func (t *Terminal) Show(a *verification.Artifact, p verification.Perspective) {
	if a == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintln(t.out, t.style(t.title, fmt.Sprintf("Verification (%s, %s view)", a.Scheme(), p)))
	if a.Scheme() == verification.SchemePositional {
		fmt.Fprint(t.out, Path(a.Points()))
	} else {
		fmt.Fprintln(t.out, t.row(a.Colors(p), a.Orientations(p)))
	}
	t.shown = true
}

// Clear removes the artifact. A terminal cannot erase scrollback, so this
// only prints a marker when something was shown.
func (t *Terminal) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.shown {
		return
	}
	fmt.Fprintln(t.out, t.style(t.muted, "(verification cleared)"))
	t.shown = false
}

func (t *Terminal) style(s lipgloss.Style, text string) string {
	if !t.color {
		return text
	}
	return s.Render(text)
}

func (t *Terminal) row(colors []verification.Color, orientations []verification.Orientation) string {
	if !t.color {
		return Row(colors, orientations)
	}
	cells := make([]string, 0, 2*len(colors))
	for i, c := range colors {
		if i > 0 {
			cells = append(cells, " ")
		}
		cells = append(cells, t.cell.Background(cellColors[c]).Render(orientations[i].Symbol()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, cells...)
}

// Row formats coloring cells as plain text, e.g. "[R ↑] [B ←]".
func Row(colors []verification.Color, orientations []verification.Orientation) string {
	cells := make([]string, len(colors))
	for i, c := range colors {
		cells[i] = fmt.Sprintf("[%s %s]", strings.ToUpper(c.String()[:1]), orientations[i].Symbol())
	}
	return strings.Join(cells, " ")
}

// Path formats positional points as numbered lines.
func Path(points []verification.Point) string {
	var b strings.Builder
	for i, pt := range points {
		fmt.Fprintf(&b, "%3d  x=%+.3f y=%+.3f\n", i+1, pt.X, pt.Y)
	}
	return b.String()
}
