package console

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestParseKeyword(t *testing.T) {
	tests := []struct {
		in   string
		want Action
	}{
		{"click", ActionClick},
		{"  CLICK ", ActionClick},
		{"c", ActionClick},
		{"Abort", ActionAbort},
		{"restart", ActionRestart},
		{"switch", ActionSwitch},
		{"roles", ActionRoles},
		{"?", ActionHelp},
		{"exit", ActionQuit},
	}
	for _, tc := range tests {
		got, err := ParseKeyword(tc.in)
		if err != nil {
			t.Fatalf("ParseKeyword(%q) failed: %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ParseKeyword(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}

	if _, err := ParseKeyword("dance"); !errors.Is(err, ErrUnknownKeyword) {
		t.Errorf("expected ErrUnknownKeyword, got %v", err)
	}
}

func TestRunBasic(t *testing.T) {
	var out bytes.Buffer
	var got []Action
	boom := errors.New("not now")

	c := New(Config{Stdout: &out, Prompt: "> "}, func(a Action) error {
		got = append(got, a)
		if a == ActionAbort {
			return boom
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	input := "click\n\nabort\ndance\nhelp\nquit\nrestart\n"
	if err := c.RunBasic(ctx, strings.NewReader(input)); err != nil {
		t.Fatalf("RunBasic failed: %v", err)
	}

	if len(got) != 2 || got[0] != ActionClick || got[1] != ActionAbort {
		t.Fatalf("handled %v, want [click abort]", got)
	}
	text := out.String()
	for _, want := range []string{"abort: not now", "unknown keyword", "show this help"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestRunBasicEndOfInput(t *testing.T) {
	var out bytes.Buffer
	var clicks int
	c := New(Config{Stdout: &out}, func(Action) error {
		clicks++
		return nil
	})

	if err := c.RunBasic(context.Background(), strings.NewReader("click\nclick")); err != nil {
		t.Fatalf("RunBasic failed: %v", err)
	}
	if clicks != 2 {
		t.Errorf("expected 2 clicks, got %d", clicks)
	}
}

func TestRunBasicCanceled(t *testing.T) {
	c := New(Config{Stdout: &bytes.Buffer{}}, func(Action) error { return nil })
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The pipe is never written, so the scanner stays blocked.
	r, w := io.Pipe()
	defer w.Close()
	if err := c.RunBasic(ctx, r); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestActionString(t *testing.T) {
	if ActionSwitch.String() != "switch" || Action(99).String() != "Action(99)" {
		t.Error("unexpected action names")
	}
	if !strings.Contains(Help(), "restart") {
		t.Error("help should list restart")
	}
}
