// Package console reads spoken-style keywords from a terminal and maps them
// to pairing actions.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/chzyer/readline"
	"github.com/pion/logging"
)

// ErrUnknownKeyword is returned for input that names no action.
var ErrUnknownKeyword = errors.New("console: unknown keyword")

// Action is a user command.
type Action int

const (
	ActionClick Action = iota
	ActionAbort
	ActionRestart
	ActionSwitch
	ActionRoles
	ActionHelp
	ActionQuit
)

var keywords = []struct {
	action  Action
	names   []string
	summary string
}{
	{ActionClick, []string{"click", "c"}, "click on the other user's cube"},
	{ActionAbort, []string{"abort", "a"}, "abort the attempt"},
	{ActionRestart, []string{"restart", "r"}, "start a new attempt"},
	{ActionSwitch, []string{"switch"}, "change the confirmation method (initiator)"},
	{ActionRoles, []string{"roles"}, "record that users switched devices"},
	{ActionHelp, []string{"help", "?"}, "show this help"},
	{ActionQuit, []string{"quit", "exit", "q"}, "leave"},
}

// String returns the primary keyword.
func (a Action) String() string {
	for _, k := range keywords {
		if k.action == a {
			return k.names[0]
		}
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// ParseKeyword maps a line of input to an action. Case and surrounding
// space are ignored.
func ParseKeyword(line string) (Action, error) {
	word := strings.ToLower(strings.TrimSpace(line))
	for _, k := range keywords {
		for _, n := range k.names {
			if n == word {
				return k.action, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKeyword, word)
}

// Help returns the keyword list.
func Help() string {
	var b strings.Builder
	for _, k := range keywords {
		fmt.Fprintf(&b, "  %-8s %s\n", k.names[0], k.summary)
	}
	return b.String()
}

// Handler performs an action. Quit and help are handled by the console.
type Handler func(Action) error

// Config configures a Console.
type Config struct {
	// Prompt is shown before each line.
	Prompt string

	// HistoryFile keeps input history across runs. Optional.
	HistoryFile string

	// Stdin and Stdout default to the process streams.
	Stdin  io.ReadCloser
	Stdout io.Writer

	// LoggerFactory is the factory for creating loggers.
	// If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

// Console is a keyword loop.
type Console struct {
	config  Config
	handler Handler
	log     logging.LeveledLogger

	mu  sync.Mutex
	out io.Writer
}

// New creates a console calling handler for each action.
func New(config Config, handler Handler) *Console {
	if config.Prompt == "" {
		config.Prompt = "holopair> "
	}
	if config.Stdout == nil {
		config.Stdout = os.Stdout
	}
	c := &Console{
		config:  config,
		handler: handler,
		out:     config.Stdout,
	}
	if config.LoggerFactory != nil {
		c.log = config.LoggerFactory.NewLogger("console")
	}
	return c
}

// Printf writes a message without clobbering the input line.
func (c *Console) Printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

// Dispatch handles one line of input and reports whether the loop should end.
func (c *Console) Dispatch(line string) bool {
	if strings.TrimSpace(line) == "" {
		return false
	}
	action, err := ParseKeyword(line)
	if err != nil {
		c.Printf("%v (type 'help')\n", err)
		return false
	}
	switch action {
	case ActionQuit:
		return true
	case ActionHelp:
		c.Printf("%s", Help())
		return false
	}
	if c.log != nil {
		c.log.Debugf("action %s", action)
	}
	if err := c.handler(action); err != nil {
		c.Printf("%s: %v\n", action, err)
	}
	return false
}

// Run reads keywords with line editing until quit, end of input or ctx is
// done. Without a usable terminal it falls back to RunBasic.
func (c *Console) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            c.config.Prompt,
		HistoryFile:       c.config.HistoryFile,
		HistoryLimit:      200,
		AutoComplete:      completer(),
		InterruptPrompt:   "^C",
		EOFPrompt:         "quit",
		HistorySearchFold: true,
		Stdin:             c.config.Stdin,
		Stdout:            c.config.Stdout,
	})
	if err != nil {
		if c.log != nil {
			c.log.Warnf("line editing unavailable, using basic input: %v", err)
		}
		in := io.Reader(os.Stdin)
		if c.config.Stdin != nil {
			in = c.config.Stdin
		}
		return c.RunBasic(ctx, in)
	}
	defer func() { _ = rl.Close() }()

	c.mu.Lock()
	c.out = rl.Stdout()
	c.mu.Unlock()

	stop := context.AfterFunc(ctx, func() { _ = rl.Close() })
	defer stop()

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if len(line) == 0 {
					c.Printf("Use 'quit' to exit\n")
				}
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if c.Dispatch(line) {
			return nil
		}
	}
}

// RunBasic reads keywords line by line from r without line editing.
func (c *Console) RunBasic(ctx context.Context, r io.Reader) error {
	lines := make(chan string)
	done := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		done <- scanner.Err()
	}()

	for {
		c.Printf("%s", c.config.Prompt)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-done:
			return err
		case line := <-lines:
			if c.Dispatch(line) {
				return nil
			}
		}
	}
}

func completer() *readline.PrefixCompleter {
	items := make([]readline.PrefixCompleterInterface, 0, len(keywords))
	for _, k := range keywords {
		items = append(items, readline.PcItem(k.names[0]))
	}
	return readline.NewPrefixCompleter(items...)
}
