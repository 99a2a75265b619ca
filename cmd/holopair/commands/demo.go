package commands

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/backkem/holopair/pkg/channel"
	"github.com/backkem/holopair/pkg/crypto"
	"github.com/backkem/holopair/pkg/pairing"
	"github.com/backkem/holopair/pkg/render"
)

func demoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Pair two in-process peers, confirming automatically",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

type demoPeer struct {
	session *pairing.Session
	runner  *pairing.Runner
}

func newDemoPeer(conn *channel.Conn, role pairing.Role, out io.Writer) (*demoPeer, error) {
	p := &demoPeer{}
	delay := cfg.ConfirmDelayDuration()

	var err error
	p.session, err = pairing.NewSession(pairing.Config{
		Role:              role,
		Provider:          crypto.NewProvider(nil),
		Channel:           conn,
		Scheme:            cfg.ParsedScheme(),
		ElementSizes:      cfg.ElementSizes,
		AttackProbability: cfg.EffectiveAttackProbability(),
		Renderer:          render.NewTerminal(render.Config{Out: out}),
		OnPrompt: func(pr pairing.Prompt) {
			if text := pr.Text(); text != "" {
				fmt.Fprintf(out, "[%s] %s\n", role, text)
			}
			if role != pairing.RoleInitiator {
				return
			}
			// Stand in for the user: look, then click.
			switch pr {
			case pairing.PromptClickOnWave:
				time.AfterFunc(delay, func() { p.runner.Post(pairing.EventConfirmOutOfBandAck) })
			case pairing.PromptConfirmGestures:
				time.AfterFunc(delay, func() { p.runner.Post(pairing.EventConfirmFinalMatch) })
			}
		},
		LoggerFactory: loggerFactory,
	})
	if err != nil {
		return nil, err
	}
	p.runner, err = pairing.NewRunner(pairing.RunnerConfig{
		Session:       p.session,
		Messages:      conn.Messages(),
		StepTimeout:   cfg.StepTimeoutDuration(),
		ExitOnAbort:   true,
		LoggerFactory: loggerFactory,
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func runDemo(ctx context.Context, out io.Writer) error {
	pipe := channel.NewPipe(channel.Config{LoggerFactory: loggerFactory})
	defer pipe.Close()

	var mu sync.Mutex
	lockedOut := writerFunc(func(b []byte) (int, error) {
		mu.Lock()
		defer mu.Unlock()
		return out.Write(b)
	})

	initiator, err := newDemoPeer(pipe.Conn0(), pairing.RoleInitiator, lockedOut)
	if err != nil {
		return err
	}
	responder, err := newDemoPeer(pipe.Conn1(), pairing.RoleResponder, lockedOut)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errs := make(chan error, 2)
	for _, p := range []*demoPeer{initiator, responder} {
		go func() {
			_, err := p.runner.Run(ctx)
			if err != nil {
				cancel()
			}
			errs <- err
		}()
	}
	for range 2 {
		if err := <-errs; err != nil {
			return err
		}
	}

	a, b := initiator.session.LinkKey(), responder.session.LinkKey()
	fmt.Fprintf(lockedOut, "Initiator link key %s\nResponder link key %s\n", crypto.Fingerprint(a), crypto.Fingerprint(b))
	if bytes.Equal(a, b) {
		fmt.Fprintln(lockedOut, "Link keys match")
	} else {
		fmt.Fprintln(lockedOut, "Link keys differ: this attempt simulated an attack")
	}
	return nil
}

type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(b []byte) (int, error) {
	return f(b)
}
