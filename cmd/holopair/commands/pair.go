package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/backkem/holopair/pkg/channel"
	"github.com/backkem/holopair/pkg/config"
	"github.com/backkem/holopair/pkg/confirm"
	"github.com/backkem/holopair/pkg/console"
	"github.com/backkem/holopair/pkg/crypto"
	"github.com/backkem/holopair/pkg/experiment"
	"github.com/backkem/holopair/pkg/pairing"
	"github.com/backkem/holopair/pkg/render"
)

var (
	errBusy             = errors.New("too many pending actions, try again")
	errInitiatorOnly    = errors.New("only the initiator can do that")
	errRecordingOff     = errors.New("recording is disabled (use --record)")
	errRunnerNotStarted = errors.New("pairing is not running")
)

// runnerTarget lets the confirmation gate confirm through the runner, so the
// runner stays the only goroutine driving the session.
type runnerTarget struct {
	session *pairing.Session
	runner  *pairing.Runner
}

func (t runnerTarget) Step() pairing.Step {
	return t.session.Step()
}

func (t runnerTarget) ConfirmOutOfBandAck() error {
	return post(t.runner, pairing.EventConfirmOutOfBandAck)
}

func (t runnerTarget) ConfirmFinalMatch() error {
	return post(t.runner, pairing.EventConfirmFinalMatch)
}

func post(r *pairing.Runner, ev pairing.Event) error {
	if r == nil {
		return errRunnerNotStarted
	}
	if !r.Post(ev) {
		return errBusy
	}
	return nil
}

// runPairing drives one side of the protocol over conn until it succeeds,
// the user quits or ctx ends.
func runPairing(ctx context.Context, conn *channel.Conn, role pairing.Role) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		session  *pairing.Session
		runner   *pairing.Runner
		gate     *confirm.Gate
		recorder *experiment.Recorder
		cons     *console.Console
	)

	cons = console.New(console.Config{
		Prompt:        strings.ToLower(role.String()) + "> ",
		LoggerFactory: loggerFactory,
	}, func(a console.Action) error {
		switch a {
		case console.ActionClick:
			if role != pairing.RoleInitiator {
				return errInitiatorOnly
			}
			return gate.Click()
		case console.ActionAbort:
			return post(runner, pairing.EventAbort)
		case console.ActionRestart:
			gate.Reset()
			return post(runner, pairing.EventRestart)
		case console.ActionSwitch:
			if role != pairing.RoleInitiator {
				return errInitiatorOnly
			}
			return post(runner, pairing.EventSwitchScheme)
		case console.ActionRoles:
			if recorder == nil {
				return errRecordingOff
			}
			recorder.SwitchRoles()
			cons.Printf("Changing roles successful\nsay \"restart\" when ready\n")
		}
		return nil
	})

	sessionConfig := pairing.Config{
		Role:              role,
		Provider:          crypto.NewProvider(nil),
		Channel:           conn,
		Scheme:            cfg.ParsedScheme(),
		ElementSizes:      cfg.ElementSizes,
		AttackProbability: cfg.EffectiveAttackProbability(),
		Renderer:          render.NewTerminal(render.Config{}),
		OnPrompt: func(p pairing.Prompt) {
			if text := p.Text(); text != "" {
				cons.Printf("\n%s\n", text)
			}
		},
		LoggerFactory: loggerFactory,
	}
	if role == pairing.RoleInitiator && cfg.Record {
		recorder = experiment.NewRecorder(experiment.Config{Dir: cfg.ResultsDir, LoggerFactory: loggerFactory})
		sessionConfig.StepLogger = recorder
		cons.Printf("Recording attempts to %s\n", recorder.Path())
	}

	var err error
	session, err = pairing.NewSession(sessionConfig)
	if err != nil {
		return err
	}
	runner, err = pairing.NewRunner(pairing.RunnerConfig{
		Session:       session,
		Messages:      conn.Messages(),
		StepTimeout:   cfg.StepTimeoutDuration(),
		LoggerFactory: loggerFactory,
	})
	if err != nil {
		return err
	}
	gate, err = confirm.NewGate(confirm.Config{
		Target:        runnerTarget{session: session, runner: runner},
		Delay:         cfg.ConfirmDelayDuration(),
		LoggerFactory: loggerFactory,
	})
	if err != nil {
		return err
	}

	if role == pairing.RoleInitiator {
		watchOptions(ctx, session)
	}

	done := make(chan error, 1)
	go func() {
		defer cancel()
		_, err := runner.Run(ctx)
		if err == nil {
			cons.Printf("\nPaired with %s, link key %s\n", conn.RemoteAddr(), crypto.Fingerprint(session.LinkKey()))
		}
		done <- err
	}()

	if err := cons.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cancel()
		<-done
		return err
	}
	cancel()

	if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// watchOptions applies element sizes and attack probability from an edited
// configuration file to the next attempt.
func watchOptions(ctx context.Context, session *pairing.Session) {
	if _, err := os.Stat(configPath); err != nil {
		return
	}
	err := config.Watch(ctx, config.WatchConfig{
		Path:          configPath,
		LoggerFactory: loggerFactory,
		OnChange: func(c config.Config) {
			if err := session.SetOptions(c.ElementSizes, c.EffectiveAttackProbability()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			}
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: config reload disabled: %v\n", err)
	}
}
