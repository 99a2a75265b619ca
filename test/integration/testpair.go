// Package integration provides test infrastructure for HoloPair E2E tests.
package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/backkem/holopair/pkg/channel"
	"github.com/backkem/holopair/pkg/confirm"
	"github.com/backkem/holopair/pkg/crypto"
	"github.com/backkem/holopair/pkg/discovery"
	"github.com/backkem/holopair/pkg/experiment"
	"github.com/backkem/holopair/pkg/pairing"
	"github.com/backkem/holopair/pkg/verification"
	"github.com/pion/logging"
)

// TestPairConfig configures the test pair creation.
type TestPairConfig struct {
	// Scheme is the initial verification scheme.
	Scheme verification.Scheme

	// ElementSizes overrides the artifact sizes. If nil, {4} is used.
	ElementSizes []int

	// AttackProbability is passed to the Initiator.
	AttackProbability int

	// ConfirmDelay is the gate delay before the final click counts.
	// Default: 20ms
	ConfirmDelay time.Duration

	// RecordDir enables the experiment recorder on the Initiator.
	RecordDir string

	// LoggerFactory for both peers. If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

// TestPair holds two connected HoloPair peers. The Responder finds the
// Initiator through mocked mDNS and dials it over TCP loopback. A scripted
// user clicks through the Initiator's confirmation gate.
type TestPair struct {
	Initiator *pairing.Session
	Responder *pairing.Session

	InitiatorRunner *pairing.Runner
	ResponderRunner *pairing.Runner

	InitiatorConn *channel.Conn
	ResponderConn *channel.Conn

	Gate     *confirm.Gate
	Recorder *experiment.Recorder

	// Registrations holds what the Initiator advertised.
	Registrations []discovery.MockRegistration

	t       *testing.T
	prompts chan pairing.Prompt
}

// NewTestPair advertises, discovers, connects and builds both sessions.
// Nothing runs until Run is called.
func NewTestPair(t *testing.T, config TestPairConfig) *TestPair {
	t.Helper()

	if config.ElementSizes == nil {
		config.ElementSizes = []int{4}
	}
	if config.ConfirmDelay == 0 {
		config.ConfirmDelay = 20 * time.Millisecond
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ln, err := channel.Listen("127.0.0.1:0", channel.Config{LoggerFactory: config.LoggerFactory})
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	mdns := discovery.NewMockMDNSResolver()
	servers := &discovery.MockServerFactory{Resolver: mdns}
	adv := discovery.NewAdvertiser(discovery.AdvertiserConfig{ServerFactory: servers, LoggerFactory: config.LoggerFactory})
	if err := adv.Start("", ln.Port(), discovery.RoleInitiator); err != nil {
		t.Fatalf("Advertiser.Start failed: %v", err)
	}
	t.Cleanup(func() { adv.Close() })

	resolver, err := discovery.NewResolver(discovery.ResolverConfig{
		MDNSResolver:  mdns,
		BrowseTimeout: 2 * time.Second,
		LoggerFactory: config.LoggerFactory,
	})
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}
	peer, err := resolver.Browse(ctx)
	if err != nil {
		t.Fatalf("Browse failed: %v", err)
	}
	addr, err := peer.Addr()
	if err != nil {
		t.Fatalf("Addr failed: %v", err)
	}

	accepted := make(chan *channel.Conn, 1)
	acceptErr := make(chan error, 1)
	go func() {
		c, err := ln.Accept(ctx)
		if err != nil {
			acceptErr <- err
			return
		}
		accepted <- c
	}()

	p := &TestPair{
		Registrations: servers.Registrations(),
		t:             t,
		prompts:       make(chan pairing.Prompt, 32),
	}

	p.ResponderConn, err = channel.Dial(ctx, addr, channel.Config{LoggerFactory: config.LoggerFactory})
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	t.Cleanup(func() { p.ResponderConn.Close() })

	select {
	case p.InitiatorConn = <-accepted:
	case err := <-acceptErr:
		t.Fatalf("Accept failed: %v", err)
	}
	t.Cleanup(func() { p.InitiatorConn.Close() })

	initiatorConfig := pairing.Config{
		Role:              pairing.RoleInitiator,
		Provider:          crypto.NewProvider(nil),
		Channel:           p.InitiatorConn,
		Scheme:            config.Scheme,
		ElementSizes:      config.ElementSizes,
		AttackProbability: config.AttackProbability,
		OnPrompt: func(pr pairing.Prompt) {
			select {
			case p.prompts <- pr:
			default:
			}
		},
		LoggerFactory: config.LoggerFactory,
	}
	if config.RecordDir != "" {
		p.Recorder = experiment.NewRecorder(experiment.Config{Dir: config.RecordDir, LoggerFactory: config.LoggerFactory})
		initiatorConfig.StepLogger = p.Recorder
	}
	p.Initiator, err = pairing.NewSession(initiatorConfig)
	if err != nil {
		t.Fatalf("NewSession(initiator) failed: %v", err)
	}
	p.Responder, err = pairing.NewSession(pairing.Config{
		Role:          pairing.RoleResponder,
		Provider:      crypto.NewProvider(nil),
		Channel:       p.ResponderConn,
		LoggerFactory: config.LoggerFactory,
	})
	if err != nil {
		t.Fatalf("NewSession(responder) failed: %v", err)
	}

	p.InitiatorRunner = p.newRunner(p.Initiator, p.InitiatorConn, config.LoggerFactory)
	p.ResponderRunner = p.newRunner(p.Responder, p.ResponderConn, config.LoggerFactory)

	p.Gate, err = confirm.NewGate(confirm.Config{
		Target:        p.Initiator,
		Delay:         config.ConfirmDelay,
		LoggerFactory: config.LoggerFactory,
	})
	if err != nil {
		t.Fatalf("NewGate failed: %v", err)
	}
	return p
}

func (p *TestPair) newRunner(s *pairing.Session, c *channel.Conn, lf logging.LoggerFactory) *pairing.Runner {
	r, err := pairing.NewRunner(pairing.RunnerConfig{
		Session:       s,
		Messages:      c.Messages(),
		StepTimeout:   5 * time.Second,
		PollInterval:  5 * time.Millisecond,
		LoggerFactory: lf,
	})
	if err != nil {
		p.t.Fatalf("NewRunner failed: %v", err)
	}
	return r
}

// Result is the end state of one runner.
type Result struct {
	Outcome pairing.Outcome
	Err     error
}

// Run runs both peers while the scripted user clicks through the gate, and
// returns once both runners have stopped.
func (p *TestPair) Run(ctx context.Context) (initiator, responder Result) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	clicked := make(chan struct{})
	go func() {
		defer close(clicked)
		p.click(ctx)
	}()

	done := make(chan Result, 1)
	go func() {
		o, err := p.ResponderRunner.Run(ctx)
		done <- Result{o, err}
	}()

	o, err := p.InitiatorRunner.Run(ctx)
	initiator = Result{o, err}
	if err != nil {
		cancel()
	}
	responder = <-done
	cancel()
	<-clicked
	return initiator, responder
}

// click plays the Initiator's user: confirm the wave right away, then click
// the final match as soon as the gate lets it through.
func (p *TestPair) click(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case pr := <-p.prompts:
			switch pr {
			case pairing.PromptClickOnWave:
				if err := p.Gate.Click(); err != nil {
					p.t.Logf("wave click: %v", err)
				}
			case pairing.PromptConfirmGestures:
				p.clickWhenReady(ctx)
			}
		}
	}
}

func (p *TestPair) clickWhenReady(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()
	for {
		err := p.Gate.Click()
		if !errors.Is(err, confirm.ErrTooEarly) {
			if err != nil {
				p.t.Logf("final click: %v", err)
			}
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
