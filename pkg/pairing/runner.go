package pairing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/backkem/holopair/pkg/wire"
	"github.com/pion/logging"
)

// Runner defaults.
const (
	DefaultStepTimeout  = 2 * time.Minute
	DefaultPollInterval = 50 * time.Millisecond

	eventQueueSize = 8
)

// Event is a user action posted to a Runner.
type Event int

const (
	EventConfirmOutOfBandAck Event = iota
	EventConfirmFinalMatch
	EventAbort
	EventRestart
	EventSwitchScheme
)

// String returns the event name.
func (e Event) String() string {
	switch e {
	case EventConfirmOutOfBandAck:
		return "ConfirmOutOfBandAck"
	case EventConfirmFinalMatch:
		return "ConfirmFinalMatch"
	case EventAbort:
		return "Abort"
	case EventRestart:
		return "Restart"
	case EventSwitchScheme:
		return "SwitchScheme"
	default:
		return fmt.Sprintf("Event(%d)", int(e))
	}
}

// RunnerConfig configures a Runner.
type RunnerConfig struct {
	// Session is the session to drive. Required.
	Session *Session

	// Messages is the inbound message queue, e.g. channel.Conn.Messages().
	// Required.
	Messages <-chan *wire.Message

	// StepTimeout aborts an attempt that stays on one step this long.
	// Default: DefaultStepTimeout
	StepTimeout time.Duration

	// PollInterval is how often guards are re-evaluated without input, so an
	// Initiator notices the channel coming up.
	// Default: DefaultPollInterval
	PollInterval time.Duration

	// ExitOnAbort makes Run return after the first aborted attempt instead of
	// letting the session retry.
	ExitOnAbort bool

	// LoggerFactory is the factory for creating loggers.
	// If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

// Runner serializes inbound messages, user events and guard polling for one
// session on a single goroutine.
type Runner struct {
	session      *Session
	messages     <-chan *wire.Message
	events       chan Event
	stepTimeout  time.Duration
	pollInterval time.Duration
	exitOnAbort  bool
	log          logging.LeveledLogger
}

// NewRunner creates a runner.
func NewRunner(config RunnerConfig) (*Runner, error) {
	if config.Session == nil {
		return nil, fmt.Errorf("%w: nil session", ErrInvalidConfig)
	}
	if config.Messages == nil {
		return nil, fmt.Errorf("%w: nil message queue", ErrInvalidConfig)
	}

	r := &Runner{
		session:      config.Session,
		messages:     config.Messages,
		events:       make(chan Event, eventQueueSize),
		stepTimeout:  config.StepTimeout,
		pollInterval: config.PollInterval,
		exitOnAbort:  config.ExitOnAbort,
	}
	if r.stepTimeout <= 0 {
		r.stepTimeout = DefaultStepTimeout
	}
	if r.pollInterval <= 0 {
		r.pollInterval = DefaultPollInterval
	}
	if config.LoggerFactory != nil {
		r.log = config.LoggerFactory.NewLogger("runner")
	}
	return r, nil
}

// Post queues a user event. It never blocks and reports false if the queue
// is full. Safe to call from session callbacks.
func (r *Runner) Post(ev Event) bool {
	select {
	case r.events <- ev:
		return true
	default:
		if r.log != nil {
			r.log.Warnf("event queue full, dropping %s", ev)
		}
		return false
	}
}

// Run drives the session until it succeeds, ctx ends, the message queue
// closes or a step times out. With ExitOnAbort it also returns after an
// aborted attempt, with the abort cause.
func (r *Runner) Run(ctx context.Context) (Outcome, error) {
	s := r.session

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	timer := time.NewTimer(r.stepTimeout)
	timer.Stop()
	defer timer.Stop()

	var (
		armed      bool
		armedEpoch uint32
		armedStep  Step
	)
	aborts := s.abortCount()

	r.report(s.Evaluate())

	for {
		if s.Outcome() == OutcomeSucceeded {
			return OutcomeSucceeded, nil
		}
		if r.exitOnAbort && s.abortCount() > aborts {
			return OutcomeAborted, s.LastError()
		}

		// Re-arm the step timer whenever the attempt makes progress.
		epoch, step, pending := s.progress()
		switch {
		case !pending:
			if armed {
				timer.Stop()
				armed = false
			}
		case !armed || epoch != armedEpoch || step != armedStep:
			timer.Reset(r.stepTimeout)
			armed, armedEpoch, armedStep = true, epoch, step
		}

		select {
		case <-ctx.Done():
			return s.Outcome(), ctx.Err()

		case m, ok := <-r.messages:
			if !ok {
				if r.log != nil {
					r.log.Warn("message channel closed")
				}
				_ = s.fail(ErrDisconnected)
				return OutcomeAborted, ErrDisconnected
			}
			r.report(s.Deliver(*m))

		case ev := <-r.events:
			r.handle(ev)

		case <-ticker.C:
			r.report(s.Evaluate())

		case <-timer.C:
			armed = false
			if r.log != nil {
				r.log.Warnf("no progress on step %s for %v", armedStep, r.stepTimeout)
			}
			_ = s.fail(ErrTimeout)
			return OutcomeAborted, ErrTimeout
		}
	}
}

func (r *Runner) handle(ev Event) {
	s := r.session
	var err error
	switch ev {
	case EventConfirmOutOfBandAck:
		err = s.ConfirmOutOfBandAck()
	case EventConfirmFinalMatch:
		err = s.ConfirmFinalMatch()
	case EventAbort:
		err = s.Abort()
	case EventRestart:
		err = s.Restart()
	case EventSwitchScheme:
		_, err = s.SwitchScheme()
	}
	r.report(err)
}

func (r *Runner) report(err error) {
	if err == nil || r.log == nil {
		return
	}
	if errors.Is(err, ErrUnexpectedConfirmation) || errors.Is(err, ErrNotInitiator) {
		r.log.Debugf("ignored: %v", err)
		return
	}
	r.log.Warnf("%v", err)
}

// progress returns the attempt epoch and step, and whether an attempt is in
// progress, in one consistent read.
func (s *Session) progress() (uint32, Step, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch, s.step, s.epoch != 0 && s.outcome == OutcomePending
}
