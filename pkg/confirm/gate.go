// Package confirm maps the Initiator's single "click on the other user's
// cube" gesture to the two human confirmations of the pairing protocol.
//
// The first click, while the session waits for the wave, confirms the
// out-of-band acknowledgement and arms a delay. A click while the session
// waits for the gesture check is forwarded only once the delay has passed,
// so one double click cannot confirm both.
package confirm

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/backkem/holopair/pkg/pairing"
	"github.com/pion/logging"
)

// DefaultDelay is the minimum time between the two confirmations.
const DefaultDelay = 2 * time.Second

// Errors.
var (
	ErrNilTarget = errors.New("confirm: nil target")
	ErrTooEarly  = errors.New("confirm: final confirmation not yet allowed")
)

// Target is the session side the gate confirms on.
type Target interface {
	Step() pairing.Step
	ConfirmOutOfBandAck() error
	ConfirmFinalMatch() error
}

// Timer is a stoppable pending callback.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Config configures a Gate.
type Config struct {
	// Target receives the confirmations. Required.
	Target Target

	// Delay between the confirmations.
	// Default: DefaultDelay
	Delay time.Duration

	// AfterFunc schedules the delay. Default: time.AfterFunc
	AfterFunc AfterFunc

	// LoggerFactory is the factory for creating loggers.
	// If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

// Gate turns clicks into confirmations.
type Gate struct {
	target    Target
	delay     time.Duration
	afterFunc AfterFunc
	log       logging.LeveledLogger

	mu    sync.Mutex
	timer Timer
	ready bool
}

// NewGate creates a gate.
func NewGate(config Config) (*Gate, error) {
	if config.Target == nil {
		return nil, ErrNilTarget
	}
	g := &Gate{
		target:    config.Target,
		delay:     config.Delay,
		afterFunc: config.AfterFunc,
	}
	if g.delay <= 0 {
		g.delay = DefaultDelay
	}
	if g.afterFunc == nil {
		g.afterFunc = realAfterFunc
	}
	if config.LoggerFactory != nil {
		g.log = config.LoggerFactory.NewLogger("confirm")
	}
	return g, nil
}

// Click handles one user click.
func (g *Gate) Click() error {
	step := g.target.Step()
	switch step {
	case pairing.StepAwaitOutOfBandAck:
		if err := g.target.ConfirmOutOfBandAck(); err != nil {
			return err
		}
		g.arm()
		return nil

	case pairing.StepAwaitFinalMatch:
		g.mu.Lock()
		ready := g.ready
		g.ready = false
		g.mu.Unlock()
		if !ready {
			if g.log != nil {
				g.log.Debug("click before the confirmation delay passed")
			}
			return ErrTooEarly
		}
		return g.target.ConfirmFinalMatch()

	default:
		return fmt.Errorf("%w: click at step %s", pairing.ErrUnexpectedConfirmation, step)
	}
}

// Ready reports whether the next final-match click will be forwarded.
func (g *Gate) Ready() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ready
}

// Reset cancels a pending delay.
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stopLocked()
}

func (g *Gate) arm() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stopLocked()

	var t Timer
	t = g.afterFunc(g.delay, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.timer == t {
			g.ready = true
			g.timer = nil
		}
	})
	g.timer = t
}

func (g *Gate) stopLocked() {
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	g.ready = false
}
