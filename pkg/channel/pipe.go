package channel

import (
	"sync"
	"time"

	"github.com/pion/transport/v3/test"
)

// DefaultTickInterval is how often a Pipe delivers queued packets.
const DefaultTickInterval = time.Millisecond

// Pipe connects two Conns in memory over a pion test bridge. Packets are
// delivered by a background ticker, so both ends behave like a real network
// peer without sockets.
type Pipe struct {
	bridge *test.Bridge
	conn0  *Conn
	conn1  *Conn

	stopCh    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewPipe creates a connected pair with automatic delivery.
func NewPipe(config Config) *Pipe {
	p := &Pipe{
		bridge: test.NewBridge(),
		stopCh: make(chan struct{}),
	}
	p.conn0 = NewConn(p.bridge.GetConn0(), config)
	p.conn1 = NewConn(p.bridge.GetConn1(), config)

	p.wg.Add(1)
	go p.tickLoop(DefaultTickInterval)

	return p
}

func (p *Pipe) tickLoop(interval time.Duration) {
	defer p.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			// Drain everything queued so far.
			for p.bridge.Tick() > 0 {
			}
		}
	}
}

// Conn0 returns the first endpoint. Close the Pipe rather than its ends.
func (p *Pipe) Conn0() *Conn {
	return p.conn0
}

// Conn1 returns the second endpoint.
func (p *Pipe) Conn1() *Conn {
	return p.conn1
}

// Close stops delivery and closes both endpoints.
func (p *Pipe) Close() error {
	var err error
	p.closeOnce.Do(func() {
		close(p.stopCh)
		p.wg.Wait()

		err0 := p.conn0.Close()
		err1 := p.conn1.Close()
		if err0 != nil {
			err = err0
		} else {
			err = err1
		}
	})
	return err
}
