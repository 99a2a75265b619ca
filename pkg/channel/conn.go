// Package channel carries HoloPair protocol messages between two peers.
//
// A Conn wraps any net.Conn: a TCP connection from Listen/Dial, or one end of
// an in-memory Pipe. Messages are written in order and read by a background
// loop that delivers them on Messages().
package channel

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"github.com/backkem/holopair/pkg/wire"
	"github.com/pion/logging"
)

// DefaultInboxSize is the default capacity of the inbound message queue.
const DefaultInboxSize = 16

// Config configures a Conn.
type Config struct {
	// InboxSize is the capacity of the Messages() channel.
	// Default: DefaultInboxSize
	InboxSize int

	// LoggerFactory is the factory for creating loggers.
	// If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

// Conn is a framed, ordered message channel to one peer.
type Conn struct {
	conn   net.Conn
	reader *wire.StreamReader
	writer *wire.StreamWriter
	log    logging.LeveledLogger

	writeMu sync.Mutex // Protects writes

	inbox     chan *wire.Message
	closeCh   chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	connected atomic.Bool

	mu  sync.Mutex
	err error
}

// NewConn wraps c and starts the read loop.
func NewConn(c net.Conn, config Config) *Conn {
	size := config.InboxSize
	if size <= 0 {
		size = DefaultInboxSize
	}

	conn := &Conn{
		conn: c,
		// Buffer a whole frame so packet-oriented conns are read one
		// packet at a time.
		reader:  wire.NewStreamReader(bufio.NewReaderSize(c, wire.LengthPrefixSize+wire.MaxFrameSize)),
		writer:  wire.NewStreamWriter(c),
		inbox:   make(chan *wire.Message, size),
		closeCh: make(chan struct{}),
	}
	if config.LoggerFactory != nil {
		conn.log = config.LoggerFactory.NewLogger("channel")
	}
	conn.connected.Store(true)

	conn.wg.Add(1)
	go conn.readLoop()

	return conn
}

// Send writes one message to the peer.
func (c *Conn) Send(m wire.Message) error {
	select {
	case <-c.closeCh:
		return ErrClosed
	default:
	}
	if !c.connected.Load() {
		return ErrClosed
	}

	c.writeMu.Lock()
	err := c.writer.WriteMessage(&m)
	c.writeMu.Unlock()

	if err != nil {
		var opErr *net.OpError
		if errors.As(err, &opErr) || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) {
			c.fail(err)
			return fmt.Errorf("%w: %v", ErrSendFailed, err)
		}
		return err
	}

	if c.log != nil {
		c.log.Tracef("sent %s to %s", &m, c.conn.RemoteAddr())
	}
	return nil
}

// Messages returns the inbound message queue. It is closed when the
// connection ends.
func (c *Conn) Messages() <-chan *wire.Message {
	return c.inbox
}

// Connected reports whether the connection is still usable.
func (c *Conn) Connected() bool {
	return c.connected.Load()
}

// Err returns the error that ended the connection, if any.
func (c *Conn) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// LocalAddr returns the local network address.
func (c *Conn) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

// RemoteAddr returns the peer's network address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// Close closes the connection and waits for the read loop to exit.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.connected.Store(false)
		close(c.closeCh)
		err = c.conn.Close()
		if c.log != nil {
			c.log.Debugf("closed connection to %s", c.conn.RemoteAddr())
		}
	})
	c.wg.Wait()
	return err
}

func (c *Conn) fail(err error) {
	c.mu.Lock()
	if c.err == nil {
		c.err = err
	}
	c.mu.Unlock()
	c.connected.Store(false)
}

// readLoop decodes frames until the stream ends. Malformed messages are
// dropped; the frame boundary is still intact so reading continues.
func (c *Conn) readLoop() {
	defer c.wg.Done()
	defer close(c.inbox)

	for {
		m, err := c.reader.ReadMessage()
		if err != nil {
			if isStreamError(err) {
				select {
				case <-c.closeCh:
				default:
					c.fail(err)
					if c.log != nil {
						c.log.Debugf("connection to %s ended: %v", c.conn.RemoteAddr(), err)
					}
				}
				return
			}
			if c.log != nil {
				c.log.Warnf("dropping malformed message from %s: %v", c.conn.RemoteAddr(), err)
			}
			continue
		}

		if c.log != nil {
			c.log.Tracef("received %s from %s", m, c.conn.RemoteAddr())
		}

		select {
		case c.inbox <- m:
		case <-c.closeCh:
			return
		}
	}
}

// isStreamError reports whether err leaves the stream unusable.
func isStreamError(err error) bool {
	switch {
	case errors.Is(err, wire.ErrStreamReadFailed),
		errors.Is(err, wire.ErrFrameTooLarge),
		errors.Is(err, wire.ErrEmptyFrame):
		return true
	}
	var opErr *net.OpError
	return errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.As(err, &opErr)
}
