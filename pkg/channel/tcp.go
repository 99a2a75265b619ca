package channel

import (
	"context"
	"net"
	"time"

	"github.com/pion/logging"
)

// Listener accepts peer connections over TCP.
type Listener struct {
	ln     net.Listener
	config Config
	log    logging.LeveledLogger
}

// Listen starts a TCP listener on addr (e.g. ":7447"; ":0" picks a port).
func Listen(addr string, config Config) (*Listener, error) {
	if addr == "" {
		addr = ":0"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return NewListener(ln, config), nil
}

// NewListener wraps an existing net.Listener.
func NewListener(ln net.Listener, config Config) *Listener {
	l := &Listener{ln: ln, config: config}
	if config.LoggerFactory != nil {
		l.log = config.LoggerFactory.NewLogger("channel")
		l.log.Infof("listening on %s", ln.Addr())
	}
	return l
}

// Addr returns the listener's network address.
func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}

// Port returns the TCP port, or 0 for non-TCP listeners.
func (l *Listener) Port() int {
	if tcp, ok := l.ln.Addr().(*net.TCPAddr); ok {
		return tcp.Port
	}
	return 0
}

type acceptResult struct {
	conn net.Conn
	err  error
}

type deadliner interface {
	SetDeadline(t time.Time) error
}

// Accept waits for the next peer or until ctx is done.
func (l *Listener) Accept(ctx context.Context) (*Conn, error) {
	ch := make(chan acceptResult, 1)
	go func() {
		c, err := l.ln.Accept()
		ch <- acceptResult{conn: c, err: err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return nil, r.err
		}
		if l.log != nil {
			l.log.Infof("accepted peer %s", r.conn.RemoteAddr())
		}
		return NewConn(r.conn, l.config), nil
	case <-ctx.Done():
		if d, ok := l.ln.(deadliner); ok {
			_ = d.SetDeadline(time.Now())
			r := <-ch
			if r.conn != nil {
				r.conn.Close()
			}
			_ = d.SetDeadline(time.Time{})
		} else {
			go func() {
				if r := <-ch; r.conn != nil {
					r.conn.Close()
				}
			}()
		}
		return nil, ctx.Err()
	}
}

// Close stops listening.
func (l *Listener) Close() error {
	return l.ln.Close()
}

// Dial connects to a listening peer.
func Dial(ctx context.Context, addr string, config Config) (*Conn, error) {
	var d net.Dialer
	c, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	if config.LoggerFactory != nil {
		config.LoggerFactory.NewLogger("channel").Infof("connected to %s", c.RemoteAddr())
	}
	return NewConn(c, config), nil
}
