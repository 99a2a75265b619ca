package discovery

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/grandcat/zeroconf"
	"github.com/pion/logging"
)

// DefaultBrowseTimeout is the default timeout for browse operations.
const DefaultBrowseTimeout = 10 * time.Second

// Peer is a resolved HoloPair service.
type Peer struct {
	// Instance is the DNS-SD instance name.
	Instance string

	// HostName is the target host name.
	HostName string

	// Port is the service port.
	Port int

	// IPv4 and IPv6 hold the resolved addresses.
	IPv4 []net.IP
	IPv6 []net.IP

	// Text contains the parsed TXT records.
	Text map[string]string
}

// Role returns the advertised role.
func (p *Peer) Role() string {
	return p.Text[TXTKeyRole]
}

// Addr returns a dialable host:port, preferring IPv4.
func (p *Peer) Addr() (string, error) {
	var ip net.IP
	switch {
	case len(p.IPv4) > 0:
		ip = p.IPv4[0]
	case len(p.IPv6) > 0:
		ip = p.IPv6[0]
	default:
		return "", ErrNoAddresses
	}
	return net.JoinHostPort(ip.String(), strconv.Itoa(p.Port)), nil
}

// MDNSResolver is the interface for mDNS service resolution.
// This allows for dependency injection in tests.
type MDNSResolver interface {
	// Browse browses for services of the given type.
	Browse(ctx context.Context, service, domain string, entries chan<- *zeroconf.ServiceEntry) error
}

// zeroconfResolver is the production implementation using grandcat/zeroconf.
type zeroconfResolver struct {
	resolver *zeroconf.Resolver
}

func newZeroconfResolver() (*zeroconfResolver, error) {
	r, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, err
	}
	return &zeroconfResolver{resolver: r}, nil
}

func (z *zeroconfResolver) Browse(ctx context.Context, service, domain string, entries chan<- *zeroconf.ServiceEntry) error {
	return z.resolver.Browse(ctx, service, domain, entries)
}

// ResolverConfig holds configuration for the Resolver.
type ResolverConfig struct {
	// MDNSResolver is the underlying mDNS resolver implementation.
	// If nil, the default zeroconf resolver is used.
	MDNSResolver MDNSResolver

	// Role is the advertised role to look for.
	// Default: RoleInitiator
	Role string

	// BrowseTimeout bounds Browse when ctx has no deadline.
	// If zero, DefaultBrowseTimeout is used.
	BrowseTimeout time.Duration

	// LoggerFactory for creating loggers.
	LoggerFactory logging.LoggerFactory
}

// Resolver finds a peer to pair with.
type Resolver struct {
	config   ResolverConfig
	resolver MDNSResolver
	log      logging.LeveledLogger
}

// NewResolver creates a new Resolver with the given configuration.
func NewResolver(config ResolverConfig) (*Resolver, error) {
	resolver := config.MDNSResolver
	if resolver == nil {
		zr, err := newZeroconfResolver()
		if err != nil {
			return nil, err
		}
		resolver = zr
	}

	if config.Role == "" {
		config.Role = RoleInitiator
	}
	if config.BrowseTimeout == 0 {
		config.BrowseTimeout = DefaultBrowseTimeout
	}

	r := &Resolver{
		config:   config,
		resolver: resolver,
	}
	if config.LoggerFactory != nil {
		r.log = config.LoggerFactory.NewLogger("discovery")
	}
	return r, nil
}

// Browse returns the first peer advertising the configured role with a
// matching protocol version. Returns ErrNotFound when nothing matched before
// the timeout, or ctx.Err() when ctx was canceled.
func (r *Resolver) Browse(ctx context.Context) (*Peer, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.BrowseTimeout)
		defer cancel()
	}

	browseCtx, stop := context.WithCancel(ctx)
	defer stop()

	entries := make(chan *zeroconf.ServiceEntry)
	go func() {
		defer close(entries)
		if err := r.resolver.Browse(browseCtx, ServiceType, DefaultDomain, entries); err != nil && r.log != nil {
			r.log.Debugf("browse ended: %v", err)
		}
	}()

	for {
		select {
		case entry, ok := <-entries:
			if !ok {
				if ctx.Err() == context.Canceled {
					return nil, ctx.Err()
				}
				return nil, ErrNotFound
			}
			if entry == nil {
				continue
			}
			peer := entryToPeer(entry)
			if !r.matches(peer) {
				if r.log != nil {
					r.log.Debugf("ignoring %s (role=%q v=%q)", peer.Instance, peer.Role(), peer.Text[TXTKeyVersion])
				}
				continue
			}
			if r.log != nil {
				r.log.Infof("found peer %s at port %d", peer.Instance, peer.Port)
			}
			return peer, nil
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				return nil, ErrNotFound
			}
			return nil, ctx.Err()
		}
	}
}

func (r *Resolver) matches(p *Peer) bool {
	return p.Text[TXTKeyVersion] == ProtocolVersion && p.Role() == r.config.Role
}

func entryToPeer(entry *zeroconf.ServiceEntry) *Peer {
	return &Peer{
		Instance: entry.Instance,
		HostName: entry.HostName,
		Port:     entry.Port,
		IPv4:     append([]net.IP(nil), entry.AddrIPv4...),
		IPv6:     append([]net.IP(nil), entry.AddrIPv6...),
		Text:     ParseTXT(entry.Text),
	}
}
