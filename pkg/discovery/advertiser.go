// Package discovery finds HoloPair peers on the local network with mDNS.
//
// The Initiator listens for the channel and advertises _holopair._tcp; the
// Responder browses for it and dials the first answer.
package discovery

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net"
	"sync"

	"github.com/grandcat/zeroconf"
	"github.com/pion/logging"
)

// MDNSServer is the interface for mDNS service registration.
// This allows for dependency injection in tests.
type MDNSServer interface {
	// Shutdown stops the server.
	Shutdown()
}

// MDNSServerFactory creates MDNSServer instances.
type MDNSServerFactory interface {
	// Register creates a new mDNS server for the given service.
	Register(instance, service, domain string, port int, txt []string, ifaces []net.Interface) (MDNSServer, error)
}

// zeroconfServerFactory is the production implementation using grandcat/zeroconf.
type zeroconfServerFactory struct{}

func (z *zeroconfServerFactory) Register(instance, service, domain string, port int, txt []string, ifaces []net.Interface) (MDNSServer, error) {
	return zeroconf.Register(instance, service, domain, port, txt, ifaces)
}

// AdvertiserConfig holds configuration for the Advertiser.
type AdvertiserConfig struct {
	// Interfaces specifies which network interfaces to advertise on.
	// If nil, all interfaces are used.
	Interfaces []net.Interface

	// ServerFactory is the factory for creating mDNS servers.
	// If nil, the default zeroconf factory is used.
	ServerFactory MDNSServerFactory

	// LoggerFactory for creating loggers.
	LoggerFactory logging.LoggerFactory
}

// Advertiser publishes this peer's pairing service.
type Advertiser struct {
	config  AdvertiserConfig
	factory MDNSServerFactory
	log     logging.LeveledLogger

	mu       sync.Mutex
	server   MDNSServer
	instance string
	closed   bool
}

// NewAdvertiser creates a new Advertiser with the given configuration.
func NewAdvertiser(config AdvertiserConfig) *Advertiser {
	factory := config.ServerFactory
	if factory == nil {
		factory = &zeroconfServerFactory{}
	}

	a := &Advertiser{
		config:  config,
		factory: factory,
	}
	if config.LoggerFactory != nil {
		a.log = config.LoggerFactory.NewLogger("discovery")
	}
	return a
}

// Start registers the service. An empty instance name gets a random one.
func (a *Advertiser) Start(instance string, port int, role string) error {
	if port <= 0 || port > 65535 {
		return ErrInvalidPort
	}
	if !ValidRole(role) {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrClosed
	}
	if a.server != nil {
		return ErrAlreadyStarted
	}

	if instance == "" {
		var err error
		if instance, err = randomInstanceName(); err != nil {
			return fmt.Errorf("advertiser: failed to generate instance name: %w", err)
		}
	}

	txt := EncodeTXT(role)
	if a.log != nil {
		a.log.Debugf("registering mDNS service: instance=%s service=%s port=%d txt=%v",
			instance, ServiceType, port, txt)
	}

	server, err := a.factory.Register(instance, ServiceType, DefaultDomain, port, txt, a.config.Interfaces)
	if err != nil {
		return fmt.Errorf("advertiser: mDNS registration failed: %w", err)
	}

	a.server = server
	a.instance = instance
	if a.log != nil {
		a.log.Infof("advertising %s as %s on port %d", ServiceType, instance, port)
	}
	return nil
}

// Stop withdraws the advertisement. Stopping when idle is a no-op.
func (a *Advertiser) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopLocked()
}

func (a *Advertiser) stopLocked() {
	if a.server == nil {
		return
	}
	a.server.Shutdown()
	a.server = nil
	if a.log != nil {
		a.log.Infof("stopped advertising %s", a.instance)
	}
	a.instance = ""
}

// Close stops advertising and prevents further use.
func (a *Advertiser) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopLocked()
	a.closed = true
	return nil
}

// IsAdvertising reports whether the service is registered.
func (a *Advertiser) IsAdvertising() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.server != nil
}

// InstanceName returns the registered instance name, or "" when idle.
func (a *Advertiser) InstanceName() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.instance
}

func randomInstanceName() (string, error) {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	return "holopair-" + hex.EncodeToString(buf[:]), nil
}
