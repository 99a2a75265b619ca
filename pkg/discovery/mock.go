package discovery

import (
	"context"
	"net"
	"sync"

	"github.com/grandcat/zeroconf"
)

// MockMDNSResolver provides a mock mDNS resolver for testing without real network I/O.
type MockMDNSResolver struct {
	mu       sync.RWMutex
	services map[string][]*zeroconf.ServiceEntry
}

// NewMockMDNSResolver creates a new mock resolver.
func NewMockMDNSResolver() *MockMDNSResolver {
	return &MockMDNSResolver{
		services: make(map[string][]*zeroconf.ServiceEntry),
	}
}

// RegisterService registers a service that will be returned by Browse.
func (m *MockMDNSResolver) RegisterService(service string, entry *zeroconf.ServiceEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.services[service] = append(m.services[service], entry)
}

// Browse implements MDNSResolver. It sends the registered entries and then
// waits for ctx like a real browse would.
func (m *MockMDNSResolver) Browse(ctx context.Context, service, domain string, entries chan<- *zeroconf.ServiceEntry) error {
	m.mu.RLock()
	svcEntries := make([]*zeroconf.ServiceEntry, len(m.services[service]))
	copy(svcEntries, m.services[service])
	m.mu.RUnlock()

	for _, entry := range svcEntries {
		select {
		case entries <- entry:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	<-ctx.Done()
	return ctx.Err()
}

// MockServer records whether it was shut down.
type MockServer struct {
	mu       sync.Mutex
	shutdown bool
}

// Shutdown implements MDNSServer.
func (s *MockServer) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shutdown = true
}

// IsShutdown reports whether Shutdown was called.
func (s *MockServer) IsShutdown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdown
}

// MockRegistration captures the arguments of one Register call.
type MockRegistration struct {
	Instance string
	Service  string
	Domain   string
	Port     int
	Text     []string
	Server   *MockServer
}

// MockServerFactory records registrations instead of touching the network.
// Registrations are also published to Resolver, when set.
type MockServerFactory struct {
	Resolver *MockMDNSResolver
	Fail     error

	mu            sync.Mutex
	registrations []MockRegistration
}

// Register implements MDNSServerFactory.
func (f *MockServerFactory) Register(instance, service, domain string, port int, txt []string, ifaces []net.Interface) (MDNSServer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Fail != nil {
		return nil, f.Fail
	}

	server := &MockServer{}
	f.registrations = append(f.registrations, MockRegistration{
		Instance: instance,
		Service:  service,
		Domain:   domain,
		Port:     port,
		Text:     txt,
		Server:   server,
	})

	if f.Resolver != nil {
		f.Resolver.RegisterService(service, MockPeerEntry(instance, port, net.IPv4(127, 0, 0, 1), txt))
	}
	return server, nil
}

// Registrations returns a copy of all Register calls so far.
func (f *MockServerFactory) Registrations() []MockRegistration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]MockRegistration(nil), f.registrations...)
}

// MockPeerEntry creates a service entry as a peer would advertise it.
func MockPeerEntry(instance string, port int, ip net.IP, txt []string) *zeroconf.ServiceEntry {
	entry := &zeroconf.ServiceEntry{
		ServiceRecord: zeroconf.ServiceRecord{
			Instance: instance,
			Service:  ServiceType,
			Domain:   DefaultDomain,
		},
		HostName: instance + ".local.",
		Port:     port,
		Text:     txt,
	}
	if ip.To4() != nil {
		entry.AddrIPv4 = []net.IP{ip}
	} else {
		entry.AddrIPv6 = []net.IP{ip}
	}
	return entry
}
