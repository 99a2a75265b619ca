package discovery

import (
	"context"
	"errors"
	"net"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestEncodeParseTXT(t *testing.T) {
	txt := EncodeTXT(RoleInitiator)
	if !reflect.DeepEqual(txt, []string{"v=1", "role=initiator"}) {
		t.Fatalf("EncodeTXT = %v", txt)
	}

	got := ParseTXT([]string{"v=1", "ROLE=initiator", "role=responder", "flag", "=ignored", "k=a=b"})
	want := map[string]string{"v": "1", "role": "initiator", "flag": "", "k": "a=b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseTXT = %v, want %v", got, want)
	}
}

func TestAdvertiserStart(t *testing.T) {
	factory := &MockServerFactory{}
	adv := NewAdvertiser(AdvertiserConfig{ServerFactory: factory})

	if err := adv.Start("", 7447, RoleInitiator); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !adv.IsAdvertising() {
		t.Error("expected advertising")
	}
	if !strings.HasPrefix(adv.InstanceName(), "holopair-") {
		t.Errorf("unexpected instance name %q", adv.InstanceName())
	}

	regs := factory.Registrations()
	if len(regs) != 1 {
		t.Fatalf("expected 1 registration, got %d", len(regs))
	}
	r := regs[0]
	if r.Service != ServiceType || r.Domain != DefaultDomain || r.Port != 7447 {
		t.Errorf("unexpected registration %+v", r)
	}
	if !reflect.DeepEqual(r.Text, []string{"v=1", "role=initiator"}) {
		t.Errorf("unexpected TXT %v", r.Text)
	}

	if err := adv.Start("again", 7447, RoleInitiator); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("expected ErrAlreadyStarted, got %v", err)
	}

	adv.Stop()
	if adv.IsAdvertising() || !r.Server.IsShutdown() {
		t.Error("Stop should shut the server down")
	}
	adv.Stop()

	if err := adv.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := adv.Start("late", 7447, RoleInitiator); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestAdvertiserStartErrors(t *testing.T) {
	boom := errors.New("boom")
	adv := NewAdvertiser(AdvertiserConfig{ServerFactory: &MockServerFactory{Fail: boom}})

	tests := []struct {
		name string
		port int
		role string
		want error
	}{
		{"zero port", 0, RoleInitiator, ErrInvalidPort},
		{"large port", 70000, RoleInitiator, ErrInvalidPort},
		{"bad role", 7447, "observer", ErrInvalidRole},
		{"register fails", 7447, RoleResponder, boom},
	}
	for _, tc := range tests {
		if err := adv.Start("x", tc.port, tc.role); !errors.Is(err, tc.want) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
	if adv.IsAdvertising() {
		t.Error("failed Start should not advertise")
	}
}

func TestResolverBrowseFindsAdvertisedPeer(t *testing.T) {
	mock := NewMockMDNSResolver()
	adv := NewAdvertiser(AdvertiserConfig{ServerFactory: &MockServerFactory{Resolver: mock}})
	if err := adv.Start("alice", 9001, RoleInitiator); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	r, err := NewResolver(ResolverConfig{MDNSResolver: mock, BrowseTimeout: time.Second})
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}

	peer, err := r.Browse(context.Background())
	if err != nil {
		t.Fatalf("Browse failed: %v", err)
	}
	if peer.Instance != "alice" || peer.Role() != RoleInitiator {
		t.Errorf("unexpected peer %+v", peer)
	}
	addr, err := peer.Addr()
	if err != nil {
		t.Fatalf("Addr failed: %v", err)
	}
	if addr != "127.0.0.1:9001" {
		t.Errorf("Addr = %s", addr)
	}
}

func TestResolverBrowseFilters(t *testing.T) {
	mock := NewMockMDNSResolver()
	mock.RegisterService(ServiceType, MockPeerEntry("old", 1, net.IPv4(10, 0, 0, 1), []string{"v=0", "role=initiator"}))
	mock.RegisterService(ServiceType, MockPeerEntry("peer-b", 2, net.IPv4(10, 0, 0, 2), EncodeTXT(RoleResponder)))
	mock.RegisterService(ServiceType, MockPeerEntry("peer-a", 3, net.ParseIP("fe80::1"), EncodeTXT(RoleInitiator)))

	r, _ := NewResolver(ResolverConfig{MDNSResolver: mock})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	peer, err := r.Browse(ctx)
	if err != nil {
		t.Fatalf("Browse failed: %v", err)
	}
	if peer.Instance != "peer-a" {
		t.Fatalf("expected peer-a, got %s", peer.Instance)
	}
	if addr, _ := peer.Addr(); addr != "[fe80::1]:3" {
		t.Errorf("Addr = %s", addr)
	}
}

func TestResolverBrowseNotFound(t *testing.T) {
	r, _ := NewResolver(ResolverConfig{MDNSResolver: NewMockMDNSResolver(), BrowseTimeout: 20 * time.Millisecond})

	if _, err := r.Browse(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Browse(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestPeerAddrNoAddresses(t *testing.T) {
	p := &Peer{Port: 1}
	if _, err := p.Addr(); !errors.Is(err, ErrNoAddresses) {
		t.Errorf("expected ErrNoAddresses, got %v", err)
	}
}
