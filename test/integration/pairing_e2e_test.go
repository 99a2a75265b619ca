package integration

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/backkem/holopair/pkg/crypto"
	"github.com/backkem/holopair/pkg/discovery"
	"github.com/backkem/holopair/pkg/experiment"
	"github.com/backkem/holopair/pkg/pairing"
	"github.com/backkem/holopair/pkg/verification"
)

func runPair(t *testing.T, p *TestPair) (Result, Result) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return p.Run(ctx)
}

func TestPairingOverTCP(t *testing.T) {
	dir := t.TempDir()
	p := NewTestPair(t, TestPairConfig{RecordDir: dir})

	if len(p.Registrations) != 1 {
		t.Fatalf("expected one registration, got %d", len(p.Registrations))
	}
	reg := p.Registrations[0]
	if reg.Service != discovery.ServiceType {
		t.Errorf("advertised %q", reg.Service)
	}

	a, b := runPair(t, p)
	if a.Err != nil || a.Outcome != pairing.OutcomeSucceeded {
		t.Fatalf("initiator: %s, %v", a.Outcome, a.Err)
	}
	if b.Err != nil || b.Outcome != pairing.OutcomeSucceeded {
		t.Fatalf("responder: %s, %v", b.Outcome, b.Err)
	}

	ka, kb := p.Initiator.LinkKey(), p.Responder.LinkKey()
	if len(ka) != crypto.LinkKeySize || !bytes.Equal(ka, kb) {
		t.Errorf("link keys: %x vs %x", ka, kb)
	}
	if !p.Initiator.Artifact().Equal(p.Responder.Artifact()) {
		t.Error("peers derived different artifacts")
	}

	data, err := os.ReadFile(p.Recorder.Path())
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	rows := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(rows) != 1 {
		t.Fatalf("expected one recorded attempt, got %q", data)
	}
	fields := strings.Split(rows[0], ",")
	if len(fields) != 14 || fields[13] != experiment.LabelSuccess {
		t.Errorf("unexpected row %q", rows[0])
	}
	for i, ts := range fields[8:13] {
		if ts == "-1" {
			t.Errorf("timestamp %d not recorded in %q", i, rows[0])
		}
	}
}

func TestPairingSchemes(t *testing.T) {
	tests := []struct {
		scheme verification.Scheme
		size   int
	}{
		{verification.SchemeColoring, 6},
		{verification.SchemePositional, 5},
	}
	for _, tc := range tests {
		t.Run(tc.scheme.String(), func(t *testing.T) {
			p := NewTestPair(t, TestPairConfig{Scheme: tc.scheme, ElementSizes: []int{tc.size}})

			a, b := runPair(t, p)
			if a.Err != nil || b.Err != nil {
				t.Fatalf("pairing failed: %v / %v", a.Err, b.Err)
			}
			params, ok := p.Responder.Parameters()
			if !ok || params.Scheme != tc.scheme || params.Elements != tc.size {
				t.Errorf("responder parameters %+v", params)
			}
			art := p.Responder.Artifact()
			if art == nil || art.Scheme() != tc.scheme || art.Count() != tc.size {
				t.Fatalf("unexpected artifact %+v", art)
			}
			if !art.Equal(p.Initiator.Artifact()) {
				t.Error("artifacts differ")
			}
		})
	}
}

func TestAttackSimulationOverTCP(t *testing.T) {
	dir := t.TempDir()
	p := NewTestPair(t, TestPairConfig{AttackProbability: 100, RecordDir: dir})

	a, b := runPair(t, p)
	if a.Err != nil || b.Err != nil {
		t.Fatalf("pairing failed: %v / %v", a.Err, b.Err)
	}
	if bytes.Equal(p.Initiator.LinkKey(), p.Responder.LinkKey()) {
		t.Error("simulated attack should leave the peers with different keys")
	}
	if p.Initiator.Artifact().Equal(p.Responder.Artifact()) {
		t.Error("simulated attack should show different artifacts")
	}

	data, err := os.ReadFile(p.Recorder.Path())
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	fields := strings.Split(strings.TrimSpace(string(data)), ",")
	if len(fields) != 14 || fields[5] != "1" {
		t.Errorf("attack flag not recorded in %q", data)
	}
}

func TestResponderSeesDisconnect(t *testing.T) {
	p := NewTestPair(t, TestPairConfig{})

	if err := p.InitiatorConn.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	outcome, err := p.ResponderRunner.Run(ctx)
	if !errors.Is(err, pairing.ErrDisconnected) || outcome != pairing.OutcomeAborted {
		t.Fatalf("expected disconnect abort, got %s, %v", outcome, err)
	}
}
