package pairing

import (
	"bytes"
	"testing"

	"github.com/backkem/holopair/pkg/verification"
	"github.com/backkem/holopair/pkg/wire"
)

func TestMailboxLatchesFirstValue(t *testing.T) {
	var m mailbox

	first := &wire.Message{Field: wire.FieldCommitHash, Epoch: 1, Value: []byte{1, 2}}
	if !m.store(first) {
		t.Fatal("first store should succeed")
	}
	first.Value[0] = 9
	if m.store(&wire.Message{Field: wire.FieldCommitHash, Epoch: 1, Value: []byte{3}}) {
		t.Error("second store should be rejected")
	}

	got, ok := m.get(wire.FieldCommitHash)
	if !ok || !bytes.Equal(got, []byte{1, 2}) {
		t.Fatalf("get = %v, %v", got, ok)
	}
	got[0] = 7
	if again, _ := m.get(wire.FieldCommitHash); again[0] != 1 {
		t.Error("get should return a copy")
	}

	params := &wire.Parameters{Elements: 6, Scheme: verification.SchemePositional}
	if !m.store(&wire.Message{Field: wire.FieldParameters, Params: params}) || !m.has(wire.FieldParameters) {
		t.Error("parameters should latch")
	}
	if m.store(&wire.Message{Field: wire.FieldAbort}) {
		t.Error("signals have no mailbox slot")
	}

	m.reset()
	for _, f := range []wire.Field{wire.FieldParameters, wire.FieldCommitHash} {
		if m.has(f) {
			t.Errorf("%s still set after reset", f)
		}
	}
	if !m.store(&wire.Message{Field: wire.FieldCommitHash, Value: []byte{3}}) {
		t.Error("store after reset should succeed")
	}
}
