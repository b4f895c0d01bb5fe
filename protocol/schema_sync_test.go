package protocol_test

import (
	"testing"

	"github.com/gogogo1024/mcgate/internal/schema"
	"github.com/gogogo1024/mcgate/protocol"
)

// The generated table must match serverbound.yaml; rerun go generate if this fails.
func TestGeneratedTableMatchesSchema(t *testing.T) {
	s, err := schema.Load("serverbound.yaml")
	if err != nil {
		t.Fatalf("load schema: %v", err)
	}
	if issues := s.Validate(); len(issues) > 0 {
		t.Fatalf("schema issues: %v", issues)
	}
	if s.Protocol != protocol.ProtocolVersion {
		t.Fatalf("schema protocol %d, generated %d", s.Protocol, protocol.ProtocolVersion)
	}

	packets := s.Packets()
	kinds := protocol.AllKinds()
	if len(packets) != len(kinds) {
		t.Fatalf("schema has %d packets, generated table %d", len(packets), len(kinds))
	}
	for i, p := range packets {
		k := kinds[i]
		if k.Name() != p.Name || k.State().String() != p.State || int(k.ID()) != p.ID {
			t.Fatalf("entry %d: generated %s/%s/0x%02X, schema %s/%s/0x%02X", i, k.State(), k.Name(), k.ID(), p.State, p.Name, p.ID)
		}
	}
}

func TestKnownStatesMatchProtocol(t *testing.T) {
	states := protocol.States()
	if len(states) != len(schema.KnownStates) {
		t.Fatalf("protocol has %d states, schema knows %d", len(states), len(schema.KnownStates))
	}
	for i, s := range states {
		if s.String() != schema.KnownStates[i] {
			t.Fatalf("state %d: protocol %q, schema %q", i, s, schema.KnownStates[i])
		}
		parsed, err := protocol.ParseState(schema.KnownStates[i])
		if err != nil || parsed != s {
			t.Fatalf("ParseState(%q)=(%s, %v)", schema.KnownStates[i], parsed, err)
		}
	}
}
