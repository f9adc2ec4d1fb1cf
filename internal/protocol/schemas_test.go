package protocol_test

import (
	"encoding/json"
	"strings"
	"testing"

	"digworld.ai/internal/protocol"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	validate := func(typ, raw string) {
		t.Helper()
		if err := protocol.Validate(typ, []byte(raw)); err != nil {
			t.Fatalf("validate %s: %v", typ, err)
		}
	}

	validate(protocol.TypeHello, `{
	  "type":"HELLO",
	  "protocol_version":"1.0",
	  "client_name":"host",
	  "role":"controller",
	  "max_queue":8
	}`)

	validate(protocol.TypeAct, `{
	  "type":"ACT",
	  "protocol_version":"1.0",
	  "act_id":"a1",
	  "tick":12,
	  "commands":[
	    {"type":"DEPLOY","slot":1,"kind":"scout"},
	    {"type":"MOVE_TO","target":[64.5,-12]},
	    {"type":"SPAWN_COMPLETE","unit_id":1},
	    {"type":"SELECT_SLOT","slot":0}
	  ]
	}`)

	validate(protocol.TypeObs, `{
	  "type":"OBS",
	  "protocol_version":"1.0",
	  "tick":3,
	  "score":160,
	  "digest":"`+strings.Repeat("ab", 32)+`",
	  "units":[{"id":1,"slot":1,"kind":"scout","deployment":"active","pos":[0,0],"tile":[500,500],"moving":false,"stats":{"members":1}}],
	  "events":[{"type":"DIG","unit_id":1}]
	}`)
}

func TestSchemas_RejectInvalid(t *testing.T) {
	bad := map[string][2]string{
		"hello role":      {protocol.TypeHello, `{"type":"HELLO","protocol_version":"1.0","client_name":"x","role":"god"}`},
		"hello name":      {protocol.TypeHello, `{"type":"HELLO","protocol_version":"1.0","role":"observer"}`},
		"act no kind":     {protocol.TypeAct, `{"type":"ACT","protocol_version":"1.0","tick":0,"commands":[{"type":"DEPLOY","slot":1}]}`},
		"act bad target":  {protocol.TypeAct, `{"type":"ACT","protocol_version":"1.0","tick":0,"commands":[{"type":"MOVE_TO","target":[1]}]}`},
		"act unknown cmd": {protocol.TypeAct, `{"type":"ACT","protocol_version":"1.0","tick":0,"commands":[{"type":"TELEPORT"}]}`},
	}
	for name, c := range bad {
		if err := protocol.Validate(c[0], []byte(c[1])); err == nil {
			t.Fatalf("%s: expected schema error", name)
		}
	}
	if err := protocol.Validate(protocol.TypeAct, []byte(`{`)); err == nil {
		t.Fatalf("expected json error")
	}
}

func TestSchemas_MarshalledActValidates(t *testing.T) {
	act := protocol.ActMsg{
		Type:            protocol.TypeAct,
		ProtocolVersion: protocol.Version,
		Tick:            1,
		Commands: []protocol.CommandReq{
			{Type: "DEPLOY", Slot: 1, Kind: "attack"},
			{Type: "MOVE_TO", Target: [2]float64{1, 2}},
		},
	}
	b, err := json.Marshal(act)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := protocol.Validate(protocol.TypeAct, b); err != nil {
		t.Fatalf("validate: %v", err)
	}
}
