package realtime

import (
	"encoding/json"
	"testing"
)

func TestDecodePayloadJoinGame(t *testing.T) {
	raw := []byte(`{"type":"join_game","payload":{"gameId":"g1","userId":"u1","username":"ada"}}`)

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if env.Type != TypeJoinGame {
		t.Fatalf("expected type %q, got %q", TypeJoinGame, env.Type)
	}

	payload, err := DecodePayload[JoinGamePayload](env)
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.GameID != "g1" || payload.UserID != "u1" || payload.Username != "ada" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestDecodePayloadEmptyIsZeroValue(t *testing.T) {
	env := Envelope{Type: TypeReady}
	payload, err := DecodePayload[ReadyPayload](env)
	if err != nil {
		t.Fatalf("decode empty payload: %v", err)
	}
	if payload.IsReady != nil {
		t.Fatalf("expected nil IsReady, got %v", *payload.IsReady)
	}
}

func TestDecodePayloadRejectsWrongShape(t *testing.T) {
	env := Envelope{Type: TypeInput, Payload: json.RawMessage(`"not an object"`)}
	if _, err := DecodePayload[InputPayload](env); err == nil {
		t.Fatal("expected decode error for wrong payload shape")
	}
}

func TestOutboundMessageRoundTrip(t *testing.T) {
	msg := Message{
		Type:    TypeError,
		Payload: ErrorPayload{Code: "bad_payload", Message: "nope"},
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if env.Type != TypeError {
		t.Fatalf("expected error type, got %q", env.Type)
	}
	payload, err := DecodePayload[ErrorPayload](env)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Code != "bad_payload" || payload.Message != "nope" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}
