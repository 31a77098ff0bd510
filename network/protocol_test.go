package network

import (
	"errors"
	"testing"
)

func TestDecodeEnvelope(t *testing.T) {
	env, err := DecodeEnvelope([]byte(`{"type":"DRAW_CARD","payload":{"room_code":"AB2C3D","identity":"alice"}}`))
	if err != nil {
		t.Fatalf("DecodeEnvelope failed: %v", err)
	}
	if env.Type != MsgDrawCard {
		t.Errorf("Expected type DRAW_CARD, got %s", env.Type)
	}
	if len(env.Payload) == 0 {
		t.Error("Expected raw payload to be retained")
	}
}

func TestDecodeEnvelope_Malformed(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"not json", `{{{`},
		{"missing type", `{"payload":{}}`},
		{"empty object", `{}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeEnvelope([]byte(tc.data))
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("Expected a ValidationError, got %v", err)
			}
		})
	}
}

func TestDecodePayload_PlayCard(t *testing.T) {
	env, err := DecodeEnvelope([]byte(`{"type":"PLAY_CARD","payload":{"room_code":"AB2C3D","identity":"alice","card_id":0,"chosen_color":"red"}}`))
	if err != nil {
		t.Fatalf("DecodeEnvelope failed: %v", err)
	}

	var p PlayCardPayload
	if err := DecodePayload(env, &p); err != nil {
		t.Fatalf("DecodePayload failed: %v", err)
	}
	// card_id 0 is a real card, distinct from an absent field.
	if p.CardID == nil || *p.CardID != 0 {
		t.Errorf("Expected card id 0, got %v", p.CardID)
	}
	if p.ChosenColor != "red" {
		t.Errorf("Expected chosen color red, got %q", p.ChosenColor)
	}
}

func TestDecodePayload_MissingFields(t *testing.T) {
	cases := []struct {
		name    string
		typ     string
		payload string
		dst     interface{ Validate() error }
	}{
		{"play without card_id", MsgPlayCard, `{"room_code":"AB2C3D","identity":"alice"}`, &PlayCardPayload{}},
		{"join without code", MsgJoinRoom, `{"identity":"alice"}`, &JoinRoomPayload{}},
		{"join without identity", MsgJoinRoom, `{"room_code":"AB2C3D"}`, &JoinRoomPayload{}},
		{"create without identity", MsgCreateRoom, `{"game_kind":"matching"}`, &CreateRoomPayload{}},
		{"chat without text", MsgSendMessage, `{"room_code":"AB2C3D","identity":"alice"}`, &SendMessagePayload{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := &Envelope{Type: tc.typ, Payload: []byte(tc.payload)}
			err := DecodePayload(env, tc.dst)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("Expected a ValidationError, got %v", err)
			}
		})
	}
}

func TestDecodePayload_EmptyAndMalformed(t *testing.T) {
	env := &Envelope{Type: MsgDrawCard}
	var p DrawCardPayload
	var verr *ValidationError
	if err := DecodePayload(env, &p); !errors.As(err, &verr) {
		t.Errorf("Expected a ValidationError for missing payload, got %v", err)
	}

	env = &Envelope{Type: MsgDrawCard, Payload: []byte(`"nope"`)}
	if err := DecodePayload(env, &p); !errors.As(err, &verr) {
		t.Errorf("Expected a ValidationError for malformed payload, got %v", err)
	}
}

func TestNewError(t *testing.T) {
	msg := NewError("not your turn")
	if msg.Type != MsgError {
		t.Errorf("Expected type ERROR, got %s", msg.Type)
	}
	payload, ok := msg.Payload.(ErrorPayload)
	if !ok || payload.Message != "not your turn" {
		t.Errorf("Unexpected payload: %+v", msg.Payload)
	}
}
