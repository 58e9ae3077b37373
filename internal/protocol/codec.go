// Package protocol defines the websocket message envelope and encodes it as
// JSON text frames or msgpack binary frames.
package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"

	"zombie-arena/internal/game"
)

// Event names carried in the envelope.
const (
	// client -> server
	EventInput = "input"
	EventPing  = "ping"

	// server -> client
	EventWelcome = "welcome"
	EventState   = "state"
	EventPong    = "pong"
	EventError   = "error"
)

// MaxClientMessageSize bounds inbound frames.
const MaxClientMessageSize = 4096

var (
	ErrUnknownCodec = errors.New("unknown codec")
	ErrUnknownEvent = errors.New("unknown event")
)

// Codec selects the frame encoding of a connection.
type Codec int

const (
	CodecJSON Codec = iota
	CodecMsgpack
)

// ParseCodec maps a query value to a codec. Empty means JSON.
func ParseCodec(s string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return CodecJSON, nil
	case "msgpack":
		return CodecMsgpack, nil
	}
	return CodecJSON, fmt.Errorf("%w: %q", ErrUnknownCodec, s)
}

func (c Codec) String() string {
	if c == CodecMsgpack {
		return "msgpack"
	}
	return "json"
}

// MessageType is the websocket frame type used by the codec.
func (c Codec) MessageType() int {
	if c == CodecMsgpack {
		return websocket.BinaryMessage
	}
	return websocket.TextMessage
}

// Envelope is the outer shape of every message: {"event": ..., "data": ...}.
type Envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// Welcome is sent once after a player joins.
type Welcome struct {
	PlayerID string             `json:"playerId"`
	RoomID   string             `json:"roomId"`
	Settings game.MatchSettings `json:"settings"`
	TickRate int                `json:"tickRate"`
}

// Ping carries a client timestamp that the pong echoes back.
type Ping struct {
	Time int64 `json:"time"`
}

// ErrorMessage reports a rejected client message.
type ErrorMessage struct {
	Message string `json:"message"`
}

// ClientMessage is a decoded client frame. Exactly one payload is set.
type ClientMessage struct {
	Event string
	Input *game.Input
	Ping  *Ping
}

// =============================================================================
// ENCODING
// =============================================================================

// Encode wraps data in an envelope and returns the frame with its websocket
// message type.
func Encode(c Codec, event string, data interface{}) ([]byte, int, error) {
	env := Envelope{Event: event, Data: data}
	var (
		b   []byte
		err error
	)
	switch c {
	case CodecMsgpack:
		b, err = marshalMsgpack(env)
	default:
		b, err = json.Marshal(env)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("encode %s: %w", event, err)
	}
	return b, c.MessageType(), nil
}

// EncodeState encodes a full snapshot.
func EncodeState(c Codec, s *game.WorldState) ([]byte, int, error) {
	return Encode(c, EventState, s)
}

func marshalMsgpack(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func unmarshalMsgpack(b []byte, v interface{}) error {
	dec := msgpack.NewDecoder(bytes.NewReader(b))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}

// =============================================================================
// DECODING
// =============================================================================

type jsonEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type msgpackEnvelope struct {
	Event string             `json:"event"`
	Data  msgpack.RawMessage `json:"data"`
}

// DecodeClientMessage decodes a client frame. JSON objects are recognized by
// their leading brace, anything else is read as msgpack.
func DecodeClientMessage(b []byte) (ClientMessage, error) {
	if len(b) > MaxClientMessageSize {
		return ClientMessage{}, fmt.Errorf("message of %d bytes exceeds %d", len(b), MaxClientMessageSize)
	}
	trimmed := bytes.TrimLeft(b, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var env jsonEnvelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return ClientMessage{}, fmt.Errorf("decode envelope: %w", err)
		}
		return decodePayload(env.Event, env.Data, func(data []byte, v interface{}) error {
			return json.Unmarshal(data, v)
		})
	}

	var env msgpackEnvelope
	if err := unmarshalMsgpack(b, &env); err != nil {
		return ClientMessage{}, fmt.Errorf("decode envelope: %w", err)
	}
	return decodePayload(env.Event, env.Data, unmarshalMsgpack)
}

func decodePayload(event string, data []byte, unmarshal func([]byte, interface{}) error) (ClientMessage, error) {
	msg := ClientMessage{Event: event}
	switch event {
	case EventInput:
		var in game.Input
		if len(data) > 0 {
			if err := unmarshal(data, &in); err != nil {
				return ClientMessage{}, fmt.Errorf("decode input: %w", err)
			}
		}
		msg.Input = &in
	case EventPing:
		var p Ping
		if len(data) > 0 {
			if err := unmarshal(data, &p); err != nil {
				return ClientMessage{}, fmt.Errorf("decode ping: %w", err)
			}
		}
		msg.Ping = &p
	default:
		return ClientMessage{}, fmt.Errorf("%w: %q", ErrUnknownEvent, event)
	}
	return msg, nil
}
