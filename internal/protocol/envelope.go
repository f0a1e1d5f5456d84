// Package protocol implements the park message codec: the JSON envelope
// shared by both directions and the closed sets of inbound events and
// outbound commands carried inside it.
package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrMalformed is returned when a frame cannot be parsed as an envelope or a
// known tag carries a payload that does not match its shape.
var ErrMalformed = errors.New("protocol: malformed message")

// DefaultClientType is what the park server expects from its UI clients.
const DefaultClientType = "REACT_UI"

// Source identifies the sender of an outbound envelope.
type Source struct {
	ClientType string `json:"ClientType"`
}

// Envelope is the outer frame in both directions.
// Data stays raw until the tag is known.
type Envelope struct {
	EventType      string          `json:"EventType"`
	EventTimestamp int64           `json:"EventTimestamp"`
	Source         Source          `json:"Source"`
	Data           json.RawMessage `json:"Data"`
}

// Timestamp returns EventTimestamp as a time.
func (e Envelope) Timestamp() time.Time {
	return time.UnixMilli(e.EventTimestamp)
}

// wireEnvelope accepts what the server actually sends: the timestamp may
// be a number or a string and Source may be an object or a plain string.
type wireEnvelope struct {
	EventType      string          `json:"EventType"`
	EventTimestamp json.RawMessage `json:"EventTimestamp"`
	Source         json.RawMessage `json:"Source"`
	Data           json.RawMessage `json:"Data"`
}

// parseEnvelope decodes a frame leniently and unwraps Data when it was sent
// as a JSON string holding JSON.
func parseEnvelope(raw []byte) (Envelope, error) {
	var w wireEnvelope
	if err := json.Unmarshal(raw, &w); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if w.EventType == "" {
		return Envelope{}, fmt.Errorf("%w: missing EventType", ErrMalformed)
	}

	env := Envelope{
		EventType:      w.EventType,
		EventTimestamp: parseMillis(w.EventTimestamp),
		Source:         parseSource(w.Source),
		Data:           unwrapData(w.Data),
	}
	return env, nil
}

func parseMillis(raw json.RawMessage) int64 {
	if len(raw) == 0 {
		return 0
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return int64(n)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return int64(v)
		}
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t.UnixMilli()
		}
	}
	return 0
}

func parseSource(raw json.RawMessage) Source {
	if len(raw) == 0 {
		return Source{}
	}
	var src Source
	if err := json.Unmarshal(raw, &src); err == nil {
		return src
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return Source{ClientType: s}
	}
	return Source{}
}

// unwrapData turns `"{\"a\":1}"` into `{"a":1}`. Strings that do not hold
// an object or array are left alone, rideEnded carries a bare zone id.
func unwrapData(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return trimmed
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return trimmed
	}
	inner := bytes.TrimSpace([]byte(s))
	if len(inner) > 0 && (inner[0] == '{' || inner[0] == '[') && json.Valid(inner) {
		return inner
	}
	return trimmed
}
