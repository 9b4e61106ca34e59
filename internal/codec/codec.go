// Package codec encodes control messages as JSON text and decodes whatever
// the peer sends back.
package codec

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/dkeye/wsprobe/internal/domain"
)

var ErrMalformed = errors.New("malformed payload")

// Encode returns the UTF-8 JSON text of msg.
func Encode(msg domain.ControlMessage) ([]byte, error) {
	b, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode %q: %w", msg.Type, err)
	}
	return b, nil
}

// Marshal encodes an arbitrary reply value.
func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Decode parses raw into a generic structure. Any valid JSON value is
// accepted; no schema is applied.
func Decode(raw []byte) (any, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return v, nil
}

// Envelope extracts the type discriminator from an inbound message.
func Envelope(raw []byte) (domain.ControlMessage, error) {
	var env domain.ControlMessage
	if err := json.Unmarshal(raw, &env); err != nil {
		return domain.ControlMessage{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return env, nil
}

// Unmarshal decodes a typed payload after Envelope picked a handler.
func Unmarshal(raw []byte, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}
