package api

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// codecName replaces Connect's protobuf-JSON codec, so the service speaks
// application/json.
const codecName = "json"

// jsonCodec marshals plain Go structs with encoding/json.
type jsonCodec struct{}

var _ connect.Codec = jsonCodec{}

func (jsonCodec) Name() string { return codecName }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}

// WithJSON is the codec option both handlers and clients need.
func WithJSON() connect.Option {
	return connect.WithCodec(jsonCodec{})
}
