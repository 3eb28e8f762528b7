// Package ledgerv1connect binds the splitledger.v1 services to Connect.
package ledgerv1connect

import (
	"encoding/json"
	"fmt"

	"connectrpc.com/connect"
)

// Codec marshals ledgerv1 messages as JSON. It is registered under the name
// "json", replacing Connect's protobuf-only JSON codec, so both clients and
// handlers exchange application/json bodies.
type Codec struct{}

var _ connect.Codec = Codec{}

// Name implements connect.Codec.
func (Codec) Name() string { return "json" }

// Marshal implements connect.Codec.
func (Codec) Marshal(msg any) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", msg, err)
	}
	return data, nil
}

// Unmarshal implements connect.Codec. An empty body decodes to the zero message.
func (Codec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("unmarshal into %T: %w", msg, err)
	}
	return nil
}

// charsetCodec covers clients that send "application/json; charset=utf-8",
// which Connect otherwise routes to its protobuf JSON codec.
type charsetCodec struct{ Codec }

func (charsetCodec) Name() string { return "json; charset=utf-8" }

func clientOptions(opts []connect.ClientOption) connect.ClientOption {
	return connect.WithClientOptions(append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)...)
}

func handlerOptions(opts []connect.HandlerOption) connect.HandlerOption {
	base := []connect.HandlerOption{connect.WithCodec(Codec{}), connect.WithCodec(charsetCodec{})}
	return connect.WithHandlerOptions(append(base, opts...)...)
}
