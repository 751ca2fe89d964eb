// Package codec implements the transaction wire codec (spec.md §4.6,
// component C6): decoding raw bytes into (body, auth-info, signatures)
// while preserving body_bytes/auth_info_bytes verbatim for later
// signature verification, plus the message registry DeliverTx/CheckTx use
// to turn an Any payload into a typed, validated Msg.
package codec

import (
	"fmt"

	"github.com/gogo/protobuf/proto"
)

// Any is a type-tagged opaque value, the wire shape spec.md's messages
// and extension options travel in: a type URL plus the raw encoded
// payload for that type.
type Any struct {
	TypeURL string
	Value   []byte
}

func encodeAny(buf *proto.Buffer, a Any) error {
	if err := buf.EncodeRawBytes([]byte(a.TypeURL)); err != nil {
		return err
	}
	return buf.EncodeRawBytes(a.Value)
}

func decodeAny(buf *proto.Buffer) (Any, error) {
	typeURL, err := buf.DecodeRawBytes(true)
	if err != nil {
		return Any{}, fmt.Errorf("codec: decode any.type_url: %w", err)
	}
	value, err := buf.DecodeRawBytes(true)
	if err != nil {
		return Any{}, fmt.Errorf("codec: decode any.value: %w", err)
	}
	return Any{TypeURL: string(typeURL), Value: value}, nil
}
