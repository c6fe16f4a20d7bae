package grpcserver

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
)

// Messages are encoded as protobuf by hand:
//
//	message InsertRequest  { sint64 key = 1; bytes value = 2; }
//	message InsertResponse { uint64 seq = 1; }
//	message KeyRequest     { sint64 key = 1; }
//	message GetResponse    { bytes value = 1; bool found = 2; }
//	message RemoveResponse { uint64 seq = 1; }
//	message BoundResponse  { sint64 key = 1; bytes value = 2; bool found = 3; }
//	message StatsRequest   {}
//	message StatsResponse  {
//	  int64 keys = 1; int64 inserted = 2; sint64 low = 3; sint64 high = 4;
//	  sint64 root_key = 5; bool empty = 6; bool balanced = 7;
//	  bool color_ok = 8; bool links_ok = 9; uint64 last_event = 10;
//	}

type InsertRequest struct {
	Key   int64
	Value []byte
}

type InsertResponse struct {
	Seq uint64
}

type KeyRequest struct {
	Key int64
}

type GetResponse struct {
	Value []byte
	Found bool
}

type RemoveResponse struct {
	Seq uint64
}

// BoundResponse answers Glb and Lub. On a miss Found is false and Key is
// the index bound.
type BoundResponse struct {
	Key   int64
	Value []byte
	Found bool
}

type StatsRequest struct{}

type StatsResponse struct {
	Keys      int
	Inserted  int
	Low       int64
	High      int64
	RootKey   int64
	Empty     bool
	Balanced  bool
	ColorOK   bool
	LinksOK   bool
	LastEvent uint64
}

var ErrBadMessage = errors.New("grpcserver: malformed message")

// -------------------- Encoding --------------------

func (m *InsertRequest) Marshal() []byte {
	b := appendSint(nil, 1, m.Key)
	return appendBytes(b, 2, m.Value)
}

func (m *InsertRequest) Unmarshal(b []byte) error {
	return walk(b, func(num protowire.Number, v uint64, bs []byte) {
		switch num {
		case 1:
			m.Key = protowire.DecodeZigZag(v)
		case 2:
			m.Value = append([]byte(nil), bs...)
		}
	})
}

func (m *InsertResponse) Marshal() []byte {
	return appendUint(nil, 1, m.Seq)
}

func (m *InsertResponse) Unmarshal(b []byte) error {
	return walk(b, func(num protowire.Number, v uint64, _ []byte) {
		if num == 1 {
			m.Seq = v
		}
	})
}

func (m *KeyRequest) Marshal() []byte {
	return appendSint(nil, 1, m.Key)
}

func (m *KeyRequest) Unmarshal(b []byte) error {
	return walk(b, func(num protowire.Number, v uint64, _ []byte) {
		if num == 1 {
			m.Key = protowire.DecodeZigZag(v)
		}
	})
}

func (m *GetResponse) Marshal() []byte {
	b := appendBytes(nil, 1, m.Value)
	return appendBool(b, 2, m.Found)
}

func (m *GetResponse) Unmarshal(b []byte) error {
	return walk(b, func(num protowire.Number, v uint64, bs []byte) {
		switch num {
		case 1:
			m.Value = append([]byte(nil), bs...)
		case 2:
			m.Found = v != 0
		}
	})
}

func (m *RemoveResponse) Marshal() []byte {
	return appendUint(nil, 1, m.Seq)
}

func (m *RemoveResponse) Unmarshal(b []byte) error {
	return walk(b, func(num protowire.Number, v uint64, _ []byte) {
		if num == 1 {
			m.Seq = v
		}
	})
}

func (m *BoundResponse) Marshal() []byte {
	b := appendSint(nil, 1, m.Key)
	b = appendBytes(b, 2, m.Value)
	return appendBool(b, 3, m.Found)
}

func (m *BoundResponse) Unmarshal(b []byte) error {
	return walk(b, func(num protowire.Number, v uint64, bs []byte) {
		switch num {
		case 1:
			m.Key = protowire.DecodeZigZag(v)
		case 2:
			m.Value = append([]byte(nil), bs...)
		case 3:
			m.Found = v != 0
		}
	})
}

func (m *StatsRequest) Marshal() []byte { return nil }

func (m *StatsRequest) Unmarshal(b []byte) error {
	return walk(b, func(protowire.Number, uint64, []byte) {})
}

func (m *StatsResponse) Marshal() []byte {
	b := appendUint(nil, 1, uint64(m.Keys))
	b = appendUint(b, 2, uint64(m.Inserted))
	b = appendSint(b, 3, m.Low)
	b = appendSint(b, 4, m.High)
	b = appendSint(b, 5, m.RootKey)
	b = appendBool(b, 6, m.Empty)
	b = appendBool(b, 7, m.Balanced)
	b = appendBool(b, 8, m.ColorOK)
	b = appendBool(b, 9, m.LinksOK)
	return appendUint(b, 10, m.LastEvent)
}

func (m *StatsResponse) Unmarshal(b []byte) error {
	return walk(b, func(num protowire.Number, v uint64, _ []byte) {
		switch num {
		case 1:
			m.Keys = int(v)
		case 2:
			m.Inserted = int(v)
		case 3:
			m.Low = protowire.DecodeZigZag(v)
		case 4:
			m.High = protowire.DecodeZigZag(v)
		case 5:
			m.RootKey = protowire.DecodeZigZag(v)
		case 6:
			m.Empty = v != 0
		case 7:
			m.Balanced = v != 0
		case 8:
			m.ColorOK = v != 0
		case 9:
			m.LinksOK = v != 0
		case 10:
			m.LastEvent = v
		}
	})
}

// Zero values are omitted, as proto3 does.

func appendUint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendSint(b []byte, num protowire.Number, v int64) []byte {
	return appendUint(b, num, protowire.EncodeZigZag(v))
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	return appendUint(b, num, protowire.EncodeBool(v))
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

// walk calls fn for every varint and length-delimited field of b and
// skips the rest. bs aliases b.
func walk(b []byte, fn func(num protowire.Number, v uint64, bs []byte)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrBadMessage, protowire.ParseError(n))
		}
		b = b[n:]

		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return fmt.Errorf("%w: field %d: %v", ErrBadMessage, num, protowire.ParseError(n))
			}
			b = b[n:]
			fn(num, v, nil)
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return fmt.Errorf("%w: field %d: %v", ErrBadMessage, num, protowire.ParseError(n))
			}
			b = b[n:]
			fn(num, 0, v)
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return fmt.Errorf("%w: field %d: %v", ErrBadMessage, num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return nil
}

// -------------------- Codec --------------------

const codecName = "proto"

type wireMessage interface {
	Marshal() []byte
	Unmarshal([]byte) error
}

// protoCodec replaces grpc's default codec. Index messages use their
// hand-written encoders; generated messages still go through proto.
type protoCodec struct{}

func (protoCodec) Marshal(v any) ([]byte, error) {
	switch m := v.(type) {
	case wireMessage:
		return m.Marshal(), nil
	case proto.Message:
		return proto.Marshal(m)
	default:
		return nil, fmt.Errorf("%w: cannot marshal %T", ErrBadMessage, v)
	}
}

func (protoCodec) Unmarshal(data []byte, v any) error {
	switch m := v.(type) {
	case wireMessage:
		return m.Unmarshal(data)
	case proto.Message:
		return proto.Unmarshal(data, m)
	default:
		return fmt.Errorf("%w: cannot unmarshal into %T", ErrBadMessage, v)
	}
}

func (protoCodec) Name() string { return codecName }

func init() {
	encoding.RegisterCodec(protoCodec{})
}
