// Package changefeed defines the change events emitted for every
// mutation of an index and their protobuf wire encoding.
package changefeed

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

type Op uint8

const (
	OpInsert Op = iota + 1
	OpRemove
)

func (o Op) String() string {
	switch o {
	case OpInsert:
		return "INSERT"
	case OpRemove:
		return "REMOVE"
	default:
		return "UNKNOWN"
	}
}

// Event is one mutation. Value is empty for removals.
type Event struct {
	Seq    uint64
	Op     Op
	Key    int64
	Value  []byte
	Time   int64
	Source string
}

// field numbers
const (
	fieldSeq    protowire.Number = 1
	fieldOp     protowire.Number = 2
	fieldKey    protowire.Number = 3
	fieldValue  protowire.Number = 4
	fieldTime   protowire.Number = 5
	fieldSource protowire.Number = 6
)

var ErrBadEvent = errors.New("changefeed: malformed event")

// Marshal encodes e as a protobuf message:
//
//	message Event {
//	  uint64 seq = 1;
//	  uint32 op = 2;
//	  sint64 key = 3;
//	  bytes value = 4;
//	  int64 time = 5;
//	  string source = 6;
//	}
func (e *Event) Marshal() []byte {
	b := make([]byte, 0, 32+len(e.Value)+len(e.Source))
	b = protowire.AppendTag(b, fieldSeq, protowire.VarintType)
	b = protowire.AppendVarint(b, e.Seq)
	b = protowire.AppendTag(b, fieldOp, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(e.Op))
	b = protowire.AppendTag(b, fieldKey, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(e.Key))
	if len(e.Value) > 0 {
		b = protowire.AppendTag(b, fieldValue, protowire.BytesType)
		b = protowire.AppendBytes(b, e.Value)
	}
	b = protowire.AppendTag(b, fieldTime, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(e.Time))
	if e.Source != "" {
		b = protowire.AppendTag(b, fieldSource, protowire.BytesType)
		b = protowire.AppendString(b, e.Source)
	}
	return b
}

// Unmarshal decodes an event produced by Marshal. Unknown fields are
// skipped.
func Unmarshal(b []byte) (*Event, error) {
	e := &Event{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrBadEvent, protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case typ == protowire.VarintType && num != fieldValue && num != fieldSource:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: field %d: %v", ErrBadEvent, num, protowire.ParseError(n))
			}
			b = b[n:]
			switch num {
			case fieldSeq:
				e.Seq = v
			case fieldOp:
				e.Op = Op(v)
			case fieldKey:
				e.Key = protowire.DecodeZigZag(v)
			case fieldTime:
				e.Time = int64(v)
			}
		case typ == protowire.BytesType && (num == fieldValue || num == fieldSource):
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: field %d: %v", ErrBadEvent, num, protowire.ParseError(n))
			}
			b = b[n:]
			if num == fieldValue {
				e.Value = append([]byte(nil), v...)
			} else {
				e.Source = string(v)
			}
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("%w: field %d: %v", ErrBadEvent, num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	if e.Op != OpInsert && e.Op != OpRemove {
		return nil, fmt.Errorf("%w: unknown op %d", ErrBadEvent, e.Op)
	}
	return e, nil
}

// PartitionKey is the Kafka message key for e. Events for the same
// index key land on the same partition.
func (e *Event) PartitionKey() []byte {
	return protowire.AppendVarint(nil, protowire.EncodeZigZag(e.Key))
}
