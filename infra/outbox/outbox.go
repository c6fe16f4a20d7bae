// Package outbox keeps change events in pebble until the broadcaster
// has delivered them. It stores events, never index state.
package outbox

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
)

// -------------------- State --------------------

type State uint8

const (
	StateNew State = iota
	StateSent
	StateAcked
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateSent:
		return "SENT"
	case StateAcked:
		return "ACKED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// -------------------- Record --------------------

type Record struct {
	Seq         uint64
	State       State
	Retries     uint32
	LastAttempt int64
	Payload     []byte
}

var (
	ErrCorruptRecord = errors.New("outbox: corrupt record")
	ErrNotFound      = errors.New("outbox: record not found")
)

const headerLen = 1 + 4 + 8

// binary encoding: [state:1][retries:4][lastAttempt:8][payload]
func encodeRecord(r Record) []byte {
	buf := make([]byte, headerLen+len(r.Payload))
	buf[0] = byte(r.State)
	binary.BigEndian.PutUint32(buf[1:5], r.Retries)
	binary.BigEndian.PutUint64(buf[5:13], uint64(r.LastAttempt))
	copy(buf[headerLen:], r.Payload)
	return buf
}

func decodeRecord(seq uint64, b []byte) (Record, error) {
	if len(b) < headerLen {
		return Record{}, fmt.Errorf("%w: seq %d has %d bytes", ErrCorruptRecord, seq, len(b))
	}
	return Record{
		Seq:         seq,
		State:       State(b[0]),
		Retries:     binary.BigEndian.Uint32(b[1:5]),
		LastAttempt: int64(binary.BigEndian.Uint64(b[5:13])),
		Payload:     append([]byte(nil), b[headerLen:]...),
	}, nil
}

// -------------------- Outbox --------------------

type Config struct {
	Dir string
	// FS overrides the filesystem, e.g. vfs.NewMem() in tests.
	FS vfs.FS
}

type Outbox struct {
	// mu orders Put calls against the high-water mark.
	mu sync.Mutex
	db *pebble.DB
}

func Open(cfg Config) (*Outbox, error) {
	opts := &pebble.Options{}
	if cfg.FS != nil {
		opts.FS = cfg.FS
	}
	db, err := pebble.Open(cfg.Dir, opts)
	if err != nil {
		return nil, fmt.Errorf("outbox: open %s: %w", cfg.Dir, err)
	}
	return &Outbox{db: db}, nil
}

func (o *Outbox) Close() error {
	return o.db.Close()
}

// -------------------- API --------------------

// Put stores a new pending event and raises the sequence high-water
// mark, which survives truncation.
func (o *Outbox) Put(seq uint64, payload []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	hwm, err := o.highWater()
	if err != nil {
		return err
	}

	batch := o.db.NewBatch()
	defer batch.Close()

	rec := Record{Seq: seq, State: StateNew, Payload: payload}
	if err := batch.Set(keyFor(seq), encodeRecord(rec), nil); err != nil {
		return err
	}
	if seq > hwm {
		if err := batch.Set([]byte(lastSeqKey), binary.BigEndian.AppendUint64(nil, seq), nil); err != nil {
			return err
		}
	}
	return batch.Commit(pebble.Sync)
}

func (o *Outbox) Get(seq uint64) (Record, error) {
	val, closer, err := o.db.Get(keyFor(seq))
	if errors.Is(err, pebble.ErrNotFound) {
		return Record{}, fmt.Errorf("%w: seq %d", ErrNotFound, seq)
	}
	if err != nil {
		return Record{}, err
	}
	defer closer.Close()

	return decodeRecord(seq, val)
}

// MarkSent records a delivery attempt.
func (o *Outbox) MarkSent(seq uint64) error {
	return o.update(seq, func(r *Record) {
		r.State = StateSent
		r.LastAttempt = time.Now().UnixNano()
	})
}

func (o *Outbox) MarkAcked(seq uint64) error {
	return o.update(seq, func(r *Record) {
		r.State = StateAcked
	})
}

// MarkFailed records a failed attempt and bumps the retry count.
func (o *Outbox) MarkFailed(seq uint64) error {
	return o.update(seq, func(r *Record) {
		r.State = StateFailed
		r.Retries++
		r.LastAttempt = time.Now().UnixNano()
	})
}

func (o *Outbox) Delete(seq uint64) error {
	return o.db.Delete(keyFor(seq), pebble.Sync)
}

func (o *Outbox) update(seq uint64, fn func(*Record)) error {
	rec, err := o.Get(seq)
	if err != nil {
		return err
	}
	fn(&rec)
	return o.db.Set(keyFor(seq), encodeRecord(rec), pebble.Sync)
}

// -------------------- Scan --------------------

// ScanByState calls fn for every record in state, in sequence order.
func (o *Outbox) ScanByState(state State, fn func(Record) error) error {
	return o.scan(func(s State) bool { return s == state }, fn)
}

// Scan calls fn for every record in sequence order, whatever its state.
func (o *Outbox) Scan(fn func(Record) error) error {
	return o.scan(func(State) bool { return true }, fn)
}

func (o *Outbox) scan(match func(State) bool, fn func(Record) error) error {
	iter, err := o.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(keyPrefix),
		UpperBound: []byte(keyPrefix + "~"),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		val := iter.Value()
		if len(val) == 0 || !match(State(val[0])) {
			continue
		}

		seq, err := parseKey(iter.Key())
		if err != nil {
			return err
		}
		rec, err := decodeRecord(seq, val)
		if err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return iter.Error()
}

// LastSeq returns the highest sequence ever stored, including records
// already truncated, or 0 for a fresh outbox.
func (o *Outbox) LastSeq() (uint64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	hwm, err := o.highWater()
	if err != nil {
		return 0, err
	}
	last, err := o.lastRecordSeq()
	if err != nil {
		return 0, err
	}
	return max(hwm, last), nil
}

// highWater reads the persisted mark. Must hold o.mu.
func (o *Outbox) highWater() (uint64, error) {
	val, closer, err := o.db.Get([]byte(lastSeqKey))
	if errors.Is(err, pebble.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	defer closer.Close()

	if len(val) != 8 {
		return 0, fmt.Errorf("%w: %s has %d bytes", ErrCorruptRecord, lastSeqKey, len(val))
	}
	return binary.BigEndian.Uint64(val), nil
}

func (o *Outbox) lastRecordSeq() (uint64, error) {
	iter, err := o.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(keyPrefix),
		UpperBound: []byte(keyPrefix + "~"),
	})
	if err != nil {
		return 0, err
	}
	defer iter.Close()

	if !iter.Last() {
		return 0, iter.Error()
	}
	return parseKey(iter.Key())
}

// TruncateAckedUpTo deletes acknowledged records with seq <= upTo and
// returns how many were removed.
func (o *Outbox) TruncateAckedUpTo(upTo uint64) (int, error) {
	iter, err := o.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(keyPrefix),
		UpperBound: keyFor(upTo + 1),
	})
	if err != nil {
		return 0, err
	}
	defer iter.Close()

	batch := o.db.NewBatch()
	defer batch.Close()

	n := 0
	for iter.First(); iter.Valid(); iter.Next() {
		val := iter.Value()
		if len(val) == 0 || State(val[0]) != StateAcked {
			continue
		}
		if err := batch.Delete(iter.Key(), nil); err != nil {
			return 0, err
		}
		n++
	}
	if err := iter.Error(); err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return 0, err
	}
	return n, nil
}

// -------------------- Helpers --------------------

const (
	keyPrefix  = "event/"
	lastSeqKey = "meta/last_seq"
)

func keyFor(seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", keyPrefix, seq))
}

func parseKey(b []byte) (uint64, error) {
	var seq uint64
	_, err := fmt.Sscanf(string(bytes.TrimPrefix(b, []byte(keyPrefix))), "%d", &seq)
	if err != nil {
		return 0, fmt.Errorf("%w: key %q: %v", ErrCorruptRecord, b, err)
	}
	return seq, nil
}
