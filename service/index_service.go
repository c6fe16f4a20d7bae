package service

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"rbindex/domain/changefeed"
	"rbindex/domain/rbtree"
	"rbindex/infra/sequence"

	"github.com/gofrs/uuid"
)

var (
	// ErrDuplicate is returned when inserting a key that is already
	// present. The tree itself does not detect duplicates.
	ErrDuplicate = errors.New("service: duplicate key")
	ErrNotFound  = errors.New("service: key not found")
)

// EventLog stores encoded change events until they are delivered.
// *outbox.Outbox is the production implementation.
type EventLog interface {
	Put(seq uint64, payload []byte) error
	LastSeq() (uint64, error)
}

type Config struct {
	Low  int64
	High int64

	// Outbox receives a change event for every mutation. Nil disables
	// the change feed.
	Outbox EventLog

	// Source tags emitted events. A random ID is used when empty.
	Source string

	Log *slog.Logger
}

func DefaultConfig() Config {
	return Config{
		Low:  math.MinInt64,
		High: math.MaxInt64,
	}
}

// Entry is a key/value pair copied out of the index.
type Entry struct {
	Key   int64
	Value []byte
}

type Stats struct {
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

// IndexService is the only write entry point into the index. Every
// method takes the service lock, so the tree sees one caller at a time.
type IndexService struct {
	mu   sync.Mutex
	tree *rbtree.Tree[int64, []byte]
	keys int
	// unbalanced is set once a removal breaks the tree's invariants.
	unbalanced bool

	outbox EventLog
	seq    *sequence.Sequencer
	source string
	log    *slog.Logger
}

// NewIndexService builds an empty index. With an outbox configured the
// sequencer resumes after the last stored event.
func NewIndexService(cfg Config) (*IndexService, error) {
	if cfg.Low >= cfg.High {
		return nil, fmt.Errorf("service: low bound %d must be below high bound %d", cfg.Low, cfg.High)
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	if cfg.Source == "" {
		id, err := uuid.NewV4()
		if err != nil {
			return nil, fmt.Errorf("service: source id: %w", err)
		}
		cfg.Source = id.String()
	}

	var last uint64
	if cfg.Outbox != nil {
		var err error
		last, err = cfg.Outbox.LastSeq()
		if err != nil {
			return nil, fmt.Errorf("service: resume sequence: %w", err)
		}
	}

	s := &IndexService{
		tree:   rbtree.New[int64, []byte](cfg.Low, cfg.High, nil, rbtree.Ordered[int64]()),
		outbox: cfg.Outbox,
		seq:    sequence.New(last),
		source: cfg.Source,
		log:    cfg.Log.With("component", "index"),
	}
	s.log.Info("index ready", "low", cfg.Low, "high", cfg.High, "source", cfg.Source, "resume_seq", last)
	return s, nil
}

//
// ──────────────────────────────────────────────────────────
// Commands
// ──────────────────────────────────────────────────────────
//

// Insert stores value under key. It returns the change-event sequence,
// or 0 when no outbox is configured.
func (s *IndexService) Insert(key int64, value []byte) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok, err := s.exact(key); err != nil {
		return 0, s.fail("insert", err)
	} else if ok {
		return 0, s.fail("insert", fmt.Errorf("%w: %d", ErrDuplicate, key))
	}

	// nil is the tree's miss value, so stored values are never nil.
	stored := append([]byte{}, value...)

	// Write the event first so a failed write leaves the index unchanged.
	seq, err := s.emit(changefeed.OpInsert, key, stored)
	if err != nil {
		return 0, s.fail("insert", err)
	}
	if _, err := s.tree.Insert(key, stored); err != nil {
		s.log.Error("insert after event write failed", "key", key, "seq", seq, "err", err)
		return 0, s.fail("insert", err)
	}
	s.keys++
	keysGauge.Set(float64(s.keys))
	if s.unbalanced {
		s.checkBalance()
	}

	opsCounter.WithLabelValues("insert", "ok").Inc()
	s.log.Debug("inserted", "key", key, "seq", seq)
	return seq, nil
}

// Remove splices key out of the index. The tree is not rebalanced, so
// the invariants reported by Stats may no longer hold afterwards.
func (s *IndexService) Remove(key int64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok, err := s.exact(key); err != nil {
		return 0, s.fail("remove", err)
	} else if !ok {
		return 0, s.fail("remove", fmt.Errorf("%w: %d", ErrNotFound, key))
	}

	seq, err := s.emit(changefeed.OpRemove, key, nil)
	if err != nil {
		return 0, s.fail("remove", err)
	}
	if err := s.tree.Remove(key); err != nil {
		s.log.Error("remove after event write failed", "key", key, "seq", seq, "err", err)
		return 0, s.fail("remove", err)
	}
	s.keys--
	keysGauge.Set(float64(s.keys))
	s.checkBalance()

	opsCounter.WithLabelValues("remove", "ok").Inc()
	s.log.Debug("removed", "key", key, "seq", seq)
	return seq, nil
}

//
// ──────────────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────────────
//

// Get returns a copy of the value stored under key.
func (s *IndexService) Get(key int64) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.tree.Search(key)
	if err != nil {
		return nil, false, s.fail("get", err)
	}
	opsCounter.WithLabelValues("get", "ok").Inc()
	if v == nil {
		return nil, false, nil
	}
	return append([]byte{}, v...), true, nil
}

// Glb returns the entry with the greatest key <= key. When nothing
// qualifies ok is false and the entry carries the low bound.
func (s *IndexService) Glb(key int64) (Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok, err := s.tree.Glb(key)
	if err != nil {
		return Entry{}, false, s.fail("glb", err)
	}
	opsCounter.WithLabelValues("glb", "ok").Inc()
	return entryOf(n), ok, nil
}

// Lub returns the entry with the least key >= key. When nothing
// qualifies ok is false and the entry carries the high bound.
func (s *IndexService) Lub(key int64) (Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok, err := s.tree.Lub(key)
	if err != nil {
		return Entry{}, false, s.fail("lub", err)
	}
	opsCounter.WithLabelValues("lub", "ok").Inc()
	return entryOf(n), ok, nil
}

func (s *IndexService) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checkBalance()

	high, _ := s.tree.High()
	st := Stats{
		Keys:      s.keys,
		Inserted:  s.tree.N(),
		Low:       s.tree.Low(),
		High:      high,
		Empty:     s.tree.Empty(),
		Balanced:  s.tree.HeightInvariant(),
		ColorOK:   s.tree.ColorInvariant(),
		LinksOK:   s.tree.LinkInvariant(),
		LastEvent: s.seq.Current(),
	}
	if r := s.tree.Root(); r != nil {
		st.RootKey = r.Key()
	}
	return st
}

//
// ──────────────────────────────────────────────────────────
// Internals
// ──────────────────────────────────────────────────────────
//

// exact reports whether key is present. Must hold s.mu.
func (s *IndexService) exact(key int64) (*rbtree.Node[int64, []byte], bool, error) {
	n, ok, err := s.tree.Glb(key)
	if err != nil || !ok {
		return nil, false, err
	}
	return n, n.Key() == key, nil
}

// emit writes a change event to the outbox. Must hold s.mu.
func (s *IndexService) emit(op changefeed.Op, key int64, value []byte) (uint64, error) {
	if s.outbox == nil {
		return 0, nil
	}
	ev := &changefeed.Event{
		Seq:    s.seq.Next(),
		Op:     op,
		Key:    key,
		Value:  value,
		Time:   time.Now().UnixNano(),
		Source: s.source,
	}
	if err := s.outbox.Put(ev.Seq, ev.Marshal()); err != nil {
		// hand the number out again; nothing was published under it
		s.seq.Reset(ev.Seq - 1)
		return 0, fmt.Errorf("service: outbox seq %d: %w", ev.Seq, err)
	}
	return ev.Seq, nil
}

// checkBalance refreshes the unbalanced flag and gauge. Must hold s.mu.
func (s *IndexService) checkBalance() {
	balanced := s.tree.HeightInvariant() && s.tree.ColorInvariant()
	if balanced {
		unbalancedGauge.Set(0)
	} else {
		unbalancedGauge.Set(1)
		if !s.unbalanced {
			s.log.Warn("tree unbalanced", "keys", s.keys)
		}
	}
	s.unbalanced = !balanced
}

func (s *IndexService) fail(op string, err error) error {
	result := "error"
	switch {
	case errors.Is(err, rbtree.ErrOutOfBounds):
		result = "out_of_bounds"
	case errors.Is(err, ErrDuplicate):
		result = "duplicate"
	case errors.Is(err, ErrNotFound):
		result = "not_found"
	}
	opsCounter.WithLabelValues(op, result).Inc()
	return err
}

func entryOf(n *rbtree.Node[int64, []byte]) Entry {
	return Entry{Key: n.Key(), Value: append([]byte(nil), n.Value()...)}
}
