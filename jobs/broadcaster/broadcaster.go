package broadcaster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"rbindex/domain/changefeed"
	"rbindex/infra/outbox"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var publishedCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "rbindex_broadcaster_published_total",
	Help: "Change events handed to the publisher, by result",
}, []string{"result"})

var truncatedCounter = promauto.NewCounter(prometheus.CounterOpts{
	Name: "rbindex_broadcaster_truncated_total",
	Help: "Acknowledged outbox records deleted",
})

// Publisher delivers one encoded change event.
type Publisher interface {
	Publish(ctx context.Context, key, value []byte) error
	Close() error
}

type Config struct {
	Interval time.Duration
	// MaxRetries caps redelivery of FAILED records. Records past the cap
	// stay in the outbox for an operator to inspect.
	MaxRetries uint32
	// SentTimeout is how long a SENT record waits before it is
	// published again, e.g. after a crash between send and ack.
	SentTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Interval:    250 * time.Millisecond,
		MaxRetries:  5,
		SentTimeout: 30 * time.Second,
	}
}

type Broadcaster struct {
	outbox    *outbox.Outbox
	publisher Publisher
	cfg       Config
	log       *slog.Logger
}

// ------------------------------------------------
// CONSTRUCTOR
// ------------------------------------------------

func New(ob *outbox.Outbox, pub Publisher, cfg Config, log *slog.Logger) *Broadcaster {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	if cfg.SentTimeout <= 0 {
		cfg.SentTimeout = DefaultConfig().SentTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	return &Broadcaster{
		outbox:    ob,
		publisher: pub,
		cfg:       cfg,
		log:       log.With("component", "broadcaster"),
	}
}

// ------------------------------------------------
// LOOP
// ------------------------------------------------

// Run flushes the outbox every interval until ctx is done.
func (b *Broadcaster) Run(ctx context.Context) {
	b.log.Info("started", "interval", b.cfg.Interval)

	ticker := time.NewTicker(b.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.log.Info("stopped")
			return
		case <-ticker.C:
			if err := b.Flush(ctx); err != nil && !errors.Is(err, context.Canceled) {
				b.log.Error("flush failed", "err", err)
			}
		}
	}
}

// ------------------------------------------------
// FLUSH
// ------------------------------------------------

// errStopScan ends an outbox scan early without failing the flush.
var errStopScan = errors.New("stop scan")

// Flush walks the outbox in sequence order and delivers NEW records,
// FAILED records under the retry cap and SENT records whose attempt is
// older than SentTimeout. It stops at the first failed publish so events
// for a key never overtake each other, then deletes what was
// acknowledged.
func (b *Broadcaster) Flush(ctx context.Context) error {
	now := time.Now()
	var pending []outbox.Record
	err := b.outbox.Scan(func(rec outbox.Record) error {
		switch rec.State {
		case outbox.StateAcked:
			return nil
		case outbox.StateFailed:
			if rec.Retries >= b.cfg.MaxRetries {
				return nil
			}
		case outbox.StateSent:
			if now.Sub(time.Unix(0, rec.LastAttempt)) < b.cfg.SentTimeout {
				// an attempt may still be in flight; later records wait
				return errStopScan
			}
		}
		pending = append(pending, rec)
		return nil
	})
	if err != nil && !errors.Is(err, errStopScan) {
		return fmt.Errorf("scan: %w", err)
	}

	var acked uint64
	for _, rec := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		ok, err := b.deliver(ctx, rec)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		acked = rec.Seq
	}

	if acked == 0 {
		return nil
	}
	n, err := b.outbox.TruncateAckedUpTo(acked)
	if err != nil {
		return fmt.Errorf("truncate: %w", err)
	}
	truncatedCounter.Add(float64(n))
	return nil
}

// deliver publishes one record. A publish failure is recorded on the
// record and is not an error of the flush.
func (b *Broadcaster) deliver(ctx context.Context, rec outbox.Record) (bool, error) {
	// 1. mark SENT before publishing so a crash shows the attempt
	if err := b.outbox.MarkSent(rec.Seq); err != nil {
		return false, err
	}

	key := partitionKey(rec)
	if err := b.publisher.Publish(ctx, key, rec.Payload); err != nil {
		publishedCounter.WithLabelValues("error").Inc()
		b.log.Warn("publish failed", "seq", rec.Seq, "retries", rec.Retries, "err", err)
		return false, b.outbox.MarkFailed(rec.Seq)
	}

	// 2. mark ACKED
	publishedCounter.WithLabelValues("ok").Inc()
	return true, b.outbox.MarkAcked(rec.Seq)
}

func partitionKey(rec outbox.Record) []byte {
	ev, err := changefeed.Unmarshal(rec.Payload)
	if err != nil {
		return nil
	}
	return ev.PartitionKey()
}

// ------------------------------------------------
// SHUTDOWN
// ------------------------------------------------

func (b *Broadcaster) Close() error {
	return b.publisher.Close()
}
