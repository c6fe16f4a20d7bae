package main

import (
	"log"
	"log/slog"
	"math"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.App{
		Name:  "rbindex",
		Usage: "ordered key/value index served over gRPC",
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "log verbosity level (eg: warn, info, debug)",
			Value:   "info",
			EnvVars: []string{"RBINDEX_LOG_LEVEL", "LOG_LEVEL"},
		},
		&cli.StringFlag{
			Name:    "log-format",
			Usage:   "log output format: text or json",
			Value:   "text",
			EnvVars: []string{"RBINDEX_LOG_FORMAT"},
		},
	}

	clientFlags := []cli.Flag{
		&cli.StringFlag{
			Name:    "addr",
			Usage:   "address of a running rbindex server",
			Value:   "localhost:50051",
			EnvVars: []string{"RBINDEX_ADDR"},
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:   "serve",
			Usage:  "run the index server",
			Flags:  serveFlags(),
			Action: runServe,
		},
		{
			Name:      "insert",
			Usage:     "insert a key with a value",
			ArgsUsage: "<key> <value>",
			Flags:     clientFlags,
			Action:    runInsert,
		},
		{
			Name:      "get",
			Usage:     "look up a key",
			ArgsUsage: "<key>",
			Flags:     clientFlags,
			Action:    runGet,
		},
		{
			Name:      "remove",
			Usage:     "remove a key",
			ArgsUsage: "<key>",
			Flags:     clientFlags,
			Action:    runRemove,
		},
		{
			Name:      "glb",
			Usage:     "greatest key at or below the given key",
			ArgsUsage: "<key>",
			Flags:     clientFlags,
			Action:    runGlb,
		},
		{
			Name:      "lub",
			Usage:     "least key at or above the given key",
			ArgsUsage: "<key>",
			Flags:     clientFlags,
			Action:    runLub,
		},
		{
			Name:   "stats",
			Usage:  "print index statistics and invariant checks",
			Flags:  clientFlags,
			Action: runStats,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func serveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "listen",
			Usage:   "gRPC listen address",
			Value:   ":50051",
			EnvVars: []string{"RBINDEX_LISTEN"},
		},
		&cli.StringFlag{
			Name:    "metrics-listen",
			Usage:   "address for the prometheus /metrics endpoint, empty to disable",
			Value:   ":9090",
			EnvVars: []string{"RBINDEX_METRICS_LISTEN"},
		},
		&cli.Int64Flag{
			Name:    "low",
			Usage:   "exclusive low bound for keys",
			Value:   math.MinInt64,
			EnvVars: []string{"RBINDEX_LOW"},
		},
		&cli.Int64Flag{
			Name:    "high",
			Usage:   "exclusive high bound for keys",
			Value:   math.MaxInt64,
			EnvVars: []string{"RBINDEX_HIGH"},
		},
		&cli.StringFlag{
			Name:    "source",
			Usage:   "source tag for change events, random when empty",
			EnvVars: []string{"RBINDEX_SOURCE"},
		},
		&cli.StringFlag{
			Name:    "outbox-dir",
			Usage:   "directory of the change-event outbox, empty disables the change feed",
			EnvVars: []string{"RBINDEX_OUTBOX_DIR"},
		},
		&cli.StringSliceFlag{
			Name:    "kafka-brokers",
			Usage:   "kafka brokers receiving change events",
			EnvVars: []string{"RBINDEX_KAFKA_BROKERS"},
		},
		&cli.StringFlag{
			Name:    "kafka-topic",
			Usage:   "kafka topic for change events",
			Value:   "rbindex.events",
			EnvVars: []string{"RBINDEX_KAFKA_TOPIC"},
		},
		&cli.StringFlag{
			Name:    "kafka-client",
			Usage:   "kafka client library: kafka-go or sarama",
			Value:   "kafka-go",
			EnvVars: []string{"RBINDEX_KAFKA_CLIENT"},
		},
		&cli.DurationFlag{
			Name:    "broadcast-interval",
			Usage:   "how often the outbox is flushed to kafka",
			Value:   250 * time.Millisecond,
			EnvVars: []string{"RBINDEX_BROADCAST_INTERVAL"},
		},
		&cli.DurationFlag{
			Name:    "broadcast-sent-timeout",
			Usage:   "age after which an unacknowledged sent event is published again",
			Value:   30 * time.Second,
			EnvVars: []string{"RBINDEX_BROADCAST_SENT_TIMEOUT"},
		},
		&cli.UintFlag{
			Name:    "broadcast-max-retries",
			Usage:   "delivery attempts before a change event is left for inspection",
			Value:   5,
			EnvVars: []string{"RBINDEX_BROADCAST_MAX_RETRIES"},
		},
	}
}

func configLogger(cctx *cli.Context) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cctx.String("log-level")) {
	case "error":
		level = slog.LevelError
	case "warn":
		level = slog.LevelWarn
	case "debug":
		level = slog.LevelDebug
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.ToLower(cctx.String("log-format")) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
