// Command natsbench is a small diagnostic client: it connects, optionally
// subscribes to a subject and logs delivered messages, or publishes a
// single message and exits. It mirrors the shape of the teacher's
// patterns/nats/cmd/nats/main.go (flag-driven CLI, slog JSON logging,
// config file with fallback to defaults) adapted to this module's API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jrepp/natscore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var (
		url        = flag.String("url", nats.DefaultURL, "server URL")
		configPath = flag.String("config", "", "optional YAML config file")
		subject    = flag.String("subject", "", "subject to subscribe to")
		publish    = flag.String("publish", "", "if set, publish this payload to -subject and exit")
		name       = flag.String("name", "natsbench", "client name sent in CONNECT")
		verbose    = flag.Bool("verbose", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	opts := []nats.Option{nats.Name(*name), nats.Logger(logger)}
	if *configPath != "" {
		cfg, err := loadConfig(*configPath)
		if err != nil {
			return err
		}
		if *url == nats.DefaultURL && cfg.URL != "" {
			*url = cfg.URL
		}
		opts = append(opts, cfg.options()...)
	}

	nc, err := nats.Connect(*url, opts...)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer nc.Close()

	logger.Info("connected", "url", nc.ConnectedUrl(), "server_id", nc.ConnectedServerId())

	if *subject == "" {
		return nil
	}

	if *publish != "" {
		if err := nc.Publish(*subject, []byte(*publish)); err != nil {
			return fmt.Errorf("publish: %w", err)
		}
		if err := nc.FlushTimeout(5 * time.Second); err != nil {
			return fmt.Errorf("flush: %w", err)
		}
		logger.Info("published", "subject", *subject, "bytes", len(*publish))
		return nil
	}

	sub, err := nc.Subscribe(*subject, "")
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for {
		select {
		case msg, ok := <-sub.Messages():
			if !ok {
				return nil
			}
			logger.Info("message", "subject", msg.Subject, "bytes", len(msg.Data))
		case <-ctx.Done():
			return sub.Drain()
		}
	}
}
