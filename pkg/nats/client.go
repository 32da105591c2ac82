// Package nats connects to NATS JetStream and publishes product events to it.
package nats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abgdnv/giftcatalog/pkg/config"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// duplicateWindow is how long JetStream remembers message IDs to drop redelivered publishes.
const duplicateWindow = 2 * time.Minute

// NewClient connects as clientName and keeps reconnecting for the lifetime of the process.
func NewClient(cfg config.NATSConfig, clientName string, logger *slog.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(cfg.Url,
		nats.Name(clientName),
		nats.Timeout(cfg.Timeout),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", "url", c.ConnectedUrl())
		}),
		nats.ClosedHandler(func(*nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", cfg.Url, err)
	}
	return nc, nil
}

// NewJetStreamContext closes nc when JetStream cannot be set up.
func NewJetStreamContext(nc *nats.Conn) (jetstream.JetStream, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}
	return js, nil
}

// StreamSpec describes a file backed stream. A zero MaxAge keeps messages forever.
type StreamSpec struct {
	Name     string
	Subjects []string
	MaxAge   time.Duration
}

// EnsureStream creates the stream, or updates its subjects and retention when it already exists.
func EnsureStream(ctx context.Context, js jetstream.JetStream, spec StreamSpec) error {
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:       spec.Name,
		Subjects:   spec.Subjects,
		Storage:    jetstream.FileStorage,
		MaxAge:     spec.MaxAge,
		Duplicates: duplicateWindow,
	})
	if err != nil {
		return fmt.Errorf("failed to ensure stream %s: %w", spec.Name, err)
	}
	return nil
}
