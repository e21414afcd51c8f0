package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"taskdesk/pkg/task"
)

// Publisher is the part of *nats.Conn the forwarder uses.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Connect dials NATS with reconnects enabled for the life of the process.
func Connect(url string, logger *slog.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("taskdesk-server"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return nc, nil
}

// NATSPublisher forwards task changes to NATS subjects of the form
// <prefix>.<kind>, e.g. taskdesk.tasks.created.
type NATSPublisher struct {
	pub    Publisher
	prefix string
	logger *slog.Logger
}

// NewNATSPublisher creates a publisher on subjects under prefix. A nil
// logger uses slog.Default.
func NewNATSPublisher(pub Publisher, prefix string, logger *slog.Logger) *NATSPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &NATSPublisher{pub: pub, prefix: prefix, logger: logger}
}

// Subject returns the subject a change of the given kind is published on.
func (p *NATSPublisher) Subject(kind task.ChangeKind) string {
	return p.prefix + "." + string(kind)
}

// Publish sends one change.
func (p *NATSPublisher) Publish(c task.Change) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal change: %w", err)
	}
	if err := p.pub.Publish(p.Subject(c.Kind), data); err != nil {
		return fmt.Errorf("publish %s: %w", p.Subject(c.Kind), err)
	}
	return nil
}

// Run publishes every change until ctx is done or the channel closes.
// Publish failures are logged and do not stop the loop.
func (p *NATSPublisher) Run(ctx context.Context, changes <-chan task.Change) {
	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-changes:
			if !ok {
				return
			}
			if err := p.Publish(c); err != nil {
				p.logger.Error("task change not published", "task", c.Task.ID, "kind", c.Kind, "error", err)
			}
		}
	}
}
