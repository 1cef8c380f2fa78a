package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	ferrors "git.home.luguber.info/inful/mdx2md/internal/foundation/errors"
)

// NATSConfig configures a NATSPublisher.
type NATSConfig struct {
	URL     string
	Subject string // Prefix; events go to <Subject>.document and <Subject>.run
	Stream  string
	Timeout time.Duration
}

// NATSPublisher publishes events to a JetStream stream.
type NATSPublisher struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	subject string
	timeout time.Duration
}

// NewNATSPublisher connects to NATS and makes sure the stream covering the subject exists.
func NewNATSPublisher(ctx context.Context, cfg NATSConfig) (*NATSPublisher, error) {
	if cfg.URL == "" {
		return nil, ferrors.ConfigError("events url is required").Build()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	conn, err := nats.Connect(cfg.URL, nats.Name("mdx2md"), nats.Timeout(cfg.Timeout))
	if err != nil {
		return nil, ferrors.NetworkError("failed to connect to NATS").WithCause(err).WithContext("url", cfg.URL).Build()
	}
	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, ferrors.NetworkError("failed to create JetStream context").WithCause(err).Build()
	}

	sctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if _, err := js.CreateOrUpdateStream(sctx, jetstream.StreamConfig{
		Name:        cfg.Stream,
		Description: "mdx2md export events",
		Subjects:    []string{cfg.Subject + ".>"},
		MaxAge:      7 * 24 * time.Hour,
	}); err != nil {
		conn.Close()
		return nil, ferrors.NetworkError("failed to ensure JetStream stream").
			WithCause(err).
			WithContext("stream", cfg.Stream).
			Build()
	}

	slog.Info("NATS publisher initialized", "url", cfg.URL, "subject", cfg.Subject, "stream", cfg.Stream)
	return &NATSPublisher{conn: conn, js: js, subject: cfg.Subject, timeout: cfg.Timeout}, nil
}

// DocumentSubject returns the subject document events are published on.
func DocumentSubject(prefix string) string { return prefix + ".document" }

// RunSubject returns the subject run events are published on.
func RunSubject(prefix string) string { return prefix + ".run" }

// PublishDocument publishes ev on the document subject.
func (p *NATSPublisher) PublishDocument(ctx context.Context, ev DocumentEvent) error {
	return p.publish(ctx, DocumentSubject(p.subject), ev)
}

// PublishRun publishes ev on the run subject.
func (p *NATSPublisher) PublishRun(ctx context.Context, ev RunEvent) error {
	return p.publish(ctx, RunSubject(p.subject), ev)
}

func (p *NATSPublisher) publish(ctx context.Context, subject string, ev any) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return ferrors.InternalError("failed to marshal event").WithCause(err).Build()
	}
	pctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if _, err := p.js.Publish(pctx, subject, data); err != nil {
		return ferrors.NetworkError("failed to publish event").WithCause(err).WithContext("subject", subject).Build()
	}
	slog.Debug("Published event", "subject", subject)
	return nil
}

// Close drains and closes the connection.
func (p *NATSPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Drain()
}
