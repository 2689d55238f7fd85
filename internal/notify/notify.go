// Package notify delivers newly reconciled job records to the notification
// sink, one message per record.
package notify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"bidscout-engine/internal/config"
	"bidscout-engine/internal/domain"
	apperrors "bidscout-engine/internal/errors"
	"bidscout-engine/internal/events"
	"bidscout-engine/internal/telemetry"
)

func tracer() trace.Tracer { return telemetry.GetTracer("bidscout/notify") }

type Notifier interface {
	// Notify sends one message per record, in order.
	Notify(ctx context.Context, runID string, records []domain.JobRecord) error
	Close()
}

// Open builds the notifier selected by cfg.Notify.Backend.
func Open(cfg config.Config, log *zap.Logger) (Notifier, error) {
	switch cfg.Notify.Backend {
	case "", "log":
		return NewLogNotifier(log), nil
	case "none":
		return Nop{}, nil
	case "nats":
		return NewNATSNotifier(cfg.Notify.NATSURL, cfg.Notify.Subject, log)
	case "file":
		return NewFileNotifier(cfg.Notify.EventsFile, log)
	default:
		return nil, fmt.Errorf("unknown notify backend %q", cfg.Notify.Backend)
	}
}

type Nop struct{}

func (Nop) Notify(context.Context, string, []domain.JobRecord) error { return nil }
func (Nop) Close()                                                   {}

// LogNotifier writes each new record as a structured log line.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogNotifier{log: log.Named("notify")}
}

func (n *LogNotifier) Notify(_ context.Context, runID string, records []domain.JobRecord) error {
	for _, r := range records {
		n.log.Info("new job",
			zap.String("run_id", runID),
			zap.String("platform", string(r.Platform)),
			zap.String("title", r.Title),
			zap.String("link", r.Link),
			zap.String("price", r.Price))
	}
	return nil
}

func (n *LogNotifier) Close() {}

// HubNotifier publishes event envelopes to an in-process hub.
type HubNotifier struct {
	Hub *events.Hub
}

func (n HubNotifier) Notify(ctx context.Context, runID string, records []domain.JobRecord) error {
	for _, r := range records {
		b, err := events.NewJob(runID, r)
		if err != nil {
			return apperrors.Internal("encode job event", err)
		}
		if err := n.Hub.Send(ctx, b); err != nil {
			return apperrors.Internal("deliver job event", err)
		}
	}
	return nil
}

func (n HubNotifier) Close() {}

// FileNotifier appends job.new events to a JSON-lines file. Events go
// through a hub so the file is written off the scrape path.
type FileNotifier struct {
	HubNotifier
	path string
	ch   chan []byte
	done chan struct{}
	f    *os.File
	log  *zap.Logger
}

func NewFileNotifier(path string, log *zap.Logger) (*FileNotifier, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, apperrors.Storage("create events dir", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, apperrors.Storage("open events file", err)
	}
	hub := events.NewHub()
	n := &FileNotifier{
		HubNotifier: HubNotifier{Hub: hub},
		path:        path,
		ch:          hub.Subscribe(64),
		done:        make(chan struct{}),
		f:           f,
		log:         log.Named("notify"),
	}
	go n.drain()
	return n, nil
}

func (n *FileNotifier) drain() {
	defer close(n.done)
	for b := range n.ch {
		if _, err := n.f.Write(append(b, '\n')); err != nil {
			n.log.Error("write job event", zap.String("path", n.path), zap.Error(err))
		}
	}
}

// Close waits for queued events to reach the file.
func (n *FileNotifier) Close() {
	n.Hub.Unsubscribe(n.ch)
	<-n.done
	if err := n.f.Close(); err != nil {
		n.log.Warn("close events file", zap.String("path", n.path), zap.Error(err))
	}
}

// NATSNotifier publishes event envelopes to <subject>.<platform>.
type NATSNotifier struct {
	conn    *nats.Conn
	subject string
	log     *zap.Logger
}

func NewNATSNotifier(url, subject string, log *zap.Logger) (*NATSNotifier, error) {
	if log == nil {
		log = zap.NewNop()
	}
	conn, err := nats.Connect(url,
		nats.Name("bidscout-engine"),
		nats.Timeout(5*time.Second),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(3),
	)
	if err != nil {
		return nil, apperrors.Internal("connecting to NATS", err)
	}
	return &NATSNotifier{conn: conn, subject: subject, log: log.Named("notify")}, nil
}

func (n *NATSNotifier) Notify(ctx context.Context, runID string, records []domain.JobRecord) error {
	ctx, span := tracer().Start(ctx, "NATSNotifier.Notify")
	defer span.End()
	span.SetAttributes(telemetry.Int("records", len(records)))

	for _, r := range records {
		b, err := events.NewJob(runID, r)
		if err != nil {
			span.RecordError(err)
			return apperrors.Internal("encode job event", err)
		}
		subject := n.subject + "." + string(r.Platform)
		if err := n.conn.Publish(subject, b); err != nil {
			span.RecordError(err)
			n.log.Error("failed to publish job", zap.String("link", r.Link), zap.Error(err))
			return apperrors.Internal("publishing to NATS", err)
		}
		n.log.Debug("published job", zap.String("subject", subject), zap.String("link", r.Link))
	}
	if err := n.conn.FlushWithContext(ctx); err != nil {
		span.RecordError(err)
		return apperrors.Internal("flushing NATS", err)
	}
	return nil
}

func (n *NATSNotifier) Close() {
	if n.conn != nil {
		n.conn.Close()
	}
}
