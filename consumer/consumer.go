// Package consumer delivers domain events from the exchange JetStream
// stream to the projector. Messages are acknowledged only after the
// handler, including its synchronous taxonomy refresh, has returned.
package consumer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360/semexchange/errors"
	"github.com/c360/semexchange/types/event"
)

// Applier is the projection side of the consumer.
type Applier interface {
	Apply(ctx context.Context, evtType event.Type, payload []byte) error
}

// Config holds the stream connection settings.
type Config struct {
	URL           string
	Stream        string
	Durable       string
	Subject       string
	MaxReconnects int
	ReconnectWait time.Duration
	AckWait       time.Duration
}

// Consumer runs a durable JetStream consumer feeding an Applier.
type Consumer struct {
	log     *slog.Logger
	cfg     Config
	applier Applier

	mu      sync.Mutex
	started bool
	conn    *nats.Conn
	consume jetstream.ConsumeContext
}

// New creates a consumer; Start connects it.
func New(cfg Config, applier Applier, log *slog.Logger) *Consumer {
	return &Consumer{
		log:     log.With("component", "consumer"),
		cfg:     cfg,
		applier: applier,
	}
}

// Start connects to NATS, ensures the event stream and the durable
// consumer exist, and begins delivery. It returns once delivery is
// running; message handling happens on the connection's callbacks.
func (c *Consumer) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return errors.WrapInvalid(errors.ErrAlreadyStarted, "consumer", "Start", c.cfg.Durable)
	}

	conn, err := nats.Connect(c.cfg.URL,
		nats.MaxReconnects(c.cfg.MaxReconnects),
		nats.ReconnectWait(c.cfg.ReconnectWait),
		nats.RetryOnFailedConnect(true),
	)
	if err != nil {
		return errors.WrapTransient(err, "consumer", "Start", "connect to NATS")
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return errors.WrapTransient(err, "consumer", "Start", "initialize JetStream")
	}

	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      c.cfg.Stream,
		Subjects:  []string{c.cfg.Subject},
		Retention: jetstream.LimitsPolicy,
		Storage:   jetstream.FileStorage,
	})
	if err != nil {
		conn.Close()
		return errors.WrapTransient(err, "consumer", "Start", "ensure stream")
	}

	cons, err := stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Durable:       c.cfg.Durable,
		FilterSubject: c.cfg.Subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       c.cfg.AckWait,
		DeliverPolicy: jetstream.DeliverAllPolicy,
	})
	if err != nil {
		conn.Close()
		return errors.WrapTransient(err, "consumer", "Start", "ensure consumer")
	}

	consume, err := cons.Consume(func(msg jetstream.Msg) {
		c.dispatch(context.Background(), msg)
	})
	if err != nil {
		conn.Close()
		return errors.WrapTransient(err, "consumer", "Start", "start delivery")
	}

	c.conn = conn
	c.consume = consume
	c.started = true
	c.log.Info("consumer started",
		"stream", c.cfg.Stream, "durable", c.cfg.Durable, "subject", c.cfg.Subject)
	return nil
}

// delivery is the slice of jetstream.Msg the dispatcher needs; the
// indirection keeps dispatch testable without a running server.
type delivery interface {
	Subject() string
	Data() []byte
	Ack() error
	Nak() error
	Term() error
}

// dispatch routes one message to the applier and settles it: ack on
// success, nak for transient faults so the server redelivers, term for
// poison messages that can never succeed.
func (c *Consumer) dispatch(ctx context.Context, msg delivery) {
	evtType, ok := event.TypeFromSubject(msg.Subject())
	if !ok {
		c.log.Warn("message outside event namespace", "subject", msg.Subject())
		c.settle(msg.Term, "term")
		return
	}

	err := c.applier.Apply(ctx, evtType, msg.Data())
	switch {
	case err == nil:
		c.settle(msg.Ack, "ack")
	case errors.IsTransient(err):
		c.log.Warn("transient failure, requesting redelivery",
			"event_type", evtType, "error", err)
		c.settle(msg.Nak, "nak")
	default:
		c.log.Error("dropping unprocessable event",
			"event_type", evtType, "error", err)
		c.settle(msg.Term, "term")
	}
}

func (c *Consumer) settle(do func() error, op string) {
	if err := do(); err != nil {
		c.log.Error("message settlement failed", "op", op, "error", err)
	}
}

// Stop halts delivery and drains the connection.
func (c *Consumer) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return errors.WrapInvalid(errors.ErrNotStarted, "consumer", "Stop", c.cfg.Durable)
	}

	c.consume.Stop()
	if err := c.conn.Drain(); err != nil {
		c.conn.Close()
		return errors.WrapTransient(err, "consumer", "Stop", "drain connection")
	}
	c.started = false
	c.log.Info("consumer stopped", "durable", c.cfg.Durable)
	return nil
}
