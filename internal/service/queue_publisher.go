// Package queue_publisher provides publishers for domain events on RabbitMQ.
// Errors are logged and returned to allow callers to ignore failures without
// interrupting the main request flow.
package queue_publisher

import (
    "context"
    "encoding/json"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    log "github.com/sirupsen/logrus"

    "github.com/iliyamo/tenseconds/internal/config"
    "github.com/iliyamo/tenseconds/internal/model"
    q "github.com/iliyamo/tenseconds/internal/queue"
)

// AMQPPublisher publishes game.finished events. A connection is dialled per
// event; the publish rate is bounded by how fast players stop games.
type AMQPPublisher struct {
    url   string
    queue string
    log   log.FieldLogger
}

// NewAMQPPublisher returns a publisher for the broker described by cfg.
func NewAMQPPublisher(cfg config.BrokerConfig, logger log.FieldLogger) *AMQPPublisher {
    return &AMQPPublisher{url: cfg.URL, queue: cfg.Queue, log: logger.WithField("component", "rabbitmq")}
}

// PublishGameFinished publishes the event for a stopped session to the
// configured queue. The function never panics; any error is logged and
// returned so the caller can choose to ignore it. Messages are persistent.
func (p *AMQPPublisher) PublishGameFinished(ctx context.Context, s model.GameSession) error {
    pub, err := newPublishing(q.NewGameFinishedEvent(s), time.Now().UTC())
    if err != nil {
        p.log.WithError(err).Error("marshal event failed")
        return err
    }

    conn, err := amqp.Dial(p.url)
    if err != nil {
        p.log.WithError(err).Warn("dial failed")
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        p.log.WithError(err).Warn("channel open failed")
        return err
    }
    defer func() { _ = ch.Close() }()

    // Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(
        p.queue, // name
        true,    // durable
        false,   // autoDelete
        false,   // exclusive
        false,   // noWait
        nil,     // args
    ); err != nil {
        p.log.WithError(err).Warn("queue declare failed")
        return err
    }

    if err := ch.PublishWithContext(ctx,
        "",      // default exchange
        p.queue, // routing key = queue name
        false,   // mandatory
        false,   // immediate
        pub,
    ); err != nil {
        p.log.WithError(err).Warn("publish failed")
        return err
    }
    return nil
}

func newPublishing(ev q.GameFinishedEvent, now time.Time) (amqp.Publishing, error) {
    body, err := json.Marshal(ev)
    if err != nil {
        return amqp.Publishing{}, err
    }
    return amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent, // store on disk
        Timestamp:    now,
        Body:         body,
    }, nil
}
