// Package events publishes stage-completion messages to an AMQP
// queue, so downstream dashboards can follow a run without polling
// the database.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"

	"call-insights-go/internal/config"
	"call-insights-go/internal/logger"
	"call-insights-go/internal/types"
)

// StageEvent is the message body for one completed stage.
type StageEvent struct {
	Workflow  string           `json:"workflow"`
	Stage     string           `json:"stage"`
	Status    types.CallStatus `json:"status,omitempty"`
	Calls     int              `json:"calls"`
	Failures  int              `json:"failures"`
	Timestamp time.Time        `json:"timestamp"`
}

// Publisher is safe to use as a nil pointer: every method no-ops, so
// callers do not need to guard the disabled case.
type Publisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
	log   *logger.Logger
}

// Connect dials the broker and declares the queue. Returns (nil, nil)
// when events are disabled.
func Connect(cfg config.EventsConfig) (*Publisher, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("AMQP_URL not set")
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(cfg.Queue, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", cfg.Queue, err)
	}

	log := logger.New().WithField("component", "events")
	log.WithField("queue", cfg.Queue).Info("connected to AMQP broker")
	return &Publisher{conn: conn, ch: ch, queue: cfg.Queue, log: logger.New()}, nil
}

// Publish sends one stage event. Publish failures are logged, never
// propagated: events are advisory, the pipeline does not depend on
// them.
func (p *Publisher) Publish(ev StageEvent) {
	if p == nil {
		return
	}
	ev.Timestamp = time.Now().UTC()
	body, err := json.Marshal(ev)
	if err != nil {
		p.log.WithError(err).Error("marshal stage event")
		return
	}
	err = p.ch.Publish("", p.queue, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		p.log.WithError(err).WithField("stage", ev.Stage).Warn("publish stage event failed")
	}
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	p.ch.Close()
	p.conn.Close()
}
