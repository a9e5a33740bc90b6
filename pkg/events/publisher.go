package events

import (
	"context"

	json "github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

// Subject prefix for every change event
const SubjectPrefix = "kanban."

// Event is a change notification for one entity
type Event struct {
	Type    string      `json:"type"`
	ID      string      `json:"id"`
	Payload interface{} `json:"payload,omitempty"`
}

// Publisher delivers change events. Implementations must not block callers
// on slow subscribers.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close()
}

// Subject returns the NATS subject for an event type, e.g. kanban.card.moved
func Subject(eventType string) string {
	return SubjectPrefix + eventType
}

// NoopPublisher drops every event
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
func (NoopPublisher) Close()                              {}

// NatsPublisher publishes events as JSON on a NATS connection
type NatsPublisher struct {
	conn *nats.Conn
}

// Connect dials NATS. The token is optional.
func Connect(url, token string) (*NatsPublisher, error) {
	opts := []nats.Option{
		nats.Name("kanladin-backend"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.WithField("component", "events").Warnf("nats disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.WithField("component", "events").Infof("nats reconnected to %s", c.ConnectedUrl())
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, err
	}
	return &NatsPublisher{conn: conn}, nil
}

func (p *NatsPublisher) Publish(_ context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.conn.Publish(Subject(ev.Type), data)
}

func (p *NatsPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		log.WithField("component", "events").Warnf("nats drain failed: %v", err)
	}
}
