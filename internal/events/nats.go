package events

import (
	"context"
	"encoding/json"

	"github.com/nats-io/nats.go"
	"github.com/rotisserie/eris"
	"go.opentelemetry.io/otel"
)

// natsHeaderCarrier adapts nats.Msg headers for OTel TextMapCarrier.
type natsHeaderCarrier nats.Msg

func (c *natsHeaderCarrier) Get(key string) string {
	if c.Header == nil {
		return ""
	}
	return c.Header.Get(key)
}

func (c *natsHeaderCarrier) Set(key, val string) {
	if c.Header == nil {
		c.Header = make(nats.Header)
	}
	c.Header.Set(key, val)
}

func (c *natsHeaderCarrier) Keys() []string {
	if c.Header == nil {
		return nil
	}
	keys := make([]string, 0, len(c.Header))
	for k := range c.Header {
		keys = append(keys, k)
	}
	return keys
}

type msgPublisher interface {
	PublishMsg(m *nats.Msg) error
}

// NATSPublisher sends new listings to a subject for downstream consumers
// (notifications, search indexing).
type NATSPublisher struct {
	conn    msgPublisher
	close   func()
	Subject string
}

func ConnectNATS(url, subject string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url, nats.Name("motoieum-crawler"))
	if err != nil {
		return nil, eris.Wrapf(err, "events: connect %s", url)
	}
	return &NATSPublisher{conn: nc, close: nc.Close, Subject: subject}, nil
}

// Publish serializes v as JSON; trace context from ctx travels in the headers.
func (p *NATSPublisher) Publish(ctx context.Context, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return eris.Wrap(err, "events: marshal")
	}
	msg := &nats.Msg{Subject: p.Subject, Data: data}
	otel.GetTextMapPropagator().Inject(ctx, (*natsHeaderCarrier)(msg))
	if err := p.conn.PublishMsg(msg); err != nil {
		return eris.Wrapf(err, "events: publish %s", p.Subject)
	}
	return nil
}

func (p *NATSPublisher) Close() {
	if p != nil && p.close != nil {
		p.close()
	}
}
