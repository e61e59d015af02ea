// Package events publishes a summary of every completed validation.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/dukerupert/addressvalidation/internal/validation"
)

// DefaultSubject is used when no subject is configured.
const DefaultSubject = "addressvalidation.validated"

// Event describes one completed validation.
type Event struct {
	ResponseID      string                     `json:"responseId"`
	RegionCode      string                     `json:"regionCode,omitempty"`
	ConfidenceLevel validation.ConfidenceLevel `json:"confidenceLevel"`
	AddressType     validation.AddressType     `json:"addressType"`
	Score           int                        `json:"score"`
	Rating          validation.Rating          `json:"rating"`
	IsValid         bool                       `json:"isValid"`
	IsDeliverable   bool                       `json:"isDeliverable"`
	CacheHit        bool                       `json:"cacheHit"`
	ValidatedAt     time.Time                  `json:"validatedAt"`
}

// NewEvent builds an event from a result.
func NewEvent(r *validation.Result, cacheHit bool, at time.Time) Event {
	return Event{
		ResponseID:      r.ResponseID(),
		RegionCode:      r.RegionCode(),
		ConfidenceLevel: r.ConfidenceLevel(),
		AddressType:     r.AddressType(),
		Score:           r.Score(),
		Rating:          r.Rating(),
		IsValid:         r.IsValid(),
		IsDeliverable:   r.IsDeliverable(),
		CacheHit:        cacheHit,
		ValidatedAt:     at.UTC(),
	}
}

// MessageID identifies one event for broker deduplication. Cache hits repeat
// the response id, so the id also carries the cache flag and the time.
func (e Event) MessageID() string {
	source := "api"
	if e.CacheHit {
		source = "cache"
	}
	return fmt.Sprintf("%s:%s:%d", e.ResponseID, source, e.ValidatedAt.UnixNano())
}

// Publisher sends validation events somewhere.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }

// NATSPublisher publishes events as JSON on a NATS subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

// NATSConfig configures a NATSPublisher.
type NATSConfig struct {
	URL     string
	Subject string
	Name    string
}

// NewNATSPublisher connects to NATS.
func NewNATSPublisher(cfg NATSConfig) (*NATSPublisher, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("nats url required")
	}
	name := cfg.Name
	if name == "" {
		name = "addressvalidation"
	}

	conn, err := nats.Connect(cfg.URL,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	subject := cfg.Subject
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSPublisher{conn: conn, subject: subject}, nil
}

// Subject returns the subject events are published on.
func (p *NATSPublisher) Subject() string {
	return p.subject
}

func (p *NATSPublisher) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := nats.NewMsg(p.subject)
	msg.Data = data
	msg.Header.Set(nats.MsgIdHdr, e.MessageID())
	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("nats publish: %w", err)
	}
	return nil
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
		return err
	}
	return nil
}

// Ping reports whether the NATS connection is usable.
func (p *NATSPublisher) Ping(context.Context) error {
	if !p.conn.IsConnected() {
		return fmt.Errorf("nats: %s", p.conn.Status())
	}
	return nil
}
