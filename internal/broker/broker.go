// Package broker owns everything that touches RabbitMQ: the guarded
// connection/channel pair, the exchange and queue topology, publishing
// with sender metadata, and the background consumer loop. All services in
// the deployment coordinate exclusively through the exchanges declared
// here; there is no other inter-service transport.
package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Exchange names are shared by every service and therefore fixed.
const (
	// DirectExchange routes point-to-point events (booking created or
	// cancelled, payment accepted or rejected, tickets generated, logs)
	// by exact routing key.
	DirectExchange = "direct"
	// TopicExchange fans promotions out under hierarchical routing keys
	// of the form <marketing-root>.<destination_id>.
	TopicExchange = "promotions_topic"
)

// Client owns a single logical connection and channel to the broker. The
// channel is not safe for unsynchronized concurrent use, so every
// operation (publish, topology declaration, consume) runs under one
// mutex. Reconnection is transparent: whichever caller finds the
// transport closed re-establishes it and re-declares the topology before
// proceeding, so nobody ever observes a connected-but-unrouted channel.
type Client struct {
	url      string
	sender   string // value of the sender header on published messages
	logsKey  string // routing key for free-text log events
	topology Topology
	logger   *zap.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewClient builds a client for the given broker URL. sender identifies
// this service on every published message, logsKey is the routing key for
// the event log. No connection is made until the first use.
func NewClient(url, sender, logsKey string, topology Topology, logger *zap.Logger) *Client {
	return &Client{
		url:      url,
		sender:   sender,
		logsKey:  logsKey,
		topology: topology,
		logger:   logger,
	}
}

// channelLocked returns a usable channel, dialing and re-declaring the
// topology when the transport is closed or was never opened. Callers must
// hold c.mu.
func (c *Client) channelLocked() (*amqp.Channel, error) {
	if c.conn != nil && !c.conn.IsClosed() && c.ch != nil && !c.ch.IsClosed() {
		return c.ch, nil
	}
	c.closeLocked()

	conn, err := amqp.Dial(c.url)
	if err != nil {
		return nil, fmt.Errorf("broker dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("broker channel: %w", err)
	}
	if err := c.topology.Declare(ch); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("broker topology: %w", err)
	}
	c.conn = conn
	c.ch = ch
	c.logger.Info("broker connected", zap.String("sender", c.sender))
	return ch, nil
}

// WithChannel runs fn with a usable channel while holding the connection
// lock. On error from fn the transport is torn down so the next caller
// reconnects from scratch.
func (c *Client) WithChannel(fn func(ch *amqp.Channel) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch, err := c.channelLocked()
	if err != nil {
		return err
	}
	if err := fn(ch); err != nil {
		c.closeLocked()
		return err
	}
	return nil
}

// Publish serializes payload to JSON and publishes it with the sender
// header. A publish failure closes the connection (forcing a reconnect on
// the next attempt) and is returned to the caller; there is no automatic
// retry, so a message published during a broker outage is lost.
func (c *Client) Publish(ctx context.Context, exchange, routingKey string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return c.publishBytes(ctx, exchange, routingKey, "application/json", body)
}

// PublishLog sends a free-text line to the event log routing key on the
// direct exchange. Failures are logged and swallowed: the event log is
// best effort and must never break the operation that emitted it.
func (c *Client) PublishLog(ctx context.Context, message string) {
	if err := c.publishBytes(ctx, DirectExchange, c.logsKey, "text/plain", []byte(message)); err != nil {
		c.logger.Warn("event log publish failed", zap.Error(err))
	}
}

func (c *Client) publishBytes(ctx context.Context, exchange, routingKey, contentType string, body []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch, err := c.channelLocked()
	if err != nil {
		return err
	}
	err = ch.PublishWithContext(ctx,
		exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  contentType,
			DeliveryMode: amqp.Persistent,
			Headers:      amqp.Table{"sender": c.sender},
			Body:         body,
		},
	)
	if err != nil {
		c.closeLocked()
		return fmt.Errorf("publish %s/%s: %w", exchange, routingKey, err)
	}
	return nil
}

// Close tears down the channel and connection. Safe to call repeatedly.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Client) closeLocked() {
	if c.ch != nil {
		_ = c.ch.Close()
		c.ch = nil
	}
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}
