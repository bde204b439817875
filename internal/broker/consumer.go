package broker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// ConsumerState is the lifecycle state of a ConsumerLoop.
type ConsumerState int32

const (
	StateStopped ConsumerState = iota
	StateStarting
	StateRunning
	StateReconnecting
)

func (s ConsumerState) String() string {
	switch s {
	case StateStopped:
		return "STOPPED"
	case StateStarting:
		return "STARTING"
	case StateRunning:
		return "RUNNING"
	case StateReconnecting:
		return "RECONNECTING"
	default:
		return "UNKNOWN"
	}
}

// Message is one delivery handed to a Handler: the raw body plus the
// sender header every service attaches when publishing.
type Message struct {
	Queue  string
	Sender string
	Body   []byte
}

// Handler processes one delivered message. A non-nil error is logged and
// the message is dropped; the message was already acknowledged on
// receipt, so handlers must tolerate a delivery being effectively lost on
// failure. Returning an error never stops the loop.
type Handler func(ctx context.Context, msg Message) error

// ErrAlreadyRunning is returned by Start when the loop is not stopped.
var ErrAlreadyRunning = errors.New("consumer loop already running")

// ConsumerLoop drains the registered queues from a single background
// goroutine. Each iteration takes the client's connection lock, pulls at
// most one message per queue with a non-blocking Get (auto-ack), and
// dispatches the collected messages after the lock is released, so a
// handler may publish through the same client without self-deadlocking.
// When the channel is unusable it reconnects, sleeping a fixed backoff
// between failed attempts, and then resumes draining whatever the durable
// queues retained, with no manual intervention needed.
type ConsumerLoop struct {
	client   *Client
	logger   *zap.Logger
	queues   []string
	handlers map[string]Handler

	pollInterval time.Duration
	backoff      time.Duration

	state  atomic.Int32
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewConsumerLoop builds a loop over the given client. Queues are taken
// from the client's topology; Register attaches handlers to them.
func NewConsumerLoop(client *Client, logger *zap.Logger) *ConsumerLoop {
	return &ConsumerLoop{
		client:       client,
		logger:       logger,
		queues:       client.topology.Queues(),
		handlers:     make(map[string]Handler),
		pollInterval: 100 * time.Millisecond,
		backoff:      5 * time.Second,
	}
}

// Register maps a queue to its handler. Must be called before Start.
// Queues without a handler are left untouched on the broker.
func (c *ConsumerLoop) Register(queue string, h Handler) {
	c.handlers[queue] = h
}

// State returns the current lifecycle state.
func (c *ConsumerLoop) State() ConsumerState {
	return ConsumerState(c.state.Load())
}

// Start spawns the background worker. Only valid from STOPPED.
func (c *ConsumerLoop) Start() error {
	if !c.state.CompareAndSwap(int32(StateStopped), int32(StateStarting)) {
		return ErrAlreadyRunning
	}
	c.stopCh = make(chan struct{})
	c.wg.Add(1)
	// RUNNING is stored before the worker spawns; from here on the worker
	// owns the RUNNING/RECONNECTING transitions and Start must not
	// overwrite them.
	c.state.Store(int32(StateRunning))
	go c.run()
	return nil
}

// Stop signals the worker, waits for it to exit, then closes the broker
// connection. No handler runs after Stop returns. Shutdown latency is
// bounded by one poll interval (or one backoff interval while
// reconnecting).
func (c *ConsumerLoop) Stop() {
	if ConsumerState(c.state.Load()) == StateStopped {
		return
	}
	close(c.stopCh)
	c.wg.Wait()
	c.state.Store(int32(StateStopped))
	c.client.Close()
}

func (c *ConsumerLoop) run() {
	defer c.wg.Done()
	for {
		wait := c.pollInterval
		msgs, err := c.collect()
		if err != nil {
			c.state.Store(int32(StateReconnecting))
			c.logger.Warn("consumer drain failed, backing off", zap.Error(err), zap.Duration("backoff", c.backoff))
			wait = c.backoff
		} else if ConsumerState(c.state.Load()) == StateReconnecting {
			c.state.Store(int32(StateRunning))
		}
		// Collected messages were already auto-acked, so they are handed
		// to their handlers even when the pass ended in a transport error.
		c.dispatchAll(msgs)

		select {
		case <-c.stopCh:
			return
		case <-time.After(wait):
		}
	}
}

// collect pulls at most one message from every registered queue while
// holding the client's connection lock. It must not invoke handlers:
// handlers publish through the same client, and the publish path takes
// the same lock. A transport error aborts the pass and tears down the
// connection so the next pass reconnects; messages pulled before the
// error are still returned.
func (c *ConsumerLoop) collect() ([]Message, error) {
	var msgs []Message
	err := c.client.WithChannel(func(ch *amqp.Channel) error {
		for _, queue := range c.queues {
			if _, ok := c.handlers[queue]; !ok {
				continue
			}
			delivery, ok, err := ch.Get(queue, true) // auto-ack on receipt
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			sender, _ := delivery.Headers["sender"].(string)
			msgs = append(msgs, Message{Queue: queue, Sender: sender, Body: delivery.Body})
		}
		return nil
	})
	return msgs, err
}

// dispatchAll runs the collected messages through their handlers with no
// client lock held. Handler failures are contained per message.
func (c *ConsumerLoop) dispatchAll(msgs []Message) {
	for _, msg := range msgs {
		c.dispatch(c.handlers[msg.Queue], msg)
	}
}

// dispatch invokes the handler for one message, containing both errors
// and panics so a poisoned message cannot halt the loop or starve the
// other queues.
func (c *ConsumerLoop) dispatch(handler Handler, msg Message) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("handler panicked", zap.String("queue", msg.Queue), zap.Any("panic", r))
		}
	}()
	if err := handler(context.Background(), msg); err != nil {
		c.logger.Warn("handler failed, message dropped", zap.String("queue", msg.Queue), zap.Error(err))
	}
}
