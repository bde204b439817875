package broker

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

// QueueBinding declares one durable queue bound to an exchange under a
// routing key. A key ending in ".#" on the topic exchange receives every
// suffix under its root.
type QueueBinding struct {
	Queue      string
	Exchange   string
	RoutingKey string
}

// Topology is the set of queues a service consumes from. Declare runs on
// every connection (re)establishment; declaring an existing exchange,
// queue or binding with identical parameters is a no-op on the broker, so
// repeating it after a reconnect is safe.
type Topology struct {
	Bindings []QueueBinding
}

// Queues returns the queue names in declaration order.
func (t Topology) Queues() []string {
	out := make([]string, 0, len(t.Bindings))
	for _, b := range t.Bindings {
		out = append(out, b.Queue)
	}
	return out
}

// Declare sets up both exchanges and all queue bindings on the given
// channel. Both exchanges are always declared, publishers included, so
// that startup order between services does not matter.
func (t Topology) Declare(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(DirectExchange, "direct", true, false, false, false, nil); err != nil {
		return err
	}
	if err := ch.ExchangeDeclare(TopicExchange, "topic", true, false, false, false, nil); err != nil {
		return err
	}
	for _, b := range t.Bindings {
		if _, err := ch.QueueDeclare(b.Queue, true, false, false, false, nil); err != nil {
			return err
		}
		if err := ch.QueueBind(b.Queue, b.RoutingKey, b.Exchange, false, nil); err != nil {
			return err
		}
	}
	return nil
}
