package rabbitmq

import (
	"context"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// IConsumer subscribes to one topic and hands every message to the handler.
// T documents the expected payload type; decoding stays with the handler so
// it can discard malformed messages without stalling the stream.
type IConsumer[T any] interface {
	Consume(ctx context.Context)
	SetHandler(handler func(topic string, msg mqtt.Message) error)
}

type Consumer[T any] struct {
	client  mqtt.Client
	topic   string
	qos     byte
	handler func(topic string, msg mqtt.Message) error
}

func NewConsumer[T any](client mqtt.Client, topic string, qos byte, handler func(topic string, msg mqtt.Message) error) *Consumer[T] {
	return &Consumer[T]{client: client, topic: topic, qos: qos, handler: handler}
}

func (c *Consumer[T]) SetHandler(handler func(topic string, msg mqtt.Message) error) {
	c.handler = handler
}

// Consume subscribes and blocks until ctx is cancelled, then unsubscribes.
func (c *Consumer[T]) Consume(ctx context.Context) {
	token := c.client.Subscribe(c.topic, c.qos, func(_ mqtt.Client, msg mqtt.Message) {
		if c.handler == nil {
			log.Printf("bus: no handler for topic %s", c.topic)
			return
		}
		if err := c.handler(msg.Topic(), msg); err != nil {
			log.Printf("bus: handler error on %s: %v", msg.Topic(), err)
		}
	})
	if token.Wait() && token.Error() != nil {
		log.Printf("bus: subscribe to %s failed: %v", c.topic, token.Error())
		return
	}
	log.Printf("bus: subscribed to %s (qos=%d)", c.topic, c.qos)

	<-ctx.Done()

	unsub := c.client.Unsubscribe(c.topic)
	unsub.Wait()
}
