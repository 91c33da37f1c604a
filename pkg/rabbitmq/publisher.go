package rabbitmq

import (
	"encoding/json"
	"fmt"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// IPublisher publishes JSON payloads to one topic.
type IPublisher interface {
	Publish(v any) error
	PublishToQos(topic string, qos byte, retained bool, v any) error
	Close()
}

// Publisher binds an MQTT client to a default topic and QoS.
type Publisher struct {
	client mqtt.Client
	topic  string
	qos    byte
}

func NewPublisher(client mqtt.Client, topic string, qos byte) *Publisher {
	return &Publisher{client: client, topic: topic, qos: qos}
}

// Publish marshals v to JSON and publishes it on the default topic.
func (p *Publisher) Publish(v any) error {
	return p.PublishToQos(p.topic, p.qos, false, v)
}

// PublishToQos marshals v to JSON and publishes it on an explicit topic/QoS.
func (p *Publisher) PublishToQos(topic string, qos byte, retained bool, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	token := p.client.Publish(topic, qos, retained, b)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("publish to %s: %w", topic, token.Error())
	}
	log.Printf("bus: published %d bytes to %s (qos=%d)", len(b), topic, qos)
	return nil
}

func (p *Publisher) Close() {
	if p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
