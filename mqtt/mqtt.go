// mqtt.go - Publishes account events to an MQTT broker

package mqtt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

const (
	qos            = 1 // at least once
	publishTimeout = 5 * time.Second
)

var ErrPublishTimeout = errors.New("mqtt publish timed out")

// Publisher sends JSON events under a topic prefix.
type Publisher struct {
	client paho.Client
	prefix string
}

// Connect dials the broker and returns a publisher for prefix.
func Connect(broker, clientID, prefix string) (*Publisher, error) {
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(15 * time.Second) {
		return nil, fmt.Errorf("mqtt connect to %s timed out", broker)
	}
	if err := token.Error(); err != nil {
		return nil, err
	}
	return newPublisher(client, prefix), nil
}

func newPublisher(client paho.Client, prefix string) *Publisher {
	return &Publisher{client: client, prefix: strings.Trim(prefix, "/")}
}

// Topic joins prefix and event, e.g. users/registered.
func Topic(prefix, event string) string {
	if prefix == "" {
		return event
	}
	return prefix + "/" + event
}

// Publish marshals payload and waits for the broker to acknowledge it.
func (p *Publisher) Publish(event string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	token := p.client.Publish(Topic(p.prefix, event), qos, false, body)
	if !token.WaitTimeout(publishTimeout) {
		return ErrPublishTimeout
	}
	return token.Error()
}

// Close disconnects, giving in-flight messages a moment to finish.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
