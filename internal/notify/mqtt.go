package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

const publishTimeout = 5 * time.Second

// Publisher delivers a payload to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// tokenPublisher is the part of mqtt.Client used here.
type tokenPublisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTPublisher publishes listing changes to an MQTT broker at QoS 1.
type MQTTPublisher struct {
	client tokenPublisher
}

func newMQTTPublisher(client tokenPublisher) *MQTTPublisher {
	return &MQTTPublisher{client: client}
}

// Connect dials the broker and returns a publisher plus a function that
// disconnects it.
func Connect(brokerURL, clientID string) (*MQTTPublisher, func(), error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.OnConnect = func(mqtt.Client) {
		log.Info().Str("broker", brokerURL).Msg("connected to MQTT broker")
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Str("broker", brokerURL).Msg("MQTT connection lost")
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(publishTimeout) {
		return nil, nil, fmt.Errorf("timed out connecting to MQTT broker %s", brokerURL)
	}
	if token.Error() != nil {
		return nil, nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return newMQTTPublisher(client), func() { client.Disconnect(250) }, nil
}

func (p *MQTTPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	token := p.client.Publish(topic, 1, false, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(publishTimeout):
		return fmt.Errorf("publish to %s timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

// Nop discards every message. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, []byte) error { return nil }

// Invalidator drops cached data derived from mosque listings.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Change is the message published on mosques/<id>/updated.
type Change struct {
	MosqueID  string    `json:"mosque_id"`
	Kind      string    `json:"kind"`
	ChangedAt time.Time `json:"changed_at"`
}

// Changes fans a listing write out to cache invalidation and subscribers.
// Failures are logged and never returned: a write that reached the database
// has succeeded.
type Changes struct {
	pub          Publisher
	invalidators []Invalidator
}

func NewChanges(pub Publisher, invalidators ...Invalidator) *Changes {
	if pub == nil {
		pub = Nop{}
	}
	return &Changes{pub: pub, invalidators: invalidators}
}

func Topic(mosqueID string) string {
	return fmt.Sprintf("mosques/%s/updated", mosqueID)
}

func (c *Changes) MosqueChanged(ctx context.Context, mosqueID, kind string) {
	for _, inv := range c.invalidators {
		if err := inv.Invalidate(ctx); err != nil {
			log.Warn().Err(err).Str("mosque_id", mosqueID).Msg("failed to invalidate mosque cache")
		}
	}

	payload, err := json.Marshal(Change{MosqueID: mosqueID, Kind: kind, ChangedAt: time.Now().UTC()})
	if err != nil {
		return
	}
	if err := c.pub.Publish(ctx, Topic(mosqueID), payload); err != nil {
		log.Warn().Err(err).Str("mosque_id", mosqueID).Str("kind", kind).Msg("failed to publish mosque change")
		return
	}
	log.Debug().Str("mosque_id", mosqueID).Str("kind", kind).Msg("published mosque change")
}
