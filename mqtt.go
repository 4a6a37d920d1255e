package icadtone

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Publisher publishes the detections of each finished analysis to an MQTT
// broker, one message per kind carrying that kind's list of hits. Grounded
// on the host project's
// MQTTPublisher: auto-reconnect, connect-retry, and fire-and-forget async
// publish so a slow/unreachable broker never blocks analysis.
type Publisher struct {
	client mqtt.Client
	cfg    MQTTConfig
}

// NewPublisher connects to the broker described by cfg and returns a ready
// Publisher.
func NewPublisher(cfg MQTTConfig) (*Publisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(fmt.Sprintf("icadtone_%d", time.Now().UnixNano()))

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(10 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(mqtt.Client) {
		log.Println("icadtone MQTT: connected to broker")
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Printf("icadtone MQTT: connection lost: %v", err)
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return &Publisher{client: client, cfg: cfg}, nil
}

// PublishResult publishes the pulsed, two_tone, long and hi_low lists of r,
// one message per kind under {TopicPrefix}/{kind}, tagged with runID for
// correlation. The MDC and DTMF lists are not published.
func (p *Publisher) PublishResult(runID string, r *Result) {
	if p == nil || r == nil {
		return
	}
	p.publishKind("pulsed", runID, r.Pulsed)
	p.publishKind("two_tone", runID, r.TwoTone)
	p.publishKind("long", runID, r.Long)
	p.publishKind("hi_low", runID, r.HiLow)
}

func (p *Publisher) publishKind(kind, runID string, hits interface{}) {
	payload := map[string]interface{}{
		"run_id": runID,
		"kind":   kind,
		"hits":   hits,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("icadtone MQTT: failed to marshal %s payload: %v", kind, err)
		return
	}

	topic := fmt.Sprintf("%s/%s", p.cfg.TopicPrefix, kind)
	token := p.client.Publish(topic, p.cfg.QoS, p.cfg.Retain, data)

	go func() {
		if token.Wait() && token.Error() != nil {
			log.Printf("icadtone MQTT: failed to publish to %s: %v", topic, token.Error())
		}
	}()
}

// Disconnect gracefully closes the connection to the broker.
func (p *Publisher) Disconnect() {
	if p != nil && p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
