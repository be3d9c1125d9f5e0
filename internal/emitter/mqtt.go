// Package emitter publishes recognized sign labels to an MQTT broker.
package emitter

import (
	"crypto/tls"
	"fmt"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// DefaultTopic is the topic recognized labels are published to.
const DefaultTopic = "mudra/recognitions"

// Config holds MQTT connection settings.
type Config struct {
	Broker          string // host name or IP
	Port            int
	Topic           string
	Username        string
	Password        string
	UseTLS          bool
	InsecureSkipTLS bool
}

// Emitter publishes each recognized label transition to an MQTT topic. It is
// registered as an analyzer listener; repeated publications of an unchanged
// output are deduplicated so the topic carries transitions only.
type Emitter struct {
	config Config
	client mqtt.Client

	mu        sync.Mutex
	lastLabel string
}

// New creates an Emitter. Connect must be called before it publishes anything.
func New(config Config) *Emitter {
	if config.Topic == "" {
		config.Topic = DefaultTopic
	}
	return &Emitter{config: config}
}

// Connect establishes the broker connection with automatic reconnection.
func (e *Emitter) Connect() error {
	opts := mqtt.NewClientOptions()

	protocol := "tcp"
	if e.config.UseTLS {
		protocol = "tls"
	}
	brokerURL := fmt.Sprintf("%s://%s:%d", protocol, e.config.Broker, e.config.Port)
	opts.AddBroker(brokerURL)

	clientID := fmt.Sprintf("mudra-emitter-%d", time.Now().Unix())
	opts.SetClientID(clientID)

	if e.config.Username != "" {
		opts.SetUsername(e.config.Username)
		opts.SetPassword(e.config.Password)
	}

	if e.config.UseTLS {
		opts.SetTLSConfig(&tls.Config{
			InsecureSkipVerify: e.config.InsecureSkipTLS,
		})
	}

	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetConnectTimeout(10 * time.Second)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(30 * time.Second)

	opts.OnConnect = func(mqtt.Client) {
		log.Printf("[MQTT] Connected to %s", brokerURL)
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Printf("[MQTT] Connection lost: %v", err)
	}
	opts.OnReconnecting = func(mqtt.Client, *mqtt.ClientOptions) {
		log.Printf("[MQTT] Reconnecting to %s...", brokerURL)
	}

	e.client = mqtt.NewClient(opts)

	log.Printf("[MQTT] Connecting to %s as %s...", brokerURL, clientID)

	token := e.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("MQTT connect timeout")
	}
	if token.Error() != nil {
		return fmt.Errorf("MQTT connect failed: %w", token.Error())
	}

	return nil
}

// OnOutput is the analyzer listener. It publishes the label when it differs
// from the last published one; the per-frame republication of an unchanged
// output is dropped here.
func (e *Emitter) OnOutput(label string) {
	e.mu.Lock()
	if label == "" || label == e.lastLabel {
		e.mu.Unlock()
		return
	}
	e.lastLabel = label
	client := e.client
	e.mu.Unlock()

	if client == nil || !client.IsConnected() {
		return
	}

	token := client.Publish(e.config.Topic, 0, false, label)
	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			log.Printf("[MQTT] Publish failed: %v", err)
		}
	}()
}

// Close disconnects from the broker.
func (e *Emitter) Close() {
	e.mu.Lock()
	client := e.client
	e.client = nil
	e.mu.Unlock()

	if client != nil {
		client.Disconnect(250)
	}
}
