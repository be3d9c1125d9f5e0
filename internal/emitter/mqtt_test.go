package emitter

import (
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// fakeToken satisfies mqtt.Token without a broker.
type fakeToken struct{}

func (fakeToken) Wait() bool                     { return true }
func (fakeToken) WaitTimeout(time.Duration) bool { return true }
func (fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (fakeToken) Error() error { return nil }

// fakeClient records published payloads.
type fakeClient struct {
	published []string
	topics    []string
}

func (f *fakeClient) IsConnected() bool       { return true }
func (f *fakeClient) IsConnectionOpen() bool  { return true }
func (f *fakeClient) Connect() mqtt.Token     { return fakeToken{} }
func (f *fakeClient) Disconnect(quiesce uint) {}
func (f *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	f.topics = append(f.topics, topic)
	f.published = append(f.published, payload.(string))
	return fakeToken{}
}
func (f *fakeClient) Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token {
	return fakeToken{}
}
func (f *fakeClient) SubscribeMultiple(filters map[string]byte, callback mqtt.MessageHandler) mqtt.Token {
	return fakeToken{}
}
func (f *fakeClient) Unsubscribe(topics ...string) mqtt.Token      { return fakeToken{} }
func (f *fakeClient) AddRoute(topic string, h mqtt.MessageHandler) {}
func (f *fakeClient) OptionsReader() mqtt.ClientOptionsReader      { return mqtt.ClientOptionsReader{} }

func TestEmitter_PublishesTransitionsOnly(t *testing.T) {
	fake := &fakeClient{}
	e := New(Config{Broker: "localhost", Port: 1883})
	e.client = fake

	// The analyzer republishes the output every frame; only changes go out.
	e.OnOutput("")
	e.OnOutput("hello")
	e.OnOutput("hello")
	e.OnOutput("hello")
	e.OnOutput("thank you")
	e.OnOutput("thank you")

	want := []string{"hello", "thank you"}
	if len(fake.published) != len(want) {
		t.Fatalf("published %d messages, want %d: %v", len(fake.published), len(want), fake.published)
	}
	for i, label := range want {
		if fake.published[i] != label {
			t.Errorf("message %d = %q, want %q", i, fake.published[i], label)
		}
	}
	for _, topic := range fake.topics {
		if topic != DefaultTopic {
			t.Errorf("topic = %q, want %q", topic, DefaultTopic)
		}
	}
}

func TestEmitter_NoClientNoPanic(t *testing.T) {
	e := New(Config{Broker: "localhost", Port: 1883, Topic: "custom/topic"})

	// Not connected: labels are tracked but nothing is published.
	e.OnOutput("hello")
	e.Close()
}

func TestNew_DefaultTopic(t *testing.T) {
	e := New(Config{Broker: "localhost", Port: 1883})
	if e.config.Topic != DefaultTopic {
		t.Errorf("Topic = %q, want %q", e.config.Topic, DefaultTopic)
	}
}
