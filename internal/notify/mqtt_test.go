package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doneToken struct {
	err  error
	done chan struct{}
}

func newDoneToken(err error) *doneToken {
	t := &doneToken{err: err, done: make(chan struct{})}
	close(t.done)
	return t
}

func (t *doneToken) Wait() bool                       { <-t.done; return true }
func (t *doneToken) WaitTimeout(d time.Duration) bool { return true }
func (t *doneToken) Done() <-chan struct{}            { return t.done }
func (t *doneToken) Error() error                     { return t.err }

type fakeClient struct {
	mu       sync.Mutex
	topics   []string
	payloads [][]byte
	err      error
}

func (f *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topics = append(f.topics, topic)
	f.payloads = append(f.payloads, payload.([]byte))
	return newDoneToken(f.err)
}

type fakeInvalidator struct{ calls int }

func (f *fakeInvalidator) Invalidate(context.Context) error {
	f.calls++
	return errors.New("redis down")
}

func TestChangesPublishesAndInvalidates(t *testing.T) {
	client := &fakeClient{}
	inv := &fakeInvalidator{}
	changes := NewChanges(newMQTTPublisher(client), inv)

	changes.MosqueChanged(context.Background(), "m1", "prayer_times")

	assert.Equal(t, 1, inv.calls)
	require.Equal(t, []string{"mosques/m1/updated"}, client.topics)
	var msg Change
	require.NoError(t, json.Unmarshal(client.payloads[0], &msg))
	assert.Equal(t, "m1", msg.MosqueID)
	assert.Equal(t, "prayer_times", msg.Kind)
}

func TestPublishReturnsBrokerError(t *testing.T) {
	p := newMQTTPublisher(&fakeClient{err: errors.New("not connected")})
	err := p.Publish(context.Background(), "mosques/m1/updated", []byte("{}"))
	assert.ErrorContains(t, err, "not connected")
}

func TestChangesWithoutPublisher(t *testing.T) {
	changes := NewChanges(nil)
	assert.NotPanics(t, func() {
		changes.MosqueChanged(context.Background(), "m1", "updated")
	})
}
