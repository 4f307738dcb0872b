package websocket

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHub_Publish(t *testing.T) {
	hub := NewHub()
	c := newMockClient("c", 1)
	hub.Register(c)

	var publisher EventPublisher = hub
	publisher.Publish(1, InstallmentPaid(map[string]interface{}{"id": "inst_1_1"}))

	assert.Len(t, c.Messages(), 1)
}

func TestHub_PublishAll(t *testing.T) {
	hub := NewHub()
	a := newMockClient("a", 1)
	b := newMockClient("b", 2)
	hub.Register(a)
	hub.Register(b)

	hub.PublishAll(RatesUpdated(map[string]interface{}{"source": "file"}))

	assert.Len(t, a.Messages(), 1)
	assert.Len(t, b.Messages(), 1)
}

func TestNoOpPublisher(t *testing.T) {
	var publisher EventPublisher = &NoOpPublisher{}
	assert.NotPanics(t, func() {
		publisher.Publish(1, CardCreated(nil))
		publisher.PublishAll(RatesUpdated(nil))
	})
}
