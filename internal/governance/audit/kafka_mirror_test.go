package audit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landledger.io/registry/internal/config"
	"landledger.io/registry/internal/domain"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaMirror_Handle(t *testing.T) {
	w := &fakeWriter{}
	m := newKafkaMirror(w, "registry.audit")

	payload, err := domain.AuditPayload{Entry: domain.AuditEntry{ID: "audit-1", Details: "Registered deed: D001 for land L001"}}.ToJSON()
	require.NoError(t, err)
	evt := domain.NewEvent(domain.EventDeedRegistered, "deed", "D001", "Admin", payload)

	require.NoError(t, m.Handle(context.Background(), evt))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "deed:D001", string(msg.Key))

	var decoded domain.DomainEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, evt.EventID, decoded.EventID)
	assert.Equal(t, domain.EventDeedRegistered, decoded.EventType)
	assert.JSONEq(t, string(payload), string(decoded.Payload))

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "DEED_REGISTERED", headers["event_type"])
	assert.Equal(t, evt.EventID, headers["event_id"])

	require.NoError(t, m.Close())
	assert.True(t, w.closed)
}

func TestKafkaMirror_HandleWriteError(t *testing.T) {
	m := newKafkaMirror(&fakeWriter{err: errors.New("broker down")}, "registry.audit")
	err := m.Handle(context.Background(), domain.NewEvent(domain.EventDeedDeleted, "deed", "D001", "Admin", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

func TestNewKafkaMirror_RequiresConfig(t *testing.T) {
	_, err := NewKafkaMirror(config.KafkaConfig{Topic: "registry.audit"})
	require.Error(t, err)

	m, err := NewKafkaMirror(config.KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "registry.audit"})
	require.NoError(t, err)
	require.NotNil(t, m)
	require.NoError(t, m.Close())
}
