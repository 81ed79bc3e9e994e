package messaging

import (
	"context"
	"testing"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilClientIsNoop(t *testing.T) {
	client, err := NewNATS(context.Background(), config.NATS{})
	require.NoError(t, err)
	assert.Nil(t, client)

	assert.NoError(t, client.Publish(context.Background(), "audit.entry.created", []byte("{}"), "1"))
	assert.NoError(t, client.PublishJSON(context.Background(), "audit.entry.created", map[string]int{"id": 1}, "1"))
	assert.Nil(t, client.JetStream())
	client.Close()
}

func TestStreamSubjects(t *testing.T) {
	got := streamSubjects(config.NATS{AuditSubject: "audit.entry.created", NotificationSubject: "notification.created"})
	assert.Equal(t, []string{"audit.entry.created", "notification.created"}, got)

	got = streamSubjects(config.NATS{AuditSubject: "a", NotificationSubject: "a"})
	assert.Equal(t, []string{"a"}, got)
}

func TestSameSubjects(t *testing.T) {
	assert.True(t, sameSubjects([]string{"a", "b"}, []string{"b", "a"}))
	assert.False(t, sameSubjects([]string{"a", "a"}, []string{"a", "b"}))
	assert.False(t, sameSubjects([]string{"a"}, []string{"a", "b"}))
}
