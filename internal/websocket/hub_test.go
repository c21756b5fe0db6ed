package websocket

import (
	"encoding/json"
	"testing"

	"skab-service/internal/events"
	"skab-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParticipatesIn(t *testing.T) {
	assert.True(t, participatesIn(1, "1_2"))
	assert.True(t, participatesIn(2, "1_2"))
	assert.False(t, participatesIn(3, "1_2"))

	// Only the canonical rendering is accepted.
	assert.False(t, participatesIn(1, "2_1"))
	assert.False(t, participatesIn(1, "1_2_3"))
	assert.False(t, participatesIn(1, "a_b"))
	assert.False(t, participatesIn(1, ""))
}

func TestEnvelopeForMessageCreated(t *testing.T) {
	env, ok := envelopeFor(events.MessageCreated{
		Message: models.Message{ConversationKey: "1_2", AuthorID: 1, Text: "hi"},
		PeerID:  2,
	})
	require.True(t, ok)
	assert.Equal(t, "message.created", env.Type)
	assert.Equal(t, "1_2", env.ConversationKey)
	assert.Equal(t, []uint{1, 2}, env.TargetUserIDs)

	var msg models.Message
	require.NoError(t, json.Unmarshal(env.Data, &msg))
	assert.Equal(t, "hi", msg.Text)
}

func TestEnvelopeForNotificationTargetsOwner(t *testing.T) {
	env, ok := envelopeFor(events.NotificationCreated{
		Notification: models.Notification{OwnerID: 7, Type: models.NotificationNewMessage},
	})
	require.True(t, ok)
	assert.Equal(t, "notification.created", env.Type)
	assert.Empty(t, env.ConversationKey)
	assert.Equal(t, []uint{7}, env.TargetUserIDs)
}

func TestEnvelopeForMessageDeleted(t *testing.T) {
	env, ok := envelopeFor(events.MessageDeleted{ConversationKey: "1_2", MessageID: "abc"})
	require.True(t, ok)
	assert.Equal(t, "message.deleted", env.Type)
	assert.Equal(t, "1_2", env.ConversationKey)
	assert.Empty(t, env.TargetUserIDs)
}

// Relationship events stay off the live feed; they surface as notifications.
func TestEnvelopeForUnrelatedEvent(t *testing.T) {
	_, ok := envelopeFor(events.RequestSent{})
	assert.False(t, ok)
}
