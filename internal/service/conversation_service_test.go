package service

import (
	"context"
	"strings"
	"testing"

	"skab-service/internal/events"
	"skab-service/internal/models"
	"skab-service/pkg/apperr"
	"skab-service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConversationFixture(t *testing.T) (ConversationService, *fakeMessageStore, *fakeRelationshipStore, *events.Bus) {
	t.Helper()
	messages := newFakeMessageStore()
	graph := newFakeRelationshipStore()
	users := newFakeUserStore()
	users.add(&models.User{Email: "alice@skab.local", Username: "alice", Discriminator: "1000"})
	users.add(&models.User{Email: "bob@skab.local", Username: "bob", Discriminator: "2000"})
	bus := events.NewBus(logger.New("test"))
	svc := NewConversationService(messages, graph, users, bus, logger.New("test"))
	return svc, messages, graph, bus
}

func TestSendMessage(t *testing.T) {
	svc, _, _, bus := newConversationFixture(t)
	ctx := context.Background()

	var created []events.MessageCreated
	bus.Subscribe(func(e events.Event) {
		created = append(created, e.(events.MessageCreated))
	}, events.TypeMessageCreated)

	msg, err := svc.Send(ctx, 1, 2, "hello bob")
	require.NoError(t, err)
	assert.Equal(t, "1_2", msg.ConversationKey)
	assert.Equal(t, "alice", msg.AuthorName)
	assert.Equal(t, "1000", msg.AuthorDiscriminator)
	assert.False(t, msg.CreatedAt.IsZero())

	require.Len(t, created, 1)
	assert.Equal(t, uint(2), created[0].PeerID)
}

func TestSendMessageValidation(t *testing.T) {
	svc, _, _, _ := newConversationFixture(t)
	ctx := context.Background()

	_, err := svc.Send(ctx, 1, 1, "hi me")
	assert.True(t, apperr.IsValidation(err))

	_, err = svc.Send(ctx, 1, 2, "   ")
	assert.True(t, apperr.IsValidation(err))

	_, err = svc.Send(ctx, 1, 2, strings.Repeat("a", models.MaxMessageLength+1))
	assert.True(t, apperr.IsValidation(err))

	// Exactly at the limit is fine.
	_, err = svc.Send(ctx, 1, 2, strings.Repeat("a", models.MaxMessageLength))
	assert.NoError(t, err)
}

// The limit counts characters, not bytes. A message of 2000 multibyte
// characters is at the limit even though it is 6000 bytes long.
func TestSendMessageLimitCountsCharacters(t *testing.T) {
	svc, _, _, _ := newConversationFixture(t)
	ctx := context.Background()

	_, err := svc.Send(ctx, 1, 2, strings.Repeat("好", models.MaxMessageLength))
	assert.NoError(t, err)

	_, err = svc.Send(ctx, 1, 2, strings.Repeat("好", models.MaxMessageLength+1))
	assert.True(t, apperr.IsValidation(err))
}

func TestSendMessageBlockedEitherDirection(t *testing.T) {
	svc, _, graph, _ := newConversationFixture(t)
	ctx := context.Background()

	require.NoError(t, graph.CreateBlock(ctx, &models.Block{BlockerID: 2, BlockedID: 1}))

	_, err := svc.Send(ctx, 1, 2, "hello?")
	assert.True(t, apperr.IsPermission(err))
	_, err = svc.Send(ctx, 2, 1, "go away")
	assert.True(t, apperr.IsPermission(err))
}

// Both participants resolve the same thread regardless of direction.
func TestHistorySharedBetweenDirections(t *testing.T) {
	svc, _, _, _ := newConversationFixture(t)
	ctx := context.Background()

	_, err := svc.Send(ctx, 1, 2, "first")
	require.NoError(t, err)
	_, err = svc.Send(ctx, 2, 1, "second")
	require.NoError(t, err)

	fromAlice, err := svc.History(ctx, 1, 2)
	require.NoError(t, err)
	fromBob, err := svc.History(ctx, 2, 1)
	require.NoError(t, err)

	require.Len(t, fromAlice, 2)
	assert.Equal(t, fromAlice, fromBob)
	assert.Equal(t, "first", fromAlice[0].Text)
	assert.Equal(t, "second", fromAlice[1].Text)

	_, err = svc.History(ctx, 1, 1)
	assert.True(t, apperr.IsValidation(err))
}

func TestDeleteMessageAuthorOnly(t *testing.T) {
	svc, messages, _, bus := newConversationFixture(t)
	ctx := context.Background()

	var deleted []events.MessageDeleted
	bus.Subscribe(func(e events.Event) {
		deleted = append(deleted, e.(events.MessageDeleted))
	}, events.TypeMessageDeleted)

	msg, err := svc.Send(ctx, 1, 2, "oops")
	require.NoError(t, err)

	err = svc.DeleteMessage(ctx, 2, msg.ID.Hex())
	assert.True(t, apperr.IsPermission(err))
	assert.Len(t, messages.messages, 1)

	require.NoError(t, svc.DeleteMessage(ctx, 1, msg.ID.Hex()))
	assert.Empty(t, messages.messages)

	require.Len(t, deleted, 1)
	assert.Equal(t, msg.ID.Hex(), deleted[0].MessageID)
	assert.Equal(t, "1_2", deleted[0].ConversationKey)

	err = svc.DeleteMessage(ctx, 1, msg.ID.Hex())
	assert.True(t, apperr.IsNotFound(err))
}
