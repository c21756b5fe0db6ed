package service

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"skab-service/internal/events"
	"skab-service/internal/models"
	"skab-service/pkg/apperr"
	"skab-service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNotificationFixture(t *testing.T) (NotificationService, *fakeNotificationStore, *events.Bus) {
	t.Helper()
	inbox := newFakeNotificationStore()
	bus := events.NewBus(logger.New("test"))
	svc := NewNotificationService(inbox, bus, logger.New("test"))
	svc.Start()
	return svc, inbox, bus
}

func TestRequestSentNotifiesRecipientOnly(t *testing.T) {
	_, inbox, bus := newNotificationFixture(t)

	bus.Publish(events.RequestSent{Request: models.FriendRequest{
		FromID:   1,
		ToID:     2,
		FromName: "alice",
	}})

	require.Len(t, inbox.notifications, 1)
	n := inbox.notifications[0]
	assert.Equal(t, uint(2), n.OwnerID)
	assert.Equal(t, models.NotificationRequestReceived, n.Type)
	assert.Equal(t, uint(1), n.ActorID)
	assert.Equal(t, "alice sent you a friend request.", n.Message)
	assert.Equal(t, "/profile/1", n.Link)
	assert.False(t, n.IsRead)
}

func TestRequestAcceptedNotifiesRequester(t *testing.T) {
	_, inbox, bus := newNotificationFixture(t)

	bus.Publish(events.RequestAccepted{Request: models.FriendRequest{
		FromID: 1,
		ToID:   2,
		ToName: "bob",
		Status: models.RequestStatusAccepted,
	}})

	require.Len(t, inbox.notifications, 1)
	n := inbox.notifications[0]
	assert.Equal(t, uint(1), n.OwnerID)
	assert.Equal(t, models.NotificationRequestAccepted, n.Type)
	assert.Equal(t, "bob accepted your friend request.", n.Message)
	assert.Equal(t, "/profile/2", n.Link)
}

func TestMessageCreatedNotifiesPeerWithPreview(t *testing.T) {
	_, inbox, bus := newNotificationFixture(t)

	long := strings.Repeat("x", 100)
	bus.Publish(events.MessageCreated{
		Message: models.Message{AuthorID: 1, AuthorName: "alice", Text: long},
		PeerID:  2,
	})

	require.Len(t, inbox.notifications, 1)
	n := inbox.notifications[0]
	assert.Equal(t, uint(2), n.OwnerID)
	assert.Equal(t, models.NotificationNewMessage, n.Type)
	assert.Equal(t, "alice: "+strings.Repeat("x", 30)+"...", n.Message)
}

// Truncation must land on character boundaries; a preview of multibyte
// text stays valid UTF-8.
func TestPreviewTruncatesOnCharacterBoundary(t *testing.T) {
	_, inbox, bus := newNotificationFixture(t)

	bus.Publish(events.MessageCreated{
		Message: models.Message{AuthorID: 1, AuthorName: "alice", Text: strings.Repeat("好", 40)},
		PeerID:  2,
	})

	require.Len(t, inbox.notifications, 1)
	got := inbox.notifications[0].Message
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "alice: "+strings.Repeat("好", 30)+"...", got)
}

func TestShortMessageNotTruncated(t *testing.T) {
	_, inbox, bus := newNotificationFixture(t)

	bus.Publish(events.MessageCreated{
		Message: models.Message{AuthorID: 1, AuthorName: "alice", Text: "hey"},
		PeerID:  2,
	})

	require.Len(t, inbox.notifications, 1)
	assert.Equal(t, "alice: hey", inbox.notifications[0].Message)
}

// A failed inbox write never reaches the publisher.
func TestDeliveryFailureIsSwallowed(t *testing.T) {
	_, inbox, bus := newNotificationFixture(t)
	inbox.createErr = assert.AnError

	var forwarded int
	bus.Subscribe(func(events.Event) { forwarded++ }, events.TypeNotification)

	assert.NotPanics(t, func() {
		bus.Publish(events.RequestSent{Request: models.FriendRequest{FromID: 1, ToID: 2}})
	})
	assert.Empty(t, inbox.notifications)
	assert.Zero(t, forwarded)
}

func TestSuccessfulDeliveryForwardedToLiveFeed(t *testing.T) {
	_, _, bus := newNotificationFixture(t)

	var forwarded []events.NotificationCreated
	bus.Subscribe(func(e events.Event) {
		forwarded = append(forwarded, e.(events.NotificationCreated))
	}, events.TypeNotification)

	bus.Publish(events.RequestSent{Request: models.FriendRequest{FromID: 1, ToID: 2, FromName: "alice"}})

	require.Len(t, forwarded, 1)
	assert.Equal(t, uint(2), forwarded[0].Notification.OwnerID)
}

func TestMarkRead(t *testing.T) {
	svc, inbox, bus := newNotificationFixture(t)
	ctx := context.Background()

	bus.Publish(events.RequestSent{Request: models.FriendRequest{FromID: 1, ToID: 2}})
	require.Len(t, inbox.notifications, 1)
	id := inbox.notifications[0].ID

	// Wrong owner.
	assert.True(t, apperr.IsPermission(svc.MarkRead(ctx, 1, id)))

	require.NoError(t, svc.MarkRead(ctx, 2, id))
	assert.True(t, inbox.notifications[0].IsRead)

	// Marking read twice is a no-op.
	require.NoError(t, svc.MarkRead(ctx, 2, id))

	assert.True(t, apperr.IsNotFound(svc.MarkRead(ctx, 2, 999)))
}

func TestMarkAllRead(t *testing.T) {
	svc, inbox, bus := newNotificationFixture(t)
	ctx := context.Background()

	bus.Publish(events.RequestSent{Request: models.FriendRequest{FromID: 1, ToID: 2}})
	bus.Publish(events.MessageCreated{Message: models.Message{AuthorID: 1, AuthorName: "alice", Text: "hi"}, PeerID: 2})
	bus.Publish(events.RequestSent{Request: models.FriendRequest{FromID: 2, ToID: 3}})

	require.NoError(t, svc.MarkAllRead(ctx, 2))

	for _, n := range inbox.notifications {
		if n.OwnerID == 2 {
			assert.True(t, n.IsRead)
		} else {
			assert.False(t, n.IsRead)
		}
	}
}

func TestRecentWindow(t *testing.T) {
	svc, _, bus := newNotificationFixture(t)
	ctx := context.Background()

	for i := 0; i < models.RecentNotificationLimit+10; i++ {
		bus.Publish(events.RequestSent{Request: models.FriendRequest{FromID: 1, ToID: 2}})
	}

	recent, err := svc.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, recent, models.RecentNotificationLimit)
}
