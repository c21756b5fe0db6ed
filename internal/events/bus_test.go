package events

import (
	"testing"

	"skab-service/internal/models"
	"skab-service/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func TestBusDispatchesToSubscribedTypesOnly(t *testing.T) {
	bus := NewBus(logger.New("test"))

	var got []Type
	bus.Subscribe(func(e Event) { got = append(got, e.EventType()) }, TypeRequestSent, TypeUserBlocked)

	bus.Publish(RequestSent{Request: models.FriendRequest{FromID: 1, ToID: 2}})
	bus.Publish(MessageCreated{Message: models.Message{AuthorID: 1}, PeerID: 2})
	bus.Publish(UserBlocked{BlockerID: 1, BlockedID: 2})

	assert.Equal(t, []Type{TypeRequestSent, TypeUserBlocked}, got)
}

func TestBusMultipleHandlersAllRun(t *testing.T) {
	bus := NewBus(logger.New("test"))

	var first, second int
	bus.Subscribe(func(Event) { first++ }, TypeMessageCreated)
	bus.Subscribe(func(Event) { second++ }, TypeMessageCreated)

	bus.Publish(MessageCreated{Message: models.Message{AuthorID: 1}, PeerID: 2})

	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)
}

// A panicking subscriber neither reaches the publisher nor starves the
// remaining subscribers.
func TestBusRecoversPanickingHandler(t *testing.T) {
	bus := NewBus(logger.New("test"))

	var after int
	bus.Subscribe(func(Event) { panic("boom") }, TypeMessageCreated)
	bus.Subscribe(func(Event) { after++ }, TypeMessageCreated)

	assert.NotPanics(t, func() {
		bus.Publish(MessageCreated{Message: models.Message{AuthorID: 1}, PeerID: 2})
	})
	assert.Equal(t, 1, after)
}

func TestBusNoSubscribers(t *testing.T) {
	bus := NewBus(logger.New("test"))
	assert.NotPanics(t, func() {
		bus.Publish(UserUnblocked{BlockerID: 1, BlockedID: 2})
	})
}
