package service

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"skab-service/internal/events"
	"skab-service/internal/models"
	"skab-service/pkg/apperr"
	"skab-service/pkg/logger"

	"gorm.io/gorm"
)

const messagePreviewLength = 30

type NotificationService interface {
	// Start subscribes the fanout to the event bus. Each qualifying mutation
	// produces exactly one notification for its natural recipient, never for
	// the actor. Delivery is best-effort: a failed inbox write is logged and
	// swallowed, never propagated to the triggering caller.
	Start()

	Recent(ctx context.Context, ownerID uint) ([]models.Notification, error)
	MarkRead(ctx context.Context, ownerID, notificationID uint) error
	MarkAllRead(ctx context.Context, ownerID uint) error
}

type notificationService struct {
	inbox NotificationStore
	bus   *events.Bus
	log   *logger.Logger
}

func NewNotificationService(inbox NotificationStore, bus *events.Bus, log *logger.Logger) NotificationService {
	return &notificationService{inbox: inbox, bus: bus, log: log}
}

func (s *notificationService) Start() {
	s.bus.Subscribe(s.handleEvent,
		events.TypeRequestSent,
		events.TypeRequestAccepted,
		events.TypeMessageCreated,
	)
}

func (s *notificationService) handleEvent(e events.Event) {
	switch ev := e.(type) {
	case events.RequestSent:
		s.deliver(&models.Notification{
			OwnerID:     ev.Request.ToID,
			Type:        models.NotificationRequestReceived,
			ActorID:     ev.Request.FromID,
			ActorName:   ev.Request.FromName,
			ActorAvatar: ev.Request.FromAvatar,
			Message:     fmt.Sprintf("%s sent you a friend request.", ev.Request.FromName),
			Link:        fmt.Sprintf("/profile/%d", ev.Request.FromID),
		})
	case events.RequestAccepted:
		// The original requester gets notified by the accepting side.
		s.deliver(&models.Notification{
			OwnerID:     ev.Request.FromID,
			Type:        models.NotificationRequestAccepted,
			ActorID:     ev.Request.ToID,
			ActorName:   ev.Request.ToName,
			ActorAvatar: ev.Request.ToAvatar,
			Message:     fmt.Sprintf("%s accepted your friend request.", ev.Request.ToName),
			Link:        fmt.Sprintf("/profile/%d", ev.Request.ToID),
		})
	case events.MessageCreated:
		s.deliver(&models.Notification{
			OwnerID:   ev.PeerID,
			Type:      models.NotificationNewMessage,
			ActorID:   ev.Message.AuthorID,
			ActorName: ev.Message.AuthorName,
			Message:   fmt.Sprintf("%s: %s", ev.Message.AuthorName, preview(ev.Message.Text)),
			Link:      fmt.Sprintf("/chat/%d", ev.Message.AuthorID),
		})
	}
}

func (s *notificationService) deliver(n *models.Notification) {
	if err := s.inbox.Create(context.Background(), n); err != nil {
		s.log.Error("Failed to deliver notification", "ownerID", n.OwnerID, "type", n.Type, "error", err)
		return
	}
	s.bus.Publish(events.NotificationCreated{Notification: *n})
}

// preview truncates on rune boundaries so multibyte text never gets cut
// mid-character.
func preview(text string) string {
	if utf8.RuneCountInString(text) <= messagePreviewLength {
		return text
	}
	return string([]rune(text)[:messagePreviewLength]) + "..."
}

func (s *notificationService) Recent(ctx context.Context, ownerID uint) ([]models.Notification, error) {
	notifications, err := s.inbox.ListRecent(ctx, ownerID)
	if err != nil {
		return nil, apperr.Transport("failed to list notifications", err)
	}
	return notifications, nil
}

func (s *notificationService) MarkRead(ctx context.Context, ownerID, notificationID uint) error {
	n, err := s.inbox.FindByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("notification not found")
		}
		return apperr.Transport("failed to load notification", err)
	}
	if n.OwnerID != ownerID {
		return apperr.Permission("notification belongs to another user")
	}
	if n.IsRead {
		return nil
	}
	if err := s.inbox.MarkRead(ctx, notificationID); err != nil {
		return apperr.Transport("failed to mark notification read", err)
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, ownerID uint) error {
	if err := s.inbox.MarkAllRead(ctx, ownerID); err != nil {
		return apperr.Transport("failed to mark notifications read", err)
	}
	return nil
}
