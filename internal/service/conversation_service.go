package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"skab-service/internal/events"
	"skab-service/internal/models"
	"skab-service/internal/repositories/mongodb"
	"skab-service/pkg/apperr"
	"skab-service/pkg/logger"

	"gorm.io/gorm"
)

type ConversationService interface {
	// Send validates, appends the message with a store-assigned timestamp
	// and publishes it to the live feed.
	Send(ctx context.Context, authorID, peerID uint, text string) (*models.Message, error)
	// History returns the full conversation in ascending creation order;
	// live deltas arrive over the websocket feed.
	History(ctx context.Context, selfID, peerID uint) ([]models.Message, error)
	// DeleteMessage hard-deletes a message; only its author may do so.
	DeleteMessage(ctx context.Context, requesterID uint, messageID string) error
}

type conversationService struct {
	messages MessageStore
	graph    RelationshipStore
	users    UserStore
	bus      *events.Bus
	log      *logger.Logger
}

func NewConversationService(messages MessageStore, graph RelationshipStore, users UserStore, bus *events.Bus, log *logger.Logger) ConversationService {
	return &conversationService{messages: messages, graph: graph, users: users, bus: bus, log: log}
}

func (s *conversationService) Send(ctx context.Context, authorID, peerID uint, text string) (*models.Message, error) {
	if authorID == peerID {
		return nil, apperr.Validation("cannot message yourself")
	}
	if strings.TrimSpace(text) == "" {
		return nil, apperr.Validation("message text must not be empty")
	}
	if utf8.RuneCountInString(text) > models.MaxMessageLength {
		return nil, apperr.Validation("message exceeds 2000 characters")
	}

	if blocked, err := s.graph.BlockExistsBetween(ctx, authorID, peerID); err != nil {
		return nil, apperr.Transport("failed to check blocks", err)
	} else if blocked {
		return nil, apperr.Permission("cannot send message to a blocked user")
	}

	author, err := s.users.FindByID(ctx, authorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Transport("failed to load author", err)
	}

	msg := &models.Message{
		ConversationKey:     models.ConversationKey(authorID, peerID),
		AuthorID:            author.ID,
		AuthorName:          author.Username,
		AuthorDiscriminator: author.Discriminator,
		Text:                text,
	}
	if err := s.messages.Insert(ctx, msg); err != nil {
		return nil, apperr.Transport("failed to send message", err)
	}

	s.bus.Publish(events.MessageCreated{Message: *msg, PeerID: peerID})
	return msg, nil
}

func (s *conversationService) History(ctx context.Context, selfID, peerID uint) ([]models.Message, error) {
	if selfID == peerID {
		return nil, apperr.Validation("no conversation with yourself")
	}
	messages, err := s.messages.ListByConversation(ctx, models.ConversationKey(selfID, peerID))
	if err != nil {
		return nil, apperr.Transport("failed to load messages", err)
	}
	return messages, nil
}

func (s *conversationService) DeleteMessage(ctx context.Context, requesterID uint, messageID string) error {
	msg, err := s.messages.FindByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, mongodb.ErrMessageNotFound) {
			return apperr.NotFound("message not found")
		}
		return apperr.Transport("failed to load message", err)
	}
	if msg.AuthorID != requesterID {
		return apperr.Permission("only the author can delete a message")
	}
	if err := s.messages.Delete(ctx, messageID); err != nil {
		return apperr.Transport("failed to delete message", err)
	}

	s.bus.Publish(events.MessageDeleted{
		ConversationKey: msg.ConversationKey,
		MessageID:       messageID,
		AuthorID:        requesterID,
	})
	return nil
}
