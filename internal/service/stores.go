package service

import (
	"context"

	"skab-service/internal/models"
)

// Store interfaces consumed by the services. The postgres and mongodb
// repositories satisfy them; tests substitute in-memory fakes.

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) (*models.User, error)
	Save(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	SearchByUsername(ctx context.Context, selfID uint, username string) ([]models.User, error)
}

type RelationshipStore interface {
	PendingRequest(ctx context.Context, fromID, toID uint) (*models.FriendRequest, error)
	CreateRequest(ctx context.Context, req *models.FriendRequest) error
	DeleteRequest(ctx context.Context, id uint) error
	AcceptRequest(ctx context.Context, req *models.FriendRequest, edges [2]*models.Friendship) error
	AreFriends(ctx context.Context, a, b uint) (bool, error)
	RemoveFriendship(ctx context.Context, a, b uint) error
	CreateBlock(ctx context.Context, block *models.Block) error
	GetBlock(ctx context.Context, blockerID, blockedID uint) (*models.Block, error)
	BlockExistsBetween(ctx context.Context, a, b uint) (bool, error)
	DeleteBlock(ctx context.Context, blockerID, blockedID uint) error
	ListFriends(ctx context.Context, ownerID uint) ([]models.Friendship, error)
	ListIncomingRequests(ctx context.Context, userID uint) ([]models.FriendRequest, error)
	ListOutgoingRequests(ctx context.Context, userID uint) ([]models.FriendRequest, error)
	ListBlocks(ctx context.Context, blockerID uint) ([]models.Block, error)
}

type MessageStore interface {
	Insert(ctx context.Context, msg *models.Message) error
	ListByConversation(ctx context.Context, key string) ([]models.Message, error)
	FindByID(ctx context.Context, id string) (*models.Message, error)
	Delete(ctx context.Context, id string) error
}

type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	ListRecent(ctx context.Context, ownerID uint) ([]models.Notification, error)
	FindByID(ctx context.Context, id uint) (*models.Notification, error)
	MarkRead(ctx context.Context, id uint) error
	MarkAllRead(ctx context.Context, ownerID uint) error
}
