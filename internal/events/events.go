package events

import "skab-service/internal/models"

type Type string

const (
	TypeRequestSent       Type = "friend.request.sent"
	TypeRequestAccepted   Type = "friend.request.accepted"
	TypeRequestDeleted    Type = "friend.request.deleted"
	TypeFriendshipRemoved Type = "friend.removed"
	TypeUserBlocked       Type = "user.blocked"
	TypeUserUnblocked     Type = "user.unblocked"
	TypeMessageCreated    Type = "message.created"
	TypeMessageDeleted    Type = "message.deleted"
	TypeNotification      Type = "notification.created"
)

// Event is a typed change published by the write paths. Subscribers
// (notification fanout, the websocket hub, the kafka feed) consume these
// instead of hooking into the mutations directly.
type Event interface {
	EventType() Type
}

type RequestSent struct {
	Request models.FriendRequest
}

func (RequestSent) EventType() Type { return TypeRequestSent }

type RequestAccepted struct {
	Request models.FriendRequest
}

func (RequestAccepted) EventType() Type { return TypeRequestAccepted }

type RequestDeleted struct {
	FromID uint
	ToID   uint
}

func (RequestDeleted) EventType() Type { return TypeRequestDeleted }

type FriendshipRemoved struct {
	UserID   uint
	FriendID uint
}

func (FriendshipRemoved) EventType() Type { return TypeFriendshipRemoved }

type UserBlocked struct {
	BlockerID uint
	BlockedID uint
}

func (UserBlocked) EventType() Type { return TypeUserBlocked }

type UserUnblocked struct {
	BlockerID uint
	BlockedID uint
}

func (UserUnblocked) EventType() Type { return TypeUserUnblocked }

type MessageCreated struct {
	Message models.Message
	PeerID  uint
}

func (MessageCreated) EventType() Type { return TypeMessageCreated }

type MessageDeleted struct {
	ConversationKey string
	MessageID       string
	AuthorID        uint
}

func (MessageDeleted) EventType() Type { return TypeMessageDeleted }

type NotificationCreated struct {
	Notification models.Notification
}

func (NotificationCreated) EventType() Type { return TypeNotification }
