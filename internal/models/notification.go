package models

import "gorm.io/gorm"

const (
	NotificationNewMessage      = "new_message"
	NotificationRequestReceived = "friend_request_received"
	NotificationRequestAccepted = "friend_request_accepted"
)

// RecentNotificationLimit bounds how many notifications are surfaced to a
// client; older entries stay in the table but are never listed.
const RecentNotificationLimit = 50

// Notification is a user-visible inbox entry derived from a relationship or
// conversation mutation. Only IsRead is ever mutated after creation.
type Notification struct {
	gorm.Model
	OwnerID     uint   `gorm:"not null;index" json:"ownerId"`
	Type        string `gorm:"not null;type:varchar(40)" json:"type"`
	ActorID     uint   `json:"actorId"`
	ActorName   string `json:"actorName"`
	ActorAvatar string `json:"actorAvatar"`
	Message     string `json:"message"`
	Link        string `json:"link"`
	IsRead      bool   `gorm:"not null;default:false" json:"isRead"`
}
