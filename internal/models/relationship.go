package models

import "time"

const (
	RequestStatusPending  = "pending"
	RequestStatusAccepted = "accepted"
)

// FriendRequest is a directed pending request. Declined or cancelled
// requests are deleted, not archived; accepted ones are kept as history.
// At most one pending request exists per unordered user pair.
//
// Relationship records are hard-deleted: a soft-delete column would keep
// dead rows inside the unique pair indexes and lock the pair out of the
// accepted -> none -> pending transitions.
type FriendRequest struct {
	ID                uint      `gorm:"primarykey" json:"id"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"-"`
	FromID            uint   `gorm:"not null;index:idx_request_pair" json:"fromId"`
	ToID              uint   `gorm:"not null;index:idx_request_pair" json:"toId"`
	FromName          string `json:"fromName"`
	FromDiscriminator string `gorm:"type:varchar(4)" json:"fromDiscriminator"`
	FromAvatar        string `json:"fromAvatar"`
	ToName            string `json:"toName"`
	ToDiscriminator   string `gorm:"type:varchar(4)" json:"toDiscriminator"`
	ToAvatar          string `json:"toAvatar"`
	Status            string `gorm:"not null;type:varchar(20);default:'pending'" json:"status"`
}

// Friendship is one directed edge of an accepted friendship, stored
// per-owner with a snapshot of the friend's display fields. Edges are
// always written and deleted in pairs: edge(A,B) exists iff edge(B,A) does.
type Friendship struct {
	ID                  uint      `gorm:"primarykey" json:"id"`
	CreatedAt           time.Time `json:"-"`
	UpdatedAt           time.Time `json:"-"`
	OwnerID             uint      `gorm:"not null;uniqueIndex:idx_friend_edge" json:"ownerId"`
	FriendID            uint      `gorm:"not null;uniqueIndex:idx_friend_edge" json:"friendId"`
	FriendName          string    `json:"friendName"`
	FriendDiscriminator string    `gorm:"type:varchar(4)" json:"friendDiscriminator"`
	FriendAvatar        string    `json:"friendAvatar"`
	FriendedAt          time.Time `json:"friendedAt"`
}

// Block is one-directional and owned by the blocker. Creating one removes
// any friendship edges and pending requests between the pair.
type Block struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
	BlockerID   uint      `gorm:"not null;uniqueIndex:idx_block_pair" json:"blockerId"`
	BlockedID   uint      `gorm:"not null;uniqueIndex:idx_block_pair" json:"blockedId"`
	BlockedName string    `json:"blockedName"`
	BlockedAt   time.Time `json:"blockedAt"`
}
