package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxMessageLength caps message text, matching the client-side limit.
const MaxMessageLength = 2000

// Message is an immutable direct message. The only permitted mutation is a
// hard delete by its author. Ordering within a conversation is by CreatedAt
// ascending with ObjectID insertion order as the tie break.
type Message struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ConversationKey     string             `bson:"conversation_key" json:"conversationKey"`
	AuthorID            uint               `bson:"author_id" json:"authorId"`
	AuthorName          string             `bson:"author_name" json:"authorName"`
	AuthorDiscriminator string             `bson:"author_discriminator" json:"authorDiscriminator"`
	Text                string             `bson:"text" json:"text"`
	CreatedAt           time.Time          `bson:"created_at" json:"createdAt"`
}

// ConversationKey is the canonical identifier for a two-party thread: the
// participant ids sorted numerically and joined. Decimal rendering of uints
// is injective, so the sorted join is too. A conversation is an addressing
// function, not a stored record.
func ConversationKey(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d_%d", a, b)
}
