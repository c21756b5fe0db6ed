package mongodb

import (
	"context"
	"errors"
	"time"

	"skab-service/internal/database"
	"skab-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrMessageNotFound = errors.New("message not found")

const messageCollection = "messages"

type MessageRepository struct {
	db *database.MongoDB
}

func NewMessageRepository(db *database.MongoDB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) collection() *mongo.Collection {
	return r.db.DB.Collection(messageCollection)
}

// Insert appends the message with a store-assigned timestamp and id.
func (r *MessageRepository) Insert(ctx context.Context, msg *models.Message) error {
	msg.CreatedAt = time.Now().UTC()
	res, err := r.collection().InsertOne(ctx, msg)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		msg.ID = oid
	}
	return nil
}

// ListByConversation returns the full history of a conversation in ascending
// creation order; the _id sort breaks timestamp ties in insertion order.
func (r *MessageRepository) ListByConversation(ctx context.Context, key string) ([]models.Message, error) {
	filter := bson.M{"conversation_key": key}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	cur, err := r.collection().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var messages []models.Message
	if err := cur.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *MessageRepository) FindByID(ctx context.Context, id string) (*models.Message, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrMessageNotFound
	}
	var msg models.Message
	err = r.collection().FindOne(ctx, bson.M{"_id": oid}).Decode(&msg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrMessageNotFound
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *MessageRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrMessageNotFound
	}
	res, err := r.collection().DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrMessageNotFound
	}
	return nil
}
