package data

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MessagesStore provides message database operations.
type MessagesStore struct {
	coll *mongo.Collection
}

// NewMessagesStore returns a MessagesStore using given collection.
func NewMessagesStore(coll *mongo.Collection) *MessagesStore {
	return &MessagesStore{coll: coll}
}

// Save inserts a message document with the current server time and
// returns the saved record with its id populated.
func (m *MessagesStore) Save(ctx context.Context, chatID, senderID, original, common, translated string, status TranslationStatus) (*Message, error) {
	msg := &Message{
		ChatID:         chatID,
		SenderID:       senderID,
		TextOriginal:   original,
		TextCommon:     common,
		TextTranslated: translated,
		Translation:    status,
		CreatedAt:      time.Now(),
	}

	result, err := m.coll.InsertOne(ctx, msg)
	if err != nil {
		return nil, err
	}

	msg.ID = result.InsertedID.(bson.ObjectID)
	return msg, nil
}

// ListByChat returns all messages of a chat in ascending created_at
// order. Every call re-reads current state; this listing, not the chat's
// preview map, is the authoritative history.
func (m *MessagesStore) ListByChat(ctx context.Context, chatID string) ([]*Message, error) {
	opts := options.Find().SetSort(bson.M{"created_at": 1})

	cursor, err := m.coll.Find(ctx, bson.M{"chat_id": chatID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []*Message
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}
