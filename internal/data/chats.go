package data

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ErrChatNotFound is returned when a chat lookup matches no document.
var ErrChatNotFound = errors.New("chat not found")

// ChatID derives the deterministic chat identity from an unordered member
// pair. Both orderings of the same pair map to the same key, which makes
// chat creation an idempotent upsert rather than a racy lookup-then-insert.
func ChatID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + ":" + b
}

// ChatsStore performs chat DB operations.
type ChatsStore struct {
	coll *mongo.Collection
}

// NewChatsStore returns a ChatsStore using the given collection.
func NewChatsStore(coll *mongo.Collection) *ChatsStore {
	return &ChatsStore{coll: coll}
}

// StartOrGet returns the chat for the unordered pair (a, b), creating it
// with an empty last-message map when it does not exist yet. Two
// concurrent calls for the same pair resolve to the same document because
// the composite key is the document id.
func (s *ChatsStore) StartOrGet(ctx context.Context, a, b string) (*Chat, error) {
	id := ChatID(a, b)
	now := time.Now()

	update := bson.M{
		"$setOnInsert": bson.M{
			"members":       []string{a, b},
			"last_messages": map[string]string{},
			"created_at":    now,
			"updated_at":    now,
		},
	}
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, update,
		options.UpdateOne().SetUpsert(true))
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, id)
}

// GetByID finds a chat by its composite id.
func (s *ChatsStore) GetByID(ctx context.Context, id string) (*Chat, error) {
	var chat Chat
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&chat)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}
	return &chat, nil
}

// SetLastMessages replaces the chat's per-member preview map and bumps
// updated_at so inbox ordering stays most-recently-active first. The whole
// map is written in one $set derived from a single message, so replaying
// the update is harmless.
func (s *ChatsStore) SetLastMessages(ctx context.Context, chatID string, previews map[string]string) error {
	update := bson.M{
		"$set": bson.M{
			"last_messages": previews,
			"updated_at":    time.Now(),
		},
	}
	result, err := s.coll.UpdateOne(ctx, bson.M{"_id": chatID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrChatNotFound
	}
	return nil
}

// ListForMember returns every chat containing userID, ordered by
// updated_at descending.
func (s *ChatsStore) ListForMember(ctx context.Context, userID string) ([]*Chat, error) {
	opts := options.Find().SetSort(bson.M{"updated_at": -1})

	cursor, err := s.coll.Find(ctx, bson.M{"members": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var chats []*Chat
	if err = cursor.All(ctx, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}
