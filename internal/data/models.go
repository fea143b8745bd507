package data

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User maps to the users collection. Language is the user's preferred
// reading language as an ISO 639-1 code; Phone is optional and only used
// by search.
type User struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"userId"`
	Email     string        `bson:"email" json:"email"`
	Password  string        `bson:"password" json:"-"`
	Name      string        `bson:"name" json:"name"`
	Lang      string        `bson:"lang" json:"lang"`
	Phone     string        `bson:"phone,omitempty" json:"phone,omitempty"`
	CreatedAt time.Time     `bson:"created_at" json:"-"`
	UpdatedAt time.Time     `bson:"updated_at" json:"-"`
}

// Chat maps to the chats collection. The document id is the deterministic
// composite key of the sorted member pair, so a pair of users can never
// own more than one chat. LastMessages maps each member to the preview
// text that member should see; its key set is always a subset of Members.
type Chat struct {
	ID           string            `bson:"_id" json:"id"`
	Members      []string          `bson:"members" json:"members"`
	LastMessages map[string]string `bson:"last_messages" json:"lastMessages"`
	CreatedAt    time.Time         `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time         `bson:"updated_at" json:"updatedAt"`
}

// Other returns the member of a two-person chat that is not userID, or
// the empty string if userID is not a member.
func (c *Chat) Other(userID string) string {
	if len(c.Members) != 2 {
		return ""
	}
	switch userID {
	case c.Members[0]:
		return c.Members[1]
	case c.Members[1]:
		return c.Members[0]
	}
	return ""
}

// TranslationStatus marks whether a message's derived texts came from the
// translation service or from the verbatim fallback.
type TranslationStatus string

const (
	TranslationOK       TranslationStatus = "ok"
	TranslationDegraded TranslationStatus = "degraded"
)

// Message maps to the messages collection. The three text fields hold the
// message as typed, transliterated into a common script, and translated
// into the receiver's language. Messages are immutable once created.
type Message struct {
	ID             bson.ObjectID     `bson:"_id,omitempty" json:"id"`
	ChatID         string            `bson:"chat_id" json:"chatId"`
	SenderID       string            `bson:"sender_id" json:"senderId"`
	TextOriginal   string            `bson:"text_original" json:"textOriginal"`
	TextCommon     string            `bson:"text_common" json:"textCommon"`
	TextTranslated string            `bson:"text_translated" json:"textTranslated"`
	Translation    TranslationStatus `bson:"translation" json:"translation"`
	CreatedAt      time.Time         `bson:"created_at" json:"createdAt"`
}

// ChatSummary is the per-user inbox view of a chat: the caller's own
// last-message preview and the other member's display name.
type ChatSummary struct {
	ChatID      string    `json:"chatId"`
	Members     []string  `json:"members"`
	PartnerID   string    `json:"partnerId"`
	PartnerName string    `json:"partnerName"`
	LastMessage string    `json:"lastMessage"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
