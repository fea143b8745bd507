package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/linguachat/linguachat/internal/data"
	"github.com/linguachat/linguachat/internal/translate"
)

// defaultLang is used when a receiver has no preferred language set or
// the receiver record is missing.
const defaultLang = "en"

// unknownPartnerName is shown when the partner's user record cannot be
// resolved for an inbox summary.
const unknownPartnerName = "Unknown"

type userDirectory interface {
	GetUserByID(ctx context.Context, id string) (*data.User, error)
	ListUsers(ctx context.Context) ([]*data.User, error)
}

type chatStore interface {
	StartOrGet(ctx context.Context, a, b string) (*data.Chat, error)
	GetByID(ctx context.Context, id string) (*data.Chat, error)
	SetLastMessages(ctx context.Context, chatID string, previews map[string]string) error
	ListForMember(ctx context.Context, userID string) ([]*data.Chat, error)
}

type messageStore interface {
	Save(ctx context.Context, chatID, senderID, original, common, translated string, status data.TranslationStatus) (*data.Message, error)
	ListByChat(ctx context.Context, chatID string) ([]*data.Message, error)
}

// ChatService owns the message delivery pipeline and per-conversation
// state: it composes the three text variants of a message via the
// translation gateway and keeps chat membership, previews and ordering
// consistent.
type ChatService struct {
	users      userDirectory
	chats      chatStore
	msgs       messageStore
	translator translate.Translator
	logger     *slog.Logger
}

// NewChatService wires a ChatService with its stores and the translator.
func NewChatService(users userDirectory, chats chatStore, msgs messageStore, translator translate.Translator, logger *slog.Logger) *ChatService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatService{
		users:      users,
		chats:      chats,
		msgs:       msgs,
		translator: translator,
		logger:     logger,
	}
}

// StartOrGetChat idempotently returns the two-person chat for the
// unordered pair (userA, userB), creating it on first use. Repeated and
// concurrent calls for the same pair resolve to the same chat because
// chat identity is the sorted-pair composite key.
func (s *ChatService) StartOrGetChat(ctx context.Context, userA, userB string) (*data.Chat, error) {
	userA = strings.TrimSpace(userA)
	userB = strings.TrimSpace(userB)
	if userA == "" || userB == "" || userA == userB {
		return nil, ErrInvalidInput
	}
	return s.chats.StartOrGet(ctx, userA, userB)
}

// SendMessage runs the delivery pipeline: resolve the chat and receiver,
// translate for the receiver's language, persist the message, then update
// the chat's per-member previews. The sender's preview becomes the
// common-script text and the receiver's the translated text. Translation
// failures degrade silently; the send still succeeds.
func (s *ChatService) SendMessage(ctx context.Context, chatID, senderID, text string) (*data.Message, error) {
	if strings.TrimSpace(chatID) == "" || strings.TrimSpace(senderID) == "" || strings.TrimSpace(text) == "" {
		return nil, ErrInvalidInput
	}

	chat, err := s.chats.GetByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, data.ErrChatNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	receiverID := chat.Other(senderID)
	if receiverID == "" {
		// sender is not a member of this chat
		return nil, ErrInvalidInput
	}

	receiverLang := defaultLang
	receiver, err := s.users.GetUserByID(ctx, receiverID)
	switch {
	case err == nil && receiver.Lang != "":
		receiverLang = receiver.Lang
	case err != nil && !errors.Is(err, data.ErrUserNotFound):
		return nil, err
	}

	res := s.translator.Translate(ctx, text, receiverLang)
	if res.Status == translate.StatusDegraded {
		s.logger.WarnContext(ctx, "message sent untranslated",
			"chat_id", chatID, "target_lang", receiverLang)
	}

	msg, err := s.msgs.Save(ctx, chatID, senderID, text, res.CommonText, res.TranslatedText, data.TranslationStatus(res.Status))
	if err != nil {
		return nil, err
	}

	// The sender sees their own writing in its common-script form, every
	// other member sees it in their own language. The map covers the full
	// member set and is derived only from this message, so rewriting it is
	// safe to replay.
	previews := make(map[string]string, len(chat.Members))
	for _, m := range chat.Members {
		if m == senderID {
			previews[m] = msg.TextCommon
		} else {
			previews[m] = msg.TextTranslated
		}
	}
	if err := s.chats.SetLastMessages(ctx, chatID, previews); err != nil {
		// The message row is already persisted, but the client must not be
		// told the send succeeded while the previews are stale.
		s.logger.ErrorContext(ctx, "failed to update chat preview",
			"chat_id", chatID, "error", err)
		return nil, err
	}

	return msg, nil
}

// ListMessages returns a chat's messages in strict ascending creation
// order.
func (s *ChatService) ListMessages(ctx context.Context, chatID string) ([]*data.Message, error) {
	if strings.TrimSpace(chatID) == "" {
		return nil, ErrInvalidInput
	}
	return s.msgs.ListByChat(ctx, chatID)
}

// ListChatsForUser returns the user's inbox: every chat containing the
// user, most recently active first, summarized with the caller's own
// preview and the partner's display name.
func (s *ChatService) ListChatsForUser(ctx context.Context, userID string) ([]*data.ChatSummary, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}

	chats, err := s.chats.ListForMember(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]*data.ChatSummary, 0, len(chats))
	for _, chat := range chats {
		partnerID := chat.Other(userID)
		partnerName := unknownPartnerName
		if partner, err := s.users.GetUserByID(ctx, partnerID); err == nil {
			partnerName = partner.Name
		}

		summaries = append(summaries, &data.ChatSummary{
			ChatID:      chat.ID,
			Members:     chat.Members,
			PartnerID:   partnerID,
			PartnerName: partnerName,
			LastMessage: chat.LastMessages[userID],
			UpdatedAt:   chat.UpdatedAt,
		})
	}
	return summaries, nil
}

// SearchUsers returns users whose name, email or phone contains the query
// (case-insensitive), always excluding the requester.
func (s *ChatService) SearchUsers(ctx context.Context, query, requesterID string) ([]*data.User, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, ErrInvalidInput
	}

	all, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]*data.User, 0)
	for _, u := range all {
		if u.ID.Hex() == requesterID {
			continue
		}
		if strings.Contains(strings.ToLower(u.Name), query) ||
			strings.Contains(strings.ToLower(u.Email), query) ||
			(u.Phone != "" && strings.Contains(u.Phone, query)) {
			matched = append(matched, u)
		}
	}
	return matched, nil
}
