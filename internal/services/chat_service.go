package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"freelanceBack/internal/models"
	"freelanceBack/internal/realtime"
	"freelanceBack/internal/repositories"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
	unreadCacheTTL  = 30 * time.Second
)

// PushSender delivers a mobile push notification to every registered device
// of a user.
type PushSender interface {
	SendToUser(ctx context.Context, userID int, title, body string, data map[string]string) error
}

type ChatService struct {
	ConversationRepo *repositories.ConversationRepository
	MessageRepo      *repositories.MessageRepository
	UserRepo         *repositories.UserRepository
	Events           realtime.Publisher
	Redis            *redis.Client
	Push             PushSender
	ErrorLog         *log.Logger
}

// GetOrCreateConversation returns the single conversation between the two
// users, creating it on first contact. The boolean reports whether it was
// just created.
func (s *ChatService) GetOrCreateConversation(ctx context.Context, senderID, receiverID int) (models.Conversation, bool, error) {
	if senderID == receiverID {
		return models.Conversation{}, false, models.ErrSelfConversation
	}
	if _, err := s.UserRepo.GetUserByID(ctx, receiverID); err != nil {
		return models.Conversation{}, false, err
	}

	conversation, err := s.ConversationRepo.FindByPair(ctx, senderID, receiverID)
	if err != nil {
		return models.Conversation{}, false, err
	}
	if conversation.ID != 0 {
		return conversation, false, nil
	}

	conversation, err = s.ConversationRepo.CreateConversation(ctx, senderID, receiverID)
	if err != nil {
		return models.Conversation{}, false, err
	}

	if s.Events != nil {
		event := realtime.Event{
			Type: realtime.EventConversationCreated,
			Payload: realtime.ConversationCreatedPayload{
				Conversation: conversation,
				Participants: []int{conversation.User1ID, conversation.User2ID},
			},
		}
		s.Events.PublishToUser(conversation.User1ID, event)
		s.Events.PublishToUser(conversation.User2ID, event)
	}

	return conversation, true, nil
}

// SendMessage persists the message, refreshes the conversation preview and
// fans the event out to the room and the recipient.
func (s *ChatService) SendMessage(ctx context.Context, senderID, conversationID int, text string) (models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Message{}, models.ErrEmptyMessage
	}

	conversation, err := s.ConversationRepo.GetConversationByID(ctx, conversationID)
	if err != nil {
		return models.Message{}, err
	}
	if !conversation.HasParticipant(senderID) {
		return models.Message{}, models.ErrNotParticipant
	}

	message, err := s.MessageRepo.CreateMessage(ctx, models.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Text:           text,
	})
	if err != nil {
		return models.Message{}, err
	}

	receiverID := conversation.Other(senderID)
	s.invalidateUnread(ctx, receiverID)

	if s.Events != nil {
		s.Events.PublishToRoom(conversationID, realtime.Event{
			Type: realtime.EventMessageReceived,
			Payload: realtime.MessageReceivedPayload{
				ConversationID: conversationID,
				Message:        message,
			},
		})
		s.Events.PublishToUser(receiverID, realtime.Event{
			Type: realtime.EventMessageNotification,
			Payload: realtime.MessageNotificationPayload{
				ConversationID: conversationID,
				ReceiverID:     receiverID,
				Message:        message,
			},
		})
	}

	if s.Push != nil {
		go func() {
			pushCtx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
			defer cancel()

			sender, err := s.UserRepo.GetUserByID(pushCtx, senderID)
			if err != nil {
				s.logf("push for message %d: %v", message.ID, err)
				return
			}
			err = s.Push.SendToUser(pushCtx, receiverID, sender.Name, message.Text, map[string]string{
				"conversation_id": fmt.Sprint(conversationID),
				"message_id":      fmt.Sprint(message.ID),
			})
			if err != nil {
				s.logf("push for message %d: %v", message.ID, err)
			}
		}()
	}

	return message, nil
}

// GetMessages returns one page of a conversation's messages in chronological
// order, newest pages first.
func (s *ChatService) GetMessages(ctx context.Context, callerID, conversationID, page, pageSize int) (models.MessagePage, error) {
	conversation, err := s.ConversationRepo.GetConversationByID(ctx, conversationID)
	if err != nil {
		return models.MessagePage{}, err
	}
	if !conversation.HasParticipant(callerID) {
		return models.MessagePage{}, models.ErrNotParticipant
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	messages, total, err := s.MessageRepo.GetMessagesForConversation(ctx, conversationID, page, pageSize)
	if err != nil {
		return models.MessagePage{}, err
	}

	totalPages := (total + pageSize - 1) / pageSize
	return models.MessagePage{
		Messages:   messages,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		TotalCount: total,
		HasMore:    page < totalPages,
	}, nil
}

func (s *ChatService) GetConversationsByUserID(ctx context.Context, userID int) ([]models.ConversationSummary, error) {
	return s.ConversationRepo.GetConversationsByUserID(ctx, userID)
}

// MarkMessagesRead marks every message from the other participant as seen.
// Re-running it is harmless; the room event only fires when something
// actually changed.
func (s *ChatService) MarkMessagesRead(ctx context.Context, readerID, conversationID int) (int, error) {
	conversation, err := s.ConversationRepo.GetConversationByID(ctx, conversationID)
	if err != nil {
		return 0, err
	}
	if !conversation.HasParticipant(readerID) {
		return 0, models.ErrNotParticipant
	}

	marked, err := s.MessageRepo.MarkMessagesSeen(ctx, conversationID, readerID)
	if err != nil {
		return 0, err
	}
	if marked == 0 {
		return 0, nil
	}

	s.invalidateUnread(ctx, readerID)

	if s.Events != nil {
		s.Events.PublishToRoom(conversationID, realtime.Event{
			Type: realtime.EventMessagesRead,
			Payload: realtime.MessagesReadPayload{
				ConversationID: conversationID,
				ReadByUserID:   readerID,
				Timestamp:      time.Now(),
				MessagesMarked: marked,
			},
		})
	}

	return marked, nil
}

// UnreadCount returns the user's total unread messages across all
// conversations, served from a short-lived cache.
func (s *ChatService) UnreadCount(ctx context.Context, userID int) (int, error) {
	key := unreadKey(userID)

	if s.Redis != nil {
		cached, err := s.Redis.Get(ctx, key).Int()
		if err == nil {
			return cached, nil
		}
		if err != redis.Nil {
			s.logf("redis get %s: %v", key, err)
		}
	}

	count, err := s.MessageRepo.CountUnreadForUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	if s.Redis != nil {
		if err := s.Redis.Set(ctx, key, count, unreadCacheTTL).Err(); err != nil {
			s.logf("redis set %s: %v", key, err)
		}
	}

	return count, nil
}

// IsParticipant reports whether the user belongs to the conversation. The
// websocket handler uses it before letting a client join a room.
func (s *ChatService) IsParticipant(ctx context.Context, userID, conversationID int) (bool, error) {
	conversation, err := s.ConversationRepo.GetConversationByID(ctx, conversationID)
	if err != nil {
		return false, err
	}
	return conversation.HasParticipant(userID), nil
}

func (s *ChatService) invalidateUnread(ctx context.Context, userID int) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, unreadKey(userID)).Err(); err != nil {
		s.logf("redis del %s: %v", unreadKey(userID), err)
	}
}

func unreadKey(userID int) string {
	return fmt.Sprintf("chat:unread:%d", userID)
}

func (s *ChatService) logf(format string, args ...any) {
	if s.ErrorLog != nil {
		s.ErrorLog.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}
