package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"freelanceBack/internal/models"
)

type ConversationRepository struct {
	DB *sql.DB
}

// FindByPair looks up the conversation for an unordered user pair, checking both
// orderings. Returns (zero, nil) when no conversation exists.
func (r *ConversationRepository) FindByPair(ctx context.Context, userA, userB int) (models.Conversation, error) {
	var c models.Conversation
	query := `SELECT id, user1_id, user2_id, COALESCE(last_message, ''), last_updated, created_at
              FROM conversations
              WHERE (user1_id = ? AND user2_id = ?) OR (user1_id = ? AND user2_id = ?)
              ORDER BY id ASC
              LIMIT 1`
	err := r.DB.QueryRowContext(ctx, query, userA, userB, userB, userA).Scan(
		&c.ID, &c.User1ID, &c.User2ID, &c.LastMessage, &c.LastUpdated, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Conversation{}, nil
		}
		return models.Conversation{}, err
	}
	return c, nil
}

// CreateConversation inserts a conversation row. The pair is stored as
// (lower id, higher id) so the unique key catches a concurrent create in
// either argument order; a duplicate-key failure means the pair already
// exists and the caller re-reads. FindByPair still checks both orderings for
// rows written before pairs were normalized.
func (r *ConversationRepository) CreateConversation(ctx context.Context, userA, userB int) (models.Conversation, error) {
	if userA > userB {
		userA, userB = userB, userA
	}
	res, err := r.DB.ExecContext(ctx, `INSERT INTO conversations (user1_id, user2_id, created_at) VALUES (?, ?, NOW())`, userA, userB)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "duplicate") {
			return r.FindByPair(ctx, userA, userB)
		}
		return models.Conversation{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Conversation{}, err
	}
	return models.Conversation{
		ID:        int(id),
		User1ID:   userA,
		User2ID:   userB,
		CreatedAt: time.Now(),
	}, nil
}

func (r *ConversationRepository) GetConversationByID(ctx context.Context, id int) (models.Conversation, error) {
	var c models.Conversation
	query := `SELECT id, user1_id, user2_id, COALESCE(last_message, ''), last_updated, created_at FROM conversations WHERE id = ?`
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.User1ID, &c.User2ID, &c.LastMessage, &c.LastUpdated, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Conversation{}, models.ErrConversationNotFound
		}
		return models.Conversation{}, err
	}
	return c, nil
}

// GetConversationsByUserID returns the user's conversations newest-activity
// first, each with the other participant, its latest message and message count.
func (r *ConversationRepository) GetConversationsByUserID(ctx context.Context, userID int) ([]models.ConversationSummary, error) {
	query := `
SELECT c.id, c.user1_id, c.user2_id, COALESCE(c.last_message, ''), c.last_updated, c.created_at,
       u.id, u.name, u.role, u.avatar_path, u.rating,
       m.id, m.sender_id, m.text, m.seen, m.created_at,
       (SELECT COUNT(*) FROM messages WHERE conversation_id = c.id) AS message_count
FROM conversations c
JOIN users u ON u.id = CASE WHEN c.user1_id = ? THEN c.user2_id ELSE c.user1_id END
LEFT JOIN messages m ON m.id = (
    SELECT id FROM messages WHERE conversation_id = c.id ORDER BY created_at DESC, id DESC LIMIT 1
)
WHERE c.user1_id = ? OR c.user2_id = ?
ORDER BY COALESCE(c.last_updated, c.created_at) DESC`

	rows, err := r.DB.QueryContext(ctx, query, userID, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []models.ConversationSummary{}
	for rows.Next() {
		var s models.ConversationSummary
		var msgID, msgSenderID sql.NullInt64
		var msgText sql.NullString
		var msgSeen sql.NullBool
		var msgCreatedAt sql.NullTime

		if err := rows.Scan(
			&s.ID, &s.User1ID, &s.User2ID, &s.LastMessage, &s.LastUpdated, &s.Conversation.CreatedAt,
			&s.OtherUser.ID, &s.OtherUser.Name, &s.OtherUser.Role, &s.OtherUser.AvatarPath, &s.OtherUser.Rating,
			&msgID, &msgSenderID, &msgText, &msgSeen, &msgCreatedAt,
			&s.MessageCount,
		); err != nil {
			return nil, err
		}

		if msgID.Valid {
			s.RecentMessage = &models.Message{
				ID:             int(msgID.Int64),
				ConversationID: s.ID,
				SenderID:       int(msgSenderID.Int64),
				Text:           msgText.String,
				Seen:           msgSeen.Bool,
				CreatedAt:      msgCreatedAt.Time,
			}
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
