package repositories

import (
	"context"
	"database/sql"
	"time"

	"freelanceBack/internal/models"
)

type MessageRepository struct {
	DB *sql.DB
}

// CreateMessage inserts the message and refreshes the conversation's
// denormalized last_message/last_updated in the same transaction, so the
// conversation list never lags the actual latest message under concurrent sends.
func (r *MessageRepository) CreateMessage(ctx context.Context, message models.Message) (models.Message, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.Message{}, err
	}
	defer tx.Rollback()

	now := time.Now()
	res, err := tx.ExecContext(ctx, `
        INSERT INTO messages (conversation_id, sender_id, text, seen, created_at)
        VALUES (?, ?, ?, false, ?)`,
		message.ConversationID, message.SenderID, message.Text, now)
	if err != nil {
		return models.Message{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Message{}, err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE conversations SET last_message = ?, last_updated = ? WHERE id = ?`,
		message.Text, now, message.ConversationID); err != nil {
		return models.Message{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Message{}, err
	}

	message.ID = int(id)
	message.Seen = false
	message.CreatedAt = now
	return message, nil
}

// GetMessagesForConversation returns one page, newest page first but each page
// in chronological order, together with the total count for pagination metadata.
func (r *MessageRepository) GetMessagesForConversation(ctx context.Context, conversationID, page, pageSize int) ([]models.Message, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages WHERE conversation_id = ?`, conversationID).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	query := `SELECT id, conversation_id, sender_id, text, seen, created_at
              FROM messages
              WHERE conversation_id = ?
              ORDER BY created_at DESC, id DESC
              LIMIT ? OFFSET ?`
	rows, err := r.DB.QueryContext(ctx, query, conversationID, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.Text, &msg.Seen, &msg.CreatedAt); err != nil {
			return nil, 0, err
		}
		messages = append(messages, msg)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, err
	}

	// reverse to chronological order for delivery
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, total, nil
}

// MarkMessagesSeen flips seen on every unread message not authored by the
// reader. Idempotent: a second call matches nothing and reports zero.
func (r *MessageRepository) MarkMessagesSeen(ctx context.Context, conversationID, readerID int) (int, error) {
	res, err := r.DB.ExecContext(ctx, `
        UPDATE messages SET seen = true
        WHERE conversation_id = ? AND sender_id <> ? AND seen = false`,
		conversationID, readerID)
	if err != nil {
		return 0, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(rows), nil
}

// CountUnreadForUser counts unseen messages addressed to the user across all
// conversations they participate in.
func (r *MessageRepository) CountUnreadForUser(ctx context.Context, userID int) (int, error) {
	var count int
	query := `SELECT COUNT(*)
              FROM messages m
              JOIN conversations c ON c.id = m.conversation_id
              WHERE (c.user1_id = ? OR c.user2_id = ?)
                AND m.sender_id <> ?
                AND m.seen = false`
	err := r.DB.QueryRowContext(ctx, query, userID, userID, userID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
