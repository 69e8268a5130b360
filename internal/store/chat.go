package store

import (
	"context"
	"fmt"

	"github.com/safar/go-b2b-store/internal/models"
)

func (s *Store) CreateMessage(ctx context.Context, m *models.ChatMessage) error {
	return insertMessage(ctx, s.db, m)
}

func insertMessage(ctx context.Context, db rowQuerier, m *models.ChatMessage) error {
	err := db.QueryRowContext(ctx,
		`INSERT INTO chat_messages (id, customer_id, sender_type, sender_name, message, created_at)
		 VALUES ($1, $2, $3, $4, $5, clock_timestamp())
		 RETURNING created_at`,
		m.ID, m.CustomerID, m.SenderType, m.SenderName, m.Message).Scan(&m.CreatedAt)
	if err != nil {
		return fmt.Errorf("create chat message: %w", err)
	}
	return nil
}

// ListMessages returns a customer's conversation oldest first.
func (s *Store) ListMessages(ctx context.Context, customerID string) ([]models.ChatMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, customer_id, sender_type, sender_name, message, created_at
		 FROM chat_messages
		 WHERE customer_id = $1
		 ORDER BY created_at, id`,
		customerID)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	defer rows.Close()

	messages := []models.ChatMessage{}
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.CustomerID, &m.SenderType, &m.SenderName, &m.Message, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return messages, nil
}

// ListConversations summarizes each customer's chat, most recent activity first.
// Requester details are left for the caller to join.
func (s *Store) ListConversations(ctx context.Context) ([]models.Conversation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT customer_id, id, sender_type, sender_name, message, created_at, total
		 FROM (
		     SELECT DISTINCT ON (m.customer_id)
		            m.customer_id, m.id, m.sender_type, m.sender_name, m.message, m.created_at,
		            COUNT(*) OVER (PARTITION BY m.customer_id) AS total
		     FROM chat_messages m
		     ORDER BY m.customer_id, m.created_at DESC, m.id DESC
		 ) latest
		 ORDER BY created_at DESC, customer_id`)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	conversations := []models.Conversation{}
	for rows.Next() {
		var c models.Conversation
		m := &c.LastMessage
		if err := rows.Scan(&c.CustomerID, &m.ID, &m.SenderType, &m.SenderName, &m.Message, &m.CreatedAt, &c.MessageCount); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		m.CustomerID = c.CustomerID
		conversations = append(conversations, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return conversations, nil
}
