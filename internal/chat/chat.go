// Package chat is the per-customer message log shared between a customer and
// the admins.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/safar/go-b2b-store/internal/apperr"
	"github.com/safar/go-b2b-store/internal/models"
)

type Store interface {
	GetPrincipal(ctx context.Context, kind models.Kind, id string) (*models.Principal, error)
	CreateMessage(ctx context.Context, m *models.ChatMessage) error
	ListMessages(ctx context.Context, customerID string) ([]models.ChatMessage, error)
	ListConversations(ctx context.Context) ([]models.Conversation, error)
}

type Channel struct {
	store Store
}

func NewChannel(store Store) *Channel {
	return &Channel{store: store}
}

func (c *Channel) post(ctx context.Context, customerID string, sender models.SenderType, senderName, text string) (*models.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("message is empty: %w", apperr.ErrInvalidInput)
	}

	m := &models.ChatMessage{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		SenderType: sender,
		SenderName: senderName,
		Message:    text,
	}
	if err := c.store.CreateMessage(ctx, m); err != nil {
		return nil, err
	}

	log.Debug().Str("customer_id", customerID).Str("sender_type", string(sender)).Msg("chat message stored")
	return m, nil
}

// Send posts to the sending customer's own conversation.
func (c *Channel) Send(ctx context.Context, customer *models.Principal, text string) (*models.ChatMessage, error) {
	return c.post(ctx, customer.ID, models.SenderCustomer, customer.DisplayName(), text)
}

// AdminSend posts into a customer's conversation as the acting admin.
func (c *Channel) AdminSend(ctx context.Context, admin *models.Principal, customerID, text string) (*models.ChatMessage, error) {
	if _, err := c.store.GetPrincipal(ctx, models.KindCustomer, customerID); err != nil {
		return nil, err
	}
	return c.post(ctx, customerID, models.SenderAdmin, admin.DisplayName(), text)
}

// Read returns a conversation oldest first. Only the owning customer and
// admins may read it.
func (c *Channel) Read(ctx context.Context, viewer *models.Principal, customerID string) ([]models.ChatMessage, error) {
	if !viewer.CanAccessCustomer(customerID) {
		return nil, fmt.Errorf("chat %s: %w", customerID, apperr.ErrForbidden)
	}
	return c.store.ListMessages(ctx, customerID)
}

// Conversations lists one summary per customer, most recent first. Threads
// whose customer no longer exists are left out.
func (c *Channel) Conversations(ctx context.Context) ([]models.Conversation, error) {
	conversations, err := c.store.ListConversations(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.Conversation, 0, len(conversations))
	for _, conv := range conversations {
		customer, err := c.store.GetPrincipal(ctx, models.KindCustomer, conv.CustomerID)
		if errors.Is(err, apperr.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		conv.UserName = customer.DisplayName()
		conv.UserEmail = customer.Email
		conv.CompanyName = customer.CompanyName
		out = append(out, conv)
	}
	return out, nil
}
