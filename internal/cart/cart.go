// Package cart keeps each customer's cart: one document per customer holding
// lines with the unit price captured when the line was added.
package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/safar/go-b2b-store/internal/apperr"
	"github.com/safar/go-b2b-store/internal/models"
)

type Store interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	GetCart(ctx context.Context, customerID string) (*models.Cart, error)
	SaveCart(ctx context.Context, cart *models.Cart) error
}

type Engine struct {
	store Store
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// Line is a cart item joined with the current product record.
type Line struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Product   models.Product  `json:"product"`
}

type View struct {
	ID         string          `json:"id,omitempty"`
	CustomerID string          `json:"user_id"`
	Items      []Line          `json:"items"`
	Total      decimal.Decimal `json:"total"`
}

func (e *Engine) load(ctx context.Context, customerID string) (*models.Cart, error) {
	cart, err := e.store.GetCart(ctx, customerID)
	if errors.Is(err, apperr.ErrNotFound) {
		return &models.Cart{ID: uuid.NewString(), CustomerID: customerID, Items: []models.CartItem{}}, nil
	}
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// AddItem adds quantity units of a product, merging with an existing line.
// The stored cart is untouched when the product is missing or short on stock.
func (e *Engine) AddItem(ctx context.Context, customerID, productID string, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1: %w", apperr.ErrInvalidInput)
	}

	product, err := e.store.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.Available(quantity) {
		return nil, fmt.Errorf("product %s: %w", productID, apperr.ErrInsufficientStock)
	}

	cart, err := e.load(ctx, customerID)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		cart.Items = append(cart.Items, models.CartItem{
			ProductID: productID,
			Quantity:  quantity,
			Price:     product.Price,
		})
	}

	cart.Recalculate()
	if err := e.store.SaveCart(ctx, cart); err != nil {
		return nil, err
	}

	log.Debug().Str("customer_id", customerID).Str("product_id", productID).Int("quantity", quantity).Msg("cart item added")
	return cart, nil
}

// RemoveItem drops the line for productID. Removing an absent line is a no-op.
func (e *Engine) RemoveItem(ctx context.Context, customerID, productID string) (*models.Cart, error) {
	cart, err := e.store.GetCart(ctx, customerID)
	if errors.Is(err, apperr.ErrNotFound) {
		return &models.Cart{CustomerID: customerID, Items: []models.CartItem{}}, nil
	}
	if err != nil {
		return nil, err
	}

	kept := cart.Items[:0]
	for _, item := range cart.Items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(cart.Items) {
		return cart, nil
	}

	cart.Items = kept
	cart.Recalculate()
	if err := e.store.SaveCart(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// View returns the cart with product details. Lines whose product no longer
// exists are left out; the total is the stored one.
func (e *Engine) View(ctx context.Context, customerID string) (*View, error) {
	view := &View{CustomerID: customerID, Items: []Line{}, Total: decimal.Zero}

	cart, err := e.store.GetCart(ctx, customerID)
	if errors.Is(err, apperr.ErrNotFound) {
		return view, nil
	}
	if err != nil {
		return nil, err
	}

	view.ID = cart.ID
	view.Total = cart.Total
	for _, item := range cart.Items {
		product, err := e.store.GetProduct(ctx, item.ProductID)
		if errors.Is(err, apperr.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		view.Items = append(view.Items, Line{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Product:   *product,
		})
	}

	return view, nil
}
