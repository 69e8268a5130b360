// Package quote turns carts into requests for quote and carries them through
// admin review. Customers see a quote's total only once it is approved; admins
// always see the stored figure.
package quote

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/safar/go-b2b-store/internal/apperr"
	"github.com/safar/go-b2b-store/internal/metrics"
	"github.com/safar/go-b2b-store/internal/models"
)

const contextQuoteLimit = 5

type Store interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	GetCart(ctx context.Context, customerID string) (*models.Cart, error)
	DeleteCart(ctx context.Context, customerID string) error
	GetPrincipal(ctx context.Context, kind models.Kind, id string) (*models.Principal, error)
	CreateQuote(ctx context.Context, q *models.Quote) error
	GetQuote(ctx context.Context, id string) (*models.Quote, error)
	ListQuotes(ctx context.Context, filter models.QuoteFilter) ([]models.Quote, error)
	UpdateQuote(ctx context.Context, q *models.Quote) error
}

type Engine struct {
	store Store
	now   func() time.Time
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// Request is what a customer submits. Items may be left empty to quote the
// stored cart; any prices on submitted items are ignored.
type Request struct {
	Items                  []models.QuoteItem `json:"items"`
	ProjectName            string             `json:"project_name"`
	IntendedUse            string             `json:"intended_use"`
	DeliveryDate           *Date              `json:"delivery_date"`
	DeliveryAddress        string             `json:"delivery_address"`
	BillingAddress         string             `json:"billing_address"`
	CompanySize            string             `json:"company_size"`
	BudgetRange            string             `json:"budget_range"`
	AdditionalRequirements string             `json:"additional_requirements"`
}

type Pricing struct {
	TotalAmount decimal.Decimal   `json:"total_amount"`
	AdminNotes  string            `json:"admin_notes"`
	ItemPrices  []decimal.Decimal `json:"item_prices"`
}

type CustomerContext struct {
	Customer models.Principal `json:"user"`
	Quotes   []models.Quote   `json:"quotes"`
}

func (e *Engine) requestItems(ctx context.Context, customerID string, req Request) ([]models.QuoteItem, error) {
	if len(req.Items) > 0 {
		return append([]models.QuoteItem(nil), req.Items...), nil
	}

	cart, err := e.store.GetCart(ctx, customerID)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	if cart == nil {
		return nil, nil
	}

	items := make([]models.QuoteItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		items = append(items, models.QuoteItem{ProductID: line.ProductID, Quantity: line.Quantity})
	}
	return items, nil
}

// CreateFromCart prices every item at the current catalog price, stores the
// quote as pending and then clears the customer's cart. An item whose product
// cannot be found is priced at zero. The two writes are not atomic: if the
// cart delete fails the quote stays and the error is returned.
func (e *Engine) CreateFromCart(ctx context.Context, customer *models.Principal, req Request) (*models.Quote, error) {
	items, err := e.requestItems(ctx, customer.ID, req)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("quote has no items: %w", apperr.ErrInvalidInput)
	}

	total := decimal.Zero
	for i := range items {
		if items[i].Quantity < 1 {
			return nil, fmt.Errorf("item %s quantity must be at least 1: %w", items[i].ProductID, apperr.ErrInvalidInput)
		}

		product, err := e.store.GetProduct(ctx, items[i].ProductID)
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			log.Warn().Str("product_id", items[i].ProductID).Str("customer_id", customer.ID).Msg("quoted product not found, pricing at zero")
			items[i].Price = decimal.Zero
			continue
		case err != nil:
			return nil, err
		}

		items[i].Price = product.Price
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(items[i].Quantity))))
	}

	q := &models.Quote{
		ID:                     uuid.NewString(),
		CustomerID:             customer.ID,
		Items:                  items,
		TotalAmount:            total,
		ProjectName:            req.ProjectName,
		IntendedUse:            req.IntendedUse,
		DeliveryDate:           req.DeliveryDate.TimePtr(),
		DeliveryAddress:        req.DeliveryAddress,
		BillingAddress:         req.BillingAddress,
		CompanySize:            req.CompanySize,
		BudgetRange:            req.BudgetRange,
		AdditionalRequirements: req.AdditionalRequirements,
		Status:                 models.QuoteStatusPending,
	}

	if err := e.store.CreateQuote(ctx, q); err != nil {
		return nil, err
	}
	metrics.QuotesTotal.WithLabelValues("created").Inc()
	log.Info().Str("quote_id", q.ID).Str("customer_id", customer.ID).Str("total", total.String()).Msg("quote created")

	if err := e.store.DeleteCart(ctx, customer.ID); err != nil {
		return q, fmt.Errorf("clear cart after quote %s: %w", q.ID, err)
	}

	return q, nil
}

func view(q models.Quote, requester *models.Principal) models.QuoteView {
	return models.QuoteView{
		Quote:       q,
		UserName:    requester.DisplayName(),
		UserEmail:   requester.Email,
		CompanyName: requester.CompanyName,
	}
}

// CustomerView is q as its requester may see it: the total is zeroed until
// the quote is approved.
func CustomerView(q models.Quote, customer *models.Principal) models.QuoteView {
	if q.Status != models.QuoteStatusApproved {
		q.TotalAmount = decimal.Zero
	}
	return view(q, customer)
}

// ListForCustomer returns the customer's quotes newest first, redacted with
// CustomerView.
func (e *Engine) ListForCustomer(ctx context.Context, customer *models.Principal) ([]models.QuoteView, error) {
	quotes, err := e.store.ListQuotes(ctx, models.QuoteFilter{CustomerID: customer.ID})
	if err != nil {
		return nil, err
	}

	out := make([]models.QuoteView, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, CustomerView(q, customer))
	}
	return out, nil
}

// ListAll is the admin view: every quote, newest first, unredacted. Quotes
// whose requester no longer exists are skipped.
func (e *Engine) ListAll(ctx context.Context) ([]models.QuoteView, error) {
	quotes, err := e.store.ListQuotes(ctx, models.QuoteFilter{})
	if err != nil {
		return nil, err
	}

	requesters := map[string]*models.Principal{}
	out := make([]models.QuoteView, 0, len(quotes))
	for _, q := range quotes {
		requester, seen := requesters[q.CustomerID]
		if !seen {
			requester, err = e.store.GetPrincipal(ctx, models.KindCustomer, q.CustomerID)
			if err != nil && !errors.Is(err, apperr.ErrNotFound) {
				return nil, err
			}
			requesters[q.CustomerID] = requester
		}
		if requester == nil {
			continue
		}
		out = append(out, view(q, requester))
	}
	return out, nil
}

// SetPricing overwrites the total and, positionally, item prices; extra prices
// are ignored. Pricing a quote approves it.
func (e *Engine) SetPricing(ctx context.Context, id string, pricing Pricing) (*models.Quote, error) {
	if pricing.TotalAmount.IsNegative() {
		return nil, fmt.Errorf("total amount must not be negative: %w", apperr.ErrInvalidInput)
	}
	for _, price := range pricing.ItemPrices {
		if price.IsNegative() {
			return nil, fmt.Errorf("item price must not be negative: %w", apperr.ErrInvalidInput)
		}
	}

	q, err := e.store.GetQuote(ctx, id)
	if err != nil {
		return nil, err
	}

	q.TotalAmount = pricing.TotalAmount
	q.AdminNotes = pricing.AdminNotes
	q.Status = models.QuoteStatusApproved
	for i := range q.Items {
		if i < len(pricing.ItemPrices) {
			q.Items[i].Price = pricing.ItemPrices[i]
		}
	}

	if err := e.store.UpdateQuote(ctx, q); err != nil {
		return nil, err
	}

	metrics.QuotesTotal.WithLabelValues("priced").Inc()
	log.Info().Str("quote_id", id).Str("total", q.TotalAmount.String()).Msg("quote priced")
	return q, nil
}

// SetStatus moves a quote to any of the known statuses; there is no
// transition graph.
func (e *Engine) SetStatus(ctx context.Context, id string, status models.QuoteStatus, notes string) (*models.Quote, error) {
	status = models.QuoteStatus(strings.ToLower(strings.TrimSpace(string(status))))
	if !status.Valid() {
		return nil, fmt.Errorf("status %q: %w", status, apperr.ErrInvalidInput)
	}

	q, err := e.store.GetQuote(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := q.Status
	q.Status = status
	q.AdminNotes = notes
	if err := e.store.UpdateQuote(ctx, q); err != nil {
		return nil, err
	}

	metrics.QuotesTotal.WithLabelValues("status_" + string(status)).Inc()
	log.Info().Str("quote_id", id).Str("from", string(previous)).Str("to", string(status)).Msg("quote status changed")
	return q, nil
}

// MarkEmailSent stamps the quote as mailed and returns the requester's address.
// No mail is actually delivered.
func (e *Engine) MarkEmailSent(ctx context.Context, id string) (string, error) {
	q, err := e.store.GetQuote(ctx, id)
	if err != nil {
		return "", err
	}

	requester, err := e.store.GetPrincipal(ctx, models.KindCustomer, q.CustomerID)
	if err != nil {
		return "", err
	}

	sentAt := e.now().UTC()
	q.EmailSentAt = &sentAt
	if err := e.store.UpdateQuote(ctx, q); err != nil {
		return "", err
	}

	metrics.QuotesTotal.WithLabelValues("emailed").Inc()
	log.Info().Str("quote_id", id).Str("customer_id", requester.ID).Msg("quote email recorded")
	return requester.Email, nil
}

// CustomerContext gives an admin the customer's profile and most recent quotes.
func (e *Engine) CustomerContext(ctx context.Context, customerID string) (*CustomerContext, error) {
	customer, err := e.store.GetPrincipal(ctx, models.KindCustomer, customerID)
	if err != nil {
		return nil, err
	}

	quotes, err := e.store.ListQuotes(ctx, models.QuoteFilter{CustomerID: customerID, Limit: contextQuoteLimit})
	if err != nil {
		return nil, err
	}

	return &CustomerContext{Customer: *customer, Quotes: quotes}, nil
}
