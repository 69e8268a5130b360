// Package memstore is an in-memory repository with the same method set as the
// Postgres store. It backs STORE_DRIVER=memory and the unit tests.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/safar/go-b2b-store/internal/apperr"
	"github.com/safar/go-b2b-store/internal/models"
	"github.com/shopspring/decimal"
)

type Store struct {
	mu sync.RWMutex

	principals []*models.Principal
	products   []*models.Product
	categories []models.Category
	brands     []models.Brand
	carts      map[string]*models.Cart
	quotes     []*models.Quote
	messages   []*models.ChatMessage

	now func() time.Time
}

func New() *Store {
	return &Store{
		carts: make(map[string]*models.Cart),
		now:   time.Now,
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func notFound(what, id string) error {
	return fmt.Errorf("%s %s: %w", what, id, apperr.ErrNotFound)
}

func (s *Store) CreatePrincipal(ctx context.Context, p *models.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertPrincipal(p)
}

func (s *Store) insertPrincipal(p *models.Principal) error {
	for _, existing := range s.principals {
		if existing.Kind == p.Kind && existing.Login() == p.Login() {
			return fmt.Errorf("%s %s: %w", p.Kind, p.Login(), apperr.ErrDuplicateIdentity)
		}
	}
	p.CreatedAt = s.now()
	clone := *p
	s.principals = append(s.principals, &clone)
	return nil
}

func (s *Store) findPrincipal(kind models.Kind, match func(*models.Principal) bool) *models.Principal {
	for _, p := range s.principals {
		if p.Kind == kind && match(p) {
			return p
		}
	}
	return nil
}

func (s *Store) GetPrincipal(ctx context.Context, kind models.Kind, id string) (*models.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := s.findPrincipal(kind, func(p *models.Principal) bool { return p.ID == id })
	if p == nil {
		return nil, notFound(string(kind), id)
	}
	clone := *p
	return &clone, nil
}

func (s *Store) GetPrincipalByLogin(ctx context.Context, kind models.Kind, login string) (*models.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := s.findPrincipal(kind, func(p *models.Principal) bool { return p.Login() == login })
	if p == nil {
		return nil, notFound(string(kind), login)
	}
	clone := *p
	return &clone, nil
}

func (s *Store) ListPrincipals(ctx context.Context, filter models.PrincipalFilter) ([]models.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Principal{}
	for i := len(s.principals) - 1; i >= 0; i-- {
		p := s.principals[i]
		if p.Kind != filter.Kind {
			continue
		}
		if filter.PendingOnly && (p.Approved || !p.Active) {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (s *Store) SetPrincipalApproved(ctx context.Context, kind models.Kind, id string, approved bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.findPrincipal(kind, func(p *models.Principal) bool { return p.ID == id })
	if p == nil {
		return notFound(string(kind), id)
	}
	p.Approved = approved
	return nil
}

func (s *Store) SetPrincipalActive(ctx context.Context, kind models.Kind, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.findPrincipal(kind, func(p *models.Principal) bool { return p.ID == id })
	if p == nil {
		return notFound(string(kind), id)
	}
	p.Active = active
	return nil
}

func cloneProduct(p *models.Product) *models.Product {
	clone := *p
	clone.GalleryImages = append([]string(nil), p.GalleryImages...)
	clone.Features = append([]string(nil), p.Features...)
	clone.Tags = append([]string(nil), p.Tags...)
	if p.OriginalPrice != nil {
		op := *p.OriginalPrice
		clone.OriginalPrice = &op
	}
	if p.Specifications != nil {
		clone.Specifications = make(map[string]string, len(p.Specifications))
		for k, v := range p.Specifications {
			clone.Specifications[k] = v
		}
	}
	return &clone
}

func (s *Store) productIndex(id string) int {
	for i, p := range s.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertProduct(p)
	return nil
}

func (s *Store) insertProduct(p *models.Product) {
	now := s.now()
	p.CreatedAt, p.UpdatedAt = now, now
	s.products = append(s.products, cloneProduct(p))
}

func (s *Store) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.productIndex(id)
	if i < 0 {
		return nil, notFound("product", id)
	}
	return cloneProduct(s.products[i]), nil
}

func (s *Store) UpdateProduct(ctx context.Context, id string, update models.ProductUpdate) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.productIndex(id)
	if i < 0 {
		return nil, notFound("product", id)
	}
	current := cloneProduct(s.products[i])
	update.Apply(current)
	if current.StockQuantity == 0 {
		current.InStock = false
	}
	current.UpdatedAt = s.now()
	s.products[i] = cloneProduct(current)
	return current, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.productIndex(id)
	if i < 0 {
		return notFound("product", id)
	}
	s.products = append(s.products[:i], s.products[i+1:]...)
	return nil
}

func matchProduct(p *models.Product, f models.ProductFilter) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Brand != "" && p.Brand != f.Brand {
		return false
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	if f.Search != "" && !matchSearch(p, strings.ToLower(f.Search)) {
		return false
	}
	if f.InStock != nil && p.InStock != *f.InStock {
		return false
	}
	if f.MinRating != nil && p.Rating < *f.MinRating {
		return false
	}
	if f.MinReviewCount != nil && p.ReviewCount < *f.MinReviewCount {
		return false
	}
	if f.DiscountedOnly && p.OriginalPrice == nil {
		return false
	}
	return true
}

func matchSearch(p *models.Product, term string) bool {
	if strings.Contains(strings.ToLower(p.Name), term) || strings.Contains(strings.ToLower(p.Description), term) {
		return true
	}
	for _, tag := range p.Tags {
		if tag == term {
			return true
		}
	}
	return false
}

func (s *Store) filterProducts(f models.ProductFilter) []*models.Product {
	var out []*models.Product
	for _, p := range s.products {
		if matchProduct(p, f) {
			out = append(out, p)
		}
	}
	return out
}

func (s *Store) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	filter.Normalize()

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.filterProducts(filter)
	if filter.NewestFirst {
		for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
			matched[i], matched[j] = matched[j], matched[i]
		}
	}

	out := []models.Product{}
	for i := filter.Skip; i < len(matched) && len(out) < filter.Limit; i++ {
		out = append(out, *cloneProduct(matched[i]))
	}
	return out, nil
}

func (s *Store) CountProducts(ctx context.Context, filter models.ProductFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.filterProducts(filter))), nil
}

func (s *Store) PriceRange(ctx context.Context) (*models.PriceRange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.products) == 0 {
		return nil, nil
	}
	pr := &models.PriceRange{MinPrice: s.products[0].Price, MaxPrice: s.products[0].Price}
	for _, p := range s.products[1:] {
		pr.MinPrice = decimal.Min(pr.MinPrice, p.Price)
		pr.MaxPrice = decimal.Max(pr.MaxPrice, p.Price)
	}
	return pr, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]models.CategoryWithCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.CategoryWithCount{}
	for _, c := range s.categories {
		out = append(out, models.CategoryWithCount{
			Category:     c,
			ProductCount: int64(len(s.filterProducts(models.ProductFilter{Category: c.Name}))),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) ListBrands(ctx context.Context) ([]models.BrandWithCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.BrandWithCount{}
	for _, b := range s.brands {
		out = append(out, models.BrandWithCount{
			Brand:        b,
			ProductCount: int64(len(s.filterProducts(models.ProductFilter{Brand: b.Name}))),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func cloneCart(c *models.Cart) *models.Cart {
	clone := *c
	clone.Items = append([]models.CartItem{}, c.Items...)
	return &clone
}

func (s *Store) GetCart(ctx context.Context, customerID string) (*models.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.carts[customerID]
	if !ok {
		return nil, notFound("cart", customerID)
	}
	return cloneCart(c), nil
}

func (s *Store) SaveCart(ctx context.Context, cart *models.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if existing, ok := s.carts[cart.CustomerID]; ok {
		cart.ID = existing.ID
		cart.CreatedAt = existing.CreatedAt
	} else {
		cart.CreatedAt = now
	}
	cart.UpdatedAt = now
	s.carts[cart.CustomerID] = cloneCart(cart)
	return nil
}

func (s *Store) DeleteCart(ctx context.Context, customerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, customerID)
	return nil
}

func cloneQuote(q *models.Quote) *models.Quote {
	clone := *q
	clone.Items = append([]models.QuoteItem{}, q.Items...)
	return &clone
}

func (s *Store) CreateQuote(ctx context.Context, q *models.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertQuote(q)
	return nil
}

func (s *Store) insertQuote(q *models.Quote) {
	now := s.now()
	q.CreatedAt, q.UpdatedAt = now, now
	s.quotes = append(s.quotes, cloneQuote(q))
}

func (s *Store) quoteIndex(id string) int {
	for i, q := range s.quotes {
		if q.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) GetQuote(ctx context.Context, id string) (*models.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.quoteIndex(id)
	if i < 0 {
		return nil, notFound("quote", id)
	}
	return cloneQuote(s.quotes[i]), nil
}

// ListQuotes returns quotes newest first.
func (s *Store) ListQuotes(ctx context.Context, filter models.QuoteFilter) ([]models.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Quote{}
	for i := len(s.quotes) - 1; i >= 0; i-- {
		q := s.quotes[i]
		if filter.CustomerID != "" && q.CustomerID != filter.CustomerID {
			continue
		}
		out = append(out, *cloneQuote(q))
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (s *Store) UpdateQuote(ctx context.Context, q *models.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.quoteIndex(q.ID)
	if i < 0 {
		return notFound("quote", q.ID)
	}
	stored := s.quotes[i]
	stored.Items = append([]models.QuoteItem{}, q.Items...)
	stored.TotalAmount = q.TotalAmount
	stored.Status = q.Status
	stored.AdminNotes = q.AdminNotes
	stored.EmailSentAt = q.EmailSentAt
	stored.UpdatedAt = s.now()
	q.UpdatedAt = stored.UpdatedAt
	return nil
}

func (s *Store) CreateMessage(ctx context.Context, m *models.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertMessage(m)
	return nil
}

func (s *Store) insertMessage(m *models.ChatMessage) {
	m.CreatedAt = s.now()
	clone := *m
	s.messages = append(s.messages, &clone)
}

func (s *Store) ListMessages(ctx context.Context, customerID string) ([]models.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.ChatMessage{}
	for _, m := range s.messages {
		if m.CustomerID == customerID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (s *Store) ListConversations(ctx context.Context) ([]models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	index := map[string]int{}
	out := []models.Conversation{}
	// Walking newest to oldest makes the first message seen per customer the last one sent.
	for i := len(s.messages) - 1; i >= 0; i-- {
		m := s.messages[i]
		if j, ok := index[m.CustomerID]; ok {
			out[j].MessageCount++
			continue
		}
		index[m.CustomerID] = len(out)
		out = append(out, models.Conversation{CustomerID: m.CustomerID, LastMessage: *m, MessageCount: 1})
	}
	return out, nil
}

func (s *Store) Stats(ctx context.Context) (*models.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &models.Stats{
		TotalQuotes:   int64(len(s.quotes)),
		TotalProducts: int64(len(s.products)),
		ChatMessages:  int64(len(s.messages)),
	}
	for _, p := range s.principals {
		switch p.Kind {
		case models.KindCustomer:
			stats.TotalUsers++
		case models.KindDealer:
			stats.TotalDealers++
			if p.Approved {
				stats.ApprovedDealers++
			} else if p.Active {
				stats.PendingDealers++
			}
		}
	}
	for _, q := range s.quotes {
		switch q.Status {
		case models.QuoteStatusPending:
			stats.PendingQuotes++
		case models.QuoteStatusApproved:
			stats.ApprovedQuotes++
		}
	}
	return stats, nil
}

func (s *Store) ReplaceCatalog(ctx context.Context, categories []models.Category, brands []models.Brand, products []models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.categories = append([]models.Category(nil), categories...)
	s.brands = append([]models.Brand(nil), brands...)
	s.products = nil
	for i := range products {
		s.insertProduct(&products[i])
	}
	return nil
}

func (s *Store) ReplaceAccounts(ctx context.Context, principals []models.Principal, quotes []models.Quote, messages []models.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.principals
	s.principals = nil
	for i := range principals {
		if err := s.insertPrincipal(&principals[i]); err != nil {
			s.principals = previous
			return err
		}
	}

	s.carts = make(map[string]*models.Cart)
	s.quotes = nil
	s.messages = nil
	for i := range quotes {
		s.insertQuote(&quotes[i])
	}
	for i := range messages {
		s.insertMessage(&messages[i])
	}
	return nil
}
