package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindCustomer Kind = "customer"
	KindDealer   Kind = "dealer"
	KindAdmin    Kind = "admin"
)

func (k Kind) Valid() bool {
	switch k {
	case KindCustomer, KindDealer, KindAdmin:
		return true
	}
	return false
}

// Principal is any account that can authenticate. Customer, dealer and admin
// records share one shape; fields that do not apply to a kind stay empty.
type Principal struct {
	ID            string    `json:"id"`
	Kind          Kind      `json:"kind"`
	Email         string    `json:"email"`
	Username      string    `json:"username,omitempty"`
	PasswordHash  string    `json:"-"`
	FirstName     string    `json:"first_name,omitempty"`
	LastName      string    `json:"last_name,omitempty"`
	CompanyName   string    `json:"company_name,omitempty"`
	ContactName   string    `json:"contact_name,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Address       string    `json:"address,omitempty"`
	City          string    `json:"city,omitempty"`
	State         string    `json:"state,omitempty"`
	ZipCode       string    `json:"zip_code,omitempty"`
	Country       string    `json:"country,omitempty"`
	LicenseNumber string    `json:"license_number,omitempty"`
	IsSuperAdmin  bool      `json:"is_super_admin"`
	Approved      bool      `json:"is_approved"`
	Active        bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

// Login returns the identifier a principal signs in with.
func (p *Principal) Login() string {
	if p.Kind == KindAdmin {
		return p.Username
	}
	return p.Email
}

func (p *Principal) DisplayName() string {
	switch p.Kind {
	case KindAdmin:
		return "Admin (" + p.Username + ")"
	case KindDealer:
		return p.ContactName
	default:
		return p.FirstName + " " + p.LastName
	}
}

// CanAccessCustomer reports whether p may read resources owned by customerID.
func (p *Principal) CanAccessCustomer(customerID string) bool {
	if p.Kind == KindAdmin {
		return true
	}
	return p.Kind == KindCustomer && p.ID == customerID
}

type Product struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Price          decimal.Decimal   `json:"price"`
	OriginalPrice  *decimal.Decimal  `json:"original_price,omitempty"`
	Category       string            `json:"category"`
	Subcategory    string            `json:"subcategory"`
	Brand          string            `json:"brand"`
	ImageURL       string            `json:"image_url"`
	GalleryImages  []string          `json:"gallery_images"`
	Rating         float64           `json:"rating"`
	ReviewCount    int               `json:"review_count"`
	InStock        bool              `json:"in_stock"`
	StockQuantity  int               `json:"stock_quantity"`
	Specifications map[string]string `json:"specifications"`
	Features       []string          `json:"features"`
	Tags           []string          `json:"tags"`
	IsRestricted   bool              `json:"is_restricted"`
	Weight         string            `json:"weight,omitempty"`
	Dimensions     string            `json:"dimensions,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// Available reports whether quantity units can be added to a cart.
func (p *Product) Available(quantity int) bool {
	return p.InStock && p.StockQuantity >= quantity
}

// ProductUpdate carries a partial product change; nil fields are left alone.
type ProductUpdate struct {
	Name           *string            `json:"name"`
	Description    *string            `json:"description"`
	Price          *decimal.Decimal   `json:"price"`
	OriginalPrice  *decimal.Decimal   `json:"original_price"`
	Category       *string            `json:"category"`
	Subcategory    *string            `json:"subcategory"`
	Brand          *string            `json:"brand"`
	ImageURL       *string            `json:"image_url"`
	GalleryImages  *[]string          `json:"gallery_images"`
	Rating         *float64           `json:"rating"`
	ReviewCount    *int               `json:"review_count"`
	InStock        *bool              `json:"in_stock"`
	StockQuantity  *int               `json:"stock_quantity"`
	Specifications *map[string]string `json:"specifications"`
	Features       *[]string          `json:"features"`
	Tags           *[]string          `json:"tags"`
	IsRestricted   *bool              `json:"is_restricted"`
	Weight         *string            `json:"weight"`
	Dimensions     *string            `json:"dimensions"`
}

// Apply copies the set fields of u onto p.
func (u ProductUpdate) Apply(p *Product) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.OriginalPrice != nil {
		op := *u.OriginalPrice
		p.OriginalPrice = &op
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.Subcategory != nil {
		p.Subcategory = *u.Subcategory
	}
	if u.Brand != nil {
		p.Brand = *u.Brand
	}
	if u.ImageURL != nil {
		p.ImageURL = *u.ImageURL
	}
	if u.GalleryImages != nil {
		p.GalleryImages = *u.GalleryImages
	}
	if u.Rating != nil {
		p.Rating = *u.Rating
	}
	if u.ReviewCount != nil {
		p.ReviewCount = *u.ReviewCount
	}
	if u.InStock != nil {
		p.InStock = *u.InStock
	}
	if u.StockQuantity != nil {
		p.StockQuantity = *u.StockQuantity
	}
	if u.Specifications != nil {
		p.Specifications = *u.Specifications
	}
	if u.Features != nil {
		p.Features = *u.Features
	}
	if u.Tags != nil {
		p.Tags = *u.Tags
	}
	if u.IsRestricted != nil {
		p.IsRestricted = *u.IsRestricted
	}
	if u.Weight != nil {
		p.Weight = *u.Weight
	}
	if u.Dimensions != nil {
		p.Dimensions = *u.Dimensions
	}
}

type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

type CategoryWithCount struct {
	Category
	ProductCount int64 `json:"product_count"`
}

type Brand struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	LogoURL     string `json:"logo_url"`
	Description string `json:"description"`
	Website     string `json:"website,omitempty"`
}

type BrandWithCount struct {
	Brand
	ProductCount int64 `json:"product_count"`
}

type PriceRange struct {
	MinPrice decimal.Decimal `json:"min_price"`
	MaxPrice decimal.Decimal `json:"max_price"`
}

type CartItem struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type Cart struct {
	ID         string          `json:"id"`
	CustomerID string          `json:"user_id"`
	Items      []CartItem      `json:"items"`
	Total      decimal.Decimal `json:"total"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Recalculate sets Total to the sum of quantity times snapshot price.
func (c *Cart) Recalculate() {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	c.Total = total
}

type QuoteStatus string

const (
	QuoteStatusPending  QuoteStatus = "pending"
	QuoteStatusReviewed QuoteStatus = "reviewed"
	QuoteStatusApproved QuoteStatus = "approved"
	QuoteStatusDeclined QuoteStatus = "declined"
)

func (s QuoteStatus) Valid() bool {
	switch s {
	case QuoteStatusPending, QuoteStatusReviewed, QuoteStatusApproved, QuoteStatusDeclined:
		return true
	}
	return false
}

type QuoteItem struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Notes     string          `json:"notes,omitempty"`
}

type Quote struct {
	ID                     string          `json:"id"`
	CustomerID             string          `json:"user_id"`
	Items                  []QuoteItem     `json:"items"`
	TotalAmount            decimal.Decimal `json:"total_amount"`
	ProjectName            string          `json:"project_name"`
	IntendedUse            string          `json:"intended_use"`
	DeliveryDate           *time.Time      `json:"delivery_date"`
	DeliveryAddress        string          `json:"delivery_address"`
	BillingAddress         string          `json:"billing_address"`
	CompanySize            string          `json:"company_size,omitempty"`
	BudgetRange            string          `json:"budget_range,omitempty"`
	AdditionalRequirements string          `json:"additional_requirements,omitempty"`
	Status                 QuoteStatus     `json:"status"`
	AdminNotes             string          `json:"admin_notes,omitempty"`
	EmailSentAt            *time.Time      `json:"email_sent_at,omitempty"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
}

// QuoteView is a quote as returned to a reader, with requester details joined.
type QuoteView struct {
	Quote
	UserName    string `json:"user_name"`
	UserEmail   string `json:"user_email"`
	CompanyName string `json:"company_name,omitempty"`
}

type SenderType string

const (
	SenderCustomer SenderType = "customer"
	SenderAdmin    SenderType = "admin"
)

type ChatMessage struct {
	ID         string     `json:"id"`
	CustomerID string     `json:"user_id"`
	SenderType SenderType `json:"sender_type"`
	SenderName string     `json:"sender_name"`
	Message    string     `json:"message"`
	CreatedAt  time.Time  `json:"created_at"`
}

type Conversation struct {
	CustomerID   string      `json:"user_id"`
	UserName     string      `json:"user_name"`
	UserEmail    string      `json:"user_email"`
	CompanyName  string      `json:"company_name,omitempty"`
	LastMessage  ChatMessage `json:"last_message"`
	MessageCount int64       `json:"message_count"`
}

type Stats struct {
	TotalUsers      int64 `json:"total_users"`
	TotalDealers    int64 `json:"total_dealers"`
	PendingDealers  int64 `json:"pending_dealers"`
	ApprovedDealers int64 `json:"approved_dealers"`
	TotalQuotes     int64 `json:"total_quotes"`
	PendingQuotes   int64 `json:"pending_quotes"`
	ApprovedQuotes  int64 `json:"approved_quotes"`
	TotalProducts   int64 `json:"total_products"`
	ChatMessages    int64 `json:"chat_messages"`
}
