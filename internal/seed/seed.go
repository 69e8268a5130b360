// Package seed loads the sample catalog and accounts shipped with the service.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/safar/go-b2b-store/internal/auth"
	"github.com/safar/go-b2b-store/internal/models"
)

//go:embed data.yaml
var defaultData []byte

type Store interface {
	ReplaceCatalog(ctx context.Context, categories []models.Category, brands []models.Brand, products []models.Product) error
	ReplaceAccounts(ctx context.Context, principals []models.Principal, quotes []models.Quote, messages []models.ChatMessage) error
}

type Dataset struct {
	Categories []models.Category `yaml:"categories"`
	Brands     []brandRecord     `yaml:"brands"`
	Products   []productRecord   `yaml:"products"`
	Customers  []accountRecord   `yaml:"customers"`
	Dealers    []accountRecord   `yaml:"dealers"`
	Admins     []accountRecord   `yaml:"admins"`
	Quotes     []quoteRecord     `yaml:"quotes"`
	Messages   []messageRecord   `yaml:"messages"`
}

type brandRecord struct {
	Name        string `yaml:"name"`
	LogoURL     string `yaml:"logo_url"`
	Description string `yaml:"description"`
	Website     string `yaml:"website"`
}

type productRecord struct {
	Key            string            `yaml:"key"`
	Name           string            `yaml:"name"`
	Description    string            `yaml:"description"`
	Price          string            `yaml:"price"`
	OriginalPrice  string            `yaml:"original_price"`
	Category       string            `yaml:"category"`
	Subcategory    string            `yaml:"subcategory"`
	Brand          string            `yaml:"brand"`
	ImageURL       string            `yaml:"image_url"`
	Rating         float64           `yaml:"rating"`
	ReviewCount    int               `yaml:"review_count"`
	StockQuantity  int               `yaml:"stock_quantity"`
	IsRestricted   bool              `yaml:"is_restricted"`
	Features       []string          `yaml:"features"`
	Tags           []string          `yaml:"tags"`
	Specifications map[string]string `yaml:"specifications"`
	Weight         string            `yaml:"weight"`
	Dimensions     string            `yaml:"dimensions"`
}

type accountRecord struct {
	Email         string `yaml:"email"`
	Username      string `yaml:"username"`
	Password      string `yaml:"password"`
	FirstName     string `yaml:"first_name"`
	LastName      string `yaml:"last_name"`
	CompanyName   string `yaml:"company_name"`
	ContactName   string `yaml:"contact_name"`
	Phone         string `yaml:"phone"`
	Address       string `yaml:"address"`
	City          string `yaml:"city"`
	State         string `yaml:"state"`
	ZipCode       string `yaml:"zip_code"`
	Country       string `yaml:"country"`
	LicenseNumber string `yaml:"license_number"`
	IsSuperAdmin  bool   `yaml:"is_super_admin"`
	Approved      bool   `yaml:"approved"`
}

type quoteRecord struct {
	Customer               string            `yaml:"customer"`
	Items                  []quoteItemRecord `yaml:"items"`
	ProjectName            string            `yaml:"project_name"`
	IntendedUse            string            `yaml:"intended_use"`
	DeliveryInDays         int               `yaml:"delivery_in_days"`
	DeliveryAddress        string            `yaml:"delivery_address"`
	BillingAddress         string            `yaml:"billing_address"`
	CompanySize            string            `yaml:"company_size"`
	BudgetRange            string            `yaml:"budget_range"`
	AdditionalRequirements string            `yaml:"additional_requirements"`
	Status                 string            `yaml:"status"`
	AdminNotes             string            `yaml:"admin_notes"`
}

type quoteItemRecord struct {
	Product  string `yaml:"product"`
	Quantity int    `yaml:"quantity"`
	Notes    string `yaml:"notes"`
}

type messageRecord struct {
	Customer   string `yaml:"customer"`
	Sender     string `yaml:"sender"`
	SenderName string `yaml:"sender_name"`
	Message    string `yaml:"message"`
}

// Parse decodes a YAML dataset. An empty input yields the embedded sample data.
func Parse(data []byte) (*Dataset, error) {
	if len(data) == 0 {
		data = defaultData
	}
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("decode seed data: %w", err)
	}
	return &ds, nil
}

type Loader struct {
	store      Store
	bcryptCost int
	now        func() time.Time
}

func NewLoader(store Store, bcryptCost int) *Loader {
	return &Loader{store: store, bcryptCost: bcryptCost, now: time.Now}
}

type Summary struct {
	Categories int `json:"categories"`
	Brands     int `json:"brands"`
	Products   int `json:"products"`
	Customers  int `json:"users"`
	Dealers    int `json:"dealers"`
	Admins     int `json:"admins"`
	Quotes     int `json:"quotes"`
	Messages   int `json:"chat_messages"`
}

// Load replaces the catalog and then every account with the dataset contents.
func (l *Loader) Load(ctx context.Context, ds *Dataset) (*Summary, error) {
	categories, brands, products, err := l.catalog(ds)
	if err != nil {
		return nil, err
	}
	if err := l.store.ReplaceCatalog(ctx, categories, brands, products); err != nil {
		return nil, fmt.Errorf("replace catalog: %w", err)
	}

	productsByKey := make(map[string]*models.Product, len(products))
	for i := range products {
		productsByKey[ds.Products[i].Key] = &products[i]
	}

	principals, err := l.accounts(ds)
	if err != nil {
		return nil, err
	}
	customers := map[string]*models.Principal{}
	for i := range principals {
		if principals[i].Kind == models.KindCustomer {
			customers[principals[i].Email] = &principals[i]
		}
	}

	quotes, err := l.quotes(ds, customers, productsByKey)
	if err != nil {
		return nil, err
	}
	messages, err := l.messages(ds, customers)
	if err != nil {
		return nil, err
	}

	if err := l.store.ReplaceAccounts(ctx, principals, quotes, messages); err != nil {
		return nil, fmt.Errorf("replace accounts: %w", err)
	}

	summary := &Summary{
		Categories: len(categories),
		Brands:     len(brands),
		Products:   len(products),
		Customers:  len(ds.Customers),
		Dealers:    len(ds.Dealers),
		Admins:     len(ds.Admins),
		Quotes:     len(quotes),
		Messages:   len(messages),
	}
	log.Info().Interface("summary", summary).Msg("sample data loaded")
	return summary, nil
}

func (l *Loader) catalog(ds *Dataset) ([]models.Category, []models.Brand, []models.Product, error) {
	categories := make([]models.Category, 0, len(ds.Categories))
	for _, c := range ds.Categories {
		c.ID = uuid.NewString()
		categories = append(categories, c)
	}

	brands := make([]models.Brand, 0, len(ds.Brands))
	for _, b := range ds.Brands {
		brands = append(brands, models.Brand{
			ID:          uuid.NewString(),
			Name:        b.Name,
			LogoURL:     b.LogoURL,
			Description: b.Description,
			Website:     b.Website,
		})
	}

	products := make([]models.Product, 0, len(ds.Products))
	for _, r := range ds.Products {
		price, err := decimal.NewFromString(r.Price)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("product %s price: %w", r.Key, err)
		}
		p := models.Product{
			ID:             uuid.NewString(),
			Name:           r.Name,
			Description:    r.Description,
			Price:          price,
			Category:       r.Category,
			Subcategory:    r.Subcategory,
			Brand:          r.Brand,
			ImageURL:       r.ImageURL,
			Rating:         r.Rating,
			ReviewCount:    r.ReviewCount,
			InStock:        r.StockQuantity > 0,
			StockQuantity:  r.StockQuantity,
			Specifications: r.Specifications,
			Features:       r.Features,
			Tags:           r.Tags,
			IsRestricted:   r.IsRestricted,
			Weight:         r.Weight,
			Dimensions:     r.Dimensions,
		}
		if r.OriginalPrice != "" {
			op, err := decimal.NewFromString(r.OriginalPrice)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("product %s original price: %w", r.Key, err)
			}
			p.OriginalPrice = &op
		}
		products = append(products, p)
	}

	return categories, brands, products, nil
}

func (l *Loader) accounts(ds *Dataset) ([]models.Principal, error) {
	groups := []struct {
		kind    models.Kind
		records []accountRecord
	}{
		{models.KindCustomer, ds.Customers},
		{models.KindDealer, ds.Dealers},
		{models.KindAdmin, ds.Admins},
	}

	var principals []models.Principal
	for _, g := range groups {
		for _, r := range g.records {
			hash, err := auth.HashPassword(r.Password, l.bcryptCost)
			if err != nil {
				return nil, err
			}
			p := models.Principal{
				ID:            uuid.NewString(),
				Kind:          g.kind,
				Email:         r.Email,
				Username:      r.Username,
				PasswordHash:  hash,
				FirstName:     r.FirstName,
				LastName:      r.LastName,
				CompanyName:   r.CompanyName,
				ContactName:   r.ContactName,
				Phone:         r.Phone,
				Address:       r.Address,
				City:          r.City,
				State:         r.State,
				ZipCode:       r.ZipCode,
				Country:       r.Country,
				LicenseNumber: r.LicenseNumber,
				IsSuperAdmin:  r.IsSuperAdmin,
				Approved:      g.kind != models.KindDealer || r.Approved,
				Active:        true,
			}
			if g.kind == models.KindCustomer && p.Country == "" {
				p.Country = "United States"
			}
			principals = append(principals, p)
		}
	}
	return principals, nil
}

func (l *Loader) quotes(ds *Dataset, customers map[string]*models.Principal, products map[string]*models.Product) ([]models.Quote, error) {
	quotes := make([]models.Quote, 0, len(ds.Quotes))
	for _, r := range ds.Quotes {
		customer, ok := customers[r.Customer]
		if !ok {
			return nil, fmt.Errorf("quote %q: unknown customer %s", r.ProjectName, r.Customer)
		}
		status := models.QuoteStatus(strings.ToLower(r.Status))
		if status == "" {
			status = models.QuoteStatusPending
		}
		if !status.Valid() {
			return nil, fmt.Errorf("quote %q: unknown status %s", r.ProjectName, r.Status)
		}

		q := models.Quote{
			ID:                     uuid.NewString(),
			CustomerID:             customer.ID,
			ProjectName:            r.ProjectName,
			IntendedUse:            r.IntendedUse,
			DeliveryAddress:        r.DeliveryAddress,
			BillingAddress:         r.BillingAddress,
			CompanySize:            r.CompanySize,
			BudgetRange:            r.BudgetRange,
			AdditionalRequirements: r.AdditionalRequirements,
			Status:                 status,
			AdminNotes:             r.AdminNotes,
			TotalAmount:            decimal.Zero,
		}
		if r.DeliveryInDays > 0 {
			due := l.now().UTC().AddDate(0, 0, r.DeliveryInDays)
			q.DeliveryDate = &due
		}

		for _, item := range r.Items {
			product, ok := products[item.Product]
			if !ok {
				return nil, fmt.Errorf("quote %q: unknown product %s", r.ProjectName, item.Product)
			}
			q.Items = append(q.Items, models.QuoteItem{
				ProductID: product.ID,
				Quantity:  item.Quantity,
				Price:     product.Price,
				Notes:     item.Notes,
			})
			q.TotalAmount = q.TotalAmount.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

func (l *Loader) messages(ds *Dataset, customers map[string]*models.Principal) ([]models.ChatMessage, error) {
	messages := make([]models.ChatMessage, 0, len(ds.Messages))
	for _, r := range ds.Messages {
		customer, ok := customers[r.Customer]
		if !ok {
			return nil, fmt.Errorf("chat message: unknown customer %s", r.Customer)
		}

		m := models.ChatMessage{
			ID:         uuid.NewString(),
			CustomerID: customer.ID,
			SenderType: models.SenderType(r.Sender),
			SenderName: r.SenderName,
			Message:    r.Message,
		}
		switch m.SenderType {
		case models.SenderCustomer:
			if m.SenderName == "" {
				m.SenderName = customer.DisplayName()
			}
		case models.SenderAdmin:
		default:
			return nil, fmt.Errorf("chat message: unknown sender %s", r.Sender)
		}
		messages = append(messages, m)
	}
	return messages, nil
}
