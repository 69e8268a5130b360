package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/safar/go-b2b-store/internal/apperr"
	"github.com/safar/go-b2b-store/internal/models"
)

const healthTimeout = 2 * time.Second

func (h *handler) root(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"message": "B2B Store API", "version": "1.0.0"})
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.svc.Health(ctx); err != nil {
		respondJSON(w, http.StatusOK, map[string]string{
			"status":   "degraded",
			"database": "disconnected",
			"error":    err.Error(),
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy", "database": "connected"})
}

func (h *handler) ready(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// productFilter reads the catalog query parameters shared by the public and
// admin product listings.
func productFilter(r *http.Request) (models.ProductFilter, error) {
	q := r.URL.Query()
	filter := models.ProductFilter{
		Category: q.Get("category"),
		Brand:    q.Get("brand"),
		Search:   q.Get("search"),
	}

	for _, p := range []struct {
		name string
		dst  **decimal.Decimal
	}{{"min_price", &filter.MinPrice}, {"max_price", &filter.MaxPrice}} {
		if v := q.Get(p.name); v != "" {
			d, err := decimal.NewFromString(v)
			if err != nil {
				return filter, fmt.Errorf("%s: %w", p.name, apperr.ErrInvalidInput)
			}
			*p.dst = &d
		}
	}

	if v := q.Get("in_stock"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return filter, fmt.Errorf("in_stock: %w", apperr.ErrInvalidInput)
		}
		filter.InStock = &b
	}

	var err error
	if filter.Skip, err = intParam(r, "skip"); err != nil {
		return filter, err
	}
	if filter.Limit, err = intParam(r, "limit"); err != nil {
		return filter, err
	}
	return filter, nil
}

func intParam(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, apperr.ErrInvalidInput)
	}
	return n, nil
}

func (h *handler) listProducts(w http.ResponseWriter, r *http.Request) {
	filter, err := productFilter(r)
	if err != nil {
		fail(w, r, err)
		return
	}

	products, err := h.svc.Catalog.List(r.Context(), filter)
	if err != nil {
		fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *handler) getProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.svc.Catalog.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *handler) priceRange(w http.ResponseWriter, r *http.Request) {
	pr, err := h.svc.Catalog.PriceRange(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, pr)
}

func (h *handler) productShelf(list func(context.Context) ([]models.Product, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := list(r.Context())
		if err != nil {
			fail(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, products)
	}
}

func (h *handler) listCategories(withCounts bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := h.svc.Catalog.Categories(r.Context())
		if err != nil {
			fail(w, r, err)
			return
		}
		if withCounts {
			respondJSON(w, http.StatusOK, categories)
			return
		}
		plain := make([]models.Category, 0, len(categories))
		for _, c := range categories {
			plain = append(plain, c.Category)
		}
		respondJSON(w, http.StatusOK, plain)
	}
}

func (h *handler) listBrands(withCounts bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		brands, err := h.svc.Catalog.Brands(r.Context())
		if err != nil {
			fail(w, r, err)
			return
		}
		if withCounts {
			respondJSON(w, http.StatusOK, brands)
			return
		}
		plain := make([]models.Brand, 0, len(brands))
		for _, b := range brands {
			plain = append(plain, b.Brand)
		}
		respondJSON(w, http.StatusOK, plain)
	}
}

type registerRequest struct {
	Email         string `json:"email"`
	Username      string `json:"username"`
	Password      string `json:"password"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	CompanyName   string `json:"company_name"`
	ContactName   string `json:"contact_name"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	City          string `json:"city"`
	State         string `json:"state"`
	ZipCode       string `json:"zip_code"`
	Country       string `json:"country"`
	LicenseNumber string `json:"license_number"`
}

func (h *handler) register(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := decodeJSON(r, &req); err != nil {
			fail(w, r, err)
			return
		}

		p, err := h.svc.Gate.Register(r.Context(), kind, models.Principal{
			Email:         req.Email,
			Username:      req.Username,
			FirstName:     req.FirstName,
			LastName:      req.LastName,
			CompanyName:   req.CompanyName,
			ContactName:   req.ContactName,
			Phone:         req.Phone,
			Address:       req.Address,
			City:          req.City,
			State:         req.State,
			ZipCode:       req.ZipCode,
			Country:       req.Country,
			LicenseNumber: req.LicenseNumber,
		}, req.Password)
		if err != nil {
			fail(w, r, err)
			return
		}
		respondJSON(w, http.StatusCreated, p)
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// login answers with the token and the principal under a key named after its
// kind: "user", "dealer" or "admin".
func (h *handler) login(kind models.Kind) http.HandlerFunc {
	key := string(kind)
	if kind == models.KindCustomer {
		key = "user"
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeJSON(r, &req); err != nil {
			fail(w, r, err)
			return
		}

		login := req.Email
		if kind == models.KindAdmin {
			login = req.Username
		}

		token, p, err := h.svc.Gate.Authenticate(r.Context(), kind, login, req.Password)
		if err != nil {
			fail(w, r, err)
			return
		}

		respondJSON(w, http.StatusOK, map[string]interface{}{
			"access_token": token,
			"token_type":   "bearer",
			key:            p,
		})
	}
}

func (h *handler) profile(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, principalFrom(r.Context()))
}
