package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/safar/go-b2b-store/internal/quote"
)

type addToCartRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (h *handler) addToCart(w http.ResponseWriter, r *http.Request) {
	var req addToCartRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	customer := principalFrom(r.Context())
	if _, err := h.svc.Cart.AddItem(r.Context(), customer.ID, req.ProductID, req.Quantity); err != nil {
		fail(w, r, err)
		return
	}
	h.respondCart(w, r)
}

func (h *handler) viewCart(w http.ResponseWriter, r *http.Request) {
	h.respondCart(w, r)
}

func (h *handler) removeFromCart(w http.ResponseWriter, r *http.Request) {
	customer := principalFrom(r.Context())
	if _, err := h.svc.Cart.RemoveItem(r.Context(), customer.ID, mux.Vars(r)["id"]); err != nil {
		fail(w, r, err)
		return
	}
	h.respondCart(w, r)
}

func (h *handler) respondCart(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Cart.View(r.Context(), principalFrom(r.Context()).ID)
	if err != nil {
		fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *handler) createQuote(w http.ResponseWriter, r *http.Request) {
	var req quote.Request
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}

	customer := principalFrom(r.Context())
	q, err := h.svc.Quotes.CreateFromCart(r.Context(), customer, req)
	if err != nil && q == nil {
		fail(w, r, err)
		return
	}
	if err != nil {
		log.Warn().Err(err).Str("quote_id", q.ID).Msg("quote stored but cart not cleared")
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "Quote submitted successfully",
		"quote_id": q.ID,
		"quote":    quote.CustomerView(*q, customer),
	})
}

func (h *handler) listMyQuotes(w http.ResponseWriter, r *http.Request) {
	quotes, err := h.svc.Quotes.ListForCustomer(r.Context(), principalFrom(r.Context()))
	if err != nil {
		fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, quotes)
}

type chatRequest struct {
	CustomerID string `json:"user_id"`
	Message    string `json:"message"`
}

func (h *handler) sendChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}

	msg, err := h.svc.Chat.Send(r.Context(), principalFrom(r.Context()), req.Message)
	if err != nil {
		fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, msg)
}

// readChat serves both the customer and the admin thread views; the channel
// decides whether the caller may see the thread.
func (h *handler) readChat(w http.ResponseWriter, r *http.Request) {
	messages, err := h.svc.Chat.Read(r.Context(), principalFrom(r.Context()), mux.Vars(r)["customer_id"])
	if err != nil {
		fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, messages)
}
