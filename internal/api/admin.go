package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/safar/go-b2b-store/internal/models"
	"github.com/safar/go-b2b-store/internal/quote"
)

func (h *handler) listDealers(w http.ResponseWriter, r *http.Request) {
	dealers, err := h.svc.Admin.Dealers(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, dealers)
}

func (h *handler) listPendingDealers(w http.ResponseWriter, r *http.Request) {
	dealers, err := h.svc.Admin.PendingDealers(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, dealers)
}

func (h *handler) approveDealer(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Admin.ApproveDealer(r.Context(), mux.Vars(r)["id"]); err != nil {
		fail(w, r, err)
		return
	}
	respondMessage(w, "Dealer approved successfully")
}

func (h *handler) rejectDealer(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Admin.RejectDealer(r.Context(), mux.Vars(r)["id"]); err != nil {
		fail(w, r, err)
		return
	}
	respondMessage(w, "Dealer rejected")
}

func (h *handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.Admin.Users(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

func (h *handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Admin.Stats(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (h *handler) adminListProducts(w http.ResponseWriter, r *http.Request) {
	filter, err := productFilter(r)
	if err != nil {
		fail(w, r, err)
		return
	}

	page, err := h.svc.Catalog.Page(r.Context(), filter)
	if err != nil {
		fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func (h *handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var p models.Product
	if err := decodeJSON(r, &p); err != nil {
		fail(w, r, err)
		return
	}

	created, err := h.svc.Catalog.Create(r.Context(), p)
	if err != nil {
		fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var update models.ProductUpdate
	if err := decodeJSON(r, &update); err != nil {
		fail(w, r, err)
		return
	}

	updated, err := h.svc.Catalog.Update(r.Context(), mux.Vars(r)["id"], update)
	if err != nil {
		fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Catalog.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		fail(w, r, err)
		return
	}
	respondMessage(w, "Product deleted successfully")
}

func (h *handler) listAllQuotes(w http.ResponseWriter, r *http.Request) {
	quotes, err := h.svc.Quotes.ListAll(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, quotes)
}

type quoteStatusRequest struct {
	Status     models.QuoteStatus `json:"status"`
	AdminNotes string             `json:"admin_notes"`
}

func (h *handler) setQuoteStatus(w http.ResponseWriter, r *http.Request) {
	var req quoteStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}

	q, err := h.svc.Quotes.SetStatus(r.Context(), mux.Vars(r)["id"], req.Status, req.AdminNotes)
	if err != nil {
		fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, q)
}

func (h *handler) setQuotePricing(w http.ResponseWriter, r *http.Request) {
	var pricing quote.Pricing
	if err := decodeJSON(r, &pricing); err != nil {
		fail(w, r, err)
		return
	}

	q, err := h.svc.Quotes.SetPricing(r.Context(), mux.Vars(r)["id"], pricing)
	if err != nil {
		fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, q)
}

func (h *handler) sendQuoteEmail(w http.ResponseWriter, r *http.Request) {
	email, err := h.svc.Quotes.MarkEmailSent(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Quote email sent to " + email,
		"email":   email,
	})
}

func (h *handler) adminSendChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}

	msg, err := h.svc.Chat.AdminSend(r.Context(), principalFrom(r.Context()), req.CustomerID, req.Message)
	if err != nil {
		fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, msg)
}

func (h *handler) conversations(w http.ResponseWriter, r *http.Request) {
	conversations, err := h.svc.Chat.Conversations(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, conversations)
}

func (h *handler) quoteContext(w http.ResponseWriter, r *http.Request) {
	qc, err := h.svc.Quotes.CustomerContext(r.Context(), mux.Vars(r)["customer_id"])
	if err != nil {
		fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, qc)
}
