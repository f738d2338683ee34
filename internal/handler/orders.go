package handler

import (
	"net/http"

	"github.com/mmeshcher/storefront-system/internal/backend"
	"github.com/mmeshcher/storefront-system/internal/model"
	"github.com/mmeshcher/storefront-system/internal/validation"
)

type checkoutRequest struct {
	FullName      string `json:"fullName"`
	Address       string `json:"address"`
	Phone         string `json:"phone"`
	Note          string `json:"note"`
	PaymentMethod string `json:"paymentMethod"`
}

// Checkout оформляет заказ из корзины текущей сессии.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}

	var req checkoutRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := h.svc.Checkout.PlaceOrder(r.Context(), sid, validation.CheckoutForm{
		FullName:      req.FullName,
		Address:       req.Address,
		Phone:         req.Phone,
		Note:          req.Note,
		PaymentMethod: model.PaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, res)
}

// GetOrders возвращает заказы текущего пользователя.
func (h *Handler) GetOrders(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}

	orders, err := h.svc.Account.Orders(r.Context(), sid)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if len(orders) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.writeJSON(w, http.StatusOK, orders)
}

// GetOrder возвращает заказ текущего пользователя.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	order, err := h.svc.Account.Order(r.Context(), sid, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, order)
}

// CancelOrder отменяет заказ текущего пользователя.
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	order, err := h.svc.Account.CancelOrder(r.Context(), sid, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, order)
}

// adminToken возвращает идентификатор сессии и токен вошедшего администратора.
func (h *Handler) adminToken(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	sid, ok := sessionID(w, r)
	if !ok {
		return "", "", false
	}
	sess, err := h.svc.Account.Session(r.Context(), sid)
	if err != nil {
		h.writeError(w, r, err)
		return "", "", false
	}
	if !sess.Authenticated() {
		h.writeError(w, r, backend.ErrAuth)
		return "", "", false
	}
	return sid, sess.AuthToken, true
}

// adminError сбрасывает сессию администратора при ErrAuth и пишет ответ с ошибкой.
func (h *Handler) adminError(w http.ResponseWriter, r *http.Request, sid string, err error) {
	h.writeError(w, r, h.svc.Account.ExpireOnAuth(r.Context(), sid, err))
}

// AdminListOrders возвращает страницу всех заказов.
func (h *Handler) AdminListOrders(w http.ResponseWriter, r *http.Request) {
	sid, token, ok := h.adminToken(w, r)
	if !ok {
		return
	}

	page, err := h.svc.Admin.ListOrders(r.Context(), token, pageQuery(r))
	if err != nil {
		h.adminError(w, r, sid, err)
		return
	}
	h.writeJSON(w, http.StatusOK, page)
}

type statusRequest struct {
	Email  string `json:"email"`
	Status string `json:"status"`
}

// AdminUpdateStatus меняет статус заказа и возвращает подтверждённый сервером заказ.
func (h *Handler) AdminUpdateStatus(w http.ResponseWriter, r *http.Request) {
	sid, token, ok := h.adminToken(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req statusRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Email == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	order, err := h.svc.Admin.UpdateStatus(r.Context(), token, req.Email, id, req.Status)
	if err != nil {
		h.adminError(w, r, sid, err)
		return
	}
	h.writeJSON(w, http.StatusOK, order)
}
