package handler

import (
	"context"
	"net/http"

	"github.com/mmeshcher/storefront-system/internal/cart"
)

func (h *Handler) writeCart(w http.ResponseWriter, r *http.Request, v cart.View, err error) {
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, v)
}

// GetCart возвращает корзину текущей сессии.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	v, err := h.svc.Cart.View(r.Context(), sid)
	h.writeCart(w, r, v, err)
}

// ClearCart очищает корзину.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	v, err := h.svc.Cart.Clear(r.Context(), sid)
	h.writeCart(w, r, v, err)
}

type addItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// AddItem добавляет товар в корзину.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}

	req := addItemRequest{Quantity: 1}
	if !decode(w, r, &req) {
		return
	}
	if req.ProductID <= 0 {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	v, err := h.svc.Cart.Add(r.Context(), sid, req.ProductID, req.Quantity)
	h.writeCart(w, r, v, err)
}

type lineOp func(ctx context.Context, sid string, productID int64) (cart.View, error)

func (h *Handler) lineHandler(op lineOp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, ok := sessionID(w, r)
		if !ok {
			return
		}
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		v, err := op(r.Context(), sid, id)
		h.writeCart(w, r, v, err)
	}
}

// IncrementItem увеличивает количество позиции на единицу.
func (h *Handler) IncrementItem(w http.ResponseWriter, r *http.Request) {
	h.lineHandler(h.svc.Cart.Increment)(w, r)
}

// DecrementItem уменьшает количество позиции на единицу.
func (h *Handler) DecrementItem(w http.ResponseWriter, r *http.Request) {
	h.lineHandler(h.svc.Cart.Decrement)(w, r)
}

// RemoveItem удаляет позицию из корзины.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.lineHandler(h.svc.Cart.Remove)(w, r)
}

type quantityResponse struct {
	Quantity int `json:"quantity"`
}

// CartQuantity возвращает количество товаров для значка корзины.
func (h *Handler) CartQuantity(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	q, err := h.svc.Cart.Quantity(r.Context(), sid)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, quantityResponse{Quantity: q})
}
