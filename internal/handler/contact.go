package handler

import (
	"net/http"

	"github.com/mmeshcher/storefront-system/internal/validation"
)

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// SubmitContact принимает обращение из формы обратной связи.
func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if !decode(w, r, &req) {
		return
	}

	contact, err := h.svc.Contacts.Submit(r.Context(), validation.ContactForm{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Message: req.Message,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, contact)
}

// AdminListContacts возвращает страницу обращений.
func (h *Handler) AdminListContacts(w http.ResponseWriter, r *http.Request) {
	sid, token, ok := h.adminToken(w, r)
	if !ok {
		return
	}

	res, err := h.svc.Contacts.List(r.Context(), token, pageQuery(r))
	if err != nil {
		h.adminError(w, r, sid, err)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

type replyRequest struct {
	Reply string `json:"reply"`
}

// AdminReplyContact отправляет ответ на обращение по почте.
func (h *Handler) AdminReplyContact(w http.ResponseWriter, r *http.Request) {
	sid, token, ok := h.adminToken(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req replyRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := h.svc.Contacts.Reply(r.Context(), token, id, req.Reply)
	if err != nil {
		h.adminError(w, r, sid, err)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}
