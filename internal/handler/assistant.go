package handler

import (
	"net/http"
	"strings"
)

type assistantRequest struct {
	Message string `json:"message"`
}

// AssistantReply отвечает на сообщение чат-ассистенту.
func (h *Handler) AssistantReply(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}

	var req assistantRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	reply, err := h.svc.Assistant.Reply(r.Context(), sid, req.Message)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, reply)
}

type visibilityRequest struct {
	Visible bool `json:"visible"`
}

// AssistantVisibility сохраняет видимость окна ассистента.
func (h *Handler) AssistantVisibility(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}

	var req visibilityRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.Assistant.SetVisible(r.Context(), sid, req.Visible); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
