// Package session хранит клиентскую сессию покупателя: токен, email, корзину и её локальную копию.
package session

import (
	"context"
	"errors"
)

// ErrNotFound возвращается, если ключ отсутствует в сессии.
var ErrNotFound = errors.New("session key not found")

// ErrCorrupt возвращается, если сохранённое значение не удаётся разобрать.
var ErrCorrupt = errors.New("session value corrupt")

// Ключи значений сессии.
const (
	KeyAuthToken      = "auth_token"
	KeyUserEmail      = "user_email"
	KeyCartID         = "cart_id"
	KeyCart           = "cart"
	KeyChatbotVisible = "chatbot_visible"
)

// Store описывает долговременное хранилище ключ-значение, разделённое по сессиям.
type Store interface {
	Get(ctx context.Context, sid, key string) (string, error)
	Set(ctx context.Context, sid, key, value string) error
	Delete(ctx context.Context, sid string, keys ...string) error
}
