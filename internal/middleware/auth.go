// Package middleware содержит HTTP middleware витрины.
package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

type contextKey string

const sessionIDKey contextKey = "sessionID"

const (
	sessionCookieName = "sid"
	defaultCookieTTL  = 30 * 24 * time.Hour
)

// SessionMiddleware привязывает запрос к сессии по подписанному cookie и выдаёт новую сессию при его отсутствии.
type SessionMiddleware struct {
	secretKey []byte
	ttl       time.Duration
}

// NewSessionMiddleware создаёт SessionMiddleware с указанным секретным ключом и сроком жизни cookie.
func NewSessionMiddleware(secret string, ttl time.Duration) *SessionMiddleware {
	key := []byte(secret)
	if len(key) == 0 {
		randomKey := make([]byte, 32)
		if _, err := rand.Read(randomKey); err == nil {
			key = randomKey
		} else {
			key = []byte("default-secret-key")
		}
	}
	if ttl <= 0 {
		ttl = defaultCookieTTL
	}

	return &SessionMiddleware{
		secretKey: key,
		ttl:       ttl,
	}
}

// Middleware добавляет идентификатор сессии в контекст запроса.
func (m *SessionMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := ""
		if cookie, err := r.Cookie(sessionCookieName); err == nil {
			sid, _ = m.parseCookie(cookie.Value)
		}

		if sid == "" {
			sid = uuid.NewString()
		}
		// Cookie продлевается на каждом запросе вместе со сроком жизни сессии в хранилище.
		m.SetSessionCookie(w, sid)

		ctx := WithSessionID(r.Context(), sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SetSessionCookie устанавливает подписанный cookie сессии.
func (m *SessionMiddleware) SetSessionCookie(w http.ResponseWriter, sid string) {
	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    m.sign(sid),
		Path:     "/",
		Expires:  time.Now().Add(m.ttl),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	http.SetCookie(w, cookie)
}

func (m *SessionMiddleware) sign(sid string) string {
	mac := hmac.New(sha256.New, m.secretKey)
	mac.Write([]byte(sid))
	return sid + "." + hex.EncodeToString(mac.Sum(nil))
}

func (m *SessionMiddleware) parseCookie(value string) (string, bool) {
	sid, signature, ok := strings.Cut(value, ".")
	if !ok {
		return "", false
	}
	if _, err := uuid.Parse(sid); err != nil {
		return "", false
	}

	_, expected, _ := strings.Cut(m.sign(sid), ".")
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return "", false
	}
	return sid, true
}

// WithSessionID возвращает контекст с идентификатором сессии.
func WithSessionID(ctx context.Context, sid string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sid)
}

// GetSessionIDFromContext извлекает идентификатор сессии из контекста запроса.
func GetSessionIDFromContext(ctx context.Context) (string, bool) {
	sid, ok := ctx.Value(sessionIDKey).(string)
	return sid, ok && sid != ""
}
