package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/mmeshcher/storefront-system/internal/model"
)

// Manager предоставляет типизированный доступ к сессии поверх Store.
type Manager struct {
	store Store
}

// NewManager создаёт менеджер сессий.
func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Load читает сессию; отсутствующие поля остаются пустыми.
func (m *Manager) Load(ctx context.Context, sid string) (model.Session, error) {
	s := model.Session{ID: sid}

	var err error
	if s.AuthToken, err = m.get(ctx, sid, KeyAuthToken); err != nil {
		return s, err
	}
	if s.UserEmail, err = m.get(ctx, sid, KeyUserEmail); err != nil {
		return s, err
	}

	rawCartID, err := m.get(ctx, sid, KeyCartID)
	if err != nil {
		return s, err
	}
	if rawCartID != "" {
		// Испорченное значение трактуется как отсутствие корзины.
		if id, perr := strconv.ParseInt(rawCartID, 10, 64); perr == nil && id > 0 {
			s.CartID = id
		}
	}

	visible, err := m.get(ctx, sid, KeyChatbotVisible)
	if err != nil {
		return s, err
	}
	s.ChatbotVisible = visible == "true"

	return s, nil
}

func (m *Manager) get(ctx context.Context, sid, key string) (string, error) {
	v, err := m.store.Get(ctx, sid, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return v, nil
}

// Login сохраняет учётные данные и сбрасывает корзину предыдущего пользователя.
func (m *Manager) Login(ctx context.Context, sid, token, email string) error {
	if err := m.store.Delete(ctx, sid, KeyCartID, KeyCart); err != nil {
		return fmt.Errorf("reset cart: %w", err)
	}
	if err := m.store.Set(ctx, sid, KeyAuthToken, token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	if err := m.store.Set(ctx, sid, KeyUserEmail, email); err != nil {
		return fmt.Errorf("save email: %w", err)
	}
	return nil
}

// Clear удаляет учётные данные, идентификатор корзины и её локальную копию.
func (m *Manager) Clear(ctx context.Context, sid string) error {
	if err := m.store.Delete(ctx, sid, KeyAuthToken, KeyUserEmail, KeyCartID, KeyCart); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// SetCartID сохраняет идентификатор корзины.
func (m *Manager) SetCartID(ctx context.Context, sid string, cartID int64) error {
	if err := m.store.Set(ctx, sid, KeyCartID, strconv.FormatInt(cartID, 10)); err != nil {
		return fmt.Errorf("save cart id: %w", err)
	}
	return nil
}

// Lines возвращает локальную копию позиций корзины.
func (m *Manager) Lines(ctx context.Context, sid string) ([]model.CartLineItem, error) {
	raw, err := m.get(ctx, sid, KeyCart)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return []model.CartLineItem{}, nil
	}

	var lines []model.CartLineItem
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return nil, fmt.Errorf("decode cart mirror: %w: %w", ErrCorrupt, err)
	}
	if lines == nil {
		lines = []model.CartLineItem{}
	}
	return lines, nil
}

// SaveLines целиком заменяет локальную копию позиций корзины.
func (m *Manager) SaveLines(ctx context.Context, sid string, lines []model.CartLineItem) error {
	if lines == nil {
		lines = []model.CartLineItem{}
	}
	raw, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("encode cart mirror: %w", err)
	}
	if err := m.store.Set(ctx, sid, KeyCart, string(raw)); err != nil {
		return fmt.Errorf("save cart mirror: %w", err)
	}
	return nil
}

// SaveCart сохраняет идентификатор корзины и заменяет её локальную копию.
func (m *Manager) SaveCart(ctx context.Context, sid string, cart model.Cart) error {
	if err := m.SetCartID(ctx, sid, cart.CartID); err != nil {
		return err
	}
	return m.SaveLines(ctx, sid, cart.Lines)
}

// SetChatbotVisible сохраняет признак видимости окна чат-ассистента.
func (m *Manager) SetChatbotVisible(ctx context.Context, sid string, visible bool) error {
	if err := m.store.Set(ctx, sid, KeyChatbotVisible, strconv.FormatBool(visible)); err != nil {
		return fmt.Errorf("save chatbot flag: %w", err)
	}
	return nil
}
