// Package service реализует операции покупателя и администратора поверх REST API магазина.
package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mmeshcher/storefront-system/internal/backend"
	"github.com/mmeshcher/storefront-system/internal/events"
	"github.com/mmeshcher/storefront-system/internal/model"
	"github.com/mmeshcher/storefront-system/internal/session"
	"github.com/mmeshcher/storefront-system/internal/validation"
)

var (
	// ErrLoginRequired возвращается для операций, требующих входа.
	ErrLoginRequired = fmt.Errorf("%w: login required", backend.ErrAuth)
	// ErrNotCancellable возвращается, если заказ уже нельзя отменить.
	ErrNotCancellable = fmt.Errorf("%w: order can no longer be cancelled", backend.ErrValidation)
)

// AccountBackend описывает операции REST API, доступные покупателю.
type AccountBackend interface {
	Login(ctx context.Context, email, password string) (string, error)
	GetOrders(ctx context.Context, token, email string) ([]model.Order, error)
	GetOrder(ctx context.Context, token, email string, orderID int64) (*model.Order, error)
	CancelOrder(ctx context.Context, token string, orderID int64) error
	Register(ctx context.Context, reg model.Registration) error
	GetUser(ctx context.Context, token, email string) (*model.User, error)
}

// Publisher публикует уведомления об изменениях.
type Publisher interface {
	Publish(e events.Event)
}

// Service содержит операции покупателя: вход, выход и заказы.
type Service struct {
	api      AccountBackend
	sessions *session.Manager
	bus      Publisher
	logger   *zap.Logger
}

// NewService создаёт сервис покупателя.
func NewService(api AccountBackend, sessions *session.Manager, bus Publisher, logger *zap.Logger) *Service {
	return &Service{
		api:      api,
		sessions: sessions,
		bus:      bus,
		logger:   logger,
	}
}

// Session возвращает текущее состояние сессии.
func (s *Service) Session(ctx context.Context, sid string) (model.Session, error) {
	return s.sessions.Load(ctx, sid)
}

// Login выполняет вход и сохраняет токен в сессии, сбрасывая корзину предыдущего пользователя.
func (s *Service) Login(ctx context.Context, sid, email, password string) (model.Session, error) {
	token, err := s.api.Login(ctx, email, password)
	if err != nil {
		return model.Session{}, err
	}
	if err := s.sessions.Login(ctx, sid, token, email); err != nil {
		return model.Session{}, err
	}

	s.logger.Info("user logged in", zap.String("sid", sid), zap.String("email", email))
	s.bus.Publish(events.New(events.AuthChanged, sid))
	return s.sessions.Load(ctx, sid)
}

// Logout очищает сессию.
func (s *Service) Logout(ctx context.Context, sid string) error {
	if err := s.sessions.Clear(ctx, sid); err != nil {
		return err
	}
	s.bus.Publish(events.New(events.Logout, sid))
	return nil
}

// Register создаёт учётную запись. Вход после регистрации выполняется отдельно.
func (s *Service) Register(ctx context.Context, sid string, form validation.RegisterForm) error {
	if err := validation.ValidateRegister(form); err != nil {
		return err
	}
	if err := s.api.Register(ctx, form.Registration()); err != nil {
		return err
	}

	s.logger.Info("user registered", zap.String("sid", sid), zap.String("email", form.Email))
	return nil
}

// Profile возвращает профиль текущего пользователя.
func (s *Service) Profile(ctx context.Context, sid string) (*model.User, error) {
	sess, err := s.authenticated(ctx, sid)
	if err != nil {
		return nil, err
	}
	user, err := s.api.GetUser(ctx, sess.AuthToken, sess.UserEmail)
	if err != nil {
		return nil, s.ExpireOnAuth(ctx, sid, err)
	}
	return user, nil
}

// Orders возвращает заказы текущего пользователя.
func (s *Service) Orders(ctx context.Context, sid string) ([]model.Order, error) {
	sess, err := s.authenticated(ctx, sid)
	if err != nil {
		return nil, err
	}
	orders, err := s.api.GetOrders(ctx, sess.AuthToken, sess.UserEmail)
	if err != nil {
		return nil, s.ExpireOnAuth(ctx, sid, err)
	}
	return orders, nil
}

// Order возвращает заказ текущего пользователя.
func (s *Service) Order(ctx context.Context, sid string, orderID int64) (*model.Order, error) {
	sess, err := s.authenticated(ctx, sid)
	if err != nil {
		return nil, err
	}
	order, err := s.api.GetOrder(ctx, sess.AuthToken, sess.UserEmail, orderID)
	if err != nil {
		return nil, s.ExpireOnAuth(ctx, sid, err)
	}
	return order, nil
}

// CancelOrder отменяет заказ, если он ещё не передан в доставку, и возвращает его новое состояние.
func (s *Service) CancelOrder(ctx context.Context, sid string, orderID int64) (*model.Order, error) {
	sess, err := s.authenticated(ctx, sid)
	if err != nil {
		return nil, err
	}

	order, err := s.api.GetOrder(ctx, sess.AuthToken, sess.UserEmail, orderID)
	if err != nil {
		return nil, s.ExpireOnAuth(ctx, sid, err)
	}
	if !order.Status.Cancellable() {
		return nil, ErrNotCancellable
	}

	if err := s.api.CancelOrder(ctx, sess.AuthToken, orderID); err != nil {
		return nil, s.ExpireOnAuth(ctx, sid, err)
	}

	fresh, err := s.api.GetOrder(ctx, sess.AuthToken, sess.UserEmail, orderID)
	if err != nil {
		// Отмена уже принята сервером.
		s.logger.Warn("failed to reload cancelled order",
			zap.String("sid", sid), zap.Int64("order_id", orderID), zap.Error(err))
		_ = s.ExpireOnAuth(ctx, sid, err)
		cancelled := *order
		cancelled.Status = model.OrderStatusCancelled
		return &cancelled, nil
	}
	return fresh, nil
}

func (s *Service) authenticated(ctx context.Context, sid string) (model.Session, error) {
	sess, err := s.sessions.Load(ctx, sid)
	if err != nil {
		return sess, err
	}
	if !sess.Authenticated() {
		return sess, ErrLoginRequired
	}
	return sess, nil
}

// ExpireOnAuth сбрасывает сессию при ErrAuth и возвращает исходную ошибку.
func (s *Service) ExpireOnAuth(ctx context.Context, sid string, err error) error {
	if !errors.Is(err, backend.ErrAuth) {
		return err
	}
	if cerr := s.sessions.Clear(ctx, sid); cerr != nil {
		s.logger.Error("failed to clear session after auth error", zap.String("sid", sid), zap.Error(cerr))
	}
	s.bus.Publish(events.New(events.AuthChanged, sid))
	return err
}
