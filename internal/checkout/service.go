// Package checkout реализует оформление заказа из корзины.
package checkout

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mmeshcher/storefront-system/internal/backend"
	"github.com/mmeshcher/storefront-system/internal/cart"
	"github.com/mmeshcher/storefront-system/internal/events"
	"github.com/mmeshcher/storefront-system/internal/model"
	"github.com/mmeshcher/storefront-system/internal/session"
	"github.com/mmeshcher/storefront-system/internal/validation"
)

var (
	// ErrLoginRequired возвращается для неавторизованной сессии.
	ErrLoginRequired = fmt.Errorf("%w: login required to place an order", backend.ErrAuth)
	// ErrNoCart возвращается, если у сессии нет корзины.
	ErrNoCart = fmt.Errorf("%w: cart does not exist", validation.ErrInvalid)
)

// Предупреждения, возвращаемые вместе с успешно созданным заказом.
const (
	WarningEmail = "order placed, but the confirmation email could not be sent"
	WarningClear = "order placed, but the cart could not be emptied"
)

// OrderPlacer создаёт заказ из корзины на сервере.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, token, email string, cartID int64, method model.PaymentMethod) (*model.Order, error)
}

// Mailer отправляет подтверждение заказа.
type Mailer interface {
	SendOrderConfirmation(ctx context.Context, to string, order model.Order) error
}

// CartClearer очищает корзину сессии.
type CartClearer interface {
	Clear(ctx context.Context, sid string) (cart.View, error)
}

// Publisher публикует уведомления об изменениях.
type Publisher interface {
	Publish(e events.Event)
}

// Result описывает итог оформления заказа.
type Result struct {
	Order    *model.Order `json:"order"`
	Redirect string       `json:"redirect"`
	Warnings []string     `json:"warnings,omitempty"`
}

// Service выполняет оформление заказа.
type Service struct {
	orders   OrderPlacer
	mailer   Mailer
	carts    CartClearer
	sessions *session.Manager
	bus      Publisher
	logger   *zap.Logger
}

// NewService создаёт сервис оформления заказа.
func NewService(orders OrderPlacer, mailer Mailer, carts CartClearer, sessions *session.Manager, bus Publisher, logger *zap.Logger) *Service {
	return &Service{
		orders:   orders,
		mailer:   mailer,
		carts:    carts,
		sessions: sessions,
		bus:      bus,
		logger:   logger,
	}
}

// ConfirmationPath возвращает адрес страницы подтверждения заказа.
func ConfirmationPath(orderID int64) string {
	return fmt.Sprintf("/orders/%d/confirmation", orderID)
}

// PlaceOrder создаёт заказ, отправляет подтверждение и очищает корзину.
// Только создание заказа обязательно: ошибки письма и очистки возвращаются как предупреждения.
func (s *Service) PlaceOrder(ctx context.Context, sid string, form validation.CheckoutForm) (*Result, error) {
	if err := validation.ValidateCheckout(form); err != nil {
		return nil, err
	}

	sess, err := s.sessions.Load(ctx, sid)
	if err != nil {
		return nil, err
	}
	if !sess.Authenticated() {
		return nil, ErrLoginRequired
	}
	if sess.CartID == 0 {
		return nil, ErrNoCart
	}

	order, err := s.orders.PlaceOrder(ctx, sess.AuthToken, sess.UserEmail, sess.CartID, form.PaymentMethod)
	if err != nil {
		if errors.Is(err, backend.ErrAuth) {
			s.expire(ctx, sid)
		}
		return nil, err
	}

	s.logger.Info("order placed",
		zap.String("sid", sid),
		zap.Int64("orderID", order.OrderID),
		zap.Int64("cartID", sess.CartID),
	)

	res := &Result{Order: order, Redirect: ConfirmationPath(order.OrderID)}

	if err := s.mailer.SendOrderConfirmation(ctx, sess.UserEmail, *order); err != nil {
		s.logger.Warn("order confirmation email failed",
			zap.Int64("orderID", order.OrderID),
			zap.Error(err),
		)
		res.Warnings = append(res.Warnings, WarningEmail)
	}

	v, err := s.carts.Clear(ctx, sid)
	switch {
	case err != nil:
		s.logger.Warn("cart clear after order failed",
			zap.Int64("orderID", order.OrderID),
			zap.Error(err),
		)
		res.Warnings = append(res.Warnings, WarningClear)
	case v.Warning != "":
		res.Warnings = append(res.Warnings, v.Warning)
	}

	return res, nil
}

func (s *Service) expire(ctx context.Context, sid string) {
	if err := s.sessions.Clear(ctx, sid); err != nil {
		s.logger.Error("failed to clear session after auth error", zap.String("sid", sid), zap.Error(err))
	}
	s.bus.Publish(events.New(events.AuthChanged, sid))
}
