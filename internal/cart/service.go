// Package cart реализует согласование локальной копии корзины с сервером.
package cart

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
	// ErrStockExceeded возвращается при попытке превысить остаток товара на складе.
	ErrStockExceeded = fmt.Errorf("%w: quantity exceeds available stock", backend.ErrValidation)
	// ErrLineNotFound возвращается, если товара нет в локальной копии корзины.
	ErrLineNotFound = fmt.Errorf("%w: product is not in the cart", backend.ErrNotFound)
)

// Предупреждения, возвращаемые вместе с корзиной.
const (
	WarningStale      = "could not refresh the cart, showing the last saved copy"
	WarningNotCleared = "the cart was emptied here, but could not be cleared on the server"
)

// Gateway описывает операции REST API, необходимые корзине.
type Gateway interface {
	CreateCart(ctx context.Context, token, email string) (int64, error)
	GetCart(ctx context.Context, token, email string, cartID int64) (*model.Cart, error)
	AddOrSetLineItem(ctx context.Context, token string, cartID, productID int64, quantity int, op backend.LineOp) error
	RemoveLineItem(ctx context.Context, token string, cartID, productID int64) error
	ClearCart(ctx context.Context, token string, cartID int64) error
}

// Publisher публикует уведомления об изменениях.
type Publisher interface {
	Publish(e events.Event)
}

// View описывает состояние корзины для отображения.
type View struct {
	CartID        int64                `json:"cartId,omitempty"`
	Lines         []model.CartLineItem `json:"lines"`
	TotalPrice    int64                `json:"totalPrice"`
	TotalQuantity int                  `json:"totalQuantity"`
	LoginRequired bool                 `json:"loginRequired,omitempty"`
	Warning       string               `json:"warning,omitempty"`
}

func newView(c model.Cart) View {
	if c.Lines == nil {
		c.Lines = []model.CartLineItem{}
	}
	return View{
		CartID:        c.CartID,
		Lines:         c.Lines,
		TotalPrice:    c.TotalPrice(),
		TotalQuantity: c.TotalQuantity(),
	}
}

func loginRequired() View {
	v := newView(model.Cart{})
	v.LoginRequired = true
	return v
}

// Service согласует корзину сессии с сервером.
type Service struct {
	gateway  Gateway
	sessions *session.Manager
	bus      Publisher
	logger   *zap.Logger
}

// NewService создаёт сервис корзины.
func NewService(gateway Gateway, sessions *session.Manager, bus Publisher, logger *zap.Logger) *Service {
	return &Service{
		gateway:  gateway,
		sessions: sessions,
		bus:      bus,
		logger:   logger,
	}
}

// View возвращает актуальное состояние корзины, при необходимости создавая её.
func (s *Service) View(ctx context.Context, sid string) (View, error) {
	sess, err := s.sessions.Load(ctx, sid)
	if err != nil {
		return View{}, err
	}
	if !sess.Authenticated() {
		return loginRequired(), nil
	}
	return s.refresh(ctx, sess)
}

// Quantity возвращает суммарное количество товаров по локальной копии без обращения к серверу.
func (s *Service) Quantity(ctx context.Context, sid string) (int, error) {
	lines, err := s.mirror(ctx, sid)
	if err != nil {
		return 0, err
	}
	return model.Cart{Lines: lines}.TotalQuantity(), nil
}

// Add добавляет товар в корзину или увеличивает количество уже добавленного.
func (s *Service) Add(ctx context.Context, sid string, productID int64, quantity int) (View, error) {
	if err := validation.ValidateQuantity(quantity); err != nil {
		return View{}, err
	}

	sess, err := s.sessions.Load(ctx, sid)
	if err != nil {
		return View{}, err
	}
	if !sess.Authenticated() {
		return loginRequired(), nil
	}

	if err := s.ensureCart(ctx, &sess); err != nil {
		return View{}, s.fail(ctx, sess, err)
	}

	lines, err := s.mirror(ctx, sid)
	if err != nil {
		return View{}, err
	}
	current := model.Cart{CartID: sess.CartID, Lines: lines}

	op, target := backend.LineAdd, quantity
	if line, ok := current.Line(productID); ok {
		op, target = backend.LineSet, line.Quantity+quantity
		if line.StockAvailable > 0 && target > line.StockAvailable {
			return View{}, ErrStockExceeded
		}
	}

	if err := s.gateway.AddOrSetLineItem(ctx, sess.AuthToken, sess.CartID, productID, target, op); err != nil {
		return View{}, s.fail(ctx, sess, err)
	}
	return s.afterMutation(ctx, sess)
}

// Increment увеличивает количество позиции на единицу в пределах остатка.
func (s *Service) Increment(ctx context.Context, sid string, productID int64) (View, error) {
	return s.mutateLine(ctx, sid, productID, func(sess model.Session, line model.CartLineItem) error {
		if line.Quantity >= line.StockAvailable {
			return ErrStockExceeded
		}
		return s.gateway.AddOrSetLineItem(ctx, sess.AuthToken, sess.CartID, productID, line.Quantity+1, backend.LineSet)
	})
}

// Decrement уменьшает количество позиции на единицу; позиция с количеством 1 удаляется.
func (s *Service) Decrement(ctx context.Context, sid string, productID int64) (View, error) {
	return s.mutateLine(ctx, sid, productID, func(sess model.Session, line model.CartLineItem) error {
		if line.Quantity <= 1 {
			return s.gateway.RemoveLineItem(ctx, sess.AuthToken, sess.CartID, productID)
		}
		return s.gateway.AddOrSetLineItem(ctx, sess.AuthToken, sess.CartID, productID, line.Quantity-1, backend.LineSet)
	})
}

// Remove удаляет позицию из корзины.
func (s *Service) Remove(ctx context.Context, sid string, productID int64) (View, error) {
	return s.mutateLine(ctx, sid, productID, func(sess model.Session, _ model.CartLineItem) error {
		return s.gateway.RemoveLineItem(ctx, sess.AuthToken, sess.CartID, productID)
	})
}

// Clear очищает корзину. Ошибка сервера не прерывает операцию: локальная копия очищается
// всегда, а в View.Warning возвращается WarningNotCleared.
func (s *Service) Clear(ctx context.Context, sid string) (View, error) {
	sess, err := s.sessions.Load(ctx, sid)
	if err != nil {
		return View{}, err
	}

	warning := ""
	if sess.Authenticated() && sess.CartID != 0 {
		if err := s.gateway.ClearCart(ctx, sess.AuthToken, sess.CartID); err != nil {
			s.logger.Warn("remote cart clear failed",
				zap.String("sid", sid),
				zap.Int64("cartID", sess.CartID),
				zap.Error(err),
			)
			warning = WarningNotCleared
		}
	}

	if err := s.sessions.SaveLines(ctx, sid, nil); err != nil {
		return View{}, err
	}
	s.bus.Publish(events.New(events.CartChanged, sid))

	if !sess.Authenticated() {
		return loginRequired(), nil
	}
	v := newView(model.Cart{CartID: sess.CartID})
	v.Warning = warning
	return v, nil
}

func (s *Service) mutateLine(ctx context.Context, sid string, productID int64, apply func(model.Session, model.CartLineItem) error) (View, error) {
	sess, err := s.sessions.Load(ctx, sid)
	if err != nil {
		return View{}, err
	}
	if !sess.Authenticated() {
		return loginRequired(), nil
	}
	if sess.CartID == 0 {
		return View{}, ErrLineNotFound
	}

	lines, err := s.mirror(ctx, sid)
	if err != nil {
		return View{}, err
	}
	line, ok := model.Cart{CartID: sess.CartID, Lines: lines}.Line(productID)
	if !ok {
		return View{}, ErrLineNotFound
	}

	if err := apply(sess, line); err != nil {
		if errors.Is(err, ErrStockExceeded) {
			return View{}, err
		}
		return View{}, s.fail(ctx, sess, err)
	}
	return s.afterMutation(ctx, sess)
}

func (s *Service) afterMutation(ctx context.Context, sess model.Session) (View, error) {
	v, err := s.refresh(ctx, sess)
	if err != nil {
		return v, err
	}
	s.bus.Publish(events.New(events.CartChanged, sess.ID))
	return v, nil
}

// refresh загружает корзину с сервера и целиком заменяет локальную копию.
func (s *Service) refresh(ctx context.Context, sess model.Session) (View, error) {
	if err := s.ensureCart(ctx, &sess); err != nil {
		return s.fallback(ctx, sess, err)
	}

	cart, err := s.gateway.GetCart(ctx, sess.AuthToken, sess.UserEmail, sess.CartID)
	if errors.Is(err, backend.ErrNotFound) {
		s.logger.Info("stored cart not found, creating a new one",
			zap.String("sid", sess.ID),
			zap.Int64("cartID", sess.CartID),
		)
		sess.CartID = 0
		if err = s.ensureCart(ctx, &sess); err == nil {
			cart, err = s.gateway.GetCart(ctx, sess.AuthToken, sess.UserEmail, sess.CartID)
		}
	}
	if err != nil {
		return s.fallback(ctx, sess, err)
	}

	current := model.Cart{CartID: sess.CartID, Lines: cart.Lines}
	if err := s.sessions.SaveCart(ctx, sess.ID, current); err != nil {
		return View{}, err
	}
	return newView(current), nil
}

func (s *Service) fallback(ctx context.Context, sess model.Session, cause error) (View, error) {
	if errors.Is(cause, backend.ErrAuth) {
		return loginRequired(), s.fail(ctx, sess, cause)
	}
	if errors.Is(cause, context.Canceled) {
		return View{}, cause
	}

	s.logger.Warn("cart refresh failed, using saved copy",
		zap.String("sid", sess.ID),
		zap.Int64("cartID", sess.CartID),
		zap.Error(cause),
	)

	lines, err := s.mirror(ctx, sess.ID)
	if err != nil {
		return View{}, err
	}
	v := newView(model.Cart{CartID: sess.CartID, Lines: lines})
	v.Warning = WarningStale
	return v, nil
}

func (s *Service) ensureCart(ctx context.Context, sess *model.Session) error {
	if sess.CartID != 0 {
		return nil
	}

	id, err := s.gateway.CreateCart(ctx, sess.AuthToken, sess.UserEmail)
	if err != nil {
		return err
	}
	if err := s.sessions.SaveCart(ctx, sess.ID, model.Cart{CartID: id}); err != nil {
		return err
	}
	sess.CartID = id
	return nil
}

// mirror читает локальную копию; испорченная копия считается пустой.
func (s *Service) mirror(ctx context.Context, sid string) ([]model.CartLineItem, error) {
	lines, err := s.sessions.Lines(ctx, sid)
	if err == nil {
		return lines, nil
	}
	if errors.Is(err, session.ErrCorrupt) {
		s.logger.Warn("discarding corrupt cart copy", zap.String("sid", sid), zap.Error(err))
		return []model.CartLineItem{}, nil
	}
	return nil, err
}

// fail сбрасывает сессию при ErrAuth и возвращает исходную ошибку.
func (s *Service) fail(ctx context.Context, sess model.Session, err error) error {
	if !errors.Is(err, backend.ErrAuth) {
		return err
	}
	if cerr := s.sessions.Clear(ctx, sess.ID); cerr != nil {
		s.logger.Error("failed to clear session after auth error", zap.String("sid", sess.ID), zap.Error(cerr))
	}
	s.bus.Publish(events.New(events.AuthChanged, sess.ID))
	return err
}
