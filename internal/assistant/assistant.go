// Package assistant отвечает на сообщения чат-ассистента витрины.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mmeshcher/storefront-system/internal/backend"
	"github.com/mmeshcher/storefront-system/internal/cart"
	"github.com/mmeshcher/storefront-system/internal/model"
	"github.com/mmeshcher/storefront-system/internal/session"
)

// Intent задаёт распознанное намерение сообщения.
type Intent string

const (
	IntentGreeting    Intent = "greeting"
	IntentCart        Intent = "cart"
	IntentOrders      Intent = "orders"
	IntentProfile     Intent = "profile"
	IntentBestSellers Intent = "bestsellers"
	IntentPrice       Intent = "price"
	IntentSearch      Intent = "search"
	IntentPromotions  Intent = "promotions"
	IntentCategories  Intent = "categories"
	IntentStoreInfo   Intent = "store"
	IntentAddress     Intent = "address"
	IntentContact     Intent = "contact"
	IntentBlogs       Intent = "blogs"
	IntentOverview    Intent = "overview"
	IntentGeneral     Intent = "general"
)

// Готовые ответы ассистента.
const (
	ReplyGreeting      = "Hi! I'm the store assistant. Ask me about products, prices, promotions, your cart or your orders."
	ReplyLoginRequired = "Please log in first: /login"
	ReplyEmptyCart     = "Your cart is empty."
	ReplyNoOrders      = "You have no orders yet."
	ReplyUnavailable   = "Sorry, I can't answer that right now. Please try again later."
	ReplyEmptyMessage  = "Please type a message."
	ReplyAskProduct    = "Which product? Try \"price of <product name>\"."
	ReplyNoProducts    = "No products to show right now. Browse everything at /products"
	ReplyNoPromotions  = "There are no promotions right now. Check /products for updates."
	ReplyNoCategories  = "There are no categories yet. Browse everything at /products"
	ReplyNoBlogs       = "There are no articles yet. Visit /blog later."
	ReplyNoStores      = "Store details are not available yet. Write to us at /contact"
)

const (
	maxListedOrders = 5
	bestSellerCount = 3
	searchPageSize  = 5
	promoPageSize   = 10
	categoryLimit   = 100
	blogPageSize    = 5
	overviewCount   = 3
)

// CartViewer возвращает корзину сессии.
type CartViewer interface {
	View(ctx context.Context, sid string) (cart.View, error)
}

// OrderLister возвращает заказы пользователя сессии.
type OrderLister interface {
	Orders(ctx context.Context, sid string) ([]model.Order, error)
}

// ProfileReader возвращает профиль пользователя сессии.
type ProfileReader interface {
	Profile(ctx context.Context, sid string) (*model.User, error)
}

// Catalog описывает публичные выборки каталога.
type Catalog interface {
	Products(ctx context.Context, page model.Page) (*model.Paged[model.Product], error)
	BestSellers(ctx context.Context, size int) (*model.Paged[model.Product], error)
	Promotions(ctx context.Context, page model.Page) (*model.Paged[model.Product], error)
	Search(ctx context.Context, keyword string, categoryID int64, page model.Page) (*model.Paged[model.Product], error)
	Categories(ctx context.Context, page model.Page) (*model.Paged[model.Category], error)
	Blogs(ctx context.Context, page model.Page) (*model.Paged[model.Blog], error)
	Stores(ctx context.Context) ([]model.StoreConfig, error)
}

// Sources объединяет источники данных ассистента.
type Sources struct {
	Carts    CartViewer
	Orders   OrderLister
	Profiles ProfileReader
	Catalog  Catalog
}

// Generator генерирует свободный ответ на сообщение.
type Generator interface {
	Generate(ctx context.Context, message string) (string, error)
}

// Reply описывает ответ ассистента.
type Reply struct {
	Intent Intent `json:"intent"`
	Text   string `json:"text"`
}

// Assistant маршрутизирует сообщения по намерениям.
type Assistant struct {
	src       Sources
	generator Generator
	sessions  *session.Manager
	logger    *zap.Logger
}

// New создаёт ассистента. generator может быть nil: тогда свободные вопросы получают вежливый отказ.
func New(src Sources, generator Generator, sessions *session.Manager, logger *zap.Logger) *Assistant {
	return &Assistant{
		src:       src,
		generator: generator,
		sessions:  sessions,
		logger:    logger,
	}
}

// Reply отвечает на сообщение пользователя.
func (a *Assistant) Reply(ctx context.Context, sid, message string) (Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Reply{Intent: IntentGeneral, Text: ReplyEmptyMessage}, nil
	}

	intent, keyword := Parse(message)
	var (
		text string
		err  error
	)
	switch intent {
	case IntentGreeting:
		return Reply{Intent: intent, Text: ReplyGreeting}, nil
	case IntentCart:
		text, err := a.cartSummary(ctx, sid)
		return Reply{Intent: intent, Text: text}, err
	case IntentOrders:
		text, err := a.orderSummary(ctx, sid)
		return Reply{Intent: intent, Text: text}, err
	case IntentProfile:
		text, err = a.profile(ctx, sid)
	case IntentBestSellers:
		text, err = a.bestSellers(ctx)
	case IntentPrice:
		text, err = a.prices(ctx, keyword)
	case IntentSearch:
		text, err = a.search(ctx, keyword)
	case IntentPromotions:
		text, err = a.promotions(ctx)
	case IntentCategories:
		text, err = a.categories(ctx)
	case IntentStoreInfo:
		text, err = a.storeInfo(ctx)
	case IntentAddress:
		text, err = a.address(ctx, sid)
	case IntentContact:
		text, err = a.contact(ctx)
	case IntentBlogs:
		text, err = a.blogs(ctx)
	case IntentOverview:
		text, err = a.overview(ctx)
	default:
		return Reply{Intent: IntentGeneral, Text: a.generate(ctx, message)}, nil
	}

	if err != nil {
		a.logger.Warn("assistant lookup failed", zap.String("intent", string(intent)), zap.Error(err))
		text = ReplyUnavailable
	}
	return Reply{Intent: intent, Text: text}, nil
}

// SetVisible сохраняет видимость окна ассистента.
func (a *Assistant) SetVisible(ctx context.Context, sid string, visible bool) error {
	return a.sessions.SetChatbotVisible(ctx, sid, visible)
}

func (a *Assistant) cartSummary(ctx context.Context, sid string) (string, error) {
	v, err := a.src.Carts.View(ctx, sid)
	if v.LoginRequired || errors.Is(err, backend.ErrAuth) {
		return ReplyLoginRequired, nil
	}
	if err != nil {
		return "", err
	}
	if len(v.Lines) == 0 {
		return ReplyEmptyCart, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Your cart has %d item(s):\n", v.TotalQuantity)
	for _, l := range v.Lines {
		fmt.Fprintf(&b, "- %s x%d: %s\n", l.ProductName, l.Quantity, FormatVND(l.Subtotal()))
	}
	fmt.Fprintf(&b, "Total: %s", FormatVND(v.TotalPrice))
	return b.String(), nil
}

func (a *Assistant) orderSummary(ctx context.Context, sid string) (string, error) {
	orders, err := a.src.Orders.Orders(ctx, sid)
	if errors.Is(err, backend.ErrAuth) {
		return ReplyLoginRequired, nil
	}
	if err != nil {
		return "", err
	}
	if len(orders) == 0 {
		return ReplyNoOrders, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You have %d order(s):", len(orders))
	for i, o := range orders {
		if i == maxListedOrders {
			fmt.Fprintf(&b, "\n... and %d more at /orders", len(orders)-maxListedOrders)
			break
		}
		fmt.Fprintf(&b, "\n- #%d %s %s /orders/%d", o.OrderID, o.Status, FormatVND(o.TotalAmount), o.OrderID)
	}
	return b.String(), nil
}

func (a *Assistant) generate(ctx context.Context, message string) string {
	if a.generator == nil {
		return ReplyUnavailable
	}
	text, err := a.generator.Generate(ctx, message)
	if err != nil {
		a.logger.Warn("assistant generation failed", zap.Error(err))
		return ReplyUnavailable
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ReplyUnavailable
	}
	return text
}

// FormatVND форматирует сумму в донгах с разделителями тысяч.
func FormatVND(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)

	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	return sign + b.String() + " ₫"
}
