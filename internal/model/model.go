// Package model содержит доменные сущности витрины магазина.
package model

import (
	"errors"
	"strings"
	"time"
)

// Session описывает клиентскую сессию покупателя.
type Session struct {
	ID             string
	AuthToken      string
	UserEmail      string
	CartID         int64
	ChatbotVisible bool
}

// Authenticated сообщает, есть ли в сессии токен и email пользователя.
func (s Session) Authenticated() bool {
	return s.AuthToken != "" && s.UserEmail != ""
}

// CartLineItem описывает одну позицию корзины.
type CartLineItem struct {
	ProductID      int64  `json:"productId"`
	ProductName    string `json:"productName"`
	Image          string `json:"image,omitempty"`
	UnitPrice      int64  `json:"unitPrice"`
	SpecialPrice   int64  `json:"specialPrice"`
	Quantity       int    `json:"quantity"`
	StockAvailable int    `json:"stockAvailable"`
}

// EffectivePrice возвращает цену со скидкой, если она задана, иначе обычную цену.
func (l CartLineItem) EffectivePrice() int64 {
	if l.SpecialPrice > 0 {
		return l.SpecialPrice
	}
	return l.UnitPrice
}

// Subtotal возвращает стоимость позиции с учётом количества.
func (l CartLineItem) Subtotal() int64 {
	return l.EffectivePrice() * int64(l.Quantity)
}

// Cart описывает корзину пользователя.
type Cart struct {
	CartID int64          `json:"cartId"`
	Lines  []CartLineItem `json:"lines"`
}

// TotalPrice пересчитывает сумму корзины на стороне клиента.
func (c Cart) TotalPrice() int64 {
	return TotalPrice(c.Lines)
}

// TotalQuantity возвращает суммарное количество товаров в корзине.
func (c Cart) TotalQuantity() int {
	return TotalQuantity(c.Lines)
}

// Line возвращает позицию корзины по идентификатору товара.
func (c Cart) Line(productID int64) (CartLineItem, bool) {
	return FindLine(c.Lines, productID)
}

// TotalPrice суммирует стоимость позиций.
func TotalPrice(lines []CartLineItem) int64 {
	var total int64
	for _, l := range lines {
		total += l.Subtotal()
	}
	return total
}

// TotalQuantity суммирует количество товаров в позициях.
func TotalQuantity(lines []CartLineItem) int {
	total := 0
	for _, l := range lines {
		total += l.Quantity
	}
	return total
}

// FindLine ищет позицию по идентификатору товара.
func FindLine(lines []CartLineItem, productID int64) (CartLineItem, bool) {
	for _, l := range lines {
		if l.ProductID == productID {
			return l, true
		}
	}
	return CartLineItem{}, false
}

// OrderStatus описывает статус заказа.
type OrderStatus string

const (
	OrderStatusAccepted   OrderStatus = "Order Accepted!"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusCancelled  OrderStatus = "Cancelled"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
)

// ErrInvalidStatus возвращается для статуса вне допустимого перечисления.
var ErrInvalidStatus = errors.New("invalid order status")

// OrderStatuses возвращает все допустимые статусы в порядке жизненного цикла.
func OrderStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusAccepted,
		OrderStatusProcessing,
		OrderStatusCancelled,
		OrderStatusShipped,
		OrderStatusDelivered,
	}
}

// ParseOrderStatus проверяет строку на принадлежность перечислению статусов.
func ParseOrderStatus(s string) (OrderStatus, error) {
	for _, st := range OrderStatuses() {
		if string(st) == s {
			return st, nil
		}
	}
	return "", ErrInvalidStatus
}

// Cancellable сообщает, может ли покупатель отменить заказ в этом статусе.
func (s OrderStatus) Cancellable() bool {
	return s == OrderStatusAccepted || s == OrderStatusProcessing
}

// PaymentMethod описывает способ оплаты заказа.
type PaymentMethod string

const (
	PaymentCOD          PaymentMethod = "COD"
	PaymentMomo         PaymentMethod = "MOMO"
	PaymentBankTransfer PaymentMethod = "BankTransfer"
)

// Valid сообщает, поддерживается ли способ оплаты.
func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCOD, PaymentMomo, PaymentBankTransfer:
		return true
	}
	return false
}

// OrderItem описывает позицию оформленного заказа.
type OrderItem struct {
	ProductID   int64  `json:"productId"`
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
	Price       int64  `json:"price"`
}

// Order описывает заказ, созданный сервером из корзины.
type Order struct {
	OrderID       int64         `json:"orderId"`
	Email         string        `json:"email"`
	OrderDate     time.Time     `json:"orderDate"`
	Items         []OrderItem   `json:"orderItems"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	TotalAmount   int64         `json:"totalAmount"`
	Status        OrderStatus   `json:"orderStatus"`
}

// Page содержит параметры постраничной выборки.
type Page struct {
	PageNumber int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// WithDefaults подставляет значения по умолчанию для незаданных полей.
// Неизвестное направление сортировки заменяется на sortOrder.
func (p Page) WithDefaults(size int, sortBy, sortOrder string) Page {
	if p.PageNumber < 0 {
		p.PageNumber = 0
	}
	if p.PageSize <= 0 {
		p.PageSize = size
	}
	if p.SortBy == "" {
		p.SortBy = sortBy
	}
	switch strings.ToLower(p.SortOrder) {
	case "asc", "desc":
	default:
		p.SortOrder = sortOrder
	}
	return p
}

// Paged содержит одну страницу результатов постраничной выборки.
type Paged[T any] struct {
	Content       []T   `json:"content"`
	PageNumber    int   `json:"pageNumber"`
	PageSize      int   `json:"pageSize"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	LastPage      bool  `json:"lastPage"`
}

// OrderPage содержит страницу заказов для административного списка.
type OrderPage = Paged[Order]
