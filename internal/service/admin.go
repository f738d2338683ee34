package service

import (
	"context"

	"github.com/mmeshcher/storefront-system/internal/model"
)

// Параметры административного списка заказов по умолчанию.
const (
	DefaultPageSize  = 10
	DefaultSortBy    = "orderId"
	DefaultSortOrder = "asc"
)

// AdminBackend описывает административные операции REST API.
type AdminBackend interface {
	ListOrders(ctx context.Context, token string, page model.Page) (*model.OrderPage, error)
	UpdateOrderStatus(ctx context.Context, token, email string, orderID int64, status model.OrderStatus) (*model.Order, error)
}

// Admin управляет статусами заказов от имени администратора.
type Admin struct {
	api AdminBackend
}

// NewAdmin создаёт административный сервис.
func NewAdmin(api AdminBackend) *Admin {
	return &Admin{api: api}
}

// ListOrders возвращает страницу всех заказов.
func (a *Admin) ListOrders(ctx context.Context, token string, page model.Page) (*model.OrderPage, error) {
	page = page.WithDefaults(DefaultPageSize, DefaultSortBy, DefaultSortOrder)
	return a.api.ListOrders(ctx, token, page)
}

// UpdateStatus меняет статус заказа и возвращает подтверждённое сервером состояние.
// Неизвестный статус отклоняется без запроса; при ошибке сервера ничего не применяется.
func (a *Admin) UpdateStatus(ctx context.Context, token, email string, orderID int64, status string) (*model.Order, error) {
	st, err := model.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}
	return a.api.UpdateOrderStatus(ctx, token, email, orderID, st)
}
