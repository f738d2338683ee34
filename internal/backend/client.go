// Package backend предоставляет клиент REST API магазина: авторизация, каталог, корзины и заказы.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/mmeshcher/storefront-system/internal/model"
)

var (
	// ErrAuth возвращается при отсутствии, истечении или отклонении токена (401/403).
	ErrAuth = errors.New("authentication required")
	// ErrValidation возвращается, если сервер отклонил запрос как некорректный.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound возвращается, если ресурс не найден.
	ErrNotFound = errors.New("resource not found")
	// ErrServer возвращается при прочих ответах вне диапазона 2xx.
	ErrServer = errors.New("server error")
	// ErrNetwork возвращается при ошибке транспорта.
	ErrNetwork = errors.New("network error")
)

// APIError описывает ошибочный ответ REST API.
type APIError struct {
	Status  int
	Message string
	kind    error
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend %d: %s", e.Status, e.kind)
	}
	return fmt.Sprintf("backend %d: %s: %s", e.Status, e.kind, e.Message)
}

// Unwrap позволяет сравнивать APIError с sentinel-ошибками через errors.Is.
func (e *APIError) Unwrap() error {
	return e.kind
}

// LineOp задаёт способ изменения позиции корзины.
type LineOp int

const (
	// LineAdd прибавляет количество к существующей позиции или создаёт новую.
	LineAdd LineOp = iota
	// LineSet устанавливает количество существующей позиции.
	LineSet
)

// Client инкапсулирует HTTP-взаимодействие с REST API магазина.
type Client struct {
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

// NewClient создаёт HTTP-клиент для обращения к REST API по указанному адресу.
func NewClient(baseURL string, timeout time.Duration) *Client {
	base := strings.TrimRight(baseURL, "/")
	if base != "" && !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL: base,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		now: time.Now,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"jwt-token"`
}

// Login выполняет вход пользователя и возвращает токен доступа.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/api/login", "", loginRequest{Email: email, Password: password}, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", &APIError{Status: http.StatusOK, Message: "token missing in login response", kind: ErrAuth}
	}
	return resp.Token, nil
}

type cartResponse struct {
	CartID   int64             `json:"cartId"`
	Products []productResponse `json:"products"`
}

type productResponse struct {
	ProductID        int64   `json:"productId"`
	ProductName      string  `json:"productName"`
	Image            string  `json:"image"`
	Price            float64 `json:"price"`
	SpecialPrice     float64 `json:"specialPrice"`
	CartItemQuantity *int    `json:"cartItemQuantity"`
	Stock            *int    `json:"stock"`

	Description string          `json:"description"`
	Discount    int             `json:"discount"`
	Category    *model.Category `json:"category"`
}

// CreateCart создаёт корзину для пользователя и возвращает её идентификатор.
func (c *Client) CreateCart(ctx context.Context, token, email string) (int64, error) {
	if err := c.checkToken(token); err != nil {
		return 0, err
	}

	var resp cartResponse
	path := fmt.Sprintf("/api/public/users/%s/carts", url.PathEscape(email))
	if err := c.do(ctx, http.MethodPost, path, token, nil, &resp); err != nil {
		return 0, err
	}
	if resp.CartID == 0 {
		return 0, &APIError{Status: http.StatusOK, Message: "cart id missing in response", kind: ErrServer}
	}
	return resp.CartID, nil
}

// GetCart запрашивает корзину пользователя и переводит вложенные позиции в плоский вид.
func (c *Client) GetCart(ctx context.Context, token, email string, cartID int64) (*model.Cart, error) {
	if err := c.checkToken(token); err != nil {
		return nil, err
	}

	var resp cartResponse
	path := fmt.Sprintf("/api/public/users/%s/carts/%d", url.PathEscape(email), cartID)
	if err := c.do(ctx, http.MethodGet, path, token, nil, &resp); err != nil {
		return nil, err
	}

	cart := &model.Cart{CartID: resp.CartID, Lines: make([]model.CartLineItem, 0, len(resp.Products))}
	if cart.CartID == 0 {
		cart.CartID = cartID
	}
	for _, p := range resp.Products {
		cart.Lines = append(cart.Lines, flattenProduct(p))
	}
	return cart, nil
}

func flattenProduct(p productResponse) model.CartLineItem {
	qty := 1
	if p.CartItemQuantity != nil {
		qty = *p.CartItemQuantity
	}
	stock := 0
	if p.Stock != nil {
		stock = *p.Stock
	}
	return model.CartLineItem{
		ProductID:      p.ProductID,
		ProductName:    p.ProductName,
		Image:          p.Image,
		UnitPrice:      int64(p.Price),
		SpecialPrice:   int64(p.SpecialPrice),
		Quantity:       qty,
		StockAvailable: stock,
	}
}

// AddOrSetLineItem добавляет товар в корзину (LineAdd) или задаёт его количество (LineSet).
func (c *Client) AddOrSetLineItem(ctx context.Context, token string, cartID, productID int64, quantity int, op LineOp) error {
	if quantity < 1 {
		return &APIError{Message: "quantity must be a positive integer", kind: ErrValidation}
	}
	if err := c.checkToken(token); err != nil {
		return err
	}

	method := http.MethodPost
	if op == LineSet {
		method = http.MethodPut
	}
	path := fmt.Sprintf("/api/public/carts/%d/products/%d/quantity/%d", cartID, productID, quantity)
	return c.do(ctx, method, path, token, nil, nil)
}

// RemoveLineItem удаляет товар из корзины.
func (c *Client) RemoveLineItem(ctx context.Context, token string, cartID, productID int64) error {
	if err := c.checkToken(token); err != nil {
		return err
	}
	path := fmt.Sprintf("/api/public/carts/%d/product/%d", cartID, productID)
	return c.do(ctx, http.MethodDelete, path, token, nil, nil)
}

// ClearCart удаляет все позиции корзины.
func (c *Client) ClearCart(ctx context.Context, token string, cartID int64) error {
	if err := c.checkToken(token); err != nil {
		return err
	}
	path := fmt.Sprintf("/api/public/carts/%d/products", cartID)
	return c.do(ctx, http.MethodDelete, path, token, nil, nil)
}

type orderResponse struct {
	OrderID     int64               `json:"orderId"`
	Email       string              `json:"email"`
	OrderDate   string              `json:"orderDate"`
	OrderItems  []orderItemResponse `json:"orderItems"`
	Payment     paymentResponse     `json:"payment"`
	TotalAmount float64             `json:"totalAmount"`
	OrderStatus string              `json:"orderStatus"`
}

type orderItemResponse struct {
	Product struct {
		ProductID   int64  `json:"productId"`
		ProductName string `json:"productName"`
	} `json:"product"`
	Quantity            int     `json:"quantity"`
	OrderedProductPrice float64 `json:"orderedProductPrice"`
}

type paymentResponse struct {
	PaymentMethod string `json:"paymentMethod"`
}

func (o orderResponse) toModel() model.Order {
	order := model.Order{
		OrderID:       o.OrderID,
		Email:         o.Email,
		OrderDate:     parseTime(o.OrderDate),
		PaymentMethod: model.PaymentMethod(o.Payment.PaymentMethod),
		TotalAmount:   int64(o.TotalAmount),
		Status:        model.OrderStatus(o.OrderStatus),
		Items:         make([]model.OrderItem, 0, len(o.OrderItems)),
	}
	for _, it := range o.OrderItems {
		order.Items = append(order.Items, model.OrderItem{
			ProductID:   it.Product.ProductID,
			ProductName: it.Product.ProductName,
			Quantity:    it.Quantity,
			Price:       int64(it.OrderedProductPrice),
		})
	}
	return order
}

func parseTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// PlaceOrder создаёт заказ из корзины пользователя с выбранным способом оплаты.
func (c *Client) PlaceOrder(ctx context.Context, token, email string, cartID int64, method model.PaymentMethod) (*model.Order, error) {
	if err := c.checkToken(token); err != nil {
		return nil, err
	}

	var resp orderResponse
	path := fmt.Sprintf("/api/public/users/%s/carts/%d/payments/%s/order",
		url.PathEscape(email), cartID, url.PathEscape(string(method)))
	if err := c.do(ctx, http.MethodPost, path, token, struct{}{}, &resp); err != nil {
		return nil, err
	}
	order := resp.toModel()
	return &order, nil
}

// GetOrders возвращает заказы пользователя.
func (c *Client) GetOrders(ctx context.Context, token, email string) ([]model.Order, error) {
	if err := c.checkToken(token); err != nil {
		return nil, err
	}

	var resp []orderResponse
	path := fmt.Sprintf("/api/public/users/%s/orders", url.PathEscape(email))
	if err := c.do(ctx, http.MethodGet, path, token, nil, &resp); err != nil {
		return nil, err
	}

	orders := make([]model.Order, 0, len(resp))
	for _, o := range resp {
		orders = append(orders, o.toModel())
	}
	return orders, nil
}

// GetOrder возвращает заказ пользователя по идентификатору.
func (c *Client) GetOrder(ctx context.Context, token, email string, orderID int64) (*model.Order, error) {
	if err := c.checkToken(token); err != nil {
		return nil, err
	}

	var resp orderResponse
	path := fmt.Sprintf("/api/public/users/%s/orders/%d", url.PathEscape(email), orderID)
	if err := c.do(ctx, http.MethodGet, path, token, nil, &resp); err != nil {
		return nil, err
	}
	order := resp.toModel()
	return &order, nil
}

// CancelOrder запрашивает отмену заказа.
func (c *Client) CancelOrder(ctx context.Context, token string, orderID int64) error {
	if err := c.checkToken(token); err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/public/orders/%d", orderID), token, nil, nil)
}

// ListOrders возвращает страницу всех заказов (административный доступ).
func (c *Client) ListOrders(ctx context.Context, token string, page model.Page) (*model.OrderPage, error) {
	if err := c.checkToken(token); err != nil {
		return nil, err
	}

	var resp pageResponse[orderResponse]
	if err := c.do(ctx, http.MethodGet, "/api/admin/orders?"+pageQuery(page).Encode(), token, nil, &resp); err != nil {
		return nil, err
	}
	return toPaged(resp, orderResponse.toModel), nil
}

// UpdateOrderStatus меняет статус заказа и возвращает подтверждённый сервером заказ.
func (c *Client) UpdateOrderStatus(ctx context.Context, token, email string, orderID int64, status model.OrderStatus) (*model.Order, error) {
	if err := c.checkToken(token); err != nil {
		return nil, err
	}

	var resp orderResponse
	path := fmt.Sprintf("/api/admin/users/%s/orders/%d/orderStatus/%s",
		url.PathEscape(email), orderID, url.PathEscape(string(status)))
	if err := c.do(ctx, http.MethodPut, path, token, struct{}{}, &resp); err != nil {
		return nil, err
	}
	order := resp.toModel()
	return &order, nil
}

// checkToken отклоняет пустой или просроченный токен без обращения к сети.
func (c *Client) checkToken(token string) error {
	if token == "" {
		return &APIError{Message: "no session token", kind: ErrAuth}
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		// Непрозрачный токен: срок действия проверит сервер.
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	if !exp.After(c.now()) {
		return &APIError{Message: "session token expired", kind: ErrAuth}
	}
	return nil
}

type errorResponse struct {
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "*/*")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %s %s: %v", ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func newAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	msg := strings.TrimSpace(string(raw))
	var er errorResponse
	if err := json.Unmarshal(raw, &er); err == nil && er.Message != "" {
		msg = er.Message
	}

	var kind error
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = ErrAuth
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		kind = ErrValidation
	case http.StatusNotFound:
		kind = ErrNotFound
	default:
		kind = ErrServer
	}

	return &APIError{Status: resp.StatusCode, Message: msg, kind: kind}
}
