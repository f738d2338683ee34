package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mmeshcher/storefront-system/internal/model"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return NewClient(ts.URL, time.Second)
}

func TestLogin_OK(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/login" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req.Email != "user@example.com" || req.Password != "secret" {
			t.Fatalf("unexpected credentials: %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jwt-token":"tok"}`))
	})

	token, err := client.Login(context.Background(), "user@example.com", "secret")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if token != "tok" {
		t.Fatalf("token = %q, want tok", token)
	}
}

func TestGetCart_FlattensProducts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/public/users/user@example.com/carts/5" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Fatalf("authorization = %q", got)
		}
		_, _ = w.Write([]byte(`{
			"cartId": 5,
			"totalPrice": 1,
			"quantity": 99,
			"products": [
				{"productId": 7, "productName": "Tea", "price": 100000, "specialPrice": 0, "cartItemQuantity": 2, "stock": 10},
				{"productId": 8, "productName": "Rice", "price": 50000, "specialPrice": 40000, "stock": 3}
			]
		}`))
	})

	cart, err := client.GetCart(context.Background(), "tok", "user@example.com", 5)
	if err != nil {
		t.Fatalf("GetCart error: %v", err)
	}
	if cart.CartID != 5 || len(cart.Lines) != 2 {
		t.Fatalf("unexpected cart: %+v", cart)
	}
	if cart.Lines[0].Quantity != 2 || cart.Lines[0].StockAvailable != 10 {
		t.Fatalf("unexpected first line: %+v", cart.Lines[0])
	}
	if cart.Lines[1].Quantity != 1 {
		t.Fatalf("missing cartItemQuantity must default to 1, got %d", cart.Lines[1].Quantity)
	}
	if cart.TotalPrice() != 240000 {
		t.Fatalf("TotalPrice = %d, want 240000", cart.TotalPrice())
	}
}

func TestAddOrSetLineItem_Method(t *testing.T) {
	tests := []struct {
		name   string
		op     LineOp
		method string
	}{
		{name: "add", op: LineAdd, method: http.MethodPost},
		{name: "set", op: LineSet, method: http.MethodPut},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != tt.method {
					t.Fatalf("method = %s, want %s", r.Method, tt.method)
				}
				if r.URL.Path != "/api/public/carts/5/products/7/quantity/3" {
					t.Fatalf("path = %s", r.URL.Path)
				}
				w.WriteHeader(http.StatusCreated)
			})

			if err := client.AddOrSetLineItem(context.Background(), "tok", 5, 7, 3, tt.op); err != nil {
				t.Fatalf("AddOrSetLineItem error: %v", err)
			}
		})
	}
}

func TestAddOrSetLineItem_RejectsNonPositiveQuantity(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	err := client.AddOrSetLineItem(context.Background(), "tok", 5, 7, 0, LineSet)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if calls.Load() != 0 {
		t.Fatalf("no request expected, got %d", calls.Load())
	}
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    error
		message string
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, want: ErrAuth},
		{name: "forbidden", status: http.StatusForbidden, want: ErrAuth},
		{name: "stock exceeded", status: http.StatusBadRequest, body: `{"message":"less than or equal to the quantity 3."}`, want: ErrValidation, message: "less than or equal to the quantity 3."},
		{name: "not found", status: http.StatusNotFound, want: ErrNotFound},
		{name: "internal", status: http.StatusInternalServerError, want: ErrServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			err := client.RemoveLineItem(context.Background(), "tok", 1, 2)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %T", err)
			}
			if apiErr.Status != tt.status {
				t.Fatalf("status = %d, want %d", apiErr.Status, tt.status)
			}
			if tt.message != "" && apiErr.Message != tt.message {
				t.Fatalf("message = %q, want %q", apiErr.Message, tt.message)
			}
		})
	}
}

func TestCheckToken_NoNetworkCall(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user@example.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	expiredToken, err := expired.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	for _, token := range []string{"", expiredToken} {
		_, err := client.CreateCart(context.Background(), token, "user@example.com")
		if !errors.Is(err, ErrAuth) {
			t.Fatalf("expected ErrAuth for token %q, got %v", token, err)
		}
	}
	if calls.Load() != 0 {
		t.Fatalf("no request expected, got %d", calls.Load())
	}
}

func TestCheckToken_ValidJWTPasses(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"cartId": 11}`))
	})

	valid := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	token, err := valid.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	id, err := client.CreateCart(context.Background(), token, "user@example.com")
	if err != nil {
		t.Fatalf("CreateCart error: %v", err)
	}
	if id != 11 {
		t.Fatalf("cartID = %d, want 11", id)
	}
}

func TestPlaceOrder_DecodesOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("method = %s", r.Method)
		}
		if r.URL.Path != "/api/public/users/user@example.com/carts/5/payments/COD/order" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{
			"orderId": 42,
			"email": "user@example.com",
			"orderDate": "2024-05-01",
			"orderItems": [{"product": {"productId": 7, "productName": "Tea"}, "quantity": 1, "orderedProductPrice": 200000}],
			"payment": {"paymentMethod": "COD"},
			"totalAmount": 200000,
			"orderStatus": "Order Accepted!"
		}`))
	})

	order, err := client.PlaceOrder(context.Background(), "tok", "user@example.com", 5, model.PaymentCOD)
	if err != nil {
		t.Fatalf("PlaceOrder error: %v", err)
	}
	if order.OrderID != 42 || order.Status != model.OrderStatusAccepted || order.PaymentMethod != model.PaymentCOD {
		t.Fatalf("unexpected order: %+v", order)
	}
	if len(order.Items) != 1 || order.Items[0].Price != 200000 {
		t.Fatalf("unexpected items: %+v", order.Items)
	}
	if order.OrderDate.IsZero() {
		t.Fatalf("order date not parsed")
	}
}

func TestListOrders_Query(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("pageNumber") != "0" || q.Get("pageSize") != "20" || q.Get("sortBy") != "orderId" || q.Get("sortOrder") != "desc" {
			t.Fatalf("unexpected query: %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"content":[{"orderId":1,"orderStatus":"Shipped"}],"pageNumber":0,"pageSize":20,"totalElements":1,"totalPages":1,"lastPage":true}`))
	})

	page, err := client.ListOrders(context.Background(), "tok", model.Page{PageSize: 20, SortBy: "orderId", SortOrder: "desc"})
	if err != nil {
		t.Fatalf("ListOrders error: %v", err)
	}
	if len(page.Content) != 1 || page.Content[0].Status != model.OrderStatusShipped || !page.LastPage {
		t.Fatalf("unexpected page: %+v", page)
	}
}

func TestUpdateOrderStatus_EscapesStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Fatalf("method = %s", r.Method)
		}
		if r.URL.Path != "/api/admin/users/user@example.com/orders/9/orderStatus/Order Accepted!" {
			t.Fatalf("path = %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"orderId":9,"orderStatus":"Order Accepted!"}`))
	})

	order, err := client.UpdateOrderStatus(context.Background(), "tok", "user@example.com", 9, model.OrderStatusAccepted)
	if err != nil {
		t.Fatalf("UpdateOrderStatus error: %v", err)
	}
	if order.Status != model.OrderStatusAccepted {
		t.Fatalf("status = %q", order.Status)
	}
}

func TestNetworkError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := ts.URL
	ts.Close()

	client := NewClient(addr, time.Second)
	err := client.ClearCart(context.Background(), "tok", 1)
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
}
