// Package handler содержит HTTP-обработчики API витрины.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/storefront-system/internal/assistant"
	"github.com/mmeshcher/storefront-system/internal/backend"
	"github.com/mmeshcher/storefront-system/internal/cart"
	"github.com/mmeshcher/storefront-system/internal/checkout"
	"github.com/mmeshcher/storefront-system/internal/events"
	"github.com/mmeshcher/storefront-system/internal/middleware"
	"github.com/mmeshcher/storefront-system/internal/model"
	"github.com/mmeshcher/storefront-system/internal/service"
	"github.com/mmeshcher/storefront-system/internal/validation"
)

// AccountService определяет операции входа и заказов покупателя.
type AccountService interface {
	Session(ctx context.Context, sid string) (model.Session, error)
	Login(ctx context.Context, sid, email, password string) (model.Session, error)
	Logout(ctx context.Context, sid string) error
	Orders(ctx context.Context, sid string) ([]model.Order, error)
	Order(ctx context.Context, sid string, orderID int64) (*model.Order, error)
	CancelOrder(ctx context.Context, sid string, orderID int64) (*model.Order, error)
	Register(ctx context.Context, sid string, form validation.RegisterForm) error
	Profile(ctx context.Context, sid string) (*model.User, error)
	ExpireOnAuth(ctx context.Context, sid string, err error) error
}

// CatalogService определяет публичные выборки каталога.
type CatalogService interface {
	Products(ctx context.Context, page model.Page) (*model.Paged[model.Product], error)
	Promotions(ctx context.Context, page model.Page) (*model.Paged[model.Product], error)
	Search(ctx context.Context, keyword string, categoryID int64, page model.Page) (*model.Paged[model.Product], error)
	CategoryProducts(ctx context.Context, categoryID int64, page model.Page) (*model.Paged[model.Product], error)
	Product(ctx context.Context, productID int64) (*model.Product, error)
	Categories(ctx context.Context, page model.Page) (*model.Paged[model.Category], error)
	Blogs(ctx context.Context, page model.Page) (*model.Paged[model.Blog], error)
	Stores(ctx context.Context) ([]model.StoreConfig, error)
}

// ContactService определяет операции с обращениями покупателей.
type ContactService interface {
	Submit(ctx context.Context, form validation.ContactForm) (*model.Contact, error)
	List(ctx context.Context, token string, page model.Page) (*model.Paged[model.Contact], error)
	Reply(ctx context.Context, token string, contactID int64, reply string) (*service.ReplyResult, error)
}

// CartService определяет операции корзины.
type CartService interface {
	View(ctx context.Context, sid string) (cart.View, error)
	Add(ctx context.Context, sid string, productID int64, quantity int) (cart.View, error)
	Increment(ctx context.Context, sid string, productID int64) (cart.View, error)
	Decrement(ctx context.Context, sid string, productID int64) (cart.View, error)
	Remove(ctx context.Context, sid string, productID int64) (cart.View, error)
	Clear(ctx context.Context, sid string) (cart.View, error)
	Quantity(ctx context.Context, sid string) (int, error)
}

// CheckoutService определяет оформление заказа.
type CheckoutService interface {
	PlaceOrder(ctx context.Context, sid string, form validation.CheckoutForm) (*checkout.Result, error)
}

// AdminService определяет административные операции с заказами.
type AdminService interface {
	ListOrders(ctx context.Context, token string, page model.Page) (*model.OrderPage, error)
	UpdateStatus(ctx context.Context, token, email string, orderID int64, status string) (*model.Order, error)
}

// AssistantService определяет операции чат-ассистента.
type AssistantService interface {
	Reply(ctx context.Context, sid, message string) (assistant.Reply, error)
	SetVisible(ctx context.Context, sid string, visible bool) error
}

// EventSource выдаёт подписку на события сессии.
type EventSource interface {
	Subscribe(sid string) (<-chan events.Event, func())
}

// Services объединяет зависимости обработчиков.
type Services struct {
	Account   AccountService
	Catalog   CatalogService
	Contacts  ContactService
	Cart      CartService
	Checkout  CheckoutService
	Admin     AdminService
	Assistant AssistantService
	Events    EventSource
}

// Handler реализует HTTP-обработчики API витрины.
type Handler struct {
	svc      Services
	logger   *zap.Logger
	sessions *middleware.SessionMiddleware
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(svc Services, logger *zap.Logger, sessions *middleware.SessionMiddleware) *Handler {
	return &Handler{
		svc:      svc,
		logger:   logger,
		sessions: sessions,
	}
}

const loginPath = "/login"

type errorResponse struct {
	Error    string            `json:"error"`
	Redirect string            `json:"redirect,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response error", zap.Error(err))
	}
}

// writeError переводит ошибку сервисов в HTTP-ответ.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	resp := errorResponse{Error: err.Error()}

	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		resp.Error = apiErr.Message
	}

	var status int
	var fields validation.FieldErrors
	switch {
	case errors.As(err, &fields):
		status = http.StatusUnprocessableEntity
		resp.Error = "invalid form"
		resp.Fields = fields
	case errors.Is(err, backend.ErrAuth):
		status = http.StatusUnauthorized
		resp.Redirect = loginPath
	case errors.Is(err, validation.ErrInvalid),
		errors.Is(err, backend.ErrValidation),
		errors.Is(err, model.ErrInvalidStatus):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, backend.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, backend.ErrServer),
		errors.Is(err, backend.ErrNetwork),
		errors.Is(err, context.DeadlineExceeded):
		status = http.StatusBadGateway
	default:
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		status = http.StatusInternalServerError
		resp.Error = http.StatusText(status)
	}

	h.writeJSON(w, status, resp)
}

func sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	sid, ok := middleware.GetSessionIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
	}
	return sid, ok
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func pageQuery(r *http.Request) model.Page {
	q := r.URL.Query()
	return model.Page{
		PageNumber: queryInt(r, "pageNumber"),
		PageSize:   queryInt(r, "pageSize"),
		SortBy:     q.Get("sortBy"),
		SortOrder:  q.Get("sortOrder"),
	}
}

func queryInt(r *http.Request, name string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return v
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return false
	}
	return true
}

type sessionResponse struct {
	Authenticated  bool   `json:"authenticated"`
	Email          string `json:"email,omitempty"`
	CartID         int64  `json:"cartId,omitempty"`
	ChatbotVisible bool   `json:"chatbotVisible"`
}

func toSessionResponse(s model.Session) sessionResponse {
	return sessionResponse{
		Authenticated:  s.Authenticated(),
		Email:          s.UserEmail,
		CartID:         s.CartID,
		ChatbotVisible: s.ChatbotVisible,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login выполняет вход пользователя в текущей сессии.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}

	var req loginRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	sess, err := h.svc.Account.Login(r.Context(), sid, req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

// Logout завершает сессию пользователя.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Account.Logout(r.Context(), sid); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSession возвращает состояние текущей сессии.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	sess, err := h.svc.Account.Session(r.Context(), sid)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

type registerRequest struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Phone           string `json:"mobileNumber"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type redirectResponse struct {
	Redirect string `json:"redirect"`
}

// Register создаёт учётную запись и направляет пользователя на страницу входа.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}

	var req registerRequest
	if !decode(w, r, &req) {
		return
	}

	err := h.svc.Account.Register(r.Context(), sid, validation.RegisterForm{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Phone:           req.Phone,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, redirectResponse{Redirect: loginPath})
}

// GetProfile возвращает профиль вошедшего пользователя.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	user, err := h.svc.Account.Profile(r.Context(), sid)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, user)
}
