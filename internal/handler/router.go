package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	custommiddleware "github.com/mmeshcher/storefront-system/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware витрины.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))
	r.Use(h.sessions.Middleware)

	r.Route("/api", func(r chi.Router) {
		r.Route("/session", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Post("/login", h.Login)
			r.Post("/logout", h.Logout)
			r.Post("/register", h.Register)
			r.Get("/profile", h.GetProfile)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			r.Get("/promotions", h.ListPromotions)
			r.Get("/search", h.SearchProducts)
			r.Get("/{id}", h.GetProduct)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.ListCategories)
			r.Get("/{id}/products", h.ListCategoryProducts)
		})

		r.Get("/blogs", h.ListBlogs)
		r.Get("/stores", h.ListStores)
		r.Post("/contacts", h.SubmitContact)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Delete("/", h.ClearCart)
			r.Get("/quantity", h.CartQuantity)
			r.Post("/items", h.AddItem)
			r.Post("/items/{id}/increment", h.IncrementItem)
			r.Post("/items/{id}/decrement", h.DecrementItem)
			r.Delete("/items/{id}", h.RemoveItem)
		})

		r.Get("/events", h.Events)
		r.Post("/checkout", h.Checkout)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.GetOrders)
			r.Get("/{id}", h.GetOrder)
			r.Post("/{id}/cancel", h.CancelOrder)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/orders", h.AdminListOrders)
			r.Put("/orders/{id}/status", h.AdminUpdateStatus)
			r.Get("/contacts", h.AdminListContacts)
			r.Post("/contacts/{id}/reply", h.AdminReplyContact)
		})

		r.Route("/assistant", func(r chi.Router) {
			r.Post("/", h.AssistantReply)
			r.Put("/visibility", h.AssistantVisibility)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
