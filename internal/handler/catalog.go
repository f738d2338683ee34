package handler

import (
	"net/http"
	"strconv"
)

// ListProducts возвращает страницу каталога.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Catalog.Products(r.Context(), pageQuery(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

// ListPromotions возвращает страницу товаров со скидкой.
func (h *Handler) ListPromotions(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Catalog.Promotions(r.Context(), pageQuery(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

// SearchProducts ищет товары по ключевому слову и, при необходимости, категории.
func (h *Handler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	var categoryID int64
	if v := r.URL.Query().Get("categoryId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id < 0 {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		categoryID = id
	}

	res, err := h.svc.Catalog.Search(r.Context(), r.URL.Query().Get("keyword"), categoryID, pageQuery(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

// GetProduct возвращает товар по идентификатору.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	product, err := h.svc.Catalog.Product(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, product)
}

// ListCategories возвращает страницу категорий.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Catalog.Categories(r.Context(), pageQuery(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

// ListCategoryProducts возвращает страницу товаров категории.
func (h *Handler) ListCategoryProducts(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	res, err := h.svc.Catalog.CategoryProducts(r.Context(), id, pageQuery(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

// ListBlogs возвращает страницу статей блога.
func (h *Handler) ListBlogs(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Catalog.Blogs(r.Context(), pageQuery(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

// ListStores возвращает действующие точки продаж.
func (h *Handler) ListStores(w http.ResponseWriter, r *http.Request) {
	stores, err := h.svc.Catalog.Stores(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, stores)
}
