package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mmeshcher/storefront-system/internal/model"
)

type pageResponse[T any] struct {
	Content       []T   `json:"content"`
	PageNumber    int   `json:"pageNumber"`
	PageSize      int   `json:"pageSize"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	LastPage      bool  `json:"lastPage"`
}

func toPaged[T, M any](resp pageResponse[T], convert func(T) M) *model.Paged[M] {
	res := &model.Paged[M]{
		PageNumber:    resp.PageNumber,
		PageSize:      resp.PageSize,
		TotalElements: resp.TotalElements,
		TotalPages:    resp.TotalPages,
		LastPage:      resp.LastPage,
		Content:       make([]M, 0, len(resp.Content)),
	}
	for _, item := range resp.Content {
		res.Content = append(res.Content, convert(item))
	}
	return res
}

func identity[T any](v T) T { return v }

func pageQuery(page model.Page) url.Values {
	q := url.Values{}
	q.Set("pageNumber", strconv.Itoa(page.PageNumber))
	q.Set("pageSize", strconv.Itoa(page.PageSize))
	if page.SortBy != "" {
		q.Set("sortBy", page.SortBy)
	}
	if page.SortOrder != "" {
		q.Set("sortOrder", page.SortOrder)
	}
	return q
}

func (p productResponse) toProduct() model.Product {
	product := model.Product{
		ProductID:    p.ProductID,
		ProductName:  p.ProductName,
		Image:        p.Image,
		Description:  p.Description,
		Price:        int64(p.Price),
		Discount:     p.Discount,
		SpecialPrice: int64(p.SpecialPrice),
		Category:     p.Category,
	}
	if p.Stock != nil {
		product.Stock = *p.Stock
	}
	return product
}

func (c *Client) listProducts(ctx context.Context, path string, q url.Values) (*model.Paged[model.Product], error) {
	var resp pageResponse[productResponse]
	if err := c.do(ctx, http.MethodGet, path+"?"+q.Encode(), "", nil, &resp); err != nil {
		return nil, err
	}
	return toPaged(resp, productResponse.toProduct), nil
}

// ListProducts возвращает страницу каталога.
func (c *Client) ListProducts(ctx context.Context, page model.Page) (*model.Paged[model.Product], error) {
	return c.listProducts(ctx, "/api/public/products", pageQuery(page))
}

// ListPromotions возвращает страницу товаров со скидкой.
func (c *Client) ListPromotions(ctx context.Context, page model.Page) (*model.Paged[model.Product], error) {
	return c.listProducts(ctx, "/api/public/products/promotions", pageQuery(page))
}

// SearchProducts ищет товары по ключевому слову; categoryID = 0 ищет во всех категориях.
func (c *Client) SearchProducts(ctx context.Context, keyword string, categoryID int64, page model.Page) (*model.Paged[model.Product], error) {
	q := pageQuery(page)
	q.Set("categoryId", strconv.FormatInt(categoryID, 10))
	return c.listProducts(ctx, "/api/public/products/keyword/"+url.PathEscape(keyword), q)
}

// ListCategoryProducts возвращает страницу товаров категории.
func (c *Client) ListCategoryProducts(ctx context.Context, categoryID int64, page model.Page) (*model.Paged[model.Product], error) {
	return c.listProducts(ctx, fmt.Sprintf("/api/public/categories/%d/products", categoryID), pageQuery(page))
}

// GetProduct возвращает товар по идентификатору.
func (c *Client) GetProduct(ctx context.Context, productID int64) (*model.Product, error) {
	var resp productResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/public/products/%d", productID), "", nil, &resp); err != nil {
		return nil, err
	}
	product := resp.toProduct()
	return &product, nil
}

// ListCategories возвращает страницу категорий.
func (c *Client) ListCategories(ctx context.Context, page model.Page) (*model.Paged[model.Category], error) {
	var resp pageResponse[model.Category]
	if err := c.do(ctx, http.MethodGet, "/api/public/categories?"+pageQuery(page).Encode(), "", nil, &resp); err != nil {
		return nil, err
	}
	return toPaged(resp, identity[model.Category]), nil
}

type blogResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	Image       string `json:"image"`
	AuthorEmail string `json:"authorEmail"`
	CreatedAt   string `json:"createdAt"`
}

func (b blogResponse) toModel() model.Blog {
	return model.Blog{
		ID:          b.ID,
		Title:       b.Title,
		Content:     b.Content,
		Image:       b.Image,
		AuthorEmail: b.AuthorEmail,
		CreatedAt:   parseTime(b.CreatedAt),
	}
}

// ListBlogs возвращает страницу статей блога.
func (c *Client) ListBlogs(ctx context.Context, page model.Page) (*model.Paged[model.Blog], error) {
	var resp pageResponse[blogResponse]
	if err := c.do(ctx, http.MethodGet, "/api/public/blogs?"+pageQuery(page).Encode(), "", nil, &resp); err != nil {
		return nil, err
	}
	return toPaged(resp, blogResponse.toModel), nil
}

// ListConfigs возвращает страницу записей конфигурации магазина.
func (c *Client) ListConfigs(ctx context.Context, page model.Page) (*model.Paged[model.StoreConfig], error) {
	var resp pageResponse[model.StoreConfig]
	if err := c.do(ctx, http.MethodGet, "/api/public/configs?"+pageQuery(page).Encode(), "", nil, &resp); err != nil {
		return nil, err
	}
	return toPaged(resp, identity[model.StoreConfig]), nil
}
