// Package catalog предоставляет постраничный просмотр каталога, блога и точек продаж.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmeshcher/storefront-system/internal/model"
	"github.com/mmeshcher/storefront-system/internal/validation"
)

// Параметры выборок по умолчанию.
const (
	DefaultPageSize  = 12
	DefaultSortBy    = "productId"
	DefaultSortOrder = "asc"

	// BestSellersSortBy упорядочивает товары по остатку: чем меньше остаток, тем лучше продажи.
	BestSellersSortBy = "quantity"
)

// ErrEmptyKeyword возвращается для поиска без ключевого слова.
var ErrEmptyKeyword = fmt.Errorf("%w: keyword is required", validation.ErrInvalid)

// Backend описывает публичные операции REST API каталога.
type Backend interface {
	ListProducts(ctx context.Context, page model.Page) (*model.Paged[model.Product], error)
	ListPromotions(ctx context.Context, page model.Page) (*model.Paged[model.Product], error)
	SearchProducts(ctx context.Context, keyword string, categoryID int64, page model.Page) (*model.Paged[model.Product], error)
	ListCategoryProducts(ctx context.Context, categoryID int64, page model.Page) (*model.Paged[model.Product], error)
	GetProduct(ctx context.Context, productID int64) (*model.Product, error)
	ListCategories(ctx context.Context, page model.Page) (*model.Paged[model.Category], error)
	ListBlogs(ctx context.Context, page model.Page) (*model.Paged[model.Blog], error)
	ListConfigs(ctx context.Context, page model.Page) (*model.Paged[model.StoreConfig], error)
}

// Service читает каталог, подставляя параметры выборки по умолчанию.
type Service struct {
	api Backend
}

// NewService создаёт сервис каталога.
func NewService(api Backend) *Service {
	return &Service{api: api}
}

func productPage(page model.Page) model.Page {
	return page.WithDefaults(DefaultPageSize, DefaultSortBy, DefaultSortOrder)
}

// Products возвращает страницу каталога.
func (s *Service) Products(ctx context.Context, page model.Page) (*model.Paged[model.Product], error) {
	return s.api.ListProducts(ctx, productPage(page))
}

// BestSellers возвращает самые продаваемые товары.
func (s *Service) BestSellers(ctx context.Context, size int) (*model.Paged[model.Product], error) {
	return s.api.ListProducts(ctx, model.Page{PageSize: size, SortBy: BestSellersSortBy}.WithDefaults(DefaultPageSize, BestSellersSortBy, "asc"))
}

// Promotions возвращает страницу товаров со скидкой.
func (s *Service) Promotions(ctx context.Context, page model.Page) (*model.Paged[model.Product], error) {
	return s.api.ListPromotions(ctx, productPage(page))
}

// Search ищет товары по ключевому слову. categoryID = 0 ищет во всех категориях.
func (s *Service) Search(ctx context.Context, keyword string, categoryID int64, page model.Page) (*model.Paged[model.Product], error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, ErrEmptyKeyword
	}
	return s.api.SearchProducts(ctx, keyword, categoryID, productPage(page))
}

// CategoryProducts возвращает страницу товаров категории.
func (s *Service) CategoryProducts(ctx context.Context, categoryID int64, page model.Page) (*model.Paged[model.Product], error) {
	return s.api.ListCategoryProducts(ctx, categoryID, productPage(page))
}

// Product возвращает товар по идентификатору.
func (s *Service) Product(ctx context.Context, productID int64) (*model.Product, error) {
	return s.api.GetProduct(ctx, productID)
}

// Categories возвращает страницу категорий.
func (s *Service) Categories(ctx context.Context, page model.Page) (*model.Paged[model.Category], error) {
	return s.api.ListCategories(ctx, page.WithDefaults(50, "categoryId", "asc"))
}

// Blogs возвращает страницу статей, новые первыми.
func (s *Service) Blogs(ctx context.Context, page model.Page) (*model.Paged[model.Blog], error) {
	return s.api.ListBlogs(ctx, page.WithDefaults(5, "id", "desc"))
}

// Stores возвращает действующие точки продаж.
func (s *Service) Stores(ctx context.Context) ([]model.StoreConfig, error) {
	res, err := s.api.ListConfigs(ctx, model.Page{}.WithDefaults(50, "id", "asc"))
	if err != nil {
		return nil, err
	}

	stores := make([]model.StoreConfig, 0, len(res.Content))
	for _, c := range res.Content {
		if c.Active() {
			stores = append(stores, c)
		}
	}
	return stores, nil
}
