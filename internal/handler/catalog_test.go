package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/storefront-system/internal/backend"
	"github.com/mmeshcher/storefront-system/internal/catalog"
	"github.com/mmeshcher/storefront-system/internal/model"
	"github.com/mmeshcher/storefront-system/internal/service"
	"github.com/mmeshcher/storefront-system/internal/validation"
)

type stubCatalog struct {
	page       model.Page
	keyword    string
	categoryID int64
	product    *model.Product
	err        error
}

func (s *stubCatalog) products(page model.Page) (*model.Paged[model.Product], error) {
	s.page = page
	if s.err != nil {
		return nil, s.err
	}
	return &model.Paged[model.Product]{Content: []model.Product{{ProductID: 1, ProductName: "Tea"}}, TotalElements: 1}, nil
}

func (s *stubCatalog) Products(ctx context.Context, page model.Page) (*model.Paged[model.Product], error) {
	return s.products(page)
}

func (s *stubCatalog) Promotions(ctx context.Context, page model.Page) (*model.Paged[model.Product], error) {
	return s.products(page)
}

func (s *stubCatalog) Search(ctx context.Context, keyword string, categoryID int64, page model.Page) (*model.Paged[model.Product], error) {
	s.keyword, s.categoryID = keyword, categoryID
	if keyword == "" {
		return nil, catalog.ErrEmptyKeyword
	}
	return s.products(page)
}

func (s *stubCatalog) CategoryProducts(ctx context.Context, categoryID int64, page model.Page) (*model.Paged[model.Product], error) {
	s.categoryID = categoryID
	return s.products(page)
}

func (s *stubCatalog) Product(ctx context.Context, productID int64) (*model.Product, error) {
	if s.product == nil {
		return nil, fmt.Errorf("get product: %w", backend.ErrNotFound)
	}
	return s.product, nil
}

func (s *stubCatalog) Categories(ctx context.Context, page model.Page) (*model.Paged[model.Category], error) {
	s.page = page
	return &model.Paged[model.Category]{Content: []model.Category{{CategoryID: 2, CategoryName: "Drinks"}}}, s.err
}

func (s *stubCatalog) Blogs(ctx context.Context, page model.Page) (*model.Paged[model.Blog], error) {
	s.page = page
	return &model.Paged[model.Blog]{}, s.err
}

func (s *stubCatalog) Stores(ctx context.Context) ([]model.StoreConfig, error) {
	return []model.StoreConfig{{ID: 1, SiteName: "Main", Status: "ACTIVE"}}, s.err
}

type stubContacts struct {
	form     validation.ContactForm
	gotToken string
	reply    string
	err      error
}

func (s *stubContacts) Submit(ctx context.Context, form validation.ContactForm) (*model.Contact, error) {
	s.form = form
	if err := validation.ValidateContact(form); err != nil {
		return nil, err
	}
	return &model.Contact{ID: 1, Name: form.Name, Status: model.ContactPending}, nil
}

func (s *stubContacts) List(ctx context.Context, token string, page model.Page) (*model.Paged[model.Contact], error) {
	s.gotToken = token
	if s.err != nil {
		return nil, s.err
	}
	return &model.Paged[model.Contact]{}, nil
}

func (s *stubContacts) Reply(ctx context.Context, token string, contactID int64, reply string) (*service.ReplyResult, error) {
	s.gotToken, s.reply = token, reply
	if s.err != nil {
		return nil, s.err
	}
	return &service.ReplyResult{Contact: &model.Contact{ID: contactID, Status: model.ContactReplied}}, nil
}

func TestListProducts_PageQuery(t *testing.T) {
	h, ts := newTestRouter(t)

	rec := doRequest(t, h, http.MethodGet, "/api/products?pageNumber=1&pageSize=8&sortBy=price&sortOrder=desc", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.Page{PageNumber: 1, PageSize: 8, SortBy: "price", SortOrder: "desc"}, ts.catalog.page)

	var got model.Paged[model.Product]
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, int64(1), got.TotalElements)
	assert.Equal(t, "Tea", got.Content[0].ProductName)
}

func TestSearchProducts(t *testing.T) {
	h, ts := newTestRouter(t)

	rec := doRequest(t, h, http.MethodGet, "/api/products/search?keyword=tea&categoryId=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tea", ts.catalog.keyword)
	assert.Equal(t, int64(3), ts.catalog.categoryID)

	rec = doRequest(t, h, http.MethodGet, "/api/products/search?keyword=", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/api/products/search?keyword=tea&categoryId=x", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetProduct_NotFound(t *testing.T) {
	h, ts := newTestRouter(t)

	rec := doRequest(t, h, http.MethodGet, "/api/products/5", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	ts.catalog.product = &model.Product{ProductID: 5}
	rec = doRequest(t, h, http.MethodGet, "/api/products/5", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCatalogRoutes(t *testing.T) {
	h, ts := newTestRouter(t)

	for _, path := range []string{"/api/products/promotions", "/api/categories", "/api/categories/2/products", "/api/blogs", "/api/stores"} {
		rec := doRequest(t, h, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
	assert.Equal(t, int64(2), ts.catalog.categoryID)

	ts.catalog.err = backend.ErrNetwork
	rec := doRequest(t, h, http.MethodGet, "/api/stores", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestRegister(t *testing.T) {
	h, ts := newTestRouter(t)

	rec := doRequest(t, h, http.MethodPost, "/api/session/register", registerRequest{
		FirstName: "Ann", LastName: "Lee", Phone: "0901234567",
		Email: "ann@example.com", Password: "secret1", ConfirmPassword: "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"redirect":"/login"}`, rec.Body.String())
	assert.Equal(t, "0901234567", ts.account.regForm.Phone)

	ts.account.regErr = validation.FieldErrors{"email": "email is invalid"}
	rec = doRequest(t, h, http.MethodPost, "/api/session/register", registerRequest{})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGetProfile(t *testing.T) {
	h, ts := newTestRouter(t)

	rec := doRequest(t, h, http.MethodGet, "/api/session/profile", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	ts.account.user = &model.User{FirstName: "Ann", Email: "ann@example.com"}
	rec = doRequest(t, h, http.MethodGet, "/api/session/profile", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"firstName":"Ann"`)
}

func TestSubmitContact(t *testing.T) {
	h, ts := newTestRouter(t)

	rec := doRequest(t, h, http.MethodPost, "/api/contacts", contactRequest{Name: "Ann", Email: "ann@example.com", Message: "Hi"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Ann", ts.contacts.form.Name)

	rec = doRequest(t, h, http.MethodPost, "/api/contacts", contactRequest{Name: "Ann"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAdminContacts(t *testing.T) {
	h, ts := newTestRouter(t)

	rec := doRequest(t, h, http.MethodGet, "/api/admin/contacts", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	ts.account.session = model.Session{AuthToken: "admin-token", UserEmail: "admin@example.com"}
	rec = doRequest(t, h, http.MethodGet, "/api/admin/contacts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin-token", ts.contacts.gotToken)

	rec = doRequest(t, h, http.MethodPost, "/api/admin/contacts/4/reply", replyRequest{Reply: "Thanks"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Thanks", ts.contacts.reply)
	assert.Contains(t, rec.Body.String(), `"status":"REPLIED"`)

	ts.contacts.err = backend.ErrAuth
	rec = doRequest(t, h, http.MethodPost, "/api/admin/contacts/4/reply", replyRequest{Reply: "Thanks"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Len(t, ts.account.expired, 1)
}
