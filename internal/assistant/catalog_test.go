package assistant

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mmeshcher/storefront-system/internal/backend"
	"github.com/mmeshcher/storefront-system/internal/model"
	"github.com/mmeshcher/storefront-system/internal/session"
)

type stubProfiles struct {
	user *model.User
	err  error
}

func (s *stubProfiles) Profile(ctx context.Context, sid string) (*model.User, error) {
	return s.user, s.err
}

type stubCatalog struct {
	products   []model.Product
	promos     []model.Product
	categories []model.Category
	blogs      []model.Blog
	stores     []model.StoreConfig
	err        error

	keywords []string
	sizes    []int
}

func (s *stubCatalog) page(items []model.Product) (*model.Paged[model.Product], error) {
	if s.err != nil {
		return nil, s.err
	}
	return &model.Paged[model.Product]{Content: items, TotalElements: int64(len(items))}, nil
}

func (s *stubCatalog) Products(ctx context.Context, page model.Page) (*model.Paged[model.Product], error) {
	return s.page(s.products)
}

func (s *stubCatalog) BestSellers(ctx context.Context, size int) (*model.Paged[model.Product], error) {
	s.sizes = append(s.sizes, size)
	return s.page(s.products)
}

func (s *stubCatalog) Promotions(ctx context.Context, page model.Page) (*model.Paged[model.Product], error) {
	return s.page(s.promos)
}

func (s *stubCatalog) Search(ctx context.Context, keyword string, categoryID int64, page model.Page) (*model.Paged[model.Product], error) {
	s.keywords = append(s.keywords, keyword)
	return s.page(s.products)
}

func (s *stubCatalog) Categories(ctx context.Context, page model.Page) (*model.Paged[model.Category], error) {
	if s.err != nil {
		return nil, s.err
	}
	return &model.Paged[model.Category]{Content: s.categories}, nil
}

func (s *stubCatalog) Blogs(ctx context.Context, page model.Page) (*model.Paged[model.Blog], error) {
	if s.err != nil {
		return nil, s.err
	}
	return &model.Paged[model.Blog]{Content: s.blogs}, nil
}

func (s *stubCatalog) Stores(ctx context.Context) ([]model.StoreConfig, error) {
	return s.stores, s.err
}

func newCatalogAssistant(catalog *stubCatalog, profiles *stubProfiles) *Assistant {
	src := Sources{Carts: &stubCarts{}, Orders: &stubOrders{}, Profiles: profiles, Catalog: catalog}
	return New(src, nil, session.NewManager(session.NewMemoryStore()), zap.NewNop())
}

func TestParse(t *testing.T) {
	tests := []struct {
		message string
		intent  Intent
		keyword string
	}{
		{"show me your best sellers", IntentBestSellers, ""},
		{"sản phẩm bán chạy", IntentBestSellers, ""},
		{"price of iPhone 15?", IntentPrice, "iphone 15"},
		{"giá của laptop dell", IntentPrice, "laptop dell"},
		{"how much is the tea", IntentPrice, "tea"},
		{"find me a laptop", IntentSearch, "laptop"},
		{"tìm kiếm tai nghe", IntentSearch, "tai nghe"},
		{"show products", IntentSearch, ""},
		{"any promotions today?", IntentPromotions, ""},
		{"sản phẩm giảm giá", IntentPromotions, ""},
		{"list categories", IntentCategories, ""},
		{"my profile", IntentProfile, ""},
		{"thông tin cửa hàng", IntentStoreInfo, ""},
		{"store address", IntentAddress, ""},
		{"what is the hotline", IntentContact, ""},
		{"latest news", IntentBlogs, ""},
		{"what do you have", IntentOverview, ""},
		{"this is nice", IntentGeneral, ""},
		{"hi", IntentGreeting, ""},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			intent, keyword := Parse(tt.message)
			assert.Equal(t, tt.intent, intent)
			assert.Equal(t, tt.keyword, keyword)
		})
	}
}

func TestIndexWord(t *testing.T) {
	assert.Equal(t, -1, indexWord("this", "hi"))
	assert.Equal(t, 4, indexWord("say hi", "hi"))
	assert.Equal(t, 6, indexWord("hotel hot", "hot"))
	assert.Equal(t, -1, indexWord("hotline", "hot"))
	assert.Equal(t, 0, indexWord("giá", "giá"))
}

func TestReply_BestSellers(t *testing.T) {
	catalog := &stubCatalog{products: []model.Product{
		{ProductID: 1, ProductName: "Green tea", Price: 120000, Discount: 10},
		{ProductID: 2, ProductName: "Cookies", Price: 40000},
	}}
	a := newCatalogAssistant(catalog, &stubProfiles{})

	r, err := a.Reply(context.Background(), "s1", "best sellers")
	require.NoError(t, err)
	assert.Equal(t, IntentBestSellers, r.Intent)
	assert.Contains(t, r.Text, "- Green tea: 108.000 ₫ (was 120.000 ₫) /products/1")
	assert.Contains(t, r.Text, "- Cookies: 40.000 ₫ /products/2")
	assert.Equal(t, []int{bestSellerCount}, catalog.sizes)
}

func TestReply_Price(t *testing.T) {
	catalog := &stubCatalog{}
	a := newCatalogAssistant(catalog, &stubProfiles{})

	r, err := a.Reply(context.Background(), "s1", "price")
	require.NoError(t, err)
	assert.Equal(t, ReplyAskProduct, r.Text)
	assert.Empty(t, catalog.keywords)

	r, err = a.Reply(context.Background(), "s1", "price of unicorn")
	require.NoError(t, err)
	assert.Equal(t, `No products match "unicorn". Browse everything at /products`, r.Text)
	assert.Equal(t, []string{"unicorn"}, catalog.keywords)
}

func TestReply_CatalogErrorIsUnavailable(t *testing.T) {
	a := newCatalogAssistant(&stubCatalog{err: backend.ErrNetwork}, &stubProfiles{})

	for _, msg := range []string{"promotions", "categories", "blog", "find tea", "overview", "contact"} {
		r, err := a.Reply(context.Background(), "s1", msg)
		require.NoError(t, err, msg)
		assert.Equal(t, ReplyUnavailable, r.Text, msg)
	}
}

func TestReply_Profile(t *testing.T) {
	profiles := &stubProfiles{err: backend.ErrAuth}
	a := newCatalogAssistant(&stubCatalog{}, profiles)

	r, err := a.Reply(context.Background(), "s1", "my profile")
	require.NoError(t, err)
	assert.Equal(t, ReplyLoginRequired, r.Text)

	profiles.err = nil
	profiles.user = &model.User{FirstName: "Ann", LastName: "Lee", Email: "ann@example.com",
		Address: &model.Address{Street: "1 Main St", City: "Hanoi"}}
	r, err = a.Reply(context.Background(), "s1", "my profile")
	require.NoError(t, err)
	assert.Equal(t, "Your profile:\nEmail: ann@example.com\nName: Ann Lee\nAddress: 1 Main St, Hanoi\nUpdate it at /profile", r.Text)
}

func TestReply_AddressAnonymousShowsStores(t *testing.T) {
	catalog := &stubCatalog{stores: []model.StoreConfig{{SiteName: "Main", Address: "123 ABC St", Hotline: "0909123456", Status: "ACTIVE"}}}
	a := newCatalogAssistant(catalog, &stubProfiles{err: backend.ErrAuth})

	r, err := a.Reply(context.Background(), "s1", "address")
	require.NoError(t, err)
	assert.Equal(t, IntentAddress, r.Intent)
	assert.Equal(t, "Log in to see your saved address: /login\n\nOur stores:\n- Main: 123 ABC St, hotline 0909123456", r.Text)
}

func TestReply_StoreInfoAndContact(t *testing.T) {
	catalog := &stubCatalog{stores: []model.StoreConfig{{StoreName: "MHP", Description: "Electronics", Email: "support@example.com", Hotline: "1900"}}}
	a := newCatalogAssistant(catalog, &stubProfiles{})

	r, err := a.Reply(context.Background(), "s1", "store info")
	require.NoError(t, err)
	assert.Equal(t, "Store: MHP\nAbout: Electronics\nEmail: support@example.com\nWrite to us at /contact", r.Text)

	r, err = a.Reply(context.Background(), "s1", "contact")
	require.NoError(t, err)
	assert.Equal(t, "Contact us:\n- MHP, hotline 1900, email support@example.com\nOr send us a message at /contact", r.Text)

	catalog.stores = nil
	r, err = a.Reply(context.Background(), "s1", "store info")
	require.NoError(t, err)
	assert.Equal(t, ReplyNoStores, r.Text)
}

func TestReply_Blogs(t *testing.T) {
	catalog := &stubCatalog{blogs: []model.Blog{{ID: 3, Title: "New arrivals", CreatedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}}}
	a := newCatalogAssistant(catalog, &stubProfiles{})

	r, err := a.Reply(context.Background(), "s1", "any news?")
	require.NoError(t, err)
	assert.Equal(t, "Latest articles:\n- New arrivals (01.05.2024) /blog/3\nAll articles at /blog", r.Text)
}

func TestReply_Overview(t *testing.T) {
	catalog := &stubCatalog{
		products:   []model.Product{{ProductID: 1, ProductName: "Tea", Price: 1000}},
		categories: []model.Category{{CategoryID: 2, CategoryName: "Drinks"}},
	}
	a := newCatalogAssistant(catalog, &stubProfiles{})

	r, err := a.Reply(context.Background(), "s1", "overview")
	require.NoError(t, err)
	assert.Equal(t, IntentOverview, r.Intent)
	assert.Equal(t, "Products: 1 in total.\n- Tea: 1.000 ₫ /products/1\n\nCategories:\n- Drinks /category/2", r.Text)
}
