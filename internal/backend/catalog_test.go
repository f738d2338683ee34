package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/mmeshcher/storefront-system/internal/model"
)

func TestSearchProducts_BuildsQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/public/products/keyword/iphone 15" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("pageNumber") != "1" || q.Get("pageSize") != "5" || q.Get("categoryId") != "3" {
			t.Fatalf("query = %s", r.URL.RawQuery)
		}
		if q.Get("sortBy") != "price" || q.Get("sortOrder") != "desc" {
			t.Fatalf("sort = %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{
			"content": [{"productId": 9, "productName": "iPhone 15", "price": 1000, "discount": 10, "stock": 4,
			             "category": {"categoryId": 3, "categoryName": "Phones"}}],
			"pageNumber": 1, "pageSize": 5, "totalElements": 6, "totalPages": 2, "lastPage": true
		}`))
	})

	page := model.Page{PageNumber: 1, PageSize: 5, SortBy: "price", SortOrder: "desc"}
	res, err := client.SearchProducts(context.Background(), "iphone 15", 3, page)
	if err != nil {
		t.Fatalf("SearchProducts error: %v", err)
	}
	if len(res.Content) != 1 || res.TotalElements != 6 || !res.LastPage {
		t.Fatalf("page = %+v", res)
	}
	p := res.Content[0]
	if p.ProductID != 9 || p.Stock != 4 || p.EffectivePrice() != 900 {
		t.Fatalf("product = %+v", p)
	}
	if p.Category == nil || p.Category.CategoryName != "Phones" {
		t.Fatalf("category = %+v", p.Category)
	}
}

func TestListCategories_OmitsEmptySort(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/public/categories" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Has("sortBy") {
			t.Fatalf("unexpected sortBy in %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"content":[{"categoryId":1,"categoryName":"Laptops"}],"totalPages":1}`))
	})

	res, err := client.ListCategories(context.Background(), model.Page{PageSize: 10})
	if err != nil {
		t.Fatalf("ListCategories error: %v", err)
	}
	if len(res.Content) != 1 || res.Content[0].CategoryName != "Laptops" {
		t.Fatalf("categories = %+v", res.Content)
	}
}

func TestListBlogs_ParsesDates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":[{"id":2,"title":"News","createdAt":"2024-05-01T10:00:00"}]}`))
	})

	res, err := client.ListBlogs(context.Background(), model.Page{PageSize: 5, SortBy: "id", SortOrder: "desc"})
	if err != nil {
		t.Fatalf("ListBlogs error: %v", err)
	}
	if len(res.Content) != 1 || res.Content[0].CreatedAt.Year() != 2024 {
		t.Fatalf("blogs = %+v", res.Content)
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Product not found"}`))
	})

	_, err := client.GetProduct(context.Background(), 42)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRegister_SendsUserBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/register" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req["firstName"] != "Ann" || req["mobileNumber"] != "0901234567" || req["password"] != "secret1" {
			t.Fatalf("body = %v", req)
		}
		w.WriteHeader(http.StatusCreated)
	})

	err := client.Register(context.Background(), model.Registration{
		FirstName: "Ann", LastName: "Lee", MobileNumber: "0901234567",
		Email: "ann@example.com", Password: "secret1",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
}

func TestRegister_ConflictIsValidation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"Email already exists"}`))
	})

	err := client.Register(context.Background(), model.Registration{Email: "ann@example.com"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestGetUser_DecodesAddress(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/public/users/email/ann@example.com" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"userId":7,"firstName":"Ann","lastName":"Lee","email":"ann@example.com",
			"address":{"street":"1 Main St","city":"Hanoi"}}`))
	})

	user, err := client.GetUser(context.Background(), "tok", "ann@example.com")
	if err != nil {
		t.Fatalf("GetUser error: %v", err)
	}
	if user.FullName() != "Ann Lee" || user.Address == nil || user.Address.String() != "1 Main St, Hanoi" {
		t.Fatalf("user = %+v", user)
	}
}

func TestUpdateContact_SendsStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/admin/contacts/12" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req contactRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req.Status != "REPLIED" {
			t.Fatalf("status = %q", req.Status)
		}
		_, _ = w.Write([]byte(`{"contactId":12,"name":"Ann","email":"ann@example.com","status":"REPLIED"}`))
	})

	res, err := client.UpdateContact(context.Background(), "tok", model.Contact{
		ID: 12, Name: "Ann", Email: "ann@example.com", Status: model.ContactReplied,
	})
	if err != nil {
		t.Fatalf("UpdateContact error: %v", err)
	}
	if res.ID != 12 || res.Status != model.ContactReplied {
		t.Fatalf("contact = %+v", res)
	}
}

func TestListContacts_RequiresToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected request %s", r.URL.Path)
	})

	_, err := client.ListContacts(context.Background(), "", model.Page{})
	if !errors.Is(err, ErrAuth) {
		t.Fatalf("err = %v, want ErrAuth", err)
	}
}
