package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/storefront-system/internal/backend"
	"github.com/mmeshcher/storefront-system/internal/model"
)

func writeProducts(b *strings.Builder, products []model.Product) {
	for _, p := range products {
		fmt.Fprintf(b, "\n- %s: %s", p.ProductName, FormatVND(p.EffectivePrice()))
		if p.OnSale() {
			fmt.Fprintf(b, " (was %s)", FormatVND(p.Price))
		}
		fmt.Fprintf(b, " /products/%d", p.ProductID)
	}
}

func (a *Assistant) bestSellers(ctx context.Context) (string, error) {
	res, err := a.src.Catalog.BestSellers(ctx, bestSellerCount)
	if err != nil {
		return "", err
	}
	if len(res.Content) == 0 {
		return ReplyNoProducts, nil
	}

	var b strings.Builder
	b.WriteString("Best sellers:")
	writeProducts(&b, res.Content)
	b.WriteString("\nMore at /products")
	return b.String(), nil
}

func (a *Assistant) prices(ctx context.Context, keyword string) (string, error) {
	if keyword == "" {
		return ReplyAskProduct, nil
	}
	return a.searchReply(ctx, keyword, "Prices for %q:")
}

func (a *Assistant) search(ctx context.Context, keyword string) (string, error) {
	if keyword != "" {
		return a.searchReply(ctx, keyword, "Results for %q:")
	}

	res, err := a.src.Catalog.Products(ctx, model.Page{PageSize: searchPageSize})
	if err != nil {
		return "", err
	}
	if len(res.Content) == 0 {
		return ReplyNoProducts, nil
	}
	var b strings.Builder
	b.WriteString("Some of our products:")
	writeProducts(&b, res.Content)
	return b.String(), nil
}

func (a *Assistant) searchReply(ctx context.Context, keyword, header string) (string, error) {
	res, err := a.src.Catalog.Search(ctx, keyword, 0, model.Page{PageSize: searchPageSize})
	if err != nil {
		return "", err
	}
	if len(res.Content) == 0 {
		return fmt.Sprintf("No products match %q. Browse everything at /products", keyword), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, header, keyword)
	writeProducts(&b, res.Content)
	return b.String(), nil
}

func (a *Assistant) promotions(ctx context.Context) (string, error) {
	res, err := a.src.Catalog.Promotions(ctx, model.Page{PageSize: promoPageSize})
	if err != nil {
		return "", err
	}
	if len(res.Content) == 0 {
		return ReplyNoPromotions, nil
	}

	var b strings.Builder
	b.WriteString("Current promotions:")
	writeProducts(&b, res.Content)
	return b.String(), nil
}

func (a *Assistant) categories(ctx context.Context) (string, error) {
	res, err := a.src.Catalog.Categories(ctx, model.Page{PageSize: categoryLimit})
	if err != nil {
		return "", err
	}
	if len(res.Content) == 0 {
		return ReplyNoCategories, nil
	}

	var b strings.Builder
	b.WriteString("Categories:")
	for _, c := range res.Content {
		fmt.Fprintf(&b, "\n- %s /category/%d", c.CategoryName, c.CategoryID)
		if c.Description != "" {
			fmt.Fprintf(&b, ": %s", c.Description)
		}
	}
	return b.String(), nil
}

func (a *Assistant) blogs(ctx context.Context) (string, error) {
	res, err := a.src.Catalog.Blogs(ctx, model.Page{PageSize: blogPageSize})
	if err != nil {
		return "", err
	}
	if len(res.Content) == 0 {
		return ReplyNoBlogs, nil
	}

	var b strings.Builder
	b.WriteString("Latest articles:")
	writeBlogs(&b, res.Content)
	b.WriteString("\nAll articles at /blog")
	return b.String(), nil
}

func writeBlogs(b *strings.Builder, blogs []model.Blog) {
	for _, p := range blogs {
		fmt.Fprintf(b, "\n- %s", p.Title)
		if !p.CreatedAt.IsZero() {
			fmt.Fprintf(b, " (%s)", p.CreatedAt.Format("02.01.2006"))
		}
		fmt.Fprintf(b, " /blog/%d", p.ID)
	}
}

func (a *Assistant) storeInfo(ctx context.Context) (string, error) {
	stores, err := a.src.Catalog.Stores(ctx)
	if err != nil {
		return "", err
	}
	if len(stores) == 0 {
		return ReplyNoStores, nil
	}

	s := stores[0]
	var b strings.Builder
	fmt.Fprintf(&b, "Store: %s", s.Name())
	if s.Description != "" {
		fmt.Fprintf(&b, "\nAbout: %s", s.Description)
	}
	if s.Email != "" {
		fmt.Fprintf(&b, "\nEmail: %s", s.Email)
	}
	b.WriteString("\nWrite to us at /contact")
	return b.String(), nil
}

func writeStores(b *strings.Builder, stores []model.StoreConfig) {
	for _, s := range stores {
		fmt.Fprintf(b, "\n- %s: %s", s.Name(), s.Address)
		if s.Hotline != "" {
			fmt.Fprintf(b, ", hotline %s", s.Hotline)
		}
	}
}

func (a *Assistant) address(ctx context.Context, sid string) (string, error) {
	stores, err := a.src.Catalog.Stores(ctx)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	user, err := a.src.Profiles.Profile(ctx, sid)
	switch {
	case errors.Is(err, backend.ErrAuth):
		b.WriteString("Log in to see your saved address: /login")
	case err != nil:
		return "", err
	case user.Address == nil || user.Address.String() == "":
		b.WriteString("You have no saved address yet. Add one at /profile")
	default:
		fmt.Fprintf(&b, "Your address: %s\nUpdate it at /profile", user.Address)
	}

	if len(stores) > 0 {
		b.WriteString("\n\nOur stores:")
		writeStores(&b, stores)
	}
	return b.String(), nil
}

func (a *Assistant) contact(ctx context.Context) (string, error) {
	stores, err := a.src.Catalog.Stores(ctx)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("Contact us:")
	for _, s := range stores {
		fmt.Fprintf(&b, "\n- %s", s.Name())
		if s.Hotline != "" {
			fmt.Fprintf(&b, ", hotline %s", s.Hotline)
		}
		if s.Email != "" {
			fmt.Fprintf(&b, ", email %s", s.Email)
		}
	}
	b.WriteString("\nOr send us a message at /contact")
	return b.String(), nil
}

func (a *Assistant) profile(ctx context.Context, sid string) (string, error) {
	user, err := a.src.Profiles.Profile(ctx, sid)
	if errors.Is(err, backend.ErrAuth) {
		return ReplyLoginRequired, nil
	}
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Your profile:\nEmail: %s\nName: %s", user.Email, user.FullName())
	if user.Address != nil && user.Address.String() != "" {
		fmt.Fprintf(&b, "\nAddress: %s", user.Address)
	}
	b.WriteString("\nUpdate it at /profile")
	return b.String(), nil
}

func (a *Assistant) overview(ctx context.Context) (string, error) {
	var (
		products, promos *model.Paged[model.Product]
		categories       *model.Paged[model.Category]
		blogs            *model.Paged[model.Blog]
	)
	page := model.Page{PageSize: overviewCount}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		products, err = a.src.Catalog.Products(gctx, page)
		return err
	})
	g.Go(func() (err error) {
		promos, err = a.src.Catalog.Promotions(gctx, page)
		return err
	})
	g.Go(func() (err error) {
		categories, err = a.src.Catalog.Categories(gctx, page)
		return err
	})
	g.Go(func() (err error) {
		blogs, err = a.src.Catalog.Blogs(gctx, model.Page{PageSize: 2})
		return err
	})
	if err := g.Wait(); err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Products: %d in total.", products.TotalElements)
	writeProducts(&b, products.Content)
	if len(promos.Content) > 0 {
		b.WriteString("\n\nPromotions:")
		writeProducts(&b, promos.Content)
	}
	if len(categories.Content) > 0 {
		b.WriteString("\n\nCategories:")
		for _, c := range categories.Content {
			fmt.Fprintf(&b, "\n- %s /category/%d", c.CategoryName, c.CategoryID)
		}
	}
	if len(blogs.Content) > 0 {
		b.WriteString("\n\nArticles:")
		writeBlogs(&b, blogs.Content)
	}
	return b.String(), nil
}
