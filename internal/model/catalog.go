package model

import (
	"strings"
	"time"
)

// Category описывает категорию каталога.
type Category struct {
	CategoryID   int64  `json:"categoryId"`
	CategoryName string `json:"categoryName"`
	Description  string `json:"description,omitempty"`
}

// Product описывает товар каталога.
type Product struct {
	ProductID    int64     `json:"productId"`
	ProductName  string    `json:"productName"`
	Image        string    `json:"image,omitempty"`
	Description  string    `json:"description,omitempty"`
	Stock        int       `json:"stock"`
	Price        int64     `json:"price"`
	Discount     int       `json:"discount"`
	SpecialPrice int64     `json:"specialPrice"`
	Category     *Category `json:"category,omitempty"`
}

// EffectivePrice возвращает цену продажи: специальную цену, если она задана,
// иначе цену с учётом процента скидки.
func (p Product) EffectivePrice() int64 {
	switch {
	case p.SpecialPrice > 0:
		return p.SpecialPrice
	case p.Discount > 0 && p.Discount < 100:
		return p.Price * int64(100-p.Discount) / 100
	}
	return p.Price
}

// OnSale сообщает, продаётся ли товар дешевле обычной цены.
func (p Product) OnSale() bool {
	return p.EffectivePrice() < p.Price
}

// Blog описывает статью блога магазина.
type Blog struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content,omitempty"`
	Image       string    `json:"image,omitempty"`
	AuthorEmail string    `json:"authorEmail,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// StoreConfig описывает запись конфигурации магазина: точку продаж и её контакты.
type StoreConfig struct {
	ID          int64  `json:"id"`
	Key         string `json:"key,omitempty"`
	Value       string `json:"value,omitempty"`
	Description string `json:"description,omitempty"`
	SiteName    string `json:"siteName,omitempty"`
	StoreName   string `json:"storeName,omitempty"`
	Address     string `json:"address,omitempty"`
	Hotline     string `json:"hotline,omitempty"`
	Email       string `json:"email,omitempty"`
	Status      string `json:"status,omitempty"`
}

// Name возвращает название точки продаж.
func (c StoreConfig) Name() string {
	if c.StoreName != "" {
		return c.StoreName
	}
	return c.SiteName
}

// Active сообщает, действует ли запись.
func (c StoreConfig) Active() bool {
	return strings.EqualFold(c.Status, "ACTIVE")
}

// ContactStatus описывает статус обращения покупателя.
type ContactStatus string

const (
	ContactPending ContactStatus = "PENDING"
	ContactReplied ContactStatus = "REPLIED"
)

// Contact описывает обращение покупателя через форму обратной связи.
type Contact struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Phone     string        `json:"phone,omitempty"`
	Message   string        `json:"message"`
	Status    ContactStatus `json:"status,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Address описывает адрес пользователя.
type Address struct {
	Street       string `json:"street,omitempty"`
	BuildingName string `json:"buildingName,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	Country      string `json:"country,omitempty"`
	Pincode      string `json:"pincode,omitempty"`
}

// String возвращает адрес одной строкой, пропуская пустые части.
func (a Address) String() string {
	parts := make([]string, 0, 6)
	for _, p := range []string{a.Street, a.BuildingName, a.City, a.State, a.Country, a.Pincode} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// User описывает профиль покупателя.
type User struct {
	UserID       int64    `json:"userId"`
	FirstName    string   `json:"firstName"`
	LastName     string   `json:"lastName"`
	MobileNumber string   `json:"mobileNumber,omitempty"`
	Email        string   `json:"email"`
	Address      *Address `json:"address,omitempty"`
}

// FullName возвращает имя и фамилию пользователя.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Registration содержит данные для создания учётной записи.
type Registration struct {
	FirstName    string
	LastName     string
	MobileNumber string
	Email        string
	Password     string
}
