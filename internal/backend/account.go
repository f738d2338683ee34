package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/mmeshcher/storefront-system/internal/model"
)

type registerRequest struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	MobileNumber string `json:"mobileNumber"`
	Email        string `json:"email"`
	Password     string `json:"password"`
}

// Register создаёт учётную запись покупателя.
func (c *Client) Register(ctx context.Context, reg model.Registration) error {
	body := registerRequest{
		FirstName:    reg.FirstName,
		LastName:     reg.LastName,
		MobileNumber: reg.MobileNumber,
		Email:        reg.Email,
		Password:     reg.Password,
	}
	return c.do(ctx, http.MethodPost, "/api/register", "", body, nil)
}

// GetUser возвращает профиль пользователя по email.
func (c *Client) GetUser(ctx context.Context, token, email string) (*model.User, error) {
	if err := c.checkToken(token); err != nil {
		return nil, err
	}

	var user model.User
	path := fmt.Sprintf("/api/public/users/email/%s", url.PathEscape(email))
	if err := c.do(ctx, http.MethodGet, path, token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Message string `json:"message"`
	Status  string `json:"status,omitempty"`
}

type contactResponse struct {
	ID        int64  `json:"id"`
	ContactID int64  `json:"contactId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Message   string `json:"message"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
}

func (r contactResponse) toModel() model.Contact {
	id := r.ID
	if id == 0 {
		id = r.ContactID
	}
	return model.Contact{
		ID:        id,
		Name:      r.Name,
		Email:     r.Email,
		Phone:     r.Phone,
		Message:   r.Message,
		Status:    model.ContactStatus(r.Status),
		CreatedAt: parseTime(r.CreatedAt),
	}
}

// SubmitContact отправляет обращение из формы обратной связи.
func (c *Client) SubmitContact(ctx context.Context, contact model.Contact) (*model.Contact, error) {
	var resp contactResponse
	body := contactRequest{
		Name:    contact.Name,
		Email:   contact.Email,
		Phone:   contact.Phone,
		Message: contact.Message,
	}
	if err := c.do(ctx, http.MethodPost, "/api/public/contacts", "", body, &resp); err != nil {
		return nil, err
	}
	res := resp.toModel()
	return &res, nil
}

// ListContacts возвращает страницу обращений.
func (c *Client) ListContacts(ctx context.Context, token string, page model.Page) (*model.Paged[model.Contact], error) {
	if err := c.checkToken(token); err != nil {
		return nil, err
	}

	var resp pageResponse[contactResponse]
	if err := c.do(ctx, http.MethodGet, "/api/public/contacts?"+pageQuery(page).Encode(), token, nil, &resp); err != nil {
		return nil, err
	}
	return toPaged(resp, contactResponse.toModel), nil
}

// GetContact возвращает обращение по идентификатору.
func (c *Client) GetContact(ctx context.Context, token string, contactID int64) (*model.Contact, error) {
	if err := c.checkToken(token); err != nil {
		return nil, err
	}

	var resp contactResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/public/contacts/%d", contactID), token, nil, &resp); err != nil {
		return nil, err
	}
	res := resp.toModel()
	return &res, nil
}

// UpdateContact сохраняет обращение (административный доступ) и возвращает подтверждённое состояние.
func (c *Client) UpdateContact(ctx context.Context, token string, contact model.Contact) (*model.Contact, error) {
	if err := c.checkToken(token); err != nil {
		return nil, err
	}

	var resp contactResponse
	body := contactRequest{
		Name:    contact.Name,
		Email:   contact.Email,
		Phone:   contact.Phone,
		Message: contact.Message,
		Status:  string(contact.Status),
	}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/admin/contacts/%d", contact.ID), token, body, &resp); err != nil {
		return nil, err
	}
	res := resp.toModel()
	return &res, nil
}
