package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mmeshcher/storefront-system/internal/model"
	"github.com/mmeshcher/storefront-system/internal/validation"
)

// WarningStatusNotSaved сообщает, что ответ отправлен, но статус обращения не обновлён.
const WarningStatusNotSaved = "reply sent, but the contact could not be marked as replied"

// ErrEmptyReply возвращается для пустого ответа на обращение.
var ErrEmptyReply = fmt.Errorf("%w: reply is required", validation.ErrInvalid)

// ContactBackend описывает операции REST API с обращениями.
type ContactBackend interface {
	SubmitContact(ctx context.Context, contact model.Contact) (*model.Contact, error)
	ListContacts(ctx context.Context, token string, page model.Page) (*model.Paged[model.Contact], error)
	GetContact(ctx context.Context, token string, contactID int64) (*model.Contact, error)
	UpdateContact(ctx context.Context, token string, contact model.Contact) (*model.Contact, error)
}

// ReplyMailer отправляет ответ на обращение по почте.
type ReplyMailer interface {
	SendContactReply(ctx context.Context, contact model.Contact, reply string) error
}

// ReplyResult описывает итог ответа на обращение.
type ReplyResult struct {
	Contact  *model.Contact `json:"contact"`
	Warnings []string       `json:"warnings,omitempty"`
}

// Contacts принимает обращения покупателей и ответы администратора.
type Contacts struct {
	api    ContactBackend
	mailer ReplyMailer
	logger *zap.Logger
}

// NewContacts создаёт сервис обращений.
func NewContacts(api ContactBackend, mailer ReplyMailer, logger *zap.Logger) *Contacts {
	return &Contacts{api: api, mailer: mailer, logger: logger}
}

// Submit проверяет и отправляет обращение из формы обратной связи.
func (c *Contacts) Submit(ctx context.Context, form validation.ContactForm) (*model.Contact, error) {
	if err := validation.ValidateContact(form); err != nil {
		return nil, err
	}
	return c.api.SubmitContact(ctx, form.Contact())
}

// List возвращает страницу обращений, новые первыми.
func (c *Contacts) List(ctx context.Context, token string, page model.Page) (*model.Paged[model.Contact], error) {
	return c.api.ListContacts(ctx, token, page.WithDefaults(DefaultPageSize, "id", "desc"))
}

// Reply отправляет ответ на обращение и отмечает его как отвеченное.
// Ошибка отправки письма возвращается без изменения статуса.
func (c *Contacts) Reply(ctx context.Context, token string, contactID int64, reply string) (*ReplyResult, error) {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return nil, ErrEmptyReply
	}

	contact, err := c.api.GetContact(ctx, token, contactID)
	if err != nil {
		return nil, err
	}
	if err := c.mailer.SendContactReply(ctx, *contact, reply); err != nil {
		return nil, fmt.Errorf("send reply: %w", err)
	}

	res := &ReplyResult{Contact: contact}

	replied := *contact
	replied.Status = model.ContactReplied
	saved, err := c.api.UpdateContact(ctx, token, replied)
	if err != nil {
		c.logger.Warn("failed to mark contact as replied", zap.Int64("contact_id", contactID), zap.Error(err))
		res.Warnings = append(res.Warnings, WarningStatusNotSaved)
		return res, nil
	}
	res.Contact = saved
	return res, nil
}
