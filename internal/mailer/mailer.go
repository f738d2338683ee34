// Package mailer отправляет транзакционные письма через REST API сервиса рассылки.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/mmeshcher/storefront-system/internal/model"
)

// ErrDisabled возвращается, если отправка писем не настроена.
var ErrDisabled = errors.New("mailer is not configured")

const sendPath = "/api/v1.0/email/send"

// Config содержит параметры доступа к сервису рассылки.
// Пустой ReplyTemplateID означает, что ответы на обращения отправляются по TemplateID.
type Config struct {
	APIAddress      string
	ServiceID       string
	TemplateID      string
	ReplyTemplateID string
	SenderName      string
	PublicKey       string
	PrivateKey      string
	RatePerSec      float64
}

// Client отправляет письма с ограничением частоты запросов.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient создаёт клиент рассылки. Без ServiceID, TemplateID и PublicKey клиент отключён.
func NewClient(cfg Config) *Client {
	cfg.APIAddress = strings.TrimRight(cfg.APIAddress, "/")

	limit := rate.Limit(cfg.RatePerSec)
	if cfg.RatePerSec <= 0 {
		limit = rate.Inf
	}

	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Enabled сообщает, настроен ли клиент.
func (c *Client) Enabled() bool {
	return c.cfg.APIAddress != "" && c.cfg.ServiceID != "" && c.cfg.TemplateID != "" && c.cfg.PublicKey != ""
}

type sendRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	AccessToken    string            `json:"accessToken,omitempty"`
	TemplateParams map[string]string `json:"template_params"`
}

// SendOrderConfirmation отправляет письмо с подтверждением заказа.
func (c *Client) SendOrderConfirmation(ctx context.Context, to string, order model.Order) error {
	params := map[string]string{
		"to_email":       to,
		"order_id":       strconv.FormatInt(order.OrderID, 10),
		"order_total":    strconv.FormatInt(order.TotalAmount, 10),
		"payment_method": string(order.PaymentMethod),
		"order_items":    formatItems(order.Items),
	}
	return c.Send(ctx, params)
}

func formatItems(items []model.OrderItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, fmt.Sprintf("%s x%d", it.ProductName, it.Quantity))
	}
	return strings.Join(parts, ", ")
}

// SendContactReply отправляет ответ администратора на обращение покупателя.
func (c *Client) SendContactReply(ctx context.Context, contact model.Contact, reply string) error {
	name := contact.Name
	if name == "" {
		name = "customer"
	}
	params := map[string]string{
		"to_email":         contact.Email,
		"to_name":          name,
		"original_message": contact.Message,
		"admin_reply":      reply,
		"admin_name":       c.cfg.SenderName,
	}

	templateID := c.cfg.ReplyTemplateID
	if templateID == "" {
		templateID = c.cfg.TemplateID
	}
	return c.SendTemplate(ctx, templateID, params)
}

// Send отправляет письмо по основному шаблону с указанными параметрами.
func (c *Client) Send(ctx context.Context, params map[string]string) error {
	return c.SendTemplate(ctx, c.cfg.TemplateID, params)
}

// SendTemplate отправляет письмо по заданному шаблону.
func (c *Client) SendTemplate(ctx context.Context, templateID string, params map[string]string) error {
	if !c.Enabled() {
		return ErrDisabled
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	body, err := json.Marshal(sendRequest{
		ServiceID:      c.cfg.ServiceID,
		TemplateID:     templateID,
		UserID:         c.cfg.PublicKey,
		AccessToken:    c.cfg.PrivateKey,
		TemplateParams: params,
	})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIAddress+sendPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("send email: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}
