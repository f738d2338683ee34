// Package validation содержит функции валидации входных данных.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/mmeshcher/storefront-system/internal/model"
)

// ErrInvalid является общей причиной всех ошибок валидации пакета.
var ErrInvalid = errors.New("invalid input")

// ErrInvalidQuantity возвращается для количества товара меньше единицы.
var ErrInvalidQuantity = fmt.Errorf("%w: quantity must be at least 1", ErrInvalid)

var phonePattern = regexp.MustCompile(`^\d{10,11}$`)

// CheckoutForm описывает данные формы оформления заказа.
type CheckoutForm struct {
	FullName      string
	Address       string
	Phone         string
	Note          string
	PaymentMethod model.PaymentMethod
}

// FieldErrors содержит ошибки валидации по именам полей формы.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	fields := make([]string, 0, len(f))
	for name := range f {
		fields = append(fields, name)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, name := range fields {
		parts = append(parts, name+": "+f[name])
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

// Unwrap позволяет распознавать FieldErrors через errors.Is(err, ErrInvalid).
func (f FieldErrors) Unwrap() error {
	return ErrInvalid
}

// ValidateCheckout проверяет форму оформления заказа и возвращает FieldErrors при ошибках.
func ValidateCheckout(form CheckoutForm) error {
	errs := FieldErrors{}

	if strings.TrimSpace(form.FullName) == "" {
		errs["fullName"] = "full name is required"
	}
	if strings.TrimSpace(form.Address) == "" {
		errs["address"] = "address is required"
	}

	phone := strings.TrimSpace(form.Phone)
	switch {
	case phone == "":
		errs["phone"] = "phone is required"
	case !IsValidPhone(phone):
		errs["phone"] = "phone must contain 10 or 11 digits"
	}

	if !form.PaymentMethod.Valid() {
		errs["paymentMethod"] = fmt.Sprintf("unsupported payment method %q", form.PaymentMethod)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// IsValidPhone проверяет, что номер телефона состоит из 10 или 11 цифр.
func IsValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// ValidateQuantity проверяет количество товара для добавления в корзину.
func ValidateQuantity(quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	return nil
}
