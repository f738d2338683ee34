package validation

import (
	"errors"
	"testing"

	"github.com/mmeshcher/storefront-system/internal/model"
)

func TestIsValidPhone(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		valid bool
	}{
		{
			name:  "ten digits",
			phone: "0912345678",
			valid: true,
		},
		{
			name:  "eleven digits",
			phone: "84912345678",
			valid: true,
		},
		{
			name:  "too short",
			phone: "091234567",
			valid: false,
		},
		{
			name:  "too long",
			phone: "091234567890",
			valid: false,
		},
		{
			name:  "contains letters",
			phone: "09123a5678",
			valid: false,
		},
		{
			name:  "plus prefix",
			phone: "+840912345678",
			valid: false,
		},
		{
			name:  "empty string",
			phone: "",
			valid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsValidPhone(tt.phone)
			if got != tt.valid {
				t.Fatalf("IsValidPhone(%q) = %v, want %v", tt.phone, got, tt.valid)
			}
		})
	}
}

func TestValidateCheckout(t *testing.T) {
	valid := CheckoutForm{
		FullName:      "Nguyen Van A",
		Address:       "1 Le Loi, District 1",
		Phone:         "0912345678",
		PaymentMethod: model.PaymentCOD,
	}

	tests := []struct {
		name   string
		modify func(f *CheckoutForm)
		fields []string
	}{
		{
			name:   "valid form",
			modify: func(f *CheckoutForm) {},
		},
		{
			name:   "blank name",
			modify: func(f *CheckoutForm) { f.FullName = "   " },
			fields: []string{"fullName"},
		},
		{
			name:   "missing address and phone",
			modify: func(f *CheckoutForm) {
				f.Address = ""
				f.Phone = ""
			},
			fields: []string{"address", "phone"},
		},
		{
			name:   "bad phone",
			modify: func(f *CheckoutForm) { f.Phone = "12345" },
			fields: []string{"phone"},
		},
		{
			name:   "unknown payment method",
			modify: func(f *CheckoutForm) { f.PaymentMethod = "CARD" },
			fields: []string{"paymentMethod"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := valid
			tt.modify(&form)

			err := ValidateCheckout(form)
			if len(tt.fields) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var fe FieldErrors
			if !errors.As(err, &fe) {
				t.Fatalf("expected FieldErrors, got %v", err)
			}
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid in chain")
			}
			if len(fe) != len(tt.fields) {
				t.Fatalf("got fields %v, want %v", fe, tt.fields)
			}
			for _, name := range tt.fields {
				if _, ok := fe[name]; !ok {
					t.Fatalf("missing error for field %s in %v", name, fe)
				}
			}
		})
	}
}

func TestValidateQuantity(t *testing.T) {
	if err := ValidateQuantity(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, q := range []int{0, -3} {
		if err := ValidateQuantity(q); !errors.Is(err, ErrInvalid) {
			t.Fatalf("ValidateQuantity(%d) = %v, want ErrInvalid", q, err)
		}
	}
}
