package validation

import (
	"net/mail"
	"strings"

	"github.com/mmeshcher/storefront-system/internal/model"
)

// MinPasswordLength задаёт минимальную длину пароля при регистрации.
const MinPasswordLength = 6

// RegisterForm описывает данные формы регистрации.
type RegisterForm struct {
	FirstName       string
	LastName        string
	Phone           string
	Email           string
	Password        string
	ConfirmPassword string
}

// Registration возвращает данные для создания учётной записи.
func (f RegisterForm) Registration() model.Registration {
	return model.Registration{
		FirstName:    strings.TrimSpace(f.FirstName),
		LastName:     strings.TrimSpace(f.LastName),
		MobileNumber: strings.TrimSpace(f.Phone),
		Email:        strings.TrimSpace(f.Email),
		Password:     f.Password,
	}
}

// ValidateRegister проверяет форму регистрации и возвращает FieldErrors при ошибках.
func ValidateRegister(form RegisterForm) error {
	errs := FieldErrors{}

	if strings.TrimSpace(form.FirstName) == "" {
		errs["firstName"] = "first name is required"
	}
	if strings.TrimSpace(form.LastName) == "" {
		errs["lastName"] = "last name is required"
	}

	phone := strings.TrimSpace(form.Phone)
	switch {
	case phone == "":
		errs["phone"] = "phone is required"
	case !IsValidPhone(phone):
		errs["phone"] = "phone must contain 10 or 11 digits"
	}

	checkEmail(errs, form.Email)

	switch {
	case len(form.Password) < MinPasswordLength:
		errs["password"] = "password must be at least 6 characters"
	case form.Password != form.ConfirmPassword:
		errs["confirmPassword"] = "passwords do not match"
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ContactForm описывает данные формы обратной связи.
type ContactForm struct {
	Name    string
	Email   string
	Phone   string
	Message string
}

// Contact возвращает обращение для отправки на сервер.
func (f ContactForm) Contact() model.Contact {
	return model.Contact{
		Name:    strings.TrimSpace(f.Name),
		Email:   strings.TrimSpace(f.Email),
		Phone:   strings.TrimSpace(f.Phone),
		Message: strings.TrimSpace(f.Message),
	}
}

// ValidateContact проверяет форму обратной связи. Телефон необязателен.
func ValidateContact(form ContactForm) error {
	errs := FieldErrors{}

	if strings.TrimSpace(form.Name) == "" {
		errs["name"] = "name is required"
	}
	checkEmail(errs, form.Email)
	if phone := strings.TrimSpace(form.Phone); phone != "" && !IsValidPhone(phone) {
		errs["phone"] = "phone must contain 10 or 11 digits"
	}
	if strings.TrimSpace(form.Message) == "" {
		errs["message"] = "message is required"
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func checkEmail(errs FieldErrors, email string) {
	email = strings.TrimSpace(email)
	if email == "" {
		errs["email"] = "email is required"
		return
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		errs["email"] = "email is invalid"
	}
}
