package handlers

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/you/storeapi/domain"
)

var otpPattern = regexp.MustCompile(`^[0-9]{6}$`)

// fieldMessages is the client message for a failed field, by struct field name
var fieldMessages = map[string]string{
	"Email":    "Invalid email address!",
	"OTP":      "Invalid Otp!",
	"Token":    "Invalid token!",
	"Password": "Invalid password!",
}

// RegisterValidators adds the otp and password tags to gin's validator
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected gin validator engine")
	}
	if err := v.RegisterValidation("otp", func(fl validator.FieldLevel) bool {
		return otpPattern.MatchString(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		n := utf8.RuneCountInString(fl.Field().String())
		return n >= 8 && n <= 12
	})
}

// request bodies normalize themselves before validation
type normalizer interface {
	normalize()
}

// bind decodes the JSON body, trims the fields and validates the binding tags.
// The first failing field decides the message.
func bind(c *gin.Context, req normalizer) error {
	if err := json.NewDecoder(c.Request.Body).Decode(req); err != nil {
		return domain.ErrInvalidInput.Wrap(err)
	}
	req.normalize()

	if err := binding.Validator.ValidateStruct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			if msg, ok := fieldMessages[verrs[0].StructField()]; ok {
				invalid := *domain.ErrInvalidInput
				invalid.Message = msg
				return invalid.Wrap(err)
			}
		}
		return domain.ErrInvalidInput.Wrap(err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type EmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (r *EmailRequest) normalize() { r.Email = normalizeEmail(r.Email) }

type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,otp"`
	Token string `json:"token" binding:"required"`
}

func (r *VerifyOTPRequest) normalize() {
	r.Email = normalizeEmail(r.Email)
	r.OTP = strings.TrimSpace(r.OTP)
	r.Token = strings.TrimSpace(r.Token)
}

type PasswordRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,password"`
	Token    string `json:"token" binding:"required"`
}

func (r *PasswordRequest) normalize() {
	r.Email = normalizeEmail(r.Email)
	r.Password = strings.TrimSpace(r.Password)
	r.Token = strings.TrimSpace(r.Token)
}

type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,password"`
}

func (r *SignInRequest) normalize() {
	r.Email = normalizeEmail(r.Email)
	r.Password = strings.TrimSpace(r.Password)
}

type PolicyRequest struct {
	Role     string `json:"role" binding:"required"`
	Resource string `json:"resource" binding:"required"`
	Action   string `json:"action" binding:"required"`
}

func (r *PolicyRequest) normalize() {
	r.Role = strings.ToUpper(strings.TrimSpace(r.Role))
	r.Resource = strings.TrimSpace(r.Resource)
	r.Action = strings.TrimSpace(r.Action)
}
