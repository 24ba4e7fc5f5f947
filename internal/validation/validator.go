package validation

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/article-publishing-api/internal/models"
)

// Username and password bounds for login payloads.
const (
	maxUsernameLength = 64
	maxPasswordLength = 32
)

// Validator performs field-level validation on request payloads
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateLogin checks a credentials payload. It says nothing about
// whether the credentials match a user; that is the auth service's
// concern.
func (v *Validator) ValidateLogin(req *models.LoginRequest) []models.FieldError {
	var errs []models.FieldError

	if strings.TrimSpace(req.Username) == "" {
		errs = append(errs, models.FieldError{Field: "username", Message: "username is required"})
	} else if utf8.RuneCountInString(req.Username) > maxUsernameLength {
		errs = append(errs, models.FieldError{
			Field:   "username",
			Message: fmt.Sprintf("username must be at most %d characters", maxUsernameLength),
		})
	}

	if req.Password == "" {
		errs = append(errs, models.FieldError{Field: "password", Message: "password is required"})
	} else if utf8.RuneCountInString(req.Password) > maxPasswordLength {
		errs = append(errs, models.FieldError{
			Field:   "password",
			Message: fmt.Sprintf("password must be at most %d characters", maxPasswordLength),
		})
	}

	return errs
}

// ValidateArticle checks an article create/update payload. Title
// uniqueness is checked against storage by the article service, not
// here.
func (v *Validator) ValidateArticle(input *models.ArticleInput) []models.FieldError {
	var errs []models.FieldError

	title := strings.TrimSpace(input.Title)
	if title == "" {
		errs = append(errs, models.FieldError{Field: "title", Message: "title is required"})
	} else if utf8.RuneCountInString(input.Title) > models.MaxTitleLength {
		errs = append(errs, models.FieldError{
			Field:   "title",
			Message: fmt.Sprintf("title must be at most %d characters", models.MaxTitleLength),
		})
	}

	if isEmptyJSON(input.Body) {
		errs = append(errs, models.FieldError{Field: "json_body", Message: "json_body is required"})
	}

	return errs
}

// ValidateActivation checks the admin visibility-toggle payload. The
// flag must be supplied explicitly; this is the only way a deactivated
// article goes public again.
func (v *Validator) ValidateActivation(req *models.ActivationRequest) []models.FieldError {
	if req.IsActive == nil {
		return []models.FieldError{{Field: "is_active", Message: "is_active is required"}}
	}
	return nil
}

func isEmptyJSON(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
