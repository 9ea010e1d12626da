package content

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	SubjectReading = "reading"
	SubjectMath    = "math"
)

// Locales supported by the content library.
var Locales = []string{"en", "hi", "or"}

type (
	Item struct {
		ID          string    `json:"id"`
		Title       string    `json:"title"`
		Subject     string    `json:"subject"`
		LevelTag    string    `json:"level_tag"`
		Locale      string    `json:"locale"`
		BodyMd      string    `json:"body_md"`
		Attachments []string  `json:"attachments"`
		CreatedAt   time.Time `json:"created_at"`
		UpdatedAt   time.Time `json:"updated_at"`
	}

	NewItem struct {
		Title       string   `json:"title" validate:"required"`
		Subject     string   `json:"subject" validate:"required,content_subject"`
		LevelTag    string   `json:"level_tag" validate:"required,band"`
		Locale      string   `json:"locale" validate:"required,content_locale"`
		BodyMd      string   `json:"body_md" validate:"required"`
		Attachments []string `json:"attachments" validate:"omitempty,dive,url"`
	}

	UpdateItem struct {
		Title       string   `json:"title" validate:"omitempty"`
		Subject     string   `json:"subject" validate:"omitempty,content_subject"`
		LevelTag    string   `json:"level_tag" validate:"omitempty,band"`
		Locale      string   `json:"locale" validate:"omitempty,content_locale"`
		BodyMd      string   `json:"body_md" validate:"omitempty"`
		Attachments []string `json:"attachments" validate:"omitempty,dive,url"`
	}
)

func (ni NewItem) Validate(ctx context.Context, validate *validator.Validate) error {
	return validate.StructCtx(ctx, ni)
}

func (ui UpdateItem) Validate(ctx context.Context, validate *validator.Validate) error {
	return validate.StructCtx(ctx, ui)
}
