package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/templui/goaltracker/internal/model"
)

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
	MaxNotesLength       = 10000
)

// fieldErrors collects per-field problems and turns them into one ValidationError.
type fieldErrors []model.FieldError

func (fe *fieldErrors) add(field, message string) {
	*fe = append(*fe, model.FieldError{Field: field, Message: message})
}

// required checks that value is non-blank and within max runes.
func (fe *fieldErrors) required(field, value string, max int) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		fe.add(field, "is required")
		return
	}
	fe.maxLength(field, trimmed, max)
}

func (fe *fieldErrors) maxLength(field, value string, max int) {
	if utf8.RuneCountInString(value) > max {
		fe.add(field, fmt.Sprintf("is too long (max %d characters)", max))
	}
}

func (fe fieldErrors) err() error {
	if len(fe) == 0 {
		return nil
	}
	return &model.ValidationError{Errors: fe}
}
