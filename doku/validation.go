package doku

import (
	"strings"
	"unicode"

	apierrors "github.com/olgasafonova/dokuwiki-tools/internal/errors"
)

// ValidateID checks a page or media id. Ids are required and may not
// contain whitespace or control characters.
func ValidateID(field, id string) error {
	if id == "" {
		return apierrors.NewValidationError(field, "", "is required")
	}
	if strings.IndexFunc(id, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	}) >= 0 {
		return apierrors.NewValidationError(field, id, "must not contain whitespace")
	}
	return nil
}
