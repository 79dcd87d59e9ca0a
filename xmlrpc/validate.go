package xmlrpc

import (
	"fmt"
	"unicode/utf8"

	apierrors "github.com/olgasafonova/dokuwiki-tools/internal/errors"
)

// isXMLChar reports whether r is in the XML 1.0 Char production.
func isXMLChar(r rune) bool {
	switch {
	case r == 0x09 || r == 0x0A || r == 0x0D:
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= utf8.MaxRune:
		return true
	}
	return false
}

// CheckText returns a ValidationError naming field when s is not valid UTF-8
// or holds a character XML 1.0 cannot carry.
func CheckText(field, s string) error {
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			return apierrors.NewValidationError(field, "",
				fmt.Sprintf("invalid UTF-8 byte 0x%02X at offset %d", s[i], i))
		}
		if !isXMLChar(r) {
			return apierrors.NewValidationError(field, "",
				fmt.Sprintf("character %U at offset %d is not allowed in XML", r, i))
		}
		i += size
	}
	return nil
}

// Validate checks every element name and text in doc, so that Serialize
// yields well-formed XML.
func Validate(doc *Node) error {
	if doc == nil {
		return nil
	}
	if err := CheckText(doc.Name, doc.Text); err != nil {
		return err
	}
	for _, c := range doc.Children {
		if err := Validate(c); err != nil {
			return err
		}
	}
	return nil
}
