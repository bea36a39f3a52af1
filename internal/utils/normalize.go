// Package utils holds the input normalisers shared by the services.
package utils

import (
	"strings"
	"unicode"
)

// NormalizeString trims s and collapses inner runs of whitespace to a single
// space. Use it for one-line form fields.
func NormalizeString(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeText trims multi-line input and unifies line endings.
func NormalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.TrimSpace(s)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizePhone keeps digits and a leading '+', so "+94 77-123 4567"
// becomes "+94771234567".
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	var b strings.Builder
	b.Grow(len(phone))
	for i, r := range phone {
		switch {
		case i == 0 && r == '+':
			b.WriteRune(r)
		case unicode.IsDigit(r):
			b.WriteRune(r)
		}
	}
	return b.String()
}
