package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeString(t *testing.T) {
	assert.Equal(t, "Gem Explorer Day Tour", NormalizeString("  Gem   Explorer\tDay Tour \n"))
	assert.Equal(t, "", NormalizeString(" \t "))
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "line one\nline two", NormalizeText("\r\n line one\r\nline two  "))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "nimal@example.com", NormalizeEmail("  Nimal@Example.COM "))
}

func TestNormalizePhone(t *testing.T) {
	tests := map[string]string{
		"+94 77 123 4567":  "+94771234567",
		"(077) 123-4567":   "0771234567",
		"  ":               "",
		"0094+77":          "009477",
		" +1 (555) 010 99": "+155501099",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizePhone(in), in)
	}
}
