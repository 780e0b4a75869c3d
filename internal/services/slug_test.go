package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "simple title", input: "Hello World", expected: "hello-world"},
		{name: "punctuation stripped", input: "Go 1.22: What's New?", expected: "go-122-whats-new"},
		{name: "existing hyphens kept", input: "test-driven development", expected: "test-driven-development"},
		{name: "repeated separators collapse", input: "a  --  b", expected: "a-b"},
		{name: "leading and trailing junk trimmed", input: "  ...Hello...  ", expected: "hello"},
		{name: "only symbols", input: "!!!", expected: ""},
		{name: "empty string", input: "", expected: ""},
		{name: "non-latin characters dropped", input: "日本語 blog", expected: "blog"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.input))
		})
	}
}
