package strings

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
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "simple title",
			input:    "Legal Aid Basics",
			expected: "legal-aid-basics",
		},
		{
			name:     "punctuation collapses",
			input:    "Know Your Rights: Tenant Edition!",
			expected: "know-your-rights-tenant-edition",
		},
		{
			name:     "leading and trailing separators trimmed",
			input:    "  --Hello World--  ",
			expected: "hello-world",
		},
		{
			name:     "digits kept",
			input:    "Top 10 FAQs 2026",
			expected: "top-10-faqs-2026",
		},
		{
			name:     "already a slug",
			input:    "already-a-slug",
			expected: "already-a-slug",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.input))
		})
	}
}
