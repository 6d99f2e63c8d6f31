package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	testCases := []struct {
		title    string
		input    string
		expected []token
	}{
		{
			title:    "No escapes",
			input:    "foo=bar",
			expected: []token{{text: "foo=bar"}},
		},
		{
			title: "Escaped separator and backslash",
			input: `foo\=bar\\baz`,
			expected: []token{
				{text: "foo"},
				{escaped: true, text: "="},
				{text: "bar"},
				{escaped: true, text: `\`},
				{text: "baz"},
			},
		},
		{
			title:    "Escape of an ordinary character is kept",
			input:    `a\nb`,
			expected: []token{{text: `a\nb`}},
		},
		{
			title:    "Trailing backslash is kept",
			input:    `abc\`,
			expected: []token{{text: `abc\`}},
		},
		{
			title:    "Empty",
			input:    "",
			expected: []token{{text: ""}},
		},
	}
	for _, tt := range testCases {
		t.Run(tt.title, func(t *testing.T) {
			actual := tokenize(tt.input, `\=:@`)
			assert.Equal(t, tt.expected, actual)
		})
	}
}
