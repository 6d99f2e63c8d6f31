package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	testCases := []struct {
		title         string
		content       string
		expected      *Config
		shouldBeError bool
	}{
		{
			title:   "JSON",
			content: `{"default_options": ["--form", "--follow"], "implicit_content_type": "form"}`,
			expected: &Config{
				DefaultOptions:      []string{"--form", "--follow"},
				ImplicitContentType: "form",
			},
		},
		{
			title:   "YAML",
			content: "default_options:\n  - --verbose\n",
			expected: &Config{
				DefaultOptions:      []string{"--verbose"},
				ImplicitContentType: "json",
			},
		},
		{
			title:         "Invalid implicit content type",
			content:       `{"implicit_content_type": "xml"}`,
			shouldBeError: true,
		},
		{
			title:         "Malformed",
			content:       `{"default_options": `,
			shouldBeError: true,
		},
	}
	for _, tt := range testCases {
		t.Run(tt.title, func(t *testing.T) {
			// Setup
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, Filename), []byte(tt.content), 0o600))

			// Exercise
			c, err := Load(dir)

			// Verify
			if tt.shouldBeError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, c)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	c, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), c)
}

func TestDir_FromEnvironment(t *testing.T) {
	t.Setenv(ConfigDirEnv, "/tmp/ht-config")
	dir, err := Dir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/ht-config", dir)
}
