package filesystem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFrontmatter(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Frontmatter
		ok      bool
	}{
		{
			name:    "title and list tags",
			content: "---\ntitle: Plan\ntags:\n  - a\n  - b\n---\nbody",
			want:    Frontmatter{Title: "Plan", Tags: []string{"a", "b"}},
			ok:      true,
		},
		{
			name:    "comma separated tags",
			content: "---\ntags: a, b ,\n---\n",
			want:    Frontmatter{Tags: []string{"a", "b"}},
			ok:      true,
		},
		{
			name:    "crlf line endings",
			content: "---\r\ntitle: Windows\r\n---\r\nbody",
			want:    Frontmatter{Title: "Windows"},
			ok:      true,
		},
		{
			name:    "byte order mark",
			content: "\ufeff---\ntitle: BOM\n---\n",
			want:    Frontmatter{Title: "BOM"},
			ok:      true,
		},
		{
			name:    "no frontmatter",
			content: "# Title\nbody",
		},
		{
			name:    "unterminated block",
			content: "---\ntitle: Open\nbody",
		},
		{
			name:    "invalid yaml",
			content: "---\ntitle: [unclosed\n---\n",
		},
		{
			name:    "empty",
			content: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseFrontmatter(tt.content)

			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
