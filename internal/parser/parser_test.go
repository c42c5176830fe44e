package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrontmatter_AndBody(t *testing.T) {
	fm, body := Frontmatter([]byte("---\ntitle: Hello\ntags:\n  - daily\n---\n# Heading\nBody text.\n"))
	assert.Equal(t, "Hello", fm["title"])
	assert.Equal(t, "# Heading\nBody text.\n", body)
}

func TestFrontmatter_InvalidYAMLFallback(t *testing.T) {
	input := "---\n: invalid: yaml: {{{\n---\nBody\n"
	fm, body := Frontmatter([]byte(input))
	assert.Nil(t, fm, "frontmatter on invalid YAML")
	assert.Equal(t, input, body)
}

func TestFrontmatter_Unclosed(t *testing.T) {
	fm, _ := Frontmatter([]byte("---\ntitle: x\nno end"))
	assert.Nil(t, fm)
}

func TestTitle(t *testing.T) {
	cases := []struct {
		name string
		path string
		data string
		want string
	}{
		{"frontmatter over h1", "a.md", "---\ntitle: FM Title\n---\n# H1 Title\n", "FM Title"},
		{"h1 fallback", "a.md", "some text\n# My Heading\nmore", "My Heading"},
		{"file name fallback", "Daily/2024-03-15-Friday.md", "just text", "2024-03-15-Friday"},
		{"empty frontmatter title", "Home.md", "---\ntitle: \"\"\n---\nbody", "Home"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Title(tc.path, []byte(tc.data)))
		})
	}
}
