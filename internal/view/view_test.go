package view

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplates_Parse(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	for _, name := range []string{
		"list.html", "detail.html", "form.html", "confirm_delete.html",
		"comment_delete.html", "favorites.html", "login.html", "register.html", "error.html",
	} {
		assert.NotNil(t, tmpl.Lookup(name), name)
	}
}

func TestTemplates_ErrorPage(t *testing.T) {
	tmpl := MustTemplates()

	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, "error.html", map[string]any{
		"Status":  404,
		"Message": "not <found>",
	}))
	assert.Contains(t, buf.String(), "404")
	assert.Contains(t, buf.String(), "not &lt;found&gt;")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate(10, "hello"))
	assert.Equal(t, "hello...", Truncate(6, "hello world"))
	assert.Equal(t, "你好...", Truncate(2, "你好世界"))
}

func TestNaturalTime(t *testing.T) {
	assert.Equal(t, "", NaturalTime(time.Time{}))
	assert.Equal(t, "2 hours ago", NaturalTime(time.Now().Add(-2*time.Hour)))
}

func TestMarkdown(t *testing.T) {
	out := string(Markdown("**bold** and `code`\n\n<script>alert(1)</script>\n\n[link](javascript:alert(1))"))

	assert.Contains(t, out, "<strong>bold</strong>")
	assert.Contains(t, out, "<code>code</code>")
	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "javascript:")
}
