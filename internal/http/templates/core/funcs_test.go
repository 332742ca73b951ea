package core

import (
	"bytes"
	"html/template"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookms/bookms-admin/internal/domain/catalog"
)

func TestFormatNumber(t *testing.T) {
	tests := map[any]string{
		0:             "0",
		999:           "999",
		1000:          "1,000",
		-1234567:      "-1,234,567",
		int64(100000): "100,000",
		"x":           "x",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatNumber(in), "input %v", in)
	}
}

func TestTimeHelpers(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Empty(t, friendlyTime(nil))
	assert.Empty(t, friendlyTime((*time.Time)(nil)))
	assert.NotEmpty(t, friendlyTime(&ts))
	assert.Contains(t, string(timeTag(ts)), `datetime="2024-01-02T03:04:05Z"`)
	assert.Empty(t, timeTag(time.Time{}))

	recent := time.Now().Add(-5 * time.Minute)
	assert.Equal(t, "5 minutes ago", relativeTime(&recent))
	assert.Empty(t, relativeTime((*time.Time)(nil)))
}

func TestTruncateFunc(t *testing.T) {
	tmpl := template.Must(template.New("t").Funcs(Funcs(Deps{})).Parse(`{{truncate . 8}}`))
	var buf bytes.Buffer
	require.NoError(t, tmpl.Execute(&buf, "The Great Gatsby"))
	assert.Equal(t, "The Gre…", buf.String())
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "badge-success", statusClass(catalog.StatusAvailable))
}

func TestRenderSection(t *testing.T) {
	var tmpl *template.Template
	funcs := Funcs(Deps{
		Template:           &tmpl,
		ContentTemplateFor: func(page string) string { return page + "-content" },
	})
	tmpl = template.Must(template.New("root").Funcs(funcs).Parse(
		`{{define "books-content"}}<p>{{.}}</p>{{end}}{{define "layout"}}{{renderSection "books" .}}{{end}}`))

	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, "layout", "<b>"))
	assert.Equal(t, "<p>&lt;b&gt;</p>", buf.String())
}

func TestRenderSectionUninitialized(t *testing.T) {
	funcs := Funcs(Deps{ContentTemplateFor: func(string) string { return "" }})
	render, ok := funcs["renderSection"].(func(string, any) (template.HTML, error))
	require.True(t, ok)
	_, err := render("books", nil)
	assert.Error(t, err)
}
