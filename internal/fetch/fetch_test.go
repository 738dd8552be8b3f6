package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html><body><h1>Senior Go Engineer</h1></body></html>"))
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, server.URL, result.URL)
	assert.Contains(t, result.HTML, "<h1>Senior Go Engineer</h1>")
	assert.Contains(t, result.Text, "Senior Go Engineer")
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.False(t, result.Rendered)
}

func TestURL_InvalidURL(t *testing.T) {
	_, err := URL(context.Background(), "not-a-valid-url", nil)
	require.Error(t, err)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "invalid URL")
}

func TestURL_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.Error(t, err)
	assert.NotNil(t, result) // Result is returned even on error
	assert.Equal(t, http.StatusNotFound, result.StatusCode)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "404")
}

func TestBodyText_WithMainElement(t *testing.T) {
	html := `
	<html>
		<body>
			<nav>Navigation</nav>
			<main>
				<h1>Backend Engineer</h1>
				<p>Build and operate our ingestion services.</p>
			</main>
			<footer>Footer</footer>
		</body>
	</html>`

	text, err := BodyText(html)
	require.NoError(t, err)
	assert.Contains(t, text, "Backend Engineer")
	assert.Contains(t, text, "ingestion services")
	assert.NotContains(t, text, "Navigation")
	assert.NotContains(t, text, "Footer")
}

func TestBodyText_FallbackToBody(t *testing.T) {
	html := `
	<html>
		<body>
			<div>Some content here.</div>
		</body>
	</html>`

	text, err := BodyText(html)
	require.NoError(t, err)
	assert.Contains(t, text, "Some content here")
}

func TestShouldRender(t *testing.T) {
	assert.True(t, ShouldRender(""))
	assert.True(t, ShouldRender("Loading..."))
	assert.False(t, ShouldRender(strings.Repeat("job description text ", 40)))
}

func TestPage_SkipsRenderingForFullPages(t *testing.T) {
	body := "<html><body><main>" + strings.Repeat("<p>We are hiring a platform engineer.</p>", 30) + "</main></body></html>"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	result, err := Page(context.Background(), server.URL, nil, false)
	require.NoError(t, err)
	assert.False(t, result.Rendered)
	assert.Contains(t, result.Text, "platform engineer")
}
