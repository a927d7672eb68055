package catalog

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	storeerrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validCatalog = `[
  {"name":"Waffle with Berries","category":"Waffle","price":6.5,
   "image":{"thumbnail":"t.jpg","mobile":"m.jpg","tablet":"tb.jpg","desktop":"d.jpg"}},
  {"name":"Classic Tiramisu","category":"Tiramisu","price":5.50,
   "image":{"thumbnail":"t2.jpg","mobile":"m2.jpg","tablet":"tb2.jpg","desktop":"d2.jpg"}}
]`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func Test_Loader_Load(t *testing.T) {
	testCases := []struct {
		name        string
		content     string
		expectCount int
		expectError error
	}{
		{name: "Success - valid catalog", content: validCatalog, expectCount: 2},
		{name: "Success - empty catalog", content: `[]`, expectCount: 0},
		{name: "Error - malformed json", content: `[{"name":`, expectError: storeerrors.ErrInvalidCatalog},
		{name: "Error - not an array", content: `{"name":"x"}`, expectError: storeerrors.ErrInvalidCatalog},
		{name: "Error - trailing data", content: validCatalog + ` {"oops"`, expectError: storeerrors.ErrInvalidCatalog},
		{name: "Error - second array", content: validCatalog + `[]`, expectError: storeerrors.ErrInvalidCatalog},
		{name: "Success - trailing whitespace", content: validCatalog + "\n\n", expectCount: 2},
		{
			name:        "Error - missing name",
			content:     `[{"category":"c","price":1,"image":{"thumbnail":"t","mobile":"m","tablet":"tb","desktop":"d"}}]`,
			expectError: storeerrors.ErrInvalidCatalog,
		},
		{
			name:        "Error - negative price",
			content:     `[{"name":"n","category":"c","price":-1,"image":{"thumbnail":"t","mobile":"m","tablet":"tb","desktop":"d"}}]`,
			expectError: storeerrors.ErrInvalidCatalog,
		},
		{
			name:        "Error - missing image variant",
			content:     `[{"name":"n","category":"c","price":1,"image":{"thumbnail":"t","mobile":"m","tablet":"tb"}}]`,
			expectError: storeerrors.ErrInvalidCatalog,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			loader := NewLoader(nil, testLogger())
			path := writeFile(t, tc.content)
			// when
			products, err := loader.Load(context.Background(), path)
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, products)
				return
			}
			require.NoError(t, err)
			assert.Len(t, products, tc.expectCount)
		})
	}
}

func Test_Loader_LoadFields(t *testing.T) {
	// given
	loader := NewLoader(nil, testLogger())
	path := writeFile(t, validCatalog)
	// when
	products, err := loader.Load(context.Background(), path)
	// then
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, 1, products[1].ID)
	assert.Equal(t, "Classic Tiramisu", products[1].Name)
	assert.Equal(t, "Tiramisu", products[1].Category)
	assert.Equal(t, "5.50", products[1].Price.StringFixed(2))
	assert.Equal(t, Image{Thumbnail: "t2.jpg", Mobile: "m2.jpg", Tablet: "tb2.jpg", Desktop: "d2.jpg"}, products[1].Image)
}

func Test_Loader_MissingFile(t *testing.T) {
	loader := NewLoader(nil, testLogger())

	_, err := loader.Load(context.Background(), filepath.Join(t.TempDir(), "missing.json"))

	assert.ErrorIs(t, err, storeerrors.ErrCatalogUnavailable)
}

func Test_Loader_HTTP(t *testing.T) {
	testCases := []struct {
		name        string
		handler     http.HandlerFunc
		expectCount int
		expectError error
	}{
		{
			name: "Success - served catalog",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = io.WriteString(w, validCatalog)
			},
			expectCount: 2,
		},
		{
			name: "Error - server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			expectError: storeerrors.ErrCatalogUnavailable,
		},
		{
			name: "Error - garbage body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, "<html></html>")
			},
			expectError: storeerrors.ErrInvalidCatalog,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()
			loader := NewLoader(srv.Client(), testLogger())
			// when
			products, err := loader.Load(context.Background(), srv.URL+"/data.json")
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				return
			}
			require.NoError(t, err)
			assert.Len(t, products, tc.expectCount)
		})
	}
}

func Test_Loader_RejectsOversizedSource(t *testing.T) {
	// given
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, validCatalog)
	}))
	defer srv.Close()
	loader := NewLoader(srv.Client(), testLogger())
	loader.maxBytes = int64(len(validCatalog) - 1)
	// when
	products, err := loader.Load(context.Background(), srv.URL)
	// then
	assert.ErrorIs(t, err, storeerrors.ErrInvalidCatalog)
	assert.Nil(t, products)

	// given
	loader.maxBytes = int64(len(validCatalog))
	// when
	products, err = loader.Load(context.Background(), srv.URL)
	// then
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func Test_Loader_LoadStoreFallsBackToEmpty(t *testing.T) {
	// given
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()
	loader := NewLoader(srv.Client(), testLogger())
	// when
	store, err := loader.LoadStore(context.Background(), srv.URL, 50*time.Millisecond)
	// then
	assert.ErrorIs(t, err, storeerrors.ErrCatalogUnavailable)
	require.NotNil(t, store)
	assert.Equal(t, 0, store.Len())
}
