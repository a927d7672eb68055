package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"reflect"
	"strings"
	"time"

	storeerrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// FallbackMessage is shown in place of the product grid when the catalog could not be loaded.
const FallbackMessage = "We couldn't load the products. Please try again later."

// MaxCatalogBytes caps how much of a catalog source is read.
const MaxCatalogBytes = 8 << 20

// record is the wire shape of one catalog entry.
type record struct {
	Name     string          `json:"name" validate:"required"`
	Category string          `json:"category" validate:"required"`
	Price    decimal.Decimal `json:"price" validate:"gte=0"`
	Image    Image           `json:"image"`
}

// Loader reads the catalog once from a file path or an http(s) URL.
type Loader struct {
	httpClient *http.Client
	validate   *validator.Validate
	logger     *slog.Logger
	maxBytes   int64
}

// NewLoader creates a Loader. A nil client means http.DefaultClient.
func NewLoader(client *http.Client, logger *slog.Logger) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	validate := validator.New()
	// decimal.Decimal is validated through its float value so that numeric tags apply.
	validate.RegisterCustomTypeFunc(func(v reflect.Value) any {
		d, ok := v.Interface().(decimal.Decimal)
		if !ok {
			return nil
		}
		f, _ := d.Float64()
		return f
	}, decimal.Decimal{})
	return &Loader{
		httpClient: client,
		validate:   validate,
		logger:     logger.With("component", "catalog"),
		maxBytes:   MaxCatalogBytes,
	}
}

// Load fetches, decodes and validates the catalog at source.
// The returned error wraps ErrCatalogUnavailable for fetch failures and ErrInvalidCatalog for bad data.
func (l *Loader) Load(ctx context.Context, source string) ([]Product, error) {
	l.logger.InfoContext(ctx, "Loading catalog", "source", source)
	body, err := l.open(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storeerrors.ErrCatalogUnavailable, err)
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, l.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read: %w", storeerrors.ErrCatalogUnavailable, err)
	}
	if int64(len(data)) > l.maxBytes {
		return nil, fmt.Errorf("%w: larger than %d bytes", storeerrors.ErrInvalidCatalog, l.maxBytes)
	}

	var records []record
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", storeerrors.ErrInvalidCatalog, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after catalog array", storeerrors.ErrInvalidCatalog)
	}

	products := make([]Product, len(records))
	for i, rec := range records {
		if err := l.validate.Struct(rec); err != nil {
			var validationErrors validator.ValidationErrors
			if errors.As(err, &validationErrors) {
				fields := make([]string, 0, len(validationErrors))
				for _, fieldErr := range validationErrors {
					fields = append(fields, fieldErr.Namespace()+" failed on rule: "+fieldErr.Tag())
				}
				return nil, fmt.Errorf("%w: record %d: %s", storeerrors.ErrInvalidCatalog, i, strings.Join(fields, "; "))
			}
			return nil, fmt.Errorf("%w: record %d: %w", storeerrors.ErrInvalidCatalog, i, err)
		}
		products[i] = Product{
			ID:       i,
			Name:     rec.Name,
			Category: rec.Category,
			Price:    rec.Price,
			Image:    rec.Image,
		}
	}
	l.logger.InfoContext(ctx, "Catalog loaded", "count", len(products))
	return products, nil
}

// LoadStore loads the catalog and wraps it in a Store.
// On failure it returns an empty Store together with the error, so the storefront can still start.
func (l *Loader) LoadStore(ctx context.Context, source string, timeout time.Duration) (Store, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	products, err := l.Load(ctx, source)
	if err != nil {
		return NewInMemoryStore(nil), err
	}
	return NewInMemoryStore(products), nil
}

func (l *Loader) open(ctx context.Context, source string) (io.ReadCloser, error) {
	if !isRemote(source) {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", source, err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", source, err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		_ = resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: status %d: %s", source, resp.StatusCode, string(body))
	}
	return resp.Body, nil
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
