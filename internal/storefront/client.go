package storefront

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/guonaihong/gout"
	"github.com/pkg/errors"
	"github.com/stylehub/stylehub/internal/domain"
)

// ErrNotFound is returned when the API reports a product as absent
var ErrNotFound = errors.New("product not found")

// APIError is a non-success reply of the catalog API
type APIError struct {
	Status int
	Code   string
	Msg    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("catalog api %d %s: %s", e.Status, e.Code, e.Msg)
}

type envelope[T any] struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
	Data T      `json:"data"`
}

// Client reads the public catalog endpoints
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient talks to the API rooted at baseURL, e.g. http://localhost:8080
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Products fetches every active product
func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	var env envelope[[]domain.Product]
	if err := c.get(ctx, "/api/products", &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// Featured fetches the featured strip
func (c *Client) Featured(ctx context.Context) ([]domain.Product, error) {
	var env envelope[[]domain.Product]
	if err := c.get(ctx, "/api/products/featured", &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// Product fetches one active product
func (c *Client) Product(ctx context.Context, id int64) (domain.Product, error) {
	var env envelope[domain.Product]
	if err := c.get(ctx, fmt.Sprintf("/api/products/%d", id), &env); err != nil {
		return domain.Product{}, err
	}
	return env.Data, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	var status int
	var failure struct {
		Code string `json:"code"`
		Msg  string `json:"msg"`
	}
	raw := ""
	err := gout.New(c.http).
		GET(c.baseURL + path).
		WithContext(ctx).
		BindBody(&raw).
		Code(&status).
		Do()
	if err != nil {
		return errors.Wrapf(err, "GET %s", path)
	}
	if status != http.StatusOK {
		_ = json.UnmarshalFromString(raw, &failure)
		if status == http.StatusNotFound {
			return ErrNotFound
		}
		return &APIError{Status: status, Code: failure.Code, Msg: failure.Msg}
	}
	if err := json.UnmarshalFromString(raw, out); err != nil {
		return errors.Wrapf(err, "decode %s", path)
	}
	return nil
}
