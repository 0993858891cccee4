package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/maisonvelaire/storefront-backend/pkg/config"
	pkgerrors "github.com/maisonvelaire/storefront-backend/pkg/errors"
	"github.com/maisonvelaire/storefront-backend/pkg/logger"
	"github.com/maisonvelaire/storefront-backend/pkg/metrics"
	"github.com/maisonvelaire/storefront-backend/pkg/types"
)

type tokenCtxKey struct{}

// WithToken stashes the storefront bearer token on the context; the client
// forwards it to the backend when present.
func WithToken(ctx context.Context, token string) context.Context {
	token = strings.TrimSpace(token)
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, tokenCtxKey{}, token)
}

func tokenFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if token, ok := ctx.Value(tokenCtxKey{}).(string); ok {
		return token
	}
	return ""
}

// Client talks to the commerce backend that owns catalog, order, and payment
// truth. Catalog reads are retried; order writes go through a circuit breaker
// and are never retried here (the backend call is the authoritative boundary,
// and a blind retry of a write risks duplicate orders).
type Client struct {
	baseURL      string
	httpClient   *http.Client
	maxRetries   int
	retryWaitMin time.Duration
	retryWaitMax time.Duration
	breaker      *gobreaker.CircuitBreaker[*http.Response]
	logger       *logger.Logger
	metrics      *metrics.StorefrontMetrics
}

// NewClient validates the base URL and builds the backend client.
func NewClient(cfg config.BackendConfig, logg *logger.Logger, m *metrics.StorefrontMetrics) (*Client, error) {
	if logg == nil {
		return nil, fmt.Errorf("backend logger is required")
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("backend base url is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("parsing backend base url: %w", err)
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
	}

	breaker := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        "commerce-backend",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.5
		},
	})

	return &Client{
		baseURL: base,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		maxRetries:   cfg.MaxRetries,
		retryWaitMin: cfg.RetryWaitMin,
		retryWaitMax: cfg.RetryWaitMax,
		breaker:      breaker,
		logger:       logg,
		metrics:      m,
	}, nil
}

// ListProducts fetches the catalog, optionally filtered by category slug.
func (c *Client) ListProducts(ctx context.Context, category string) ([]types.Product, error) {
	path := "/api/products"
	if category = strings.TrimSpace(category); category != "" {
		path += "?category=" + url.QueryEscape(category)
	}
	var products []types.Product
	if err := c.getJSON(ctx, "list_products", path, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct fetches one catalog record by id.
func (c *Client) GetProduct(ctx context.Context, id string) (*types.Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	var product types.Product
	if err := c.getJSON(ctx, "get_product", "/api/products/"+url.PathEscape(id), &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Category is a catalog grouping owned by the backend.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ListCategories fetches the category list.
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := c.getJSON(ctx, "list_categories", "/api/categories", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// ListColors fetches all color variants.
func (c *Client) ListColors(ctx context.Context) ([]types.Color, error) {
	var colors []types.Color
	if err := c.getJSON(ctx, "list_colors", "/api/colors", &colors); err != nil {
		return nil, err
	}
	return colors, nil
}

// OrderItem is one order line sent to the backend. Only id and quantity go
// over the wire; the backend reprices from its own catalog.
type OrderItem struct {
	ProductID       string  `json:"productId"`
	SelectedColorID *string `json:"selectedColorId,omitempty"`
	Quantity        int     `json:"quantity"`
}

// CreateOrderInput is the order-creation payload.
type CreateOrderInput struct {
	CustomerEmail   string                `json:"customerEmail"`
	Items           []OrderItem           `json:"items"`
	ShippingAddress types.ShippingAddress `json:"shippingAddress"`
	Payment         string                `json:"payment"`
}

// Order is the backend's view of a created order.
type Order struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	// AmountMinor is the authoritative total in minor currency units.
	AmountMinor int64  `json:"amount"`
	Currency    string `json:"currency"`
}

// CreateOrder persists the order in the backend before any payment begins.
func (c *Client) CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error) {
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	var order Order
	if err := c.postJSON(ctx, "create_order", "/api/orders", input, &order); err != nil {
		return nil, err
	}
	if order.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "backend returned order without id")
	}
	return &order, nil
}

// ConfirmPaymentInput carries the gateway identifiers back for verification.
type ConfirmPaymentInput struct {
	OrderID           string `json:"orderId"`
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

type confirmPaymentResponse struct {
	Verified bool `json:"verified"`
}

// ConfirmPayment asks the backend to verify the payment signature and mark
// the order paid. Never retried: the payment may already be captured.
func (c *Client) ConfirmPayment(ctx context.Context, input ConfirmPaymentInput) error {
	var resp confirmPaymentResponse
	if err := c.postJSON(ctx, "confirm_payment", "/api/razorpay/verify-payment", input, &resp); err != nil {
		return err
	}
	if !resp.Verified {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "backend rejected payment signature")
	}
	return nil
}

// Ping checks whether the backend answers at all. HEAD keeps the
// readiness probe from pulling the full product listing.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/api/products", http.NoBody)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 500 {
		return fmt.Errorf("backend unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

// getJSON performs a retried GET and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, endpoint, path string, out any) error {
	start := time.Now()
	defer func() {
		c.metrics.ObserveBackendDuration(endpoint, time.Since(start))
	}()

	var resp *http.Response
	var err error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := c.retryWaitMin * time.Duration(1<<uint(attempt-1))
			if wait > c.retryWaitMax {
				wait = c.retryWaitMax
			}
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return pkgerrors.Wrap(pkgerrors.CodeDependency, ctx.Err(), "backend request cancelled")
			}
		}

		req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
		if reqErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, reqErr, "build backend request")
		}
		c.decorate(ctx, req)

		resp, err = c.httpClient.Do(req)
		if err != nil {
			if isRetryable(err) && attempt < c.maxRetries {
				continue
			}
			c.logError(ctx, endpoint, err)
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("backend %s failed", endpoint))
		}
		if resp.StatusCode >= 500 && attempt < c.maxRetries {
			drain(resp)
			continue
		}
		break
	}

	return c.decode(ctx, endpoint, resp, out)
}

// postJSON performs a single write through the circuit breaker.
func (c *Client) postJSON(ctx context.Context, endpoint, path string, body, out any) error {
	start := time.Now()
	defer func() {
		c.metrics.ObserveBackendDuration(endpoint, time.Since(start))
	}()

	payload, err := json.Marshal(body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode backend request")
	}

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
		if reqErr != nil {
			return nil, reqErr
		}
		req.Header.Set("Content-Type", "application/json")
		c.decorate(ctx, req)

		resp, doErr := c.httpClient.Do(req)
		if doErr != nil {
			return nil, doErr
		}
		// 5xx trips the breaker; 4xx is the caller's problem.
		if resp.StatusCode >= 500 {
			drain(resp)
			return nil, fmt.Errorf("backend %s: status %d", endpoint, resp.StatusCode)
		}
		return resp, nil
	})
	if err != nil {
		c.logError(ctx, endpoint, err)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("backend %s failed", endpoint))
	}

	return c.decode(ctx, endpoint, resp, out)
}

func (c *Client) decode(ctx context.Context, endpoint string, resp *http.Response, out any) error {
	if resp == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "backend returned no response")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := pkgerrors.New(codeForStatus(resp.StatusCode), fmt.Sprintf("backend %s: status %d", endpoint, resp.StatusCode))
		if len(body) > 0 {
			err = err.WithDetails(map[string]any{"body": string(body)})
		}
		c.logError(ctx, endpoint, err)
		return err
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.logError(ctx, endpoint, err)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("decode backend %s response", endpoint))
	}
	return nil
}

func (c *Client) decorate(ctx context.Context, req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if token := tokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func (c *Client) logError(ctx context.Context, endpoint string, err error) {
	if c.logger == nil {
		return
	}
	ctx = c.logger.WithField(ctx, "endpoint", endpoint)
	c.logger.Error(ctx, "backend call failed", err)
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func drain(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
}

func codeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusUnauthorized:
		return pkgerrors.CodeUnauthorized
	case http.StatusForbidden:
		return pkgerrors.CodeForbidden
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusConflict:
		return pkgerrors.CodeConflict
	case http.StatusTooManyRequests:
		return pkgerrors.CodeRateLimit
	case http.StatusUnprocessableEntity:
		return pkgerrors.CodeStateConflict
	default:
		if status >= 400 && status < 500 {
			return pkgerrors.CodeValidation
		}
		return pkgerrors.CodeDependency
	}
}
