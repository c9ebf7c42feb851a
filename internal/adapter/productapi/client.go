package productapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/niksmo/catalog-imgcheck/internal/core/domain"
	"github.com/niksmo/catalog-imgcheck/internal/core/port"
)

var _ port.ProductsFetcher = (*Client)(nil)
var _ port.ImageProber = (*Client)(nil)

const (
	productsPath   = "api/Productos"
	defaultTimeout = 10 * time.Second
	drainLimit     = 4 << 10
)

var (
	ErrInvalidBaseURL = errors.New("invalid base URL")
	ErrNullBody       = errors.New("response body is null")
	ErrTrailingData   = errors.New("trailing data after JSON value")
)

type ClientOpt func(*clientOpts) error

type clientOpts struct {
	baseURL *url.URL
	timeout time.Duration
	hc      *http.Client
}

func BaseURLOpt(raw string) ClientOpt {
	return func(opts *clientOpts) error {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
			return fmt.Errorf("%w: %q", ErrInvalidBaseURL, raw)
		}
		opts.baseURL = u
		return nil
	}
}

// TimeoutOpt sets the ceiling of every single request.
func TimeoutOpt(d time.Duration) ClientOpt {
	return func(opts *clientOpts) error {
		if d <= 0 {
			return errors.New("timeout must be positive")
		}
		opts.timeout = d
		return nil
	}
}

func HTTPClientOpt(hc *http.Client) ClientOpt {
	return func(opts *clientOpts) error {
		if hc == nil {
			return errors.New("http client is nil")
		}
		opts.hc = hc
		return nil
	}
}

// A Client reads products from the catalog API and probes image URLs.
type Client struct {
	baseURL *url.URL
	hc      *http.Client
}

func NewClient(opts ...ClientOpt) (Client, error) {
	const op = "NewClient"

	options := clientOpts{timeout: defaultTimeout}
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return Client{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	if options.baseURL == nil {
		return Client{}, fmt.Errorf("%s: %w: not set", op, ErrInvalidBaseURL)
	}

	hc := &http.Client{}
	if options.hc != nil {
		copied := *options.hc
		hc = &copied
	}
	hc.Timeout = options.timeout

	return Client{baseURL: options.baseURL, hc: hc}, nil
}

// BaseURL returns the API root the client talks to.
func (c Client) BaseURL() string {
	return c.baseURL.String()
}

func (c Client) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	const op = "Client.FetchProducts"

	var ps []product
	if err := c.getJSON(ctx, c.baseURL.JoinPath(productsPath), &ps); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if ps == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrNullBody)
	}
	return toDomain(ps), nil
}

func (c Client) FetchProduct(ctx context.Context, id int) (domain.Product, error) {
	const op = "Client.FetchProduct"

	var p *product
	u := c.baseURL.JoinPath(productsPath, strconv.Itoa(id))
	if err := c.getJSON(ctx, u, &p); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	if p == nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, ErrNullBody)
	}
	return p.toDomain(), nil
}

func (c Client) getJSON(ctx context.Context, u *url.URL, v any) error {
	const op = "Client.getJSON"
	log := slog.With("op", op, "url", u.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.hc.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s: %w", op, ctxErr)
		}
		return fmt.Errorf("%s: %w: %w", op, domain.ErrConnectionFailure, err)
	}
	defer closeBody(res.Body)

	log.Debug("response", "status", res.StatusCode)

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: %w", op, &domain.StatusError{Code: res.StatusCode})
	}

	dec := json.NewDecoder(res.Body)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%s: %w", op, ErrTrailingData)
	}
	return nil
}

func closeBody(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, drainLimit))
	if err := body.Close(); err != nil {
		slog.Warn("failed to close response body", "err", err)
	}
}
