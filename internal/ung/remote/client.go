// Package remote is the Gateway implementation backed by the hosted
// ung HTTP API. It is a uniform REST wrapper: every response uses the
// {success, data, error} envelope, and every failure feeds the same
// taxonomy as the CLI path.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Andriiklymiuk/ung-sub008/internal/observability/logger"
	"github.com/Andriiklymiuk/ung-sub008/internal/observability/tracing"
	"github.com/Andriiklymiuk/ung-sub008/internal/toolerr"
	"github.com/Andriiklymiuk/ung-sub008/internal/ung/domain"
)

// Config locates the hosted API.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	return c
}

// Client talks to the hosted ung API.
type Client struct {
	cfg  Config
	http *http.Client
	log  *zap.Logger
}

type Params struct {
	fx.In

	Config Config
	Log    *zap.Logger
}

func New(p Params) *Client {
	cfg := p.Config.withDefaults()
	return &Client{
		cfg:  cfg,
		http: tracing.WrapHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		log:  p.Log.Named("gateway.remote"),
	}
}

var _ domain.Gateway = (*Client)(nil)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// do performs one request and decodes the envelope payload into out.
// A nil out discards the payload.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	op := method + " " + path

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return toolerr.Wrap(toolerr.KindValidation, op, err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return toolerr.Wrap(toolerr.KindValidation, op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	c.log.Debug("api request",
		zap.String("op", op),
		zap.String("authorization", logger.MaskAuthorization(req.Header.Get("Authorization"))),
	)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil || isTimeout(err) {
			return toolerr.Wrap(toolerr.KindTimeout, op, err)
		}
		return toolerr.Wrap(toolerr.KindNetwork, op, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return toolerr.Wrap(toolerr.KindParse, op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Success {
		message := env.Error
		if message == "" {
			message = fmt.Sprintf("unexpected status %d", resp.StatusCode)
		}
		return toolerr.New(kindForStatus(resp.StatusCode), op, message)
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return toolerr.Wrap(toolerr.KindParse, op, err)
	}
	return nil
}

func kindForStatus(status int) toolerr.Kind {
	switch {
	case status == http.StatusNotFound:
		return toolerr.KindNotFound
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return toolerr.KindPermissionDenied
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return toolerr.KindValidation
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return toolerr.KindTimeout
	case status >= 500:
		return toolerr.KindNetwork
	default:
		return toolerr.KindExecutionFailed
	}
}

func isTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}

func listQuery(opts domain.ListOptions) string {
	params := url.Values{}
	if opts.Status != "" {
		params.Set("status", opts.Status)
	}
	if opts.ClientName != "" {
		params.Set("client", opts.ClientName)
	}
	if opts.ActiveOnly {
		params.Set("active", "true")
	}
	if len(params) == 0 {
		return ""
	}
	return "?" + params.Encode()
}

func (c *Client) ListInvoices(ctx context.Context, opts domain.ListOptions) ([]domain.Invoice, error) {
	var out []domain.Invoice
	if err := c.do(ctx, http.MethodGet, "/api/invoices"+listQuery(opts), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListClients(ctx context.Context, opts domain.ListOptions) ([]domain.Client, error) {
	var out []domain.Client
	if err := c.do(ctx, http.MethodGet, "/api/clients"+listQuery(opts), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListContracts(ctx context.Context, opts domain.ListOptions) ([]domain.Contract, error) {
	var out []domain.Contract
	if err := c.do(ctx, http.MethodGet, "/api/contracts"+listQuery(opts), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListExpenses(ctx context.Context, opts domain.ListOptions) ([]domain.Expense, error) {
	var out []domain.Expense
	if err := c.do(ctx, http.MethodGet, "/api/expenses"+listQuery(opts), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListSessions(ctx context.Context, opts domain.ListOptions) ([]domain.TrackingSession, error) {
	var out []domain.TrackingSession
	if err := c.do(ctx, http.MethodGet, "/api/sessions"+listQuery(opts), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Dashboard(ctx context.Context) (domain.DashboardMetrics, error) {
	var out domain.DashboardMetrics
	if err := c.do(ctx, http.MethodGet, "/api/dashboard", nil, &out); err != nil {
		return domain.DashboardMetrics{}, err
	}
	return out, nil
}

func (c *Client) ActiveSession(ctx context.Context) (*domain.ActiveSession, error) {
	var out *domain.ActiveSession
	if err := c.do(ctx, http.MethodGet, "/api/tracking/active", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) TodayHours(ctx context.Context) (decimal.Decimal, error) {
	var out struct {
		Hours decimal.Decimal `json:"hours"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/tracking/today", nil, &out); err != nil {
		return decimal.Zero, err
	}
	return out.Hours, nil
}

func (c *Client) Mutate(ctx context.Context, req domain.MutationRequest) (domain.MutationResult, error) {
	var out domain.MutationResult
	if err := c.do(ctx, http.MethodPost, "/api/mutations", req, &out); err != nil {
		return domain.MutationResult{}, err
	}
	return out, nil
}
