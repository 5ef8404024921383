package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	shared "github.com/NordCoder/hostwatch/internal/config/shared"
	"github.com/NordCoder/hostwatch/internal/domain/notification"
)

var (
	ErrNoURL  = errors.New("webhook url is empty")
	ErrStatus = errors.New("webhook rejected message")
)

var _ notification.Sender = (*Client)(nil)

type payload struct {
	Content string `json:"content"`
}

// Client posts {"content": ...} bodies to a chat webhook (Discord and compatibles).
type Client struct {
	c   *http.Client
	cfg shared.Webhook
	log *zap.Logger
}

func New(cfg shared.Webhook) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          4,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &Client{
		c: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(transport),
		},
		cfg: cfg,
		log: zap.L().With(zap.String("component", "webhook")),
	}
}

func (cl *Client) WithLogger(l *zap.Logger) *Client {
	if l == nil {
		return cl
	}
	cp := *cl
	cp.log = l.With(zap.String("component", "webhook"))
	return &cp
}

// HTTPClient exposes the underlying client, tests swap its transport.
func (cl *Client) HTTPClient() *http.Client { return cl.c }

// Send returns nil when the request completed. With StrictStatus a non-2xx
// answer is reported as ErrStatus; without it any response counts as delivered.
func (cl *Client) Send(ctx context.Context, content string) error {
	if cl.cfg.URL == "" {
		return ErrNoURL
	}
	body, err := json.Marshal(payload{Content: content})
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cl.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if cl.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cl.cfg.UserAgent)
	}

	start := time.Now()
	resp, err := cl.c.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

	cl.log.Debug("webhook answered",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)
	if cl.cfg.StrictStatus && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		return fmt.Errorf("%w: status %d: %s", ErrStatus, resp.StatusCode, bytes.TrimSpace(snippet))
	}
	return nil
}
