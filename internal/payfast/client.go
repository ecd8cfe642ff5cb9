package payfast

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const validatePath = "/eng/query/validate"

// Client performs the server-to-server re-validation callback against the
// gateway. PayFast echoes the literal string VALID for a genuine
// notification; anything else (including network failure) is a validation
// failure.
type Client struct {
	host       string
	httpClient *http.Client
	log        *zap.Logger
}

func NewClient(host string, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		host: host,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log.With(zap.String("client", "payfast")),
	}
}

// Validate posts the full notification back to the gateway's confirmation
// endpoint as a form-encoded body over TLS.
func (c *Client) Validate(ctx context.Context, n Notification) error {
	form := url.Values{}
	for key, value := range n {
		form.Set(key, value)
	}

	endpoint := fmt.Sprintf("https://%s%s", c.host, validatePath)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build validation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("PayFast validation request failed", zap.Error(err), zap.String("host", c.host))
		return fmt.Errorf("payfast validation request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read validation response: %w", err)
	}

	answer := strings.TrimSpace(string(body))

	c.log.Debug("PayFast validation response",
		zap.Int("status_code", resp.StatusCode),
		zap.String("response", answer),
	)

	if answer != "VALID" {
		return fmt.Errorf("payfast validation answered %q", answer)
	}

	return nil
}
