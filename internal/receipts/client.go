package receipts

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/mikakort/IAPserver/pkg/config"
	pkgerrors "github.com/mikakort/IAPserver/pkg/errors"
)

// Client proxies receipt payloads to the external validation endpoint. The
// response is returned verbatim; nothing is reinterpreted.
type Client struct {
	url        string
	httpClient *http.Client
}

func NewClient(cfg config.ReceiptsConfig) (*Client, error) {
	if cfg.ValidationURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "receipt validation url required")
	}
	return &Client{
		url:        cfg.ValidationURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Validate forwards body to the validation endpoint and returns the upstream
// status code and body untouched.
func (c *Client) Validate(ctx context.Context, body []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build validation request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "call validation endpoint")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read validation response")
	}
	return resp.StatusCode, respBody, nil
}
