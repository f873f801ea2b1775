// Package pricefeed reads the external KNO price quote. Price unknown is a
// normal transient state, so failures yield a nil quote rather than an error.
package pricefeed

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Quote is one observation of the external price source.
type Quote struct {
	PriceEUR  float64   `json:"price_eur"`
	PriceUSD  float64   `json:"price_usd"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

type Client struct {
	url        string
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewClient(url string, logger *logrus.Logger) *Client {
	return &Client{
		url:        strings.TrimRight(url, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// CurrentPrice returns the latest EUR quote, or nil when the source is
// unreachable, returns a non-2xx status, or reports no price.
func (c *Client) CurrentPrice(ctx context.Context) *float64 {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		c.logger.WithError(err).Debug("Failed to build price request")
		return nil
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithError(err).Debug("Price source unreachable")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.WithField("status", resp.StatusCode).Debug("Price source returned error status")
		return nil
	}

	var body struct {
		PriceEUR *float64 `json:"price_eur"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.logger.WithError(err).Debug("Failed to decode price response")
		return nil
	}
	return body.PriceEUR
}
