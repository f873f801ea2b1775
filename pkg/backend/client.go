package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/knocoin/console/pkg/models"
)

// Client is the console's view of the trading backend. All trading logic,
// price discovery and on-chain execution live behind it.
type Client interface {
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, email, password string) error
	ListBots(ctx context.Context) ([]models.BotConfig, error)
	CreateBot(ctx context.Context, bot models.BotConfig) (models.BotConfig, error)
	UpdateBot(ctx context.Context, id string, update BotUpdate) (models.BotConfig, error)
	DeleteBot(ctx context.Context, id string) error
	StartBot(ctx context.Context, id string) error
	StopBot(ctx context.Context, id string) error
	ListTransactions(ctx context.Context, botID string) ([]models.Transaction, error)
	UpdateWallet(ctx context.Context, id string, wallet models.BotConfig) error
	UpdateReferencePrice(ctx context.Context, id string, price float64) error
}

// HTTPClient talks to the backend over its REST interface.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	session    *Session
	email      string
	password   string
	logger     *logrus.Logger
}

// NewHTTPClient builds a client against baseURL. Credentials are optional;
// without them requests go out unauthenticated (the session can still be
// primed with a pre-issued token via Session).
func NewHTTPClient(baseURL, email, password string, logger *logrus.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(10), 20),
		session:    NewSession(),
		email:      email,
		password:   password,
		logger:     logger,
	}
}

// Session exposes the bearer-token holder, mainly so callers can prime it.
func (c *HTTPClient) Session() *Session {
	return c.session
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	data, err := c.doRequest(ctx, http.MethodPost, "/auth/login", body, false)
	if err != nil {
		return err
	}

	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return fmt.Errorf("decode login response: %w", err)
	}
	c.session.SetToken(resp.AccessToken)
	return nil
}

func (c *HTTPClient) Register(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	_, err := c.doRequest(ctx, http.MethodPost, "/auth/register", body, false)
	return err
}

func (c *HTTPClient) ListBots(ctx context.Context) ([]models.BotConfig, error) {
	data, err := c.doRequest(ctx, http.MethodGet, "/bots", nil, true)
	if err != nil {
		return nil, err
	}

	var payloads []botPayload
	if err := json.Unmarshal(data, &payloads); err != nil {
		return nil, fmt.Errorf("decode bot list: %w", err)
	}

	bots := make([]models.BotConfig, 0, len(payloads))
	for _, p := range payloads {
		bots = append(bots, botFromWire(p))
	}
	return bots, nil
}

func (c *HTTPClient) CreateBot(ctx context.Context, bot models.BotConfig) (models.BotConfig, error) {
	payload := botToWire(bot)
	payload.ID = 0 // assigned by the backend

	data, err := c.doRequest(ctx, http.MethodPost, "/bots", payload, true)
	if err != nil {
		return models.BotConfig{}, err
	}

	var created botPayload
	if err := json.Unmarshal(data, &created); err != nil {
		return models.BotConfig{}, fmt.Errorf("decode created bot: %w", err)
	}
	return botFromWire(created), nil
}

func (c *HTTPClient) UpdateBot(ctx context.Context, id string, update BotUpdate) (models.BotConfig, error) {
	data, err := c.doRequest(ctx, http.MethodPut, "/bots/"+id, update, true)
	if err != nil {
		return models.BotConfig{}, err
	}

	var updated botPayload
	if err := json.Unmarshal(data, &updated); err != nil {
		return models.BotConfig{}, fmt.Errorf("decode updated bot: %w", err)
	}
	return botFromWire(updated), nil
}

func (c *HTTPClient) DeleteBot(ctx context.Context, id string) error {
	_, err := c.doRequest(ctx, http.MethodDelete, "/bots/"+id, nil, true)
	return err
}

func (c *HTTPClient) StartBot(ctx context.Context, id string) error {
	_, err := c.doRequest(ctx, http.MethodPost, "/bots/"+id+"/start", nil, true)
	return err
}

func (c *HTTPClient) StopBot(ctx context.Context, id string) error {
	_, err := c.doRequest(ctx, http.MethodPost, "/bots/"+id+"/stop", nil, true)
	return err
}

func (c *HTTPClient) ListTransactions(ctx context.Context, botID string) ([]models.Transaction, error) {
	path := "/transactions"
	if botID != "" {
		path = "/bots/" + botID + "/transactions"
	}

	data, err := c.doRequest(ctx, http.MethodGet, path, nil, true)
	if err != nil {
		return nil, err
	}

	var payloads []transactionPayload
	if err := json.Unmarshal(data, &payloads); err != nil {
		return nil, fmt.Errorf("decode transaction list: %w", err)
	}

	txs := make([]models.Transaction, 0, len(payloads))
	for _, p := range payloads {
		txs = append(txs, transactionFromWire(p))
	}
	return txs, nil
}

// UpdateWallet writes the sensitive wallet fields through the dedicated
// endpoint. Callers must not invoke it with an empty private key: the
// backend would overwrite a stored secret with blank.
func (c *HTTPClient) UpdateWallet(ctx context.Context, id string, wallet models.BotConfig) error {
	if wallet.WalletPrivateKey == "" {
		return fmt.Errorf("%w: refusing to send empty private key", models.ErrValidation)
	}

	payload := walletPayload{
		WalletAddress:    wallet.WalletAddress,
		WalletPrivateKey: wallet.WalletPrivateKey,
		RPCEndpoint:      wallet.RPCEndpoint,
		WPOLAddress:      wallet.WPOLAddress,
		KNOAddress:       wallet.KNOAddress,
		RouterAddress:    wallet.RouterAddress,
	}
	_, err := c.doRequest(ctx, http.MethodPut, "/bots/"+id+"/wallet", payload, true)
	return err
}

func (c *HTTPClient) UpdateReferencePrice(ctx context.Context, id string, price float64) error {
	body := map[string]float64{"price": price}
	_, err := c.doRequest(ctx, http.MethodPut, "/bots/"+id+"/reference-price", body, true)
	return err
}

// ensureSession logs in when credentials are configured and the current
// session token is missing or about to expire.
func (c *HTTPClient) ensureSession(ctx context.Context) error {
	if c.session.Valid() || c.email == "" {
		return nil
	}
	return c.Login(ctx, c.email, c.password)
}

func (c *HTTPClient) doRequest(ctx context.Context, method, path string, body interface{}, authed bool) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &NetworkError{Op: method + " " + path, Err: err}
	}

	if authed {
		if err := c.ensureSession(ctx); err != nil {
			c.logger.WithError(err).Warn("Failed to refresh backend session")
		}
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.session.Token(); authed && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: method + " " + path, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RemoteError{
			Status:  resp.StatusCode,
			Message: remoteMessage(data),
		}
	}
	return data, nil
}

// remoteMessage pulls the backend's detail field out of an error body,
// falling back to the raw text.
func remoteMessage(data []byte) string {
	var body struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Detail != "" {
			return body.Detail
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return strings.TrimSpace(string(data))
}
