package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/knocoin/console/pkg/backend"
	"github.com/knocoin/console/pkg/models"
	"github.com/knocoin/console/pkg/store"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// stubClient implements backend.Client with canned responses.
type stubClient struct {
	bots      []models.BotConfig
	updateErr error
}

func (c *stubClient) Login(ctx context.Context, email, password string) error { return nil }
func (c *stubClient) Register(ctx context.Context, email, password string) error { return nil }

func (c *stubClient) ListBots(ctx context.Context) ([]models.BotConfig, error) {
	return c.bots, nil
}

func (c *stubClient) ListTransactions(ctx context.Context, botID string) ([]models.Transaction, error) {
	return nil, nil
}

func (c *stubClient) CreateBot(ctx context.Context, bot models.BotConfig) (models.BotConfig, error) {
	bot.ID = "1"
	return bot, nil
}

func (c *stubClient) UpdateBot(ctx context.Context, id string, update backend.BotUpdate) (models.BotConfig, error) {
	if c.updateErr != nil {
		return models.BotConfig{}, c.updateErr
	}
	return models.BotConfig{ID: id}, nil
}

func (c *stubClient) DeleteBot(ctx context.Context, id string) error { return nil }
func (c *stubClient) StartBot(ctx context.Context, id string) error { return nil }
func (c *stubClient) StopBot(ctx context.Context, id string) error { return nil }
func (c *stubClient) UpdateWallet(ctx context.Context, id string, wallet models.BotConfig) error {
	return nil
}
func (c *stubClient) UpdateReferencePrice(ctx context.Context, id string, price float64) error {
	for i := range c.bots {
		if c.bots[i].ID == id {
			p := price
			c.bots[i].ReferencePrice = &p
		}
	}
	return nil
}

type noPrice struct{}

func (noPrice) CurrentPrice(ctx context.Context) *float64 { return nil }

func newTestServer(t *testing.T, client backend.Client) *httptest.Server {
	t.Helper()
	st := store.New(client, noPrice{}, testLogger())
	st.Reload(context.Background())
	srv := NewServer(st, testLogger(), "0")
	ts := httptest.NewServer(srv.routes())
	t.Cleanup(ts.Close)
	return ts
}

func seededClient() *stubClient {
	bot := models.BotConfig{
		ID:                "1",
		Name:              "market maker",
		TokenPair:         "KNO/WPOL",
		VolatilityPercent: 10,
		BuyAmount:         0.05,
		SellAmount:        0.05,
		MinSwapAmount:     0.01,
		WalletPrivateKey:  strings.Repeat("ab", 32),
		Status:            models.StatusPaused,
	}
	return &stubClient{bots: []models.BotConfig{bot}}
}

func TestStateEndpoint(t *testing.T) {
	ts := newTestServer(t, seededClient())

	resp, err := http.Get(ts.URL + "/api/state")
	if err != nil {
		t.Fatalf("GET /api/state: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}

	var snap store.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(snap.Bots) != 1 || snap.Bots[0].Name != "market maker" {
		t.Errorf("bots = %+v", snap.Bots)
	}
	if snap.SelectedBot.ID != "1" {
		t.Errorf("selected bot = %+v", snap.SelectedBot)
	}
	if snap.Bots[0].WalletPrivateKey != "" || snap.SelectedBot.WalletPrivateKey != "" {
		t.Error("state response leaked a private key")
	}
}

func TestCreateBot_InvalidPayload(t *testing.T) {
	ts := newTestServer(t, seededClient())

	body := strings.NewReader(`{"name": "", "token_pair": "KNO/WPOL"}`)
	resp, err := http.Post(ts.URL+"/api/bots", "application/json", body)
	if err != nil {
		t.Fatalf("POST /api/bots: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	var errBody struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&errBody); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if errBody.Detail == "" {
		t.Error("error body carries no detail")
	}
}

func TestCreateBot_Valid(t *testing.T) {
	ts := newTestServer(t, seededClient())

	body := strings.NewReader(`{
		"name": "second bot",
		"token_pair": "KNO/WPOL",
		"volatility_percent": 5,
		"buy_amount": 0.05,
		"sell_amount": 0.05,
		"min_swap_amount": 0.01
	}`)
	resp, err := http.Post(ts.URL+"/api/bots", "application/json", body)
	if err != nil {
		t.Fatalf("POST /api/bots: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
}

func TestToggleBot_UnknownID(t *testing.T) {
	ts := newTestServer(t, seededClient())

	resp, err := http.Post(ts.URL+"/api/bots/ghost/toggle", "application/json", nil)
	if err != nil {
		t.Fatalf("POST toggle: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestUpdateBot_RemoteStatusPassesThrough(t *testing.T) {
	client := seededClient()
	client.updateErr = &backend.RemoteError{Status: http.StatusConflict, Message: "bot is running"}
	ts := newTestServer(t, client)

	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/bots/1", strings.NewReader(`{"name": "renamed"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT /api/bots/1: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want 409", resp.StatusCode)
	}
}

func TestDeleteBot(t *testing.T) {
	ts := newTestServer(t, seededClient())

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/bots/1", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE /api/bots/1: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}
}

func TestUpdateReferencePrice_TargetsPathBot(t *testing.T) {
	client := seededClient()
	client.bots = append(client.bots, models.BotConfig{
		ID:                "2",
		Name:              "second bot",
		TokenPair:         "KNO/WPOL",
		VolatilityPercent: 10,
		BuyAmount:         0.05,
		SellAmount:        0.05,
		MinSwapAmount:     0.01,
		Status:            models.StatusPaused,
	})
	ts := newTestServer(t, client)

	// Bot 1 is selected; the update targets bot 2 from the path.
	resp, err := http.Post(ts.URL+"/api/bots/1/select", "application/json", nil)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	resp.Body.Close()

	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/bots/2/reference-price", strings.NewReader(`{"price": 0.009}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT reference-price: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var snap store.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	var target *models.BotConfig
	for i := range snap.Bots {
		if snap.Bots[i].ID == "2" {
			target = &snap.Bots[i]
		}
	}
	if target == nil {
		t.Fatalf("bot 2 missing from snapshot: %+v", snap.Bots)
	}
	if target.ReferencePrice == nil || *target.ReferencePrice != 0.009 {
		t.Errorf("bot 2 reference price = %v, want 0.009", target.ReferencePrice)
	}
}

func TestStatsEndpoint(t *testing.T) {
	ts := newTestServer(t, seededClient())

	resp, err := http.Get(ts.URL + "/api/bots/1/stats")
	if err != nil {
		t.Fatalf("GET stats: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var stats store.BotStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.BotID != "1" || stats.BotName != "market maker" {
		t.Errorf("stats = %+v", stats)
	}
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t, seededClient())

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/api/bots", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if origin := resp.Header.Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Errorf("allow-origin = %q", origin)
	}
}
