package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/knocoin/console/pkg/backend"
	"github.com/knocoin/console/pkg/models"
	"github.com/knocoin/console/pkg/store"
)

// Server exposes the store to browser sessions: JSON endpoints for every
// store operation plus a websocket pushing state snapshots.
type Server struct {
	store  *store.Store
	hub    *Hub
	logger *logrus.Logger
	port   string
	http   *http.Server
}

func NewServer(st *store.Store, logger *logrus.Logger, port string) *Server {
	s := &Server{
		store:  st,
		hub:    NewHub(st, logger),
		logger: logger,
		port:   port,
	}
	st.SetOnChange(s.hub.Broadcast)
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/state", s.handleState)
	mux.HandleFunc("/api/bots", s.handleBots)
	mux.HandleFunc("/api/bots/", s.handleBotByID)
	mux.HandleFunc("/api/transactions", s.handleTransactions)
	mux.HandleFunc("/api/ws", s.hub.HandleWS)

	return corsMiddleware(mux)
}

func (s *Server) Start() error {
	s.http = &http.Server{Addr: ":" + s.port, Handler: s.routes()}
	s.logger.Infof("Starting console server on port %s", s.port)
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops the listener and disconnects websocket sessions.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	}
	s.writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, http.StatusOK, s.store.State())
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, http.StatusOK, s.store.Transactions())
}

// createBotRequest carries the editable attributes of a new bot. The
// identifier and server-authoritative fields are assigned by the backend.
type createBotRequest struct {
	Name                 string   `json:"name"`
	TokenPair            string   `json:"token_pair"`
	VolatilityPercent    float64  `json:"volatility_percent"`
	BuyAmount            float64  `json:"buy_amount"`
	SellAmount           float64  `json:"sell_amount"`
	MinSwapAmount        float64  `json:"min_swap_amount"`
	ReferencePrice       *float64 `json:"reference_price"`
	RandomTradesCount    int      `json:"random_trades_count"`
	TradingDurationHours int      `json:"trading_duration_hours"`
	WalletAddress        string   `json:"wallet_address"`
	WalletPrivateKey     string   `json:"wallet_private_key"`
	RPCEndpoint          string   `json:"rpc_endpoint"`
	WPOLAddress          string   `json:"wpol_address"`
	KNOAddress           string   `json:"kno_address"`
	RouterAddress        string   `json:"router_address"`
	QuoterAddress        string   `json:"quoter_address"`
	SlippageTolerance    float64  `json:"slippage_tolerance"`
	GasLimit             int64    `json:"gas_limit"`
	GasPrice             int64    `json:"gas_price"`
}

func (req createBotRequest) toModel() models.BotConfig {
	return models.BotConfig{
		Name:                 req.Name,
		TokenPair:            req.TokenPair,
		VolatilityPercent:    req.VolatilityPercent,
		BuyAmount:            req.BuyAmount,
		SellAmount:           req.SellAmount,
		MinSwapAmount:        req.MinSwapAmount,
		ReferencePrice:       req.ReferencePrice,
		RandomTradesCount:    req.RandomTradesCount,
		TradingDurationHours: req.TradingDurationHours,
		WalletAddress:        req.WalletAddress,
		WalletPrivateKey:     req.WalletPrivateKey,
		RPCEndpoint:          req.RPCEndpoint,
		WPOLAddress:          req.WPOLAddress,
		KNOAddress:           req.KNOAddress,
		RouterAddress:        req.RouterAddress,
		QuoterAddress:        req.QuoterAddress,
		SlippageTolerance:    req.SlippageTolerance,
		GasLimit:             req.GasLimit,
		GasPrice:             req.GasPrice,
		Status:               models.StatusPaused,
	}
}

func (s *Server) handleBots(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.writeJSON(w, http.StatusOK, s.store.Bots())

	case http.MethodPost:
		var req createBotRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := s.store.AddBot(r.Context(), req.toModel()); err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, s.store.Bots())

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleBotByID routes /api/bots/{id} and its sub-resources.
func (s *Server) handleBotByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/bots/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		http.Error(w, "Bot id required", http.StatusBadRequest)
		return
	}

	switch {
	case action == "" && r.Method == http.MethodPut:
		s.handleUpdateBot(w, r, id)
	case action == "" && r.Method == http.MethodDelete:
		s.handleDeleteBot(w, r, id)
	case action == "toggle" && r.Method == http.MethodPost:
		s.handleToggleBot(w, r, id)
	case action == "select" && r.Method == http.MethodPost:
		s.store.SelectBot(id)
		s.writeJSON(w, http.StatusOK, map[string]string{"selected_bot_id": id})
	case action == "reference-price" && r.Method == http.MethodPut:
		s.handleReferencePrice(w, r, id)
	case action == "wallet" && r.Method == http.MethodPut:
		s.handleWallet(w, r, id)
	case action == "stats" && r.Method == http.MethodGet:
		s.handleStats(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleUpdateBot(w http.ResponseWriter, r *http.Request, id string) {
	var update backend.BotUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.store.UpdateBotConfig(r.Context(), id, update); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.store.Bots())
}

func (s *Server) handleDeleteBot(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.store.DeleteBot(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleBot(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.store.ToggleBot(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.store.State())
}

func (s *Server) handleReferencePrice(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Price float64 `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.store.UpdateReferencePrice(r.Context(), id, req.Price); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.store.State())
}

func (s *Server) handleWallet(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		WalletAddress    string `json:"wallet_address"`
		WalletPrivateKey string `json:"wallet_private_key"`
		RPCEndpoint      string `json:"rpc_endpoint"`
		WPOLAddress      string `json:"wpol_address"`
		KNOAddress       string `json:"kno_address"`
		RouterAddress    string `json:"router_address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	wallet := models.BotConfig{
		WalletAddress:    req.WalletAddress,
		WalletPrivateKey: req.WalletPrivateKey,
		RPCEndpoint:      req.RPCEndpoint,
		WPOLAddress:      req.WPOLAddress,
		KNOAddress:       req.KNOAddress,
		RouterAddress:    req.RouterAddress,
	}
	if err := s.store.SaveWalletConfig(r.Context(), id, wallet); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "wallet updated"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request, id string) {
	stats, err := s.store.Stats(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

// writeError maps error kinds onto HTTP statuses: validation failures are
// 400, unknown local ids 404, backend statuses pass through, transport
// failures 502.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var remoteErr *backend.RemoteError
	var netErr *backend.NetworkError
	switch {
	case errors.Is(err, models.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.As(err, &remoteErr):
		status = remoteErr.Status
	case errors.As(err, &netErr):
		status = http.StatusBadGateway
	}

	s.writeJSON(w, status, map[string]string{"detail": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.WithError(err).Error("Failed to encode JSON response")
	}
}
