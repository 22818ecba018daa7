package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	collectibleregistry "scorpion/contexts/marketplace/collectible-registry"
	registryerrors "scorpion/contexts/marketplace/collectible-registry/domain/errors"
	registryhttp "scorpion/contexts/marketplace/collectible-registry/transport/http"
	markettrading "scorpion/contexts/marketplace/market-trading"
	tradingerrors "scorpion/contexts/marketplace/market-trading/domain/errors"
	tradinghttp "scorpion/contexts/marketplace/market-trading/transport/http"
	tierpricing "scorpion/contexts/marketplace/tier-pricing"
	pricingerrors "scorpion/contexts/marketplace/tier-pricing/domain/errors"
	pricinghttp "scorpion/contexts/marketplace/tier-pricing/transport/http"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "scorpion/internal/platform/httpserver/docs"
)

type Server struct {
	mux      *http.ServeMux
	logger   *slog.Logger
	addr     string
	registry collectibleregistry.Module
	pricing  tierpricing.Module
	trading  markettrading.Module
}

func New(
	registry collectibleregistry.Module,
	pricing tierpricing.Module,
	trading markettrading.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:      http.NewServeMux(),
		logger:   logger,
		addr:     addr,
		registry: registry,
		pricing:  pricing,
		trading:  trading,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /collectibles", s.handleIssueCollectible)
	s.mux.HandleFunc("GET /collectibles/{collectible_id}/metadata", s.handleCollectibleMetadata)
	s.mux.HandleFunc("GET /collectibles/{collectible_id}/holder", s.handleCollectibleHolder)
	s.mux.HandleFunc("POST /collectibles/{collectible_id}/transfer", s.handleCollectibleTransfer)
	s.mux.HandleFunc("POST /admin/registry/base-uri", s.handleSetBaseURI)
	s.mux.HandleFunc("POST /admin/registry/operator", s.handleSetOperator)

	s.mux.HandleFunc("POST /admin/pricing/prices", s.handleSetPrices)
	s.mux.HandleFunc("POST /admin/pricing/ranges", s.handleConfigureRanges)
	s.mux.HandleFunc("GET /pricing/table", s.handlePricingTable)
	s.mux.HandleFunc("GET /pricing/collectibles/{collectible_id}/price", s.handlePriceFor)

	s.mux.HandleFunc("GET /market/items", s.handleFetchActive)
	s.mux.HandleFunc("GET /market/items/{item_id}", s.handleGetItem)
	s.mux.HandleFunc("POST /market/items", s.handleListItem)
	s.mux.HandleFunc("POST /market/items/mint", s.handleMintAndList)
	s.mux.HandleFunc("POST /market/items/{item_id}/purchase", s.handlePurchase)
	s.mux.HandleFunc("POST /admin/market/marketing-wallet", s.handleSetMarketingWallet)
	s.mux.HandleFunc("POST /admin/market/royalty", s.handleSetRoyalty)
	s.mux.HandleFunc("POST /admin/market/payment-token", s.handleSetPaymentToken)
	s.mux.HandleFunc("POST /admin/wallets/{account}/credit", s.handleCreditWallet)
	s.mux.HandleFunc("GET /wallets/{account}/balance", s.handleWalletBalance)
}

func (s *Server) handleIssueCollectible(w http.ResponseWriter, r *http.Request) {
	actor := actorUserID(r)
	if actor == "" {
		writeRegistryError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	var req registryhttp.IssueCollectibleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRegistryError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.registry.Handler.IssueHandler(r.Context(), actor, req)
	if err != nil {
		writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleCollectibleMetadata(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "collectible_id", writeRegistryError)
	if !ok {
		return
	}
	resp, err := s.registry.Handler.MetadataHandler(r.Context(), id)
	if err != nil {
		writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCollectibleHolder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "collectible_id", writeRegistryError)
	if !ok {
		return
	}
	resp, err := s.registry.Handler.HolderHandler(r.Context(), id)
	if err != nil {
		writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCollectibleTransfer(w http.ResponseWriter, r *http.Request) {
	actor := actorUserID(r)
	if actor == "" {
		writeRegistryError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	id, ok := pathID(w, r, "collectible_id", writeRegistryError)
	if !ok {
		return
	}
	var req registryhttp.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRegistryError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.registry.Handler.TransferHandler(r.Context(), actor, id, req)
	if err != nil {
		writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetBaseURI(w http.ResponseWriter, r *http.Request) {
	actor := actorUserID(r)
	var req registryhttp.SetBaseURIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRegistryError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.registry.Handler.SetBaseURIHandler(r.Context(), actor, req)
	if err != nil {
		writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetOperator(w http.ResponseWriter, r *http.Request) {
	actor := actorUserID(r)
	var req registryhttp.SetOperatorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRegistryError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.registry.Handler.SetOperatorHandler(r.Context(), actor, req)
	if err != nil {
		writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetPrices(w http.ResponseWriter, r *http.Request) {
	actor := actorUserID(r)
	var req pricinghttp.SetPricesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writePricingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.pricing.Handler.SetPricesHandler(r.Context(), actor, req)
	if err != nil {
		writePricingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleConfigureRanges(w http.ResponseWriter, r *http.Request) {
	actor := actorUserID(r)
	var req pricinghttp.ConfigureRangesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writePricingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.pricing.Handler.ConfigureRangesHandler(r.Context(), actor, req)
	if err != nil {
		writePricingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePricingTable(w http.ResponseWriter, r *http.Request) {
	resp, err := s.pricing.Handler.TableHandler(r.Context())
	if err != nil {
		writePricingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePriceFor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "collectible_id", writePricingError)
	if !ok {
		return
	}
	resp, err := s.pricing.Handler.PriceForHandler(r.Context(), id)
	if err != nil {
		writePricingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFetchActive(w http.ResponseWriter, r *http.Request) {
	resp, err := s.trading.Handler.FetchActiveHandler(r.Context())
	if err != nil {
		writeTradingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "item_id", writeTradingError)
	if !ok {
		return
	}
	resp, err := s.trading.Handler.GetItemHandler(r.Context(), id)
	if err != nil {
		writeTradingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListItem(w http.ResponseWriter, r *http.Request) {
	actor := actorUserID(r)
	if actor == "" {
		writeTradingError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	var req tradinghttp.ListItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeTradingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.trading.Handler.ListItemHandler(r.Context(), actor, req)
	if err != nil {
		writeTradingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleMintAndList(w http.ResponseWriter, r *http.Request) {
	actor := actorUserID(r)
	if actor == "" {
		writeTradingError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	var req tradinghttp.MintAndListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeTradingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.trading.Handler.MintAndListHandler(r.Context(), idempotencyKey(r), actor, req)
	if err != nil {
		writeTradingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handlePurchase(w http.ResponseWriter, r *http.Request) {
	actor := actorUserID(r)
	if actor == "" {
		writeTradingError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	id, ok := pathID(w, r, "item_id", writeTradingError)
	if !ok {
		return
	}
	var req tradinghttp.PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeTradingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.trading.Handler.PurchaseHandler(r.Context(), idempotencyKey(r), actor, id, req)
	if err != nil {
		writeTradingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetMarketingWallet(w http.ResponseWriter, r *http.Request) {
	actor := actorUserID(r)
	var req tradinghttp.SetMarketingWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeTradingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.trading.Handler.SetMarketingWalletHandler(r.Context(), actor, req)
	if err != nil {
		writeTradingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetRoyalty(w http.ResponseWriter, r *http.Request) {
	actor := actorUserID(r)
	var req tradinghttp.SetRoyaltyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeTradingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.trading.Handler.SetRoyaltyHandler(r.Context(), actor, req)
	if err != nil {
		writeTradingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetPaymentToken(w http.ResponseWriter, r *http.Request) {
	actor := actorUserID(r)
	var req tradinghttp.SetPaymentTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeTradingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.trading.Handler.SetPaymentTokenHandler(r.Context(), actor, req)
	if err != nil {
		writeTradingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreditWallet(w http.ResponseWriter, r *http.Request) {
	actor := actorUserID(r)
	account := strings.TrimSpace(r.PathValue("account"))
	var req tradinghttp.CreditWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeTradingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.trading.Handler.CreditWalletHandler(r.Context(), actor, account, req)
	if err != nil {
		writeTradingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWalletBalance(w http.ResponseWriter, r *http.Request) {
	account := strings.TrimSpace(r.PathValue("account"))
	resp, err := s.trading.Handler.BalanceHandler(r.Context(), account)
	if err != nil {
		writeTradingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeRegistryDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, registryerrors.ErrUnknownItem):
		writeRegistryError(w, http.StatusNotFound, "unknown_item", err.Error())
	case errors.Is(err, registryerrors.ErrNotHolder):
		writeRegistryError(w, http.StatusForbidden, "not_holder", err.Error())
	case errors.Is(err, registryerrors.ErrNotOwner):
		writeRegistryError(w, http.StatusForbidden, "not_owner", err.Error())
	case errors.Is(err, registryerrors.ErrCapacityExceeded):
		writeRegistryError(w, http.StatusConflict, "capacity_exceeded", err.Error())
	case errors.Is(err, registryerrors.ErrInvalidRequest):
		writeRegistryError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeRegistryError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writePricingDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pricingerrors.ErrUnpricedItem):
		writePricingError(w, http.StatusNotFound, "unpriced_item", err.Error())
	case errors.Is(err, pricingerrors.ErrUnpricedTier):
		writePricingError(w, http.StatusConflict, "unpriced_tier", err.Error())
	case errors.Is(err, pricingerrors.ErrInvalidRange):
		writePricingError(w, http.StatusUnprocessableEntity, "invalid_range", err.Error())
	case errors.Is(err, pricingerrors.ErrInvalidPrice):
		writePricingError(w, http.StatusUnprocessableEntity, "invalid_price", err.Error())
	case errors.Is(err, pricingerrors.ErrNotOwner):
		writePricingError(w, http.StatusForbidden, "not_owner", err.Error())
	case errors.Is(err, pricingerrors.ErrInvalidRequest):
		writePricingError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writePricingError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeTradingDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tradingerrors.ErrUnknownListing):
		writeTradingError(w, http.StatusNotFound, "unknown_listing", err.Error())
	case errors.Is(err, registryerrors.ErrUnknownItem):
		writeTradingError(w, http.StatusNotFound, "unknown_item", err.Error())
	case errors.Is(err, pricingerrors.ErrUnpricedItem):
		writeTradingError(w, http.StatusNotFound, "unpriced_item", err.Error())
	case errors.Is(err, tradingerrors.ErrAlreadySold):
		writeTradingError(w, http.StatusConflict, "already_sold", err.Error())
	case errors.Is(err, tradingerrors.ErrSettlementInProgress):
		writeTradingError(w, http.StatusConflict, "settlement_in_progress", err.Error())
	case errors.Is(err, tradingerrors.ErrInsufficientPayment):
		writeTradingError(w, http.StatusPaymentRequired, "insufficient_payment", err.Error())
	case errors.Is(err, tradingerrors.ErrInsufficientFunds):
		writeTradingError(w, http.StatusPaymentRequired, "insufficient_funds", err.Error())
	case errors.Is(err, tradingerrors.ErrMarketNotConfigured):
		writeTradingError(w, http.StatusConflict, "market_not_configured", err.Error())
	case errors.Is(err, tradingerrors.ErrNotHolder),
		errors.Is(err, registryerrors.ErrNotHolder):
		writeTradingError(w, http.StatusForbidden, "not_holder", err.Error())
	case errors.Is(err, tradingerrors.ErrNotOwner):
		writeTradingError(w, http.StatusForbidden, "not_owner", err.Error())
	case errors.Is(err, tradingerrors.ErrIdempotencyKeyRequired):
		writeTradingError(w, http.StatusBadRequest, "idempotency_key_required", err.Error())
	case errors.Is(err, tradingerrors.ErrIdempotencyConflict):
		writeTradingError(w, http.StatusConflict, "idempotency_conflict", err.Error())
	case errors.Is(err, tradingerrors.ErrInvalidRoyaltyPercent):
		writeTradingError(w, http.StatusUnprocessableEntity, "invalid_royalty_percent", err.Error())
	case errors.Is(err, tradingerrors.ErrInvalidRequest):
		writeTradingError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeTradingError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeRegistryError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, registryhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writePricingError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, pricinghttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeTradingError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, tradinghttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func actorUserID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-User-Id"))
}

func idempotencyKey(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("Idempotency-Key"))
}

func pathID(
	w http.ResponseWriter,
	r *http.Request,
	name string,
	writeError func(http.ResponseWriter, int, string, string),
) (uint64, bool) {
	raw := strings.TrimSpace(r.PathValue(name))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		writeError(w, http.StatusBadRequest, "invalid_"+name, name+" must be a positive integer")
		return 0, false
	}
	return id, true
}
