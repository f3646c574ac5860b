package handler

import (
	"net/http"

	"github.com/AlexZinkM/yield-agent/internal/agent"
	"github.com/AlexZinkM/yield-agent/internal/model"
)

// WalletHandler serves the wallet endpoints
type WalletHandler struct {
	wallets agent.WalletOperations
}

// NewWalletHandler creates a new WalletHandler
func NewWalletHandler(wallets agent.WalletOperations) *WalletHandler {
	return &WalletHandler{wallets: wallets}
}

// Create handles POST /wallet/create
// @Summary      Create wallet
// @Description  Creates a custodial wallet for the user address, or returns the existing one with created=false
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.WalletRequest  true  "User address"
// @Success      200      {object}  model.WalletResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      409      {object}  model.ErrorResponse
// @Failure      502      {object}  model.ErrorResponse
// @Failure      500      {object}  model.ErrorResponse
// @Router       /wallet/create [post]
func (h *WalletHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req model.WalletRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.wallets.Create(r.Context(), req.UserAddress)
	if err != nil {
		writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Lookup handles GET /wallet
// @Summary      Get wallet
// @Description  Returns the wallet registered for the user address
// @Tags         wallet
// @Produce      json
// @Param        user_address  query     string  true  "User address"
// @Success      200           {object}  model.WalletResponse
// @Failure      400           {object}  model.ErrorResponse
// @Failure      404           {object}  model.ErrorResponse
// @Router       /wallet [get]
func (h *WalletHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	resp, err := h.wallets.Lookup(r.Context(), r.URL.Query().Get("user_address"))
	if err != nil {
		writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Fund handles POST /wallet/fund
// @Summary      Request faucet funds
// @Description  Requests testnet funds for the user's wallet, once per cooldown period
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.FundRequest  true  "Fund request"
// @Success      200      {object}  model.TxResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      404      {object}  model.ErrorResponse
// @Failure      502      {object}  model.ErrorResponse
// @Router       /wallet/fund [post]
func (h *WalletHandler) Fund(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req model.FundRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.wallets.Fund(r.Context(), req)
	if err != nil {
		writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Mint handles POST /wallet/mint
// @Summary      Mint asset
// @Description  Mints an amount of an asset into the user's wallet
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.MintRequest  true  "Mint request"
// @Success      200      {object}  model.TxResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      404      {object}  model.ErrorResponse
// @Failure      502      {object}  model.ErrorResponse
// @Router       /wallet/mint [post]
func (h *WalletHandler) Mint(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req model.MintRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.wallets.Mint(r.Context(), req)
	if err != nil {
		writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Swap handles POST /wallet/swap
// @Summary      Swap tokens
// @Description  Swaps an amount of token_in for token_out from the user's wallet
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.SwapRequest  true  "Swap request"
// @Success      200      {object}  model.TxResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      404      {object}  model.ErrorResponse
// @Failure      502      {object}  model.ErrorResponse
// @Router       /wallet/swap [post]
func (h *WalletHandler) Swap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req model.SwapRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.wallets.Swap(r.Context(), req)
	if err != nil {
		writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Stake handles POST /wallet/stake
// @Summary      Stake asset
// @Description  Stakes an amount of an asset from the user's wallet into a protocol
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.StakeRequest  true  "Stake request"
// @Success      200      {object}  model.TxResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      404      {object}  model.ErrorResponse
// @Failure      502      {object}  model.ErrorResponse
// @Router       /wallet/stake [post]
func (h *WalletHandler) Stake(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req model.StakeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.wallets.Stake(r.Context(), req)
	if err != nil {
		writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Balance handles GET /wallet/balance
// @Summary      Get wallet balance
// @Description  Gets the balance of an asset held by the user's wallet, with its USD value when a price is known
// @Tags         wallet
// @Produce      json
// @Param        user_address  query     string  true   "User address"
// @Param        asset_id      query     string  false  "Asset id, defaults to the native asset"
// @Success      200           {object}  model.BalanceResponse
// @Failure      400           {object}  model.ErrorResponse
// @Failure      404           {object}  model.ErrorResponse
// @Failure      502           {object}  model.ErrorResponse
// @Router       /wallet/balance [get]
func (h *WalletHandler) Balance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	q := r.URL.Query()
	resp, err := h.wallets.Balance(r.Context(), q.Get("user_address"), q.Get("asset_id"))
	if err != nil {
		writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
