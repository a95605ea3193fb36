package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	"github.com/shopspring/decimal"

	"github.com/mekdi/faction-services/internal/arenasvc/engine"
	"github.com/mekdi/faction-services/internal/arenasvc/models"
	"github.com/mekdi/faction-services/internal/arenasvc/service"
	"github.com/mekdi/faction-services/internal/comm"
)

type Handler struct {
	svc       *service.Arena
	tokenAuth *jwtauth.JWTAuth
}

func NewHandler(svc *service.Arena) *Handler {
	return &Handler{svc: svc}
}

type Response struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error,omitempty"`
}

func (h *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)

	json.NewEncoder(w).Encode(rsp)
}

// errorResponse maps the engine error taxonomy onto HTTP statuses. The
// numeric engine code rides along in Message so game backends can branch on
// it without parsing error text.
func (h *Handler) errorResponse(w http.ResponseWriter, err error) {
	code := engine.CodeOf(err)

	status := http.StatusUnprocessableEntity
	switch code {
	case 0:
		status = http.StatusInternalServerError
	case 1, 26: // NotAdmin, GameNotAuthorized
		status = http.StatusForbidden
	case 10, 22, 32: // not found
		status = http.StatusNotFound
	case 2, 21, 31, 41: // already done
		status = http.StatusConflict
	case 4, 11, 13, 24: // malformed input
		status = http.StatusBadRequest
	case 50, 51, 52: // upstream vault / router / token failures
		status = http.StatusBadGateway
	case 60, 61:
		status = http.StatusInternalServerError
	}

	h.CreateResponse(w, Response{
		Message: "engine error " + strconv.FormatUint(uint64(code), 10),
		Code:    status,
		Error:   err.Error(),
	})
}

func (h *Handler) badRequest(w http.ResponseWriter, msg string) {
	h.CreateResponse(w, Response{Message: msg, Code: http.StatusBadRequest, Error: msg})
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	rsp := Response{
		Message: "arena service is running at port " + os.Getenv("SERVICE_PORT"),
		Code:    200,
		Data:    nil,
	}
	json.NewEncoder(w).Encode(rsp)
}

// ---------------------------------------------------------------------------
// Player endpoints
// ---------------------------------------------------------------------------

func (h *Handler) SelectFactionHandler(w http.ResponseWriter, r *http.Request) {
	var req comm.SelectFactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}
	if req.Address == "" {
		h.badRequest(w, "address is required")
		return
	}

	if err := h.svc.SelectFaction(r.Context(), req.Address, req.FactionID); err != nil {
		h.errorResponse(w, err)
		return
	}
	h.CreateResponse(w, Response{Message: "faction selected", Code: 200, Data: h.svc.PlayerView(req.Address)})
}

func (h *Handler) GetPlayerHandler(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	if address == "" {
		h.badRequest(w, "address is required")
		return
	}
	h.CreateResponse(w, Response{Message: "player", Code: 200, Data: h.svc.PlayerView(address)})
}

// ---------------------------------------------------------------------------
// Epoch endpoints
// ---------------------------------------------------------------------------

func (h *Handler) GetCurrentEpochHandler(w http.ResponseWriter, r *http.Request) {
	epoch := h.svc.Engine().CurrentEpoch()
	h.CreateResponse(w, Response{Message: "current epoch", Code: 200, Data: h.svc.EpochView(epoch)})
}

func (h *Handler) GetEpochHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "epochID"), 10, 32)
	if err != nil {
		h.badRequest(w, "invalid epoch id")
		return
	}
	h.CreateResponse(w, Response{Message: "epoch", Code: 200, Data: h.svc.EpochView(uint32(id))})
}

func (h *Handler) CycleEpochHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.CycleEpoch(r.Context()); err != nil {
		h.errorResponse(w, err)
		return
	}
	epoch := h.svc.Engine().CurrentEpoch()
	h.CreateResponse(w, Response{Message: "epoch cycled", Code: 200, Data: h.svc.EpochView(epoch)})
}

// ---------------------------------------------------------------------------
// Reward endpoints
// ---------------------------------------------------------------------------

func (h *Handler) GetClaimableHandler(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	if address == "" {
		h.badRequest(w, "address is required")
		return
	}
	epoch, err := strconv.ParseUint(r.URL.Query().Get("epoch"), 10, 32)
	if err != nil {
		h.badRequest(w, "invalid epoch")
		return
	}

	amount := h.svc.ClaimableAmount(address, uint32(epoch))
	h.CreateResponse(w, Response{Message: "claimable", Code: 200, Data: comm.ClaimResult{
		Address: address,
		EpochID: uint32(epoch),
		Amount:  models.DecimalFromFixed(amount).String(),
	}})
}

func (h *Handler) ClaimRewardHandler(w http.ResponseWriter, r *http.Request) {
	var req comm.ClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}
	if req.Address == "" {
		h.badRequest(w, "address is required")
		return
	}

	amount, err := h.svc.ClaimReward(r.Context(), req.Address, req.EpochID)
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	h.CreateResponse(w, Response{Message: "reward claimed", Code: 200, Data: comm.ClaimResult{
		Address: req.Address,
		EpochID: req.EpochID,
		Amount:  models.DecimalFromFixed(amount).String(),
	}})
}

// ---------------------------------------------------------------------------
// Game endpoints. These sit behind JWT auth; the calling game backend is
// identified by the game_id claim, never by request payload.
// ---------------------------------------------------------------------------

type startGameRequest struct {
	SessionID    uint32 `json:"session_id"`
	Player1      string `json:"player1"`
	Player2      string `json:"player2"`
	Player1Wager string `json:"player1_wager"`
	Player2Wager string `json:"player2_wager"`
}

func (h *Handler) callerGameID(r *http.Request) (string, bool) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return "", false
	}
	gameID, ok := claims["game_id"].(string)
	return gameID, ok && gameID != ""
}

func parseWager(s string) (int64, bool) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	return models.FixedFromDecimal(d), true
}

func (h *Handler) StartGameHandler(w http.ResponseWriter, r *http.Request) {
	gameID, ok := h.callerGameID(r)
	if !ok {
		h.CreateResponse(w, Response{Message: "missing game_id claim", Code: http.StatusUnauthorized, Error: "missing game_id claim"})
		return
	}

	var req startGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}
	wager1, ok1 := parseWager(req.Player1Wager)
	wager2, ok2 := parseWager(req.Player2Wager)
	if !ok1 || !ok2 {
		h.badRequest(w, "invalid wager amount")
		return
	}

	err := h.svc.StartGame(r.Context(), gameID, req.SessionID, req.Player1, req.Player2, wager1, wager2)
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	h.CreateResponse(w, Response{Message: "session started", Code: 200})
}

type endGameRequest struct {
	SessionID  uint32 `json:"session_id"`
	Player1    string `json:"player1"`
	Player2    string `json:"player2"`
	Player1Won bool   `json:"player1_won"`
}

func (h *Handler) EndGameHandler(w http.ResponseWriter, r *http.Request) {
	gameID, ok := h.callerGameID(r)
	if !ok {
		h.CreateResponse(w, Response{Message: "missing game_id claim", Code: http.StatusUnauthorized, Error: "missing game_id claim"})
		return
	}

	var req endGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}

	err := h.svc.EndGame(r.Context(), gameID, engine.Outcome{
		SessionID:  req.SessionID,
		Player1:    req.Player1,
		Player2:    req.Player2,
		Player1Won: req.Player1Won,
	})
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	h.CreateResponse(w, Response{Message: "session settled", Code: 200})
}

// ---------------------------------------------------------------------------
// Admin endpoints. The caller address travels in the body and the engine
// enforces the admin gate; these routes exist for the ops tooling, which
// signs requests upstream of this service.
// ---------------------------------------------------------------------------

type adminRequest struct {
	Caller    string `json:"caller"`
	GameID    string `json:"game_id,omitempty"`
	NewAdmin  string `json:"new_admin,omitempty"`
	SessionID uint32 `json:"session_id,omitempty"`
}

func (h *Handler) decodeAdmin(w http.ResponseWriter, r *http.Request) (adminRequest, bool) {
	var req adminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid request body")
		return req, false
	}
	if req.Caller == "" {
		h.badRequest(w, "caller is required")
		return req, false
	}
	return req, true
}

func (h *Handler) PauseHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeAdmin(w, r)
	if !ok {
		return
	}
	if err := h.svc.Engine().Pause(req.Caller); err != nil {
		h.errorResponse(w, err)
		return
	}
	h.CreateResponse(w, Response{Message: "paused", Code: 200})
}

func (h *Handler) UnpauseHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeAdmin(w, r)
	if !ok {
		return
	}
	if err := h.svc.Engine().Unpause(req.Caller); err != nil {
		h.errorResponse(w, err)
		return
	}
	h.CreateResponse(w, Response{Message: "unpaused", Code: 200})
}

func (h *Handler) AddGameHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeAdmin(w, r)
	if !ok {
		return
	}
	if err := h.svc.Engine().AddGame(req.Caller, req.GameID); err != nil {
		h.errorResponse(w, err)
		return
	}
	h.CreateResponse(w, Response{Message: "game whitelisted", Code: 200})
}

func (h *Handler) RemoveGameHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeAdmin(w, r)
	if !ok {
		return
	}
	if err := h.svc.Engine().RemoveGame(req.Caller, req.GameID); err != nil {
		h.errorResponse(w, err)
		return
	}
	h.CreateResponse(w, Response{Message: "game removed", Code: 200})
}

func (h *Handler) SetAdminHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeAdmin(w, r)
	if !ok {
		return
	}
	if err := h.svc.Engine().SetAdmin(req.Caller, req.NewAdmin); err != nil {
		h.errorResponse(w, err)
		return
	}
	h.CreateResponse(w, Response{Message: "admin transferred", Code: 200})
}

func (h *Handler) CancelSessionHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeAdmin(w, r)
	if !ok {
		return
	}
	if err := h.svc.CancelSession(r.Context(), req.Caller, req.SessionID); err != nil {
		h.errorResponse(w, err)
		return
	}
	h.CreateResponse(w, Response{Message: "session cancelled", Code: 200})
}

type setConfigRequest struct {
	Caller            string `json:"caller"`
	FPPerUSD          string `json:"fp_per_usd"`
	PeakMultiplier    string `json:"peak_multiplier"`
	TargetAmount      string `json:"target_amount"`
	MaxAmount         string `json:"max_amount"`
	TargetHoldSecs    int64  `json:"target_hold_secs"`
	MaxHoldSecs       int64  `json:"max_hold_secs"`
	EpochDurationSecs int64  `json:"epoch_duration_secs"`
	NumFactions       uint32 `json:"num_factions"`
	YieldToken        string `json:"yield_token"`
	RewardToken       string `json:"reward_token"`
}

func (h *Handler) SetConfigHandler(w http.ResponseWriter, r *http.Request) {
	var req setConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}
	if req.Caller == "" {
		h.badRequest(w, "caller is required")
		return
	}

	fields := map[string]string{
		"fp_per_usd":      req.FPPerUSD,
		"peak_multiplier": req.PeakMultiplier,
		"target_amount":   req.TargetAmount,
		"max_amount":      req.MaxAmount,
	}
	parsed := make(map[string]int64, len(fields))
	for name, raw := range fields {
		v, ok := parseWager(raw)
		if !ok {
			h.badRequest(w, "invalid "+name)
			return
		}
		parsed[name] = v
	}

	cfg := engine.Config{
		FPPerUSD:          parsed["fp_per_usd"],
		PeakMultiplier:    parsed["peak_multiplier"],
		TargetAmount:      parsed["target_amount"],
		MaxAmount:         parsed["max_amount"],
		TargetHoldSecs:    req.TargetHoldSecs,
		MaxHoldSecs:       req.MaxHoldSecs,
		EpochDurationSecs: req.EpochDurationSecs,
		NumFactions:       req.NumFactions,
		YieldToken:        req.YieldToken,
		RewardToken:       req.RewardToken,
	}
	if err := h.svc.Engine().SetConfig(req.Caller, cfg); err != nil {
		h.errorResponse(w, err)
		return
	}
	h.CreateResponse(w, Response{Message: "config updated", Code: 200})
}
