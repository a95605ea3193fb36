package handlers

import (
	"os"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) SetRoutes(r *chi.Mux) {
	r.Route("/v1", func(r chi.Router) {

		r.Get("/health", h.HealthHandler)

		r.Post("/factions/select", h.SelectFactionHandler)
		r.Get("/players/{address}", h.GetPlayerHandler)

		r.Get("/epochs/current", h.GetCurrentEpochHandler)
		r.Get("/epochs/{epochID}", h.GetEpochHandler)
		r.Post("/epochs/cycle", h.CycleEpochHandler)

		r.Get("/rewards/claimable", h.GetClaimableHandler)
		r.Post("/rewards/claim", h.ClaimRewardHandler)

		// Game backend routes; the game_id JWT claim identifies the caller.
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(h.tokenAuth))
			r.Use(jwtauth.Authenticator)

			r.Post("/games/start", h.StartGameHandler)
			r.Post("/games/end", h.EndGameHandler)
		})

		// Admin routes; the engine enforces the admin gate on the caller
		// address carried in the body.
		r.Route("/admin", func(r chi.Router) {
			r.Post("/pause", h.PauseHandler)
			r.Post("/unpause", h.UnpauseHandler)
			r.Post("/games/add", h.AddGameHandler)
			r.Post("/games/remove", h.RemoveGameHandler)
			r.Post("/transfer", h.SetAdminHandler)
			r.Post("/config", h.SetConfigHandler)
			r.Post("/sessions/cancel", h.CancelSessionHandler)
		})
	})
}

func (h *Handler) InitAuth() {
	var jwtKey = os.Getenv("JWT_SECRET_KEY")
	h.tokenAuth = jwtauth.New("HS256", []byte(jwtKey), nil)

	if debugGame := os.Getenv("DEBUG_GAME_ID"); debugGame != "" {
		expirationTime := time.Now().Add(7 * 24 * time.Hour).Unix()

		_, tokenString, _ := h.tokenAuth.Encode(map[string]interface{}{
			"game_id": debugGame,
			"exp":     expirationTime,
		})

		// For debugging only, never set DEBUG_GAME_ID in production
		log.Infof("DEBUG: JWT for game %s expires soon : %s", debugGame, tokenString)
	}
}
