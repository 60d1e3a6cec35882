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

		// Secure routes
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(h.tokenAuth))
			r.Use(jwtauth.Authenticator)

			r.Post("/games", h.CreateGame)
			r.Post("/games/join", h.JoinGame)
			r.Get("/games/{code}", h.GetGameByCode)
			r.Get("/games/{id}/state", h.GetGameState)
			r.Get("/games/{id}/winner-by-net-worth", h.WinnerByNetWorth)
			r.Post("/games/{id}/finish-by-time", h.FinishByTime)

			r.Post("/game-properties/buy", h.BuyProperty)
			r.Post("/game-properties/development", h.DevelopProperty)
			r.Post("/game-properties/mortgage", h.MortgageProperty)
			r.Post("/game-properties/unmortgage", h.UnmortgageProperty)
			r.Put("/game-properties/{id}", h.TransferProperty)

			r.Post("/game-trade-requests", h.CreateTrade)
			r.Get("/game-trade-requests/{id}", h.GetTrade)
			r.Post("/game-trade-requests/accept", h.AcceptTrade)
			r.Post("/game-trade-requests/decline", h.DeclineTrade)
			r.Post("/game-trade-requests/counter", h.CounterTrade)

			r.Post("/game-players/end-turn", h.EndTurn)
			r.Post("/game-players/change-position", h.ChangePosition)
			r.Post("/game-players/record-timeout", h.RecordTimeout)
			r.Post("/game-players/vote-to-remove", h.VoteToRemove)
		})
	})
}

func (h *Handler) InitAuth() {
	var jwtKey = os.Getenv("JWT_SECRET_KEY")
	h.tokenAuth = jwtauth.New("HS256", []byte(jwtKey), nil)

	expirationTime := time.Now().Add(7 * 24 * time.Hour).Unix()

	_, tokenString, _ := h.tokenAuth.Encode(map[string]interface{}{
		"service_id": 8003022,
		"exp":        expirationTime,
	})

	// For debugging only, comment it out in production
	log.Infof("DEBUG: JWT for testing expires soon : %s", tokenString)
}
