package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/tycoonhq/tycoon-services/internal/gamesvc/service"
)

func (h *Handler) CreateGame(w http.ResponseWriter, r *http.Request) {
	var req service.CreateGameRequest
	if err := decode(r, &req); err != nil {
		h.badRequest(w, err)
		return
	}

	game, err := h.gameService.CreateGame(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, "game created", game)
}

func (h *Handler) JoinGame(w http.ResponseWriter, r *http.Request) {
	var req service.JoinGameRequest
	if err := decode(r, &req); err != nil {
		h.badRequest(w, err)
		return
	}

	game, err := h.gameService.JoinGame(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, "player joined", game)
}

func (h *Handler) GetGameByCode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	game, err := h.gameService.GetGameByCode(r.Context(), code)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, "", game)
}

func (h *Handler) GetGameState(w http.ResponseWriter, r *http.Request) {
	gameID, err := pathID(r)
	if err != nil {
		h.badRequest(w, err)
		return
	}

	state, err := h.gameService.GetGameState(r.Context(), gameID)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, "", state)
}

func (h *Handler) WinnerByNetWorth(w http.ResponseWriter, r *http.Request) {
	gameID, err := pathID(r)
	if err != nil {
		h.badRequest(w, err)
		return
	}

	standings, err := h.winService.PreviewNetWorth(r.Context(), gameID)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, "", standings)
}

func (h *Handler) FinishByTime(w http.ResponseWriter, r *http.Request) {
	gameID, err := pathID(r)
	if err != nil {
		h.badRequest(w, err)
		return
	}

	result, err := h.winService.FinishByTime(r.Context(), gameID)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, "game finished", result)
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
