package handlers

import (
	"net/http"

	"github.com/tycoonhq/tycoon-services/internal/gamesvc/service"
)

func (h *Handler) EndTurn(w http.ResponseWriter, r *http.Request) {
	var req service.TurnRequest
	if err := decode(r, &req); err != nil {
		h.badRequest(w, err)
		return
	}

	next, err := h.turnService.EndTurn(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, "turn ended", next)
}

func (h *Handler) ChangePosition(w http.ResponseWriter, r *http.Request) {
	var req service.MoveRequest
	if err := decode(r, &req); err != nil {
		h.badRequest(w, err)
		return
	}

	player, err := h.turnService.ChangePosition(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, "position updated", player)
}

func (h *Handler) RecordTimeout(w http.ResponseWriter, r *http.Request) {
	var req service.TurnRequest
	if err := decode(r, &req); err != nil {
		h.badRequest(w, err)
		return
	}

	player, err := h.turnService.RecordTimeout(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, "timeout recorded", player)
}

func (h *Handler) VoteToRemove(w http.ResponseWriter, r *http.Request) {
	var req service.VoteRequest
	if err := decode(r, &req); err != nil {
		h.badRequest(w, err)
		return
	}

	target, err := h.turnService.VoteToRemove(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, "vote recorded", target)
}
