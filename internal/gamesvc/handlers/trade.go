package handlers

import (
	"net/http"

	"github.com/tycoonhq/tycoon-services/internal/gamesvc/service"
)

func (h *Handler) CreateTrade(w http.ResponseWriter, r *http.Request) {
	var req service.CreateTradeRequest
	if err := decode(r, &req); err != nil {
		h.badRequest(w, err)
		return
	}

	trade, err := h.tradeService.Create(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, "trade offer created", trade)
}

func (h *Handler) GetTrade(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.badRequest(w, err)
		return
	}

	trade, err := h.tradeService.GetTradeByID(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, "", trade)
}

func (h *Handler) AcceptTrade(w http.ResponseWriter, r *http.Request) {
	var req service.TradeActionRequest
	if err := decode(r, &req); err != nil {
		h.badRequest(w, err)
		return
	}

	trade, err := h.tradeService.Accept(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, "trade accepted", trade)
}

func (h *Handler) DeclineTrade(w http.ResponseWriter, r *http.Request) {
	var req service.TradeActionRequest
	if err := decode(r, &req); err != nil {
		h.badRequest(w, err)
		return
	}

	trade, err := h.tradeService.Decline(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, "trade declined", trade)
}

func (h *Handler) CounterTrade(w http.ResponseWriter, r *http.Request) {
	var req service.CounterTradeRequest
	if err := decode(r, &req); err != nil {
		h.badRequest(w, err)
		return
	}

	trade, err := h.tradeService.Counter(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, "counter offer created", trade)
}
