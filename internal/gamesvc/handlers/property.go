package handlers

import (
	"net/http"

	"github.com/tycoonhq/tycoon-services/internal/gamesvc/service"
)

func (h *Handler) BuyProperty(w http.ResponseWriter, r *http.Request) {
	var req service.PropertyRequest
	if err := decode(r, &req); err != nil {
		h.badRequest(w, err)
		return
	}

	owned, err := h.propertyService.Buy(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, "property bought", owned)
}

type developRequest struct {
	service.PropertyRequest
	Sell bool `json:"sell"` // true sells one building back instead of building
}

func (h *Handler) DevelopProperty(w http.ResponseWriter, r *http.Request) {
	var req developRequest
	if err := decode(r, &req); err != nil {
		h.badRequest(w, err)
		return
	}

	var err error
	var owned interface{}
	if req.Sell {
		owned, err = h.propertyService.Downgrade(r.Context(), req.PropertyRequest)
	} else {
		owned, err = h.propertyService.Develop(r.Context(), req.PropertyRequest)
	}
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, "development updated", owned)
}

func (h *Handler) MortgageProperty(w http.ResponseWriter, r *http.Request) {
	var req service.PropertyRequest
	if err := decode(r, &req); err != nil {
		h.badRequest(w, err)
		return
	}

	owned, err := h.propertyService.Mortgage(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, "property mortgaged", owned)
}

func (h *Handler) UnmortgageProperty(w http.ResponseWriter, r *http.Request) {
	var req service.PropertyRequest
	if err := decode(r, &req); err != nil {
		h.badRequest(w, err)
		return
	}

	owned, err := h.propertyService.Unmortgage(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, "property unmortgaged", owned)
}

func (h *Handler) TransferProperty(w http.ResponseWriter, r *http.Request) {
	ownershipID, err := pathID(r)
	if err != nil {
		h.badRequest(w, err)
		return
	}

	var req service.TransferRequest
	if err := decode(r, &req); err != nil {
		h.badRequest(w, err)
		return
	}
	req.OwnershipID = ownershipID

	owned, err := h.propertyService.Transfer(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, "property transferred", owned)
}
