package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/go-chi/jwtauth"

	"github.com/tycoonhq/tycoon-services/internal/gamesvc/service"
)

type Handler struct {
	tokenAuth *jwtauth.JWTAuth

	gameService     *service.GameService
	propertyService *service.PropertyService
	tradeService    *service.TradeService
	turnService     *service.TurnService
	winService      *service.WinService
}

func NewHandler(
	gameService *service.GameService,
	propertyService *service.PropertyService,
	tradeService *service.TradeService,
	turnService *service.TurnService,
	winService *service.WinService,
) *Handler {
	return &Handler{
		gameService:     gameService,
		propertyService: propertyService,
		tradeService:    tradeService,
		turnService:     turnService,
		winService:      winService,
	}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func (h *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)

	json.NewEncoder(w).Encode(rsp)
}

func (h *Handler) ok(w http.ResponseWriter, message string, data interface{}) {
	h.CreateResponse(w, Response{
		Success: true,
		Message: message,
		Code:    http.StatusOK,
		Data:    data,
	})
}

// fail maps the error taxonomy to status codes: precondition
// rejections are 422, missing rows 404, everything else 500.
func (h *Handler) fail(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case service.IsValidation(err):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrNotFound):
		code = http.StatusNotFound
	}
	h.CreateResponse(w, Response{
		Success: false,
		Code:    code,
		Error:   err.Error(),
	})
}

func decode(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func (h *Handler) badRequest(w http.ResponseWriter, err error) {
	h.CreateResponse(w, Response{
		Success: false,
		Code:    http.StatusBadRequest,
		Error:   "invalid request body: " + err.Error(),
	})
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	rsp := Response{
		Success: true,
		Message: "game service is running at port " + os.Getenv("GAME_SERVICE_PORT"),
		Code:    200,
	}
	json.NewEncoder(w).Encode(rsp)
}
