package classification

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/wastewise/wastewise-api/internal/domain/ledger"
	"github.com/wastewise/wastewise-api/internal/pkg/response"
	"github.com/wastewise/wastewise-api/internal/pkg/validator"
	"github.com/wastewise/wastewise-api/internal/pkg/walletaddr"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	var req ClassifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	wallet, err := walletaddr.Normalize(req.Wallet)
	if err != nil {
		response.BadRequest(w, "invalid wallet address")
		return
	}

	c, err := h.svc.Classify(r.Context(), wallet, req.ImageURL, Category(req.ExpectedCategory), req.Location)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCategory):
			response.BadRequest(w, "unknown waste category")
		case errors.Is(err, ErrOracleRejected):
			response.BadGateway(w, "scoring service is unavailable, try again later")
		case errors.Is(err, ledger.ErrReferenceConflict):
			response.Conflict(w, "classification reward already recorded with a different amount")
		default:
			response.InternalError(w)
		}
		return
	}
	response.Created(w, c)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid classification id")
		return
	}

	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "classification not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.OK(w, c)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	wallet, err := walletaddr.Normalize(chi.URLParam(r, "wallet"))
	if err != nil {
		response.BadRequest(w, "invalid wallet address")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	items, total, err := h.svc.History(r.Context(), wallet, limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	response.OK(w, HistoryResponse{Classifications: items, Total: total, Limit: limit, Offset: offset})
}

func (h *Handler) CategoryBreakdown(w http.ResponseWriter, r *http.Request) {
	wallet, err := walletaddr.Normalize(chi.URLParam(r, "wallet"))
	if err != nil {
		response.BadRequest(w, "invalid wallet address")
		return
	}

	counts, err := h.svc.CategoryBreakdown(r.Context(), wallet)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, counts)
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Classify)
	r.Get("/{id}", h.Get)
	r.Get("/wallet/{wallet}", h.History)
	r.Get("/wallet/{wallet}/categories", h.CategoryBreakdown)
	return r
}
