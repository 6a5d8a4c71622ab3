package ledger

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

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

func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	wallet, err := walletaddr.Normalize(chi.URLParam(r, "wallet"))
	if err != nil {
		response.BadRequest(w, "invalid wallet address")
		return
	}

	balance, err := h.svc.Balance(r.Context(), wallet)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, balance)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	wallet, err := walletaddr.Normalize(chi.URLParam(r, "wallet"))
	if err != nil {
		response.BadRequest(w, "invalid wallet address")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	kind := TransactionKind(r.URL.Query().Get("kind"))

	txs, total, err := h.svc.History(r.Context(), wallet, kind, limit, offset)
	if err != nil {
		if errors.Is(err, ErrInvalidKind) {
			response.BadRequest(w, "unknown transaction kind")
			return
		}
		response.InternalError(w)
		return
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	response.OK(w, HistoryResponse{Transactions: txs, Total: total, Limit: limit, Offset: offset})
}

func (h *Handler) Adjust(w http.ResponseWriter, r *http.Request) {
	var req AdjustRequest
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

	if err := h.svc.Adjust(r.Context(), wallet, req.Amount, req.Description); err != nil {
		switch {
		case errors.Is(err, ErrInvalidAmount):
			response.BadRequest(w, "amount must be non-zero and a description is required")
		case errors.Is(err, ErrInsufficientScore):
			response.Conflict(w, "adjustment would make balance negative")
		default:
			response.InternalError(w)
		}
		return
	}

	balance, err := h.svc.Balance(r.Context(), wallet)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, balance)
}

func (h *Handler) Invalidate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid transaction id")
		return
	}

	if err := h.svc.Invalidate(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.NotFound(w, "transaction not found")
		default:
			response.InternalError(w)
		}
		return
	}
	response.NoContent(w)
}

// Routes mounts the public score endpoints plus the admin mutations.
func (h *Handler) Routes(adminMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/{wallet}/balance", h.Balance)
	r.Get("/{wallet}/transactions", h.History)

	r.Group(func(r chi.Router) {
		r.Use(adminMiddleware)
		r.Post("/adjust", h.Adjust)
		r.Post("/transactions/{id}/invalidate", h.Invalidate)
	})
	return r
}
