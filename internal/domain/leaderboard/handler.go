package leaderboard

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wastewise/wastewise-api/internal/pkg/response"
	"github.com/wastewise/wastewise-api/internal/pkg/walletaddr"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Top(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entries, err := h.svc.Top(r.Context(), q.Get("period"), limitFromQuery(q.Get("limit")))
	if err != nil {
		if errors.Is(err, ErrBadPeriod) {
			response.BadRequest(w, "period must be one of: all, week, month")
			return
		}
		response.InternalError(w)
		return
	}
	response.OK(w, entries)
}

func (h *Handler) Rank(w http.ResponseWriter, r *http.Request) {
	wallet, err := walletaddr.Normalize(chi.URLParam(r, "wallet"))
	if err != nil {
		response.BadRequest(w, "invalid wallet address")
		return
	}

	entry, err := h.svc.Rank(r.Context(), wallet)
	if err != nil {
		response.InternalError(w)
		return
	}
	if entry == nil {
		response.NotFound(w, "wallet has no ranking yet")
		return
	}
	response.OK(w, entry)
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Top)
	r.Get("/{wallet}", h.Rank)
	return r
}
