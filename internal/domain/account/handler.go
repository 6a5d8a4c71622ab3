package account

import (
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

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	wallet, err := walletaddr.Normalize(chi.URLParam(r, "wallet"))
	if err != nil {
		response.BadRequest(w, "invalid wallet address")
		return
	}

	stats, err := h.svc.Stats(r.Context(), wallet)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, stats)
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{wallet}/stats", h.Stats)
	return r
}
